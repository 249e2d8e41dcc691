// Package http exposes the site over gin.
//
// Routes:
//   - Contact relay: POST /api/contact, POST /api/contact.json
//   - Content: /api/collections, /api/collections/:name, /api/collections/:name/:slug
//   - Artifacts: /sitemap.xml, /rss.xml, /robots.txt
//   - Operations: /healthz, /metrics
//
// API responses are JSON. Credentials for the email API never appear in a
// response body.
package http
