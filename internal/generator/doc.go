// Package generator renders the site-level artifacts derived from a content
// snapshot: sitemap.xml, RSS feeds and robots.txt. Artifacts are built in
// memory so the HTTP server can serve them directly, and Write persists them
// for static hosting.
package generator
