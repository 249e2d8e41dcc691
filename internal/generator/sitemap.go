package generator

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/internetdrew/portfolio-v3/internal/collections"
)

type sitemapEntry struct {
	Location string
	LastMod  time.Time
}

// BuildSitemap lists the home page, every collection index and every
// published entry. Entries without a modification time use fallback.
func BuildSitemap(baseURL string, entries []collections.Entry, fallback time.Time) (string, error) {
	links, err := NewLinks(baseURL)
	if err != nil {
		return "", err
	}

	home, err := links.Home()
	if err != nil {
		return "", err
	}
	urls := []sitemapEntry{{Location: home, LastMod: fallback}}
	seen := map[string]struct{}{home: {}}
	add := func(location string, lastMod time.Time) {
		if _, ok := seen[location]; ok {
			return
		}
		seen[location] = struct{}{}
		if lastMod.IsZero() {
			lastMod = fallback
		}
		urls = append(urls, sitemapEntry{Location: location, LastMod: lastMod})
	}

	latest := map[string]time.Time{}
	for _, entry := range entries {
		if entry.IsDraft {
			continue
		}
		location, err := links.Entry(entry)
		if err != nil {
			return "", err
		}
		add(location, entry.LastModified)
		if current, ok := latest[entry.Collection]; !ok || entry.LastModified.After(current) {
			latest[entry.Collection] = entry.LastModified
		}
	}
	for name, lastMod := range latest {
		location, err := links.Collection(name)
		if err != nil {
			return "", err
		}
		add(location, lastMod)
	}

	sort.Slice(urls, func(i, j int) bool {
		return urls[i].Location < urls[j].Location
	})

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, entry := range urls {
		builder.WriteString("  <url>\n")
		builder.WriteString(fmt.Sprintf("    <loc>%s</loc>\n", html.EscapeString(entry.Location)))
		if !entry.LastMod.IsZero() {
			builder.WriteString(fmt.Sprintf("    <lastmod>%s</lastmod>\n", entry.LastMod.UTC().Format(time.RFC3339)))
		}
		builder.WriteString("  </url>\n")
	}
	builder.WriteString("</urlset>\n")
	return builder.String(), nil
}

// BuildRobots allows every crawler and points at the sitemap.
func BuildRobots(baseURL string) (string, error) {
	links, err := NewLinks(baseURL)
	if err != nil {
		return "", err
	}
	sitemap, err := links.Sitemap()
	if err != nil {
		return "", err
	}
	var builder strings.Builder
	builder.WriteString("User-agent: *\n")
	builder.WriteString("Allow: /\n")
	builder.WriteString("\n")
	builder.WriteString(fmt.Sprintf("Sitemap: %s\n", sitemap))
	return builder.String(), nil
}
