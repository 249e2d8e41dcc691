package generator

import (
	"fmt"
	"html"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/internetdrew/portfolio-v3/internal/collections"
)

const maxFeedItems = 50

// CollectionTitle turns a collection name such as "how-to_guides" into
// "How To Guides".
func CollectionTitle(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' })
	return cases.Title(language.English).String(strings.Join(words, " "))
}

type feedItem struct {
	Title       string
	Description string
	Link        string
	PublishedAt time.Time
	Category    string
}

// BuildRSS renders an RSS 2.0 channel. An empty collection name produces the
// site-wide feed; otherwise the channel is titled after the collection.
// Drafts are skipped and items are ordered newest first.
func BuildRSS(site Site, collection string, entries []collections.Entry, generatedAt time.Time) (string, error) {
	links, err := NewLinks(site.BaseURL)
	if err != nil {
		return "", err
	}

	published := make([]collections.Entry, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDraft {
			published = append(published, entry)
		}
	}
	collections.SortByPubDate(published)
	if len(published) > maxFeedItems {
		published = published[:maxFeedItems]
	}

	items := make([]feedItem, 0, len(published))
	for _, entry := range published {
		link, err := links.Entry(entry)
		if err != nil {
			return "", err
		}
		items = append(items, feedItem{
			Title:       entry.Title,
			Description: normalizeWhitespace(entry.Description),
			Link:        link,
			PublishedAt: entry.PubDate,
			Category:    CollectionTitle(entry.Collection),
		})
	}

	title := site.title()
	channelLink, err := links.Home()
	if err != nil {
		return "", err
	}
	if collection != "" {
		title = fmt.Sprintf("%s: %s", title, CollectionTitle(collection))
		if channelLink, err = links.Collection(collection); err != nil {
			return "", err
		}
	}
	description := strings.TrimSpace(site.Description)
	if description == "" {
		description = "Latest updates"
	}

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<rss version="2.0">` + "\n")
	builder.WriteString("  <channel>\n")
	builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(title)))
	builder.WriteString(fmt.Sprintf("    <link>%s</link>\n", html.EscapeString(channelLink)))
	builder.WriteString(fmt.Sprintf("    <description>%s</description>\n", html.EscapeString(description)))
	builder.WriteString(fmt.Sprintf("    <lastBuildDate>%s</lastBuildDate>\n", generatedAt.UTC().Format(time.RFC1123Z)))
	for _, item := range items {
		pub := item.PublishedAt
		if pub.IsZero() {
			pub = generatedAt
		}
		builder.WriteString("    <item>\n")
		builder.WriteString(fmt.Sprintf("      <title>%s</title>\n", html.EscapeString(item.Title)))
		builder.WriteString(fmt.Sprintf("      <link>%s</link>\n", html.EscapeString(item.Link)))
		builder.WriteString(fmt.Sprintf("      <guid isPermaLink=\"true\">%s</guid>\n", html.EscapeString(item.Link)))
		builder.WriteString(fmt.Sprintf("      <pubDate>%s</pubDate>\n", pub.UTC().Format(time.RFC1123Z)))
		builder.WriteString(fmt.Sprintf("      <category>%s</category>\n", html.EscapeString(item.Category)))
		if item.Description != "" {
			builder.WriteString(fmt.Sprintf("      <description>%s</description>\n", html.EscapeString(item.Description)))
		}
		builder.WriteString("    </item>\n")
	}
	builder.WriteString("  </channel>\n")
	builder.WriteString("</rss>\n")
	return builder.String(), nil
}

func normalizeWhitespace(input string) string {
	return strings.Join(strings.Fields(input), " ")
}
