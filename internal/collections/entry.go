package collections

import (
	"encoding/hex"
	"fmt"
	"maps"
	"path"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-slug"

	"github.com/internetdrew/portfolio-v3/internal/markdown"
	"github.com/internetdrew/portfolio-v3/internal/validation"
	"github.com/internetdrew/portfolio-v3/pkg/interfaces"
)

// Image is the optional cover image of an entry.
type Image struct {
	URL string `json:"url"`
}

// Entry is one validated document with its frontmatter coerced to typed
// fields. Data holds every validated frontmatter value, including fields the
// typed accessors do not cover.
type Entry struct {
	Collection   string         `json:"collection"`
	ID           string         `json:"id"`
	FilePath     string         `json:"filePath"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	PubDate      time.Time      `json:"pubDate"`
	Slug         string         `json:"slug"`
	Image        *Image         `json:"image,omitempty"`
	IsDraft      bool           `json:"isDraft"`
	OGImageSrc   string         `json:"ogImageSrc,omitempty"`
	VideoURL     string         `json:"videoUrl,omitempty"`
	Data         map[string]any `json:"data"`
	Body         []byte         `json:"-"`
	Checksum     string         `json:"checksum"`
	LastModified time.Time      `json:"lastModified"`
}

// HTML renders the entry body.
func (e Entry) HTML(parser interfaces.MarkdownParser) ([]byte, error) {
	if parser == nil {
		return nil, fmt.Errorf("render %s: markdown parser not configured", e.FilePath)
	}
	return parser.Parse(e.Body)
}

// clone copies the mutable parts of e: Data (recursively), Body and Image.
func (e Entry) clone() Entry {
	out := e
	if e.Data != nil {
		out.Data, _ = cloneValue(e.Data).(map[string]any)
	}
	if e.Body != nil {
		out.Body = slices.Clone(e.Body)
	}
	if e.Image != nil {
		image := *e.Image
		out.Image = &image
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			out[key] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, val := range typed {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return value
	}
}

// SortByPubDate orders entries newest first, breaking ties by ID. The
// registry itself makes no ordering promise; page code calls this.
func SortByPubDate(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].PubDate.Equal(entries[j].PubDate) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].PubDate.After(entries[j].PubDate)
	})
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
	"January 2, 2006",
	"Jan 2, 2006",
}

// CoerceDate parses the date representations accepted in frontmatter.
func CoerceDate(value any) (time.Time, error) {
	switch typed := value.(type) {
	case time.Time:
		return typed, nil
	case string:
		trimmed := strings.TrimSpace(typed)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("cannot parse %q as a date", typed)
	default:
		return time.Time{}, fmt.Errorf("expected a date string, got %T", value)
	}
}

// buildEntry coerces a validated document into an Entry. It returns field
// issues when coercion fails.
func buildEntry(def compiledCollection, doc *markdown.Document) (Entry, []validation.ValidationIssue) {
	data := maps.Clone(doc.FrontMatter)
	var issues []validation.ValidationIssue
	for _, field := range def.dateFields {
		raw, ok := data[field]
		if !ok {
			continue
		}
		parsed, err := CoerceDate(raw)
		if err != nil {
			issues = append(issues, validation.ValidationIssue{
				Location: "/" + field,
				Message:  err.Error(),
			})
			continue
		}
		data[field] = parsed
	}
	if len(issues) > 0 {
		return Entry{}, issues
	}

	id := strings.TrimSuffix(doc.RelPath, path.Ext(doc.RelPath))
	entry := Entry{
		Collection:   def.Name,
		ID:           id,
		FilePath:     doc.FilePath,
		Title:        stringField(data, "title"),
		Description:  stringField(data, "description"),
		Slug:         stringField(data, "slug"),
		OGImageSrc:   stringField(data, "ogImageSrc"),
		VideoURL:     stringField(data, "videoUrl"),
		Data:         data,
		Body:         doc.Body,
		Checksum:     hex.EncodeToString(doc.Checksum),
		LastModified: doc.LastModified,
	}
	if pub, ok := data["pubDate"].(time.Time); ok {
		entry.PubDate = pub
	}
	if draft, ok := data["isDraft"].(bool); ok {
		entry.IsDraft = draft
	}
	if image, ok := data["image"].(map[string]any); ok {
		entry.Image = &Image{URL: stringField(image, "url")}
	}
	if entry.Slug == "" {
		entry.Slug = deriveSlug(id)
	}
	return entry, nil
}

func deriveSlug(id string) string {
	candidate := strings.ReplaceAll(id, "/", "-")
	if normalized, err := slug.Normalize(candidate); err == nil && normalized != "" {
		return normalized
	}
	return candidate
}

func stringField(data map[string]any, key string) string {
	value, _ := data[key].(string)
	return value
}
