package collections

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/internetdrew/portfolio-v3/internal/markdown"
	"github.com/internetdrew/portfolio-v3/internal/validation"
)

// Collection declares a named set of markdown documents sharing one schema.
type Collection struct {
	Name    string         `yaml:"name" json:"name"`
	Base    string         `yaml:"base" json:"base"`
	Pattern string         `yaml:"pattern" json:"pattern"`
	Schema  map[string]any `yaml:"schema" json:"schema"`
}

var collectionNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Define returns a collection using the default "**/*.md" pattern when
// pattern is empty.
func Define(name, base, pattern string, schema map[string]any) Collection {
	if strings.TrimSpace(pattern) == "" {
		pattern = markdown.DefaultPattern
	}
	return Collection{
		Name:    strings.TrimSpace(name),
		Base:    strings.TrimSpace(base),
		Pattern: pattern,
		Schema:  schema,
	}
}

type compiledCollection struct {
	Collection
	schema     *validation.Schema
	dateFields []string
}

func compileCollections(defs []Collection) ([]compiledCollection, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("%w: no collections declared", ErrCollectionInvalid)
	}
	seen := map[string]struct{}{}
	out := make([]compiledCollection, 0, len(defs))
	for _, def := range defs {
		if !collectionNamePattern.MatchString(def.Name) {
			return nil, fmt.Errorf("%w: name %q must be lowercase letters, digits, '-' or '_'", ErrCollectionInvalid, def.Name)
		}
		if _, ok := seen[def.Name]; ok {
			return nil, fmt.Errorf("%w: duplicate collection %q", ErrCollectionInvalid, def.Name)
		}
		seen[def.Name] = struct{}{}
		if strings.TrimSpace(def.Base) == "" {
			return nil, fmt.Errorf("%w: collection %q has no base directory", ErrCollectionInvalid, def.Name)
		}
		if strings.TrimSpace(def.Pattern) == "" {
			def.Pattern = markdown.DefaultPattern
		}
		schema, err := validation.Compile(def.Schema)
		if err != nil {
			return nil, fmt.Errorf("%w: collection %q: %v", ErrCollectionInvalid, def.Name, err)
		}
		out = append(out, compiledCollection{
			Collection: def,
			schema:     schema,
			dateFields: dateFields(def.Schema),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// CoerceKeyword marks a string property whose value is parsed into
// time.Time after validation. It is not asserted by the schema validator, so
// every layout CoerceDate accepts reaches coercion; unparseable values become
// field issues there.
const CoerceKeyword = "x-coerce"

// dateFields lists top level properties marked with CoerceKeyword or
// declared with a date or date-time format. Format-declared fields are still
// asserted by the validator and only accept ISO values.
func dateFields(schema map[string]any) []string {
	props, _ := schema["properties"].(map[string]any)
	var fields []string
	for name, raw := range props {
		prop, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		coerce, _ := prop[CoerceKeyword].(string)
		format, _ := prop["format"].(string)
		if isDateKind(coerce) || isDateKind(format) {
			fields = append(fields, name)
		}
	}
	sort.Strings(fields)
	return fields
}

func isDateKind(kind string) bool {
	return kind == "date" || kind == "date-time"
}

func stringProp() map[string]any {
	return map[string]any{"type": "string"}
}

func urlProp() map[string]any {
	return map[string]any{"type": "string", "minLength": 1}
}

func dateProp() map[string]any {
	return map[string]any{"type": "string", CoerceKeyword: "date"}
}

func boolProp() map[string]any {
	return map[string]any{"type": "boolean"}
}

// PostSchema builds an object schema with the shared post fields (title,
// description, pubDate) plus extra properties. Unknown fields are rejected.
func PostSchema(extra map[string]any, required ...string) map[string]any {
	props := map[string]any{
		"title":       map[string]any{"type": "string", "minLength": 1},
		"description": stringProp(),
		"pubDate":     dateProp(),
	}
	for name, prop := range extra {
		props[name] = prop
	}
	req := []any{"title", "description", "pubDate"}
	for _, name := range required {
		req = append(req, name)
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             req,
		"properties":           props,
	}
}

// DefaultCollections declares the site's collections. Bases are relative to
// the content root.
func DefaultCollections() []Collection {
	image := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"url"},
		"properties":           map[string]any{"url": urlProp()},
	}
	return []Collection{
		Define("blog", "blog", markdown.DefaultPattern, PostSchema(map[string]any{
			"slug":    stringProp(),
			"image":   image,
			"isDraft": boolProp(),
		}, "slug", "image", "isDraft")),
		Define("insights", "insights", markdown.DefaultPattern, PostSchema(map[string]any{
			"slug":       stringProp(),
			"isDraft":    boolProp(),
			"ogImageSrc": urlProp(),
		}, "isDraft")),
		Define("guides", "guides", markdown.DefaultPattern, PostSchema(map[string]any{
			"slug":       stringProp(),
			"isDraft":    boolProp(),
			"ogImageSrc": urlProp(),
		}, "slug", "isDraft")),
		Define("tutorials", "tutorials", markdown.DefaultPattern, PostSchema(map[string]any{
			"slug":       stringProp(),
			"isDraft":    boolProp(),
			"ogImageSrc": urlProp(),
			"videoUrl":   urlProp(),
		})),
	}
}
