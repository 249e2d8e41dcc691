package markdown

import (
	"bytes"
	"fmt"
	"time"

	"github.com/adrg/frontmatter"
)

// ParseFrontMatter extracts metadata and Markdown body content from the
// provided source bytes. Values are normalised to JSON-compatible types so
// the result can be validated against a JSON schema directly.
func ParseFrontMatter(source []byte) (map[string]any, []byte, error) {
	var meta map[string]any

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return nil, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	normalized, _ := normalizeValue(meta).(map[string]any)
	if normalized == nil {
		normalized = map[string]any{}
	}
	return normalized, body, nil
}

// normalizeValue rewrites YAML decoder output (map[any]any, time.Time) into
// the shapes encoding/json and jsonschema expect.
func normalizeValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			out[key] = normalizeValue(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			out[fmt.Sprint(key)] = normalizeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, val := range typed {
			out[i] = normalizeValue(val)
		}
		return out
	case time.Time:
		if typed.Hour() == 0 && typed.Minute() == 0 && typed.Second() == 0 && typed.Nanosecond() == 0 {
			return typed.Format(time.DateOnly)
		}
		return typed.Format(time.RFC3339)
	default:
		return value
	}
}
