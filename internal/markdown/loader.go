package markdown

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

// DefaultPattern matches every markdown file below a base directory.
const DefaultPattern = "**/*.md"

// Document is a markdown file with its parsed frontmatter.
type Document struct {
	// FilePath is the slash separated path inside the loader filesystem.
	FilePath string
	// RelPath is FilePath relative to the directory it was discovered from.
	RelPath      string
	FrontMatter  map[string]any
	Body         []byte
	Checksum     []byte
	LastModified time.Time
}

// Loader turns filesystem paths into markdown documents.
type Loader struct {
	fs fs.FS
}

// NewLoader constructs a Loader reading from filesystem.
func NewLoader(filesystem fs.FS) *Loader {
	return &Loader{fs: filesystem}
}

// Discover returns the sorted paths under base that match pattern. A missing
// base directory yields no paths rather than an error so an empty collection
// can be declared ahead of its first document.
func (l *Loader) Discover(ctx context.Context, base, pattern string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root := cleanRoot(base)
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultPattern
	}
	pattern = strings.TrimPrefix(path.Clean(pattern), "./")

	var paths []string
	walkErr := fs.WalkDir(l.fs, root, func(current string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if current == root && errors.Is(walkErr, fs.ErrNotExist) {
				return fs.SkipDir
			}
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if MatchGlob(pattern, relativeTo(root, current)) {
			paths = append(paths, current)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("markdown loader walk %s: %w", root, walkErr)
	}

	sort.Strings(paths)
	return paths, nil
}

// LoadFile reads and parses a single markdown document. base is used to
// compute Document.RelPath.
func (l *Loader) LoadFile(ctx context.Context, base, filePath string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(l.fs, filePath)
	if err != nil {
		return nil, fmt.Errorf("markdown loader read: %w", err)
	}
	info, err := fs.Stat(l.fs, filePath)
	if err != nil {
		return nil, fmt.Errorf("markdown loader stat: %w", err)
	}

	meta, body, err := ParseFrontMatter(data)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)

	return &Document{
		FilePath:     filePath,
		RelPath:      relativeTo(cleanRoot(base), filePath),
		FrontMatter:  meta,
		Body:         body,
		Checksum:     sum[:],
		LastModified: info.ModTime(),
	}, nil
}

// MatchGlob reports whether name matches pattern. Segments are matched with
// path.Match; a "**" segment matches zero or more directories.
func MatchGlob(pattern, name string) bool {
	return matchSegments(splitPath(pattern), splitPath(name))
}

func matchSegments(pattern, name []string) bool {
	for len(pattern) > 0 {
		head := pattern[0]
		if head == "**" {
			rest := pattern[1:]
			for i := 0; i <= len(name); i++ {
				if matchSegments(rest, name[i:]) {
					return true
				}
			}
			return false
		}
		if len(name) == 0 {
			return false
		}
		ok, err := path.Match(head, name[0])
		if err != nil || !ok {
			return false
		}
		pattern, name = pattern[1:], name[1:]
	}
	return len(name) == 0
}

func splitPath(value string) []string {
	trimmed := strings.Trim(value, "/")
	if trimmed == "" || trimmed == "." {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func cleanRoot(base string) string {
	root := path.Clean(strings.ReplaceAll(strings.TrimSpace(base), "\\", "/"))
	root = strings.TrimPrefix(root, "./")
	if root == "" || root == "/" {
		return "."
	}
	return strings.TrimPrefix(root, "/")
}

func relativeTo(root, current string) string {
	if root == "." {
		return current
	}
	return strings.TrimPrefix(strings.TrimPrefix(current, root), "/")
}
