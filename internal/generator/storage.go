package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// artifactWriter abstracts where generated files land.
type artifactWriter interface {
	WriteFile(ctx context.Context, path string, content []byte) error
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// dirWriter writes below a root directory on the local filesystem.
type dirWriter struct {
	root string
}

func newDirWriter(root string) (*dirWriter, error) {
	trimmed := strings.TrimSpace(root)
	if trimmed == "" {
		return nil, errors.New("generator: output directory is required")
	}
	return &dirWriter{root: filepath.Clean(trimmed)}, nil
}

func (w *dirWriter) resolve(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(name, "/")))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("generator: invalid output path %q", name)
	}
	return filepath.Join(w.root, clean), nil
}

func (w *dirWriter) WriteFile(ctx context.Context, name string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := w.resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("generator: create dir for %s: %w", name, err)
	}
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("generator: write %s: %w", name, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("generator: finalize %s: %w", name, err)
	}
	return nil
}

func (w *dirWriter) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target, err := w.resolve(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(target)
}
