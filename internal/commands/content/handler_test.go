package contentcmd

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/internetdrew/portfolio-v3/internal/collections"
	"github.com/internetdrew/portfolio-v3/internal/generator"
)

func newRegistry(t *testing.T, fsys fstest.MapFS) *collections.Registry {
	t.Helper()
	registry, err := collections.NewRegistry(fsys, []collections.Collection{
		collections.Define("notes", "notes", "", map[string]any{
			"type":     "object",
			"required": []any{"title", "pubDate"},
			"properties": map[string]any{
				"title":   map[string]any{"type": "string"},
				"pubDate": map[string]any{"type": "string", "format": "date"},
			},
		}),
	})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return registry
}

func TestRebuildInstallsSnapshotAndReportsFailures(t *testing.T) {
	registry := newRegistry(t, fstest.MapFS{
		"notes/first.md":   {Data: []byte("---\ntitle: First\npubDate: 2024-02-01\n---\nbody\n")},
		"notes/undated.md": {Data: []byte("---\ntitle: Undated\n---\nbody\n")},
	})

	var result RebuildResult
	err := NewRebuildContentHandler(registry, nil, nil).Execute(context.Background(), RebuildContentCommand{
		ResultCallback: func(r RebuildResult) { result = r },
	})
	if len(collections.AsBuildErrors(err)) != 1 {
		t.Fatalf("expected one build failure in error, got %v", err)
	}
	if result.Snapshot == nil || result.Snapshot.Len("notes") != 1 {
		t.Fatalf("expected snapshot with one valid entry, got %+v", result.Snapshot)
	}
	if registry.Current() != result.Snapshot {
		t.Fatalf("expected rebuilt snapshot to be installed")
	}
	if len(result.Failures) != 1 || result.Failures[0].FilePath != "notes/undated.md" {
		t.Fatalf("unexpected failures %v", result.Failures)
	}
	if result.Artifacts != nil {
		t.Fatalf("no artifacts expected without an output dir")
	}
}

func TestRebuildWritesArtifactsWhenOutputDirSet(t *testing.T) {
	registry := newRegistry(t, fstest.MapFS{
		"notes/first.md": {Data: []byte("---\ntitle: First\npubDate: 2024-02-01\n---\nbody\n")},
	})

	var calls []string
	writer := func(_ context.Context, outputDir string, snapshot *collections.Snapshot, force bool) (generator.WriteResult, error) {
		if snapshot == nil {
			t.Fatalf("writer received nil snapshot")
		}
		calls = append(calls, outputDir)
		return generator.WriteResult{Files: []string{"rss.xml"}, Skipped: !force}, nil
	}

	var result RebuildResult
	err := NewRebuildContentHandler(registry, writer, nil).Execute(context.Background(), RebuildContentCommand{
		OutputDir:      " dist ",
		Force:          true,
		ResultCallback: func(r RebuildResult) { result = r },
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(calls) != 1 || calls[0] != "dist" {
		t.Fatalf("expected one write to dist, got %v", calls)
	}
	if result.Artifacts == nil || result.Artifacts.Skipped || len(result.Artifacts.Files) != 1 {
		t.Fatalf("unexpected artifacts %+v", result.Artifacts)
	}
}

func TestRebuildRequiresWriterForOutputDir(t *testing.T) {
	registry := newRegistry(t, fstest.MapFS{})

	err := NewRebuildContentHandler(registry, nil, nil).Execute(context.Background(), RebuildContentCommand{OutputDir: "dist"})
	if !errors.Is(err, ErrWriterMissing) {
		t.Fatalf("expected ErrWriterMissing, got %v", err)
	}
}

func TestRebuildWithoutRegistry(t *testing.T) {
	err := NewRebuildContentHandler(nil, nil, nil).Execute(context.Background(), RebuildContentCommand{})
	if !errors.Is(err, ErrRebuilderMissing) {
		t.Fatalf("expected ErrRebuilderMissing, got %v", err)
	}
}

func TestRebuildCronSchedule(t *testing.T) {
	registry := newRegistry(t, fstest.MapFS{
		"notes/first.md": {Data: []byte("---\ntitle: First\npubDate: 2024-02-01\n---\nbody\n")},
	})
	handler := NewRebuildContentHandler(registry, nil, nil)
	if got := handler.CronOptions().Expression; got != DefaultRebuildCron {
		t.Fatalf("expected default schedule, got %q", got)
	}

	scheduled := handler.WithCronExpression(" */15 * * * * ")
	if got := scheduled.CronOptions().Expression; got != "*/15 * * * *" {
		t.Fatalf("unexpected schedule %q", got)
	}
	if handler.CronOptions().Expression != DefaultRebuildCron {
		t.Fatalf("WithCronExpression must not mutate the original handler")
	}

	if err := scheduled.CronHandler()(); err != nil {
		t.Fatalf("cron run: %v", err)
	}
	if registry.Current() == nil {
		t.Fatalf("cron run should install a snapshot")
	}
}
