package collections

import (
	"context"
	"fmt"
	"io/fs"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/internetdrew/portfolio-v3/internal/logging"
	"github.com/internetdrew/portfolio-v3/internal/markdown"
	"github.com/internetdrew/portfolio-v3/internal/validation"
	"github.com/internetdrew/portfolio-v3/pkg/interfaces"
)

// BuildObserver receives per-collection build totals.
type BuildObserver interface {
	ObserveBuild(collection string, entries, failures int)
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger. Defaults to a no-op logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithConcurrency bounds how many documents are validated at once.
func WithConcurrency(limit int) Option {
	return func(r *Registry) {
		if limit > 0 {
			r.concurrency = limit
		}
	}
}

// WithObserver reports build totals to observer.
func WithObserver(observer BuildObserver) Option {
	return func(r *Registry) {
		r.observer = observer
	}
}

// Registry owns the collection definitions and the last built snapshot.
type Registry struct {
	loader      *markdown.Loader
	collections []compiledCollection
	concurrency int
	logger      interfaces.Logger
	observer    BuildObserver

	buildMu sync.Mutex
	current atomic.Pointer[Snapshot]
}

// NewRegistry compiles every collection schema up front. An invalid
// definition is a configuration error and fails immediately.
func NewRegistry(filesystem fs.FS, defs []Collection, opts ...Option) (*Registry, error) {
	if filesystem == nil {
		return nil, fmt.Errorf("%w: content filesystem is nil", ErrCollectionInvalid)
	}
	compiled, err := compileCollections(defs)
	if err != nil {
		return nil, err
	}
	r := &Registry{
		loader:      markdown.NewLoader(filesystem),
		collections: compiled,
		concurrency: runtime.GOMAXPROCS(0),
		logger:      logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Collections returns the declared collection definitions in name order.
func (r *Registry) Collections() []Collection {
	out := make([]Collection, 0, len(r.collections))
	for _, def := range r.collections {
		out = append(out, def.Collection)
	}
	return out
}

// Current returns the last snapshot installed by Rebuild, or nil before the
// first successful build.
func (r *Registry) Current() *Snapshot {
	return r.current.Load()
}

// Rebuild runs Build and installs the resulting snapshot. Invalid entries do
// not block the swap: they are excluded and reported through the returned
// error. Context and filesystem failures leave the current snapshot in place.
func (r *Registry) Rebuild(ctx context.Context) (*Snapshot, error) {
	snapshot, err := r.Build(ctx)
	if snapshot != nil {
		r.current.Store(snapshot)
	}
	return snapshot, err
}

type fileResult struct {
	entry Entry
	err   *BuildError
}

// Build scans and validates every collection. Each document is independent,
// so documents are processed concurrently. The snapshot always contains the
// valid entries; a BuildErrors value lists every rejected document. A nil
// snapshot means the build itself failed (cancelled context, unreadable
// directory).
func (r *Registry) Build(ctx context.Context) (*Snapshot, error) {
	r.buildMu.Lock()
	defer r.buildMu.Unlock()

	names := make([]string, 0, len(r.collections))
	entries := make(map[string][]Entry, len(r.collections))
	var failures BuildErrors

	for _, def := range r.collections {
		results, err := r.buildCollection(ctx, def)
		if err != nil {
			return nil, fmt.Errorf("build collection %s: %w", def.Name, err)
		}

		valid := make([]Entry, 0, len(results))
		failed := 0
		for _, res := range results {
			if res.err != nil {
				failed++
				failures = append(failures, res.err)
				logging.WithEntryContext(r.logger, def.Name, res.err.FilePath, "validate").
					Error("content.entry.invalid", "error", res.err.Error(), "fields", res.err.Fields())
				continue
			}
			valid = append(valid, res.entry)
		}
		sort.Slice(valid, func(i, j int) bool { return valid[i].ID < valid[j].ID })

		names = append(names, def.Name)
		entries[def.Name] = valid
		if r.observer != nil {
			r.observer.ObserveBuild(def.Name, len(valid), failed)
		}
		logging.WithEntryContext(r.logger, def.Name, "", "build").
			Debug("content.collection.built", "entries", len(valid), "failures", failed)
	}

	snapshot := newSnapshot(names, entries)
	if len(failures) > 0 {
		return snapshot, failures
	}
	return snapshot, nil
}

func (r *Registry) buildCollection(ctx context.Context, def compiledCollection) ([]fileResult, error) {
	paths, err := r.loader.Discover(ctx, def.Base, def.Pattern)
	if err != nil {
		return nil, err
	}

	results := make([]fileResult, len(paths))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.concurrency)
	for i, filePath := range paths {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			results[i] = r.buildFile(groupCtx, def, filePath)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Registry) buildFile(ctx context.Context, def compiledCollection, filePath string) fileResult {
	fail := func(issues []validation.ValidationIssue, cause error) fileResult {
		return fileResult{err: &BuildError{
			Collection: def.Name,
			FilePath:   filePath,
			Issues:     issues,
			Cause:      cause,
		}}
	}

	doc, err := r.loader.LoadFile(ctx, def.Base, filePath)
	if err != nil {
		return fail(nil, err)
	}
	if err := def.schema.Validate(doc.FrontMatter); err != nil {
		return fail(validation.Issues(err), err)
	}
	entry, issues := buildEntry(def, doc)
	if len(issues) > 0 {
		return fail(issues, nil)
	}
	return fileResult{entry: entry}
}
