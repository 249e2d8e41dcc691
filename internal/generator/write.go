package generator

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"sort"
	"time"

	"github.com/internetdrew/portfolio-v3/internal/collections"
	"github.com/internetdrew/portfolio-v3/internal/logging"
	"github.com/internetdrew/portfolio-v3/pkg/interfaces"
)

const (
	SitemapFile = "sitemap.xml"
	RobotsFile  = "robots.txt"
	FeedFile    = "rss.xml"
)

// WriteOption configures Write.
type WriteOption func(*writeConfig)

type writeConfig struct {
	force  bool
	now    func() time.Time
	logger interfaces.Logger
}

// WithForce rewrites every artifact even when the snapshot is unchanged.
func WithForce(force bool) WriteOption {
	return func(cfg *writeConfig) {
		cfg.force = force
	}
}

// WithClock overrides time.Now for lastBuildDate and manifest stamps.
func WithClock(now func() time.Time) WriteOption {
	return func(cfg *writeConfig) {
		if now != nil {
			cfg.now = now
		}
	}
}

// WithLogger sets the logger used while writing.
func WithLogger(logger interfaces.Logger) WriteOption {
	return func(cfg *writeConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WriteResult lists the artifacts written by one Write call.
type WriteResult struct {
	Files   []string
	Skipped bool
	Digest  string
}

// Render builds every artifact for snapshot keyed by output path: the
// sitemap, robots.txt, the site-wide feed and one feed per collection.
func Render(site Site, snapshot *collections.Snapshot, generatedAt time.Time) (map[string][]byte, error) {
	if snapshot == nil {
		return nil, errors.New("generator: snapshot is nil")
	}
	all := snapshot.All()
	artifacts := map[string][]byte{}

	sitemap, err := BuildSitemap(site.BaseURL, all, generatedAt)
	if err != nil {
		return nil, err
	}
	artifacts[SitemapFile] = []byte(sitemap)

	robots, err := BuildRobots(site.BaseURL)
	if err != nil {
		return nil, err
	}
	artifacts[RobotsFile] = []byte(robots)

	feed, err := BuildRSS(site, "", all, generatedAt)
	if err != nil {
		return nil, err
	}
	artifacts[FeedFile] = []byte(feed)

	for _, name := range snapshot.Names() {
		entries, err := snapshot.Entries(name)
		if err != nil {
			return nil, err
		}
		collectionFeed, err := BuildRSS(site, name, entries, generatedAt)
		if err != nil {
			return nil, err
		}
		artifacts[path.Join(name, FeedFile)] = []byte(collectionFeed)
	}
	return artifacts, nil
}

// Write renders the artifacts of snapshot into outputDir. When the previous
// manifest recorded the same snapshot digest and the same file set, nothing
// is rewritten.
func Write(ctx context.Context, outputDir string, site Site, snapshot *collections.Snapshot, opts ...WriteOption) (WriteResult, error) {
	cfg := writeConfig{now: time.Now, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(&cfg)
	}

	writer, err := newDirWriter(outputDir)
	if err != nil {
		return WriteResult{}, err
	}
	if snapshot == nil {
		return WriteResult{}, errors.New("generator: snapshot is nil")
	}

	generatedAt := cfg.now()
	digest := snapshot.Digest()
	artifacts, err := Render(site, snapshot, generatedAt)
	if err != nil {
		return WriteResult{}, err
	}
	paths := make([]string, 0, len(artifacts))
	for name := range artifacts {
		paths = append(paths, name)
	}
	sort.Strings(paths)

	if !cfg.force {
		previous, err := loadManifest(ctx, writer)
		if err != nil {
			cfg.logger.Warn("generator.manifest.unreadable", "error", err)
		}
		if previous != nil && previous.Digest == digest && len(previous.Files) == len(paths) && previous.covers(paths) {
			cfg.logger.Info("generator.write.skipped", "digest", digest)
			return WriteResult{Skipped: true, Digest: digest}, nil
		}
	}

	manifest := newBuildManifest(digest, generatedAt)
	for _, name := range paths {
		if err := writer.WriteFile(ctx, name, artifacts[name]); err != nil {
			return WriteResult{}, err
		}
		manifest.record(name, artifacts[name])
		cfg.logger.Debug("generator.write.file", "path", name, "bytes", len(artifacts[name]))
	}

	encoded, err := manifest.marshal()
	if err != nil {
		return WriteResult{}, err
	}
	if err := writer.WriteFile(ctx, manifestFileName, encoded); err != nil {
		return WriteResult{}, err
	}
	cfg.logger.Info("generator.write.completed", "files", len(paths), "digest", digest)
	return WriteResult{Files: paths, Digest: digest}, nil
}

func loadManifest(ctx context.Context, writer artifactWriter) (*buildManifest, error) {
	data, err := writer.ReadFile(ctx, manifestFileName)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return parseManifest(data)
}
