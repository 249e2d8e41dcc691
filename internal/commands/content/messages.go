package contentcmd

import (
	"github.com/internetdrew/portfolio-v3/internal/collections"
	"github.com/internetdrew/portfolio-v3/internal/generator"
)

const rebuildContentMessageType = "site.content.rebuild"

// RebuildResult describes one rebuild.
type RebuildResult struct {
	Snapshot  *collections.Snapshot
	Failures  collections.BuildErrors
	// Artifacts is only set when OutputDir was given.
	Artifacts *generator.WriteResult
}

// RebuildContentCommand rebuilds every collection and installs the new
// snapshot. With OutputDir set the sitemap, feeds and robots.txt are written
// as well.
type RebuildContentCommand struct {
	OutputDir      string              `json:"output_dir,omitempty"`
	Force          bool                `json:"force,omitempty"`
	ResultCallback func(RebuildResult) `json:"-"`
}

// Type implements command.Message.
func (RebuildContentCommand) Type() string { return rebuildContentMessageType }

// Validate implements command.Message.
func (RebuildContentCommand) Validate() error { return nil }
