package contentcmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	command "github.com/goliatone/go-command"

	"github.com/internetdrew/portfolio-v3/internal/collections"
	"github.com/internetdrew/portfolio-v3/internal/commands"
	"github.com/internetdrew/portfolio-v3/internal/generator"
	"github.com/internetdrew/portfolio-v3/pkg/interfaces"
)

const rebuildOperation = "content.rebuild"

// DefaultRebuildCron is the schedule used when the rebuild runs from cron.
const DefaultRebuildCron = "@hourly"

// ErrRebuilderMissing is returned when no registry is configured.
var ErrRebuilderMissing = errors.New("content command: registry not configured")

// ErrWriterMissing is returned when OutputDir is set without an artifact writer.
var ErrWriterMissing = errors.New("content command: artifact writer not configured")

// Rebuilder rebuilds and installs a snapshot.
type Rebuilder interface {
	Rebuild(ctx context.Context) (*collections.Snapshot, error)
}

// ArtifactWriter writes the generated files for snapshot.
type ArtifactWriter func(ctx context.Context, outputDir string, snapshot *collections.Snapshot, force bool) (generator.WriteResult, error)

var (
	_ command.Commander[RebuildContentCommand] = (*RebuildContentHandler)(nil)
	_ command.CronCommand                      = (*RebuildContentHandler)(nil)
)

// RebuildContentHandler rebuilds collections via the shared command handler.
type RebuildContentHandler struct {
	inner      *commands.Handler[RebuildContentCommand]
	cronConfig command.HandlerConfig
}

// NewRebuildContentHandler binds the handler to the registry and writer.
// Invalid documents do not stop the artifact write; they are reported through
// the result and the returned error.
func NewRebuildContentHandler(rebuilder Rebuilder, writer ArtifactWriter, logger interfaces.Logger, opts ...commands.HandlerOption[RebuildContentCommand]) *RebuildContentHandler {
	exec := func(ctx context.Context, msg RebuildContentCommand) error {
		if rebuilder == nil {
			return ErrRebuilderMissing
		}
		snapshot, buildErr := rebuilder.Rebuild(ctx)
		if snapshot == nil {
			return buildErr
		}
		result := RebuildResult{
			Snapshot: snapshot,
			Failures: collections.AsBuildErrors(buildErr),
		}

		if outputDir := strings.TrimSpace(msg.OutputDir); outputDir != "" {
			if writer == nil {
				return ErrWriterMissing
			}
			written, err := writer(ctx, outputDir, snapshot, msg.Force)
			if err != nil {
				return fmt.Errorf("write artifacts: %w", err)
			}
			result.Artifacts = &written
		}

		if msg.ResultCallback != nil {
			msg.ResultCallback(result)
		}
		return buildErr
	}

	handlerOpts := []commands.HandlerOption[RebuildContentCommand]{
		commands.WithLogger[RebuildContentCommand](logger),
		commands.WithOperation[RebuildContentCommand](rebuildOperation),
		commands.WithTimeout[RebuildContentCommand](0),
		commands.WithMessageFields(func(msg RebuildContentCommand) map[string]any {
			fields := map[string]any{}
			if msg.OutputDir != "" {
				fields["output_dir"] = msg.OutputDir
			}
			if msg.Force {
				fields["force"] = true
			}
			return fields
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RebuildContentHandler{
		inner:      commands.NewHandler(exec, handlerOpts...),
		cronConfig: command.HandlerConfig{Expression: DefaultRebuildCron},
	}
}

// WithCronExpression returns a copy of the handler scheduled by expression.
// Blank expressions keep the current schedule.
func (h *RebuildContentHandler) WithCronExpression(expression string) *RebuildContentHandler {
	clone := *h
	if trimmed := strings.TrimSpace(expression); trimmed != "" {
		clone.cronConfig.Expression = trimmed
	}
	return &clone
}

// Execute satisfies command.Commander[RebuildContentCommand].
func (h *RebuildContentHandler) Execute(ctx context.Context, msg RebuildContentCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CronOptions satisfies command.CronCommand.
func (h *RebuildContentHandler) CronOptions() command.HandlerConfig {
	return h.cronConfig
}

// CronHandler satisfies command.CronCommand. Scheduled runs only refresh the
// snapshot; they never write artifacts.
func (h *RebuildContentHandler) CronHandler() func() error {
	return func() error {
		return h.Execute(context.Background(), RebuildContentCommand{})
	}
}
