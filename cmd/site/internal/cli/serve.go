package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	site "github.com/internetdrew/portfolio-v3"
	"github.com/internetdrew/portfolio-v3/internal/collections"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var (
		watch bool
		addr  string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the content API, contact relay, feeds and metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, cfg, err := opts.module()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return serve(cmd.Context(), module, cfg, watch)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "rebuild collections when content files change")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

// serve builds the registry, then runs the HTTP server (and optionally the
// watcher) until ctx is cancelled.
func serve(ctx context.Context, module *site.Module, cfg site.Config, watch bool) error {
	logger := module.Logger("site.serve")

	snapshot, err := module.Build(ctx)
	if snapshot == nil {
		return fmt.Errorf("initial build: %w", err)
	}
	for _, failure := range site.AsBuildErrors(err) {
		logger.Warn("content.entry.excluded", "path", failure.FilePath, "fields", failure.Fields())
	}

	if cfg.Logging.Level != "debug" && cfg.Logging.Level != "trace" {
		gin.SetMode(gin.ReleaseMode)
	}
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      module.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("http.server.listening", "addr", cfg.Server.Addr, "contact_enabled", module.Contact() != nil)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", cfg.Server.Addr, err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("http.server.shutdown")
		return server.Shutdown(shutdownCtx)
	})
	if watch {
		watcher := module.Watcher(collections.OnRebuild(func(snapshot *collections.Snapshot, err error) {
			if snapshot == nil {
				logger.Error("content.rebuild.failed", "error", err)
				return
			}
			logger.Info("content.rebuild.completed", "digest", snapshot.Digest(), "failures", len(site.AsBuildErrors(err)))
		}))
		group.Go(func() error {
			return watcher.Run(groupCtx)
		})
	}
	return group.Wait()
}
