package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	contentcmd "github.com/internetdrew/portfolio-v3/internal/commands/content"
)

var errBuildFailed = errors.New("content build failed")

func newBuildCommand(opts *rootOptions) *cobra.Command {
	var (
		output string
		write  bool
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Validate every collection and optionally write the sitemap and feeds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, cfg, err := opts.module()
			if err != nil {
				return err
			}

			if output == "" && write {
				output = cfg.Generator.OutputDir
			}

			var result contentcmd.RebuildResult
			rebuildErr := module.Rebuild().Execute(cmd.Context(), contentcmd.RebuildContentCommand{
				OutputDir:      output,
				Force:          force,
				ResultCallback: func(r contentcmd.RebuildResult) { result = r },
			})
			if result.Snapshot == nil {
				return fmt.Errorf("build: %w", rebuildErr)
			}
			snapshot, failures := result.Snapshot, result.Failures

			out := cmd.OutOrStdout()
			for _, name := range snapshot.Names() {
				fmt.Fprintf(out, "%s: %d entries\n", name, snapshot.Len(name))
			}
			errOut := cmd.ErrOrStderr()
			for _, failure := range failures {
				fmt.Fprintf(errOut, "invalid %s\n", failure.Error())
				if fields := failure.Fields(); len(fields) > 0 {
					fmt.Fprintf(errOut, "  fields: %s\n", strings.Join(fields, ", "))
				}
			}

			if written := result.Artifacts; written != nil {
				if written.Skipped {
					fmt.Fprintf(out, "artifacts unchanged in %s\n", output)
				} else {
					fmt.Fprintf(out, "wrote %d artifacts to %s\n", len(written.Files), output)
				}
			}

			if len(failures) > 0 {
				return fmt.Errorf("%w: %d invalid documents", errBuildFailed, len(failures))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write sitemap.xml, rss.xml and robots.txt to this directory")
	cmd.Flags().BoolVar(&write, "write", false, "write artifacts to generator.output_dir")
	cmd.Flags().BoolVar(&force, "force", false, "rewrite artifacts even when content is unchanged")
	return cmd
}
