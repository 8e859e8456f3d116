package main

import (
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/syssam/kodgen/compiler"
	"github.com/syssam/kodgen/compiler/watch"
)

func newWatchCmd(opts *options) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch [path...]",
		Short: "Regenerate whenever a source changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.settings(cmd, args)
			if err != nil {
				return err
			}
			logger := opts.logger(cmd)
			p, err := newPipeline(s, logger)
			if err != nil {
				return err
			}
			w, err := watch.New(s.Manager, p.run)
			if err != nil {
				return err
			}
			w.Debounce = debounce
			w.Logger = logger
			out := cmd.OutOrStdout()
			w.OnReport = func(r *compiler.Report) { printReport(out, r) }

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return w.Run(ctx)
		},
	}
	addRunFlags(cmd, opts)
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "wait for changes to settle")
	return cmd
}
