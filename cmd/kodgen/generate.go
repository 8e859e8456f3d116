package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/syssam/kodgen/compiler"
)

func newGenerateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [path...]",
		Short: "Generate code for the given files and directories",
		Long: `Generate code for every supported file of the given paths, plus those of the
settings file. Files whose output is newer than the source are skipped unless
--force is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.settings(cmd, args)
			if err != nil {
				return err
			}
			p, err := newPipeline(s, opts.logger(cmd))
			if err != nil {
				return err
			}
			report := p.run(cmd.Context())
			printReport(cmd.OutOrStdout(), report)
			if opts.report != "" {
				if err := compiler.WriteSummary(opts.report, report); err != nil {
					return err
				}
			}
			if !report.Success() {
				return fmt.Errorf("generation failed with %d error(s)", len(report.Errors))
			}
			return nil
		},
	}
	addRunFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.report, "report", "", "write a run summary (.yaml, .msgpack)")
	return cmd
}

func printReport(w io.Writer, r *compiler.Report) {
	for _, e := range r.Errors {
		fmt.Fprintf(w, "error: %v\n", e)
	}
	fmt.Fprintf(w, "generated %d, up to date %d, errors %d (%s)\n",
		len(r.Generated), len(r.UpToDate), len(r.Errors), r.Duration.Round(time.Millisecond))
}
