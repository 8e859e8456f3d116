package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/syssam/kodgen/compiler/gen/macro"
)

func newMacrosCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "macros",
		Short: "Write " + macro.MacrosFileName + " to the output directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.settings(cmd, nil)
			if err != nil {
				return err
			}
			if s.Output.Dir == "" {
				return errors.New("no output directory, set --output or output.dir")
			}
			p, err := newPipeline(s, opts.logger(cmd))
			if err != nil {
				return err
			}
			if err := macro.WriteMacrosFile(s.Output.Dir, p.parser.Settings().Macros); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(s.Output.Dir, macro.MacrosFileName))
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory")
	return cmd
}
