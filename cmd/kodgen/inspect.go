package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/syssam/kodgen/entity"
)

func newInspectCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the entities parsed from a file as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.settings(cmd, nil)
			if err != nil {
				return err
			}
			p, err := newPipeline(s, opts.logger(cmd))
			if err != nil {
				return err
			}
			res, err := p.parser.Parse(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, e := range res.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", e)
			}
			infos := make([]*entity.Info, 0, len(res.Root().Children))
			for _, c := range res.Root().Children {
				infos = append(infos, c.Info())
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(infos); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
