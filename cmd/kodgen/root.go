package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/syssam/kodgen/compiler"
)

// options are the flags shared by every command.
type options struct {
	config  string
	verbose bool

	output  string
	files   []string
	dirs    []string
	backend string
	pkg     string
	threads int
	force   bool
	report  string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "kodgen",
		Short: "Generate code from annotated C++ headers",
		Long: `kodgen parses headers annotated with KGClass, KGField, ... macros, validates
their properties and generates code for them.

Examples:
  kodgen generate -o generated include/      # generate every header of include/
  kodgen generate --config kodgen.toml       # use a settings file
  kodgen watch --config kodgen.toml          # regenerate on change
  kodgen inspect include/player.h            # dump the parsed entities`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.config, "config", "", "settings file (.toml, .yaml)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug messages")

	root.AddCommand(
		newGenerateCmd(opts),
		newWatchCmd(opts),
		newInspectCmd(opts),
		newMacrosCmd(opts),
	)
	return root
}

// addRunFlags registers the flags of the commands running a generation.
func addRunFlags(cmd *cobra.Command, opts *options) {
	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output directory")
	f.StringSliceVar(&opts.files, "file", nil, "input file, repeatable")
	f.StringSliceVar(&opts.dirs, "dir", nil, "input directory, repeatable")
	f.StringVar(&opts.backend, "backend", "", `generation backend: "macro" or "go"`)
	f.StringVar(&opts.pkg, "package", "", "package of generated Go files")
	f.IntVarP(&opts.threads, "threads", "j", -1, "worker count, 0 for one per CPU")
	f.BoolVarP(&opts.force, "force", "f", false, "regenerate up-to-date files")
}

func (o *options) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// settings loads the settings file, if any, and applies the flags and the
// positional paths on top of it.
func (o *options) settings(cmd *cobra.Command, args []string) (*compiler.Settings, error) {
	s := &compiler.Settings{}
	if o.config != "" {
		loaded, err := compiler.LoadSettings(o.config)
		if err != nil {
			return nil, err
		}
		s = loaded
	}
	for _, a := range args {
		info, err := os.Stat(a)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", a, err)
		}
		if info.IsDir() {
			s.Manager.Directories = append(s.Manager.Directories, a)
		} else {
			s.Manager.Files = append(s.Manager.Files, a)
		}
	}
	s.Manager.Files = append(s.Manager.Files, o.files...)
	s.Manager.Directories = append(s.Manager.Directories, o.dirs...)
	flags := cmd.Flags()
	if flags.Changed("output") {
		s.Output.Dir = o.output
	}
	if flags.Changed("backend") {
		s.Output.Backend = o.backend
	}
	if flags.Changed("package") {
		s.Output.Package = o.pkg
	}
	if flags.Changed("threads") {
		s.ThreadCount = o.threads
	}
	if flags.Changed("force") {
		s.Force = o.force
	}
	// Generated headers must not be read back as sources.
	if s.Output.Dir != "" {
		s.Manager.IgnoredDirectories = append(s.Manager.IgnoredDirectories, s.Output.Dir)
	}
	return s, nil
}
