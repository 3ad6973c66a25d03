package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yonagi/bridgen/config"
	"github.com/yonagi/bridgen/cui"
	"github.com/yonagi/bridgen/gen"
	"github.com/yonagi/bridgen/idl"
	"github.com/yonagi/bridgen/idl/compile"
	"github.com/yonagi/bridgen/logger"
	"github.com/yonagi/bridgen/meta"
	"github.com/yonagi/bridgen/model"
	"github.com/yonagi/bridgen/present"
	"github.com/yonagi/bridgen/present/json"
	"github.com/yonagi/bridgen/present/table"
)

type command struct {
	*cobra.Command

	flags *flags
	ui    cui.UI
}

func newCommand(flags *flags, ui cui.UI) *command {
	cmd := &cobra.Command{
		Use:  meta.AppName,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case flags.meta.version:
				printVersion(cmd.OutOrStdout())
				return nil
			case len(args) != 0:
				return errors.Errorf("unknown command %q", args[0])
			default:
				printUsage(cmd)
				return nil
			}
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	bindFlags(cmd.PersistentFlags(), flags, ui.Writer())
	cmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		cmd.PersistentFlags().Usage()
	})
	cmd.SetOut(ui.Writer())
	c := &command{cmd, flags, ui}
	c.registerCommands()
	return c
}

func (c *command) registerCommands() {
	c.AddCommand(
		newGenerateCommand(c.flags, c.ui),
		newDescribeCommand(c.flags, c.ui),
	)
}

// runFunc is a common entrypoint for Run func.
func runFunc(
	flags *flags,
	f func(*cobra.Command, *mergedConfig) error,
) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := flags.validate(); err != nil {
			return errors.Wrap(err, "invalid flag condition")
		}

		switch {
		case flags.meta.version:
			printVersion(cmd.OutOrStdout())
			return nil
		case flags.meta.help:
			printUsage(cmd)
			return nil
		}

		// Pass Flags instead of LocalFlags because the config is merged
		// with common and local flags.
		cfg, err := mergeConfig(cmd.Flags(), flags)
		if err != nil {
			if err, ok := err.(*config.ValidationError); ok {
				printUsage(cmd)
				return err
			}
			return errors.Wrap(err, "failed to merge command line flags and config files")
		}

		if cfg.verbose {
			logger.SetOutput(os.Stderr)
		}

		err = f(cmd, cfg)
		if err == nil {
			return nil
		}
		if _, ok := err.(*config.ValidationError); ok {
			printUsage(cmd)
		}
		return err
	}
}

func newGenerateCommand(flags *flags, ui cui.UI) *cobra.Command {
	cmd := &cobra.Command{
		Use: "generate",
		RunE: runFunc(flags, func(cmd *cobra.Command, cfg *mergedConfig) error {
			if cfg.Meta.ColoredOutput {
				ui = cui.NewColored(ui)
			}
			if err := runGenerate(context.Background(), cfg, ui); err != nil {
				return errors.Wrap(err, "failed to generate the dispatch artifacts")
			}
			return nil
		}),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		cmd.Flags().Usage()
	})
	return cmd
}

func newDescribeCommand(flags *flags, ui cui.UI) *cobra.Command {
	cmd := &cobra.Command{
		Use: "describe",
		RunE: runFunc(flags, func(cmd *cobra.Command, cfg *mergedConfig) error {
			if cfg.Meta.ColoredOutput {
				ui = cui.NewColored(ui)
			}
			if err := runDescribe(cfg, ui, flags.describe.format); err != nil {
				return errors.Wrap(err, "failed to describe the schema set")
			}
			return nil
		}),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	bindDescribeFlags(cmd.LocalFlags(), flags, ui.Writer())
	cmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		cmd.LocalFlags().Usage()
	})
	return cmd
}

// loadSchemaSet parses the schema directory and runs the binding pass
// every command consumes.
func loadSchemaSet(cfg *mergedConfig) (*model.Registry, *model.Analyzer, []model.Binding, []*idl.File, error) {
	files, err := idl.Load(cfg.Schema.Dir, cfg.Schema.Primary)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	reg := model.NewRegistry(files)
	if len(reg.Services) == 0 {
		return nil, nil, nil, nil, errors.New("the schema set does not define any service")
	}
	a := model.NewAnalyzer(reg)
	bindings := model.Bind(reg, a, cfg.Output.Tag)
	return reg, a, bindings, files, nil
}

func runGenerate(ctx context.Context, cfg *mergedConfig, ui cui.UI) error {
	reg, a, bindings, files, err := loadSchemaSet(cfg)
	if err != nil {
		return err
	}

	// The reference compiler is the gatekeeper: artifacts are never
	// produced from a schema set a proto toolchain would reject.
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	fds, err := compile.Compile(ctx, cfg.Schema.Dir, names)
	if err != nil {
		return err
	}
	for _, svc := range reg.Services {
		if !fds.HasSymbol(svc.FullName()) {
			logger.Warnf("service '%s' is missing from the compiled set", svc.FullName())
		}
	}

	written, err := gen.Generate(reg, a, bindings, gen.Options{
		OutDir:  cfg.Output.Dir,
		Package: cfg.Output.Package,
		Tag:     cfg.Output.Tag,
		Runtime: cfg.Output.Runtime,
	})
	if err != nil {
		return err
	}
	for _, name := range written {
		ui.Output(name)
	}
	return nil
}

// bindingsView is shaped for the table presenter: the slices zip into rows.
type bindingsView struct {
	Service  []string `table:"service" json:"service"`
	Method   []string `table:"method" json:"method"`
	Strategy []string `table:"strategy" json:"strategy"`
	Channel  []string `table:"channel" json:"channel"`
}

func runDescribe(cfg *mergedConfig, ui cui.UI, format string) error {
	_, _, bindings, _, err := loadSchemaSet(cfg)
	if err != nil {
		return err
	}

	var view bindingsView
	for _, b := range bindings {
		view.Service = append(view.Service, b.Service.Name)
		view.Method = append(view.Method, b.Method.Name)
		view.Strategy = append(view.Strategy, b.Strategy.String())
		view.Channel = append(view.Channel, b.Channel)
	}

	var p present.Presenter
	switch format {
	case "json":
		p = json.NewPresenter()
	default:
		p = table.NewPresenter()
	}
	out, err := p.Format(&view)
	if err != nil {
		return errors.Wrap(err, "failed to format the dispatch table")
	}
	ui.Output(out)
	return nil
}

func bindFlags(f *pflag.FlagSet, flags *flags, w io.Writer) {
	initFlagSet(f, w)

	f.StringVar(&flags.common.dir, "dir", ".", "the directory the schema files live in")
	f.StringVar(&flags.common.primary, "primary", "", "the schema file that anchors the set")
	f.StringVarP(&flags.common.out, "out", "o", ".", "the directory the artifacts are written into")
	f.StringVar(&flags.common.pkg, "package", "", "the package name of the generated files (derived from --out if empty)")
	f.StringVar(&flags.common.tag, "tag", "grpc", "the tag derived channel names start with")
	f.StringVar(&flags.common.runtime, "runtime", "", "the import path the generated code resolves the runtime packages under")

	f.BoolVar(&flags.meta.verbose, "verbose", false, "verbose output")
	f.BoolVarP(&flags.meta.version, "version", "v", false, "display version and exit")
	f.BoolVarP(&flags.meta.help, "help", "h", false, "display help text and exit")

	// Sub-command flags are bound here so the parser sees them; the
	// sub-commands re-bind them on their local sets for help output.
	f.StringVar(&flags.describe.format, "format", "table", `the output format, one of "table" or "json"`)
	if err := f.MarkHidden("format"); err != nil {
		panic(fmt.Sprintf("failed to mark format as hidden: %s", err))
	}
}

func bindDescribeFlags(f *pflag.FlagSet, flags *flags, w io.Writer) {
	initFlagSet(f, w)
	f.StringVar(&flags.describe.format, "format", "table", `the output format, one of "table" or "json"`)
}

func initFlagSet(f *pflag.FlagSet, w io.Writer) {
	f.SortFlags = false
	f.SetOutput(w)
	f.Usage = usageFunc(w, f)
}

// usageFunc is the generator for usage output.
func usageFunc(out io.Writer, f *pflag.FlagSet) func() {
	return func() {
		printVersion(out)
		var buf bytes.Buffer
		w := tabwriter.NewWriter(&buf, 0, 8, 8, ' ', tabwriter.TabIndent)
		f.VisitAll(func(f *pflag.Flag) {
			if f.Hidden {
				return
			}
			cmd := "--" + f.Name
			if f.Shorthand != "" {
				cmd += ", -" + f.Shorthand
			}
			name, _ := pflag.UnquoteUsage(f)
			if name != "" {
				cmd += " " + name
			}
			usage := f.Usage
			if f.DefValue != "" {
				usage += fmt.Sprintf(` (default "%s")`, f.DefValue)
			}
			fmt.Fprintf(w, "        %s\t%s\n", cmd, usage)
		})
		w.Flush()
		fmt.Fprintf(out, usageFormat, meta.AppName, buf.String())
	}
}

const usageFormat = `
Usage: %s <command> [flags]

Commands:
        generate        emit the dispatch artifacts for a schema set
        describe        show how each RPC will be dispatched

Flags:
%s
`
