package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/cottand/boolex/config"
	"github.com/cottand/boolex/expr"
	"github.com/cottand/boolex/internal/log"
	"github.com/cottand/boolex/rewrite"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var logger = expr.Logger(log.DefaultLogger).With("section", "cmd")

type flags struct {
	configPath string
	files      []string
	diff       bool
	labels     bool
	stats      bool
	color      string
	logLevel   int

	rules          []string
	maxIterations  int
	expansionLimit int
	sizeLimit      int
	concurrency    int
}

func (f *flags) register(c *cobra.Command, withRules bool) {
	c.Flags().StringVarP(&f.configPath, "config", "c", "", "YAML configuration file")
	c.Flags().IntVarP(&f.logLevel, "log-level", "l", int(slog.LevelWarn), "log level")
	if withRules {
		c.Flags().StringSliceVarP(&f.rules, "rules", "r", nil, "rules to apply, in order (overrides the configuration), any of "+strings.Join(rewrite.Names(), ", "))
	}
	c.Flags().IntVar(&f.maxIterations, "max-iterations", 0, "iteration cap per node (overrides the configuration)")
	c.Flags().IntVar(&f.expansionLimit, "expansion-limit", 0, "maximum number of rule firings per expression (overrides the configuration)")
	c.Flags().IntVar(&f.sizeLimit, "size-limit", 0, "maximum node count of any intermediate result (overrides the configuration)")
	c.Flags().IntVarP(&f.concurrency, "concurrency", "j", 0, "expressions rewritten in parallel (overrides the configuration)")
	if c.Name() == "config" {
		return
	}
	c.Flags().StringArrayVarP(&f.files, "file", "f", nil, "read expressions line by line from a file, - for stdin")
	c.Flags().BoolVarP(&f.diff, "diff", "d", false, "show the change to every expression inline")
	c.Flags().BoolVar(&f.labels, "labels", false, "prefix every result with where its input was read from")
	c.Flags().BoolVar(&f.stats, "stats", false, "print rewrite counters to stderr when done")
	c.Flags().StringVar(&f.color, "color", "auto", "color output: auto, always or never")
}

// load reads the configuration and applies the flags that were set on top of it
func (f *flags) load(c *cobra.Command) (config.Config, error) {
	log.SetLevel(slog.Level(f.logLevel))

	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return config.Config{}, err
		}
	}
	set := c.Flags().Changed
	if set("rules") {
		cfg.Rules = f.rules
	}
	if set("max-iterations") {
		cfg.MaxIterations = f.maxIterations
	}
	if set("expansion-limit") {
		cfg.ExpansionLimit = f.expansionLimit
	}
	if set("size-limit") {
		cfg.SizeLimit = f.sizeLimit
	}
	if set("concurrency") {
		cfg.Concurrency = f.concurrency
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, errors.Wrap(err, "invalid flags")
	}
	logger.Debug("configuration loaded", "config", fmt.Sprintf("%+v", cfg))
	return cfg, nil
}

func NewSimplifyCmd() *cobra.Command {
	return newRewriteCmd(ModeSimplify, "simplify [expression...]",
		"Simplify expressions with the configured rules", true)
}

func NewDNFCmd() *cobra.Command {
	return newRewriteCmd(ModeDNF, "dnf [expression...]",
		"Convert expressions to disjunctive normal form", false)
}

func NewCNFCmd() *cobra.Command {
	return newRewriteCmd(ModeCNF, "cnf [expression...]",
		"Convert expressions to conjunctive normal form", false)
}

func newRewriteCmd(mode Mode, use, short string, withRules bool) *cobra.Command {
	f := &flags{}
	c := &cobra.Command{
		Use:          use,
		Short:        short,
		Long:         short + ".\n\nExpressions are read from the arguments, else from --file, else from stdin, one per line.",
		SilenceUsage: true,
		RunE: func(c *cobra.Command, args []string) error {
			return f.run(c, mode, args)
		},
	}
	f.register(c, withRules)
	return c
}

func (f *flags) run(c *cobra.Command, mode Mode, args []string) error {
	cfg, err := f.load(c)
	if err != nil {
		return err
	}
	inputs, err := readInputs(args, f.files, c.InOrStdin())
	if err != nil {
		return err
	}
	setColor(useColor(f.color, c.OutOrStdout()))

	stats, err := startStats()
	if err != nil {
		return err
	}
	outputs, failures, err := Process(c.Context(), mode, cfg, inputs)
	if err != nil {
		return err
	}
	printer{out: c.OutOrStdout(), errOut: c.ErrOrStderr(), diff: f.diff, labels: f.labels}.print(outputs)
	if f.stats {
		if err := stats.print(c.ErrOrStderr()); err != nil {
			return err
		}
	}
	if failures.HasError() {
		return errors.Errorf("%d of %d expressions failed", len(failures.Errors()), len(inputs))
	}
	return nil
}

// NewConfigCmd prints the effective configuration, which is a valid configuration file
func NewConfigCmd() *cobra.Command {
	f := &flags{}
	c := &cobra.Command{
		Use:          "config",
		Short:        "Print the effective configuration as YAML",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := f.load(c)
			if err != nil {
				return err
			}
			return cfg.Encode(c.OutOrStdout())
		},
	}
	f.register(c, true)
	return c
}
