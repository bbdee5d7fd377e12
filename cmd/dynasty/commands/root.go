package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/dynasty/classgen"
	"github.com/teranos/dynasty/config"
	"github.com/teranos/dynasty/errors"
	"github.com/teranos/dynasty/logger"
	"github.com/teranos/dynasty/version"
)

var (
	configPath string
	verbosity  int
	jsonOutput bool
)

// RootCmd is the dynasty command
var RootCmd = &cobra.Command{
	Use:   "dynasty",
	Short: "Single-parent class inheritance for Go structs",
	Long: `dynasty - class inheritance and a runtime class registry for Go structs.

Annotate a struct with a directive comment and run dynasty (usually via
go generate). Inheriting structs get an unexported base field holding the
parent, and a companion file <file>_dynasty.go implements class.Class and
class.Inherits[Parent].

  //dynasty:class
  type Animal struct{ Name string }

  //dynasty:inherit Animal
  type Dog struct{ Breed string }

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (DYNASTY_* prefix)
3. Project config (./dynasty.toml, searched up directories)
4. Default values

Examples:
  dynasty generate                  # Process the package in the current directory
  dynasty generate ./... --clean    # Process a module, removing stale companions
  dynasty check ./...               # Fail if generated code is out of date
  dynasty tree --format yaml        # Show the declared class hierarchy`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Initialize(jsonOutput, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: dynasty.toml searched up from the working directory)")
	RootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	RootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Machine-readable output: JSON logs, JSON version info")

	RootCmd.AddCommand(GenerateCmd)
	RootCmd.AddCommand(CheckCmd)
	RootCmd.AddCommand(TreeCmd)
	RootCmd.AddCommand(ConfigCmd)
	RootCmd.AddCommand(VersionCmd)
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}

// setup loads configuration, applies its log settings and creates a
// generator from it.
func setup() (*config.Config, *classgen.Generator, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Log.JSON || cfg.Log.Verbosity > verbosity {
		level := verbosity
		if cfg.Log.Verbosity > level {
			level = cfg.Log.Verbosity
		}
		if err := logger.Initialize(jsonOutput || cfg.Log.JSON, level); err != nil {
			return nil, nil, errors.Wrap(err, "failed to initialize logger")
		}
	}

	opts := classgen.OptionsFromConfig(cfg)
	opts.Version = version.Version
	return cfg, classgen.New(opts), nil
}

// processAll loads args and processes every package. Diagnostics from all
// packages are returned together.
func processAll(gen *classgen.Generator, args []string) ([]*classgen.Package, []*classgen.Output, error) {
	pkgs, err := classgen.Load("", args)
	if err != nil {
		return nil, nil, err
	}

	var (
		outputs []*classgen.Output
		diags   []error
	)
	for _, pkg := range pkgs {
		outs, err := gen.ProcessPackage(pkg.Files)
		if err != nil {
			diags = append(diags, err)
			continue
		}
		outputs = append(outputs, outs...)
	}
	if len(diags) > 0 {
		return nil, nil, errors.Join(diags...)
	}
	return pkgs, outputs, nil
}
