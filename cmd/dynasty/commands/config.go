package commands

import (
	"encoding/json"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/dynasty/config"
	"github.com/teranos/dynasty/errors"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage dynasty configuration",
	Long: `Display and manage dynasty configuration (dynasty.toml).

Examples:
  dynasty config show                 # Effective configuration as TOML
  dynasty config show --format json   # ... as JSON
  dynasty config init                 # Write dynasty.toml with defaults
  dynasty config validate             # Check dynasty.toml for errors and unknown keys`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	Long:  "Display the configuration after merging defaults, dynasty.toml and DYNASTY_* environment variables",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a dynasty.toml with default values",
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long:  "Validate dynasty.toml strictly, reporting keys dynasty does not know",
	RunE:  runConfigValidate,
}

var (
	configFormat string
	configForce  bool
)

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")

	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configInitCmd)
	ConfigCmd.AddCommand(configValidateCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	out := cmd.OutOrStdout()

	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Fprintln(out, string(data))

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Fprintf(out, "# dynasty configuration\n%s", data)

	case "toml":
		data, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "# dynasty configuration\n%s", data)

	default:
		return errors.Newf("unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.FileName
	}
	if err := config.Save(path, config.Defaults(), configForce); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote %s\n", pterm.Green("✓"), path)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	path := configPath
	if path == "" {
		path = config.FindProjectConfig()
	}
	if path == "" {
		// Defaults plus environment only.
		if _, err := config.Load(""); err != nil {
			return errors.Wrap(err, "configuration validation failed")
		}
		fmt.Fprintf(out, "%s No %s found; defaults are valid\n", pterm.Green("✓"), config.FileName)
		return nil
	}

	unknown, err := config.ValidateFile(path)
	if err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	if _, err := config.Load(path); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	if len(unknown) > 0 {
		for _, key := range unknown {
			fmt.Fprintf(out, "%s Unknown key %s\n", pterm.Yellow("⚠"), key)
		}
		return errors.WithHint(
			errors.Newf("%s has %d unknown key%s", path, len(unknown), plural(len(unknown), "", "s")),
			"see 'dynasty config show' for the supported keys",
		)
	}

	fmt.Fprintf(out, "%s Configuration is valid (%s)\n", pterm.Green("✓"), path)
	return nil
}
