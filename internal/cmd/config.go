package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/rstgrid/internal/config"
	clierrors "github.com/salmonumbrella/rstgrid/internal/errors"
	"github.com/salmonumbrella/rstgrid/internal/gridtable"
	"github.com/salmonumbrella/rstgrid/internal/output"
)

const configKeysHelp = `Supported keys:
  output         - Default output format (text, json, ndjson/jsonl, table, yaml)
  color          - Default color mode (auto, always, never)
  line_breaks    - Default line break mode (flatten, preserve)
  padding        - Default padding on both sides of cell text
  padding.left   - Default padding left of cell text
  padding.right  - Default padding right of cell text
  error_format   - Default error output format (auto, text, json, yaml)`

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "Manage CLI configuration",
		Long:    `Manage the rstgrid configuration file at ~/.config/rstgrid/config.yaml`,
	}
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigPathCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long:  `Display the current configuration from ~/.config/rstgrid/config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := stdoutFromContext(cmd.Context())
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to format config: %w", err)
			}

			if len(data) == 0 || string(data) == "{}\n" {
				path, _ := config.DefaultConfigPath()
				_, _ = fmt.Fprintf(out, "No configuration file found at %s\n", path)
				_, _ = fmt.Fprintln(out, "\nTo create a config file, use:")
				_, _ = fmt.Fprintln(out, "  rstgrid config set line_breaks preserve")
				return nil
			}

			_, _ = fmt.Fprint(out, string(data))
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value in ~/.config/rstgrid/config.yaml

` + configKeysHelp + `

Examples:
  rstgrid config set output json
  rstgrid config set line_breaks preserve
  rstgrid config set padding 2
  rstgrid config set padding.right 0`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := stdoutFromContext(cmd.Context())
			key := args[0]

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			value, err := setConfigValue(cfg, key, args[1])
			if err != nil {
				return err
			}

			if err := cfg.Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			path, _ := config.DefaultConfigPath()
			_, _ = fmt.Fprintf(out, "Set %s = %s in %s\n", key, value, path)
			return nil
		},
	}
}

// setConfigValue validates value for key, stores it in cfg and returns the
// normalized value.
func setConfigValue(cfg *config.Config, key, value string) (string, error) {
	switch key {
	case "output":
		format, err := output.ParseFormat(value)
		if err != nil {
			return "", invalidValue(key, value, "text", "json", "ndjson", "jsonl", "table", "yaml")
		}
		cfg.Output = string(format)
		return cfg.Output, nil
	case "color":
		if !contains([]string{"auto", "always", "never"}, value) {
			return "", invalidValue(key, value, "auto", "always", "never")
		}
		cfg.Color = value
		return value, nil
	case "line_breaks":
		mode, err := gridtable.ParseLineBreakMode(value)
		if err != nil || strings.TrimSpace(value) == "" {
			return "", invalidValue(key, value, "flatten", "preserve")
		}
		cfg.LineBreaks = mode.String()
		return cfg.LineBreaks, nil
	case "padding", "padding.left", "padding.right":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return "", clierrors.NewUserError(
				fmt.Sprintf("invalid %s %q, must be a whole number", key, value),
				"Use a number of spaces, for example: rstgrid config set padding 1",
			)
		}
		side := strings.TrimPrefix(strings.TrimPrefix(key, "padding"), ".")
		if err := cfg.SetPadding(side, n); err != nil {
			return "", clierrors.WrapUserError(err, fmt.Sprintf("invalid %s", key), "Padding is zero or more spaces")
		}
		return strconv.Itoa(n), nil
	case "error_format":
		if err := validateErrorFormat(value); err != nil || strings.TrimSpace(value) == "" {
			return "", invalidValue(key, value, "auto", "text", "json", "yaml")
		}
		cfg.ErrorFormat = strings.ToLower(strings.TrimSpace(value))
		return cfg.ErrorFormat, nil
	default:
		return "", clierrors.NewUserError(
			fmt.Sprintf("unknown config key %q", key),
			configKeysHelp,
		)
	}
}

func invalidValue(key, value string, valid ...string) error {
	return clierrors.NewUserError(
		fmt.Sprintf("invalid %s %q, must be one of: %s", key, value, strings.Join(valid, ", ")),
		fmt.Sprintf("Run: rstgrid config set %s %s", key, valid[0]),
	)
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Long:  `Display the path to the configuration file`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := stdoutFromContext(cmd.Context())
			path, err := config.DefaultConfigPath()
			if err != nil {
				return fmt.Errorf("failed to determine config path: %w", err)
			}

			_, _ = fmt.Fprintln(out, path)

			if _, err := os.Stat(path); err == nil {
				_, _ = fmt.Fprintln(out, "(file exists)")
			} else if os.IsNotExist(err) {
				_, _ = fmt.Fprintln(out, "(file does not exist)")
			}

			return nil
		},
	}
}

// contains checks if a string slice contains a value
func contains(slice []string, value string) bool {
	for _, v := range slice {
		if v == value {
			return true
		}
	}
	return false
}
