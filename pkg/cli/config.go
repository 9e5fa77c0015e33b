package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/fieldmap/pkg/cli/internal/output"
	"github.com/getmockd/fieldmap/pkg/config"
)

// configValue is one row of `fieldmap config --json`.
type configValue struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show effective configuration with source annotations",
	Long: `Show the effective configuration after merging defaults, config files,
FIELDMAP_* environment variables and flags. Secrets are masked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, nil)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		w := cmd.OutOrStdout()
		if jsonOutput {
			values := make([]configValue, 0, len(config.Keys))
			for _, k := range config.Keys {
				values = append(values, configValue{Key: k, Value: cfg.Value(k), Source: sourceOrDefault(cfg.Source(k))})
			}
			return output.JSON(w, map[string]any{
				"configFile": cfg.ConfigFile,
				"values":     values,
			})
		}

		fmt.Fprintln(w, "Effective Configuration:")
		fmt.Fprintln(w)
		for _, k := range config.Keys {
			fmt.Fprintf(w, "  %-16s %s%s\n", k+":", cfg.Value(k), formatSource(cfg.Source(k)))
		}

		fmt.Fprintln(w)
		fmt.Fprintln(w, "Sources loaded:")
		if globalPath := config.FindGlobalConfig(); globalPath != "" {
			fmt.Fprintf(w, "  • %s (global)\n", globalPath)
		}
		if cfg.ConfigFile != "" {
			fmt.Fprintf(w, "  • %s (local)\n", cfg.ConfigFile)
		}
		return nil
	},
}

func sourceOrDefault(source string) string {
	if source == "" {
		return config.SourceDefault
	}
	return source
}

// formatSource formats a source type for display.
func formatSource(source string) string {
	switch sourceOrDefault(source) {
	case config.SourceDefault:
		return "  (default)"
	case config.SourceEnv:
		return "  (env)"
	case config.SourceGlobal:
		return "  (global config)"
	case config.SourceLocal:
		return "  (local config)"
	case config.SourceFlag:
		return "  (flag)"
	default:
		return ""
	}
}

func init() {
	rootCmd.AddCommand(configCmd)
}
