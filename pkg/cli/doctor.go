package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/fieldmap/pkg/cli/internal/output"
	"github.com/getmockd/fieldmap/pkg/cli/internal/ports"
	"github.com/getmockd/fieldmap/pkg/config"
	"github.com/getmockd/fieldmap/pkg/crmclient"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose common setup issues and validate configuration",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// doctorCheck holds the result of a single doctor check.
type doctorCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // "ok", "fail", "info"
	Detail string `json:"detail"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	allPassed := true
	var checks []doctorCheck
	add := func(name, status, detail string) {
		if status == "fail" {
			allPassed = false
		}
		checks = append(checks, doctorCheck{Name: name, Status: status, Detail: detail})
	}

	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		add("config", "fail", err.Error())
		cfg = config.NewDefault()
	} else if cfg.ConfigFile != "" {
		add("config", "ok", cfg.ConfigFile)
	} else {
		add("config", "info", "no config file, using defaults and environment")
	}

	for _, p := range []struct{ name, addr string }{
		{"mapping_api_listen", cfg.Listen},
		{"mock_listen", cfg.MockListen},
	} {
		if ports.IsAvailable(p.addr) {
			add(p.name, "ok", p.addr+" available")
		} else {
			add(p.name, "fail", p.addr+" in use")
		}
	}

	if cfg.Store == "memory" {
		add("data_directory", "info", "memory store, nothing is persisted")
	} else if info, err := os.Stat(cfg.DataDir); err == nil && info.IsDir() {
		add("data_directory", "ok", cfg.DataDir)
	} else {
		add("data_directory", "info", fmt.Sprintf("not found (will be created at %s)", cfg.DataDir))
	}

	if cfg.SourceURL == "" {
		add("source_api", "info", "not configured, built-in catalogs are used")
	} else {
		client := crmclient.New(cfg.SourceURL,
			crmclient.WithAPIKey(cfg.SourceAPIKey),
			crmclient.WithTimeout(cfg.SourceTimeout),
		)
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.SourceTimeout)
		err := client.Health(ctx)
		cancel()
		if err == nil {
			add("source_api", "ok", "reachable at "+cfg.SourceURL)
		} else {
			add("source_api", "info", fmt.Sprintf("unreachable at %s, built-in catalogs are used", cfg.SourceURL))
		}
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		return output.JSON(w, map[string]any{"checks": checks, "allPassed": allPassed})
	}

	fmt.Fprintln(w, "fieldmap doctor")
	fmt.Fprintln(w, "===============")
	fmt.Fprintln(w)
	for _, c := range checks {
		switch c.Status {
		case "ok":
			fmt.Fprintf(w, "  ✓ %s: %s\n", c.Name, c.Detail)
		case "fail":
			fmt.Fprintf(w, "  ✗ %s: %s\n", c.Name, c.Detail)
		default:
			fmt.Fprintf(w, "  • %s: %s\n", c.Name, c.Detail)
		}
	}
	fmt.Fprintln(w)
	if allPassed {
		fmt.Fprintln(w, "All checks passed!")
	} else {
		fmt.Fprintln(w, "Some checks failed. See above for details.")
	}
	return nil
}
