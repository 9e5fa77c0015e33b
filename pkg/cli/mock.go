package cli

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/getmockd/fieldmap/pkg/cli/internal/output"
	"github.com/getmockd/fieldmap/pkg/cli/internal/parse"
	"github.com/getmockd/fieldmap/pkg/config"
	"github.com/getmockd/fieldmap/pkg/mockapi"
	"github.com/getmockd/fieldmap/pkg/ratelimit"
)

var (
	mockListen  string
	mockAPIKeys []string
	mockNoAuth  bool
	mockRate    float64
	mockBurst   int
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Run the mock CRM service",
	Long: `Run the in-memory mock CRM service: source record collections (/contacts,
/projects, ...) seeded with sample data, and the target CRM object API
(/crm/v3/objects/{object}). Requests need one of the configured API keys as
a bearer token or X-API-Key header. Data is lost on exit.`,
	Example: `  fieldmap mock
  fieldmap mock --listen :3001 --api-key secret-1,secret-2
  fieldmap mock --no-auth
  fieldmap mock --rate-limit 5 --burst 10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, func(c *config.Config) {
			if cmd.Flags().Changed("listen") {
				c.MockListen = mockListen
			}
		})
		if err != nil {
			return err
		}
		log := newLogger(cmd, cfg)

		keys := cfg.APIKeys
		if cmd.Flags().Changed("api-key") {
			keys = nil
			for _, v := range mockAPIKeys {
				keys = append(keys, parse.SplitTrim(v, ",")...)
			}
		}
		if mockNoAuth {
			keys = nil
		}
		if len(keys) == 0 {
			output.Warn(cmd.ErrOrStderr(), "API key checks are disabled")
		}

		ln, err := net.Listen("tcp", cfg.MockListen)
		if err != nil {
			return fmt.Errorf("mock service: %w", err)
		}
		srv := mockapi.New(ln.Addr().String(), mockOptions(log, keys)...)
		fmt.Fprintf(cmd.OutOrStdout(), "Mock CRM service listening on %s\n", ln.Addr())
		fmt.Fprintf(cmd.OutOrStdout(), "Collections: %v\n", srv.Collections())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Serve(ctx, ln)
	},
}

// mockOptions builds the mock service options shared by mock and serve.
func mockOptions(log *slog.Logger, keys []string) []mockapi.Option {
	opts := []mockapi.Option{
		mockapi.WithLogger(log),
		mockapi.WithAPIKeys(keys...),
	}
	if mockRate > 0 {
		opts = append(opts, mockapi.WithRateLimit(ratelimit.Config{Rate: mockRate, Burst: mockBurst}))
	}
	return opts
}

// addRateLimitFlags registers the mock rate limit flags on cmd.
func addRateLimitFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&mockRate, "rate-limit", 0, "Requests per second allowed per API key (0 disables)")
	cmd.Flags().IntVar(&mockBurst, "burst", 0, "Burst size for --rate-limit (default: the rate)")
}

func init() {
	rootCmd.AddCommand(mockCmd)
	mockCmd.Flags().StringVarP(&mockListen, "listen", "l", config.DefaultMockListen, "Listen address")
	mockCmd.Flags().StringArrayVar(&mockAPIKeys, "api-key", nil, "Accepted API key (repeatable or comma separated; replaces the configured keys)")
	mockCmd.Flags().BoolVar(&mockNoAuth, "no-auth", false, "Accept requests without an API key")
	addRateLimitFlags(mockCmd)
}
