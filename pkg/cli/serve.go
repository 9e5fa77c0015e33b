package cli

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/getmockd/fieldmap/pkg/api"
	"github.com/getmockd/fieldmap/pkg/config"
	"github.com/getmockd/fieldmap/pkg/metrics"
	"github.com/getmockd/fieldmap/pkg/mockapi"
	"github.com/getmockd/fieldmap/pkg/store"
)

var (
	serveListen     string
	serveMockListen string
	serveStore      string
	serveSourceURL  string
	serveWithMock   bool
	serveLogFile    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the mapping HTTP API",
	Long: `Run the mapping HTTP API used by the mapping editor and the batch
transformer. With --with-mock the mock CRM service runs in the same process,
and the mapping API reads its source fields and samples from it.

Metrics for both servers are served on GET /metrics of the mapping API.`,
	Example: `  # Serve on the default address (:5000)
  fieldmap serve

  # Serve with the mock CRM service on :3000 and keep mappings in memory
  fieldmap serve --with-mock --store memory

  # Also write JSON logs to a file
  fieldmap serve --log-file fieldmap.log`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, appOptions{
			overlay: func(c *config.Config) {
				flags := cmd.Flags()
				if flags.Changed("listen") {
					c.Listen = serveListen
				}
				if flags.Changed("mock-listen") {
					c.MockListen = serveMockListen
				}
				if flags.Changed("store") {
					c.Store = serveStore
				}
				if flags.Changed("source-url") {
					c.SourceURL = serveSourceURL
				}
			},
			logFile: serveLogFile,
		})
		if err != nil {
			return err
		}
		defer a.close()

		apiLn, err := net.Listen("tcp", a.cfg.Listen)
		if err != nil {
			return fmt.Errorf("mapping API: %w", err)
		}
		var mockLn net.Listener
		if serveWithMock {
			if mockLn, err = net.Listen("tcp", a.cfg.MockListen); err != nil {
				_ = apiLn.Close()
				return fmt.Errorf("mock service: %w", err)
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServers(ctx, a, apiLn, mockLn, cmd.OutOrStdout())
	},
}

// runServers serves the mapping API on apiLn, and the mock service on
// mockLn when it is not nil, until ctx is canceled or one of them fails.
func runServers(ctx context.Context, a *app, apiLn, mockLn net.Listener, out io.Writer) error {
	m := metrics.New(metrics.NewRegistry())
	if n, ok := a.store.(store.Notifier); ok {
		n.AddChangeListener(func(ev store.ChangeEvent) {
			a.log.Info("mapping changed", "operation", ev.Operation, "entity", ev.Entity, "rules", ev.Rules)
			m.MappingChanged(string(ev.Entity), ev.Operation)
		})
	}

	g, ctx := errgroup.WithContext(ctx)

	srv := api.New(a.svc, apiLn.Addr().String(), api.WithLogger(a.log), api.WithMetrics(m))
	g.Go(func() error {
		return srv.Serve(ctx, apiLn)
	})
	fmt.Fprintf(out, "Mapping API listening on %s\n", apiLn.Addr())

	if mockLn != nil {
		opts := append(mockOptions(a.log, a.cfg.APIKeys), mockapi.WithMetrics(m))
		mock := mockapi.New(mockLn.Addr().String(), opts...)
		g.Go(func() error {
			return mock.Serve(ctx, mockLn)
		})
		fmt.Fprintf(out, "Mock CRM service listening on %s\n", mockLn.Addr())
	}

	return g.Wait()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", config.DefaultListen, "Mapping API listen address")
	serveCmd.Flags().StringVar(&serveMockListen, "mock-listen", config.DefaultMockListen, "Mock service listen address (with --with-mock)")
	serveCmd.Flags().StringVar(&serveStore, "store", string(store.BackendFile), "Mapping store: file or memory")
	serveCmd.Flags().StringVar(&serveSourceURL, "source-url", config.DefaultSourceURL, "Source record API base URL")
	serveCmd.Flags().BoolVar(&serveWithMock, "with-mock", false, "Also run the mock CRM service")
	addRateLimitFlags(serveCmd)
	serveCmd.Flags().StringVar(&serveLogFile, "log-file", "", "Also write JSON logs to this file")
}
