package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/fieldmap/pkg/config"
	"github.com/getmockd/fieldmap/pkg/crmclient"
	"github.com/getmockd/fieldmap/pkg/logging"
	"github.com/getmockd/fieldmap/pkg/mapping"
	"github.com/getmockd/fieldmap/pkg/service"
	"github.com/getmockd/fieldmap/pkg/store"
	"github.com/getmockd/fieldmap/pkg/store/file"
	"github.com/getmockd/fieldmap/pkg/store/memory"
)

// app is everything a command needs once configuration is resolved.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	store   store.MappingStore
	svc     *service.Service
	closers []func() error
}

// appOptions tunes newApp for a single command.
type appOptions struct {
	// overlay applies command-specific flags on top of the global ones.
	overlay func(flags *config.Config)
	// logFile receives a JSON copy of every log record.
	logFile string
}

// loadConfig resolves the configuration for cmd: files and environment
// through config.LoadAll, then the flags the user actually set.
func loadConfig(cmd *cobra.Command, overlay func(*config.Config)) (*config.Config, error) {
	cfg, err := config.LoadAll(config.LoadOptions{ConfigFile: configFile})
	if err != nil {
		return nil, err
	}

	flags := &config.Config{}
	fs := cmd.Flags()
	if fs.Changed("data-dir") {
		flags.DataDir = dataDir
	}
	if fs.Changed("log-level") {
		flags.LogLevel = logLevel
	}
	if fs.Changed("log-format") {
		flags.LogFormat = logFormat
	}
	if overlay != nil {
		overlay(flags)
	}
	config.MergeConfig(cfg, flags, config.SourceFlag)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger logs to the command's stderr.
func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return logging.FromNames(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
}

// newApp loads configuration and builds the logger, store and service.
// Callers must call close when done.
func newApp(cmd *cobra.Command, opts appOptions) (*app, error) {
	cfg, err := loadConfig(cmd, opts.overlay)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: newLogger(cmd, cfg)}
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		a.closers = append(a.closers, f.Close)
		a.log = logging.Tee(a.log, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: logging.ParseLevel(cfg.LogLevel),
		}))
	}

	switch store.ParseBackend(cfg.Store) {
	case store.BackendMemory:
		a.store = memory.New()
	default:
		fs := file.New(store.Config{Backend: store.BackendFile, DataDir: cfg.DataDir})
		fs.SetLogger(a.log)
		if err := fs.Open(cmd.Context()); err != nil {
			a.close()
			return nil, err
		}
		a.store = fs
	}

	svcOpts := []service.Option{
		service.WithRegistry(mapping.NewRegistry(cfg.EntityTypes...)),
		service.WithLogger(a.log),
		service.WithTimeout(cfg.SourceTimeout),
	}
	if cfg.SourceURL != "" {
		client := crmclient.New(cfg.SourceURL,
			crmclient.WithAPIKey(cfg.SourceAPIKey),
			crmclient.WithTimeout(cfg.SourceTimeout),
		)
		svcOpts = append(svcOpts,
			service.WithSourceCatalog(client),
			service.WithSampleProvider(client),
		)
	}
	a.svc = service.New(a.store, svcOpts...)
	return a, nil
}

func (a *app) close() {
	for _, c := range a.closers {
		_ = c()
	}
}

// entityArg normalizes and checks the entity type argument.
func (a *app) entityArg(arg string) (mapping.EntityType, error) {
	entity := mapping.ParseEntityType(arg)
	if err := a.svc.CheckEntity(entity); err != nil {
		return "", err
	}
	return entity, nil
}
