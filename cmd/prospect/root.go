package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/prospect/internal/adapters/repository"
	service "github.com/okian/prospect/internal/app"
	"github.com/okian/prospect/internal/config"
	"github.com/okian/prospect/pkg/logger"
	"github.com/okian/prospect/pkg/metrics"
)

// Linker flags set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// state is shared by every subcommand of one invocation.
type state struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	st := &state{}
	root := &cobra.Command{
		Use:           "prospect",
		Short:         "Athlete star-rating service.",
		Long:          `Prospect stores athlete profiles and derives a half-star rating from five weighted sub-scores.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return st.setup(cmd.Context())
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&st.configPath, "config", "", "YAML config file (default $"+config.EnvFile+")")
	root.PersistentFlags().StringVar(&st.logLevel, "log-level", "", "override log_level: debug, info, warn, error")

	root.AddCommand(
		newServeCmd(st),
		newMigrateCmd(st),
		newRecomputeCmd(st),
		newSeedCmd(st),
		newVersionCmd(),
	)
	return root
}

// setup loads configuration and initializes logging and metrics.
func (st *state) setup(ctx context.Context) error {
	path := st.configPath
	if path == "" {
		path = os.Getenv(config.EnvFile)
	}
	cfg, err := config.LoadFile(ctx, path)
	if err != nil {
		return err
	}
	if st.logLevel != "" {
		cfg.LogLevel = st.logLevel
	}

	if err := logger.InitWithFormat(cfg.LogFormat); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	metrics.Configure(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithConstLabels(cfg.MetricsLabels),
		metrics.WithHistogramBuckets(cfg.MetricsLatencyBucketsMS),
	)
	st.cfg = cfg
	return nil
}

// openService opens the configured store and wraps it in a Service.
func (st *state) openService(ctx context.Context) (*service.Service, error) {
	store, err := repository.Open(ctx, st.cfg.DBDriver, st.cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", st.cfg.DBDriver, err)
	}
	return service.New(store,
		service.WithLogger(logger.Get().Named("service")),
		service.WithBackfillWorkers(st.cfg.BackfillWorkers),
		service.WithBackfillQueueSize(st.cfg.BackfillQueueSize),
		service.WithBackfillPageSize(st.cfg.BackfillPageSize),
		service.WithDedupeSize(st.cfg.DedupeSize),
		service.WithMaxPageLimit(st.cfg.MaxPageLimit),
	), nil
}
