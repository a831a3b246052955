package main

import (
	"context"
	"fmt"
	"io"

	"github.com/okian/wellness/internal/adapters/healthstore"
	service "github.com/okian/wellness/internal/app"
	"github.com/okian/wellness/internal/config"
	"github.com/okian/wellness/internal/domain/biometric"
	"github.com/okian/wellness/internal/domain/predict"
	"github.com/okian/wellness/pkg/logger"
	"github.com/okian/wellness/pkg/metrics"
	"github.com/spf13/cobra"
)

// cli carries what every subcommand shares once flags are parsed.
type cli struct {
	in  io.Reader
	out io.Writer
	cfg *config.Config
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	c := &cli{in: in, out: out}
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:           "wellness",
		Short:         "Health-data aggregation and wellness recommendations",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(ctx, config.WithPath(configPath))
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if err := logger.SetLevelString(cfg.LogLevel); err != nil {
				logger.Get().Warn(ctx, "invalid log_level; falling back to info",
					logger.String("log_level", cfg.LogLevel), logger.Error(err))
				_ = logger.SetLevelString("info")
			}
			metrics.Configure(
				metrics.WithNamespace(cfg.MetricsNamespace),
				metrics.WithSubsystem(cfg.MetricsSubsystem),
				metrics.WithHistogramBuckets(cfg.LatencyBucketsMS),
			)
			c.cfg = cfg
			return nil
		},
	}
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (overrides WELLNESS_CONFIG)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	cmd.AddCommand(
		newServeCmd(c),
		newAskCmd(c),
		newCaloriesCmd(c),
		newDietCmd(c),
		newSeedCmd(c),
	)
	return cmd
}

// loader returns the model loader, reading ModelDir when configured.
func (c *cli) loader() *predict.Loader {
	if c.cfg.ModelDir == "" {
		return predict.NewLoader()
	}
	return predict.NewLoader(predict.WithDir(c.cfg.ModelDir))
}

func (c *cli) openSamples(ctx context.Context) (*healthstore.DB, error) {
	db, err := healthstore.Open(ctx, c.cfg.SampleDBPath)
	if err != nil {
		return nil, fmt.Errorf("open sample store %s: %w", c.cfg.SampleDBPath, err)
	}
	return db, nil
}

// newService builds a service over db with the configured pipeline settings.
func (c *cli) newService(db *healthstore.DB, opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithLoader(c.loader()),
		service.WithFetchTimeout(c.cfg.FetchTimeout()),
		service.WithFetchConcurrency(c.cfg.FetchConcurrency),
		service.WithWorkerCount(c.cfg.WorkerCount),
		service.WithQueueSize(c.cfg.QueueSize),
		service.WithMaxResults(c.cfg.MaxResults),
	}
	if db != nil {
		base = append(base, service.WithStoreFactory(
			func(_ context.Context, subject string) (biometric.HostStore, error) {
				return db.ForSubject(subject), nil
			}))
	}
	return service.New(append(base, opts...)...)
}
