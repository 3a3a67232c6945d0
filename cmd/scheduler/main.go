package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/trendfarm/internal/app"
	"github.com/trendfarm/internal/config"
	"github.com/trendfarm/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
	log     *logger.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "trendfarm-scheduler",
		Short: "Background scheduler for trend posts",
		Long: `Runs the trend-post job on a cron schedule.
This daemon should be run as a service for autonomous operation.`,
		RunE:         runScheduler,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file path")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runScheduler(cmd *cobra.Command, args []string) error {
	var err error

	// Load config
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	log = logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	log.Info().Msg("Starting TrendFarm scheduler")

	trend, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer trend.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Health check server for the hosting platform
	health := newHealthServer(healthPort())
	go func() {
		log.Info().Str("addr", health.Addr).Msg("Health check server starting")
		if err := health.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Health server failed")
		}
	}()

	c := cron.New(cron.WithLogger(cronLogger{log}), cron.WithChain(cron.SkipIfStillRunning(cronLogger{log})))

	_, err = c.AddFunc(cfg.Scheduler.PostCron, func() {
		log.Info().Msg("Running scheduled trend post")
		start := time.Now()

		res, err := app.TrendPost(ctx, trend.Discovery, trend.Publisher, cfg.Trends.FallbackTopic, "", log)
		if err != nil {
			log.Error().Err(err).Msg("Scheduled trend post failed")
			return
		}

		log.Info().
			Str("topic", res.Topic).
			Str("path", res.Post.Path).
			Dur("duration", time.Since(start)).
			Msg("Scheduled trend post completed")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule trend post job: %w", err)
	}
	log.Info().Str("cron", cfg.Scheduler.PostCron).Msg("Trend post job scheduled")

	c.Start()
	log.Info().Msg("Scheduler started")

	<-ctx.Done()

	log.Info().Msg("Shutting down scheduler")
	<-c.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return health.Shutdown(shutdownCtx)
}

// cronLogger adapts our logger for cron
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

// healthPort prefers the platform's PORT over the configured port
func healthPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	if cfg.Scheduler.HealthPort != "" {
		return cfg.Scheduler.HealthPort
	}
	return "10000"
}

func newHealthServer(port string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("TrendFarm Scheduler"))
	})

	return &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
