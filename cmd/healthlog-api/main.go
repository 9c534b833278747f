package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MarcoPoloResearchLab/healthlog/backend/internal/config"
	"github.com/MarcoPoloResearchLab/healthlog/backend/internal/database"
	"github.com/MarcoPoloResearchLab/healthlog/backend/internal/history"
	"github.com/MarcoPoloResearchLab/healthlog/backend/internal/logging"
	"github.com/MarcoPoloResearchLab/healthlog/backend/internal/records"
	"github.com/MarcoPoloResearchLab/healthlog/backend/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
)

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "healthlog-api",
		Short: "Health log backend service",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)
	rootCmd.AddCommand(newHistoryCommand())
	return rootCmd
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().Float64("rate-limit", defaults.GetFloat64("http.rate_limit"), "Requests per second allowed on the API (0 disables)")
	cmd.PersistentFlags().Int("rate-burst", defaults.GetInt("http.rate_burst"), "Request burst allowed above the rate limit")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", defaults.GetString("log.format"), "Log format (json, console)")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "http.rate_limit", "rate-limit")
	bindFlag(cmd, "http.rate_burst", "rate-burst")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "log.format", "log-format")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

// openRecordStore opens the database and builds the record store. The returned close
// function releases the connection.
func openRecordStore(appConfig config.AppConfig, logger *zap.Logger) (*records.Service, func() error, error) {
	db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}

	store, err := records.NewService(records.ServiceConfig{
		Database:   db,
		Clock:      time.Now,
		IDProvider: records.NewUUIDProvider(),
		Logger:     logger,
		Guard: records.GuardConfig{
			ConsecutiveFailures: appConfig.BreakerFailures,
			OpenTimeout:         appConfig.BreakerTimeout,
		},
	})
	if err != nil {
		sqlDB.Close()
		return nil, nil, err
	}
	return store, sqlDB.Close, nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel, appConfig.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	store, closeStore, err := openRecordStore(appConfig, logger)
	if err != nil {
		return err
	}
	defer closeStore() //nolint:errcheck

	historyController, err := history.NewController(history.ControllerConfig{
		Source:  store,
		Catalog: history.NewCatalog(appConfig.SymptomKinds, appConfig.MedicationKinds),
		Clock:   time.Now,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	handler, err := server.NewHTTPHandler(server.Dependencies{
		RecordStore:       store,
		History:           historyController,
		Realtime:          server.NewRealtimeDispatcher(),
		Logger:            logger,
		MetricsRegistry:   registry,
		RateLimit:         appConfig.RateLimit,
		RateBurst:         appConfig.RateBurst,
		HeartbeatInterval: appConfig.HeartbeatInterval,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              appConfig.HTTPAddress,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	httpServer.BaseContext = func(net.Listener) context.Context {
		return signalCtx
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
