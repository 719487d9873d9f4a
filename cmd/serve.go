package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/glbter/stock-portfolio/config"
	"github.com/glbter/stock-portfolio/events/rabbit"
	"github.com/glbter/stock-portfolio/history"
	portfolioHttp "github.com/glbter/stock-portfolio/http"
	"github.com/glbter/stock-portfolio/portfolio"
	quotesHttp "github.com/glbter/stock-portfolio/quotes/client/http"
	"github.com/glbter/stock-portfolio/quotes/client/yahoo"
	"github.com/glbter/stock-portfolio/strategy"
	"github.com/glbter/stock-portfolio/strategy/repo/csv"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the portfolio HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			if cmd.Flags().Changed("port") {
				cfg.Port, _ = cmd.Flags().GetInt("port")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return ExecuteServe(ctx, cfg)
		},
	}

	cmd.Flags().Int("port", 0, "port to listen on (overrides PORT)")

	return cmd
}

func ExecuteServe(ctx context.Context, cfg *config.Config) error {
	logger := InitLogger(cfg.LogLevel)
	defer logger.Sync()

	if cfg.UsesDemoKey() {
		logger.Warn("API_KEY is not set, using the provider demo key")
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return fmt.Errorf("load strategy catalog: %w", err)
	}

	opts := []portfolio.Option{}
	if cfg.RabbitURL != "" {
		conn, err := amqp.Dial(cfg.RabbitURL)
		if err != nil {
			return fmt.Errorf("connect to RabbitMQ: %w", err)
		}
		defer conn.Close()

		ch, err := conn.Channel()
		if err != nil {
			return fmt.Errorf("open a channel: %w", err)
		}
		defer ch.Close()

		snapshots := rabbit.NewSnapshotClient(ch, cfg.SnapshotQueue)
		if err := snapshots.DeclareQueue(); err != nil {
			return err
		}
		opts = append(opts, portfolio.WithPublisher(snapshots))
		logger.Info("publishing portfolio snapshots", zap.String("queue", cfg.SnapshotQueue))
	}

	store := history.NewStore(rand.New(rand.NewSource(time.Now().UnixNano())))
	service := portfolio.NewService(catalog, newQuoteClient(cfg, logger), store, logger, opts...)

	handler := portfolioHttp.PortfolioHandler{
		Logger:  logger,
		Service: service,
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      portfolioHttp.NewRouter(handler, cfg.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server is starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server is shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

func loadCatalog(cfg *config.Config) (strategy.Catalog, error) {
	if cfg.StrategyCatalogCSV == "" {
		return strategy.DefaultCatalog(), nil
	}

	return csv.CatalogRepo{Path: cfg.StrategyCatalogCSV}.GetCatalog()
}

func newQuoteClient(cfg *config.Config, logger *zap.Logger) portfolio.QuoteClient {
	if cfg.QuoteProvider == config.ProviderYahoo {
		return yahoo.NewClient(cfg.QuoteTimeout, logger)
	}

	return quotesHttp.NewClient(cfg.QuoteURL, cfg.APIKey, cfg.QuoteTimeout, logger)
}
