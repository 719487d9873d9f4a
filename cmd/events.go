package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/glbter/stock-portfolio/config"
	"github.com/glbter/stock-portfolio/events/rabbit"
)

var errNoRabbitURL = errors.New("rabbit url is empty")

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Work with published portfolio snapshots",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "tail",
		Short: "Consume portfolio snapshots and log them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return ExecuteTail(ctx, cfg)
		},
	})

	return cmd
}

func ExecuteTail(ctx context.Context, cfg *config.Config) error {
	logger := InitLogger(cfg.LogLevel)
	defer logger.Sync()

	if cfg.RabbitURL == "" {
		return errNoRabbitURL
	}

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

	client := rabbit.NewSnapshotClient(ch, cfg.SnapshotQueue)
	if err := client.DeclareQueue(); err != nil {
		return err
	}

	msgs, err := client.ReceiveSnapshots()
	if err != nil {
		return err
	}

	logger.Info("consumer is starting", zap.String("queue", cfg.SnapshotQueue))

	return consumeSnapshots(ctx, msgs, logger)
}

// consumeSnapshots logs every snapshot until ctx is done or the delivery channel closes.
func consumeSnapshots(ctx context.Context, msgs <-chan amqp.Delivery, logger *zap.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}

			logger := logger.With(zap.String("cid", msg.CorrelationId))

			snapshot, err := rabbit.DecodeSnapshot(msg)
			if err != nil {
				logger.Error(err.Error())
				if err := msg.Reject(false); err != nil {
					logger.Error(fmt.Errorf("reject snapshot: %w", err).Error())
				}
				continue
			}

			logger.Info("portfolio snapshot",
				zap.String("portfolio_id", snapshot.PortfolioID),
				zap.Float64("amount", snapshot.Amount),
				zap.Float64("total_value", snapshot.TotalValue),
				zap.Time("generated_at", snapshot.GeneratedAt),
			)

			if err := msg.Ack(false); err != nil {
				logger.Error(fmt.Errorf("acknowledge snapshot: %w", err).Error())
			}
		}
	}
}
