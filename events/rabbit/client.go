package rabbit

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/glbter/stock-portfolio/entities"
)

const (
	SNAPSHOT_QUEUE = "portfolio_snapshots"
)

// Channel is the part of *amqp.Channel used by the snapshot client.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

func NewSnapshotClient(channel Channel, queue string) *SnapshotClient {
	if queue == "" {
		queue = SNAPSHOT_QUEUE
	}

	return &SnapshotClient{
		channel: channel,
		queue:   queue,
	}
}

// SnapshotClient publishes generated portfolios to a queue and reads them back.
type SnapshotClient struct {
	channel Channel
	queue   string
}

func (c *SnapshotClient) DeclareQueue() error {
	if _, err := c.channel.QueueDeclare(
		c.queue, // name
		true,    // durable
		false,   // delete when unused
		false,   // exclusive
		false,   // noWait
		nil,     // arguments
	); err != nil {
		return fmt.Errorf("declare a queue for portfolio snapshots: %w", err)
	}

	return nil
}

func (c *SnapshotClient) PublishSnapshot(ctx context.Context, snapshot entities.PortfolioSnapshot) error {
	body, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	return c.channel.PublishWithContext(ctx,
		"",      // exchange
		c.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			CorrelationId: snapshot.CID,
			MessageId:     snapshot.PortfolioID,
			Timestamp:     snapshot.GeneratedAt,
			Body:          body,
		})
}

func (c *SnapshotClient) ReceiveSnapshots() (<-chan amqp.Delivery, error) {
	msgs, err := c.channel.Consume(
		c.queue, // queue
		"",      // consumer
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return nil, fmt.Errorf("consume snapshots: %w", err)
	}

	return msgs, nil
}

func DecodeSnapshot(d amqp.Delivery) (entities.PortfolioSnapshot, error) {
	var s entities.PortfolioSnapshot
	if err := json.Unmarshal(d.Body, &s); err != nil {
		return entities.PortfolioSnapshot{}, fmt.Errorf("decode snapshot %s: %w", d.CorrelationId, err)
	}

	return s, nil
}
