package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/segmentio/kafka-go"
)

// MessageHandler processes one consumed message.
type MessageHandler interface {
	Topic() string
	Handle(ctx context.Context, key, value []byte) error
}

// Consumer reads a single topic through a consumer group and hands
// messages to a registered handler. Handler errors are logged and the
// message is committed anyway; warmup events are best-effort.
type Consumer struct {
	reader  *kafka.Reader
	handler MessageHandler
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewConsumer creates a Kafka consumer.
func NewConsumer(opts ...ConsumerOption) (*Consumer, error) {
	cfg := &ConsumerConfig{
		MinBytes: 1,
		MaxBytes: 1 << 20,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka consumer: brokers required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka consumer: topic required")
	}
	if cfg.GroupID == "" {
		return nil, fmt.Errorf("kafka consumer: group id required")
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: cfg.MinBytes,
		MaxBytes: cfg.MaxBytes,
	})

	return &Consumer{reader: r, done: make(chan struct{})}, nil
}

// RegisterHandler sets the handler invoked per message.
func (c *Consumer) RegisterHandler(h MessageHandler) {
	c.handler = h
}

// Start consumes until Stop is called or the context ends.
func (c *Consumer) Start() error {
	if c.handler == nil {
		return fmt.Errorf("kafka consumer: no handler registered")
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	go func() {
		defer close(c.done)
		for {
			m, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
					return
				}
				log.Printf("kafka consumer read error: %v", err)
				continue
			}

			if err := c.handler.Handle(ctx, m.Key, m.Value); err != nil {
				log.Printf("kafka handler error topic=%s: %v", c.handler.Topic(), err)
			}
		}
	}()

	return nil
}

// Stop cancels consumption and closes the reader.
func (c *Consumer) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}
	select {
	case <-c.done:
	case <-ctx.Done():
	}
	return c.reader.Close()
}
