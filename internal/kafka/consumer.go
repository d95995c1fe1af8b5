package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// Tuning defaults for the dispatch topic: envelopes are small JSON blobs, so
// the fetch floor stays low and MaxWait is short enough that a trickle of
// messages does not sit in the broker.
const (
	defaultMinBytes       = 1 << 10
	defaultMaxBytes       = 10 << 20
	defaultCommitInterval = time.Second
	defaultMaxWait        = 50 * time.Millisecond
)

type Config struct {
	Brokers        []string
	Topic          string
	GroupID        string
	MinBytes       int
	MaxBytes       int
	CommitInterval time.Duration
	MaxWait        time.Duration
}

// Consumer wraps a kafka-go Reader with the fetch/commit split the dispatch
// worker needs: commits happen only after an attempt ran.
type Consumer struct {
	r *kafka.Reader
}

func NewConsumerFromConfig(c Config) *Consumer {
	if c.MinBytes <= 0 {
		c.MinBytes = defaultMinBytes
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = defaultMaxBytes
	}
	if c.CommitInterval <= 0 {
		c.CommitInterval = defaultCommitInterval
	}
	if c.MaxWait <= 0 {
		c.MaxWait = defaultMaxWait
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        c.Brokers,
		GroupID:        c.GroupID,
		Topic:          c.Topic,
		MinBytes:       c.MinBytes,
		MaxBytes:       c.MaxBytes,
		CommitInterval: c.CommitInterval,
		MaxWait:        c.MaxWait,
	})

	return &Consumer{r: r}
}

type Message = kafka.Message

func (c *Consumer) Fetch(ctx context.Context) (Message, error) {
	return c.r.FetchMessage(ctx)
}

func (c *Consumer) Commit(ctx context.Context, m Message) error {
	return c.r.CommitMessages(ctx, m)
}

func (c *Consumer) Close() error { return c.r.Close() }
