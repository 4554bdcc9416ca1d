package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/segmentio/kafka-go"

	"github.com/chatops-lab/chatrelay/pkg/domain/interfaces"
	"github.com/chatops-lab/chatrelay/pkg/domain/model"
)

const (
	// DefaultTopic is the topic completion jobs are produced to
	DefaultTopic = "chat-completion-jobs"

	writeTimeout = 10 * time.Second
)

// Queue produces completion jobs to a Kafka topic. Messages are keyed by
// channel so jobs of one conversation land on one partition.
type Queue struct {
	writer *kafka.Writer
}

var _ interfaces.JobQueue = &Queue{}

// Option is a functional option for queue configuration
type Option func(*Queue)

// WithTopic overrides the default topic
func WithTopic(topic string) Option {
	return func(q *Queue) {
		q.writer.Topic = topic
	}
}

// New creates a job queue producing to the given brokers
func New(brokers []string, opts ...Option) (*Queue, error) {
	if len(brokers) == 0 {
		return nil, goerr.New("at least one Kafka broker is required")
	}

	q := &Queue{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        DefaultTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: writeTimeout,
			BatchTimeout: 50 * time.Millisecond,
		},
	}

	for _, opt := range opts {
		opt(q)
	}

	return q, nil
}

func (q *Queue) Enqueue(ctx context.Context, job *model.CompletionJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal job payload", goerr.V("channel", job.Channel))
	}

	msg := kafka.Message{
		Key:   []byte(job.Channel),
		Value: data,
		Time:  time.Now(),
	}

	if err := q.writer.WriteMessages(ctx, msg); err != nil {
		return goerr.Wrap(err, "failed to produce job",
			goerr.V("topic", q.writer.Topic), goerr.V("channel", job.Channel), goerr.V("ts", job.TS))
	}

	return nil
}

func (q *Queue) Close() error {
	return q.writer.Close()
}
