package config

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/chatops-lab/chatrelay/pkg/domain/interfaces"
	kafkaqueue "github.com/chatops-lab/chatrelay/pkg/queue/kafka"
	memoryqueue "github.com/chatops-lab/chatrelay/pkg/queue/memory"
	"github.com/chatops-lab/chatrelay/pkg/utils/logging"
)

// Queue holds CLI flags for job queue configuration
type Queue struct {
	backend string
	brokers string
	topic   string
}

// Flags returns CLI flags for job queue configuration
func (q *Queue) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "queue-backend",
			Usage:       "Job queue backend type (kafka or memory)",
			Category:    "Queue",
			Value:       "kafka",
			Sources:     cli.EnvVars("CHATRELAY_QUEUE_BACKEND"),
			Destination: &q.backend,
		},
		&cli.StringFlag{
			Name:        "kafka-brokers",
			Usage:       "Kafka bootstrap brokers (comma separated)",
			Category:    "Queue",
			Sources:     cli.EnvVars("CHATRELAY_KAFKA_BROKERS"),
			Destination: &q.brokers,
		},
		&cli.StringFlag{
			Name:        "kafka-topic",
			Usage:       "Kafka topic for completion jobs",
			Category:    "Queue",
			Value:       kafkaqueue.DefaultTopic,
			Sources:     cli.EnvVars("CHATRELAY_KAFKA_TOPIC"),
			Destination: &q.topic,
		},
	}
}

// Configure initializes and returns a job queue based on the configured
// backend. The caller is responsible for calling Close() on the result.
func (q *Queue) Configure() (interfaces.JobQueue, error) {
	switch q.backend {
	case "kafka":
		var brokers []string
		for _, b := range strings.Split(q.brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		queue, err := kafkaqueue.New(brokers, kafkaqueue.WithTopic(q.topic))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize kafka job queue")
		}
		logging.Default().Info("Using Kafka job queue", "brokers", q.brokers, "topic", q.topic)
		return queue, nil

	case "memory":
		logging.Default().Info("Using in-memory job queue (development mode)")
		return memoryqueue.New(), nil

	default:
		return nil, goerr.New("invalid queue backend", goerr.V("backend", q.backend))
	}
}
