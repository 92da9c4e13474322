package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/commerce/internal/messaging/kafka"
)

const (
	defaultReplayLimit = 100
	defaultIdleTimeout = 2 * time.Second
)

type config struct {
	brokers     []string
	sourceTopic string
	limit       int
	execute     bool
	idleTimeout time.Duration
}

// dlqPayload — формат, в котором outbox worker кладёт событие в DLQ.
type dlqPayload struct {
	OutboxID      string          `json:"outbox_id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishError  string          `json:"publish_error"`
}

func main() {
	cfg := readFlags()
	logger := log.WithField("component", "dlq-reprocess")

	consumer, err := sarama.NewConsumer(cfg.brokers, sarama.NewConfig())
	if err != nil {
		logger.WithError(err).Fatal("create kafka consumer")
	}
	defer consumer.Close()

	var producer *kafka.Producer
	if cfg.execute {
		producer, err = kafka.NewProducer(cfg.brokers)
		if err != nil {
			logger.WithError(err).Fatal("create kafka producer")
		}
		defer producer.Close()
	}

	partitions, err := consumer.Partitions(cfg.sourceTopic)
	if err != nil {
		logger.WithError(err).Fatal("list dlq partitions")
	}

	replayed, skipped := 0, 0
	for _, partition := range partitions {
		if replayed >= cfg.limit {
			break
		}
		pc, err := consumer.ConsumePartition(cfg.sourceTopic, partition, sarama.OffsetOldest)
		if err != nil {
			logger.WithError(err).WithField("partition", partition).Warn("consume partition failed")
			continue
		}

		r, s := drainPartition(pc, cfg, producer, logger)
		replayed += r
		skipped += s
		_ = pc.Close()
	}

	mode := "dry-run"
	if cfg.execute {
		mode = "execute"
	}
	fmt.Printf("dlq reprocess done: mode=%s replayed=%d skipped=%d\n", mode, replayed, skipped)
}

// drainPartition читает партицию до idle-таймаута или лимита.
func drainPartition(pc sarama.PartitionConsumer, cfg config, producer *kafka.Producer, logger *log.Entry) (replayed, skipped int) {
	for replayed < cfg.limit {
		select {
		case msg, ok := <-pc.Messages():
			if !ok {
				return replayed, skipped
			}

			var payload dlqPayload
			if err := json.Unmarshal(msg.Value, &payload); err != nil {
				logger.WithError(err).WithField("offset", msg.Offset).Warn("skip malformed dlq message")
				skipped++
				continue
			}

			target := kafka.TopicForAggregate(payload.AggregateType)
			entry := logger.WithFields(log.Fields{
				"outbox_id":    payload.OutboxID,
				"event_type":   payload.EventType,
				"target_topic": target,
			})

			if !cfg.execute {
				entry.Info("would replay (dry-run)")
				replayed++
				continue
			}

			envelope := map[string]interface{}{
				"id":             payload.OutboxID,
				"aggregate_type": payload.AggregateType,
				"aggregate_id":   payload.AggregateID,
				"event_type":     payload.EventType,
				"payload":        payload.Payload,
				"published_at":   time.Now().UTC(),
			}
			if err := producer.PublishEvent(target, payload.AggregateID, envelope); err != nil {
				entry.WithError(err).Warn("replay failed")
				skipped++
				continue
			}
			entry.Info("replayed")
			replayed++

		case err := <-pc.Errors():
			logger.WithError(err).Warn("partition consumer error")
			skipped++

		case <-time.After(cfg.idleTimeout):
			return replayed, skipped
		}
	}
	return replayed, skipped
}

func readFlags() config {
	var (
		brokersRaw  string
		sourceTopic string
		limit       int
		execute     bool
		idleTimeout time.Duration
	)

	flag.StringVar(&brokersRaw, "brokers", "", "comma-separated kafka brokers (fallback: KAFKA_BROKERS)")
	flag.StringVar(&sourceTopic, "source", kafka.TopicDeadLetterQueue, "DLQ topic to drain")
	flag.IntVar(&limit, "limit", defaultReplayLimit, "maximum messages to replay")
	flag.BoolVar(&execute, "execute", false, "actually republish (default is dry-run)")
	flag.DurationVar(&idleTimeout, "idle-timeout", defaultIdleTimeout, "stop after this period without messages")
	flag.Parse()

	if brokersRaw == "" {
		brokersRaw = os.Getenv("KAFKA_BROKERS")
	}
	if brokersRaw == "" {
		fmt.Fprintln(os.Stderr, "KAFKA_BROKERS (or -brokers) is required")
		os.Exit(2)
	}
	if limit <= 0 {
		limit = defaultReplayLimit
	}

	return config{
		brokers:     strings.Split(brokersRaw, ","),
		sourceTopic: sourceTopic,
		limit:       limit,
		execute:     execute,
		idleTimeout: idleTimeout,
	}
}
