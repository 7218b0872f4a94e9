package worker

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"todo-api/internal/cache"
	"todo-api/internal/config"
	"todo-api/internal/models"
	"todo-api/pkg/logger"
)

// Run starts the Kafka consumer: it reads todo change events published by
// peer replicas and drops the matching cache keys, keeping this replica's
// Redis view coherent. One consumer per process; the consumer group shares
// partitions across replicas.
func Run(ctx context.Context, cfg *config.Config, c *cache.Cache) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info(ctx, "Cache invalidator disabled (no Kafka brokers)")
		return
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaTopic,
		GroupID:  "todo-cache-invalidators",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	logger.Info(ctx, "Kafka consumer started", "topic", cfg.KafkaTopic)
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error(ctx, "Worker fetch failed", "error", err)
			continue
		}
		handleEvent(ctx, c, msg.Value)
		// Commit regardless: a bad payload must not block the partition.
		if err := reader.CommitMessages(ctx, msg); err != nil {
			logger.Error(ctx, "Worker commit failed", "error", err)
		}
	}
}

func handleEvent(ctx context.Context, c *cache.Cache, payload []byte) {
	var ev models.TodoEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		logger.Error(ctx, "Worker decode event failed", "error", err, "payload", string(payload))
		return
	}
	c.Invalidate(ctx, models.ScopeFromOwner(ev.OwnerID))
}
