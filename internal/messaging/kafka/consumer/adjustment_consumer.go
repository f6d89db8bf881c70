package consumer

import (
	"context"
	"encoding/json"

	"govpay/internal/events"
	"govpay/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func ConsumeAdjustmentLifecycle(
	ctx context.Context,
	reader *kafkago.Reader,
	notificationService notification.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.adjustment_lifecycle")
	log.Info("adjustment lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("adjustment lifecycle consumer stopped")
				return
			}
			log.Error("fetch adjustment message failed", zap.Error(err))
			continue
		}

		var event events.AdjustmentLifecycleEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode adjustment event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := notificationService.NotifyAdjustment(ctx, event); err != nil {
			log.Error("create adjustment notification failed",
				zap.String("adjustment_id", event.AdjustmentID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit adjustment message failed", zap.Error(err))
			continue
		}
	}
}
