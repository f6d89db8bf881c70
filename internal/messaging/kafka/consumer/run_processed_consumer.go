package consumer

import (
	"context"
	"encoding/json"

	"govpay/internal/events"
	"govpay/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func ConsumeRunProcessed(
	ctx context.Context,
	reader *kafkago.Reader,
	notificationService notification.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.run_processed")
	log.Info("payroll run consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("payroll run consumer stopped")
				return
			}
			log.Error("fetch run processed message failed", zap.Error(err))
			continue
		}

		var event events.PayrollRunProcessedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode run processed event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := notificationService.NotifyRunProcessed(ctx, event); err != nil {
			log.Error("create run notification failed",
				zap.String("run_id", event.RunID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit run processed message failed", zap.Error(err))
			continue
		}

		log.Info("run processed notification created",
			zap.String("run_id", event.RunID),
			zap.String("period", event.Period),
		)
	}
}
