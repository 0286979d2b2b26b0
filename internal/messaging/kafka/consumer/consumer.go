package consumer

import (
	"context"
	"encoding/json"

	"github.com/AkshiGarg/nagarro-leave-manager/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeLeaveSubmitted drains the leave-submitted topic and hands each
// event to notify. Malformed messages are committed and skipped; notify
// failures leave the message uncommitted so it is retried.
func ConsumeLeaveSubmitted(
	ctx context.Context,
	reader *kafkago.Reader,
	notify func(ctx context.Context, event events.LeaveSubmittedEvent) error,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_submitted")
	log.Info("leave submitted consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave submitted consumer stopped")
				return
			}
			log.Error("fetch leave submitted message failed", zap.Error(err))
			continue
		}

		var event events.LeaveSubmittedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode leave submitted event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := notify(ctx, event); err != nil {
			log.Error("notify leave submitted failed",
				zap.String("employee_id", event.EmployeeID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave submitted message failed", zap.Error(err))
			continue
		}

		log.Info("leave submitted event processed",
			zap.String("employee_id", event.EmployeeID),
			zap.Int("days", len(event.Dates)),
		)
	}
}
