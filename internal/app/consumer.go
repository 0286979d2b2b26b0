package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AkshiGarg/nagarro-leave-manager/internal/events"
	"github.com/AkshiGarg/nagarro-leave-manager/internal/messaging/kafka/consumer"
	"github.com/AkshiGarg/nagarro-leave-manager/internal/shared/connection"

	"go.uber.org/zap"
)

// RunConsumer forwards leave-submitted events to the notification log
// until interrupted. A real deployment would hand these to HR tooling;
// the acknowledgement semantics are what matter here.
func RunConsumer() error {
	logger := zap.L().Named("app.consumer")

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	reader := connection.NewKafkaReader(kafkaBroker, events.LeaveSubmittedTopic, "leave-manager-notifications")
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notify := func(ctx context.Context, event events.LeaveSubmittedEvent) error {
		logger.Info("leave submitted notification",
			zap.String("employee_id", event.EmployeeID),
			zap.String("request_type", event.RequestType),
			zap.Strings("dates", event.Dates),
		)
		return nil
	}

	go consumer.ConsumeLeaveSubmitted(ctx, reader, notify, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
