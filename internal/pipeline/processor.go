package pipeline

import (
	"context"
	"log/slog"

	"github.com/illmade-knight/go-dataflow/pkg/messagepipeline"
	"github.com/tinywideclouds/go-fcm-dispatch/internal/platform/fcm"
	"github.com/tinywideclouds/go-fcm-dispatch/pkg/dispatch"
	"github.com/tinywideclouds/go-fcm-dispatch/pkg/notification"
)

// NewProcessor dispatches each transformed intent exactly once.
//
// Faults that redelivery cannot fix (a bad intent, a dead token) are logged and
// acknowledged. Everything else is returned so Pub/Sub redelivers the message
// according to the subscription's policy.
func NewProcessor(
	dispatcher dispatch.Dispatcher,
	logger *slog.Logger,
) messagepipeline.StreamProcessor[notification.Intent] {

	return func(ctx context.Context, original messagepipeline.Message, intent *notification.Intent) error {
		procLogger := logger.With(
			"pubsub_msg_id", original.ID,
			"topic", intent.TopicValue(),
		)

		messageID, err := dispatcher.Dispatch(ctx, *intent)
		switch kind := fcm.Classify(err); kind {
		case notification.FaultNone:
			procLogger.Info("FCM Dispatched", "message_id", messageID)
			return nil
		case notification.FaultInvalidIntent, notification.FaultInvalidToken:
			procLogger.Warn("Dropping undeliverable notification", "fault", kind.String(), "err", err)
			return nil
		default:
			procLogger.Error("FCM Dispatch failed", "fault", kind.String(), "err", err)
			return err
		}
	}
}
