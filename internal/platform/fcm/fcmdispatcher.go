// Package fcm builds platform-qualified Firebase Cloud Messaging messages and
// submits them to FCM.
package fcm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/go-playground/validator/v10"
	"github.com/tinywideclouds/go-fcm-dispatch/internal/metrics"
	"github.com/tinywideclouds/go-fcm-dispatch/pkg/notification"
)

// MessagingClient defines the subset of the Firebase Messaging API we use.
// *messaging.Client satisfies it.
type MessagingClient interface {
	Send(ctx context.Context, msg *messaging.Message) (string, error)
}

type Dispatcher struct {
	client   MessagingClient
	validate *validator.Validate
	metrics  *metrics.DispatchMetrics
	logger   *slog.Logger
}

// NewDispatcher wraps a shared messaging client. m may be nil.
func NewDispatcher(client MessagingClient, m *metrics.DispatchMetrics, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		client:   client,
		validate: validator.New(),
		metrics:  m,
		logger:   logger.With("component", "FCMDispatcher"),
	}
}

// Dispatch validates the intent, builds the message and sends it with a single
// provider call. Provider errors are returned as-is so that the messaging.IsXxx
// helpers keep working on them.
func (d *Dispatcher) Dispatch(ctx context.Context, intent notification.Intent) (string, error) {
	start := time.Now()

	if err := d.validateIntent(intent); err != nil {
		d.metrics.Observe(metrics.OutcomeInvalidIntent, time.Since(start))
		d.logger.Warn("Rejected notification intent", "err", err)
		return "", err
	}

	msg := BuildMessage(intent)

	messageID, err := d.client.Send(ctx, msg)
	if err != nil {
		d.metrics.Observe(metrics.OutcomeProviderError, time.Since(start))
		d.logger.Error("FCM send failed",
			"token", intent.Token,
			"err", err,
			"msg", dumpMessage(msg),
		)
		return "", err
	}

	d.metrics.Observe(metrics.OutcomeSuccess, time.Since(start))
	d.logger.Info("Sent message to token",
		"token", intent.Token,
		"message_id", messageID,
		"msg", dumpMessage(msg),
	)
	return messageID, nil
}

func (d *Dispatcher) validateIntent(intent notification.Intent) error {
	err := d.validate.Struct(intent)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", notification.ErrInvalidIntent, err)
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, strings.ToLower(fe.Field()))
	}
	return fmt.Errorf("%w: missing %s", notification.ErrInvalidIntent, strings.Join(missing, ", "))
}

func dumpMessage(msg *messaging.Message) string {
	b, err := json.MarshalIndent(msg, "", "  ")
	if err != nil {
		return fmt.Sprintf("<unprintable message: %v>", err)
	}
	return string(b)
}
