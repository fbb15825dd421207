package fcm

import (
	"errors"

	"firebase.google.com/go/v4/messaging"
	"github.com/tinywideclouds/go-fcm-dispatch/pkg/notification"
)

// Classify maps a Dispatch error onto a FaultKind for the caller-facing layers.
func Classify(err error) notification.FaultKind {
	switch {
	case err == nil:
		return notification.FaultNone
	case errors.Is(err, notification.ErrInvalidIntent):
		return notification.FaultInvalidIntent
	case messaging.IsInvalidArgument(err),
		messaging.IsUnregistered(err),
		messaging.IsSenderIDMismatch(err):
		return notification.FaultInvalidToken
	case messaging.IsQuotaExceeded(err),
		messaging.IsUnavailable(err),
		messaging.IsInternal(err):
		return notification.FaultUnavailable
	default:
		return notification.FaultProvider
	}
}
