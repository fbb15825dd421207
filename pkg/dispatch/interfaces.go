// Package dispatch defines the contract between the service shell (HTTP API,
// Pub/Sub pipeline) and the component that talks to the push provider.
package dispatch

import (
	"context"

	"github.com/tinywideclouds/go-fcm-dispatch/pkg/notification"
)

// Dispatcher sends one notification intent to its target device.
type Dispatcher interface {
	// Dispatch submits the intent and returns the provider's message ID.
	// Implementations make at most one provider call and never retry.
	Dispatch(ctx context.Context, intent notification.Intent) (string, error)
}
