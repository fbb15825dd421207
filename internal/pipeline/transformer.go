// Package pipeline contains the Pub/Sub message processing components for the service.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/illmade-knight/go-dataflow/pkg/messagepipeline"
	"github.com/tinywideclouds/go-fcm-dispatch/pkg/notification"
)

// IntentTransformer is a dataflow Transformer that unmarshals a raw message
// payload into a notification.Intent.
//
// Field validation is left to the dispatcher; this stage only rejects payloads
// that are not an intent at all.
func IntentTransformer(
	_ context.Context,
	msg *messagepipeline.Message,
) (*notification.Intent, bool, error) {
	var intent notification.Intent

	if err := json.Unmarshal(msg.Payload, &intent); err != nil {
		// skip=true lets the StreamingService nack it towards the DLQ.
		return nil, true, fmt.Errorf("failed to unmarshal notification intent from message %s: %w", msg.ID, err)
	}

	return &intent, false, nil
}
