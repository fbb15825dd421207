// Package notification contains the public domain model for the dispatch service:
// the notification intent a caller submits and the fault kinds a dispatch can end in.
package notification

import (
	"errors"
	"strings"
)

// ErrInvalidIntent is returned when an intent is missing a required field.
// No provider call is made for an invalid intent.
var ErrInvalidIntent = errors.New("invalid notification intent")

// Intent describes one notification to send to one device.
//
// Topic is a pointer because presence matters: a nil Topic is left out of the
// custom data, while an empty Topic is still echoed into it.
type Intent struct {
	Title    string  `json:"title" validate:"required"`
	Body     string  `json:"body" validate:"required"`
	Topic    *string `json:"topic,omitempty"`
	Token    string  `json:"token" validate:"required"`
	ImageURL string  `json:"image_url,omitempty"`
}

// NewIntent builds an intent with a present topic. It does not validate.
func NewIntent(title, body, topic, token, imageURL string) Intent {
	return Intent{
		Title:    title,
		Body:     body,
		Topic:    StringPtr(topic),
		Token:    token,
		ImageURL: imageURL,
	}
}

// HasImage reports whether the intent carries a non-blank image reference.
func (i Intent) HasImage() bool {
	return strings.TrimSpace(i.ImageURL) != ""
}

// TopicValue returns the topic, or "" when it is absent.
func (i Intent) TopicValue() string {
	if i.Topic == nil {
		return ""
	}
	return *i.Topic
}

// StringPtr returns a pointer to s, for setting an optional Topic.
func StringPtr(s string) *string {
	return &s
}
