package fcm

import (
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/tinywideclouds/go-fcm-dispatch/pkg/notification"
)

const (
	// AndroidTTL is how long FCM keeps an undelivered Android message.
	AndroidTTL = 2 * time.Minute
	// AndroidChannelID must match the channel the client app creates.
	AndroidChannelID = "fcm_default_channel"
	DefaultSound     = "default"
)

// Data map keys echoed to the client app.
const (
	DataKeyTitle = "title"
	DataKeyBody  = "body"
	DataKeyImage = "image"
	DataKeyTopic = "topic"
)

// BuildMessage maps an intent onto a platform-qualified FCM message.
// It is pure: the same intent always yields an equal message.
func BuildMessage(intent notification.Intent) *messaging.Message {
	topic := intent.TopicValue()

	return &messaging.Message{
		Token:        intent.Token,
		Android:      androidConfig(topic),
		APNS:         apnsConfig(topic),
		Notification: notificationBlock(intent),
		Data:         dataPayload(intent),
	}
}

func androidConfig(topic string) *messaging.AndroidConfig {
	ttl := AndroidTTL
	return &messaging.AndroidConfig{
		TTL:         &ttl,
		CollapseKey: topic,
		Priority:    "high",
		Notification: &messaging.AndroidNotification{
			Tag:        topic,
			Sound:      DefaultSound,
			Priority:   messaging.PriorityHigh,
			Visibility: messaging.VisibilityPublic,
			ChannelID:  AndroidChannelID,
		},
	}
}

func apnsConfig(topic string) *messaging.APNSConfig {
	return &messaging.APNSConfig{
		Payload: &messaging.APNSPayload{
			Aps: &messaging.Aps{
				Category: topic,
				ThreadID: topic,
				Sound:    DefaultSound,
			},
		},
	}
}

func notificationBlock(intent notification.Intent) *messaging.Notification {
	n := &messaging.Notification{
		Title: intent.Title,
		Body:  intent.Body,
	}
	if intent.HasImage() {
		n.ImageURL = intent.ImageURL
	}
	return n
}

// dataPayload gates the image on blankness but the topic on presence only.
func dataPayload(intent notification.Intent) map[string]string {
	data := map[string]string{
		DataKeyTitle: intent.Title,
		DataKeyBody:  intent.Body,
	}
	if intent.HasImage() {
		data[DataKeyImage] = intent.ImageURL
	}
	if intent.Topic != nil {
		data[DataKeyTopic] = *intent.Topic
	}
	return data
}
