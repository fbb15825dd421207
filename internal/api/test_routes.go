package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/tinywideclouds/go-microservice-base/pkg/response"
	"github.com/tinywideclouds/go-fcm-dispatch/pkg/notification"
)

// Canned intents for the manual test routes. Each takes the target device
// token from the "token" query parameter.
var (
	SimpleTestIntent = cannedIntent{
		title: "Test Notification",
		body:  "This is a simple test notification with sound and vibration!",
		topic: "test",
		ack:   "Simple notification sent.",
	}
	ImageTestIntent = cannedIntent{
		title:    "Image Notification",
		body:     "Check out this awesome image!",
		topic:    "image_test",
		imageURL: "https://picsum.photos/400/300",
		ack:      "Image notification sent.",
	}
	EcommerceTestIntent = cannedIntent{
		title:    "🛒 New Deal Available!",
		body:     "50% OFF on Electronics - Limited Time Offer!",
		topic:    "ecommerce",
		imageURL: "https://images.unsplash.com/photo-1441986300917-64674bd600d8?w=400&h=300&fit=crop",
		ack:      "E-commerce notification sent.",
	}
)

type cannedIntent struct {
	title, body, topic, imageURL string
	ack                          string
}

func (c cannedIntent) Intent(token string) notification.Intent {
	return notification.NewIntent(c.title, c.body, c.topic, token, c.imageURL)
}

func (api *NotificationAPI) SendSimpleNotification(w http.ResponseWriter, r *http.Request) {
	api.sendCanned(w, r, SimpleTestIntent)
}

func (api *NotificationAPI) SendImageNotification(w http.ResponseWriter, r *http.Request) {
	api.sendCanned(w, r, ImageTestIntent)
}

func (api *NotificationAPI) SendEcommerceNotification(w http.ResponseWriter, r *http.Request) {
	api.sendCanned(w, r, EcommerceTestIntent)
}

func (api *NotificationAPI) sendCanned(w http.ResponseWriter, r *http.Request, c cannedIntent) {
	reqLogger := api.Logger.With("request_id", uuid.NewString(), "topic", c.topic)

	token := r.URL.Query().Get("token")
	if token == "" {
		response.WriteJSONError(w, http.StatusBadRequest, "missing token")
		return
	}

	api.send(w, r, reqLogger, c.Intent(token), c.ack)
}
