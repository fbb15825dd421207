package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
	"github.com/tinywideclouds/go-microservice-base/pkg/response"
	"github.com/tinywideclouds/go-fcm-dispatch/internal/platform/fcm"
	"github.com/tinywideclouds/go-fcm-dispatch/pkg/dispatch"
	"github.com/tinywideclouds/go-fcm-dispatch/pkg/notification"
	urn "github.com/tinywideclouds/go-platform/pkg/net/v1"
)

type NotificationAPI struct {
	Dispatcher dispatch.Dispatcher
	Logger     *slog.Logger
}

func NewNotificationAPI(dispatcher dispatch.Dispatcher, logger *slog.Logger) *NotificationAPI {
	return &NotificationAPI{
		Dispatcher: dispatcher,
		Logger:     logger,
	}
}

// NotificationResponse is the acknowledgment body returned on success.
type NotificationResponse struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	MessageID string `json:"message_id,omitempty"`
}

// SendNotification dispatches the intent in the request body.
func (api *NotificationAPI) SendNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqLogger := api.Logger.With("request_id", uuid.NewString())

	if userID, ok := middleware.GetUserHandleFromContext(ctx); ok {
		if userURN, err := urn.Parse(userID); err == nil {
			reqLogger = reqLogger.With("requested_by", userURN.String())
		} else {
			reqLogger = reqLogger.With("requested_by", userID)
		}
	}

	var intent notification.Intent
	if err := json.NewDecoder(r.Body).Decode(&intent); err != nil {
		reqLogger.Warn("SendNotification: JSON Decode failed", "err", err)
		response.WriteJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}

	api.send(w, r, reqLogger, intent, "Notification sent.")
}

func (api *NotificationAPI) send(w http.ResponseWriter, r *http.Request, logger *slog.Logger, intent notification.Intent, ackMessage string) {
	messageID, err := api.Dispatcher.Dispatch(r.Context(), intent)
	if err != nil {
		status, msg := faultResponse(err)
		logger.Warn("Dispatch failed", "status", status, "err", err)
		response.WriteJSONError(w, status, msg)
		return
	}

	writeJSON(w, logger, http.StatusOK, NotificationResponse{
		Status:    http.StatusOK,
		Message:   ackMessage,
		MessageID: messageID,
	})
}

// faultResponse translates a dispatch error into an HTTP status and a short message.
func faultResponse(err error) (int, string) {
	switch fcm.Classify(err) {
	case notification.FaultInvalidIntent:
		return http.StatusBadRequest, err.Error()
	case notification.FaultInvalidToken:
		return http.StatusNotFound, "device token rejected by provider"
	case notification.FaultUnavailable:
		return http.StatusServiceUnavailable, "push provider unavailable"
	default:
		return http.StatusBadGateway, "push provider error"
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("Failed to write response body", "status", status, "err", err)
	}
}
