// Package fcmtest runs a local stand-in for the FCM v1 send endpoint so tests
// can drive a real messaging.Client through its error paths.
package fcmtest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

const ProjectID = "test-project"

// FCMError is an error body the fake endpoint answers with.
type FCMError struct {
	HTTPStatus int
	Status     string
	ErrorCode  string
}

var (
	Unregistered     = FCMError{HTTPStatus: http.StatusNotFound, Status: "NOT_FOUND", ErrorCode: "UNREGISTERED"}
	InvalidArgument  = FCMError{HTTPStatus: http.StatusBadRequest, Status: "INVALID_ARGUMENT", ErrorCode: "INVALID_ARGUMENT"}
	SenderIDMismatch = FCMError{HTTPStatus: http.StatusForbidden, Status: "PERMISSION_DENIED", ErrorCode: "SENDER_ID_MISMATCH"}
	QuotaExceeded    = FCMError{HTTPStatus: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED", ErrorCode: "QUOTA_EXCEEDED"}
	Internal         = FCMError{HTTPStatus: http.StatusInternalServerError, Status: "INTERNAL", ErrorCode: "INTERNAL"}

	// Unavailable is answered with 503, which the SDK retries with backoff
	// before giving up. Prefer QuotaExceeded or Internal in fast tests.
	Unavailable = FCMError{HTTPStatus: http.StatusServiceUnavailable, Status: "UNAVAILABLE", ErrorCode: "UNAVAILABLE"}
)

// Server records every send request it receives.
type Server struct {
	*httptest.Server

	mu     sync.Mutex
	bodies [][]byte
}

// NewServer starts a fake endpoint that hands each request to respond.
// It is closed when the test ends.
func NewServer(t testing.TB, respond http.HandlerFunc) *Server {
	t.Helper()
	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.bodies = append(s.bodies, body)
		s.mu.Unlock()
		respond(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

// Requests returns the raw bodies of the send requests seen so far.
func (s *Server) Requests() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.bodies...)
}

// Client builds an unauthenticated messaging.Client pointed at the server.
func (s *Server) Client(t testing.TB) *messaging.Client {
	t.Helper()
	ctx := context.Background()
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: ProjectID},
		option.WithEndpoint(s.URL),
		option.WithoutAuthentication(),
	)
	if err != nil {
		t.Fatalf("firebase app: %v", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		t.Fatalf("messaging client: %v", err)
	}
	return client
}

// Success answers every send with the given message name.
func Success(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"name": name})
	}
}

// Fail answers every send with the FCM error body for e.
func Fail(e FCMError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(e.HTTPStatus)
		_, _ = fmt.Fprintf(w, `{"error":{"code":%d,"message":"%s","status":"%s","details":[{"@type":"type.googleapis.com/google.firebase.fcm.v1.FcmError","errorCode":"%s"}]}}`,
			e.HTTPStatus, e.ErrorCode, e.Status, e.ErrorCode)
	}
}
