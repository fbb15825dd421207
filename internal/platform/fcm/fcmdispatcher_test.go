package fcm_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-fcm-dispatch/internal/metrics"
	"github.com/tinywideclouds/go-fcm-dispatch/internal/platform/fcm"
	"github.com/tinywideclouds/go-fcm-dispatch/internal/platform/fcm/fcmtest"
	"github.com/tinywideclouds/go-fcm-dispatch/pkg/notification"
)

// MockClient satisfies the MessagingClient interface
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Send(ctx context.Context, msg *messaging.Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFCMDispatch_Lifecycle(t *testing.T) {
	ctx := context.Background()
	intent := notification.NewIntent("Test Notification", "Body", "test", testToken, "")

	t.Run("Happy Path", func(t *testing.T) {
		mockClient := new(MockClient)
		dispatcher := fcm.NewDispatcher(mockClient, nil, newTestLogger())

		mockClient.On("Send", ctx, mock.MatchedBy(func(msg *messaging.Message) bool {
			return msg.Token == testToken && msg.Data["topic"] == "test"
		})).Return("projects/p/messages/1", nil)

		id, err := dispatcher.Dispatch(ctx, intent)

		require.NoError(t, err)
		assert.Equal(t, "projects/p/messages/1", id)
		mockClient.AssertExpectations(t)
	})

	t.Run("Provider failure is propagated unchanged, no retry", func(t *testing.T) {
		mockClient := new(MockClient)
		dispatcher := fcm.NewDispatcher(mockClient, nil, newTestLogger())
		providerErr := errors.New("unregistered device")

		mockClient.On("Send", ctx, mock.Anything).Return("", providerErr)

		id, err := dispatcher.Dispatch(ctx, intent)

		require.Error(t, err)
		assert.Same(t, providerErr, err)
		assert.Empty(t, id)
		mockClient.AssertNumberOfCalls(t, "Send", 1)
	})

	t.Run("Context is handed to the provider", func(t *testing.T) {
		mockClient := new(MockClient)
		dispatcher := fcm.NewDispatcher(mockClient, nil, newTestLogger())
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		mockClient.On("Send", cctx, mock.Anything).Return("", context.Canceled)

		_, err := dispatcher.Dispatch(cctx, intent)

		assert.ErrorIs(t, err, context.Canceled)
		mockClient.AssertExpectations(t)
	})
}

func TestFCMDispatch_InvalidIntent(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name        string
		intent      notification.Intent
		errContains string
	}{
		{
			name:        "Empty token",
			intent:      notification.NewIntent("t", "b", "test", "", ""),
			errContains: "token",
		},
		{
			name:        "Empty title",
			intent:      notification.NewIntent("", "b", "test", testToken, ""),
			errContains: "title",
		},
		{
			name:        "Empty body and token",
			intent:      notification.Intent{Title: "t"},
			errContains: "body, token",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockClient := new(MockClient)
			dispatcher := fcm.NewDispatcher(mockClient, nil, newTestLogger())

			_, err := dispatcher.Dispatch(ctx, tc.intent)

			require.Error(t, err)
			assert.ErrorIs(t, err, notification.ErrInvalidIntent)
			assert.Contains(t, err.Error(), tc.errContains)
			mockClient.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		})
	}
}

func TestFCMDispatch_Logging(t *testing.T) {
	ctx := context.Background()
	intent := notification.NewIntent("Image Notification", "Check out this awesome image!", "image_test", testToken, "https://picsum.photos/400/300")

	t.Run("Success record carries token, id and message dump", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		mockClient := new(MockClient)
		mockClient.On("Send", ctx, mock.Anything).Return("msg-42", nil)

		_, err := fcm.NewDispatcher(mockClient, nil, logger).Dispatch(ctx, intent)
		require.NoError(t, err)

		out := buf.String()
		assert.Contains(t, out, `"token":"device-token-abc"`)
		assert.Contains(t, out, `"message_id":"msg-42"`)
		assert.Contains(t, out, "picsum.photos")
	})

	t.Run("Failure record is emitted too", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		mockClient := new(MockClient)
		mockClient.On("Send", ctx, mock.Anything).Return("", errors.New("boom"))

		_, err := fcm.NewDispatcher(mockClient, nil, logger).Dispatch(ctx, intent)
		require.Error(t, err)

		out := buf.String()
		assert.Contains(t, out, `"level":"ERROR"`)
		assert.Contains(t, out, `"token":"device-token-abc"`)
		assert.Contains(t, out, "boom")
	})
}

func TestFCMDispatch_Metrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := metrics.NewDispatchMetrics(reg)

	mockClient := new(MockClient)
	mockClient.On("Send", ctx, mock.Anything).Return("id", nil).Once()
	mockClient.On("Send", ctx, mock.Anything).Return("", errors.New("down")).Once()
	dispatcher := fcm.NewDispatcher(mockClient, m, newTestLogger())

	_, _ = dispatcher.Dispatch(ctx, notification.NewIntent("t", "b", "x", testToken, ""))
	_, _ = dispatcher.Dispatch(ctx, notification.NewIntent("t", "b", "x", testToken, ""))
	_, _ = dispatcher.Dispatch(ctx, notification.NewIntent("t", "b", "x", "", ""))

	count, err := testutil.GatherAndCount(reg, "fcm_dispatch_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count, "success, provider_error and invalid_intent series")
	mockClient.AssertNumberOfCalls(t, "Send", 2)
}

func TestFCMDispatch_ConcurrentUse(t *testing.T) {
	ctx := context.Background()
	mockClient := new(MockClient)
	mockClient.On("Send", ctx, mock.Anything).Return("id", nil)
	dispatcher := fcm.NewDispatcher(mockClient, nil, newTestLogger())

	const calls = 20
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := dispatcher.Dispatch(ctx, notification.NewIntent("t", "b", "x", testToken, ""))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	mockClient.AssertNumberOfCalls(t, "Send", calls)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, notification.FaultNone, fcm.Classify(nil))
	assert.Equal(t, notification.FaultInvalidIntent, fcm.Classify(notification.ErrInvalidIntent))
	assert.Equal(t, notification.FaultProvider, fcm.Classify(errors.New("dns failure")))
}

func TestClassify_ProviderErrors(t *testing.T) {
	ctx := context.Background()
	intent := notification.NewIntent("Title", "Body", "test", testToken, "")

	testCases := []struct {
		name     string
		fcmErr   fcmtest.FCMError
		expected notification.FaultKind
	}{
		{name: "Unregistered token", fcmErr: fcmtest.Unregistered, expected: notification.FaultInvalidToken},
		{name: "Invalid argument", fcmErr: fcmtest.InvalidArgument, expected: notification.FaultInvalidToken},
		{name: "Sender ID mismatch", fcmErr: fcmtest.SenderIDMismatch, expected: notification.FaultInvalidToken},
		{name: "Quota exceeded", fcmErr: fcmtest.QuotaExceeded, expected: notification.FaultUnavailable},
		{name: "Internal", fcmErr: fcmtest.Internal, expected: notification.FaultUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := fcmtest.NewServer(t, fcmtest.Fail(tc.fcmErr))
			dispatcher := fcm.NewDispatcher(server.Client(t), nil, newTestLogger())

			id, err := dispatcher.Dispatch(ctx, intent)

			require.Error(t, err)
			assert.Empty(t, id)
			assert.Equal(t, tc.expected, fcm.Classify(err))
			assert.Len(t, server.Requests(), 1, "non-503 faults are sent once")
		})
	}
}

func TestFCMDispatch_WirePayload(t *testing.T) {
	ctx := context.Background()
	server := fcmtest.NewServer(t, fcmtest.Success("projects/test-project/messages/1"))
	dispatcher := fcm.NewDispatcher(server.Client(t), nil, newTestLogger())

	t.Run("Success returns the provider message name", func(t *testing.T) {
		id, err := dispatcher.Dispatch(ctx, notification.NewIntent("Title", "Body", "news", testToken, ""))

		require.NoError(t, err)
		assert.Equal(t, "projects/test-project/messages/1", id)
	})

	t.Run("Blank image and empty topic on the wire", func(t *testing.T) {
		_, err := dispatcher.Dispatch(ctx, notification.NewIntent("Title", "Body", "", testToken, "   "))
		require.NoError(t, err)

		requests := server.Requests()
		require.NotEmpty(t, requests)
		var sent struct {
			Message struct {
				Token   string            `json:"token"`
				Data    map[string]string `json:"data"`
				Android struct {
					TTL string `json:"ttl"`
				} `json:"android"`
				Notification map[string]any `json:"notification"`
			} `json:"message"`
		}
		require.NoError(t, json.Unmarshal(requests[len(requests)-1], &sent))

		assert.Equal(t, testToken, sent.Message.Token)
		assert.Equal(t, "120s", sent.Message.Android.TTL)
		topic, ok := sent.Message.Data["topic"]
		assert.True(t, ok, "present but empty topic is still sent")
		assert.Empty(t, topic)
		assert.NotContains(t, sent.Message.Data, "image")
		assert.NotContains(t, sent.Message.Notification, "image")
	})
}
