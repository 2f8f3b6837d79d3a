package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/katatrina/chatpush-BE/internal/db"
	"github.com/katatrina/chatpush-BE/internal/util"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	tokenUpdates map[string]string
	updateErr    error
}

func (s *stubStore) GetChat(ctx context.Context, chatID string) (db.Chat, error) {
	return db.Chat{}, db.ErrRecordNotFound
}

func (s *stubStore) GetUser(ctx context.Context, userID string) (db.User, error) {
	return db.User{}, db.ErrRecordNotFound
}

func (s *stubStore) CreateNotification(ctx context.Context, record db.NotificationRecord) (string, error) {
	return "", nil
}

func (s *stubStore) MarkNotificationSent(ctx context.Context, notificationID, fcmMessageID string) error {
	return nil
}

func (s *stubStore) MarkNotificationFailed(ctx context.Context, notificationID, sendErr string) error {
	return nil
}

func (s *stubStore) UpdateUserFCMToken(ctx context.Context, userID, token string) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	if s.tokenUpdates == nil {
		s.tokenUpdates = make(map[string]string)
	}
	s.tokenUpdates[userID] = token
	return nil
}

type stubInspector struct {
	queueSizes map[string]int
	err        error
}

func (s *stubInspector) GetQueueInfo(ctx context.Context, queue string) (*asynq.QueueInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &asynq.QueueInfo{Queue: queue, Size: s.queueSizes[queue]}, nil
}

func (s *stubInspector) ListQueues(ctx context.Context) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	queues := make([]string, 0, len(s.queueSizes))
	for queue := range s.queueSizes {
		queues = append(queues, queue)
	}
	return queues, nil
}

func newTestServer(t *testing.T, store db.Store, inspector *stubInspector) *Server {
	t.Helper()

	gin.SetMode(gin.TestMode)

	config := &util.Config{
		AllowedOrigins: []string{"http://localhost:3000"},
	}

	server, err := NewServer(store, inspector, config)
	require.NoError(t, err)

	return server
}

func TestUpdateUserFCMToken(t *testing.T) {
	t.Run("stores the refreshed token", func(t *testing.T) {
		store := &stubStore{}
		server := newTestServer(t, store, &stubInspector{})

		body, err := json.Marshal(gin.H{"token": "tok123"})
		require.NoError(t, err)

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodPut, "/v1/users/u2/fcm-token", bytes.NewReader(body))
		server.router.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusOK, recorder.Code)
		require.Equal(t, "tok123", store.tokenUpdates["u2"])
	})

	t.Run("rejects missing token", func(t *testing.T) {
		store := &stubStore{}
		server := newTestServer(t, store, &stubInspector{})

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodPut, "/v1/users/u2/fcm-token", bytes.NewReader([]byte(`{}`)))
		server.router.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusBadRequest, recorder.Code)
		require.Empty(t, store.tokenUpdates)
	})

	t.Run("reports store failures", func(t *testing.T) {
		store := &stubStore{updateErr: errors.New("firestore unavailable")}
		server := newTestServer(t, store, &stubInspector{})

		body, err := json.Marshal(gin.H{"token": "tok123"})
		require.NoError(t, err)

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodPut, "/v1/users/u2/fcm-token", bytes.NewReader(body))
		server.router.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusInternalServerError, recorder.Code)
	})
}

func TestCheckHealth(t *testing.T) {
	t.Run("reports queue sizes", func(t *testing.T) {
		inspector := &stubInspector{queueSizes: map[string]int{"critical": 2, "default": 5}}
		server := newTestServer(t, &stubStore{}, inspector)

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/health", nil)
		server.router.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusOK, recorder.Code)

		var response struct {
			Status string         `json:"status"`
			Queues map[string]int `json:"queues"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		require.Equal(t, "ok", response.Status)
		require.Equal(t, map[string]int{"critical": 2, "default": 5}, response.Queues)
	})

	t.Run("reports inspector failures", func(t *testing.T) {
		inspector := &stubInspector{err: errors.New("redis unavailable")}
		server := newTestServer(t, &stubStore{}, inspector)

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/health", nil)
		server.router.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusInternalServerError, recorder.Code)
	})
}
