package sink

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func message() Message {
	return Message{
		RunID:   "run-1",
		Title:   "Galaxy formation at high redshift",
		Authors: []string{"A. Author", "B. Author"},
		Summary: "We study galaxy formation.",
		URL:     "https://arxiv.org/abs/2401.00001",
		SentAt:  time.Unix(100, 0).UTC(),
	}
}

func TestSlackDeliverPostsWebhookPayload(t *testing.T) {
	t.Parallel()

	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	target := NewSlack(server.URL, time.Second)
	require.Equal(t, "slack", target.Name())
	require.NoError(t, target.Deliver(context.Background(), message()))

	text, ok := body["text"].(string)
	require.True(t, ok)
	require.Contains(t, text, "Galaxy formation at high redshift")
	require.Contains(t, text, "A. Author, B. Author")
	require.Contains(t, text, "https://arxiv.org/abs/2401.00001")
	require.Contains(t, body, "blocks")
}

func TestSlackDeliverSurfacesErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer server.Close()

	target := NewSlack(server.URL, time.Second)
	err := target.Deliver(context.Background(), message())
	require.Error(t, err)
	require.Contains(t, err.Error(), "400")
	require.Contains(t, err.Error(), "invalid_payload")
}

func TestSlackDeliverRespectsContext(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	target := NewSlack(server.URL, time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := target.Deliver(ctx, message())
	require.Error(t, err)
}

func TestMemorySinkRecordsMessages(t *testing.T) {
	t.Parallel()

	memory := NewMemory()
	require.NoError(t, memory.Deliver(context.Background(), message()))
	require.NoError(t, memory.Deliver(context.Background(), message()))

	recorded := memory.Messages()
	require.Len(t, recorded, 2)
	require.Equal(t, "Galaxy formation at high redshift", recorded[0].Title)
}
