package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFCMSendMulticast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key=test-key", r.Header.Get("Authorization"))

		var req fcmRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"tok-ok", "tok-dead", "tok-flaky"}, req.RegistrationIDs)
		assert.Equal(t, "New message", req.Notification.Title)

		json.NewEncoder(w).Encode(map[string]any{
			"success": 1,
			"failure": 2,
			"results": []map[string]string{
				{"message_id": "m1"},
				{"error": "NotRegistered"},
				{"error": "Unavailable"},
			},
		})
	}))
	defer srv.Close()

	p := NewFCMPusher(FCMConfig{Endpoint: srv.URL, ServerKey: "test-key"})
	res, err := p.SendMulticast(context.Background(), []string{"tok-ok", "tok-dead", "tok-flaky"}, Notification{
		Title: "New message",
		Body:  "hello",
		Data:  map[string]string{"conversation_id": "conv-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.SuccessCount)
	assert.Equal(t, 2, res.FailureCount)
	require.Len(t, res.Results, 3)

	assert.True(t, res.Results[0].Success)

	assert.False(t, res.Results[1].Success)
	assert.True(t, res.Results[1].Invalid, "NotRegistered marks the token dead")

	assert.False(t, res.Results[2].Success)
	assert.False(t, res.Results[2].Invalid, "transient failure keeps the token")
}

func TestFCMSendMulticastEmptyTokens(t *testing.T) {
	p := NewFCMPusher(FCMConfig{Endpoint: "http://unused"})
	res, err := p.SendMulticast(context.Background(), nil, Notification{Title: "x"})
	require.NoError(t, err)
	assert.Zero(t, res.SuccessCount)
	assert.Empty(t, res.Results)
}

func TestFCMSendMulticastProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "server key rejected", http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewFCMPusher(FCMConfig{Endpoint: srv.URL, ServerKey: "bad"})
	_, err := p.SendMulticast(context.Background(), []string{"tok"}, Notification{Title: "x"})
	assert.Error(t, err)
}
