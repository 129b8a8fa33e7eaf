package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTelegramSetup is a helper struct to hold test dependencies
type testTelegramSetup struct {
	server *httptest.Server
	client *Client

	mu       sync.Mutex
	requests []*http.Request
	bodies   []sendMessageRequest
}

// setupTestTelegram creates a client against a fake Bot API
func setupTestTelegram(t *testing.T, handler http.HandlerFunc) *testTelegramSetup {
	setup := &testTelegramSetup{}
	setup.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setup.mu.Lock()
		setup.requests = append(setup.requests, r)
		if r.Method == http.MethodPost {
			var body sendMessageRequest
			_ = json.NewDecoder(r.Body).Decode(&body)
			setup.bodies = append(setup.bodies, body)
		}
		setup.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(setup.server.Close)

	setup.client = NewClient(ClientConfig{
		BaseURL:  setup.server.URL,
		BotToken: "123:ABC",
		ChatID:   "4242",
	}, zerolog.Nop())

	return setup
}

func okResult(result string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":` + result + `}`))
	}
}

// TestSend tests message delivery
func TestSend(t *testing.T) {
	setup := setupTestTelegram(t, okResult(`{"message_id":1}`))

	err := setup.client.Send(context.Background(), "<b>ARB</b>", true)

	require.NoError(t, err)
	require.Len(t, setup.requests, 1)
	assert.Equal(t, "/bot123:ABC/sendMessage", setup.requests[0].URL.Path)
	assert.Equal(t, "application/json", setup.requests[0].Header.Get("Content-Type"))

	require.Len(t, setup.bodies, 1)
	assert.Equal(t, "4242", setup.bodies[0].ChatID)
	assert.Equal(t, "<b>ARB</b>", setup.bodies[0].Text)
	assert.Equal(t, "HTML", setup.bodies[0].ParseMode)
	assert.True(t, setup.bodies[0].DisableNotification)
}

// TestSend_APIError tests Bot API error responses
func TestSend_APIError(t *testing.T) {
	setup := setupTestTelegram(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	})

	err := setup.client.Send(context.Background(), "hello", false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

// TestPollCommands tests update polling with authorisation and offsets
func TestPollCommands(t *testing.T) {
	setup := setupTestTelegram(t, okResult(`[
		{"update_id": 100, "message": {"text": "/pause", "chat": {"id": 4242}}},
		{"update_id": 101, "message": {"text": "/resume", "chat": {"id": 9999}}},
		{"update_id": 102},
		{"update_id": 103, "message": {"text": "  /stats  ", "chat": {"id": 4242}}}
	]`))

	commands, err := setup.client.PollCommands(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"/pause", "/stats"}, commands)

	query := setup.requests[0].URL.Query()
	assert.Equal(t, "/bot123:ABC/getUpdates", setup.requests[0].URL.Path)
	assert.Equal(t, "1", query.Get("offset"))
	assert.Equal(t, "1", query.Get("timeout"))
	assert.Equal(t, `["message"]`, query.Get("allowed_updates"))

	// Next poll acknowledges everything seen, unauthorised updates included
	_, err = setup.client.PollCommands(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "104", setup.requests[1].URL.Query().Get("offset"))
}

// TestPollCommands_Empty tests a poll without updates
func TestPollCommands_Empty(t *testing.T) {
	setup := setupTestTelegram(t, okResult(`[]`))

	commands, err := setup.client.PollCommands(context.Background())

	require.NoError(t, err)
	assert.Empty(t, commands)
}

// TestPollCommands_Error tests a failing poll
func TestPollCommands_Error(t *testing.T) {
	setup := setupTestTelegram(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"ok":false,"description":"Conflict: terminated by other getUpdates request"}`))
	})

	commands, err := setup.client.PollCommands(context.Background())

	assert.Nil(t, commands)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")
}

// TestPollCommands_MalformedBody tests a non-JSON response
func TestPollCommands_MalformedBody(t *testing.T) {
	setup := setupTestTelegram(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>bad gateway</html>`))
	})

	_, err := setup.client.PollCommands(context.Background())

	assert.Error(t, err)
}
