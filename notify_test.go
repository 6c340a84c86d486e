package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTelegramNotifier_Deliver verifies the Bot API call shape: endpoint path
// embeds the token, and the JSON body carries chat id, text, and parse mode.
func TestTelegramNotifier_Deliver(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("123:abc")
	tn.apiBase = srv.URL

	err := tn.Deliver(context.Background(), "-100555", "hello *chain*")
	require.NoError(t, err)

	assert.Equal(t, "/bot123:abc/sendMessage", gotPath)
	assert.Equal(t, "-100555", gotBody["chat_id"])
	assert.Equal(t, "hello *chain*", gotBody["text"])
	assert.Equal(t, "Markdown", gotBody["parse_mode"])
	assert.Equal(t, true, gotBody["disable_web_page_preview"])
}

// TestTelegramNotifier_DeliverError: a non-2xx response is an error for the
// caller to log; nothing retries here.
func TestTelegramNotifier_DeliverError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("123:abc")
	tn.apiBase = srv.URL

	err := tn.Deliver(context.Background(), "-100555", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

// TestBuildDestinations covers credential-driven backend selection: complete
// credentials enable a backend, partial or missing ones degrade to fewer (or
// zero) destinations without failing startup.
func TestBuildDestinations(t *testing.T) {
	dests := BuildDestinations(&Config{
		TelegramToken:  "t",
		TelegramChatID: "c",
		DiscordToken:   "d",
		DiscordChannel: "ch",
	})
	require.Len(t, dests, 2)
	assert.Equal(t, "telegram", dests[0].Notifier.Name())
	assert.Equal(t, "c", dests[0].Target)
	assert.Equal(t, "discord", dests[1].Notifier.Name())
	assert.Equal(t, "ch", dests[1].Target)

	dests = BuildDestinations(&Config{TelegramToken: "t", TelegramChatID: "c"})
	require.Len(t, dests, 1)
	assert.Equal(t, "telegram", dests[0].Notifier.Name())

	// Partial credentials: skipped, not fatal.
	dests = BuildDestinations(&Config{TelegramToken: "t"})
	assert.Empty(t, dests)

	dests = BuildDestinations(&Config{})
	assert.Empty(t, dests)
}

// TestDiscordNotifier_New: session construction is offline and should not
// error for a well-formed token.
func TestDiscordNotifier_New(t *testing.T) {
	dn, err := NewDiscordNotifier("some-token")
	require.NoError(t, err)
	assert.Equal(t, "discord", dn.Name())
}
