package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

func newTestNotifier(t *testing.T, h http.HandlerFunc) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier("TOKEN", "42", "", zerolog.Nop())
	n.BaseURL = srv.URL
	return n
}

func TestSend(t *testing.T) {
	var mu sync.Mutex
	var got []sentMessage
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		var m sentMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&m))
		mu.Lock()
		got = append(got, m)
		mu.Unlock()
		w.Write([]byte(`{"ok":true}`))
	})

	require.NoError(t, n.Send(context.Background(), "<b>hi</b>"))
	require.Len(t, got, 1)
	assert.Equal(t, "42", got[0].ChatID)
	assert.Equal(t, "<b>hi</b>", got[0].Text)
	assert.Equal(t, "HTML", got[0].ParseMode)
}

func TestSend_SplitsLongMessages(t *testing.T) {
	var count atomic.Int32
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		w.Write([]byte(`{"ok":true}`))
	})

	line := strings.Repeat("x", 99) + "\n"
	require.NoError(t, n.Send(context.Background(), strings.Repeat(line, 100)))
	assert.Equal(t, int32(3), count.Load())
}

func TestSend_APIError(t *testing.T) {
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusBadRequest)
	})
	err := n.Send(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestSendWithRetry_CancelledContext(t *testing.T) {
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := n.SendWithRetry(ctx, "x", 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSplit(t *testing.T) {
	assert.Equal(t, []string{"short"}, split("short", 10))
	assert.Equal(t, []string{"aaaa", "bbbb"}, split("aaaa\nbbbb", 6))
	assert.Equal(t, []string{"abcdef", "ghij"}, split("abcdefghij", 6))
}
