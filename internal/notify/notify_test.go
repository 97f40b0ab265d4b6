package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medtransit/internal/platform/config"
	dErrors "medtransit/pkg/domain-errors"
)

func TestTelegramNotify(t *testing.T) {
	t.Run("posts sendMessage", func(t *testing.T) {
		var got sendMessageRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer srv.Close()

		tg := NewTelegram(config.Notify{TelegramToken: "TOKEN", TelegramBaseURL: srv.URL + "/"}, srv.Client())
		require.NoError(t, tg.Notify(context.Background(), "4242", "Transfer canceled"))
		assert.Equal(t, "4242", got.ChatID)
		assert.Equal(t, "Transfer canceled", got.Text)
	})

	t.Run("api rejection", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
		}))
		defer srv.Close()

		tg := NewTelegram(config.Notify{TelegramToken: "TOKEN", TelegramBaseURL: srv.URL}, srv.Client())
		err := tg.Notify(context.Background(), "1", "hi")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUpstreamUnavailable))
		assert.Contains(t, err.Error(), "chat not found")
	})

	t.Run("missing recipient", func(t *testing.T) {
		tg := NewTelegram(config.Notify{TelegramToken: "TOKEN"}, nil)
		err := tg.Notify(context.Background(), "", "hi")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestLogNotify(t *testing.T) {
	var buf bytes.Buffer
	n := NewLog(slog.New(slog.NewJSONHandler(&buf, nil)))
	require.NoError(t, n.Notify(context.Background(), "4242", "Transfer canceled"))
	assert.Contains(t, buf.String(), `"recipient":"4242"`)
	assert.Contains(t, buf.String(), "Transfer canceled")
}

func TestFromConfig(t *testing.T) {
	assert.IsType(t, &Log{}, FromConfig(config.Notify{}, nil))
	assert.IsType(t, &Telegram{}, FromConfig(config.Notify{TelegramToken: "x", TelegramBaseURL: "http://localhost"}, nil))
}
