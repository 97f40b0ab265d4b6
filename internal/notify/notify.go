// Package notify delivers driver messages. Telegram is the production channel;
// Log stands in when no bot token is configured.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"medtransit/internal/platform/config"
	dErrors "medtransit/pkg/domain-errors"
	"medtransit/pkg/requestcontext"
)

// Telegram sends messages through the Bot API sendMessage method.
// The recipient is the chat ID.
type Telegram struct {
	http    *http.Client
	baseURL string
	token   string
}

func NewTelegram(cfg config.Notify, httpClient *http.Client) *Telegram {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Telegram{
		http:    httpClient,
		baseURL: strings.TrimSuffix(cfg.TelegramBaseURL, "/"),
		token:   cfg.TelegramToken,
	}
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (t *Telegram) Notify(ctx context.Context, recipient, message string) error {
	if strings.TrimSpace(recipient) == "" {
		return dErrors.New(dErrors.CodeValidation, "notification recipient is required")
	}
	body, err := json.Marshal(sendMessageRequest{ChatID: recipient, Text: message})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode telegram message")
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build telegram request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "telegram unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	var out sendMessageResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(raw, &out)
	if resp.StatusCode >= 400 || !out.OK {
		desc := out.Description
		if desc == "" {
			desc = http.StatusText(resp.StatusCode)
		}
		return dErrors.New(dErrors.CodeUpstreamUnavailable, fmt.Sprintf("telegram rejected message (%d): %s", resp.StatusCode, desc))
	}
	return nil
}

// Log writes the message to the logger instead of delivering it.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) Notify(ctx context.Context, recipient, message string) error {
	l.logger.InfoContext(ctx, "driver notification",
		"request_id", requestcontext.RequestID(ctx),
		"recipient", recipient,
		"message", message,
	)
	return nil
}

// Notifier is the contract both implementations satisfy.
type Notifier interface {
	Notify(ctx context.Context, recipient, message string) error
}

// FromConfig returns Telegram when a token is set, otherwise Log.
func FromConfig(cfg config.Notify, logger *slog.Logger) Notifier {
	if cfg.TelegramToken == "" {
		return NewLog(logger)
	}
	return NewTelegram(cfg, nil)
}
