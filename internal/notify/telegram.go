package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTelegramBaseURL = "https://api.telegram.org"

// TelegramConfig controls the Telegram bot messenger.
type TelegramConfig struct {
	BaseURL    string
	BotToken   string
	ChatID     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Telegram delivers messages to one chat through the Bot API.
type Telegram struct {
	baseURL    string
	token      string
	chatID     string
	httpClient *http.Client
}

// NewTelegram validates cfg and returns a messenger.
func NewTelegram(cfg TelegramConfig) (*Telegram, error) {
	if strings.TrimSpace(cfg.BotToken) == "" {
		return nil, errors.New("notify: telegram bot token is required")
	}
	if strings.TrimSpace(cfg.ChatID) == "" {
		return nil, errors.New("notify: telegram chat id is required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultTelegramBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Telegram{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      strings.TrimSpace(cfg.BotToken),
		chatID:     strings.TrimSpace(cfg.ChatID),
		httpClient: httpClient,
	}, nil
}

func (t *Telegram) Name() string { return "telegram" }

// Send posts text to the configured chat.
func (t *Telegram) Send(ctx context.Context, text string) error {
	q := url.Values{}
	q.Set("chat_id", t.chatID)
	q.Set("text", text)
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage?%s", t.baseURL, t.token, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("notify: build telegram request: %w", err)
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		// The URL carries the bot token; keep it out of the error.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("notify: telegram send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("notify: telegram send: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
