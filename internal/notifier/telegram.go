package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTelegramAPI = "https://api.telegram.org"

// Notifier delivers a message to one partner. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, userID, title, body string) error
}

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	BotToken string
	ChatID   string            // couple chat, used when a user has no private chat
	UserChat map[string]string // partner id ("p1", "p2") to private chat id
	APIBase  string
	Client   *http.Client
	Retries  int
	Backoff  time.Duration
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramNotifier{
		BotToken: botToken,
		ChatID:   chatID,
		UserChat: map[string]string{},
		APIBase:  defaultTelegramAPI,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		Retries: 3,
		Backoff: time.Second,
	}
}

func (t *TelegramNotifier) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", strings.TrimRight(t.APIBase, "/"), t.BotToken, method)
}

// Send sends a message to the couple chat.
func (t *TelegramNotifier) Send(text string) error {
	return t.SendTo(context.Background(), t.ChatID, text)
}

// SendTo sends a message to chatID.
func (t *TelegramNotifier) SendTo(ctx context.Context, chatID, text string) error {
	payload := map[string]string{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// SendWithRetry sends a message to the couple chat with exponential backoff retry.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	return t.sendWithRetry(ctx, t.ChatID, text, maxRetries)
}

func (t *TelegramNotifier) sendWithRetry(ctx context.Context, chatID, text string, maxRetries int) error {
	base := t.Backoff
	if base <= 0 {
		base = time.Second
	}
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := t.SendTo(ctx, chatID, text); err != nil {
			lastErr = err
			if i == maxRetries {
				break
			}
			backoff := time.Duration(1<<uint(i)) * base
			log.Printf("[WARN] Telegram send failed (attempt %d/%d): %v, retrying in %v", i+1, maxRetries+1, err, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}

// Notify sends title and body to the private chat of userID, or to the couple chat.
func (t *TelegramNotifier) Notify(ctx context.Context, userID, title, body string) error {
	chatID := t.ChatID
	if c, ok := t.UserChat[userID]; ok && c != "" {
		chatID = c
	}
	if chatID == "" {
		return fmt.Errorf("no chat configured for %q", userID)
	}
	text := body
	if title != "" {
		text = fmt.Sprintf("<b>%s</b>\n%s", html.EscapeString(title), body)
	}
	return t.sendWithRetry(ctx, chatID, text, t.Retries)
}

// LogNotifier writes notifications to the log. Used when Telegram is not configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, userID, title, body string) error {
	log.Printf("[INFO] notify %s: %s | %s", userID, title, body)
	return nil
}
