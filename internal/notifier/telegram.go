// Package notifier delivers run outcomes through the Telegram Bot API.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public Telegram Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// Telegram allows roughly one message per second to a single chat.
const (
	sendInterval = time.Second
	sendBurst    = 10

	breakerFailures = 5
	breakerCooldown = time.Minute
)

// TelegramNotifier sends messages via the Telegram Bot API. Sends are paced
// by Limiter and stop for breakerCooldown after breakerFailures consecutive
// failures.
type TelegramNotifier struct {
	BotToken string
	ChatID   string
	BaseURL  string
	Client   *http.Client
	Limiter  *rate.Limiter

	breaker *gobreaker.CircuitBreaker
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
		BaseURL:  DefaultBaseURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		Limiter: rate.NewLimiter(rate.Every(sendInterval), sendBurst),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "telegram",
			Timeout: breakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			},
		}),
	}
}

func (t *TelegramNotifier) endpoint(method string) string {
	base := t.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return fmt.Sprintf("%s/bot%s/%s", base, t.BotToken, method)
}

// Send sends a message to the configured chat. It returns
// gobreaker.ErrOpenState without calling the API while the breaker is open.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	if t.Limiter != nil {
		if err := t.Limiter.Wait(ctx); err != nil {
			return fmt.Errorf("wait for send slot: %w", err)
		}
	}
	if t.breaker == nil {
		return t.send(ctx, text)
	}
	_, err := t.breaker.Execute(func() (interface{}, error) {
		return nil, t.send(ctx, text)
	})
	return err
}

func (t *TelegramNotifier) send(ctx context.Context, text string) error {
	payload := map[string]string{
		"chat_id":    t.ChatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
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

// backoff is the wait before retry attempt i (0-based). Replaced in tests.
var backoff = func(i int) time.Duration {
	return time.Duration(1<<uint(i)) * time.Second
}

// SendWithRetry sends a message with exponential backoff retry.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		err := t.Send(ctx, text)
		if err == nil {
			return nil
		}
		lastErr = err
		if errors.Is(err, gobreaker.ErrOpenState) || i == maxRetries {
			break
		}
		wait := backoff(i)
		log.Warn().Err(err).
			Int("attempt", i+1).
			Int("of", maxRetries+1).
			Dur("retry_in", wait).
			Msg("telegram send failed")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}
