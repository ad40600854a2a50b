// Package telegram sends relay notifications through the Bot API sendMessage method.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"checkout-relay-backend/pkg/logger"
)

const (
	// DefaultAPIBase is the public Bot API host
	DefaultAPIBase = "https://api.telegram.org"
	// DefaultTimeout bounds every sendMessage call
	DefaultTimeout = 10 * time.Second

	placeholderPrefix = "REPLACE_WITH_"
)

// ErrInvalidResponse is returned when the API answer does not decode to a JSON object or array
var ErrInvalidResponse = errors.New("Invalid response from Telegram")

// Config holds what the client needs to reach one chat
type Config struct {
	Token            string
	ChatID           string
	APIBase          string
	Timeout          time.Duration
	DisableMultipart bool
	HTTPClient       Doer
}

// APIError is an ok=false answer from the Bot API
type APIError struct {
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return "Unknown error"
	}
	return e.Description
}

// ChunkError identifies the chunk that stopped a SendChunks run.
// Its message is the underlying error text.
type ChunkError struct {
	Index int
	Err   error
}

func (e *ChunkError) Error() string { return e.Err.Error() }
func (e *ChunkError) Unwrap() error { return e.Err }

// Client posts messages to a single chat. It keeps no per-request state.
type Client struct {
	token    string
	chatID   string
	apiBase  string
	timeout  time.Duration
	primary  Transport
	fallback Transport
}

// New builds a client with multipart as the primary transport and
// urlencoded as the fallback.
func New(cfg Config) *Client {
	apiBase := strings.TrimRight(cfg.APIBase, "/")
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		token:    strings.TrimSpace(cfg.Token),
		chatID:   strings.TrimSpace(cfg.ChatID),
		apiBase:  apiBase,
		timeout:  timeout,
		primary:  NewMultipartTransport(cfg.HTTPClient, !cfg.DisableMultipart),
		fallback: NewFormTransport(cfg.HTTPClient),
	}
}

// Configured reports whether token and chat id are set and not placeholders
func (c *Client) Configured() bool {
	return !IsPlaceholder(c.token) && !IsPlaceholder(c.chatID)
}

// IsPlaceholder reports an empty value or one still carrying the
// REPLACE_WITH_ template marker.
func IsPlaceholder(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.HasPrefix(strings.ToUpper(v), placeholderPrefix)
}

// SendChunks sends each chunk in order and stops at the first failure.
// It returns the number of chunks delivered; the error is a *ChunkError.
func (c *Client) SendChunks(ctx context.Context, chunks []string) (int, error) {
	for i, chunk := range chunks {
		if err := c.SendMessage(ctx, chunk); err != nil {
			return i, &ChunkError{Index: i, Err: err}
		}
	}
	return len(chunks), nil
}

// SendMessage posts one HTML-formatted message with link previews disabled
func (c *Client) SendMessage(ctx context.Context, text string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("chat_id", c.chatID)
	params.Set("text", text)
	params.Set("parse_mode", "HTML")
	params.Set("disable_web_page_preview", "true")

	t := c.transport()
	logger.Log.Debug("Telegram sendMessage", "transport", t.Name(), "bytes", len(text))

	body, err := t.Post(ctx, c.endpoint(), params)
	if err != nil {
		return err
	}
	return parseResponse(body)
}

func (c *Client) transport() Transport {
	if c.primary.Available() {
		return c.primary
	}
	return c.fallback
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/bot%s/sendMessage", c.apiBase, c.token)
}

// parseResponse mirrors loose decoding: any JSON object or array is an
// answer, and only a truthy "ok" member means success. Scalars, null and
// undecodable bodies are invalid.
func parseResponse(body []byte) error {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return ErrInvalidResponse
	}
	switch resp := decoded.(type) {
	case map[string]any:
		if truthy(resp["ok"]) {
			return nil
		}
		description, _ := resp["description"].(string)
		return &APIError{Description: description}
	case []any:
		return &APIError{}
	default:
		return ErrInvalidResponse
	}
}

// truthy follows loose JSON truthiness: false, 0, "", "0", null and empty
// objects or arrays are false
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != "" && t != "0"
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	case nil:
		return false
	default:
		return true
	}
}
