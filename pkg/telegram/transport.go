package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// maxResponseBytes caps how much of an API answer is read
const maxResponseBytes = 1 << 20

// Doer is the part of *http.Client the transports use
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Transport posts form parameters and returns the raw response body.
// Non-2xx answers are not errors here; the Bot API reports failures in the body.
type Transport interface {
	Name() string
	Available() bool
	Post(ctx context.Context, endpoint string, params url.Values) ([]byte, error)
}

// MultipartTransport sends multipart/form-data bodies
type MultipartTransport struct {
	client  Doer
	enabled bool
}

// NewMultipartTransport returns the primary transport. A nil client uses http.DefaultClient.
func NewMultipartTransport(client Doer, enabled bool) *MultipartTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &MultipartTransport{client: client, enabled: enabled}
}

func (t *MultipartTransport) Name() string    { return "multipart" }
func (t *MultipartTransport) Available() bool { return t.enabled }

func (t *MultipartTransport) Post(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, key := range sortedKeys(params) {
		for _, v := range params[key] {
			if err := w.WriteField(key, v); err != nil {
				return nil, fmt.Errorf("failed to build multipart body: %w", err)
			}
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	return post(ctx, t.client, endpoint, w.FormDataContentType(), &buf)
}

// FormTransport sends application/x-www-form-urlencoded bodies
type FormTransport struct {
	client Doer
}

// NewFormTransport returns the fallback transport. A nil client uses http.DefaultClient.
func NewFormTransport(client Doer) *FormTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &FormTransport{client: client}
}

func (t *FormTransport) Name() string    { return "urlencoded" }
func (t *FormTransport) Available() bool { return true }

func (t *FormTransport) Post(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	return post(ctx, t.client, endpoint, "application/x-www-form-urlencoded", strings.NewReader(params.Encode()))
}

func post(ctx context.Context, client Doer, endpoint, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %s", redactToken(err.Error(), endpoint))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return data, nil
}

// redactToken keeps the bot token out of error text that ends up in responses and logs
func redactToken(msg, endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Path == "" {
		return msg
	}
	return strings.ReplaceAll(msg, u.Path, "/bot<redacted>/sendMessage")
}

func sortedKeys(v url.Values) []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
