package widget

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"postcode_lookup/internal/addresslookup/transport"
)

const maxEnvelopeBody = 1 << 20

// HTTPTransport posts lookups to the lookup endpoint.
type HTTPTransport struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPTransport creates a transport for the given endpoint URL.
func NewHTTPTransport(endpoint string, timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPTransport{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Lookup sends postcode=<value> form-encoded and decodes the envelope
// whatever the HTTP status.
func (t *HTTPTransport) Lookup(ctx context.Context, postcode string) (transport.Envelope, error) {
	form := url.Values{"postcode": {postcode}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return transport.Envelope{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return transport.Envelope{}, fmt.Errorf("lookup request: %w", err)
	}
	defer resp.Body.Close()

	var env transport.Envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxEnvelopeBody)).Decode(&env); err != nil {
		return transport.Envelope{}, fmt.Errorf("decode envelope (http %d): %w", resp.StatusCode, err)
	}
	if env.Status == 0 {
		env.Status = resp.StatusCode
	}
	return env, nil
}
