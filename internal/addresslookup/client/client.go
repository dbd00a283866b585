// Package client provides the HTTP client for the getAddress.io API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"postcode_lookup/internal/addresslookup/transport"
	"postcode_lookup/internal/postcode"
	"postcode_lookup/platform/logger"
	"postcode_lookup/platform/sanitize"
)

const (
	defaultBaseURL = "https://api.getAddress.io"
	defaultTimeout = 5 * time.Second

	// maxErrorBody caps how much of an upstream error body is read.
	maxErrorBody = 4 << 10
)

// ErrNotConfigured is returned when either provider key is missing. No
// request is made in that case.
var ErrNotConfigured = errors.New("address lookup: provider keys not configured")

// ProviderError describes a failed provider call. Message never contains
// credentials.
type ProviderError struct {
	Status  int
	Message string
	Timeout bool
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("address provider: status %d: %s", e.Status, e.Message)
}

// Config holds the provider settings.
type Config struct {
	BaseURL  string
	APIKey   string
	AdminKey string
	Timeout  time.Duration
}

// Configured reports whether both keys are present.
func (c Config) Configured() bool {
	return c.APIKey != "" && c.AdminKey != ""
}

// Client is the HTTP client for getAddress.io.
type Client struct {
	httpClient *http.Client
	cfg        Config
	log        *logger.Logger
}

// New creates a new getAddress.io client.
func New(cfg Config, log *logger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		log:        log,
	}
}

// Find returns the addresses for a postcode in provider order. The request
// asks the provider to sort numerically. A provider 404 means the postcode
// has no addresses and yields an empty slice with a nil error.
func (c *Client) Find(ctx context.Context, pc postcode.Postcode) ([]transport.Candidate, error) {
	if !c.cfg.Configured() {
		return nil, ErrNotConfigured
	}
	if pc.IsZero() {
		return nil, postcode.ErrInvalidPostcode
	}

	params := url.Values{}
	params.Set("api-key", c.cfg.APIKey)
	params.Set("expand", "true")
	params.Set("sort", "true")

	reqURL := fmt.Sprintf("%s/find/%s?%s", c.cfg.BaseURL, url.PathEscape(pc.String()), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(err, pc)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Success - continue to decode
	case http.StatusNotFound:
		c.log.Debug("getaddress postcode not found", "postcode", pc.String())
		return []transport.Candidate{}, nil
	default:
		perr := &ProviderError{Status: resp.StatusCode, Message: upstreamMessage(resp)}
		c.log.Error("getaddress upstream error", "status", resp.StatusCode, "message", perr.Message, "postcode", pc.String())
		return nil, perr
	}

	var payload findResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.Error("getaddress decode failed", "error", err)
		return nil, &ProviderError{Status: http.StatusBadGateway, Message: "invalid response from address provider"}
	}

	candidates := make([]transport.Candidate, 0, len(payload.Addresses))
	for _, address := range payload.Addresses {
		candidate := address.toCandidate()
		if !candidate.HasLine() {
			continue
		}
		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

// Ping checks that the provider answers. Any non-5xx response counts as up.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportError(err, postcode.Postcode{})
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return &ProviderError{Status: resp.StatusCode, Message: "address provider unavailable"}
	}
	return nil
}

// transportError converts a client failure into a ProviderError. The
// *url.Error is unwrapped first because its message embeds the request URL,
// which carries the API key.
func (c *Client) transportError(err error, pc postcode.Postcode) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	if isTimeout(err) {
		c.log.Warn("getaddress request timed out", "postcode", pc.String())
		return &ProviderError{Status: http.StatusGatewayTimeout, Message: "address provider timed out", Timeout: true}
	}

	c.log.Error("getaddress request failed", "error", err, "postcode", pc.String())
	return &ProviderError{Status: http.StatusBadGateway, Message: "address provider unreachable"}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// upstreamMessage extracts the provider's error message, falling back to
// the status text.
func upstreamMessage(resp *http.Response) string {
	var body struct {
		Message string `json:"Message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err := json.Unmarshal(raw, &body); err == nil && strings.TrimSpace(body.Message) != "" {
		return sanitize.Text(body.Message)
	}
	return http.StatusText(resp.StatusCode)
}

// findResponse is the expanded getAddress.io find payload.
type findResponse struct {
	Postcode  string       `json:"postcode"`
	Latitude  float64      `json:"latitude"`
	Longitude float64      `json:"longitude"`
	Addresses []apiAddress `json:"addresses"`
}

type apiAddress struct {
	FormattedAddress []string `json:"formatted_address"`
	Thoroughfare     string   `json:"thoroughfare"`
	BuildingName     string   `json:"building_name"`
	BuildingNumber   string   `json:"building_number"`
	Line1            string   `json:"line_1"`
	Line2            string   `json:"line_2"`
	Line3            string   `json:"line_3"`
	Line4            string   `json:"line_4"`
	Locality         string   `json:"locality"`
	TownOrCity       string   `json:"town_or_city"`
	County           string   `json:"county"`
	District         string   `json:"district"`
	Country          string   `json:"country"`
}

// toCandidate folds the provider's four lines and locality into two lines.
func (a apiAddress) toCandidate() transport.Candidate {
	rest := make([]string, 0, 4)
	for _, line := range []string{a.Line2, a.Line3, a.Line4, a.Locality} {
		if cleaned := sanitize.Text(line); cleaned != "" {
			rest = append(rest, cleaned)
		}
	}

	line1 := sanitize.Text(a.Line1)
	if line1 == "" && len(rest) > 0 {
		line1, rest = rest[0], rest[1:]
	}

	return transport.Candidate{
		Line1:  line1,
		Line2:  strings.Join(rest, ", "),
		City:   sanitize.Text(a.TownOrCity),
		County: sanitize.Text(a.County),
	}
}
