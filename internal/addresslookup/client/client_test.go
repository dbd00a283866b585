package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"postcode_lookup/internal/postcode"
	"postcode_lookup/platform/logger"
)

const testAPIKey = "api-key-secret"

func mustPostcode(t *testing.T, raw string) postcode.Postcode {
	t.Helper()
	pc, err := postcode.Normalize(raw)
	if err != nil {
		t.Fatalf("normalize %q: %v", raw, err)
	}
	return pc
}

func newTestClient(baseURL string) *Client {
	return New(Config{BaseURL: baseURL, APIKey: testAPIKey, AdminKey: "admin-secret", Timeout: time.Second}, logger.Discard())
}

func TestFindSendsPostcodeKeyAndSortDirective(t *testing.T) {
	var gotPath, gotKey, gotSort, gotExpand string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("api-key")
		gotSort = r.URL.Query().Get("sort")
		gotExpand = r.URL.Query().Get("expand")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"postcode":"SW1A 2AA","addresses":[]}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Find(context.Background(), mustPostcode(t, "sw1a2aa")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/find/SW1A 2AA" {
		t.Fatalf("expected path /find/SW1A 2AA, got %q", gotPath)
	}
	if gotKey != testAPIKey {
		t.Fatalf("expected api key to be sent, got %q", gotKey)
	}
	if gotSort != "true" || gotExpand != "true" {
		t.Fatalf("expected sort=true&expand=true, got sort=%q expand=%q", gotSort, gotExpand)
	}
}

func TestFindPreservesProviderOrderAndMapsParts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"postcode": "LS1 1AA",
			"addresses": [
				{"line_1": "2 High Street", "line_2": "", "line_3": "", "line_4": "", "locality": "", "town_or_city": "Leeds", "county": "West Yorkshire"},
				{"line_1": "10 High Street", "line_2": "Flat 3", "line_3": "Block B", "line_4": "", "locality": "Headingley", "town_or_city": "Leeds", "county": ""},
				{"line_1": "1 High Street", "line_2": "", "line_3": "", "line_4": "", "locality": "", "town_or_city": "Leeds", "county": "West Yorkshire"},
				{"line_1": "", "line_2": "", "line_3": "", "line_4": "", "locality": "", "town_or_city": "Leeds", "county": ""}
			]
		}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Find(context.Background(), mustPostcode(t, "LS1 1AA"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 candidates (lineless record skipped), got %d", len(got))
	}
	if got[0].Line1 != "2 High Street" || got[1].Line1 != "10 High Street" || got[2].Line1 != "1 High Street" {
		t.Fatalf("expected provider order to be preserved, got %q, %q, %q", got[0].Line1, got[1].Line1, got[2].Line1)
	}
	if got[1].Line2 != "Flat 3, Block B, Headingley" {
		t.Fatalf("expected folded line 2, got %q", got[1].Line2)
	}
	if got[0].City != "Leeds" || got[0].County != "West Yorkshire" {
		t.Fatalf("expected city/county mapping, got %+v", got[0])
	}
	if got[0].Postcode != "" {
		t.Fatalf("expected candidate postcode to stay empty, got %q", got[0].Postcode)
	}
}

func TestFindTreatsProviderNotFoundAsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"Message":"Postcode not found"}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Find(context.Background(), mustPostcode(t, "ZZ99 9ZZ"))
	if err != nil {
		t.Fatalf("expected no error for not found, got %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", got)
	}
}

func TestFindReturnsProviderErrorWithUpstreamMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"Message":"Api key not valid"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Find(context.Background(), mustPostcode(t, "SW1A 1AA"))

	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if perr.Status != http.StatusUnauthorized || perr.Message != "Api key not valid" {
		t.Fatalf("unexpected provider error %+v", perr)
	}
}

func TestFindWithoutKeysDoesNotCallProvider(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	for _, cfg := range []Config{
		{BaseURL: srv.URL},
		{BaseURL: srv.URL, APIKey: testAPIKey},
		{BaseURL: srv.URL, AdminKey: "admin-secret"},
	} {
		_, err := New(cfg, logger.Discard()).Find(context.Background(), mustPostcode(t, "SW1A 1AA"))
		if !errors.Is(err, ErrNotConfigured) {
			t.Fatalf("expected ErrNotConfigured, got %v", err)
		}
	}

	if calls.Load() != 0 {
		t.Fatalf("expected no provider calls, got %d", calls.Load())
	}
}

func TestFindRejectsZeroPostcode(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Find(context.Background(), postcode.Postcode{})
	if !errors.Is(err, postcode.ErrInvalidPostcode) {
		t.Fatalf("expected ErrInvalidPostcode, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatal("expected no provider call for zero postcode")
	}
}

func TestFindTimeoutIsProviderErrorWithoutKey(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(srv.URL).Find(ctx, mustPostcode(t, "SW1A 1AA"))

	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if !perr.Timeout || perr.Status != http.StatusGatewayTimeout {
		t.Fatalf("expected timeout provider error, got %+v", perr)
	}
	if strings.Contains(err.Error(), testAPIKey) {
		t.Fatalf("expected error to hide the api key, got %q", err.Error())
	}
}

func TestFindUnreachableProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	_, err := newTestClient(baseURL).Find(context.Background(), mustPostcode(t, "SW1A 1AA"))

	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if perr.Status != http.StatusBadGateway || perr.Timeout {
		t.Fatalf("expected unreachable provider error, got %+v", perr)
	}
	if strings.Contains(err.Error(), testAPIKey) {
		t.Fatalf("expected error to hide the api key, got %q", err.Error())
	}
}

func TestFindInvalidJSONIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Find(context.Background(), mustPostcode(t, "SW1A 1AA"))

	var perr *ProviderError
	if !errors.As(err, &perr) || perr.Status != http.StatusBadGateway {
		t.Fatalf("expected 502 provider error, got %v", err)
	}
}

func TestPingTreatsOnlyServerErrorsAsDown(t *testing.T) {
	status := http.StatusForbidden
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" || r.URL.Query().Get("api-key") != "" {
			t.Errorf("expected bare root request, got %s", r.URL.String())
		}
		w.WriteHeader(status)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("expected 403 to count as reachable, got %v", err)
	}

	status = http.StatusServiceUnavailable
	err := c.Ping(context.Background())
	var perr *ProviderError
	if !errors.As(err, &perr) || perr.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 provider error, got %v", err)
	}
}

func TestPingUnreachableProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	if err := newTestClient(baseURL).Ping(context.Background()); err == nil {
		t.Fatal("expected error for unreachable provider")
	}
}
