package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/web3-frozen/traffic-dashboard/internal/traffic"
	"github.com/web3-frozen/traffic-dashboard/internal/traffic/sources"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func syntheticService(delay time.Duration) *traffic.Service {
	return traffic.NewService(traffic.Credentials{}, sources.NewSynthetic(delay), nil, quietLogger())
}

// liveService wires a provider that talks to upstream.
func liveService(t *testing.T, upstream *httptest.Server) *traffic.Service {
	t.Helper()
	u, err := url.Parse(upstream.URL)
	if err != nil {
		t.Fatalf("parse upstream URL: %v", err)
	}
	creds := traffic.Credentials{APIKey: "real-key", APIHost: u.Host}
	provider := sources.NewProvider(sources.ProviderConfig{Credentials: creds, Scheme: "http"})
	return traffic.NewService(creds, sources.NewSynthetic(0), provider, quietLogger())
}

func postTraffic(t *testing.T, svc *traffic.Service, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/traffic", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	LookupTraffic(svc, quietLogger()).ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func TestLookupTrafficMissingURL(t *testing.T) {
	svc := syntheticService(0)
	for _, body := range []string{`{}`, `{"targetUrl": ""}`, ``} {
		rec := postTraffic(t, svc, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
		if got := decodeError(t, rec); got.Error != "URL is required" {
			t.Errorf("body %q: error = %q", body, got.Error)
		}
	}
}

func TestLookupTrafficInvalidBody(t *testing.T) {
	rec := postTraffic(t, syntheticService(0), `{"targetUrl":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestLookupTrafficSynthetic(t *testing.T) {
	svc := syntheticService(sources.DefaultSyntheticDelay)

	start := time.Now()
	rec := postTraffic(t, svc, `{"targetUrl": "https://example.com/"}`)
	elapsed := time.Since(start)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if elapsed < time.Second {
		t.Errorf("synthetic lookup returned after %v, want >= 1s", elapsed)
	}
	if mode := rec.Header().Get(ModeHeader); mode != "synthetic" {
		t.Errorf("%s = %q, want synthetic", ModeHeader, mode)
	}

	var m traffic.Metrics
	if err := json.NewDecoder(rec.Body).Decode(&m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.Domain != "example.com" {
		t.Errorf("Domain = %q", m.Domain)
	}
	if m.GlobalRank < 1 || m.GlobalRank > 10000 || m.BounceRate > 0.8 {
		t.Errorf("metrics out of range: %+v", m)
	}
	if len(m.TrafficSources) != 4 {
		t.Errorf("TrafficSources = %v", m.TrafficSources)
	}
	if m.LastUpdated.IsZero() {
		t.Error("LastUpdated missing")
	}
}

func TestLookupTrafficLive(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(sources.HeaderAPIKey) != "real-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{
			"GlobalRank": {"Rank": 5},
			"Engagments": {"Visits": "1000", "BounceRate": "0.5"},
			"TopCountryShares": [{"Country": 840, "Value": 0.35}]
		}`))
	}))
	defer upstream.Close()

	rec := postTraffic(t, liveService(t, upstream), `{"targetUrl": "example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if mode := rec.Header().Get(ModeHeader); mode != "live" {
		t.Errorf("%s = %q, want live", ModeHeader, mode)
	}

	var m traffic.Metrics
	if err := json.NewDecoder(rec.Body).Decode(&m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.GlobalRank != 5 || m.TotalVisits != 1000 || m.BounceRate != 0.5 {
		t.Errorf("metrics = %+v", m)
	}
	if len(m.TopCountries) != 1 || m.TopCountries[0].Name != "United States" || m.TopCountries[0].Percentage != 35 {
		t.Errorf("TopCountries = %v", m.TopCountries)
	}
	if len(m.TrafficSources) != 4 {
		t.Errorf("TrafficSources = %v, want zero-filled default", m.TrafficSources)
	}
}

func TestLookupTrafficUpstreamErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantStatus  int
		wantError   string
		wantDetails string
	}{
		{"rate limited", http.StatusTooManyRequests, `{"message":"quota exceeded"}`, 429, "API Limit Reached", ""},
		{"provider error", http.StatusServiceUnavailable, `{"message":"maintenance"}`, 503, "Failed to fetch data", "maintenance"},
		{"garbage body", http.StatusOK, `not json`, 500, "Internal Server Error", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer upstream.Close()

			rec := postTraffic(t, liveService(t, upstream), `{"targetUrl": "example.com"}`)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			got := decodeError(t, rec)
			if got.Error != tt.wantError || got.Details != tt.wantDetails {
				t.Errorf("body = %+v, want error %q details %q", got, tt.wantError, tt.wantDetails)
			}
		})
	}
}

func TestGetTraffic(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/traffic?url=example.com", nil)
	rec := httptest.NewRecorder()
	GetTraffic(syntheticService(0)).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/traffic", nil)
	rec = httptest.NewRecorder()
	GetTraffic(syntheticService(0)).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing url: status = %d, want 400", rec.Code)
	}
}

func TestMeta(t *testing.T) {
	rec := httptest.NewRecorder()
	Meta(syntheticService(0)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/meta", nil))

	var meta map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&meta); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if meta["mode"] != "synthetic" || meta["provider_host"] != "" {
		t.Errorf("meta = %v", meta)
	}
}

type stubLister struct {
	domains []string
	err     error
}

func (s stubLister) List(context.Context) ([]string, error) { return s.domains, s.err }

func TestRecent(t *testing.T) {
	rec := httptest.NewRecorder()
	Recent(stubLister{domains: []string{"b.com", "a.com"}}, quietLogger()).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/recent", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Domains []string `json:"domains"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Domains) != 2 || body.Domains[0] != "b.com" {
		t.Errorf("domains = %v", body.Domains)
	}

	rec = httptest.NewRecorder()
	Recent(nil, quietLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/recent", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("disabled: status = %d, want 503", rec.Code)
	}

	rec = httptest.NewRecorder()
	Recent(stubLister{err: errors.New("redis down")}, quietLogger()).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/recent", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("error: status = %d, want 500", rec.Code)
	}
}

type stubClearer struct {
	cleared *bool
	err     error
}

func (s stubClearer) Clear(context.Context) error {
	if s.err == nil {
		*s.cleared = true
	}
	return s.err
}

func TestClearRecent(t *testing.T) {
	var cleared bool
	rec := httptest.NewRecorder()
	ClearRecent(stubClearer{cleared: &cleared}, quietLogger()).
		ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/recent", nil))
	if rec.Code != http.StatusNoContent || !cleared {
		t.Errorf("status = %d cleared = %v, want 204 true", rec.Code, cleared)
	}

	rec = httptest.NewRecorder()
	ClearRecent(nil, quietLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/recent", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("disabled: status = %d, want 503", rec.Code)
	}

	rec = httptest.NewRecorder()
	ClearRecent(stubClearer{err: errors.New("redis down")}, quietLogger()).
		ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/recent", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("error: status = %d, want 500", rec.Code)
	}
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestReady(t *testing.T) {
	tests := []struct {
		name string
		deps []Pinger
		want int
	}{
		{"no deps", nil, http.StatusOK},
		{"nil dep skipped", []Pinger{nil}, http.StatusOK},
		{"healthy", []Pinger{stubPinger{}}, http.StatusOK},
		{"unhealthy", []Pinger{stubPinger{err: errors.New("down")}}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		Ready(tt.deps...).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, tt.want)
		}
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
