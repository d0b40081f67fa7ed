package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/web3-frozen/traffic-dashboard/internal/metrics"
	"github.com/web3-frozen/traffic-dashboard/internal/traffic"
)

// Auth headers expected by the provider gateway.
const (
	HeaderAPIKey  = "X-RapidAPI-Key"
	HeaderAPIHost = "X-RapidAPI-Host"
)

// maxBodySize bounds how much of an upstream response is read.
const maxBodySize = 4 << 20

// ProviderConfig describes the upstream endpoint. Method, path and the name
// of the domain parameter are provider-specific.
type ProviderConfig struct {
	traffic.Credentials
	Scheme      string
	Method      string
	Path        string
	DomainParam string
	// Timeout of zero keeps the platform default (no client-side limit).
	Timeout time.Duration
}

func (c *ProviderConfig) applyDefaults() {
	if c.Scheme == "" {
		c.Scheme = "https"
	}
	if c.Method == "" {
		c.Method = http.MethodGet
	}
	c.Method = strings.ToUpper(c.Method)
	if c.Path == "" {
		c.Path = "/data"
	}
	if !strings.HasPrefix(c.Path, "/") {
		c.Path = "/" + c.Path
	}
	if c.DomainParam == "" {
		c.DomainParam = "domain"
	}
}

// RawResponse is the upstream reply, untouched.
type RawResponse struct {
	Status int
	Body   []byte
}

// Provider queries the configured traffic-analytics provider.
type Provider struct {
	client *http.Client
	cfg    ProviderConfig
	now    func() time.Time
}

func NewProvider(cfg ProviderConfig) *Provider {
	cfg.applyDefaults()
	return &Provider{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		now:    time.Now,
	}
}

func (p *Provider) Name() string { return "provider" }

// Fetch calls the provider once and normalizes a 2xx body. Non-2xx replies are
// classified; transport and decode failures surface as internal errors.
func (p *Provider) Fetch(ctx context.Context, domain string) (*traffic.Metrics, error) {
	raw, err := p.Do(ctx, domain)
	if err != nil {
		return nil, traffic.Internal(err)
	}
	if raw.Status < 200 || raw.Status > 299 {
		return nil, traffic.ClassifyResponse(raw.Status, raw.Body)
	}

	m, err := Normalize(raw.Body, p.now())
	if err != nil {
		return nil, traffic.Internal(fmt.Errorf("normalize provider response: %w", err))
	}
	return m, nil
}

// Do issues the HTTP request and returns status and body without
// interpreting either.
func (p *Provider) Do(ctx context.Context, domain string) (*RawResponse, error) {
	req, err := p.newRequest(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("build provider request: %w", err)
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	metrics.UpstreamDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamResponsesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()
	metrics.UpstreamResponsesTotal.WithLabelValues(metrics.StatusClass(resp.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read provider response: %w", err)
	}
	return &RawResponse{Status: resp.StatusCode, Body: body}, nil
}

func (p *Provider) newRequest(ctx context.Context, domain string) (*http.Request, error) {
	u := url.URL{Scheme: p.cfg.Scheme, Host: p.cfg.APIHost, Path: p.cfg.Path}

	var body io.Reader
	switch p.cfg.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		payload, err := json.Marshal(map[string]string{p.cfg.DomainParam: domain})
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(payload)
	default:
		q := u.Query()
		q.Set(p.cfg.DomainParam, domain)
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, p.cfg.Method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(HeaderAPIKey, p.cfg.APIKey)
	req.Header.Set(HeaderAPIHost, p.cfg.APIHost)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}
