package traffic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/web3-frozen/traffic-dashboard/internal/metrics"
)

// Recorder is notified of every successful lookup (e.g. the recent-lookup
// history). Failures are logged and never fail the lookup.
type Recorder interface {
	Record(ctx context.Context, domain string) error
}

// OutcomeCanceled labels lookups abandoned by the caller.
const OutcomeCanceled = "canceled"

// Service resolves a user-supplied URL into a canonical metrics record.
// It holds no per-request state; every Lookup is independent.
type Service struct {
	creds     Credentials
	synthetic Source
	live      Source
	recorder  Recorder
	logger    *slog.Logger
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithRecorder attaches a Recorder for successful lookups.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

func NewService(creds Credentials, synthetic, live Source, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		creds:     creds,
		synthetic: synthetic,
		live:      live,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mode reports the mode the next lookup will run in.
func (s *Service) Mode() Mode {
	return ResolveMode(s.creds)
}

// ProviderHost returns the configured upstream host, or "" in synthetic mode.
func (s *Service) ProviderHost() string {
	if s.Mode() != ModeLive {
		return ""
	}
	return s.creds.APIHost
}

// Lookup normalizes target, picks a source and returns its record. Every
// failure is returned as a *Error.
func (s *Service) Lookup(ctx context.Context, target string) (*Metrics, Mode, error) {
	mode := s.Mode()
	if strings.TrimSpace(target) == "" {
		metrics.LookupsTotal.WithLabelValues(mode.String(), KindBadRequest.String()).Inc()
		return nil, mode, BadRequest("URL is required")
	}

	domain := NormalizeDomain(target)
	if domain == "" {
		metrics.LookupsTotal.WithLabelValues(mode.String(), KindBadRequest.String()).Inc()
		return nil, mode, BadRequest("Invalid URL")
	}

	src, err := s.sourceFor(mode)
	if err != nil {
		metrics.LookupsTotal.WithLabelValues(mode.String(), KindInternal.String()).Inc()
		return nil, mode, Internal(err)
	}
	if mode == ModeSynthetic {
		s.logger.Warn("missing API keys, returning mock data", "domain", domain)
	}

	start := time.Now()
	m, err := src.Fetch(ctx, domain)
	metrics.LookupDuration.WithLabelValues(mode.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		te := AsError(err)
		if errors.Is(err, context.Canceled) {
			metrics.LookupsTotal.WithLabelValues(mode.String(), OutcomeCanceled).Inc()
			s.logger.Debug("traffic lookup canceled", "domain", domain, "source", src.Name())
			return nil, mode, te
		}
		metrics.LookupsTotal.WithLabelValues(mode.String(), te.Kind.String()).Inc()
		if te.Kind == KindInternal {
			s.logger.Error("traffic lookup failed", "domain", domain, "source", src.Name(), "error", err)
		} else {
			s.logger.Warn("traffic lookup rejected", "domain", domain, "source", src.Name(),
				"kind", te.Kind.String(), "status", te.Status)
		}
		return nil, mode, te
	}

	m.Domain = domain
	m.Sanitize()
	metrics.LookupsTotal.WithLabelValues(mode.String(), "ok").Inc()
	s.logger.Info("traffic lookup", "domain", domain, "source", src.Name(), "rank", m.GlobalRank)

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, domain); err != nil {
			s.logger.Warn("record recent lookup failed", "domain", domain, "error", err)
		}
	}
	return m, mode, nil
}

var errNoSource = errors.New("no source registered")

func (s *Service) sourceFor(mode Mode) (Source, error) {
	src := s.synthetic
	if mode == ModeLive {
		src = s.live
	}
	if src == nil {
		return nil, fmt.Errorf("%s mode: %w", mode, errNoSource)
	}
	return src, nil
}
