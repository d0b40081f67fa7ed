package sources

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/web3-frozen/traffic-dashboard/internal/traffic"
)

// DefaultSyntheticDelay mimics the cost of a live provider call so loading
// states stay observable in demo mode.
const DefaultSyntheticDelay = 1500 * time.Millisecond

var (
	syntheticSources = []traffic.Share{
		{Name: "Direct", Percentage: 40},
		{Name: "Search", Percentage: 35},
		{Name: "Social", Percentage: 15},
		{Name: "Referrals", Percentage: 10},
	}
	syntheticCountries = []traffic.Share{
		{Name: "United States", Percentage: 35},
		{Name: "United Kingdom", Percentage: 12},
		{Name: "Germany", Percentage: 8},
		{Name: "India", Percentage: 7},
		{Name: "Canada", Percentage: 5},
	}
)

// Synthetic produces representative mock metrics when no provider is
// configured.
type Synthetic struct {
	delay time.Duration
	now   func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSynthetic(delay time.Duration) *Synthetic {
	return &Synthetic{
		delay: delay,
		now:   time.Now,
		rng:   rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
	}
}

func (s *Synthetic) Name() string { return "synthetic" }

// Fetch waits for the configured delay and returns a fresh record. It only
// returns an error when ctx ends before the delay elapses.
func (s *Synthetic) Fetch(ctx context.Context, domain string) (*traffic.Metrics, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	s.mu.Lock()
	rank := s.rng.Int64N(10000) + 1
	visits := s.rng.Int64N(1000001) + 50000
	bounce := math.Round(s.rng.Float64()*0.8*100) / 100
	pages := math.Round((1+s.rng.Float64()*5)*100) / 100
	duration := math.Round(30 + s.rng.Float64()*500)
	s.mu.Unlock()

	return &traffic.Metrics{
		Domain:           domain,
		GlobalRank:       rank,
		TotalVisits:      visits,
		BounceRate:       bounce,
		PagesPerVisit:    pages,
		AvgVisitDuration: duration,
		TrafficSources:   append([]traffic.Share(nil), syntheticSources...),
		TopCountries:     append([]traffic.Share(nil), syntheticCountries...),
		LastUpdated:      s.now().UTC(),
	}, nil
}
