package traffic

import (
	"context"
	"time"
)

// Source defines the interface that all traffic data sources must implement.
// The synthetic generator and the upstream provider client both satisfy it;
// the Service picks one per lookup based on the resolved Mode.
type Source interface {
	// Name returns a unique identifier for this source (e.g., "synthetic").
	Name() string

	// Fetch returns the canonical metrics record for a normalized domain.
	Fetch(ctx context.Context, domain string) (*Metrics, error)
}

// Share is one named slice of a breakdown, in percentage points (0-100).
type Share struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

// Metrics is the canonical record returned to every caller regardless of
// which source produced it.
type Metrics struct {
	Domain           string    `json:"domain"`
	GlobalRank       int64     `json:"globalRank"`
	TotalVisits      int64     `json:"totalVisits"`
	BounceRate       float64   `json:"bounceRate"`
	PagesPerVisit    float64   `json:"pagesPerVisit"`
	AvgVisitDuration float64   `json:"avgVisitDuration"`
	TrafficSources   []Share   `json:"trafficSources"`
	TopCountries     []Share   `json:"topCountries"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

// MaxCountries caps the country breakdown.
const MaxCountries = 5

// DefaultChannels are the four canonical traffic channels, in display order.
var DefaultChannels = []string{"Direct", "Search", "Social", "Referrals"}

// EmptySources returns the zero-filled four-channel breakdown used whenever a
// source has nothing to report.
func EmptySources() []Share {
	out := make([]Share, len(DefaultChannels))
	for i, name := range DefaultChannels {
		out[i] = Share{Name: name}
	}
	return out
}

// Sanitize enforces the record's invariants in place: breakdowns are never
// nil, sources fall back to the zero-filled default, countries are capped.
func (m *Metrics) Sanitize() {
	if len(m.TrafficSources) == 0 {
		m.TrafficSources = EmptySources()
	}
	if m.TopCountries == nil {
		m.TopCountries = []Share{}
	}
	if len(m.TopCountries) > MaxCountries {
		m.TopCountries = m.TopCountries[:MaxCountries]
	}
}
