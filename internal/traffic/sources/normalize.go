package sources

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/web3-frozen/traffic-dashboard/internal/metrics"
	"github.com/web3-frozen/traffic-dashboard/internal/traffic"
)

// Candidate source paths per canonical field, in priority order. Providers
// have shipped both snake/camel-case and Pascal-case payloads (the latter
// including the "Engagments" misspelling).
var (
	rankPaths     = []string{"global_rank", "globalRank.rank", "globalRank", "GlobalRank.Rank", "GlobalRank", "rank"}
	visitsPaths   = []string{"total_visits", "totalVisits", "visits", "Engagments.Visits", "Engagements.Visits"}
	bouncePaths   = []string{"bounce_rate", "bounceRate", "Engagments.BounceRate", "Engagements.BounceRate"}
	pagesPaths    = []string{"pages_per_visit", "pagesPerVisit", "Engagments.PagePerVisit", "Engagements.PagePerVisit"}
	durationPaths = []string{"avg_visit_duration", "avgVisitDuration", "Engagments.TimeOnSite", "Engagements.TimeOnSite"}
	sourcesPaths  = []string{"sources", "trafficSources", "TrafficSources"}
	countryPaths  = []string{"top_countries", "topCountries", "TopCountryShares", "CountryShares"}
)

// Keys probed inside breakdown entries.
var (
	sourceNameKeys  = []string{"source", "name", "Name", "channel"}
	sourceValueKeys = []string{"percent", "percentage", "Value", "value", "share"}
	countryNameKeys = []string{"name", "country", "Country", "countryName", "CountryName", "CountryCode", "countryCode", "code"}
	countryValKeys  = []string{"percentage", "percent", "share", "Value", "value"}
)

var errNotObject = errors.New("provider response is not a JSON object")

// Normalize maps an arbitrary provider payload onto the canonical record.
// Missing or unusable fields resolve to zero values; only a body that is not
// a JSON object is an error.
func Normalize(body []byte, now time.Time) (*traffic.Metrics, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}

	m := &traffic.Metrics{
		GlobalRank:       toInt64(firstNumber(doc, "globalRank", rankPaths)),
		TotalVisits:      toInt64(firstNumber(doc, "totalVisits", visitsPaths)),
		BounceRate:       bounceRate(firstNumber(doc, "bounceRate", bouncePaths)),
		PagesPerVisit:    round2(firstNumber(doc, "pagesPerVisit", pagesPaths)),
		AvgVisitDuration: round2(firstNumber(doc, "avgVisitDuration", durationPaths)),
		TrafficSources:   breakdown(first(doc, sourcesPaths), sourceNameKeys, sourceValueKeys, sourceName),
		TopCountries:     breakdown(first(doc, countryPaths), countryNameKeys, countryValKeys, countryName),
		LastUpdated:      now.UTC(),
	}
	if len(m.TrafficSources) == 0 {
		metrics.NormalizeFallbackTotal.WithLabelValues("trafficSources").Inc()
	}
	m.Sanitize()
	return m, nil
}

// lookup walks a dotted path through nested objects.
func lookup(doc map[string]any, path string) (any, bool) {
	var cur any = doc
	for _, key := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

// first returns the first non-empty value found at any of paths.
func first(doc map[string]any, paths []string) any {
	for _, p := range paths {
		v, ok := lookup(doc, p)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			if strings.TrimSpace(t) == "" {
				continue
			}
		case []any:
			if len(t) == 0 {
				continue
			}
		case map[string]any:
			if len(t) == 0 {
				continue
			}
		}
		return v
	}
	return nil
}

// firstNumber returns the first positive number found at any of paths. Zero
// counts as absent so a later candidate can still supply the value.
func firstNumber(doc map[string]any, field string, paths []string) float64 {
	for _, p := range paths {
		v, ok := lookup(doc, p)
		if !ok {
			continue
		}
		if n, ok := toNumber(v); ok && n > 0 {
			return n
		}
	}
	metrics.NormalizeFallbackTotal.WithLabelValues(field).Inc()
	return 0
}

// toNumber coerces JSON numbers and numeric strings ("1,234", "45%").
// NaN, infinities and negatives are rejected.
func toNumber(v any) (float64, bool) {
	var (
		f   float64
		err error
	)
	switch t := v.(type) {
	case json.Number:
		f, err = t.Float64()
	case float64:
		f = t
	case string:
		s := strings.TrimSpace(t)
		s = strings.TrimSuffix(s, "%")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0, false
		}
		f, err = strconv.ParseFloat(s, 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

// toInt64 rounds a count, saturating at MaxInt64 so oversized provider
// values cannot wrap negative.
func toInt64(v float64) int64 {
	v = math.Round(v)
	if v >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}

// bounceRate keeps the fraction convention; values above 1 are read as
// percentage points.
func bounceRate(v float64) float64 {
	if v > 1 {
		v /= 100
	}
	return math.Min(round4(v), 1)
}

type nameFunc func(v any) (string, bool)

type entry struct {
	name  string
	value float64
}

// breakdown decodes a list of {name, value} objects or a {name: value} map
// into shares. A list whose values are all fractions is rescaled to
// percentage points.
func breakdown(v any, nameKeys, valueKeys []string, resolve nameFunc) []traffic.Share {
	var entries []entry
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			name, ok := resolve(firstKey(obj, nameKeys))
			if !ok {
				continue
			}
			val, _ := toNumber(firstKey(obj, valueKeys))
			entries = append(entries, entry{name: name, value: val})
		}
	case map[string]any:
		for k, raw := range t {
			name, ok := resolve(k)
			if !ok {
				continue
			}
			val, _ := toNumber(raw)
			entries = append(entries, entry{name: name, value: val})
		}
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].value != entries[j].value {
				return entries[i].value > entries[j].value
			}
			return entries[i].name < entries[j].name
		})
	default:
		return nil
	}

	fractional := len(entries) > 0
	for _, e := range entries {
		if e.value > 1 {
			fractional = false
			break
		}
	}

	out := make([]traffic.Share, 0, len(entries))
	for _, e := range entries {
		pct := e.value
		if fractional {
			pct *= 100
		}
		out = append(out, traffic.Share{Name: e.name, Percentage: round2(pct)})
	}
	return out
}

func firstKey(obj map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func sourceName(v any) (string, bool) {
	s, ok := v.(string)
	s = strings.TrimSpace(s)
	return s, ok && s != ""
}

// countryName accepts a literal name or a numeric code (number or digit
// string) and resolves codes through the country table.
func countryName(v any) (string, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return "", false
		}
		return countryCode(f)
	case float64:
		return countryCode(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return "", false
		}
		if code, err := strconv.Atoi(s); err == nil {
			return CountryName(code), true
		}
		return s, true
	}
	return "", false
}

// countryCode accepts whole numbers only ("840.0" is 840).
func countryCode(f float64) (string, bool) {
	if f < 0 || f > math.MaxInt32 || f != math.Trunc(f) {
		return "", false
	}
	return CountryName(int(f)), true
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
