package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/web3-frozen/traffic-dashboard/internal/traffic"
)

// ModeHeader reports which mode served a lookup.
const ModeHeader = "X-Traffic-Mode"

const maxRequestBody = 1 << 20

// LookupTraffic handles POST {"targetUrl": "..."}.
func LookupTraffic(svc *traffic.Service, logger *slog.Logger) http.HandlerFunc {
	type request struct {
		TargetURL string `json:"targetUrl"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
		if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			logger.Warn("invalid traffic request body", "error", err)
			writeError(w, traffic.BadRequest("invalid request body"))
			return
		}
		serveLookup(w, r, svc, req.TargetURL)
	}
}

// GetTraffic handles GET ?url=..., the form the dashboard navigates with.
func GetTraffic(svc *traffic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serveLookup(w, r, svc, r.URL.Query().Get("url"))
	}
}

func serveLookup(w http.ResponseWriter, r *http.Request, svc *traffic.Service, target string) {
	m, mode, err := svc.Lookup(r.Context(), target)
	w.Header().Set(ModeHeader, mode.String())
	if err != nil {
		writeError(w, traffic.AsError(err))
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Meta reports the active mode so the dashboard can label demo data.
func Meta(svc *traffic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"mode":          svc.Mode().String(),
			"provider_host": svc.ProviderHost(),
		})
	}
}
