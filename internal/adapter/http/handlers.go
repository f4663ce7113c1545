package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/flight-wx-triggers/internal/domain"
)

const maxBodyBytes = 1 << 20

// Engine is the subset of *domain.Engine the API needs.
type Engine interface {
	Evaluate(req domain.EvaluationRequest) domain.EvaluationResult
	Segments(raw string) domain.TafSegments
	Thresholds() domain.Thresholds
	Now() time.Time
}

type handlers struct {
	engine Engine
	logger *slog.Logger
}

// TafWindowRequest asks for a TAF's segments around an arrival time.
type TafWindowRequest struct {
	TAF string `json:"taf"`
	ETA string `json:"eta"`
}

// TafWindowResponse is the decoded TAF plus the segments that overlap the
// ±1h arrival window. Arrival and Window are empty when the ETA cannot be
// placed inside the validity period.
type TafWindowResponse struct {
	domain.TafSegments
	Arrival *time.Time       `json:"arrival,omitempty"`
	Window  []domain.Segment `json:"window"`
}

// HighlightRequest carries raw report text for dashboard rendering. Cutoff
// is an optional DDHH shift end; TAF lines starting after it plus the shift
// buffer are greyed out and unmarked.
type HighlightRequest struct {
	METAR  string `json:"metar,omitempty"`
	TAF    string `json:"taf,omitempty"`
	Cutoff string `json:"cutoff,omitempty"`
}

// HighlightResponse holds the rendered HTML fragments.
type HighlightResponse struct {
	METAR     string `json:"metar_html,omitempty"`
	TAF       string `json:"taf_html,omitempty"`
	ActiveHit bool   `json:"active_hit"`
}

func (h *handlers) evaluate(w http.ResponseWriter, r *http.Request) {
	var req domain.EvaluationRequest
	if !h.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Flight.Dest) == "" {
		writeError(w, http.StatusUnprocessableEntity, errors.New("flight.dest is required"))
		return
	}

	result := h.engine.Evaluate(req)
	h.logger.Debug("evaluated over http",
		"flight_id", result.FlightID,
		"triggers", result.Triggers,
	)
	sharedobs.WriteJSON(w, http.StatusOK, result)
}

func (h *handlers) tafWindow(w http.ResponseWriter, r *http.Request) {
	var req TafWindowRequest
	if !h.decode(w, r, &req) {
		return
	}

	segs := h.engine.Segments(req.TAF)
	if !segs.OK {
		writeError(w, http.StatusUnprocessableEntity, errors.New("taf validity header could not be parsed"))
		return
	}

	resp := TafWindowResponse{TafSegments: segs, Window: []domain.Segment{}}
	if window, arrival, ok := domain.WindowSegments(segs, req.ETA, h.engine.Now()); ok {
		resp.Arrival = &arrival
		resp.Window = window
	}
	sharedobs.WriteJSON(w, http.StatusOK, resp)
}

func (h *handlers) highlight(w http.ResponseWriter, r *http.Request) {
	var req HighlightRequest
	if !h.decode(w, r, &req) {
		return
	}

	var cutoff *domain.DDHH
	if req.Cutoff != "" {
		c, ok := domain.ParseShiftCutoff(req.Cutoff)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("invalid cutoff %q: want DDHH", req.Cutoff))
			return
		}
		cutoff = &c
	}

	th := h.engine.Thresholds()
	var resp HighlightResponse
	if strings.TrimSpace(req.METAR) != "" {
		resp.METAR = domain.HighlightMetar(req.METAR, th)
	}
	if strings.TrimSpace(req.TAF) != "" {
		resp.TAF = domain.HighlightTaf(req.TAF, th, cutoff)
	}
	resp.ActiveHit = domain.HasActiveHit(resp.METAR) || domain.HasActiveHit(resp.TAF)
	sharedobs.WriteJSON(w, http.StatusOK, resp)
}

// decode reads a JSON body into v, writing a 400 response on failure.
func (h *handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		h.logger.Debug("rejecting request body", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
