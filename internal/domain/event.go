package domain

import (
	"context"
	"strings"
	"time"
)

// ReportKind distinguishes current-conditions reports from forecasts.
type ReportKind string

const (
	KindMETAR ReportKind = "METAR"
	KindTAF   ReportKind = "TAF"
)

// RawReport is one fetched weather bulletin for an airport. It is replaced
// wholesale on every fetch cycle.
type RawReport struct {
	Airport   string     `json:"airport"`
	Kind      ReportKind `json:"kind"`
	Text      string     `json:"text"`
	FetchedAt time.Time  `json:"fetched_at,omitempty"`
}

// Flight is the subset of a flight record the engine consumes. Times are
// HHMM strings and durations are minute counts, both as entered by users.
type Flight struct {
	ID           string `json:"id"`
	FlightNumber string `json:"flight_number,omitempty"`
	Origin       string `json:"origin,omitempty"`
	Dest         string `json:"dest"`
	TakeoffAlt   string `json:"takeoff_alt,omitempty"`
	Alt1         string `json:"alt1,omitempty"`
	Alt2         string `json:"alt2,omitempty"`
	ETD          string `json:"etd,omitempty"`
	TaxiOut      string `json:"taxi_out,omitempty"`
	Burnoff      string `json:"burnoff,omitempty"`
	Duration     string `json:"duration,omitempty"`
	ETA          string `json:"eta"`
}

// HasAlternate reports whether at least one destination alternate is set.
func (f Flight) HasAlternate() bool {
	return strings.TrimSpace(f.Alt1) != "" || strings.TrimSpace(f.Alt2) != ""
}

// Airports returns the distinct, normalized airport codes the flight touches
// in origin, dest, takeoff alternate, alt1, alt2 order. This is the fetch
// list handed to the weather collector.
func (f Flight) Airports() []string {
	seen := make(map[string]bool, 5)
	var out []string
	for _, code := range []string{f.Origin, f.Dest, f.TakeoffAlt, f.Alt1, f.Alt2} {
		icao := NormalizeICAO(code)
		if icao == "" || seen[icao] {
			continue
		}
		seen[icao] = true
		out = append(out, icao)
	}
	return out
}

// Weather holds the raw METAR and TAF text for one airport. Either may be
// empty when the collector found nothing.
type Weather struct {
	METAR string `json:"metar,omitempty"`
	TAF   string `json:"taf,omitempty"`
}

// EvaluationRequest is the message consumed from the source topic: a flight,
// the weather for the airports it touches, and the trigger set stored for it
// by the previous evaluation.
type EvaluationRequest struct {
	Flight           Flight             `json:"flight"`
	Weather          map[string]Weather `json:"weather"`
	PreviousTriggers []string           `json:"previous_triggers,omitempty"`
}

// AirportStatus is the per-airport freshness verdict.
type AirportStatus struct {
	MetarExpired       bool `json:"metar_expired"`
	MetarCritical      bool `json:"metar_critical"`
	MetarMissingFields bool `json:"metar_missing_fields"`
	TafParsed          bool `json:"taf_parsed"`
}

// EvaluationResult is the message published to the sink topic. Triggers
// replaces any stored set; NewTriggers is what should be announced.
type EvaluationResult struct {
	FlightID          string                   `json:"flight_id"`
	FlightNumber      string                   `json:"flight_number,omitempty"`
	Dest              string                   `json:"dest"`
	Triggers          []string                 `json:"triggers"`
	NewTriggers       []string                 `json:"new_triggers"`
	RequiresAlternate bool                     `json:"requires_alternate"`
	Airports          map[string]AirportStatus `json:"airports"`
	EvaluatedAt       time.Time                `json:"evaluated_at"`
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
