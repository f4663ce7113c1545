package domain

import (
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

// Thresholds are the limits below which weather triggers an alternate.
type Thresholds struct {
	CeilingMinFt    int
	VisibilityMinSM float64
	ShortHopMinutes int
	HighWind        bool
	HighWindKt      int
}

// DefaultThresholds returns 2,000 ft, 3 SM, 60 minutes and 40 kt with the
// high-wind rule disabled.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CeilingMinFt:    2000,
		VisibilityMinSM: 3,
		ShortHopMinutes: 60,
		HighWindKt:      DefaultHighWindKt,
	}
}

// Engine evaluates flights against weather text. It holds no mutable state
// and is safe for concurrent use.
type Engine struct {
	clock      clockwork.Clock
	thresholds Thresholds
	segmenter  Segmenter
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source. Tests pass a clockwork fake clock.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithThresholds overrides the default trigger limits.
func WithThresholds(t Thresholds) Option {
	return func(e *Engine) { e.thresholds = t }
}

// WithSegmenter replaces BuildTafSegments, e.g. with a caching decorator.
func WithSegmenter(s Segmenter) Option {
	return func(e *Engine) {
		if s != nil {
			e.segmenter = s
		}
	}
}

// NewEngine creates an Engine using the real clock, default thresholds and
// an uncached segment builder unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		clock:      clockwork.NewRealClock(),
		thresholds: DefaultThresholds(),
		segmenter:  SegmenterFunc(BuildTafSegments),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the engine's current time in UTC.
func (e *Engine) Now() time.Time { return e.clock.Now().UTC() }

// Thresholds returns the limits the engine applies.
func (e *Engine) Thresholds() Thresholds { return e.thresholds }

// Segments builds TAF segments through the configured segmenter.
func (e *Engine) Segments(raw string) TafSegments {
	return e.segmenter.Segments(raw, e.Now())
}

// DestinationRequiresAlternate reports whether the destination weather at
// the flight's ETA calls for an alternate. TAF evidence is checked first:
// ceiling or visibility below limits anywhere in the ±1h window, or any
// phenomenon in the base forecast at the arrival hour. Failing that, a METAR
// observed in the ETA hour stands in for the forecast on flights shorter
// than the short-hop limit.
func (e *Engine) DestinationRequiresAlternate(f Flight, wx Weather) bool {
	return e.requiresAlternate(f, wx, e.Now())
}

func (e *Engine) requiresAlternate(f Flight, wx Weather, now time.Time) bool {
	etaHour, _, ok := splitHHMM(f.ETA)
	if !ok {
		return false
	}

	if taf := strings.TrimSpace(wx.TAF); taf != "" {
		segs := e.segmenter.Segments(taf, now)
		if window, arrival, ok := WindowSegments(segs, f.ETA, now); ok {
			if WorstCeilingAndVisibility(joinText(window)).Below(e.thresholds.CeilingMinFt, e.thresholds.VisibilityMinSM) {
				return true
			}
			if len(FindPhenomenonCodes(BaseTextAtArrivalHour(segs.Base, arrival))) > 0 {
				return true
			}
		}
	}

	if metar := strings.TrimSpace(wx.METAR); metar != "" && metarHourMatches(metar, etaHour) {
		if durationMinutes(f.Duration) < e.thresholds.ShortHopMinutes &&
			WorstCeilingAndVisibility(metar).Below(e.thresholds.CeilingMinFt, e.thresholds.VisibilityMinSM) {
			return true
		}
	}

	return false
}

// BuildTriggerSet computes the full trigger set for a flight. The result
// replaces any previously stored set.
func (e *Engine) BuildTriggerSet(f Flight, weather map[string]Weather) TriggerSet {
	set, _ := e.buildTriggers(f, weather, e.Now())
	return set
}

func (e *Engine) buildTriggers(f Flight, weather map[string]Weather, now time.Time) (TriggerSet, bool) {
	set := make(TriggerSet)
	dest := NormalizeICAO(f.Dest)
	if dest == "" {
		return set, false
	}
	wx := lookupWeather(weather, f.Dest)

	requiresAlt := e.requiresAlternate(f, wx, now)
	if requiresAlt {
		reason := ReasonDest
		if !f.HasAlternate() {
			reason = ReasonDestNoAlt
		}
		set.Add(Trigger{Airport: dest, Reason: reason})
	}

	etaHour, _, ok := splitHHMM(f.ETA)
	if !ok {
		return set, requiresAlt
	}

	metar := strings.TrimSpace(wx.METAR)
	metarInHour := metar != "" && metarHourMatches(metar, etaHour)
	if metarInHour {
		for _, code := range MetarPhenomena(metar) {
			set.Add(Trigger{Airport: dest, Reason: code})
		}
	}

	if e.thresholds.HighWind {
		var text []string
		if taf := strings.TrimSpace(wx.TAF); taf != "" {
			if window, _, ok := WindowSegments(e.segmenter.Segments(taf, now), f.ETA, now); ok {
				text = append(text, joinText(window))
			}
		}
		if metarInHour {
			text = append(text, metarBody(metar))
		}
		if len(FindHighWinds(strings.Join(text, " "), e.thresholds.HighWindKt)) > 0 {
			set.Add(Trigger{Airport: dest, Reason: ReasonHighWind})
		}
	}

	return set, requiresAlt
}

// Evaluate runs a full evaluation: the trigger set, the triggers that are
// new relative to the request's previous set, and a freshness verdict for
// every airport that has weather or appears on the flight.
func (e *Engine) Evaluate(req EvaluationRequest) EvaluationResult {
	now := e.Now()
	triggers, requiresAlt := e.buildTriggers(req.Flight, req.Weather, now)
	fresh := triggers.Difference(ParseTriggerSet(req.PreviousTriggers))

	airports := make(map[string]AirportStatus)
	codes := req.Flight.Airports()
	for code := range req.Weather {
		codes = append(codes, NormalizeICAO(code))
	}
	for _, code := range codes {
		if _, done := airports[code]; done || code == "" {
			continue
		}
		airports[code] = e.airportStatus(lookupWeather(req.Weather, code), now)
	}

	return EvaluationResult{
		FlightID:          req.Flight.ID,
		FlightNumber:      req.Flight.FlightNumber,
		Dest:              NormalizeICAO(req.Flight.Dest),
		Triggers:          triggers.Strings(),
		NewTriggers:       fresh.Strings(),
		RequiresAlternate: requiresAlt,
		Airports:          airports,
		EvaluatedAt:       now,
	}
}

func (e *Engine) airportStatus(wx Weather, now time.Time) AirportStatus {
	var st AirportStatus
	if metar := strings.TrimSpace(wx.METAR); metar != "" {
		exp := MetarExpiry(metar, now)
		st.MetarExpired = exp.Expired
		st.MetarCritical = exp.Critical
		st.MetarMissingFields = HasMissingMandatoryFields(metar)
	}
	if taf := strings.TrimSpace(wx.TAF); taf != "" {
		st.TafParsed = e.segmenter.Segments(taf, now).OK
	}
	return st
}

// lookupWeather finds an airport's weather by its code as given or in
// normalized ICAO form.
func lookupWeather(weather map[string]Weather, code string) Weather {
	if wx, ok := weather[code]; ok {
		return wx
	}
	icao := NormalizeICAO(code)
	if wx, ok := weather[icao]; ok {
		return wx
	}
	for k, wx := range weather {
		if NormalizeICAO(k) == icao {
			return wx
		}
	}
	return Weather{}
}

func metarHourMatches(metar string, etaHour int) bool {
	obs, ok := ParseMetarObservationTime(metar)
	return ok && obs.Hour == etaHour
}

func joinText(segs []Segment) string {
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, " ")
}
