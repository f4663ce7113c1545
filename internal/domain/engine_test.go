package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const probTSRA = `TAF KDEN 191720Z 1918/2024 24012KT P6SM SCT250
  FM200600 30010KT P6SM SCT100
  PROB30 2010/2014 6SM TSRA BKN050`

func newTestEngine(opts ...Option) *Engine {
	return NewEngine(append([]Option{WithClock(clockwork.NewFakeClockAt(testNow))}, opts...)...)
}

func TestDestinationRequiresAlternate(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name   string
		flight Flight
		wx     Weather
		want   bool
	}{
		{
			name:   "TAF ceiling in window",
			flight: Flight{Dest: testDest, ETA: "2200", Duration: "120"},
			wx:     Weather{TAF: sampleTAF},
			want:   true,
		},
		{
			name:   "TAF good weather",
			flight: Flight{Dest: testDest, ETA: "2000", Duration: "120"},
			wx:     Weather{TAF: "TAF KDEN 191720Z 1918/2024 24012KT 6SM SCT250"},
			want:   false,
		},
		{
			name:   "window before FM boundary is clear",
			flight: Flight{Dest: testDest, ETA: "1900", Duration: "120"},
			wx:     Weather{TAF: sampleTAF},
			want:   false,
		},
		{
			name:   "PROB30 ceiling overlaps window",
			flight: Flight{Dest: testDest, ETA: "1100", Duration: "120"},
			wx:     Weather{TAF: sampleTAF},
			want:   true,
		},
		{
			name:   "PROB30 phenomenon stays in active FM segment",
			flight: Flight{Dest: testDest, ETA: "1200", Duration: "120"},
			wx:     Weather{TAF: probTSRA},
			want:   true,
		},
		{
			name:   "TEMPO phenomenon is not base text",
			flight: Flight{Dest: testDest, ETA: "1200", Duration: "120"},
			wx:     Weather{TAF: strings.Replace(probTSRA, "PROB30", "TEMPO", 1)},
			want:   false,
		},
		{
			name:   "phenomenon in base text at arrival hour",
			flight: Flight{Dest: testDest, ETA: "2000", Duration: "120"},
			wx:     Weather{TAF: "TAF KDEN 191720Z 1918/2024 24012KT P6SM -SN SCT250"},
			want:   true,
		},
		{
			name:   "station id is not a phenomenon",
			flight: Flight{Dest: "KSAN", ETA: "2000", Duration: "120"},
			wx:     Weather{TAF: "TAF KSAN 191720Z 1918/2024 24012KT P6SM SCT250"},
			want:   false,
		},
		{
			name:   "METAR short hop",
			flight: Flight{Dest: testDest, ETA: "1745", Duration: "45"},
			wx:     Weather{METAR: shortHopMETAR},
			want:   true,
		},
		{
			name:   "METAR long flight",
			flight: Flight{Dest: testDest, ETA: "1745", Duration: "90"},
			wx:     Weather{METAR: shortHopMETAR},
			want:   false,
		},
		{
			name:   "METAR empty duration counts as short",
			flight: Flight{Dest: testDest, ETA: "1745"},
			wx:     Weather{METAR: shortHopMETAR},
			want:   true,
		},
		{
			name:   "METAR hour mismatch",
			flight: Flight{Dest: testDest, ETA: "1845", Duration: "45"},
			wx:     Weather{METAR: shortHopMETAR},
			want:   false,
		},
		{
			name:   "METAR after clear TAF",
			flight: Flight{Dest: testDest, ETA: "1745", Duration: "45"},
			wx:     Weather{METAR: shortHopMETAR, TAF: "TAF KDEN 191720Z 1918/2024 24012KT P6SM SCT250"},
			want:   true,
		},
		{
			name:   "unparseable TAF is no evidence",
			flight: Flight{Dest: testDest, ETA: "2200", Duration: "120"},
			wx:     Weather{TAF: "TAF KDEN NIL"},
			want:   false,
		},
		{
			name:   "ETA not four digits",
			flight: Flight{Dest: testDest, ETA: "220", Duration: "45"},
			wx:     Weather{TAF: sampleTAF, METAR: shortHopMETAR},
			want:   false,
		},
		{
			name:   "no weather",
			flight: Flight{Dest: testDest, ETA: "2200"},
			want:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.DestinationRequiresAlternate(tt.flight, tt.wx))
		})
	}
}

func TestDestinationRequiresAlternate_CustomThresholds(t *testing.T) {
	th := DefaultThresholds()
	th.CeilingMinFt = 1000
	e := newTestEngine(WithThresholds(th))

	f := Flight{Dest: testDest, ETA: "2200", Duration: "120"}
	// BKN015 no longer breaks the limit but the TEMPO BKN008 does.
	assert.True(t, e.DestinationRequiresAlternate(f, Weather{TAF: sampleTAF}))

	f.ETA = "2030"
	assert.False(t, e.DestinationRequiresAlternate(f, Weather{TAF: sampleTAF}))
}

func TestBuildTriggerSet(t *testing.T) {
	e := newTestEngine()

	t.Run("dest without alternate plus METAR phenomena", func(t *testing.T) {
		f := Flight{Dest: testDest, ETA: "1745", Duration: "45"}
		set := e.BuildTriggerSet(f, map[string]Weather{testDest: {METAR: shortHopMETAR}})
		assert.Equal(t, []string{"KDEN:BR", "KDEN:dest-noalt"}, set.Strings())
	})

	t.Run("dest with alternate", func(t *testing.T) {
		f := Flight{Dest: testDest, ETA: "2200", Alt1: "KCOS"}
		set := e.BuildTriggerSet(f, map[string]Weather{testDest: {TAF: sampleTAF}})
		assert.Equal(t, []string{"KDEN:dest"}, set.Strings())
	})

	t.Run("phenomena without alternate requirement", func(t *testing.T) {
		f := Flight{Dest: testDest, ETA: "1745", Duration: "90", Alt1: "KCOS"}
		set := e.BuildTriggerSet(f, map[string]Weather{testDest: {METAR: shortHopMETAR}})
		assert.Equal(t, []string{"KDEN:BR"}, set.Strings())
	})

	t.Run("three letter dest matches ICAO weather key", func(t *testing.T) {
		f := Flight{Dest: "den", ETA: "2200"}
		set := e.BuildTriggerSet(f, map[string]Weather{testDest: {TAF: sampleTAF}})
		assert.True(t, set.Has(Trigger{Airport: testDest, Reason: ReasonDestNoAlt}))
	})

	t.Run("no dest", func(t *testing.T) {
		assert.Empty(t, e.BuildTriggerSet(Flight{ETA: "2200"}, nil))
	})

	t.Run("high wind when enabled", func(t *testing.T) {
		th := DefaultThresholds()
		th.HighWind = true
		windy := newTestEngine(WithThresholds(th))
		f := Flight{Dest: testDest, ETA: "1750", Duration: "90", Alt1: "KCOS"}
		wx := map[string]Weather{testDest: {METAR: "KDEN 191753Z 27045G55KT 10SM FEW080 10/M02 A2992"}}

		assert.Equal(t, []string{"KDEN:high-wind"}, windy.BuildTriggerSet(f, wx).Strings())
		assert.Empty(t, e.BuildTriggerSet(f, wx))
	})
}

func TestTriggerSetDifference(t *testing.T) {
	old := ParseTriggerSet([]string{"KDEN:dest"})
	current := NewTriggerSet(
		Trigger{Airport: "KDEN", Reason: ReasonDest},
		Trigger{Airport: "KDEN", Reason: "TS"},
	)

	assert.Equal(t, []string{"KDEN:TS"}, current.Difference(old).Strings())
	assert.Empty(t, old.Difference(current))
}

func TestEngineEvaluate(t *testing.T) {
	e := newTestEngine()
	req := EvaluationRequest{
		Flight: Flight{
			ID:           "f-1",
			FlightNumber: "UA123",
			Origin:       "KCOS",
			Dest:         testDest,
			Alt1:         "KPUB",
			ETA:          "2200",
			Duration:     "50",
		},
		Weather: map[string]Weather{
			testDest: {METAR: goodMETAR, TAF: sampleTAF},
			"KCOS":   {METAR: "KCOS 191540Z 27010KT 10SM FEW080 10/M02"},
		},
		PreviousTriggers: []string{"KDEN:BR"},
	}

	res := e.Evaluate(req)

	assert.Equal(t, "f-1", res.FlightID)
	assert.Equal(t, "UA123", res.FlightNumber)
	assert.Equal(t, testDest, res.Dest)
	assert.True(t, res.RequiresAlternate)
	assert.Equal(t, []string{"KDEN:dest"}, res.Triggers)
	assert.Equal(t, []string{"KDEN:dest"}, res.NewTriggers)
	assert.Equal(t, testNow, res.EvaluatedAt)

	require.Len(t, res.Airports, 3)
	assert.Equal(t, AirportStatus{TafParsed: true}, res.Airports[testDest])
	assert.Equal(t, AirportStatus{MetarExpired: true, MetarCritical: true, MetarMissingFields: true}, res.Airports["KCOS"])
	assert.Equal(t, AirportStatus{}, res.Airports["KPUB"])
}

func TestEngineEvaluate_NoNewTriggers(t *testing.T) {
	e := newTestEngine()
	res := e.Evaluate(EvaluationRequest{
		Flight:           Flight{ID: "f-2", Dest: testDest, ETA: "2200", Alt1: "KPUB"},
		Weather:          map[string]Weather{testDest: {TAF: sampleTAF}},
		PreviousTriggers: []string{"KDEN:dest", "KDEN:TS"},
	})
	assert.Equal(t, []string{"KDEN:dest"}, res.Triggers)
	assert.Empty(t, res.NewTriggers)
	assert.NotNil(t, res.NewTriggers)
}

func TestEngineNow_FollowsClock(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testNow)
	e := NewEngine(WithClock(clock))
	clock.Advance(90 * time.Minute)
	assert.Equal(t, testNow.Add(90*time.Minute), e.Now())
}
