package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/flight-wx-triggers/internal/adapter/http"
	"github.com/couchcryptid/flight-wx-triggers/internal/domain"
)

var testNow = time.Date(2026, 3, 19, 17, 30, 0, 0, time.UTC)

const testTAF = `TAF KDEN 191720Z 1918/2024 24012KT P6SM SCT250
  FM192100 27015G25KT P6SM BKN015
  TEMPO 1922/2002 3SM -SHRA BKN008`

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

func newTestServer(readyErr error) *httpadapter.Server {
	engine := domain.NewEngine(domain.WithClock(clockwork.NewFakeClockAt(testNow)))
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, engine, slog.Default())
}

func do(t *testing.T, srv *httpadapter.Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := do(t, newTestServer(nil), http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := do(t, newTestServer(nil), http.MethodGet, "/readyz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := do(t, newTestServer(fmt.Errorf("not ready yet")), http.MethodGet, "/readyz", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := do(t, newTestServer(nil), http.MethodGet, "/metrics", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestEvaluate(t *testing.T) {
	req := domain.EvaluationRequest{
		Flight:  domain.Flight{ID: "f-1", Dest: "KDEN", ETA: "2200", Duration: "120"},
		Weather: map[string]domain.Weather{"KDEN": {TAF: testTAF}},
	}

	rec := do(t, newTestServer(nil), http.MethodPost, "/v1/evaluate", req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result domain.EvaluationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "f-1", result.FlightID)
	assert.True(t, result.RequiresAlternate)
	assert.Equal(t, []string{"KDEN:dest-noalt"}, result.Triggers)
	assert.Equal(t, testNow, result.EvaluatedAt)
}

func TestEvaluate_BadRequests(t *testing.T) {
	srv := newTestServer(nil)

	rec := do(t, srv, http.MethodPost, "/v1/evaluate", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/v1/evaluate", domain.EvaluationRequest{Flight: domain.Flight{ID: "f-2"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, srv, http.MethodGet, "/v1/evaluate", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestTafWindow(t *testing.T) {
	rec := do(t, newTestServer(nil), http.MethodPost, "/v1/taf/window", httpadapter.TafWindowRequest{TAF: testTAF, ETA: "2200"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp httpadapter.TafWindowResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, time.Date(2026, 3, 19, 18, 0, 0, 0, time.UTC), resp.ValidFrom)
	assert.Len(t, resp.Base, 2)
	require.Len(t, resp.Conditional, 1)
	assert.Equal(t, domain.SegmentTempo, resp.Conditional[0].Kind)
	require.NotNil(t, resp.Arrival)
	assert.Equal(t, time.Date(2026, 3, 19, 22, 0, 0, 0, time.UTC), *resp.Arrival)
	assert.Len(t, resp.Window, 2)
}

func TestTafWindow_ETAOutsideValidity(t *testing.T) {
	rec := do(t, newTestServer(nil), http.MethodPost, "/v1/taf/window", httpadapter.TafWindowRequest{TAF: testTAF, ETA: "25x"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp httpadapter.TafWindowResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Arrival)
	assert.Empty(t, resp.Window)
}

func TestTafWindow_Unparseable(t *testing.T) {
	rec := do(t, newTestServer(nil), http.MethodPost, "/v1/taf/window", httpadapter.TafWindowRequest{TAF: "TAF KDEN NIL", ETA: "2200"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHighlight(t *testing.T) {
	req := httpadapter.HighlightRequest{
		METAR:  "KDEN 191753Z 27010KT 1SM BR OVC004 10/09 A2992",
		TAF:    testTAF,
		Cutoff: "1918",
	}
	rec := do(t, newTestServer(nil), http.MethodPost, "/v1/highlight", req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp httpadapter.HighlightResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.METAR, `<span class="hit">OVC004</span>`)
	assert.Contains(t, resp.TAF, `taf-line after-shift`)
	assert.True(t, resp.ActiveHit)
}

func TestHighlight_InvalidCutoff(t *testing.T) {
	rec := do(t, newTestServer(nil), http.MethodPost, "/v1/highlight", httpadapter.HighlightRequest{TAF: testTAF, Cutoff: "99"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
