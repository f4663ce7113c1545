package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/flight-wx-triggers/internal/domain"
	"github.com/couchcryptid/flight-wx-triggers/internal/observability"
)

// Evaluator computes a flight's trigger verdict. *domain.Engine implements it.
type Evaluator interface {
	Evaluate(req domain.EvaluationRequest) domain.EvaluationResult
}

// TriggerTransformer implements Transformer by decoding an evaluation
// request, running it through the engine and encoding the result.
type TriggerTransformer struct {
	evaluator Evaluator
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewTransformer creates a TriggerTransformer.
func NewTransformer(evaluator Evaluator, logger *slog.Logger, metrics *observability.Metrics) *TriggerTransformer {
	return &TriggerTransformer{
		evaluator: evaluator,
		logger:    logger,
		metrics:   metrics,
	}
}

func (t *TriggerTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	req, err := domain.ParseEvaluationRequest(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	start := time.Now()
	result := t.evaluator.Evaluate(req)
	t.metrics.EvaluationDuration.Observe(time.Since(start).Seconds())
	t.record(req, result)

	if len(result.NewTriggers) > 0 {
		t.logger.Info("new triggers",
			"flight_id", result.FlightID,
			"dest", result.Dest,
			"triggers", result.NewTriggers,
		)
	}

	return domain.SerializeEvaluationResult(result)
}

func (t *TriggerTransformer) record(req domain.EvaluationRequest, result domain.EvaluationResult) {
	outcome := "clear"
	if result.RequiresAlternate {
		outcome = "alternate"
	}
	t.metrics.Evaluations.WithLabelValues(outcome).Inc()

	for _, s := range result.Triggers {
		if tr, ok := domain.ParseTrigger(s); ok {
			t.metrics.TriggersEmitted.WithLabelValues(tr.Reason).Inc()
		}
	}
	t.metrics.NewTriggers.Add(float64(len(result.NewTriggers)))

	for code, wx := range req.Weather {
		status, ok := result.Airports[domain.NormalizeICAO(code)]
		if !ok {
			continue
		}
		if strings.TrimSpace(wx.TAF) != "" && !status.TafParsed {
			t.metrics.TafUnparsed.Inc()
			t.logger.Debug("taf not parsed", "flight_id", result.FlightID, "airport", code)
		}
		switch {
		case status.MetarCritical:
			t.metrics.MetarStale.WithLabelValues("critical").Inc()
		case status.MetarExpired:
			t.metrics.MetarStale.WithLabelValues("expired").Inc()
		}
	}
}
