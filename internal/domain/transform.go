package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMissingFlightID is returned for requests that carry no flight ID in
// either the payload or the message key.
var ErrMissingFlightID = errors.New("evaluation request has no flight id")

// ParseEvaluationRequest decodes a RawEvent's value into an EvaluationRequest.
// The message key stands in for a missing flight ID. When the flight has no
// ETA but carries ETD, taxi-out and burnoff, ETA and duration are derived
// from them.
func ParseEvaluationRequest(raw RawEvent) (EvaluationRequest, error) {
	var req EvaluationRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return EvaluationRequest{}, fmt.Errorf("parse evaluation request: %w", err)
	}

	if strings.TrimSpace(req.Flight.ID) == "" {
		if len(raw.Key) == 0 {
			return EvaluationRequest{}, ErrMissingFlightID
		}
		req.Flight.ID = string(raw.Key)
	}

	if strings.TrimSpace(req.Flight.ETA) == "" {
		if eta, duration, ok := ComputeArrival(NormalizeHHMM(req.Flight.ETD), req.Flight.TaxiOut, req.Flight.Burnoff); ok {
			req.Flight.ETA = eta
			if strings.TrimSpace(req.Flight.Duration) == "" {
				req.Flight.Duration = duration
			}
		}
	}

	return req, nil
}

// SerializeEvaluationResult marshals a result into an OutputEvent keyed by
// flight ID.
func SerializeEvaluationResult(result EvaluationResult) (OutputEvent, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize evaluation result: %w", err)
	}
	return OutputEvent{
		Key:   []byte(result.FlightID),
		Value: data,
		Headers: map[string]string{
			"flight_id":          result.FlightID,
			"new_trigger_count":  strconv.Itoa(len(result.NewTriggers)),
			"requires_alternate": strconv.FormatBool(result.RequiresAlternate),
			"evaluated_at":       result.EvaluatedAt.Format(time.RFC3339),
		},
	}, nil
}
