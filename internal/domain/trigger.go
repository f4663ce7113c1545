package domain

import (
	"sort"
	"strings"
)

// Reason codes besides the phenomenon vocabulary.
const (
	ReasonDest      = "dest"
	ReasonDestNoAlt = "dest-noalt"
	ReasonHighWind  = "high-wind"
)

// Trigger flags an airport on a flight as needing attention for a reason.
type Trigger struct {
	Airport string
	Reason  string
}

// String renders the "ICAO:reason" form stored by clients.
func (t Trigger) String() string {
	return t.Airport + ":" + t.Reason
}

// ParseTrigger reads the "ICAO:reason" form. The airport is everything
// before the first colon.
func ParseTrigger(s string) (Trigger, bool) {
	airport, reason, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || airport == "" || reason == "" {
		return Trigger{}, false
	}
	return Trigger{Airport: airport, Reason: reason}, true
}

// TriggerSet is a set of triggers keyed structurally.
type TriggerSet map[Trigger]struct{}

// NewTriggerSet builds a set from the given triggers.
func NewTriggerSet(ts ...Trigger) TriggerSet {
	s := make(TriggerSet, len(ts))
	for _, t := range ts {
		s.Add(t)
	}
	return s
}

// ParseTriggerSet builds a set from stored strings, skipping malformed ones.
func ParseTriggerSet(ss []string) TriggerSet {
	s := make(TriggerSet, len(ss))
	for _, raw := range ss {
		if t, ok := ParseTrigger(raw); ok {
			s.Add(t)
		}
	}
	return s
}

func (s TriggerSet) Add(t Trigger) { s[t] = struct{}{} }

func (s TriggerSet) Has(t Trigger) bool {
	_, ok := s[t]
	return ok
}

// Difference returns the triggers in s that are not in old.
func (s TriggerSet) Difference(old TriggerSet) TriggerSet {
	out := make(TriggerSet)
	for t := range s {
		if !old.Has(t) {
			out.Add(t)
		}
	}
	return out
}

// Sorted returns the triggers ordered by airport, then reason.
func (s TriggerSet) Sorted() []Trigger {
	out := make([]Trigger, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Airport != out[j].Airport {
			return out[i].Airport < out[j].Airport
		}
		return out[i].Reason < out[j].Reason
	})
	return out
}

// Strings returns the sorted "ICAO:reason" forms.
func (s TriggerSet) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, t := range sorted {
		out[i] = t.String()
	}
	return out
}
