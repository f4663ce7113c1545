package domain

import "time"

// ArrivalWindowHalfWidth is how far either side of the arrival instant a
// forecast segment may lie and still count as evidence.
const ArrivalWindowHalfWidth = time.Hour

// ResolveArrivalInstant places an HHMM arrival time on a concrete UTC date
// inside [from, to). It starts from today's date (per now), moves forward a
// day if that is before from and back a day if it is at or after to. Returns
// false when eta is not four digits or the result still falls outside the
// validity period.
func ResolveArrivalInstant(eta string, from, to, now time.Time) (time.Time, bool) {
	hour, minute, ok := splitHHMM(eta)
	if !ok {
		return time.Time{}, false
	}

	now = now.UTC()
	candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
	if candidate.Before(from) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	if !candidate.Before(to) {
		candidate = candidate.AddDate(0, 0, -1)
	}
	if candidate.Before(from) || !candidate.Before(to) {
		return time.Time{}, false
	}
	return candidate, true
}

// SegmentsInWindow returns the segments overlapping [arrival-1h, arrival+1h].
func SegmentsInWindow(segs []Segment, arrival time.Time) []Segment {
	from, to := arrival.Add(-ArrivalWindowHalfWidth), arrival.Add(ArrivalWindowHalfWidth)
	var out []Segment
	for _, s := range segs {
		if s.Overlaps(from, to) {
			out = append(out, s)
		}
	}
	return out
}

// BaseTextAtArrivalHour returns the text of the base segment containing the
// top of the arrival hour, or "" if none does.
func BaseTextAtArrivalHour(base []Segment, arrival time.Time) string {
	hourMark := arrival.UTC().Truncate(time.Hour)
	for _, s := range base {
		if s.Contains(hourMark) {
			return s.Text
		}
	}
	return ""
}

// WindowSegments returns the base segments overlapping the arrival window
// followed by the conditional segments overlapping it, along with the
// resolved arrival instant. Returns false if the TAF did not parse or the
// arrival cannot be placed inside its validity period.
func WindowSegments(segs TafSegments, eta string, now time.Time) ([]Segment, time.Time, bool) {
	if !segs.OK {
		return nil, time.Time{}, false
	}
	arrival, ok := ResolveArrivalInstant(eta, segs.ValidFrom, segs.ValidTo, now)
	if !ok {
		return nil, time.Time{}, false
	}
	out := SegmentsInWindow(segs.Base, arrival)
	out = append(out, SegmentsInWindow(segs.Conditional, arrival)...)
	return out, arrival, true
}

// TafSegmentsForArrivalWindow is WindowSegments over a freshly built TAF.
func TafSegmentsForArrivalWindow(raw, eta string, now time.Time) []Segment {
	segs, _, _ := WindowSegments(BuildTafSegments(raw, now), eta, now)
	return segs
}

// splitHHMM parses a strict four-digit HHMM string.
func splitHHMM(s string) (hour, minute int, ok bool) {
	if len(s) != 4 || !isDigits(s) {
		return 0, 0, false
	}
	hour, minute = atoi(s[:2]), atoi(s[2:])
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
