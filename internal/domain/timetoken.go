package domain

import (
	"regexp"
	"strconv"
	"time"
)

var (
	// tafHeaderRe matches the TAF validity period, e.g. "1918/2024".
	tafHeaderRe = regexp.MustCompile(`\b(\d{2})(\d{2})/(\d{2})(\d{2})\b`)

	// fmStartRe matches an FM change group, e.g. "FM192100".
	fmStartRe = regexp.MustCompile(`FM(\d{2})(\d{2})(\d{2})`)

	// periodStartRe matches a change group with a DDHH/DDHH period.
	periodStartRe = regexp.MustCompile(`(TEMPO|BECMG|PROB30|PROB40)\s+(\d{2})(\d{2})/(\d{2})(\d{2})`)

	// observationRe matches a METAR observation time, e.g. "191953Z".
	observationRe = regexp.MustCompile(`\b(\d{2})(\d{2})(\d{2})Z\b`)
)

// DDHH is a day-of-month and hour pair. It carries no month or year and is
// only comparable against pairs known to lie within the same short horizon.
type DDHH struct {
	Day  int
	Hour int
}

// DDHHMM is a day-of-month, hour and minute triple.
type DDHHMM struct {
	Day    int
	Hour   int
	Minute int
}

// TafValidity is a TAF's overall validity window resolved against a
// reference year and month.
type TafValidity struct {
	Start time.Time
	End   time.Time
	Year  int
	Month time.Month
}

// ParseTafHeader finds the first DDHH/DDHH token in text and resolves it to
// UTC instants using the year and month of now. An end hour of 24 becomes
// hour 0 of the following day. Returns false if no valid token is found or
// the resolved end is not after the start.
func ParseTafHeader(text string, now time.Time) (TafValidity, bool) {
	m := tafHeaderRe.FindStringSubmatch(text)
	if m == nil {
		return TafValidity{}, false
	}

	startDay, startHour := atoi(m[1]), atoi(m[2])
	endDay, endHour := atoi(m[3]), atoi(m[4])
	if !validDay(startDay) || !validDay(endDay) || startHour > 23 || endHour > 24 {
		return TafValidity{}, false
	}

	now = now.UTC()
	year, month := now.Year(), now.Month()
	start := time.Date(year, month, startDay, startHour, 0, 0, 0, time.UTC)
	end := periodEnd(year, month, endDay, endHour)
	if !end.After(start) {
		return TafValidity{}, false
	}

	return TafValidity{Start: start, End: end, Year: year, Month: month}, true
}

// ParseLineStartDDHH returns the explicit start of a single TAF line: the
// FM time if present, otherwise the start of a TEMPO/BECMG/PROB period.
// Returns false for header and continuation lines, which inherit context.
func ParseLineStartDDHH(line string) (DDHH, bool) {
	if m := fmStartRe.FindStringSubmatch(line); m != nil {
		return DDHH{Day: atoi(m[1]), Hour: atoi(m[2])}, true
	}
	if m := periodStartRe.FindStringSubmatch(line); m != nil {
		return DDHH{Day: atoi(m[2]), Hour: atoi(m[3])}, true
	}
	return DDHH{}, false
}

// ParseMetarObservationTime extracts the DDHHMMZ observation time.
func ParseMetarObservationTime(text string) (DDHHMM, bool) {
	m := observationRe.FindStringSubmatch(text)
	if m == nil {
		return DDHHMM{}, false
	}
	return DDHHMM{Day: atoi(m[1]), Hour: atoi(m[2]), Minute: atoi(m[3])}, true
}

// CompareDDHH orders two pairs by day, then hour.
func CompareDDHH(a, b DDHH) int {
	switch {
	case a.Day != b.Day:
		if a.Day > b.Day {
			return 1
		}
		return -1
	case a.Hour > b.Hour:
		return 1
	case a.Hour < b.Hour:
		return -1
	default:
		return 0
	}
}

// periodEnd builds the end instant of a DDHH/DDHH period, mapping hour 24
// to midnight at the end of that day.
func periodEnd(year int, month time.Month, day, hour int) time.Time {
	if hour == 24 {
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	}
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

func validDay(d int) bool { return d >= 1 && d <= 31 }

// atoi parses a regex-captured digit run. Captures are always digits, so the
// error is unreachable.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
