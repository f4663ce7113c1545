package domain

import (
	"regexp"
	"strings"
	"time"
)

const (
	// MetarExpiredAfter is the age beyond which a METAR is stale.
	MetarExpiredAfter = 60 * time.Minute
	// MetarCriticalAfter is the age beyond which a stale METAR is critical.
	MetarCriticalAfter = 75 * time.Minute

	// rolloverDays is how far the observation day may sit from today before
	// it is assumed to belong to the adjacent month.
	rolloverDays = 15
)

var (
	windFieldRe       = regexp.MustCompile(`\b((\d{3}|VRB)\d{2,3}(G\d{2,3})?(KT|MPS)|CALM)\b`)
	visibilityFieldRe = regexp.MustCompile(`\b(M?\d+(/\d+)?SM|P6SM|\d{4}(NDV)?|CAVOK)\b`)
	skyFieldRe        = regexp.MustCompile(`\b(SKC|CLR|NSC|NCD|CAVOK|(FEW|SCT|BKN|OVC)\d{3}|VV\d{3})\b|\bVV///`)
	tempFieldRe       = regexp.MustCompile(`\b(M?\d{2})/(M?\d{2})\b`)
	altimeterFieldRe  = regexp.MustCompile(`\b[AQ]\d{4}\b`)

	remarksRe = regexp.MustCompile(`\sRMK\b`)
)

// ExpiryStatus is the freshness verdict for one METAR. Parsed is false when
// no usable observation time was found; such a report is never expired.
type ExpiryStatus struct {
	Expired    bool          `json:"expired"`
	Critical   bool          `json:"critical"`
	Parsed     bool          `json:"parsed"`
	ObservedAt time.Time     `json:"observed_at,omitempty"`
	Age        time.Duration `json:"age,omitempty"`
}

// MetarExpiry dates the METAR observation against now and reports whether
// it is older than 60 minutes (expired) or 75 minutes (critical). The day is
// assumed to be in the current month unless it is more than 15 days ahead
// of today (previous month) or behind it (next month).
func MetarExpiry(raw string, now time.Time) ExpiryStatus {
	obs, ok := ParseMetarObservationTime(raw)
	if !ok || !validDay(obs.Day) || obs.Hour > 23 || obs.Minute > 59 {
		return ExpiryStatus{}
	}

	now = now.UTC()
	month := now.Month()
	switch {
	case obs.Day > now.Day()+rolloverDays:
		month--
	case obs.Day < now.Day()-rolloverDays:
		month++
	}
	observed := time.Date(now.Year(), month, obs.Day, obs.Hour, obs.Minute, 0, 0, time.UTC)
	age := now.Sub(observed)

	return ExpiryStatus{
		Expired:    age > MetarExpiredAfter,
		Critical:   age > MetarCriticalAfter,
		Parsed:     true,
		ObservedAt: observed,
		Age:        age,
	}
}

// HasMissingMandatoryFields reports whether the METAR body lacks any of the
// wind, visibility, sky condition, temperature/dewpoint or altimeter groups.
func HasMissingMandatoryFields(raw string) bool {
	body := stripRemarks(raw)
	for _, re := range []*regexp.Regexp{windFieldRe, visibilityFieldRe, skyFieldRe, tempFieldRe, altimeterFieldRe} {
		if !re.MatchString(body) {
			return true
		}
	}
	return false
}

// metarBody returns the coded weather between the observation time and the
// remarks, leaving out the station identifier so that codes such as KSAN do
// not read as phenomena.
func metarBody(raw string) string {
	body := stripRemarks(raw)
	if loc := observationRe.FindStringIndex(body); loc != nil {
		body = body[loc[1]:]
	}
	return strings.TrimSpace(body)
}

// metarAfterObservation returns everything after the observation time,
// remarks included.
func metarAfterObservation(raw string) string {
	if loc := observationRe.FindStringIndex(raw); loc != nil {
		raw = raw[loc[1]:]
	}
	return strings.TrimSpace(raw)
}

func stripRemarks(raw string) string {
	if loc := remarksRe.FindStringIndex(raw); loc != nil {
		return raw[:loc[0]]
	}
	return raw
}
