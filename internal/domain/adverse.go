package domain

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// ceilingRe matches a broken, overcast or vertical-visibility layer with
	// its height in hundreds of feet, e.g. "BKN015".
	ceilingRe = regexp.MustCompile(`\b(BKN|OVC|VV)(\d{3})\b`)

	// visibilityRe matches statute-mile visibility, e.g. "3SM" or "1.5SM".
	// "P6SM" does not match because P6 has no word boundary.
	visibilityRe = regexp.MustCompile(`\b(\d+(\.\d+)?)SM\b`)

	// windGroupRe matches a knots wind group, e.g. "27015G45KT".
	windGroupRe = regexp.MustCompile(`\b(VRB|\d{3})(\d{2,3})(G(\d{2,3}))?KT\b`)
)

// PhenomenonCodes is the ordered vocabulary of adverse weather codes.
var PhenomenonCodes = []string{
	"SN", "+SN", "TS", "+TS", "RA", "+RA", "FG", "BR", "HZ", "DU",
	"SA", "VA", "FU", "SQ", "FC", "DS", "SS", "PO", "BLSN", "BLSA",
	"BLDU", "IC", "GR", "GS", "UP", "FZRA", "FZDZ", "FZFG",
}

// DefaultHighWindKt is the sustained or gust speed at which a wind group
// becomes a high-wind hit.
const DefaultHighWindKt = 40

// Worst holds the lowest ceiling and visibility found in a text. Nil means
// no token of that kind was present.
type Worst struct {
	CeilingHundredsFt *int     `json:"ceiling_hundreds_ft,omitempty"`
	VisibilitySM      *float64 `json:"visibility_sm,omitempty"`
}

// CeilingFt returns the ceiling in feet, or false if none was found.
func (w Worst) CeilingFt() (int, bool) {
	if w.CeilingHundredsFt == nil {
		return 0, false
	}
	return *w.CeilingHundredsFt * 100, true
}

// Below reports whether the ceiling is under minCeilingFt or the visibility
// under minVisSM.
func (w Worst) Below(minCeilingFt int, minVisSM float64) bool {
	if ft, ok := w.CeilingFt(); ok && ft < minCeilingFt {
		return true
	}
	return w.VisibilitySM != nil && *w.VisibilitySM < minVisSM
}

// WorstCeilingAndVisibility scans text for ceiling and visibility tokens and
// returns the minimum of each. The two minimums are independent and need not
// come from the same group.
func WorstCeilingAndVisibility(text string) Worst {
	var w Worst
	for _, m := range ceilingRe.FindAllStringSubmatch(text, -1) {
		h := atoi(m[2])
		if w.CeilingHundredsFt == nil || h < *w.CeilingHundredsFt {
			w.CeilingHundredsFt = &h
		}
	}
	for _, m := range visibilityRe.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if w.VisibilitySM == nil || v < *w.VisibilitySM {
			w.VisibilitySM = &v
		}
	}
	return w
}

// FindPhenomenonCodes returns the vocabulary codes contained in text, in
// vocabulary order. Matching is case-insensitive substring containment, so
// "+SN" also yields "SN".
func FindPhenomenonCodes(text string) []string {
	upper := strings.ToUpper(text)
	var found []string
	for _, code := range PhenomenonCodes {
		if strings.Contains(upper, code) {
			found = append(found, code)
		}
	}
	return found
}

// WindGroup is a decoded knots wind group.
type WindGroup struct {
	Raw       string `json:"raw"`
	Direction string `json:"direction"`
	SpeedKt   int    `json:"speed_kt"`
	GustKt    int    `json:"gust_kt,omitempty"`
}

// FindHighWinds returns the wind groups whose sustained speed or gust is at
// least minKt.
func FindHighWinds(text string, minKt int) []WindGroup {
	var out []WindGroup
	for _, m := range windGroupRe.FindAllStringSubmatch(text, -1) {
		g := WindGroup{Raw: m[0], Direction: m[1], SpeedKt: atoi(m[2])}
		if m[4] != "" {
			g.GustKt = atoi(m[4])
		}
		if g.SpeedKt >= minKt || g.GustKt >= minKt {
			out = append(out, g)
		}
	}
	return out
}

// MetarPhenomena returns the phenomenon codes in a METAR. The station
// identifier and time group are not scanned; remarks such as TSB05 are.
func MetarPhenomena(raw string) []string {
	return FindPhenomenonCodes(metarAfterObservation(raw))
}
