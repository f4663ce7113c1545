package domain

import (
	"strings"
)

// ShiftBufferHours is added to a shift end before TAF lines are compared.
const ShiftBufferHours = 3

// ParseShiftCutoff reads a "DDHH" shift end and adds the three-hour buffer.
// The day is clamped at 31 when the buffer crosses midnight at month end.
func ParseShiftCutoff(s string) (DDHH, bool) {
	s = strings.TrimSpace(s)
	if len(s) != 4 || !isDigits(s) {
		return DDHH{}, false
	}
	day, hour := atoi(s[:2]), atoi(s[2:])
	if !validDay(day) || hour > 23 {
		return DDHH{}, false
	}

	hour += ShiftBufferHours
	if hour >= 24 {
		hour -= 24
		day++
	}
	if day > 31 {
		day = 31
	}
	return DDHH{Day: day, Hour: hour}, true
}

// TafLine is one display line of a TAF and whether it starts after the
// shift cutoff.
type TafLine struct {
	Text       string `json:"text"`
	AfterShift bool   `json:"after_shift"`
}

// TafLinesAfterCutoff splits a TAF into display lines and tags each line
// whose explicit start is after cutoff. Header and continuation lines have
// no explicit start and are never tagged.
func TafLinesAfterCutoff(raw string, cutoff DDHH) []TafLine {
	lines := SplitTafLines(raw)
	out := make([]TafLine, len(lines))
	for i, line := range lines {
		start, ok := ParseLineStartDDHH(line)
		out[i] = TafLine{Text: line, AfterShift: ok && CompareDDHH(start, cutoff) > 0}
	}
	return out
}

// SplitTafLines breaks a TAF into one line per change group. Existing line
// breaks are kept and a break is added before every FM, TEMPO, BECMG or PROB
// marker, except a TEMPO directly following PROB30/PROB40.
func SplitTafLines(raw string) []string {
	var lines []string
	for _, physical := range strings.Split(raw, "\n") {
		cut := 0
		for _, loc := range changeMarkerRe.FindAllStringIndex(physical, -1) {
			before := strings.TrimSpace(physical[cut:loc[0]])
			if before == "" || (strings.HasPrefix(before, "PROB") && !strings.Contains(before, " ")) {
				continue
			}
			lines = append(lines, before)
			cut = loc[0]
		}
		if rest := strings.TrimSpace(physical[cut:]); rest != "" {
			lines = append(lines, rest)
		}
	}
	return lines
}
