package domain

import (
	"regexp"
	"strings"
	"time"
)

// SegmentKind tags a TAF segment as base forecast or conditional overlay.
type SegmentKind string

const (
	SegmentBase   SegmentKind = "BASE"
	SegmentTempo  SegmentKind = "TEMPO"
	SegmentProb30 SegmentKind = "PROB30"
	SegmentProb40 SegmentKind = "PROB40"
)

var (
	// fmBoundaryRe locates FM change groups. The same pattern drives both
	// finding the instants and splitting the body, so chunks align 1:1.
	fmBoundaryRe = regexp.MustCompile(`\bFM(\d{2})(\d{2})(\d{2})\b`)

	// conditionalRe matches the head of a TEMPO/PROB30/PROB40 group.
	conditionalRe = regexp.MustCompile(`\b(TEMPO|PROB30|PROB40)\s+(\d{2})(\d{2})/(\d{2})(\d{2})\s+`)

	// changeMarkerRe ends a conditional group's text.
	changeMarkerRe = regexp.MustCompile(`\b(FM\d{6}|TEMPO|BECMG|PROB\d+)\b`)

	// tempoRunRe matches a TEMPO group and everything after it up to the end
	// of the string, line breaks included. Applied per FM chunk, it drops the
	// rest of the chunk from base text.
	tempoRunRe = regexp.MustCompile(`\bTEMPO\s+\d{4}/\d{4}\s+\S+(?:\s+\S+)*`)
)

// Segment is a [Start, End) slice of a TAF with the forecast text valid in it.
type Segment struct {
	Start time.Time   `json:"start"`
	End   time.Time   `json:"end"`
	Text  string      `json:"text"`
	Kind  SegmentKind `json:"kind"`
}

// Overlaps reports whether the segment intersects [from, to].
func (s Segment) Overlaps(from, to time.Time) bool {
	return s.End.After(from) && s.Start.Before(to)
}

// Contains reports whether t lies in [Start, End).
func (s Segment) Contains(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.End)
}

// TafSegments is a TAF decomposed into contiguous base segments split at FM
// groups and the conditional overlays found anywhere in the text. OK is
// false when the validity header could not be parsed, in which case every
// other field is zero and callers must treat the TAF as "no evidence".
type TafSegments struct {
	Base        []Segment `json:"base"`
	Conditional []Segment `json:"conditional"`
	ValidFrom   time.Time `json:"valid_from"`
	ValidTo     time.Time `json:"valid_to"`
	OK          bool      `json:"ok"`
}

// Segmenter builds TafSegments from raw TAF text. The result may depend on
// the year and month of now but on nothing else about it.
type Segmenter interface {
	Segments(raw string, now time.Time) TafSegments
}

// SegmenterFunc adapts a plain function to Segmenter.
type SegmenterFunc func(raw string, now time.Time) TafSegments

// Segments calls f(raw, now).
func (f SegmenterFunc) Segments(raw string, now time.Time) TafSegments {
	return f(raw, now)
}

// BuildTafSegments splits a raw TAF into base and conditional segments.
//
// The base segments tile [ValidFrom, ValidTo) exactly. An FM group whose
// time is invalid, not after the previous boundary, or at or past ValidTo
// cannot start a segment; its text is folded into the preceding segment.
// A TEMPO group removes itself and the rest of its FM chunk from base text.
// PROB30 and PROB40 groups stay in base text. TEMPO, PROB30 and PROB40 groups
// are all reported as conditional segments whose text ends at the next line
// break or change marker and whose end is one minute before the literal end
// hour.
func BuildTafSegments(raw string, now time.Time) TafSegments {
	validity, ok := ParseTafHeader(raw, now)
	if !ok {
		return TafSegments{}
	}

	return TafSegments{
		Base:        buildBaseSegments(raw, validity),
		Conditional: buildConditionalSegments(raw, validity),
		ValidFrom:   validity.Start,
		ValidTo:     validity.End,
		OK:          true,
	}
}

func buildBaseSegments(raw string, validity TafValidity) []Segment {
	// Everything up to and including the validity token is preamble
	// ("TAF AMD KSAN 191720Z 1918/2024"), not forecast content.
	headerEnd := tafHeaderRe.FindStringIndex(raw)[1]

	matches := fmBoundaryRe.FindAllStringSubmatchIndex(raw, -1)
	chunkEnd := func(i int) int {
		if i+1 < len(matches) {
			return matches[i+1][0]
		}
		return len(raw)
	}

	firstEnd := len(raw)
	if len(matches) > 0 {
		firstEnd = matches[0][0]
	}
	firstText := ""
	if headerEnd < firstEnd {
		firstText = stripTempo(raw[headerEnd:firstEnd])
	}

	var segments []Segment
	current := Segment{Start: validity.Start, Text: firstText, Kind: SegmentBase}

	for i, m := range matches {
		text := stripTempo(raw[m[1]:chunkEnd(i)])
		at, ok := fmInstant(validity, atoi(raw[m[2]:m[3]]), atoi(raw[m[4]:m[5]]), atoi(raw[m[6]:m[7]]))
		if !ok || !at.After(current.Start) || !at.Before(validity.End) {
			current.Text += " " + text
			continue
		}
		current.End = at
		segments = append(segments, current)
		current = Segment{Start: at, Text: text, Kind: SegmentBase}
	}
	current.End = validity.End
	segments = append(segments, current)

	for i := range segments {
		segments[i].Text = collapseSpace(segments[i].Text)
	}
	return segments
}

func buildConditionalSegments(raw string, validity TafValidity) []Segment {
	var segments []Segment
	for _, run := range findConditionalRuns(raw) {
		text := collapseSpace(raw[run.textStart:run.end])
		if text == "" {
			continue
		}
		if !validDay(run.startDay) || !validDay(run.endDay) || run.startHour > 23 || run.endHour > 24 {
			continue
		}
		start := time.Date(validity.Year, validity.Month, run.startDay, run.startHour, 0, 0, 0, time.UTC)
		end := periodEnd(validity.Year, validity.Month, run.endDay, run.endHour).Add(-time.Minute)
		segments = append(segments, Segment{Start: start, End: end, Text: text, Kind: run.kind})
	}
	return segments
}

// conditionalRun locates one TEMPO/PROB group in a string.
type conditionalRun struct {
	kind                SegmentKind
	startDay, startHour int
	endDay, endHour     int
	textStart, end      int
}

// findConditionalRuns returns every conditional group in text. A group's
// text runs to the next change marker, the next line break, or the end.
func findConditionalRuns(text string) []conditionalRun {
	matches := conditionalRe.FindAllStringSubmatchIndex(text, -1)
	runs := make([]conditionalRun, 0, len(matches))
	for _, m := range matches {
		end := len(text)
		if nl := strings.IndexByte(text[m[1]:], '\n'); nl >= 0 {
			end = m[1] + nl
		}
		if loc := changeMarkerRe.FindStringIndex(text[m[1]:end]); loc != nil {
			end = m[1] + loc[0]
		}
		runs = append(runs, conditionalRun{
			kind:      SegmentKind(text[m[2]:m[3]]),
			startDay:  atoi(text[m[4]:m[5]]),
			startHour: atoi(text[m[6]:m[7]]),
			endDay:    atoi(text[m[8]:m[9]]),
			endHour:   atoi(text[m[10]:m[11]]),
			textStart: m[1],
			end:       end,
		})
	}
	return runs
}

// stripTempo removes a TEMPO group and whatever follows it in one FM chunk.
func stripTempo(chunk string) string {
	return tempoRunRe.ReplaceAllString(chunk, " ")
}

func fmInstant(validity TafValidity, day, hour, minute int) (time.Time, bool) {
	if !validDay(day) || hour > 23 || minute > 59 {
		return time.Time{}, false
	}
	return time.Date(validity.Year, validity.Month, day, hour, minute, 0, 0, time.UTC), true
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
