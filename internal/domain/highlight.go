package domain

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

var (
	ceilingTokenRe  = regexp.MustCompile(`^(BKN|OVC|VV)(\d{3})`)
	visDecimalRe    = regexp.MustCompile(`^(\d+(\.\d+)?)SM$`)
	visFractionRe   = regexp.MustCompile(`^M?(\d+)/(\d+)SM$`)
	weatherTokenRe  = regexp.MustCompile(`^(\+|-|VC)?(MI|PR|BC|DR|BL|SH|TS|FZ)?(DZ|RA|SN|SG|IC|PL|GR|GS|UP|BR|FG|FU|VA|DU|SA|HZ|PY|PO|SQ|FC|SS|DS)*$`)
	afterShiftDivRe = regexp.MustCompile(`<div class="taf-line[^"]*after-shift[^"]*">[\s\S]*?</div>`)
	hitSpanRe       = regexp.MustCompile(`class="hit"`)
)

// HighlightMetar renders a METAR as HTML with limit-breaking ceiling and
// visibility groups and phenomenon groups wrapped in <span class="hit">.
func HighlightMetar(raw string, th Thresholds) string {
	raw = strings.TrimSpace(raw)
	body := stripRemarks(raw)

	var b strings.Builder
	b.WriteString(`<div class="wx metar">`)
	b.WriteString(highlightTokens(body, th, true))
	if rmk := collapseSpace(raw[len(body):]); rmk != "" {
		b.WriteString(" ")
		b.WriteString(html.EscapeString(rmk))
	}
	b.WriteString(`</div>`)
	return b.String()
}

// HighlightTaf renders a TAF one <div class="taf-line"> per change group.
// When cutoff is non-nil, lines starting after it get the after-shift class
// and carry no hits.
func HighlightTaf(raw string, th Thresholds, cutoff *DDHH) string {
	var b strings.Builder
	b.WriteString(`<div class="wx taf">`)
	for _, line := range SplitTafLines(raw) {
		after := false
		if cutoff != nil {
			if start, ok := ParseLineStartDDHH(line); ok {
				after = CompareDDHH(start, *cutoff) > 0
			}
		}
		if after {
			b.WriteString(`<div class="taf-line after-shift">`)
		} else {
			b.WriteString(`<div class="taf-line">`)
		}
		b.WriteString(highlightTokens(line, th, !after))
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}

// HasActiveHit reports whether highlighted HTML contains a hit outside any
// after-shift TAF line.
func HasActiveHit(highlighted string) bool {
	return hitSpanRe.MatchString(afterShiftDivRe.ReplaceAllString(highlighted, ""))
}

func highlightTokens(text string, th Thresholds, mark bool) string {
	tokens := strings.Fields(text)
	for i, tok := range tokens {
		escaped := html.EscapeString(tok)
		if mark && isHitToken(tok, th) {
			escaped = `<span class="hit">` + escaped + `</span>`
		}
		tokens[i] = escaped
	}
	return strings.Join(tokens, " ")
}

func isHitToken(tok string, th Thresholds) bool {
	if m := ceilingTokenRe.FindStringSubmatch(tok); m != nil {
		return atoi(m[2])*100 < th.CeilingMinFt
	}
	if m := visDecimalRe.FindStringSubmatch(tok); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		return err == nil && v < th.VisibilityMinSM
	}
	if m := visFractionRe.FindStringSubmatch(tok); m != nil {
		num, den := atoi(m[1]), atoi(m[2])
		return den != 0 && float64(num)/float64(den) < th.VisibilityMinSM
	}
	if th.HighWind && len(FindHighWinds(tok, th.HighWindKt)) > 0 {
		return true
	}
	if len(tok) >= 2 && weatherTokenRe.MatchString(tok) {
		return len(FindPhenomenonCodes(tok)) > 0
	}
	return false
}
