// Command wxcheck decodes a METAR/TAF pair for one arrival and prints what
// the trigger engine sees: TAF validity and segments, the arrival window,
// worst ceiling and visibility, phenomena, METAR freshness and the final
// trigger set.
//
// Usage:
//
//	go run ./cmd/wxcheck -taf kden.taf -metar kden.metar -dest KDEN -eta 2200 -duration 95
//	cat kden.taf | go run ./cmd/wxcheck -taf - -dest KDEN -eta 2200 -now 2026-03-19T17:30:00Z
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/flight-wx-triggers/internal/domain"
)

var (
	sectionColor = color.New(color.FgBlue, color.Bold)
	labelColor   = color.New(color.FgCyan)
	okColor      = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	hitColor     = color.New(color.FgRed, color.Bold)
	dimColor     = color.New(color.Faint)
)

type options struct {
	metarPath string
	tafPath   string
	dest      string
	alt       string
	eta       string
	duration  string
	now       string
	cutoff    string
	highWind  bool
	ceiling   int
	vis       float64
}

func main() {
	var opts options
	flag.StringVar(&opts.metarPath, "metar", "", "file holding the METAR, or - for stdin")
	flag.StringVar(&opts.tafPath, "taf", "", "file holding the TAF, or - for stdin")
	flag.StringVar(&opts.dest, "dest", "", "destination airport")
	flag.StringVar(&opts.alt, "alt", "", "destination alternate, if any")
	flag.StringVar(&opts.eta, "eta", "", "arrival time HHMM (UTC)")
	flag.StringVar(&opts.duration, "duration", "", "flight duration in minutes")
	flag.StringVar(&opts.now, "now", "", "evaluate as of this RFC3339 instant instead of the current time")
	flag.StringVar(&opts.cutoff, "cutoff", "", "shift end DDHH; TAF lines after it plus 3h are dimmed")
	flag.BoolVar(&opts.highWind, "high-wind", false, "enable the high-wind trigger")
	flag.IntVar(&opts.ceiling, "ceiling", 2000, "ceiling minimum in feet")
	flag.Float64Var(&opts.vis, "vis", 3, "visibility minimum in statute miles")
	noColor := flag.Bool("no-color", false, "disable colorized output")
	flag.Parse()

	if *noColor {
		color.NoColor = true
	}

	if opts.dest == "" || (opts.metarPath == "" && opts.tafPath == "") {
		flag.Usage()
		os.Exit(2)
	}

	os.Exit(run(opts, os.Stdin, os.Stdout))
}

func run(opts options, stdin io.Reader, out io.Writer) int {
	metar, taf, err := readReports(opts, stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	clock := clockwork.NewRealClock()
	if opts.now != "" {
		at, err := time.Parse(time.RFC3339, opts.now)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: invalid -now: %v\n", err)
			return 1
		}
		clock = clockwork.NewFakeClockAt(at)
	}

	th := domain.DefaultThresholds()
	th.CeilingMinFt = opts.ceiling
	th.VisibilityMinSM = opts.vis
	th.HighWind = opts.highWind
	engine := domain.NewEngine(domain.WithClock(clock), domain.WithThresholds(th))

	flight := domain.Flight{
		ID:       "wxcheck",
		Dest:     opts.dest,
		Alt1:     opts.alt,
		ETA:      domain.NormalizeHHMM(opts.eta),
		Duration: opts.duration,
	}
	dest := domain.NormalizeICAO(opts.dest)
	wx := domain.Weather{METAR: metar, TAF: taf}

	fmt.Fprintf(out, "%s %s  ETA %s  as of %s\n\n",
		sectionColor.Sprint("=== Weather check"), dest, orDash(flight.ETA), engine.Now().Format(time.RFC3339))

	if taf != "" {
		printTAF(out, engine, taf, flight.ETA, opts.cutoff)
	}
	if metar != "" {
		printMETAR(out, engine, metar, flight.ETA)
	}

	result := engine.Evaluate(domain.EvaluationRequest{
		Flight:  flight,
		Weather: map[string]domain.Weather{dest: wx},
	})

	fmt.Fprintln(out, sectionColor.Sprint("--- Verdict"))
	verdict := okColor.Sprint("no alternate required")
	if result.RequiresAlternate {
		verdict = hitColor.Sprint("ALTERNATE REQUIRED")
	}
	fmt.Fprintf(out, "  %s %s\n", labelColor.Sprint("destination:"), verdict)
	if len(result.Triggers) == 0 {
		fmt.Fprintf(out, "  %s %s\n", labelColor.Sprint("triggers:"), okColor.Sprint("none"))
	} else {
		fmt.Fprintf(out, "  %s %s\n", labelColor.Sprint("triggers:"), hitColor.Sprint(strings.Join(result.Triggers, ", ")))
	}
	return 0
}

func printTAF(out io.Writer, engine *domain.Engine, taf, eta, cutoff string) {
	fmt.Fprintln(out, sectionColor.Sprint("--- TAF"))
	segs := engine.Segments(taf)
	if !segs.OK {
		fmt.Fprintf(out, "  %s\n\n", warnColor.Sprint("validity header not found; TAF ignored"))
		return
	}

	fmt.Fprintf(out, "  %s %s to %s\n", labelColor.Sprint("valid:"), formatInstant(segs.ValidFrom), formatInstant(segs.ValidTo))
	for _, s := range segs.Base {
		fmt.Fprintf(out, "  %-7s %s-%s  %s\n", s.Kind, formatInstant(s.Start), formatInstant(s.End), s.Text)
	}
	for _, s := range segs.Conditional {
		fmt.Fprintf(out, "  %-7s %s-%s  %s\n", s.Kind, formatInstant(s.Start), formatInstant(s.End), s.Text)
	}

	if cutoff != "" {
		if c, ok := domain.ParseShiftCutoff(cutoff); ok {
			fmt.Fprintf(out, "  %s\n", labelColor.Sprintf("shift view (cutoff %02d%02dZ):", c.Day, c.Hour))
			for _, line := range domain.TafLinesAfterCutoff(taf, c) {
				if line.AfterShift {
					fmt.Fprintf(out, "    %s\n", dimColor.Sprint(line.Text))
				} else {
					fmt.Fprintf(out, "    %s\n", line.Text)
				}
			}
		} else {
			fmt.Fprintf(out, "  %s\n", warnColor.Sprintf("invalid cutoff %q", cutoff))
		}
	}

	window, arrival, ok := domain.WindowSegments(segs, eta, engine.Now())
	if !ok {
		fmt.Fprintf(out, "  %s\n\n", warnColor.Sprint("ETA falls outside the validity period"))
		return
	}

	th := engine.Thresholds()
	fmt.Fprintf(out, "  %s %s ±1h, %d segment(s)\n", labelColor.Sprint("arrival:"), formatInstant(arrival), len(window))
	texts := make([]string, len(window))
	for i, s := range window {
		texts[i] = s.Text
	}
	worst := domain.WorstCeilingAndVisibility(strings.Join(texts, " "))
	fmt.Fprintf(out, "  %s %s\n", labelColor.Sprint("worst:"), formatWorst(worst, th))

	codes := domain.FindPhenomenonCodes(domain.BaseTextAtArrivalHour(segs.Base, arrival))
	fmt.Fprintf(out, "  %s %s\n\n", labelColor.Sprint("phenomena at arrival hour:"), formatCodes(codes))
}

func printMETAR(out io.Writer, engine *domain.Engine, metar, eta string) {
	fmt.Fprintln(out, sectionColor.Sprint("--- METAR"))

	exp := domain.MetarExpiry(metar, engine.Now())
	switch {
	case !exp.Parsed:
		fmt.Fprintf(out, "  %s %s\n", labelColor.Sprint("observed:"), warnColor.Sprint("no observation time"))
	case exp.Critical:
		fmt.Fprintf(out, "  %s %s %s\n", labelColor.Sprint("observed:"), formatInstant(exp.ObservedAt), hitColor.Sprintf("(%s old, critical)", exp.Age.Round(time.Minute)))
	case exp.Expired:
		fmt.Fprintf(out, "  %s %s %s\n", labelColor.Sprint("observed:"), formatInstant(exp.ObservedAt), warnColor.Sprintf("(%s old, expired)", exp.Age.Round(time.Minute)))
	default:
		fmt.Fprintf(out, "  %s %s %s\n", labelColor.Sprint("observed:"), formatInstant(exp.ObservedAt), okColor.Sprintf("(%s old)", exp.Age.Round(time.Minute)))
	}

	if domain.HasMissingMandatoryFields(metar) {
		fmt.Fprintf(out, "  %s\n", warnColor.Sprint("missing mandatory fields"))
	}
	if obs, ok := domain.ParseMetarObservationTime(metar); ok && len(eta) == 4 && fmt.Sprintf("%02d", obs.Hour) != eta[:2] {
		fmt.Fprintf(out, "  %s\n", dimColor.Sprint("observation hour differs from ETA hour; METAR rules do not apply"))
	}

	fmt.Fprintf(out, "  %s %s\n", labelColor.Sprint("worst:"), formatWorst(domain.WorstCeilingAndVisibility(metar), engine.Thresholds()))
	fmt.Fprintf(out, "  %s %s\n\n", labelColor.Sprint("phenomena:"), formatCodes(domain.MetarPhenomena(metar)))
}

// readReports loads the METAR and TAF text. At most one may come from stdin.
func readReports(opts options, stdin io.Reader) (metar, taf string, err error) {
	if opts.metarPath == "-" && opts.tafPath == "-" {
		return "", "", errors.New("only one of -metar and -taf may read stdin")
	}
	if metar, err = readReport(opts.metarPath, stdin); err != nil {
		return "", "", fmt.Errorf("read metar: %w", err)
	}
	if taf, err = readReport(opts.tafPath, stdin); err != nil {
		return "", "", fmt.Errorf("read taf: %w", err)
	}
	return metar, taf, nil
}

func readReport(path string, stdin io.Reader) (string, error) {
	switch path {
	case "":
		return "", nil
	case "-":
		data, err := io.ReadAll(stdin)
		return strings.TrimSpace(string(data)), err
	default:
		data, err := os.ReadFile(path)
		return strings.TrimSpace(string(data)), err
	}
}

func formatInstant(t time.Time) string {
	return t.UTC().Format("02/1504Z")
}

func formatWorst(w domain.Worst, th domain.Thresholds) string {
	ceiling := "none"
	if ft, ok := w.CeilingFt(); ok {
		ceiling = fmt.Sprintf("%d ft", ft)
	}
	vis := "none"
	if w.VisibilitySM != nil {
		vis = fmt.Sprintf("%g SM", *w.VisibilitySM)
	}
	s := fmt.Sprintf("ceiling %s, visibility %s", ceiling, vis)
	if w.Below(th.CeilingMinFt, th.VisibilityMinSM) {
		return hitColor.Sprint(s + " (below limits)")
	}
	return okColor.Sprint(s)
}

func formatCodes(codes []string) string {
	if len(codes) == 0 {
		return okColor.Sprint("none")
	}
	return hitColor.Sprint(strings.Join(codes, " "))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
