// Command genmock turns a flights CSV and a directory of raw weather files
// into JSON-lines evaluation requests for seeding the source topic. Weather
// files are named ICAO.metar and ICAO.taf; airports without a file simply
// get no report.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -flights data/mock/flights.csv \
//	  -wx-dir data/mock/wx \
//	  -out data/mock/requests.jsonl \
//	  -now 2026-03-19T17:30:00Z
package main

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/flight-wx-triggers/internal/domain"
)

func main() {
	flightsPath := flag.String("flights", "", "flights CSV with a header row")
	wxDir := flag.String("wx-dir", "", "directory holding ICAO.metar and ICAO.taf files")
	out := flag.String("out", "-", "output JSONL path, or - for stdout")
	now := flag.String("now", "", "RFC3339 instant for the preview evaluation (default: current time)")
	flag.Parse()

	if *flightsPath == "" || *wxDir == "" {
		flag.Usage()
		log.Fatal("missing required flags: -flights, -wx-dir")
	}

	clock := clockwork.NewRealClock()
	if *now != "" {
		at, err := time.Parse(time.RFC3339, *now)
		if err != nil {
			log.Fatalf("invalid -now: %v", err)
		}
		clock = clockwork.NewFakeClockAt(at)
	}

	if err := run(*flightsPath, *wxDir, *out, clock); err != nil {
		log.Fatal(err)
	}
}

func run(flightsPath, wxDir, outPath string, clock clockwork.Clock) error {
	flights, err := loadFlights(flightsPath)
	if err != nil {
		return fmt.Errorf("load flights: %w", err)
	}

	var w io.Writer = os.Stdout
	if outPath != "-" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	engine := domain.NewEngine(domain.WithClock(clock))
	var withTriggers int
	for _, flight := range flights {
		req, err := buildRequest(flight, wxDir)
		if err != nil {
			return fmt.Errorf("flight %s: %w", flight.ID, err)
		}
		if err := enc.Encode(req); err != nil {
			return fmt.Errorf("encode flight %s: %w", flight.ID, err)
		}
		if res := engine.Evaluate(req); len(res.Triggers) > 0 {
			withTriggers++
			log.Printf("%s -> %s: %s", flight.ID, res.Dest, strings.Join(res.Triggers, ", "))
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	log.Printf("wrote %d requests (%d with triggers as of %s)", len(flights), withTriggers, clock.Now().UTC().Format(time.RFC3339))
	return nil
}

// loadFlights reads flights keyed by header name. Unknown columns are
// ignored; missing ETA is derived from ETD, taxi-out and burnoff.
func loadFlights(path string) ([]domain.Flight, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows in %s", path)
	}

	colIdx := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		colIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	get := func(row []string, col string) string {
		if i, ok := colIdx[col]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	flights := make([]domain.Flight, 0, len(rows)-1)
	for n, row := range rows[1:] {
		fl := domain.Flight{
			ID:           get(row, "id"),
			FlightNumber: get(row, "flight_number"),
			Origin:       get(row, "origin"),
			Dest:         get(row, "dest"),
			TakeoffAlt:   get(row, "takeoff_alt"),
			Alt1:         get(row, "alt1"),
			Alt2:         get(row, "alt2"),
			ETD:          domain.NormalizeHHMM(get(row, "etd")),
			TaxiOut:      get(row, "taxi_out"),
			Burnoff:      get(row, "burnoff"),
			Duration:     get(row, "duration"),
			ETA:          domain.NormalizeHHMM(get(row, "eta")),
		}
		if fl.ID == "" {
			fl.ID = fmt.Sprintf("row-%d", n+2)
		}
		if fl.ETA == "" {
			if eta, duration, ok := domain.ComputeArrival(fl.ETD, fl.TaxiOut, fl.Burnoff); ok {
				fl.ETA = eta
				if fl.Duration == "" {
					fl.Duration = duration
				}
			}
		}
		flights = append(flights, fl)
	}
	return flights, nil
}

// buildRequest attaches the weather files for every airport the flight touches.
func buildRequest(flight domain.Flight, wxDir string) (domain.EvaluationRequest, error) {
	weather := make(map[string]domain.Weather)
	for _, icao := range flight.Airports() {
		metar, err := readOptional(filepath.Join(wxDir, icao+".metar"))
		if err != nil {
			return domain.EvaluationRequest{}, err
		}
		taf, err := readOptional(filepath.Join(wxDir, icao+".taf"))
		if err != nil {
			return domain.EvaluationRequest{}, err
		}
		if metar != "" || taf != "" {
			weather[icao] = domain.Weather{METAR: metar, TAF: taf}
		}
	}
	return domain.EvaluationRequest{Flight: flight, Weather: weather}, nil
}

func readOptional(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
