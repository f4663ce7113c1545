package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizeHHMM turns free-text time entry into a four-digit HHMM string.
//
//	1 digit:    minutes only                     "5"    → "0005"
//	2 digits:   minutes if ≤ 59, else H=0 and    "45"   → "0045"
//	            minutes taken mod 60             "75"   → "0015"
//	3 digits:   H MM                             "130"  → "0130"
//	4+ digits:  first two are hours, last two    "2401" → "0001"
//	            are minutes
//
// Hours are taken mod 24 and minutes mod 60. Colons are ignored. Input that
// is empty or not all digits yields "".
func NormalizeHHMM(input string) string {
	cleaned := strings.ReplaceAll(strings.TrimSpace(input), ":", "")
	if !isDigits(cleaned) {
		return ""
	}

	var hours, minutes int
	switch n := len(cleaned); {
	case n == 1:
		minutes = atoi(cleaned)
	case n == 2, n == 3:
		// A two-digit value over 59 is read as packed HHMM with no hour
		// digits, so only its minutes mod 60 survive.
		v := atoi(cleaned)
		hours, minutes = v/100, v%100
	default:
		hours, minutes = atoi(cleaned[:2]), atoi(cleaned[n-2:])
	}

	return fmt.Sprintf("%02d%02d", hours%24, minutes%60)
}

// NormalizeICAO upper-cases an airport code and expands three-letter codes
// to ICAO form: "C" prefix for codes starting with Y (Canada), "K" otherwise.
func NormalizeICAO(code string) string {
	clean := strings.ToUpper(strings.TrimSpace(code))
	if len(clean) == 3 {
		if clean[0] == 'Y' {
			return "C" + clean
		}
		return "K" + clean
	}
	return clean
}

// ComputeArrival derives ETA and block duration from ETD, taxi-out minutes
// and burnoff minutes. ETA wraps at midnight. Returns false if any input is
// missing or malformed.
func ComputeArrival(etd, taxiOut, burnoff string) (eta, duration string, ok bool) {
	taxi, err := strconv.Atoi(strings.TrimSpace(taxiOut))
	if err != nil {
		return "", "", false
	}
	burn, err := strconv.Atoi(strings.TrimSpace(burnoff))
	if err != nil {
		return "", "", false
	}
	hour, minute, ok := splitHHMM(strings.TrimSpace(etd))
	if !ok {
		return "", "", false
	}

	total := taxi + burn
	arrival := ((hour*60+minute+total)%minutesPerDay + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d%02d", arrival/60, arrival%60), strconv.Itoa(total), true
}

const minutesPerDay = 24 * 60

// durationMinutes reads a flight duration, treating empty or malformed
// values as zero.
func durationMinutes(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
