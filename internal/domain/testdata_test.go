package domain

import "time"

// testNow is the reference instant for every time-dependent test.
var testNow = time.Date(2026, 3, 19, 17, 30, 0, 0, time.UTC)

// sampleTAF is valid from the 19th 18Z to the 20th 24Z with two FM groups,
// a TEMPO inside the second base segment and a PROB30 inside the third.
const sampleTAF = `TAF KDEN 191720Z 1918/2024 24012KT P6SM SCT250
  FM192100 27015G25KT P6SM BKN015
  TEMPO 1922/2002 3SM -SHRA BKN008
  FM200600 30010KT P6SM SCT100
  PROB30 2010/2014 2SM TSRA OVC010`

const (
	testDest      = "KDEN"
	goodMETAR     = "KDEN 191653Z 27010KT 10SM FEW080 10/M02 A2992 RMK AO2"
	shortHopMETAR = "KDEN 191753Z 27010KT 1SM BR OVC004 10/09 A2992"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2026, 3, day, hour, minute, 0, 0, time.UTC)
}
