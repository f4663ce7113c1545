// Package domain evaluates raw aviation weather text (METAR and TAF) against
// a flight's arrival time and decides which weather triggers apply.
//
// # Data Source
//
// Raw report text is fetched by an upstream collaborator from the Aviation
// Weather Center and delivered verbatim, one METAR and one TAF per airport.
// Nothing in this package performs I/O; every function is a pure function of
// the raw text, the flight fields and a reference "now".
//
// # Report Conventions
//
// Timestamps are abbreviated to day-of-month and hour (and sometimes minute):
//
//	METAR observation:  "KDEN 191953Z ..."      →  day 19, 19:53 UTC
//	TAF validity:       "1918/2024"             →  19th 18Z until 20th 24Z
//	TAF change groups:  "FM192100"              →  from 19th 21:00 UTC
//	                    "TEMPO 1922/2002 ..."   →  temporarily, 19th 22Z to 20th 02Z
//	                    "PROB30 2006/2010 ..."  →  30% chance, 20th 06Z to 10Z
//
// No year or month is carried. Both are taken from the reference "now", so a
// report issued just before a month boundary can be misdated. METAR freshness
// corrects for this when the parsed day is more than 15 days away from today;
// TAF headers do not. An end hour of 24 means midnight at the end of that day.
// Conditional periods (TEMPO/PROB) end one minute before their literal end
// hour: "TEMPO 1922/2002" covers 22:00 through 01:59.
//
// Ceilings are reported in hundreds of feet ("BKN015" = 1,500 ft broken) and
// visibility in statute miles ("3SM", "1.5SM"). "P6SM" means more than six
// miles and never counts as a restriction.
//
// # Trigger Rules
//
// A destination requires an alternate when, around the estimated arrival:
//
//	TAF window (ETA ± 1h):  ceiling < 2,000 ft or visibility < 3 SM
//	TAF base at ETA hour:   any adverse phenomenon code (SN, TS, FG, FZRA, ...)
//	METAR, after the TAF:   only for flights under 60 minutes arriving within
//	                        the observation hour, same ceiling/visibility limits
//
// Phenomenon codes are matched by substring, so "+SN" also satisfies "SN".
//
// Anything that cannot be parsed is treated as "no evidence", never as an
// error and never as "good weather".
package domain
