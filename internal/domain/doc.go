// Package domain converts GeoWeb TAF (aerodrome forecast) documents into a
// normalized report model ready for wire encoding (IWXXM or similar).
//
// # Data Source
//
// TAF documents are produced upstream by the GeoWeb forecaster frontend and
// published as JSON to the source topic. Each document has a metadata header,
// one base forecast, and an ordered list of change groups:
//
//	{"metadata": {"location": "EHAM", "type": "normal", "issueTime": ..., "validityStart": ..., "validityEnd": ...},
//	 "forecast": {"wind": {"direction": 200, "speed": 15, "gusts": 25, "unit": "KT"}, ...},
//	 "changegroups": [{"changeType": "BECMG", "changeStart": ..., "forecast": {...}}]}
//
// # TAF Conventions
//
// Wind:
//
//	Direction is degrees true as a number, or "VRB" for variable.
//	Speed unit tokens "KT" and "MPS" (any case) become "[kn_i]" and "m/s".
//
// Visibility:
//
//	Value in metres unless a unit is given. Always qualified ABOVE.
//
// Clouds:
//
//	Height is in hundreds of feet: "OVC020" is {"amount": "OVC", "height": 20}
//	and converts to a 2000 ft base. "VV003" is a vertical visibility of 3 (kept
//	in hundreds of feet, as written). "NSC" marks no significant cloud.
//
// Weather:
//
//	WMO 4678 groups, either abbreviated ("-SHRA") or GeoWeb long names
//	({"qualifier": "light", "descriptor": "showers", "phenomena": ["rain"]}).
//	"NSW" is an explicit empty list.
//
// # Change Groups
//
//	TEMPO          TEMPORARY_FLUCTUATIONS
//	BECMG          BECOMING                   carries wind forward
//	FM             FROM                       carries wind forward, ends at message end
//	PROB30/PROB40  PROBABILITY_30/40
//	PROB30 TEMPO   PROBABILITY_30_TEMPORARY_FLUCTUATIONS
//	PROB40 TEMPO   PROBABILITY_40_TEMPORARY_FLUCTUATIONS
//
// AT and UNTIL are not legal in a TAF. Such groups are kept in the report as
// REJECTED with a SYNTAX_ERROR issue.
//
// A change group without its own wind reports the wind of the most recent
// BECMG/FM group, or of the base forecast. Only wind is inherited.
//
// # Issues
//
// Conversion never fails. Missing required values raise MISSING_DATA issues,
// structurally invalid values raise SYNTAX_ERROR issues, and the converted
// report holds whatever could be converted. See [Convert].
package domain
