package domain

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Unit codes used in the converted report (UCUM notation).
const (
	UnitKnots           = "[kn_i]"
	UnitMetresPerSecond = "m/s"
	UnitDegrees         = "deg"
	UnitMetres          = "m"
	UnitFeet            = "[ft_i]"
)

// NormalizeWindSpeedUnit maps the TAF speed unit token to its UCUM code.
// Comparison is case-insensitive; any other token passes through unchanged.
func NormalizeWindSpeedUnit(unit string) string {
	switch {
	case strings.EqualFold(unit, "KT"):
		return UnitKnots
	case strings.EqualFold(unit, "MPS"):
		return UnitMetresPerSecond
	default:
		return unit
	}
}

// parseWindDirection splits a direction token into degrees or the variable
// flag. ok is false when the token is empty or not numeric.
func parseWindDirection(d WindDirection) (degrees int, variable, ok bool) {
	if d == VariableDirection {
		return 0, true, true
	}
	n, err := strconv.Atoi(string(d))
	if err != nil {
		return 0, false, false
	}
	return n, false, true
}

// CloudAmount is the cloud cover category of a layer.
type CloudAmount string

const (
	CloudAmountFEW CloudAmount = "FEW"
	CloudAmountSCT CloudAmount = "SCT"
	CloudAmountBKN CloudAmount = "BKN"
	CloudAmountOVC CloudAmount = "OVC"
	CloudAmountSKC CloudAmount = "SKC"
)

// parseCloudAmount maps a cover token to its category. SKC is only accepted
// when allowSKC is set; change groups never set an SKC amount.
func parseCloudAmount(cover string, allowSKC bool) (CloudAmount, bool) {
	switch cover {
	case "FEW":
		return CloudAmountFEW, true
	case "SCT":
		return CloudAmountSCT, true
	case "BKN":
		return CloudAmountBKN, true
	case "OVC":
		return CloudAmountOVC, true
	case "SKC":
		if allowSKC {
			return CloudAmountSKC, true
		}
	}
	return "", false
}

// CloudType is the significant convective cloud modifier of a layer.
type CloudType string

const (
	CloudTypeTCU CloudType = "TCU"
	CloudTypeCB  CloudType = "CB"
)

func parseCloudType(mod string) (CloudType, bool) {
	switch mod {
	case "TCU":
		return CloudTypeTCU, true
	case "CB":
		return CloudTypeCB, true
	default:
		return "", false
	}
}

// Status is the report status derived from the message type.
type Status string

const (
	StatusNormal       Status = "NORMAL"
	StatusAmendment    Status = "AMENDMENT"
	StatusCorrection   Status = "CORRECTION"
	StatusCancellation Status = "CANCELLATION"
	StatusMissing      Status = "MISSING"
)

// statusFor maps a message type to the report status. Canceled and retarded
// messages both resolve to MISSING; the canceled case has never produced
// CANCELLATION and downstream consumers rely on that.
func statusFor(t MessageType) Status {
	switch t {
	case MessageAmendment:
		return StatusAmendment
	case MessageCorrection:
		return StatusCorrection
	case MessageCanceled, MessageRetarded, MessageMissing:
		return StatusMissing
	default:
		return StatusNormal
	}
}

// qualifierNames, descriptorNames and phenomenonNames map GeoWeb long names
// to WMO 4678 abbreviations.
var (
	qualifierNames = map[string]string{
		"light":    "-",
		"moderate": "",
		"heavy":    "+",
		"vicinity": "VC",
	}

	descriptorNames = map[string]string{
		"shallow":      "MI",
		"patches":      "BC",
		"partial":      "PR",
		"low drifting": "DR",
		"blowing":      "BL",
		"showers":      "SH",
		"thunderstorm": "TS",
		"freezing":     "FZ",
	}

	phenomenonNames = map[string]string{
		"drizzle":               "DZ",
		"rain":                  "RA",
		"snow":                  "SN",
		"snow grains":           "SG",
		"ice crystals":          "IC",
		"ice pellets":           "PL",
		"hail":                  "GR",
		"small hail":            "GS",
		"unknown precipitation": "UP",
		"mist":                  "BR",
		"fog":                   "FG",
		"smoke":                 "FU",
		"volcanic ash":          "VA",
		"widespread dust":       "DU",
		"sand":                  "SA",
		"haze":                  "HZ",
		"dust/sand whirls":      "PO",
		"squalls":               "SQ",
		"funnel cloud":          "FC",
		"sandstorm":             "SS",
		"duststorm":             "DS",
	}
)

// abbreviate returns the abbreviation for a long name, or the upper-cased
// token when it is already an abbreviation or unknown.
func abbreviate(names map[string]string, token string) string {
	if code, ok := names[strings.ToLower(strings.TrimSpace(token))]; ok {
		return code
	}
	return strings.ToUpper(strings.TrimSpace(token))
}

var (
	qualifierText = map[string]string{
		"-": "light",
		"+": "heavy",
	}

	descriptorText = map[string]string{
		"MI": "shallow",
		"BC": "patches of",
		"PR": "partial",
		"DR": "low drifting",
		"BL": "blowing",
		"SH": "showers of",
		"TS": "thunderstorm with",
		"FZ": "freezing",
	}

	descriptorBare = invert(descriptorNames)
	phenomenonText = invert(phenomenonNames)
)

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// describeWeather renders a plain-language description of a weather code,
// e.g. "-SHRA" -> "Light showers of rain". Unknown tokens are kept verbatim.
func describeWeather(code string) string {
	rest := code
	var words []string
	vicinity := false

	switch {
	case strings.HasPrefix(rest, "-"), strings.HasPrefix(rest, "+"):
		words = append(words, qualifierText[rest[:1]])
		rest = rest[1:]
	case strings.HasPrefix(rest, "VC"):
		vicinity = true
		rest = rest[2:]
	}

	var phenomena []string
	descriptor := ""
	for len(rest) >= 2 {
		tok := rest[:2]
		rest = rest[2:]
		if _, ok := descriptorText[tok]; ok && descriptor == "" && len(phenomena) == 0 {
			descriptor = tok
			continue
		}
		if text, ok := phenomenonText[tok]; ok {
			phenomena = append(phenomena, text)
			continue
		}
		// Unknown remainder, possibly not ASCII: keep it whole.
		rest = tok + rest
		break
	}
	if rest != "" {
		phenomena = append(phenomena, rest)
	}

	if descriptor != "" {
		if len(phenomena) == 0 {
			words = append(words, descriptorBare[descriptor])
		} else {
			words = append(words, descriptorText[descriptor])
		}
	}
	if len(phenomena) > 0 {
		words = append(words, strings.Join(phenomena, " and "))
	}
	if vicinity && len(words) > 0 {
		words = append(words, "in the vicinity")
	}

	desc := strings.Join(words, " ")
	if desc == "" {
		return code
	}
	first, size := utf8.DecodeRuneInString(desc)
	return string(unicode.ToUpper(first)) + desc[size:]
}
