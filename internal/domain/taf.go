package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// MessageType is the GeoWeb TAF message type carried in the metadata.
type MessageType string

const (
	MessageNormal     MessageType = "normal"
	MessageAmendment  MessageType = "amendment"
	MessageCorrection MessageType = "correction"
	MessageCanceled   MessageType = "canceled"
	MessageRetarded   MessageType = "retarded"
	MessageMissing    MessageType = "missing"
)

// TAF is the structured aerodrome forecast produced by the upstream parser.
type TAF struct {
	Metadata     Metadata      `json:"metadata"`
	Forecast     *Forecast     `json:"forecast" validate:"required"`
	ChangeGroups []ChangeGroup `json:"changegroups,omitempty"`
}

// Metadata holds the message header. Validity end >= validity start >= issue
// time is assumed, not enforced.
type Metadata struct {
	UUID          string      `json:"uuid,omitempty"`
	Location      string      `json:"location" validate:"required"`
	Status        string      `json:"status,omitempty"`
	Type          MessageType `json:"type,omitempty"`
	IssueTime     time.Time   `json:"issueTime" validate:"required"`
	ValidityStart time.Time   `json:"validityStart" validate:"required"`
	ValidityEnd   time.Time   `json:"validityEnd" validate:"required"`
}

// Forecast is a set of independently optional forecast fields. A nil field
// means "not specified here"; a non-nil pointer to an empty list means
// "explicitly none".
type Forecast struct {
	CaVOK       *bool        `json:"caVOK,omitempty"`
	Wind        *Wind        `json:"wind,omitempty"`
	Visibility  *Visibility  `json:"visibility,omitempty"`
	Weather     *WeatherList `json:"weather,omitempty"`
	Clouds      *CloudList   `json:"clouds,omitempty"`
	Temperature *Temperature `json:"temperature,omitempty"`
}

// IsCAVOK reports whether the forecast explicitly sets CAVOK.
func (f Forecast) IsCAVOK() bool {
	return f.CaVOK != nil && *f.CaVOK
}

// ChangeGroup is a timed amendment to the base forecast.
type ChangeGroup struct {
	ChangeType  string     `json:"changeType"`
	ChangeStart *time.Time `json:"changeStart,omitempty"`
	ChangeEnd   *time.Time `json:"changeEnd,omitempty"`
	Forecast    Forecast   `json:"forecast"`
}

// Wind is the surface wind as written in the TAF: direction in degrees or
// "VRB", speeds in Unit (KT or MPS).
type Wind struct {
	Direction WindDirection `json:"direction,omitempty"`
	Speed     *int          `json:"speed,omitempty"`
	Gusts     *int          `json:"gusts,omitempty"`
	Unit      string        `json:"unit,omitempty"`
}

// WindDirection holds the raw direction token. GeoWeb encodes it either as a
// JSON number (degrees) or as the string "VRB".
type WindDirection string

// VariableDirection is the sentinel for a variable wind direction.
const VariableDirection WindDirection = "VRB"

func (d *WindDirection) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*d = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("wind direction: %w", err)
		}
		*d = WindDirection(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("wind direction: %w", err)
	}
	*d = WindDirection(integralNumber(n))
	return nil
}

// integralNumber renders whole-valued numbers such as 270.0 or 2.7e2 as plain
// integers; anything else keeps its JSON text.
func integralNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return n.String()
	}
	return strconv.FormatInt(int64(f), 10)
}

func (d WindDirection) MarshalJSON() ([]byte, error) {
	if _, err := strconv.Atoi(string(d)); err == nil {
		return []byte(d), nil
	}
	return json.Marshal(string(d))
}

// Visibility is the prevailing visibility; Unit defaults to metres when empty.
type Visibility struct {
	Value *int   `json:"value,omitempty"`
	Unit  string `json:"unit,omitempty"`
}

// WeatherGroup is one present-weather group, e.g. "-SHRA" is
// {Qualifier: "light", Descriptor: "showers", Phenomena: ["rain"]} in GeoWeb
// JSON, or the equivalent abbreviations.
type WeatherGroup struct {
	Qualifier  string   `json:"qualifier,omitempty"`
	Descriptor string   `json:"descriptor,omitempty"`
	Phenomena  []string `json:"phenomena,omitempty"`
}

// Code renders the group as its abbreviated TAC code.
func (w WeatherGroup) Code() string {
	var sb strings.Builder
	sb.WriteString(abbreviate(qualifierNames, w.Qualifier))
	sb.WriteString(abbreviate(descriptorNames, w.Descriptor))
	for _, p := range w.Phenomena {
		sb.WriteString(abbreviate(phenomenonNames, p))
	}
	return sb.String()
}

// WeatherList is a list of weather groups. The string "NSW" decodes to an
// explicit empty list.
type WeatherList []WeatherGroup

func (l *WeatherList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("weather: %w", err)
		}
		if !strings.EqualFold(s, "NSW") {
			return fmt.Errorf("weather: unexpected token %q", s)
		}
		*l = WeatherList{}
		return nil
	}
	var groups []WeatherGroup
	if err := json.Unmarshal(b, &groups); err != nil {
		return fmt.Errorf("weather: %w", err)
	}
	if groups == nil {
		groups = []WeatherGroup{}
	}
	*l = groups
	return nil
}

// CloudLayer is one cloud group as written in the TAF. Height is in hundreds
// of feet. Amount "VV" marks a vertical visibility group.
type CloudLayer struct {
	Amount string `json:"amount,omitempty"`
	Mod    string `json:"mod,omitempty"`
	Height *int   `json:"height,omitempty"`
	IsNSC  *bool  `json:"isNSC,omitempty"`
}

// CloudList is a list of cloud layers. The string "NSC" decodes to a single
// no-significant-cloud marker layer.
type CloudList []CloudLayer

func (l *CloudList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("clouds: %w", err)
		}
		if !strings.EqualFold(s, "NSC") {
			return fmt.Errorf("clouds: unexpected token %q", s)
		}
		nsc := true
		*l = CloudList{{IsNSC: &nsc}}
		return nil
	}
	var layers []CloudLayer
	if err := json.Unmarshal(b, &layers); err != nil {
		return fmt.Errorf("clouds: %w", err)
	}
	if layers == nil {
		layers = []CloudLayer{}
	}
	*l = layers
	return nil
}

// Temperature carries the TX/TN groups. It is not converted yet.
type Temperature struct {
	MaxTemperature *int       `json:"maxTemperature,omitempty"`
	MaxTime        *time.Time `json:"maxTime,omitempty"`
	MinTemperature *int       `json:"minTemperature,omitempty"`
	MinTime        *time.Time `json:"minTime,omitempty"`
}
