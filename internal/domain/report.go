package domain

import "time"

// PermissibleUsage and PermissibleUsageReason are fixed for every converted
// report until operational publication is approved.
const (
	PermissibleUsageNonOperational = "NON-OPERATIONAL"
	PermissibleUsageReasonTest     = "TEST"
)

// RelationalOperatorAbove qualifies every prevailing visibility ("above").
const RelationalOperatorAbove = "ABOVE"

// Report is the normalized meteorological message handed to wire encoders.
type Report struct {
	Status                 Status          `json:"status"`
	PermissibleUsage       string          `json:"permissible_usage"`
	PermissibleUsageReason string          `json:"permissible_usage_reason"`
	Aerodrome              Aerodrome       `json:"aerodrome"`
	IssueTime              time.Time       `json:"issue_time"`
	ValidityStart          time.Time       `json:"validity_start"`
	ValidityEnd            time.Time       `json:"validity_end"`
	BaseForecast           Segment         `json:"base_forecast"`
	ChangeForecasts        []ChangeSegment `json:"change_forecasts"`
}

// Aerodrome identifies the forecast location by ICAO designator.
type Aerodrome struct {
	Designator string `json:"designator"`
}

// Segment holds the converted fields of a base or change forecast.
type Segment struct {
	CAVOK                        *bool          `json:"cavok,omitempty"`
	SurfaceWind                  *SurfaceWind   `json:"surface_wind,omitempty"`
	PrevailingVisibility         *Measure       `json:"prevailing_visibility,omitempty"`
	PrevailingVisibilityOperator string         `json:"prevailing_visibility_operator,omitempty"`
	Weather                      []WeatherCode  `json:"weather,omitempty"`
	Cloud                        *CloudForecast `json:"cloud,omitempty"`
}

// ChangeSegment is a converted change group. Rejected groups keep their
// position in the list with Indicator set to ChangeRejected and no fields.
type ChangeSegment struct {
	Indicator          ChangeIndicator `json:"indicator"`
	RejectedChangeType string          `json:"rejected_change_type,omitempty"`
	ValidityStart      *time.Time      `json:"validity_start,omitempty"`
	ValidityEnd        *time.Time      `json:"validity_end,omitempty"`
	Segment
}

// Measure is a numeric value with a UCUM unit of measure.
type Measure struct {
	Value float64 `json:"value"`
	UOM   string  `json:"uom"`
}

// SurfaceWind is the converted surface wind. MeanWindDirection is nil when the
// direction is variable.
type SurfaceWind struct {
	VariableDirection bool     `json:"variable_direction"`
	MeanWindDirection *Measure `json:"mean_wind_direction,omitempty"`
	MeanWindSpeed     *Measure `json:"mean_wind_speed,omitempty"`
	WindGust          *Measure `json:"wind_gust,omitempty"`
}

// WeatherCode is a forecast weather phenomenon with its description.
type WeatherCode struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// CloudForecast holds the standard layers plus at most one vertical
// visibility or no-significant-cloud marker.
type CloudForecast struct {
	Layers             []Cloud             `json:"layers"`
	VerticalVisibility *VerticalVisibility `json:"vertical_visibility,omitempty"`
	NoSignificantCloud bool                `json:"no_significant_cloud,omitempty"`
}

// Cloud is one converted cloud layer. Base is in feet.
type Cloud struct {
	Amount    CloudAmount `json:"amount,omitempty"`
	CloudType CloudType   `json:"cloud_type,omitempty"`
	Base      *Measure    `json:"base,omitempty"`
}

// VerticalVisibility is reported even without a value so that an obscured sky
// is not lost when the height is missing.
type VerticalVisibility struct {
	Value *float64 `json:"value"`
	UOM   string   `json:"uom"`
}

// Result is the converted report plus the non-fatal issues found on the way.
// Issues is never nil.
type Result struct {
	Report *Report           `json:"report"`
	Issues []ConversionIssue `json:"issues"`
}

// IssueKind classifies a conversion issue.
type IssueKind string

const (
	IssueMissingData IssueKind = "MISSING_DATA"
	IssueSyntaxError IssueKind = "SYNTAX_ERROR"
)

// ConversionIssue is an informational problem found during conversion.
type ConversionIssue struct {
	Kind    IssueKind `json:"kind"`
	Message string    `json:"message"`
}

func (i ConversionIssue) String() string {
	return string(i.Kind) + ": " + i.Message
}

func missingData(msg string) ConversionIssue {
	return ConversionIssue{Kind: IssueMissingData, Message: msg}
}

func syntaxError(msg string) ConversionIssue {
	return ConversionIssue{Kind: IssueSyntaxError, Message: msg}
}
