package domain

import (
	"fmt"
	"time"
)

// Convert maps a TAF aggregate into a Report. It never fails: problems are
// returned as issues next to a best-effort report. Convert keeps no state
// between calls and is safe for concurrent use on independent inputs.
func Convert(taf TAF) Result {
	issues := make([]ConversionIssue, 0)

	report := &Report{
		Status:                 statusFor(taf.Metadata.Type),
		PermissibleUsage:       PermissibleUsageNonOperational,
		PermissibleUsageReason: PermissibleUsageReasonTest,
		Aerodrome:              Aerodrome{Designator: taf.Metadata.Location},
		IssueTime:              taf.Metadata.IssueTime,
		ValidityStart:          taf.Metadata.ValidityStart,
		ValidityEnd:            taf.Metadata.ValidityEnd,
		ChangeForecasts:        make([]ChangeSegment, 0, len(taf.ChangeGroups)),
	}

	var base Forecast
	if taf.Forecast != nil {
		base = *taf.Forecast
	} else {
		issues = append(issues, missingData("base forecast is missing"))
	}

	seg, baseIssues := convertBaseForecast(base)
	report.BaseForecast = seg
	issues = append(issues, baseIssues...)

	current := newBaseline(base)
	for _, group := range taf.ChangeGroups {
		change, groupIssues := convertChangeGroup(group, current, report.ValidityEnd)
		report.ChangeForecasts = append(report.ChangeForecasts, change)
		issues = append(issues, groupIssues...)

		if change.Indicator.MutatesBaseline() {
			current = current.apply(group.Forecast)
		}
	}

	return Result{Report: report, Issues: issues}
}

// convertBaseForecast converts wind, visibility and clouds unconditionally;
// weather and temperature only when CAVOK is not set.
func convertBaseForecast(f Forecast) (Segment, []ConversionIssue) {
	var seg Segment
	var issues []ConversionIssue

	if f.Wind == nil {
		issues = append(issues, missingData("surface wind is missing"))
	} else {
		issues = append(issues, convertWind(&seg, f.Wind, nil)...)
	}
	issues = append(issues, convertVisibility(&seg, f.Visibility)...)
	issues = append(issues, convertClouds(&seg, f.Clouds, true)...)

	if f.CaVOK != nil {
		cavok := *f.CaVOK
		seg.CAVOK = &cavok
	}
	if !f.IsCAVOK() {
		issues = append(issues, convertWeather(&seg, f.Weather)...)
		issues = append(issues, convertTemperature(&seg, f.Temperature)...)
	}

	return seg, issues
}

// convertChangeGroup classifies one change group and converts its fields.
// Wind falls back to the baseline; nothing else is inherited.
func convertChangeGroup(g ChangeGroup, current baseline, messageEnd time.Time) (ChangeSegment, []ConversionIssue) {
	indicator := ClassifyChangeType(g.ChangeType)
	out := ChangeSegment{Indicator: indicator}

	if indicator == ChangeRejected {
		out.RejectedChangeType = g.ChangeType
		return out, []ConversionIssue{
			syntaxError(fmt.Sprintf("change group %q is not allowed in TAF", g.ChangeType)),
		}
	}

	var issues []ConversionIssue

	if g.ChangeStart != nil {
		start := *g.ChangeStart
		out.ValidityStart = &start
	} else {
		issues = append(issues, missingData(fmt.Sprintf("change group %s start time is missing", g.ChangeType)))
	}

	// FM runs until the next group or the end of the message; the end is set
	// to the message end and refined downstream.
	switch {
	case indicator == ChangeFrom:
		end := messageEnd
		out.ValidityEnd = &end
	case g.ChangeEnd != nil:
		end := *g.ChangeEnd
		out.ValidityEnd = &end
	}

	if g.Forecast.IsCAVOK() {
		cavok := true
		out.CAVOK = &cavok
		return out, issues
	}

	issues = append(issues, convertWind(&out.Segment, g.Forecast.Wind, current.wind())...)
	issues = append(issues, convertVisibility(&out.Segment, g.Forecast.Visibility)...)
	issues = append(issues, convertWeather(&out.Segment, g.Forecast.Weather)...)
	issues = append(issues, convertClouds(&out.Segment, g.Forecast.Clouds, false)...)

	return out, issues
}
