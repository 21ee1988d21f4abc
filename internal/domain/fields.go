package domain

import "fmt"

// Field converters. Each fills one field group of seg from a forecast
// snippet and returns the issues it found; none of them fail.

// convertWind fills the surface wind from src, or from fallback when src is
// nil. With neither present the segment is left without wind.
func convertWind(seg *Segment, src, fallback *Wind) []ConversionIssue {
	if src == nil {
		src = fallback
	}
	if src == nil {
		return nil
	}

	var issues []ConversionIssue
	wind := &SurfaceWind{}

	degrees, variable, ok := parseWindDirection(src.Direction)
	switch {
	case variable:
		wind.VariableDirection = true
	case ok:
		wind.MeanWindDirection = &Measure{Value: float64(degrees), UOM: UnitDegrees}
	case src.Direction == "":
		issues = append(issues, missingData("surface wind direction is missing"))
	default:
		issues = append(issues, missingData(fmt.Sprintf("surface wind direction %q is not numeric", src.Direction)))
	}

	unit := NormalizeWindSpeedUnit(src.Unit)
	if src.Speed != nil {
		wind.MeanWindSpeed = &Measure{Value: float64(*src.Speed), UOM: unit}
	} else {
		issues = append(issues, missingData("surface wind mean speed is missing"))
	}
	if src.Gusts != nil {
		wind.WindGust = &Measure{Value: float64(*src.Gusts), UOM: unit}
	}

	seg.SurfaceWind = wind
	return issues
}

// convertVisibility fills the prevailing visibility. The unit defaults to
// metres and the operator is always ABOVE.
func convertVisibility(seg *Segment, src *Visibility) []ConversionIssue {
	if src == nil {
		return nil
	}

	unit := src.Unit
	if unit == "" {
		unit = UnitMetres
	}

	var issues []ConversionIssue
	if src.Value != nil {
		seg.PrevailingVisibility = &Measure{Value: float64(*src.Value), UOM: unit}
	} else {
		issues = append(issues, missingData("visibility value is missing"))
	}
	seg.PrevailingVisibilityOperator = RelationalOperatorAbove
	return issues
}

// convertWeather maps each weather group to a code and description. An absent
// or empty list produces no entries and no issue.
func convertWeather(seg *Segment, src *WeatherList) []ConversionIssue {
	if src == nil || len(*src) == 0 {
		return nil
	}

	var issues []ConversionIssue
	codes := make([]WeatherCode, 0, len(*src))
	for _, group := range *src {
		code := group.Code()
		if code == "" {
			issues = append(issues, syntaxError("weather group has no phenomenon"))
			continue
		}
		codes = append(codes, WeatherCode{Code: code, Description: describeWeather(code)})
	}
	if len(codes) > 0 {
		seg.Weather = codes
	}
	return issues
}

// convertClouds splits the layer list into standard layers, a vertical
// visibility, or an NSC marker. An absent list yields an empty cloud forecast.
// allowSKC controls whether an SKC cover sets the layer amount.
func convertClouds(seg *Segment, src *CloudList, allowSKC bool) []ConversionIssue {
	var issues []ConversionIssue
	cloud := &CloudForecast{Layers: []Cloud{}}

	if src != nil {
		for _, layer := range *src {
			switch {
			case layer.Amount == "VV":
				vv := &VerticalVisibility{UOM: UnitFeet}
				if layer.Height != nil {
					v := float64(*layer.Height)
					vv.Value = &v
				} else {
					issues = append(issues, syntaxError("vertical visibility height not specified"))
				}
				cloud.VerticalVisibility = vv
			case layer.IsNSC != nil && *layer.IsNSC:
				cloud.NoSignificantCloud = true
			default:
				out := Cloud{}
				if amount, ok := parseCloudAmount(layer.Amount, allowSKC); ok {
					out.Amount = amount
				}
				if ct, ok := parseCloudType(layer.Mod); ok {
					out.CloudType = ct
				}
				switch {
				case layer.Height != nil:
					out.Base = &Measure{Value: float64(*layer.Height * 100), UOM: UnitFeet}
				case layer.Amount != "SKC":
					issues = append(issues, syntaxError(fmt.Sprintf("cloud layer %s height not specified", layer.Amount)))
				}
				cloud.Layers = append(cloud.Layers, out)
			}
		}
	}

	seg.Cloud = cloud
	return issues
}

// convertTemperature is a placeholder until a TX/TN model is defined.
func convertTemperature(_ *Segment, _ *Temperature) []ConversionIssue {
	return nil
}
