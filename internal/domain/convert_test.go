package domain

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testIssueTime     = time.Date(2017, 8, 4, 11, 0, 0, 0, time.UTC)
	testValidityStart = time.Date(2017, 8, 4, 12, 0, 0, 0, time.UTC)
	testValidityEnd   = time.Date(2017, 8, 5, 18, 0, 0, 0, time.UTC)
)

func intPtr(v int) *int              { return &v }
func boolPtr(v bool) *bool           { return &v }
func timePtr(t time.Time) *time.Time { return &t }

func knots(dir, speed int) *Wind {
	return &Wind{Direction: WindDirection(strconv.Itoa(dir)), Speed: intPtr(speed), Unit: "KT"}
}

func minimalTAF() TAF {
	return TAF{
		Metadata: Metadata{
			Location:      "EHAM",
			Type:          MessageNormal,
			IssueTime:     testIssueTime,
			ValidityStart: testValidityStart,
			ValidityEnd:   testValidityEnd,
		},
		Forecast: &Forecast{Wind: knots(200, 10)},
	}
}

func changeGroup(changeType string, hour int, f Forecast) ChangeGroup {
	return ChangeGroup{
		ChangeType:  changeType,
		ChangeStart: timePtr(testValidityStart.Add(time.Duration(hour) * time.Hour)),
		Forecast:    f,
	}
}

func loadFixture(t *testing.T) TAF {
	t.Helper()
	data, err := os.ReadFile("testdata/taf_valid.json")
	require.NoError(t, err)
	taf, err := ParseTAF(data)
	require.NoError(t, err)
	return taf
}

func TestConvert_ValidFixture(t *testing.T) {
	res := Convert(loadFixture(t))

	require.NotNil(t, res.Report)
	assert.Empty(t, res.Issues)

	r := res.Report
	assert.Equal(t, StatusNormal, r.Status)
	assert.Equal(t, "EHAM", r.Aerodrome.Designator)
	assert.Equal(t, testIssueTime, r.IssueTime)
	assert.Equal(t, testValidityStart, r.ValidityStart)
	assert.Equal(t, testValidityEnd, r.ValidityEnd)

	base := r.BaseForecast
	require.NotNil(t, base.SurfaceWind)
	assert.Equal(t, &Measure{Value: 200, UOM: UnitDegrees}, base.SurfaceWind.MeanWindDirection)
	assert.Equal(t, &Measure{Value: 15, UOM: UnitKnots}, base.SurfaceWind.MeanWindSpeed)
	assert.Equal(t, &Measure{Value: 25, UOM: UnitKnots}, base.SurfaceWind.WindGust)
	assert.Equal(t, &Measure{Value: 9999, UOM: UnitMetres}, base.PrevailingVisibility)
	assert.Equal(t, RelationalOperatorAbove, base.PrevailingVisibilityOperator)
	assert.Equal(t, []WeatherCode{{Code: "SHRA", Description: "Showers of rain"}}, base.Weather)
	require.NotNil(t, base.Cloud)
	assert.Equal(t, []Cloud{
		{Amount: CloudAmountFEW, CloudType: CloudTypeCB, Base: &Measure{Value: 1500, UOM: UnitFeet}},
		{Amount: CloudAmountBKN, Base: &Measure{Value: 3000, UOM: UnitFeet}},
	}, base.Cloud.Layers)
	require.NotNil(t, base.CAVOK)
	assert.False(t, *base.CAVOK)

	require.Len(t, r.ChangeForecasts, 4)

	becmg := r.ChangeForecasts[0]
	assert.Equal(t, ChangeBecoming, becmg.Indicator)
	assert.Equal(t, time.Date(2017, 8, 4, 14, 0, 0, 0, time.UTC), *becmg.ValidityStart)
	assert.Equal(t, time.Date(2017, 8, 4, 16, 0, 0, 0, time.UTC), *becmg.ValidityEnd)
	assert.Equal(t, &Measure{Value: 270, UOM: UnitDegrees}, becmg.SurfaceWind.MeanWindDirection)
	assert.Nil(t, becmg.PrevailingVisibility)
	assert.Equal(t, []Cloud{{Amount: CloudAmountOVC, Base: &Measure{Value: 2000, UOM: UnitFeet}}}, becmg.Cloud.Layers)

	tempo := r.ChangeForecasts[1]
	assert.Equal(t, ChangeTemporaryFluctuations, tempo.Indicator)
	assert.Equal(t, &Measure{Value: 270, UOM: UnitDegrees}, tempo.SurfaceWind.MeanWindDirection)
	assert.Equal(t, &Measure{Value: 15, UOM: UnitKnots}, tempo.SurfaceWind.MeanWindSpeed)
	assert.Nil(t, tempo.SurfaceWind.WindGust)
	assert.Equal(t, []WeatherCode{{Code: "+TSRA", Description: "Heavy thunderstorm with rain"}}, tempo.Weather)

	prob := r.ChangeForecasts[2]
	assert.Equal(t, ChangeProbability30Tempo, prob.Indicator)
	require.NotNil(t, prob.Cloud.VerticalVisibility)
	assert.InDelta(t, 1.0, *prob.Cloud.VerticalVisibility.Value, 0)
	assert.Empty(t, prob.Cloud.Layers)
	assert.Equal(t, "MIFG", prob.Weather[0].Code)

	fm := r.ChangeForecasts[3]
	assert.Equal(t, ChangeFrom, fm.Indicator)
	assert.Equal(t, testValidityEnd, *fm.ValidityEnd)
	require.NotNil(t, fm.CAVOK)
	assert.True(t, *fm.CAVOK)
	assert.Nil(t, fm.SurfaceWind, "CAVOK change groups skip field conversion")
	assert.Nil(t, fm.Cloud)
}

func TestConvert_MinimalInput(t *testing.T) {
	res := Convert(minimalTAF())

	require.NotNil(t, res.Report)
	require.NotNil(t, res.Issues)
	assert.Empty(t, res.Issues)
	require.NotNil(t, res.Report.ChangeForecasts)
	assert.Empty(t, res.Report.ChangeForecasts)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"issues":[]`)
	assert.Contains(t, string(data), `"change_forecasts":[]`)
}

func TestConvert_ZeroValueInput(t *testing.T) {
	res := Convert(TAF{})

	require.NotNil(t, res.Report)
	require.Len(t, res.Issues, 2)
	assert.Equal(t, missingData("base forecast is missing"), res.Issues[0])
	assert.Equal(t, missingData("surface wind is missing"), res.Issues[1])
	assert.Equal(t, StatusNormal, res.Report.Status)
}

func TestConvert_BecomingWindInheritedByLaterGroups(t *testing.T) {
	taf := minimalTAF()
	taf.ChangeGroups = []ChangeGroup{
		changeGroup("BECMG", 2, Forecast{Wind: knots(270, 15)}),
		changeGroup("TEMPO", 4, Forecast{Visibility: &Visibility{Value: intPtr(4000)}}),
		changeGroup("PROB40", 6, Forecast{Visibility: &Visibility{Value: intPtr(1500)}}),
	}

	res := Convert(taf)
	require.Empty(t, res.Issues)
	require.Len(t, res.Report.ChangeForecasts, 3)

	want := &SurfaceWind{
		MeanWindDirection: &Measure{Value: 270, UOM: UnitDegrees},
		MeanWindSpeed:     &Measure{Value: 15, UOM: "[kn_i]"},
	}
	for _, cf := range res.Report.ChangeForecasts {
		if diff := cmp.Diff(want, cf.SurfaceWind); diff != "" {
			t.Errorf("%s wind mismatch (-want +got):\n%s", cf.Indicator, diff)
		}
	}
}

func TestConvert_BaseWindInheritedWithoutBecoming(t *testing.T) {
	taf := minimalTAF()
	taf.ChangeGroups = []ChangeGroup{
		changeGroup("TEMPO", 1, Forecast{Visibility: &Visibility{Value: intPtr(4000)}}),
	}

	res := Convert(taf)

	wind := res.Report.ChangeForecasts[0].SurfaceWind
	require.NotNil(t, wind)
	assert.Equal(t, &Measure{Value: 200, UOM: UnitDegrees}, wind.MeanWindDirection)
	assert.Equal(t, &Measure{Value: 10, UOM: UnitKnots}, wind.MeanWindSpeed)
}

func TestConvert_TempoAndProbDoNotMutateBaseline(t *testing.T) {
	for _, changeType := range []string{"TEMPO", "PROB30", "PROB40", "PROB30 TEMPO", "PROB40 TEMPO"} {
		t.Run(changeType, func(t *testing.T) {
			taf := minimalTAF()
			taf.ChangeGroups = []ChangeGroup{
				changeGroup(changeType, 1, Forecast{Wind: knots(300, 30)}),
				changeGroup("TEMPO", 2, Forecast{}),
			}

			res := Convert(taf)

			own := res.Report.ChangeForecasts[0].SurfaceWind
			assert.Equal(t, &Measure{Value: 300, UOM: UnitDegrees}, own.MeanWindDirection)
			next := res.Report.ChangeForecasts[1].SurfaceWind
			assert.Equal(t, &Measure{Value: 200, UOM: UnitDegrees}, next.MeanWindDirection)
		})
	}
}

func TestConvert_FromMutatesBaseline(t *testing.T) {
	taf := minimalTAF()
	gusty := knots(90, 20)
	gusty.Gusts = intPtr(35)
	gusty.Unit = "MPS"
	taf.ChangeGroups = []ChangeGroup{
		changeGroup("FM", 3, Forecast{Wind: gusty}),
		changeGroup("PROB30", 5, Forecast{}),
	}

	res := Convert(taf)

	fm := res.Report.ChangeForecasts[0]
	assert.Equal(t, testValidityEnd, *fm.ValidityEnd)

	inherited := res.Report.ChangeForecasts[1].SurfaceWind
	require.NotNil(t, inherited)
	assert.Equal(t, &Measure{Value: 90, UOM: UnitDegrees}, inherited.MeanWindDirection)
	assert.Equal(t, &Measure{Value: 20, UOM: UnitMetresPerSecond}, inherited.MeanWindSpeed)
	assert.Equal(t, &Measure{Value: 35, UOM: UnitMetresPerSecond}, inherited.WindGust)
	assert.Nil(t, res.Report.ChangeForecasts[1].ValidityEnd)
}

func TestConvert_OnlyWindIsInherited(t *testing.T) {
	taf := minimalTAF()
	taf.ChangeGroups = []ChangeGroup{
		changeGroup("BECMG", 2, Forecast{
			Visibility: &Visibility{Value: intPtr(800)},
			Clouds:     &CloudList{{Amount: "OVC", Height: intPtr(2)}},
			Weather:    &WeatherList{{Phenomena: []string{"FG"}}},
		}),
		changeGroup("TEMPO", 4, Forecast{}),
	}

	res := Convert(taf)

	tempo := res.Report.ChangeForecasts[1]
	assert.Nil(t, tempo.PrevailingVisibility)
	assert.Nil(t, tempo.Weather)
	require.NotNil(t, tempo.Cloud)
	assert.Empty(t, tempo.Cloud.Layers)
}

// A change group without visibility keeps the field unset and raises no
// issue; only a visibility with a unit and no value is MISSING_DATA.
func TestConvert_ChangeGroupWithoutVisibilityHasNoIssue(t *testing.T) {
	taf := minimalTAF()
	taf.ChangeGroups = []ChangeGroup{
		changeGroup("BECMG", 2, Forecast{Wind: knots(270, 15)}),
		changeGroup("TEMPO", 4, Forecast{Visibility: &Visibility{Unit: "m"}}),
	}

	res := Convert(taf)

	becmg := res.Report.ChangeForecasts[0]
	assert.Nil(t, becmg.PrevailingVisibility)
	assert.Empty(t, becmg.PrevailingVisibilityOperator)
	assert.Equal(t, []ConversionIssue{missingData("visibility value is missing")}, res.Issues)
}

func TestConvert_NonASCIIWeatherIsValidUTF8(t *testing.T) {
	taf := minimalTAF()
	taf.Forecast.Weather = &WeatherList{{Phenomena: []string{"日本"}}}

	res := Convert(taf)

	require.Len(t, res.Report.BaseForecast.Weather, 1)
	assert.Equal(t, WeatherCode{Code: "日本", Description: "日本"}, res.Report.BaseForecast.Weather[0])

	data, err := json.Marshal(res.Report.BaseForecast.Weather)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `\ufffd`)
	assert.Contains(t, string(data), "日本")
}

func TestConvert_RejectedChangeTypes(t *testing.T) {
	for _, keyword := range []string{"UNTIL", "AT", "", "BECOMING", "tempo"} {
		t.Run(keyword, func(t *testing.T) {
			taf := minimalTAF()
			taf.ChangeGroups = []ChangeGroup{
				changeGroup(keyword, 1, Forecast{Wind: knots(10, 50)}),
				changeGroup("TEMPO", 2, Forecast{}),
			}

			res := Convert(taf)

			require.Len(t, res.Issues, 1)
			assert.Equal(t, IssueSyntaxError, res.Issues[0].Kind)
			assert.Contains(t, res.Issues[0].Message, `"`+keyword+`"`)

			require.Len(t, res.Report.ChangeForecasts, 2)
			rejected := res.Report.ChangeForecasts[0]
			assert.Equal(t, ChangeRejected, rejected.Indicator)
			assert.Equal(t, keyword, rejected.RejectedChangeType)
			assert.Nil(t, rejected.ValidityStart)
			assert.Nil(t, rejected.SurfaceWind)

			// A rejected group never becomes the baseline.
			next := res.Report.ChangeForecasts[1].SurfaceWind
			assert.Equal(t, &Measure{Value: 200, UOM: UnitDegrees}, next.MeanWindDirection)
		})
	}
}

func TestConvert_UntilIssueMentionsKeyword(t *testing.T) {
	taf := minimalTAF()
	taf.ChangeGroups = []ChangeGroup{changeGroup("UNTIL", 1, Forecast{})}

	res := Convert(taf)

	require.Len(t, res.Issues, 1)
	assert.Equal(t, IssueSyntaxError, res.Issues[0].Kind)
	assert.True(t, strings.Contains(res.Issues[0].Message, "UNTIL"))
}

func TestConvert_BaseCAVOK(t *testing.T) {
	taf := minimalTAF()
	taf.Forecast = &Forecast{
		CaVOK:   boolPtr(true),
		Wind:    knots(200, 10),
		Weather: &WeatherList{{Phenomena: []string{"RA"}}},
	}

	res := Convert(taf)

	base := res.Report.BaseForecast
	require.NotNil(t, base.CAVOK)
	assert.True(t, *base.CAVOK)
	assert.Nil(t, base.Weather, "weather is not converted under CAVOK")
	assert.Nil(t, base.PrevailingVisibility)
	assert.Empty(t, res.Issues)
}

func TestConvert_BaseCAVOKOnly(t *testing.T) {
	taf := minimalTAF()
	taf.Forecast = &Forecast{CaVOK: boolPtr(true)}

	res := Convert(taf)

	base := res.Report.BaseForecast
	require.NotNil(t, base.CAVOK)
	assert.True(t, *base.CAVOK)
	assert.Nil(t, base.Weather)
	assert.Nil(t, base.SurfaceWind)
	assert.Equal(t, []ConversionIssue{missingData("surface wind is missing")}, res.Issues)
}

func TestConvert_ChangeGroupCAVOKSkipsFields(t *testing.T) {
	taf := minimalTAF()
	taf.ChangeGroups = []ChangeGroup{
		changeGroup("BECMG", 1, Forecast{
			CaVOK:      boolPtr(true),
			Wind:       knots(120, 8),
			Visibility: &Visibility{},
		}),
		changeGroup("TEMPO", 2, Forecast{}),
	}

	res := Convert(taf)

	assert.Empty(t, res.Issues, "fields of a CAVOK group are not inspected")
	becmg := res.Report.ChangeForecasts[0]
	assert.Nil(t, becmg.SurfaceWind)
	assert.Nil(t, becmg.Cloud)

	// The wind of a CAVOK BECMG group still carries forward.
	tempo := res.Report.ChangeForecasts[1]
	assert.Equal(t, &Measure{Value: 120, UOM: UnitDegrees}, tempo.SurfaceWind.MeanWindDirection)
}

func TestConvert_MissingChangeStart(t *testing.T) {
	taf := minimalTAF()
	taf.ChangeGroups = []ChangeGroup{{ChangeType: "TEMPO"}}

	res := Convert(taf)

	require.Len(t, res.Issues, 1)
	assert.Equal(t, IssueMissingData, res.Issues[0].Kind)
	assert.Nil(t, res.Report.ChangeForecasts[0].ValidityStart)
}

// SKC sets the layer amount in the base forecast only; change-group layers
// leave it empty.
func TestConvert_SKCAmountOnlyInBaseForecast(t *testing.T) {
	taf := minimalTAF()
	taf.Forecast.Clouds = &CloudList{{Amount: "SKC"}}
	taf.ChangeGroups = []ChangeGroup{
		changeGroup("BECMG", 1, Forecast{Clouds: &CloudList{{Amount: "SKC"}}}),
	}

	res := Convert(taf)

	assert.Empty(t, res.Issues)
	require.Len(t, res.Report.BaseForecast.Cloud.Layers, 1)
	assert.Equal(t, CloudAmountSKC, res.Report.BaseForecast.Cloud.Layers[0].Amount)

	change := res.Report.ChangeForecasts[0].Cloud
	require.Len(t, change.Layers, 1)
	assert.Empty(t, change.Layers[0].Amount)
}

func TestConvert_StatusMapping(t *testing.T) {
	tests := []struct {
		typ  MessageType
		want Status
	}{
		{MessageNormal, StatusNormal},
		{"", StatusNormal},
		{"unknown", StatusNormal},
		{MessageAmendment, StatusAmendment},
		{MessageCorrection, StatusCorrection},
		{MessageMissing, StatusMissing},
		{MessageRetarded, StatusMissing},
		// canceled has always resolved to MISSING, not CANCELLATION.
		{MessageCanceled, StatusMissing},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			taf := minimalTAF()
			taf.Metadata.Type = tt.typ

			res := Convert(taf)

			assert.Equal(t, tt.want, res.Report.Status)
			assert.Equal(t, PermissibleUsageNonOperational, res.Report.PermissibleUsage)
			assert.Equal(t, PermissibleUsageReasonTest, res.Report.PermissibleUsageReason)
		})
	}
}

func TestConvert_Idempotent(t *testing.T) {
	taf := loadFixture(t)
	taf.ChangeGroups = append(taf.ChangeGroups,
		changeGroup("UNTIL", 20, Forecast{}),
		changeGroup("TEMPO", 21, Forecast{Wind: &Wind{Direction: "XYZ"}}),
	)

	first := Convert(taf)
	second := Convert(taf)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("conversion is not idempotent (-first +second):\n%s", diff)
	}

	b1, err := json.Marshal(first)
	require.NoError(t, err)
	b2, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}

func TestConvert_DoesNotMutateInput(t *testing.T) {
	taf := minimalTAF()
	taf.ChangeGroups = []ChangeGroup{
		changeGroup("BECMG", 1, Forecast{Wind: knots(270, 15)}),
		changeGroup("FM", 2, Forecast{Wind: knots(300, 25)}),
	}

	_ = Convert(taf)

	assert.Equal(t, WindDirection("200"), taf.Forecast.Wind.Direction)
	assert.Equal(t, 10, *taf.Forecast.Wind.Speed)
}

func TestConvert_ConcurrentCallsAreIndependent(t *testing.T) {
	taf := loadFixture(t)
	want := Convert(taf)

	done := make(chan Result, 8)
	for range 8 {
		go func() { done <- Convert(taf) }()
	}
	for range 8 {
		got := <-done
		assert.Empty(t, cmp.Diff(want, got))
	}
}
