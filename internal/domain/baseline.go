package domain

// baseline is the running "current forecast" while change groups are
// converted. BECMG and FM groups carry their wind forward; visibility, cloud
// and weather are not inherited. It is a value: apply returns a new baseline
// and never touches the input aggregate.
type baseline struct {
	forecast Forecast
}

func newBaseline(base Forecast) baseline {
	base.Wind = cloneWind(base.Wind)
	return baseline{forecast: base}
}

// apply returns the baseline after a baseline-mutating change group.
func (b baseline) apply(change Forecast) baseline {
	if change.Wind != nil {
		b.forecast.Wind = cloneWind(change.Wind)
	}
	return b
}

// wind is the fallback for change groups that do not specify their own.
func (b baseline) wind() *Wind {
	return b.forecast.Wind
}

func cloneWind(w *Wind) *Wind {
	if w == nil {
		return nil
	}
	out := *w
	out.Speed = cloneInt(w.Speed)
	out.Gusts = cloneInt(w.Gusts)
	return &out
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
