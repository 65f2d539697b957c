package weather

import (
	"math"
	"time"
)

// Offline reconstruction: given a cached forecast, answer "what is quantity Q
// at instant T" by locating the bracketing hourly samples and interpolating
// linearly between them. Queries outside the cached horizon are unanswerable
// and return ok == false; "no data" is never conflated with a zero value.

type bracket struct {
	lo, hi   int
	fraction float64
}

// locateBracket finds the adjacent samples straddling t. The interval is
// half-open on the right except at the very last sample, which closes it.
// Series shorter than two samples cannot bracket anything.
func locateBracket(hours []time.Time, t time.Time) (bracket, bool) {
	if len(hours) < 2 {
		return bracket{}, false
	}
	if t.Before(hours[0]) || t.After(hours[len(hours)-1]) {
		return bracket{}, false
	}

	lo, hi := -1, -1
	for i := 0; i < len(hours)-1; i++ {
		if !t.Before(hours[i]) && t.Before(hours[i+1]) {
			lo, hi = i, i+1
			break
		}
	}
	if lo < 0 {
		if !t.Equal(hours[len(hours)-1]) {
			return bracket{}, false
		}
		lo, hi = len(hours)-2, len(hours)-1
	}

	// Whole-minute resolution, matching the hourly cadence of the source data.
	total := int64(hours[hi].Sub(hours[lo]) / time.Minute)
	if total == 0 {
		return bracket{}, false
	}
	elapsed := int64(t.Sub(hours[lo]) / time.Minute)

	return bracket{lo: lo, hi: hi, fraction: float64(elapsed) / float64(total)}, true
}

func lerp(a, b, fraction float64) float64 {
	return a + (b-a)*fraction
}

// round1 keeps one decimal place, the display precision for temperature-like
// and speed-like quantities.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func (f *WeatherForecast) interpolate(values []float64, t time.Time) (float64, bool) {
	br, ok := locateBracket(f.Hourly.Time, t)
	if !ok || len(values) != f.Hourly.Len() {
		return 0, false
	}
	return lerp(values[br.lo], values[br.hi], br.fraction), true
}

func (f *WeatherForecast) interpolateInts(values []int, t time.Time) (float64, bool) {
	br, ok := locateBracket(f.Hourly.Time, t)
	if !ok || len(values) != f.Hourly.Len() {
		return 0, false
	}
	return lerp(float64(values[br.lo]), float64(values[br.hi]), br.fraction), true
}

// TemperatureAt linearly interpolates the hourly temperature at t,
// rounded to one decimal place.
func (f *WeatherForecast) TemperatureAt(t time.Time) (float64, bool) {
	v, ok := f.interpolate(f.Hourly.Temperature, t)
	if !ok {
		return 0, false
	}
	return round1(v), true
}

// DewPointAt linearly interpolates the hourly dew point at t,
// rounded to one decimal place.
func (f *WeatherForecast) DewPointAt(t time.Time) (float64, bool) {
	v, ok := f.interpolate(f.Hourly.DewPoint, t)
	if !ok {
		return 0, false
	}
	return round1(v), true
}

// ApparentTemperatureAt linearly interpolates the hourly apparent
// temperature at t, rounded to one decimal place.
func (f *WeatherForecast) ApparentTemperatureAt(t time.Time) (float64, bool) {
	v, ok := f.interpolate(f.Hourly.ApparentTemperature, t)
	if !ok {
		return 0, false
	}
	return round1(v), true
}

// RelativeHumidityAt linearly interpolates the hourly relative humidity at t,
// rounded to the nearest whole percent.
func (f *WeatherForecast) RelativeHumidityAt(t time.Time) (int, bool) {
	v, ok := f.interpolateInts(f.Hourly.RelativeHumidity, t)
	if !ok {
		return 0, false
	}
	return int(math.Round(v)), true
}

// WindSpeedAt linearly interpolates the hourly wind speed at t,
// rounded to one decimal place.
func (f *WeatherForecast) WindSpeedAt(t time.Time) (float64, bool) {
	v, ok := f.interpolate(f.Hourly.WindSpeed, t)
	if !ok {
		return 0, false
	}
	return round1(v), true
}

// PrecipitationProbabilityAt linearly interpolates the hourly precipitation
// probability at t, rounded to the nearest whole percent.
func (f *WeatherForecast) PrecipitationProbabilityAt(t time.Time) (int, bool) {
	v, ok := f.interpolateInts(f.Hourly.PrecipitationProbability, t)
	if !ok {
		return 0, false
	}
	return int(math.Round(v)), true
}

// WindDirectionAt linearly interpolates the hourly wind direction at t,
// rounded to the nearest degree.
func (f *WeatherForecast) WindDirectionAt(t time.Time) (int, bool) {
	v, ok := f.interpolateInts(f.Hourly.WindDirection, t)
	if !ok {
		return 0, false
	}
	return int(math.Round(v)), true
}

// WeatherCodeAt returns the condition code in effect at t. Codes are
// categorical, so the value holds from one sample up to (but not including)
// the next: a left-continuous step, never an interpolated code.
func (f *WeatherForecast) WeatherCodeAt(t time.Time) (int, bool) {
	br, ok := locateBracket(f.Hourly.Time, t)
	if !ok || len(f.Hourly.WeatherCode) != f.Hourly.Len() {
		return 0, false
	}
	return f.Hourly.WeatherCode[br.lo], true
}

// DayOn returns the daily entry whose calendar date contains t.
// A date outside the cached horizon is absent, never clamped.
func (f *WeatherForecast) DayOn(t time.Time) (DayForecast, bool) {
	for i, d := range f.Daily.Date {
		if sameDate(d, t) {
			return f.Day(i)
		}
	}
	return DayForecast{}, false
}

// DaysFrom returns the remaining daily horizon starting at t's date,
// or nil when t's date is not in the horizon.
func (f *WeatherForecast) DaysFrom(t time.Time) []DayForecast {
	start := -1
	for i, d := range f.Daily.Date {
		if sameDate(d, t) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}
	out := make([]DayForecast, 0, f.Daily.Len()-start)
	for i := start; i < f.Daily.Len(); i++ {
		day, _ := f.Day(i)
		out = append(out, day)
	}
	return out
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
