package units

// Speed conversions between the supported wind-speed units.
// Factors match the upstream API's own rounding conventions.

func MphToKph(mph float64) float64 { return mph * 1.60934 }

func KphToMph(kph float64) float64 { return kph / 1.60934 }

func MphToMps(mph float64) float64 { return mph / 2.23694 }

func MpsToMph(ms float64) float64 { return ms * 2.23694 }

func MphToKnots(mph float64) float64 { return mph / 1.15078 }

func KnotsToMph(kn float64) float64 { return kn * 1.15078 }

// SpeedToMph normalizes a wind speed in the given unit (by wire name) to mph.
// An unknown unit is passed through unchanged.
func SpeedToMph(speed float64, wire string) float64 {
	switch wire {
	case Kph.Wire:
		return KphToMph(speed)
	case Mps.Wire:
		return MpsToMph(speed)
	case Knots.Wire:
		return KnotsToMph(speed)
	default:
		return speed
	}
}

var compassPoints = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// CompassPoint converts wind direction in degrees to a 16-point heading.
func CompassPoint(deg int) string {
	idx := int(float64(deg)/22.5+0.5) % 16
	return compassPoints[idx]
}

// BeaufortDescription names the Beaufort force band for a wind speed given
// in the unit identified by wire name.
func BeaufortDescription(speed float64, wire string) string {
	mph := SpeedToMph(speed, wire)
	switch {
	case mph < 1:
		return "Calm"
	case mph < 4:
		return "Light air"
	case mph < 8:
		return "Light breeze"
	case mph < 13:
		return "Gentle breeze"
	case mph < 19:
		return "Moderate breeze"
	case mph < 25:
		return "Fresh breeze"
	case mph < 32:
		return "Strong breeze"
	case mph < 39:
		return "Near gale"
	case mph < 47:
		return "Gale"
	case mph < 55:
		return "Strong gale"
	case mph < 64:
		return "Whole gale"
	case mph < 75:
		return "Storm force"
	default:
		return "Hurricane force"
	}
}
