// Package units defines the measurement units the forecast engine speaks:
// the wire names sent to the upstream API and stored in preferences, and the
// display names shown to users.
package units

// Quantity groups units into families.
type Quantity int

const (
	Temperature Quantity = iota
	WindSpeed
	Precipitation
)

func (q Quantity) String() string {
	switch q {
	case Temperature:
		return "temperature"
	case WindSpeed:
		return "wind_speed"
	case Precipitation:
		return "precipitation"
	}
	return "unknown"
}

// Unit pairs a wire name with a display name.
// Wire names appear verbatim in upstream query parameters and in persisted
// preferences; the wire/display mapping is a bijection within each family.
type Unit struct {
	Quantity Quantity
	Wire     string
	Display  string
}

var (
	Fahrenheit = Unit{Temperature, "fahrenheit", "Fahrenheit"}
	Celsius    = Unit{Temperature, "celsius", "Celsius"}

	Mph   = Unit{WindSpeed, "mph", "mph"}
	Kph   = Unit{WindSpeed, "kmh", "km/h"}
	Knots = Unit{WindSpeed, "kn", "kn"}
	Mps   = Unit{WindSpeed, "ms", "m/s"}

	Inch       = Unit{Precipitation, "inch", "in"}
	Millimeter = Unit{Precipitation, "mm", "mm"}
)

// All enumerates every supported unit, in family order.
var All = []Unit{
	Fahrenheit, Celsius,
	Mph, Kph, Knots, Mps,
	Inch, Millimeter,
}

// Resolve returns the unit with the given wire name.
// Unknown input yields ok == false, never a panic.
func Resolve(wire string) (Unit, bool) {
	for _, u := range All {
		if u.Wire == wire {
			return u, true
		}
	}
	return Unit{}, false
}

// DisplayName maps a wire name to its display name, or "" when unknown.
func DisplayName(wire string) string {
	if u, ok := Resolve(wire); ok {
		return u.Display
	}
	return ""
}

// WireName maps a display name back to its wire name, or "" when unknown.
func WireName(display string) string {
	for _, u := range All {
		if u.Display == display {
			return u.Wire
		}
	}
	return ""
}

// ForQuantity lists the units of one family, for settings enumeration.
func ForQuantity(q Quantity) []Unit {
	var out []Unit
	for _, u := range All {
		if u.Quantity == q {
			out = append(out, u)
		}
	}
	return out
}
