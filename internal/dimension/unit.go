package dimension

import (
	"fmt"
	"strings"
)

// Unit identifies the length unit a measurement was printed in.
type Unit int

const (
	Meter Unit = iota
	Foot
	Inch
)

// Units lists the supported units in scan order.
var Units = []Unit{Meter, Foot, Inch}

const (
	metersPerFoot = 0.3048
	metersPerInch = 0.0254

	// SquareFeetPerSquareMeter converts m² to ft².
	SquareFeetPerSquareMeter = 10.7639
)

// ToMeters returns the number of meters in one unit.
func (u Unit) ToMeters() float64 {
	switch u {
	case Foot:
		return metersPerFoot
	case Inch:
		return metersPerInch
	default:
		return 1.0
	}
}

// String returns the short unit symbol used in reports ("m", "ft", "in").
func (u Unit) String() string {
	switch u {
	case Meter:
		return "m"
	case Foot:
		return "ft"
	case Inch:
		return "in"
	default:
		return fmt.Sprintf("unit(%d)", int(u))
	}
}

// MarshalText encodes the unit as its symbol.
func (u Unit) MarshalText() ([]byte, error) {
	if !u.valid() {
		return nil, fmt.Errorf("invalid unit %d", int(u))
	}
	return []byte(u.String()), nil
}

// UnmarshalText decodes a unit symbol or name.
func (u *Unit) UnmarshalText(b []byte) error {
	parsed, err := ParseUnit(string(b))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

func (u Unit) valid() bool {
	return u >= Meter && u <= Inch
}

// ParseUnit accepts a unit symbol or name in any case, e.g. "m", "Feet", "in".
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "meter", "meters", "metre", "metres":
		return Meter, nil
	case "ft", "foot", "feet", "'":
		return Foot, nil
	case "in", "inch", "inches", `"`:
		return Inch, nil
	}
	return 0, fmt.Errorf("unknown unit %q", s)
}

// SquareFeet converts an area in square meters to square feet.
func SquareFeet(sqm float64) float64 {
	return sqm * SquareFeetPerSquareMeter
}

// Feet converts a length in meters to feet.
func Feet(m float64) float64 {
	return m / Foot.ToMeters()
}
