package biometric

import "fmt"

// Unit of a stored or requested sample.
type Unit string

const (
	Meter          Unit = "m"
	Centimeter     Unit = "cm"
	Kilometer      Unit = "km"
	Mile           Unit = "mi"
	Kilogram       Unit = "kg"
	Pound          Unit = "lb"
	Count          Unit = "count"
	CountPerMinute Unit = "count/min"
	Kilocalorie    Unit = "kcal"
)

type dimension int

const (
	length dimension = iota + 1
	mass
	count
	frequency
	energy
)

type unitInfo struct {
	dim dimension
	// factor to the base unit of the dimension
	factor float64
}

var units = map[Unit]unitInfo{
	Meter:          {length, 1},
	Centimeter:     {length, 0.01},
	Kilometer:      {length, 1000},
	Mile:           {length, 1609.344},
	Kilogram:       {mass, 1},
	Pound:          {mass, 0.45359237},
	Count:          {count, 1},
	CountPerMinute: {frequency, 1},
	Kilocalorie:    {energy, 1},
}

// ParseUnit validates a unit name.
func ParseUnit(s string) (Unit, error) {
	u := Unit(s)
	if _, ok := units[u]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
	}
	return u, nil
}

// Convert converts v from one unit into another of the same dimension.
func Convert(v float64, from, to Unit) (float64, error) {
	if from == to {
		if _, ok := units[from]; !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, string(from))
		}
		return v, nil
	}
	f, ok := units[from]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, string(from))
	}
	t, ok := units[to]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, string(to))
	}
	if f.dim != t.dim {
		return 0, fmt.Errorf("%w: %s to %s", ErrIncompatibleUnit, from, to)
	}
	return v * f.factor / t.factor, nil
}
