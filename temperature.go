package clevertouch

import (
	"errors"
	"fmt"
	"math"
)

// TempUnit identifies a temperature unit understood by the library.
type TempUnit string

const (
	// UnitDevice is the vendor's internal integer representation: tenths
	// of a degree Fahrenheit.
	UnitDevice     TempUnit = "device"
	UnitCelsius    TempUnit = "celsius"
	UnitFahrenheit TempUnit = "fahrenheit"
)

// ErrInvalidUnit is returned for unit tags the library does not recognize.
var ErrInvalidUnit = errors.New("unknown temperature unit")

// Temperature is an immutable temperature reading or setpoint. The value is
// normalized once, at construction, to the vendor's integer device unit, so
// round-trips through other units are lossy at that integer boundary. The
// zero value models "no reading": every projection reports absent.
type Temperature struct {
	name     TempType
	writable bool
	valid    bool
	device   int
}

// NewTemperature builds a temperature from a value in the given unit.
func NewTemperature(value float64, unit TempUnit) (Temperature, error) {
	return newTemperature(value, unit, TypeNone, false)
}

func newTemperature(value float64, unit TempUnit, name TempType, writable bool) (Temperature, error) {
	var device int
	switch unit {
	case UnitCelsius:
		device = int(math.Round(18*value + 320))
	case UnitFahrenheit:
		device = int(math.Round(10 * value))
	case UnitDevice:
		device = int(math.Round(value))
	default:
		return Temperature{}, fmt.Errorf("%w: %q", ErrInvalidUnit, unit)
	}
	return Temperature{name: name, writable: writable, valid: true, device: device}, nil
}

// noTemperature models a missing reading under a semantic name.
func noTemperature(name TempType) Temperature {
	return Temperature{name: name}
}

// named returns a copy carrying a different semantic name and writability.
// The value itself is untouched.
func (t Temperature) named(name TempType, writable bool) Temperature {
	t.name = name
	t.writable = writable
	return t
}

// Name returns the semantic temperature type this value belongs to.
func (t Temperature) Name() TempType { return t.name }

// Writable reports whether the value may be written back to the device.
func (t Temperature) Writable() bool { return t.writable }

// Valid reports whether the temperature holds a reading at all.
func (t Temperature) Valid() bool { return t.valid }

// Device returns the value in vendor device units.
func (t Temperature) Device() (int, bool) {
	if !t.valid {
		return 0, false
	}
	return t.device, true
}

func (t Temperature) Celsius() (float64, bool) {
	if !t.valid {
		return 0, false
	}
	return (float64(t.device) - 320) / 18, true
}

func (t Temperature) Fahrenheit() (float64, bool) {
	if !t.valid {
		return 0, false
	}
	return float64(t.device) / 10, true
}

// AsUnit projects the value into the requested unit.
func (t Temperature) AsUnit(unit TempUnit) (float64, bool, error) {
	switch unit {
	case UnitCelsius:
		v, ok := t.Celsius()
		return v, ok, nil
	case UnitFahrenheit:
		v, ok := t.Fahrenheit()
		return v, ok, nil
	case UnitDevice:
		v, ok := t.Device()
		return float64(v), ok, nil
	}
	return 0, false, fmt.Errorf("%w: %q", ErrInvalidUnit, unit)
}

// ConvertTemperature converts a value between two units by routing through
// the device-unit normalization, so rounding happens exactly once.
func ConvertTemperature(value float64, from, to TempUnit) (float64, error) {
	t, err := NewTemperature(value, from)
	if err != nil {
		return 0, err
	}
	v, _, err := t.AsUnit(to)
	return v, err
}
