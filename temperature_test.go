package clevertouch

import (
	"errors"
	"math"
	"testing"
)

func TestTemperatureFromCelsius(t *testing.T) {
	temp, err := NewTemperature(20, UnitCelsius)
	if err != nil {
		t.Fatalf("NewTemperature error: %v", err)
	}

	device, ok := temp.Device()
	if !ok || device != 680 {
		t.Errorf("device: got %d (%v), want 680", device, ok)
	}
	fahrenheit, ok := temp.Fahrenheit()
	if !ok || fahrenheit != 68 {
		t.Errorf("fahrenheit: got %v (%v), want 68", fahrenheit, ok)
	}
	celsius, ok := temp.Celsius()
	if !ok || celsius != 20 {
		t.Errorf("celsius: got %v (%v), want 20", celsius, ok)
	}
}

func TestConvertRoundTrip(t *testing.T) {
	// One device unit is 0.1 F, i.e. 1/18 C. Converting there and back
	// must stay within a single rounding step.
	cases := []struct {
		value float64
		unit  TempUnit
		step  float64
	}{
		{19.5, UnitCelsius, 1.0 / 18},
		{21.3, UnitCelsius, 1.0 / 18},
		{68.0, UnitFahrenheit, 0.1},
		{70.7, UnitFahrenheit, 0.1},
		{655, UnitDevice, 1},
	}

	units := []TempUnit{UnitDevice, UnitCelsius, UnitFahrenheit}
	for _, tc := range cases {
		for _, via := range units {
			there, err := ConvertTemperature(tc.value, tc.unit, via)
			if err != nil {
				t.Fatalf("convert %v %s -> %s: %v", tc.value, tc.unit, via, err)
			}
			back, err := ConvertTemperature(there, via, tc.unit)
			if err != nil {
				t.Fatalf("convert back %v %s -> %s: %v", there, via, tc.unit, err)
			}
			if math.Abs(back-tc.value) > tc.step {
				t.Errorf("round trip %v %s via %s: got %v, off by more than %v",
					tc.value, tc.unit, via, back, tc.step)
			}
		}
	}
}

func TestNoReading(t *testing.T) {
	temp := noTemperature(TypeTarget)

	if temp.Valid() {
		t.Error("no-reading temperature reports valid")
	}
	if _, ok := temp.Device(); ok {
		t.Error("device projection present")
	}
	if _, ok := temp.Celsius(); ok {
		t.Error("celsius projection present")
	}
	if _, ok := temp.Fahrenheit(); ok {
		t.Error("fahrenheit projection present")
	}
	if temp.Name() != TypeTarget {
		t.Errorf("name: got %s", temp.Name())
	}
}

func TestInvalidUnit(t *testing.T) {
	if _, err := NewTemperature(20, "kelvin"); !errors.Is(err, ErrInvalidUnit) {
		t.Errorf("construction: got %v, want ErrInvalidUnit", err)
	}

	temp, err := NewTemperature(20, UnitCelsius)
	if err != nil {
		t.Fatalf("NewTemperature error: %v", err)
	}
	if _, _, err := temp.AsUnit("kelvin"); !errors.Is(err, ErrInvalidUnit) {
		t.Errorf("projection: got %v, want ErrInvalidUnit", err)
	}

	if _, err := ConvertTemperature(20, UnitCelsius, "kelvin"); !errors.Is(err, ErrInvalidUnit) {
		t.Errorf("convert: got %v, want ErrInvalidUnit", err)
	}
}
