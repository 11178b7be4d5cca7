package clevertouch

import (
	"errors"
	"fmt"
)

// HeatMode is a semantic radiator operating mode.
type HeatMode string

const (
	ModeOff     HeatMode = "off"
	ModeFrost   HeatMode = "frost"
	ModeComfort HeatMode = "comfort"
	ModeProgram HeatMode = "program"
	ModeEco     HeatMode = "eco"
	ModeBoost   HeatMode = "boost"
)

// TempType names the setpoint or reading a radiator temperature refers to.
type TempType string

const (
	TypeNone    TempType = "none"
	TypeFrost   TempType = "frost"
	TypeEco     TempType = "eco"
	TypeComfort TempType = "comfort"
	TypeBoost   TempType = "boost"
	TypeCurrent TempType = "current"
	TypeTarget  TempType = "target"
	TypeManual  TempType = "manual"
)

// ErrUnknownMode is returned for vendor mode codes outside the decode table.
var ErrUnknownMode = errors.New("unknown device mode")

// ErrInvalidOperation is returned when a requested mode or temperature type
// is not permitted by the mode tables.
var ErrInvalidOperation = errors.New("invalid operation")

type modeInfo struct {
	heatMode HeatMode
	tempType TempType
}

// deviceToMode decodes the vendor's gv_mode code. The table is deliberately
// partial: fan modes and the manual/boost-program combinations have no
// defined semantics and must fail lookup instead of defaulting.
var deviceToMode = map[string]modeInfo{
	"0": {ModeComfort, TypeComfort},
	"1": {ModeOff, TypeNone},
	"2": {ModeComfort, TypeComfort},
	"3": {ModeEco, TypeEco},
	"4": {ModeBoost, TypeBoost},
	// "5": fan
	// "6": fan-disabled
	"8":  {ModeProgram, TypeComfort},
	"11": {ModeProgram, TypeEco},
	// "13": program, undefined temp type
	// "15": manual
	// "16": program with boost
}

// heatModeToDevice encodes the modes a client may set. It is intentionally
// smaller than the decode table's image would suggest: the asymmetry is the
// vendor's, not an oversight.
var heatModeToDevice = map[HeatMode]string{
	ModeEco:     "3",
	ModeFrost:   "2",
	ModeComfort: "0",
	ModeProgram: "11",
	ModeBoost:   "4",
	ModeOff:     "1",
}

// heatModeToWritableTempType maps each settable mode to the setpoint it
// follows. Modes without an entry (off, program) have no writable setpoint.
var heatModeToWritableTempType = map[HeatMode]TempType{
	ModeEco:     TypeEco,
	ModeFrost:   TypeFrost,
	ModeComfort: TypeComfort,
	ModeBoost:   TypeBoost,
}

// tempTypeToField maps semantic temperature types to vendor field names.
var tempTypeToField = map[TempType]string{
	TypeEco:     "consigne_eco",
	TypeFrost:   "consigne_hg",
	TypeComfort: "consigne_confort",
	TypeCurrent: "temperature_air",
	TypeManual:  "consigne_manuel",
	TypeBoost:   "consigne_boost",
}

// availableTempTypes lists the temperatures populated on every radiator
// update.
var availableTempTypes = []TempType{
	TypeEco,
	TypeFrost,
	TypeComfort,
	TypeCurrent,
	TypeBoost,
}

// readOnlyTempTypes are sensor or derived values a client must not write.
var readOnlyTempTypes = map[TempType]bool{
	TypeCurrent: true,
	TypeTarget:  true,
}

var availableHeatModes = []HeatMode{
	ModeComfort,
	ModeEco,
	ModeFrost,
	ModeProgram,
	ModeBoost,
	ModeOff,
}

// lookupMode decodes a vendor gv_mode code into its semantic mode pair.
func lookupMode(code string) (modeInfo, error) {
	info, ok := deviceToMode[code]
	if !ok {
		return modeInfo{}, fmt.Errorf("%w: gv_mode %q", ErrUnknownMode, code)
	}
	return info, nil
}

// encodeHeatMode returns the vendor code for a mode a client may set.
func encodeHeatMode(mode HeatMode) (string, error) {
	code, ok := heatModeToDevice[mode]
	if !ok {
		return "", fmt.Errorf("%w: heating mode %q not available", ErrInvalidOperation, mode)
	}
	return code, nil
}
