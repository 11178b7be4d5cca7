package clevertouch

import (
	"context"
	"fmt"
	"strconv"

	"clevertouch/api"
)

// Radiator models a radiator with heat modes, named setpoints and boost
// control.
//
// Commands validate against the mode tables before any network call and,
// once the write is accepted, update the local state optimistically with
// the assumed post-write value. The server may still clamp or reject the
// value on its side; (*Home).Refresh is the source of truth.
type Radiator struct {
	baseDevice

	active         bool
	heatMode       HeatMode
	tempType       TempType
	boostTime      int
	boostRemaining *int
	temperatures   map[TempType]Temperature
}

func newRadiator(session *api.Session, home *HomeInfo, rec *deviceRecord) (*Radiator, error) {
	r := &Radiator{
		baseDevice:   newBaseDevice(session, home, DeviceTypeRadiator, rec),
		heatMode:     ModeOff,
		tempType:     TypeNone,
		temperatures: map[TempType]Temperature{},
	}
	if err := r.update(rec); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Radiator) update(rec *deviceRecord) error {
	if err := r.baseDevice.update(rec); err != nil {
		return err
	}

	info, err := lookupMode(rec.GvMode)
	if err != nil {
		return fmt.Errorf("radiator %s: %w", r.id, err)
	}

	temps := make(map[TempType]Temperature, len(availableTempTypes)+1)
	for _, name := range availableTempTypes {
		field := tempTypeToField[name]
		value, ok := rec.temperatureField(field)
		if !ok {
			return fmt.Errorf("radiator %s: missing field %q", r.id, field)
		}
		temp, err := newTemperature(float64(value), UnitDevice, name, !readOnlyTempTypes[name])
		if err != nil {
			return err
		}
		temps[name] = temp
	}

	// The target temperature is always derived: it mirrors the setpoint
	// the current temp type names, or is absent when there is none.
	if info.tempType == TypeNone {
		temps[TypeTarget] = noTemperature(TypeTarget)
	} else {
		temps[TypeTarget] = temps[info.tempType].named(TypeTarget, false)
	}

	r.active = rec.HeatingUp == "1"
	r.heatMode = info.heatMode
	r.tempType = info.tempType
	r.temperatures = temps

	boostTime, _ := rec.TimeBoost.Int()
	r.boostTime = boostTime

	if rec.BoostChrono != nil {
		seconds := rec.BoostChrono.seconds()
		r.boostRemaining = &seconds
	} else {
		r.boostRemaining = nil
	}
	return nil
}

// Modes lists the heat modes a client may activate.
func (r *Radiator) Modes() []HeatMode {
	modes := make([]HeatMode, len(availableHeatModes))
	copy(modes, availableHeatModes)
	return modes
}

// Active reports whether the radiator is currently heating.
func (r *Radiator) Active() bool { return r.active }

// HeatMode returns the current operating mode.
func (r *Radiator) HeatMode() HeatMode { return r.heatMode }

// TempType returns the setpoint the radiator currently follows.
func (r *Radiator) TempType() TempType { return r.tempType }

// BoostTime returns the configured boost duration, in seconds.
func (r *Radiator) BoostTime() int { return r.boostTime }

// BoostRemaining returns the seconds left of an active boost. ok is false
// when the vendor omitted the fine-grained countdown, which is distinct
// from a countdown of zero.
func (r *Radiator) BoostRemaining() (int, bool) {
	if r.boostRemaining == nil {
		return 0, false
	}
	return *r.boostRemaining, true
}

// Temperature returns the named temperature reading or setpoint.
func (r *Radiator) Temperature(name TempType) (Temperature, bool) {
	t, ok := r.temperatures[name]
	return t, ok
}

// Temperatures returns a copy of all named temperatures.
func (r *Radiator) Temperatures() map[TempType]Temperature {
	temps := make(map[TempType]Temperature, len(r.temperatures))
	for name, t := range r.temperatures {
		temps[name] = t
	}
	return temps
}

// SetTemperature writes one of the radiator's setpoints.
func (r *Radiator) SetTemperature(ctx context.Context, name TempType, value float64, unit TempUnit) error {
	field, ok := tempTypeToField[name]
	if !ok {
		return fmt.Errorf("%w: temperature %q not available", ErrInvalidOperation, name)
	}
	if readOnlyTempTypes[name] {
		return fmt.Errorf("%w: temperature %q is read-only", ErrInvalidOperation, name)
	}

	temp, err := newTemperature(value, unit, name, true)
	if err != nil {
		return err
	}
	device, _ := temp.Device()

	query := map[string]string{
		"id_device": r.localID,
		field:       strconv.Itoa(device),
	}
	if err := r.session.WriteQuery(ctx, r.home.ID, query); err != nil {
		return err
	}

	r.temperatures[name] = temp
	// When the written setpoint is the one currently targeted, the derived
	// target must follow it.
	if name == r.tempType {
		r.temperatures[TypeTarget] = temp.named(TypeTarget, false)
	}
	return nil
}

// SetHeatMode switches the radiator's operating mode.
func (r *Radiator) SetHeatMode(ctx context.Context, mode HeatMode) error {
	code, err := encodeHeatMode(mode)
	if err != nil {
		return err
	}

	query := map[string]string{
		"id_device": r.localID,
		"gv_mode":   code,
		"nv_mode":   code,
	}
	if err := r.session.WriteQuery(ctx, r.home.ID, query); err != nil {
		return err
	}

	r.heatMode = mode
	return nil
}

// SetBoostTime sets the default boost duration, in seconds, for subsequent
// boost activations.
func (r *Radiator) SetBoostTime(ctx context.Context, seconds int) error {
	query := map[string]string{
		"id_device":  r.localID,
		"time_boost": strconv.Itoa(seconds),
	}
	if err := r.session.WriteQuery(ctx, r.home.ID, query); err != nil {
		return err
	}

	r.boostTime = seconds
	return nil
}

// ActivateOptions carries the optional parameters of ActivateMode.
type ActivateOptions struct {
	// Temp adjusts the activated mode's setpoint; Unit must be set with it.
	Temp *float64
	Unit TempUnit
	// BoostTime sets the boost duration in seconds; boost mode only.
	BoostTime int
}

// ActivateMode switches the heating mode in a single write, optionally
// adjusting the mode's setpoint or the boost duration. All argument
// validation happens before the network call.
func (r *Radiator) ActivateMode(ctx context.Context, mode HeatMode, opts ActivateOptions) error {
	code, err := encodeHeatMode(mode)
	if err != nil {
		return err
	}
	if opts.Temp != nil && opts.Unit == "" {
		return fmt.Errorf("%w: unit must be set when a temperature is provided", ErrInvalidOperation)
	}
	writableType, hasWritable := heatModeToWritableTempType[mode]
	if opts.Temp != nil && !hasWritable {
		return fmt.Errorf("%w: temperature can not be set for %q", ErrInvalidOperation, mode)
	}
	if opts.BoostTime != 0 && mode != ModeBoost {
		return fmt.Errorf("%w: boost time can only be set for boost mode", ErrInvalidOperation)
	}

	query := map[string]string{
		"id_device": r.localID,
		"gv_mode":   code,
		"nv_mode":   code,
	}

	var newTemp Temperature
	if opts.Temp != nil {
		newTemp, err = newTemperature(*opts.Temp, opts.Unit, writableType, true)
		if err != nil {
			return err
		}
		device, _ := newTemp.Device()
		query[tempTypeToField[writableType]] = strconv.Itoa(device)
	}
	if opts.BoostTime != 0 {
		query["time_boost"] = strconv.Itoa(opts.BoostTime)
	}

	if err := r.session.WriteQuery(ctx, r.home.ID, query); err != nil {
		return err
	}

	r.heatMode = mode
	if opts.Temp != nil {
		r.temperatures[writableType] = newTemp
		r.temperatures[TypeTarget] = newTemp.named(TypeTarget, false)
	}
	if opts.BoostTime != 0 {
		r.boostTime = opts.BoostTime
		remaining := opts.BoostTime
		r.boostRemaining = &remaining
	}
	return nil
}
