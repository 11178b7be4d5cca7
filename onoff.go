package clevertouch

import (
	"context"

	"clevertouch/api"
)

// OnOffDevice models a device with a single on/off state and command.
type OnOffDevice struct {
	baseDevice
	on bool
}

func newOnOffDevice(session *api.Session, home *HomeInfo, deviceType DeviceType, rec *deviceRecord) (*OnOffDevice, error) {
	d := &OnOffDevice{baseDevice: newBaseDevice(session, home, deviceType, rec)}
	if err := d.update(rec); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *OnOffDevice) update(rec *deviceRecord) error {
	if err := d.baseDevice.update(rec); err != nil {
		return err
	}
	d.on = rec.OnOff == "1"
	return nil
}

// IsOn reports the last known on/off state.
func (d *OnOffDevice) IsOn() bool { return d.on }

// SetOnOff turns the device on or off. Setting the state the device already
// has issues no network call. The local state is updated optimistically
// once the write is accepted; refresh the home when certainty matters.
func (d *OnOffDevice) SetOnOff(ctx context.Context, on bool) error {
	if on == d.on {
		return nil
	}

	value := "0"
	if on {
		value = "1"
	}
	query := map[string]string{
		"id_device": d.localID,
		"on_off":    value,
	}
	if err := d.session.WriteQuery(ctx, d.home.ID, query); err != nil {
		return err
	}

	d.on = on
	return nil
}

// Light models a light.
type Light struct {
	OnOffDevice
}

func newLight(session *api.Session, home *HomeInfo, rec *deviceRecord) (*Light, error) {
	d, err := newOnOffDevice(session, home, DeviceTypeLight, rec)
	if err != nil {
		return nil, err
	}
	return &Light{OnOffDevice: *d}, nil
}

// Outlet models an outlet.
type Outlet struct {
	OnOffDevice
}

func newOutlet(session *api.Session, home *HomeInfo, rec *deviceRecord) (*Outlet, error) {
	d, err := newOnOffDevice(session, home, DeviceTypeOutlet, rec)
	if err != nil {
		return nil, err
	}
	return &Outlet{OnOffDevice: *d}, nil
}
