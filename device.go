// Package clevertouch is a client for the CleverTouch / E3 cloud service
// managing connected radiators, lights and outlets. An Account wraps an
// authenticated api.Session and translates the vendor's wire vocabulary
// into typed devices, modes and temperatures.
package clevertouch

import (
	"fmt"

	"clevertouch/api"
)

// DeviceType tags the device variants known to the library.
type DeviceType string

const (
	DeviceTypeRadiator DeviceType = "radiator"
	DeviceTypeLight    DeviceType = "light"
	DeviceTypeOutlet   DeviceType = "outlet"
	DeviceTypeUnknown  DeviceType = "unknown"
)

// Device is implemented by every device variant. Instances are created the
// first time a Home refresh sees their vendor id and updated in place on
// every refresh after that, so references stay valid.
type Device interface {
	// ID returns the stable vendor-assigned device id.
	ID() string
	// LocalID returns the home-local id used in write queries.
	LocalID() string
	Label() string
	Type() DeviceType
	// Zone looks the device's zone up by id in the owning home.
	Zone() (ZoneInfo, bool)

	update(rec *deviceRecord) error
}

// baseDevice carries the fields shared by all variants. The zone is held as
// an id into the owning home's zone map, never as an owned copy.
type baseDevice struct {
	session    *api.Session
	home       *HomeInfo
	deviceType DeviceType

	id      string
	localID string
	label   string
	zoneID  string
}

func newBaseDevice(session *api.Session, home *HomeInfo, deviceType DeviceType, rec *deviceRecord) baseDevice {
	return baseDevice{
		session:    session,
		home:       home,
		deviceType: deviceType,
		id:         rec.ID,
	}
}

func (d *baseDevice) ID() string       { return d.id }
func (d *baseDevice) LocalID() string  { return d.localID }
func (d *baseDevice) Label() string    { return d.label }
func (d *baseDevice) Type() DeviceType { return d.deviceType }

func (d *baseDevice) Zone() (ZoneInfo, bool) {
	zone, ok := d.home.Zones[d.zoneID]
	return zone, ok
}

func (d *baseDevice) update(rec *deviceRecord) error {
	if rec.ID != d.id {
		return fmt.Errorf("device record id %q does not match device %q", rec.ID, d.id)
	}
	d.localID = rec.IDDevice
	d.label = rec.LabelInterface
	d.zoneID = rec.NumZone
	return nil
}

// GenericDevice is the fallback for device classes the library does not
// recognize. It exposes identity and labels but offers no commands.
type GenericDevice struct {
	baseDevice
}

func newGenericDevice(session *api.Session, home *HomeInfo, rec *deviceRecord) (*GenericDevice, error) {
	d := &GenericDevice{baseDevice: newBaseDevice(session, home, DeviceTypeUnknown, rec)}
	if err := d.update(rec); err != nil {
		return nil, err
	}
	return d, nil
}
