package clevertouch

import "clevertouch/api"

// Device type discriminators embedded as the first character of the
// home-local device id.
const (
	typeCharRadiator = 'C'
	typeCharLight    = 'E'
	typeCharOutlet   = 'O'
)

// Legacy numeric device class ids, used by payloads that predate typed id
// prefixes.
const (
	typeIDRadiator = "0"
	typeIDLight    = "1"
	typeIDOutlet   = "12"
)

// deviceTypeOf extracts the device type discriminator from a record. The
// typed id prefix is preferred; records without a local id fall back to the
// legacy numeric class field.
func deviceTypeOf(rec *deviceRecord) DeviceType {
	if rec.IDDevice != "" {
		switch rec.IDDevice[0] {
		case typeCharRadiator:
			return DeviceTypeRadiator
		case typeCharLight:
			return DeviceTypeLight
		case typeCharOutlet:
			return DeviceTypeOutlet
		}
		return DeviceTypeUnknown
	}

	switch rec.NvMode {
	case typeIDRadiator:
		return DeviceTypeRadiator
	case typeIDLight:
		return DeviceTypeLight
	case typeIDOutlet:
		return DeviceTypeOutlet
	}
	return DeviceTypeUnknown
}

// newDevice builds the device variant matching the record's discriminator.
// Unrecognized discriminators produce a GenericDevice tagged unknown, so
// new vendor device classes never break a refresh.
func newDevice(session *api.Session, home *HomeInfo, rec *deviceRecord) (Device, error) {
	switch deviceTypeOf(rec) {
	case DeviceTypeRadiator:
		return newRadiator(session, home, rec)
	case DeviceTypeLight:
		return newLight(session, home, rec)
	case DeviceTypeOutlet:
		return newOutlet(session, home, rec)
	default:
		return newGenericDevice(session, home, rec)
	}
}
