package clevertouch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"clevertouch/api"
)

// Home is a refreshable representation of a home and its devices.
type Home struct {
	session *api.Session
	logger  *slog.Logger

	ID      string
	Info    *HomeInfo
	Devices map[string]Device
}

func newHome(session *api.Session, logger *slog.Logger, homeID string) *Home {
	return &Home{
		session: session,
		logger:  logger,
		ID:      homeID,
		Info:    newHomeInfo(homeID),
		Devices: map[string]Device{},
	}
}

// Refresh pulls the home state from the cloud API. Devices are created on
// first sight and updated in place afterwards, so device references held by
// callers stay valid across refreshes.
func (h *Home) Refresh(ctx context.Context) error {
	data, err := h.session.ReadHomeData(ctx, h.ID)
	if err != nil {
		return err
	}

	var rec homeRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("%w: home data: %v", api.ErrMalformed, err)
	}
	return h.update(&rec)
}

func (h *Home) update(rec *homeRecord) error {
	if err := h.Info.update(rec); err != nil {
		return err
	}

	for i := range rec.Devices {
		// Each device gets its own record, never the whole home payload.
		deviceRec := &rec.Devices[i]
		if deviceRec.ID == "" {
			return fmt.Errorf("%w: device record without id", api.ErrMalformed)
		}

		if device, ok := h.Devices[deviceRec.ID]; ok {
			if err := device.update(deviceRec); err != nil {
				return err
			}
			continue
		}

		device, err := newDevice(h.session, h.Info, deviceRec)
		if err != nil {
			return err
		}
		h.Devices[deviceRec.ID] = device
	}

	h.logger.Debug("home refreshed", "home_id", h.ID, "devices", len(h.Devices))
	return nil
}
