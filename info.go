package clevertouch

import "fmt"

// HomeInfo provides summary information about a home: its label and zones.
type HomeInfo struct {
	ID    string
	Label string
	Zones map[string]ZoneInfo
}

// ZoneInfo describes a zone within a home.
type ZoneInfo struct {
	ID    string
	Label string
}

func newHomeInfo(homeID string) *HomeInfo {
	return &HomeInfo{ID: homeID, Zones: map[string]ZoneInfo{}}
}

func newHomeInfoFromRecord(rec *homeRecord) (*HomeInfo, error) {
	if rec.SmarthomeID == "" {
		return nil, fmt.Errorf("home record without smarthome_id")
	}
	info := newHomeInfo(rec.SmarthomeID)
	if err := info.update(rec); err != nil {
		return nil, err
	}
	return info, nil
}

func (h *HomeInfo) update(rec *homeRecord) error {
	if rec.SmarthomeID != h.ID {
		return fmt.Errorf("home record id %q does not match home %q", rec.SmarthomeID, h.ID)
	}
	h.Label = rec.Label

	zones := make(map[string]ZoneInfo, len(rec.Zones))
	for _, z := range rec.Zones {
		zones[z.NumZone] = ZoneInfo{ID: z.NumZone, Label: z.ZoneLabel}
	}
	h.Zones = zones
	return nil
}
