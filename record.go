package clevertouch

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Vendor payload records. The cloud API sends most numeric values as
// strings, occasionally as numbers, so the loosely typed fields go through
// wireInt.

type homeRecord struct {
	SmarthomeID string         `json:"smarthome_id"`
	Label       string         `json:"label"`
	Zones       []zoneRecord   `json:"zones"`
	Devices     []deviceRecord `json:"devices"`
}

type zoneRecord struct {
	NumZone   string `json:"num_zone"`
	ZoneLabel string `json:"zone_label"`
}

type deviceRecord struct {
	ID             string `json:"id"`
	IDDevice       string `json:"id_device"`
	LabelInterface string `json:"label_interface"`
	NumZone        string `json:"num_zone"`
	NvMode         string `json:"nv_mode"`
	GvMode         string `json:"gv_mode"`
	HeatingUp      string `json:"heating_up"`
	OnOff          string `json:"on_off"`

	TimeBoost   wireInt       `json:"time_boost"`
	BoostChrono *chronoRecord `json:"time_boost_format_chrono"`

	ConsigneConfort wireInt `json:"consigne_confort"`
	ConsigneEco     wireInt `json:"consigne_eco"`
	ConsigneHg      wireInt `json:"consigne_hg"`
	ConsigneManuel  wireInt `json:"consigne_manuel"`
	ConsigneBoost   wireInt `json:"consigne_boost"`
	TemperatureAir  wireInt `json:"temperature_air"`
}

// temperatureField returns the raw device-unit value stored under a vendor
// temperature field name.
func (r *deviceRecord) temperatureField(field string) (int, bool) {
	switch field {
	case "consigne_confort":
		return r.ConsigneConfort.Int()
	case "consigne_eco":
		return r.ConsigneEco.Int()
	case "consigne_hg":
		return r.ConsigneHg.Int()
	case "consigne_manuel":
		return r.ConsigneManuel.Int()
	case "consigne_boost":
		return r.ConsigneBoost.Int()
	case "temperature_air":
		return r.TemperatureAir.Int()
	}
	return 0, false
}

// chronoRecord is the fine-grained boost countdown breakdown. Each field
// defaults to zero when missing; the record being absent altogether means
// the countdown is unknown, which is distinct from zero.
type chronoRecord struct {
	D wireInt `json:"d"`
	H wireInt `json:"h"`
	M wireInt `json:"m"`
	S wireInt `json:"s"`
}

func (c *chronoRecord) seconds() int {
	d, _ := c.D.Int()
	h, _ := c.H.Int()
	m, _ := c.M.Int()
	s, _ := c.S.Int()
	return d*24*60*60 + h*60*60 + m*60 + s
}

// wireInt decodes the vendor's loosely typed numeric fields, which arrive
// as strings, numbers, empty strings or null.
type wireInt struct {
	value int
	set   bool
}

func (w *wireInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return fmt.Errorf("parsing %q as a number: %w", s, ferr)
		}
		n = int(math.Round(f))
	}
	w.value = n
	w.set = true
	return nil
}

// Int returns the decoded value and whether the field was present.
func (w wireInt) Int() (int, bool) {
	return w.value, w.set
}
