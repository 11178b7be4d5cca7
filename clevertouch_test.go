package clevertouch

// Shared fixtures for the device model tests: a canned vendor home payload
// and a test server speaking the token and API endpoints.

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"clevertouch/api"
)

const homePayloadTemplate = `{
  "smarthome_id": "home-1",
  "label": %q,
  "zones": [{"num_zone": "Z1", "zone_label": "Downstairs"}],
  "devices": [
    {"id": "dev-rad", "id_device": "C001", "label_interface": "Living room", "num_zone": "Z1",
     "gv_mode": %q, "heating_up": "1",
     "consigne_confort": "680", "consigne_eco": "630", "consigne_hg": "446",
     "consigne_manuel": "680", "consigne_boost": "700", "temperature_air": "655",
     "time_boost": "7200"%s},
    {"id": "dev-light", "id_device": "E001", "label_interface": "Hall light", "num_zone": "Z1", "on_off": "1"},
    {"id": "dev-out", "id_device": "O001", "label_interface": "Desk outlet", "num_zone": "Z1", "on_off": "0"},
    {"id": "dev-mystery", "id_device": "Z999", "label_interface": "Mystery", "num_zone": "Z1"}
  ]
}`

const chronoJSON = `, "time_boost_format_chrono": {"d": "0", "h": "1", "m": "30", "s": "10"}`

const userPayload = `{"user_id": "u1", "smarthomes": [{"smarthome_id": "home-1", "label": "Main house"}]}`

func homePayload(label, gvMode string, chrono bool) string {
	extra := ""
	if chrono {
		extra = chronoJSON
	}
	return fmt.Sprintf(homePayloadTemplate, label, gvMode, extra)
}

type testServer struct {
	*httptest.Server

	mu          sync.Mutex
	writes      []url.Values
	homeReads   int
	userReads   int
	tokenGrants int

	homeJSON string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{homeJSON: homePayload("Main house", "0", true)}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			ts.mu.Lock()
			ts.tokenGrants++
			ts.mu.Unlock()
			fmt.Fprint(w, `{"access_token": "test-access", "refresh_token": "test-refresh", "expires_in": 3600}`)
		case "/api/v0.1/human/user/read/":
			ts.mu.Lock()
			ts.userReads++
			ts.mu.Unlock()
			fmt.Fprint(w, `{"code": {"code": "1", "key": "OK", "value": "success"}, "data": `+userPayload+`, "parameters": {}}`)
		case "/api/v0.1/human/smarthome/read/":
			ts.mu.Lock()
			ts.homeReads++
			home := ts.homeJSON
			ts.mu.Unlock()
			fmt.Fprint(w, `{"code": {"code": "1", "key": "OK", "value": "success"}, "data": `+home+`, "parameters": {}}`)
		case "/api/v0.1/human/query/push/":
			r.ParseForm()
			ts.mu.Lock()
			ts.writes = append(ts.writes, r.PostForm)
			ts.mu.Unlock()
			fmt.Fprint(w, `{"code": {"code": "8", "key": "OK_SET", "value": "accepted"}, "data": {}, "parameters": {}}`)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Server.Close)
	return ts
}

func (ts *testServer) session() *api.Session {
	return api.NewSessionWithURLs(
		"user@example.com", "test-refresh", ts.URL+"/token", ts.URL+"/api/v0.1/",
	)
}

func (ts *testServer) setHomeJSON(payload string) {
	ts.mu.Lock()
	ts.homeJSON = payload
	ts.mu.Unlock()
}

func (ts *testServer) writeCount() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.writes)
}

func (ts *testServer) lastWrite(t *testing.T) url.Values {
	t.Helper()
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if len(ts.writes) == 0 {
		t.Fatal("no write query was issued")
	}
	return ts.writes[len(ts.writes)-1]
}

// buildHome constructs a Home from a canned payload without any network.
func buildHome(t *testing.T, session *api.Session, payload string) *Home {
	t.Helper()

	home := newHome(session, slog.Default(), "home-1")
	var rec homeRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		t.Fatalf("unmarshaling home payload: %v", err)
	}
	if err := home.update(&rec); err != nil {
		t.Fatalf("updating home: %v", err)
	}
	return home
}

func radiatorOf(t *testing.T, home *Home) *Radiator {
	t.Helper()
	radiator, ok := home.Devices["dev-rad"].(*Radiator)
	if !ok {
		t.Fatalf("dev-rad is %T, want *Radiator", home.Devices["dev-rad"])
	}
	return radiator
}
