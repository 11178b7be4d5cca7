package clevertouch

import (
	"context"
	"testing"
)

func TestAccountUserAndHomes(t *testing.T) {
	ts := newTestServer(t)
	account := NewAccountWithSession(ts.session())
	defer account.Close()
	ctx := context.Background()

	user, err := account.User(ctx)
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if user.UserID != "u1" {
		t.Errorf("user id: got %q, want u1", user.UserID)
	}
	info, ok := user.Homes["home-1"]
	if !ok {
		t.Fatal("home-1 missing from user homes")
	}
	if info.Label != "Main house" {
		t.Errorf("home label: got %q", info.Label)
	}

	homes, err := account.Homes(ctx)
	if err != nil {
		t.Fatalf("Homes: %v", err)
	}
	if len(homes) != 1 || homes[0].ID != "home-1" {
		t.Fatalf("homes: got %d entries", len(homes))
	}
	if len(homes[0].Devices) != 4 {
		t.Errorf("devices: got %d, want 4", len(homes[0].Devices))
	}

	ts.mu.Lock()
	userReads, homeReads, tokenGrants := ts.userReads, ts.homeReads, ts.tokenGrants
	ts.mu.Unlock()
	if userReads != 1 {
		t.Errorf("user reads: got %d, want 1", userReads)
	}
	if homeReads != 1 {
		t.Errorf("home reads: got %d, want 1", homeReads)
	}
	if tokenGrants != 1 {
		t.Errorf("token grants: got %d, want 1", tokenGrants)
	}
}

func TestAccountCachesUserAndHome(t *testing.T) {
	ts := newTestServer(t)
	account := NewAccountWithSession(ts.session())
	defer account.Close()
	ctx := context.Background()

	first, err := account.User(ctx)
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	second, err := account.User(ctx)
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if first != second {
		t.Error("User returned a new object on second call")
	}

	home1, err := account.Home(ctx, "home-1")
	if err != nil {
		t.Fatalf("Home: %v", err)
	}
	home2, err := account.Home(ctx, "home-1")
	if err != nil {
		t.Fatalf("Home: %v", err)
	}
	if home1 != home2 {
		t.Error("Home returned a new object on second call")
	}

	ts.mu.Lock()
	userReads, homeReads := ts.userReads, ts.homeReads
	ts.mu.Unlock()
	if userReads != 1 {
		t.Errorf("user reads: got %d, want 1", userReads)
	}
	if homeReads != 1 {
		t.Errorf("home reads: got %d, want 1", homeReads)
	}
}

func TestRefreshPreservesDeviceIdentity(t *testing.T) {
	ts := newTestServer(t)
	account := NewAccountWithSession(ts.session())
	defer account.Close()
	ctx := context.Background()

	home, err := account.Home(ctx, "home-1")
	if err != nil {
		t.Fatalf("Home: %v", err)
	}
	before := radiatorOf(t, home)
	if before.HeatMode() != ModeComfort {
		t.Fatalf("heat mode before refresh: got %s", before.HeatMode())
	}

	ts.setHomeJSON(homePayload("Renamed house", "3", true))
	if err := home.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	after := radiatorOf(t, home)
	if before != after {
		t.Error("radiator was replaced instead of updated in place")
	}
	if after.HeatMode() != ModeEco {
		t.Errorf("heat mode after refresh: got %s, want eco", after.HeatMode())
	}
	if home.Info.Label != "Renamed house" {
		t.Errorf("home label after refresh: got %q", home.Info.Label)
	}
}

func TestAccountUserWithoutEmail(t *testing.T) {
	account := NewAccount("", "")
	defer account.Close()

	if _, err := account.User(context.Background()); err == nil {
		t.Fatal("expected an error when no email is known")
	}
}
