package clevertouch

import (
	"context"
	"log/slog"
	"sync"

	"clevertouch/api"
)

// Account is the entry point to the library. It owns the API session and
// caches the fetched user and homes by id; cached objects are refreshed on
// demand via their own Refresh methods, never implicitly.
type Account struct {
	session *api.Session
	logger  *slog.Logger

	mu    sync.Mutex
	email string
	user  *User
	homes map[string]*Home
}

// NewAccount creates an account against the default cloud host. Provide a
// stored refresh token to resume a previous session, or an empty token and
// call Authenticate with a password.
func NewAccount(email, refreshToken string) *Account {
	return NewAccountWithSession(api.NewSession(email, refreshToken))
}

// NewAccountWithSession wraps a preconfigured session, e.g. one with a
// custom host or transport.
func NewAccountWithSession(session *api.Session) *Account {
	return &Account{
		session: session,
		logger:  slog.Default(),
		email:   session.Email(),
		homes:   map[string]*Home{},
	}
}

func (a *Account) SetLogger(logger *slog.Logger) {
	a.logger = logger
	a.session.SetLogger(logger)
}

// Session exposes the underlying API session, e.g. to persist its refresh
// token between runs.
func (a *Account) Session() *api.Session { return a.session }

// Email returns the account email.
func (a *Account) Email() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.email != "" {
		return a.email
	}
	return a.session.Email()
}

// Authenticate performs a full credential exchange and stores the resulting
// token pair on the session.
func (a *Account) Authenticate(ctx context.Context, email, password string) error {
	if err := a.session.Authenticate(ctx, email, password); err != nil {
		return err
	}
	a.mu.Lock()
	a.email = email
	a.mu.Unlock()
	return nil
}

// Close releases the session's transport. Safe to call more than once.
func (a *Account) Close() {
	a.session.Close()
}

// User returns the account user, fetched from the cloud API on first
// access. Call (*User).Refresh to update it afterwards.
func (a *Account) User(ctx context.Context) (*User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.user != nil {
		return a.user, nil
	}

	email := a.email
	if email == "" {
		email = a.session.Email()
	}
	if email == "" {
		return nil, &api.AuthError{Reason: "no account email known"}
	}

	user := newUser(a.session, email)
	if err := user.Refresh(ctx); err != nil {
		return nil, err
	}
	a.user = user
	return user, nil
}

// Home returns the home with the given id, fetched on first access.
func (a *Account) Home(ctx context.Context, homeID string) (*Home, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if home, ok := a.homes[homeID]; ok {
		return home, nil
	}

	home := newHome(a.session, a.logger, homeID)
	if err := home.Refresh(ctx); err != nil {
		return nil, err
	}
	a.homes[homeID] = home
	return home, nil
}

// Homes fetches every home attached to the account.
func (a *Account) Homes(ctx context.Context) ([]*Home, error) {
	user, err := a.User(ctx)
	if err != nil {
		return nil, err
	}

	homes := make([]*Home, 0, len(user.Homes))
	for homeID := range user.Homes {
		home, err := a.Home(ctx, homeID)
		if err != nil {
			return nil, err
		}
		homes = append(homes, home)
	}
	return homes, nil
}
