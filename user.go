package clevertouch

import (
	"context"
	"encoding/json"
	"fmt"

	"clevertouch/api"
)

// User is a refreshable representation of the account user, including
// summaries of the homes attached to the account.
type User struct {
	session *api.Session

	UserID string
	Email  string
	Homes  map[string]*HomeInfo
}

func newUser(session *api.Session, email string) *User {
	return &User{session: session, Email: email, Homes: map[string]*HomeInfo{}}
}

// Refresh pulls the user data from the cloud API.
func (u *User) Refresh(ctx context.Context) error {
	data, err := u.session.ReadUserData(ctx)
	if err != nil {
		return err
	}

	var rec struct {
		UserID     string       `json:"user_id"`
		Smarthomes []homeRecord `json:"smarthomes"`
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("%w: user data: %v", api.ErrMalformed, err)
	}
	if rec.UserID == "" {
		return fmt.Errorf("%w: user data without user_id", api.ErrMalformed)
	}

	homes := make(map[string]*HomeInfo, len(rec.Smarthomes))
	for i := range rec.Smarthomes {
		info, err := newHomeInfoFromRecord(&rec.Smarthomes[i])
		if err != nil {
			return fmt.Errorf("%w: %v", api.ErrMalformed, err)
		}
		homes[info.ID] = info
	}

	u.UserID = rec.UserID
	u.Homes = homes
	return nil
}
