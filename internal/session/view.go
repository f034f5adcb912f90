package session

import "github.com/parleychat/parley/internal/auth"

// UserView is the signed-in user as the UI sees it. Optional fields are nil
// when the auth backend did not supply them.
type UserView struct {
	ID           string  `json:"id"`
	Email        *string `json:"email"`
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	AppRole      *string `json:"app_role"`
	CreatedAt    string  `json:"created_at"`
	LastSignInAt string  `json:"last_sign_in_at"`
}

// AuthView pairs the user with a logged-in flag.
type AuthView struct {
	User       *UserView `json:"user"`
	IsLoggedIn bool      `json:"is_logged_in"`
}

// Project derives the AuthView for session. A nil session yields
// {nil, false}.
func Project(session *auth.Session) AuthView {
	if session == nil {
		return AuthView{}
	}

	u := session.User
	return AuthView{
		User: &UserView{
			ID:           u.ID,
			Email:        optional(u.Email),
			FirstName:    optional(metaString(u.UserMetadata, "first_name")),
			LastName:     optional(metaString(u.UserMetadata, "last_name")),
			AppRole:      optional(metaString(u.AppMetadata, "app_role")),
			CreatedAt:    u.CreatedAt,
			LastSignInAt: u.LastSignInAt,
		},
		IsLoggedIn: true,
	}
}

// DisplayName returns the best human-readable name for the user.
func (u *UserView) DisplayName() string {
	if u == nil {
		return ""
	}
	switch {
	case u.FirstName != nil && u.LastName != nil:
		return *u.FirstName + " " + *u.LastName
	case u.FirstName != nil:
		return *u.FirstName
	case u.Email != nil:
		return *u.Email
	}
	return u.ID
}

func metaString(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
