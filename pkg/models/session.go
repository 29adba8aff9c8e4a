package models

import "time"

// Session represents a logged-in operator. The login flow is a display-name
// placeholder, not a security boundary; raw tokens are shown once at login
// and only the bcrypt hash is stored.
type Session struct {
	TokenPrefix string    `json:"token_prefix"`
	TokenHash   string    `json:"-"`
	UserName    string    `json:"user_name"`
	CreatedAt   time.Time `json:"created_at"`
}
