package identity

import (
	"time"
)

// Account is the single admin identity. Passwords are stored as bcrypt hashes.
type Account struct {
	ID                string    `bson:"_id" json:"id"`
	Email             string    `bson:"email" json:"email"`
	PasswordHash      string    `bson:"passwordHash" json:"-"`
	Disabled          bool      `bson:"disabled" json:"disabled"`
	CreatedAt         time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time `bson:"updatedAt" json:"updatedAt"`
	PasswordChangedAt time.Time `bson:"passwordChangedAt" json:"passwordChangedAt"`
}

// Session is the signed-in state carried by an access token.
type Session struct {
	AccountID       string    `json:"accountId"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	TokenID         string    `json:"-"`
	SessionID       string    `json:"-"`
	AuthenticatedAt time.Time `json:"authenticatedAt"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

type Tokens struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// SessionResponse is returned by login, refresh and password change. The
// tokens are also set as cookies; the JSON copy serves non-browser clients.
type SessionResponse struct {
	Session Session `json:"session"`
	Tokens  Tokens  `json:"tokens"`
}
