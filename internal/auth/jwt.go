package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const RoleAdmin = "admin"

// Token types. A refresh token is only ever accepted by the refresh
// endpoint, an access token everywhere else.
const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

type Manager struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
}

// Claims identify the admin account a token was issued for. AuthTime is the
// moment the credentials were last proven and survives token refreshes.
// SessionID is shared by the access and refresh tokens of one sign-in.
type Claims struct {
	Role      string `json:"role"`
	Email     string `json:"email"`
	Type      string `json:"typ"`
	SessionID string `json:"sid"`
	AuthTime  int64  `json:"auth_time"`
	jwt.RegisteredClaims
}

func (c *Claims) AuthenticatedAt() time.Time {
	return time.Unix(c.AuthTime, 0)
}

func (m *Manager) newToken(typ, subject, email, sessionID string, authTime time.Time, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role:      RoleAdmin,
		Email:     email,
		Type:      typ,
		SessionID: sessionID,
		AuthTime:  authTime.Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    m.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.Secret)
}

func (m *Manager) NewAccessToken(subject, email, sessionID string, authTime time.Time) (string, error) {
	return m.newToken(TokenAccess, subject, email, sessionID, authTime, m.AccessTTL)
}

func (m *Manager) NewRefreshToken(subject, email, sessionID string, authTime time.Time) (string, error) {
	return m.newToken(TokenRefresh, subject, email, sessionID, authTime, m.RefreshTTL)
}

func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	}, jwt.WithIssuer(m.Issuer))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// ParseAccess parses tokenStr and rejects anything but an admin access token.
func (m *Manager) ParseAccess(tokenStr string) (*Claims, error) {
	return m.parseTyped(tokenStr, TokenAccess)
}

// ParseRefresh parses tokenStr and rejects anything but an admin refresh token.
func (m *Manager) ParseRefresh(tokenStr string) (*Claims, error) {
	return m.parseTyped(tokenStr, TokenRefresh)
}

func (m *Manager) parseTyped(tokenStr, typ string) (*Claims, error) {
	claims, err := m.Parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Role != RoleAdmin || claims.Type != typ {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

var ErrWrongTokenType = errors.New("wrong token type")

const (
	AccessCookie  = "ise_access"
	RefreshCookie = "ise_refresh"
)
