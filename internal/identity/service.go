package identity

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/Shravan4507/ise-elevators-website/internal/auth"
	"github.com/Shravan4507/ise-elevators-website/internal/cache"
	"github.com/Shravan4507/ise-elevators-website/internal/metrics"
	"github.com/Shravan4507/ise-elevators-website/internal/validation"
	"github.com/google/uuid"
)

type Options struct {
	MaxAttempts int
	Lockout     time.Duration
	// RecentLogin bounds how old a session may be to change the password.
	// Zero disables the age check.
	RecentLogin time.Duration
}

type Service struct {
	accounts Accounts
	tokens   *auth.Manager
	cache    cache.Cache
	opts     Options
	log      *slog.Logger
	now      func() time.Time
}

func NewService(accounts Accounts, tokens *auth.Manager, store cache.Cache, opts Options, log *slog.Logger) *Service {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.Lockout <= 0 {
		opts.Lockout = 15 * time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		accounts: accounts,
		tokens:   tokens,
		cache:    store,
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

func failKey(email string) string { return "login:fail:" + email }
func lockKey(email string) string { return "login:lock:" + email }
func revokedKey(id string) string { return "revoked:" + id }

func (s *Service) Login(ctx context.Context, email, password string) (Session, Tokens, error) {
	email = NormalizeEmail(email)
	if !validation.IsEmail(email) {
		return s.loginFailed(OpLogin, CodeInvalidEmail, nil)
	}

	if _, locked, err := s.cache.Get(ctx, lockKey(email)); err != nil {
		s.log.Warn("admin login: throttle lookup failed", slog.String("error", err.Error()))
	} else if locked {
		return s.loginFailed(OpLogin, CodeTooManyRequests, nil)
	}

	acc, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			s.recordFailure(ctx, email)
			return s.loginFailed(OpLogin, CodeUserNotFound, nil)
		}
		return s.loginFailed(OpLogin, CodeUnknown, err)
	}
	if acc.Disabled {
		return s.loginFailed(OpLogin, CodeDisabled, nil)
	}

	if err := auth.ComparePassword(acc.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) || password == "" {
			s.recordFailure(ctx, email)
			return s.loginFailed(OpLogin, CodeWrongPassword, nil)
		}
		return s.loginFailed(OpLogin, CodeUnknown, err)
	}

	if err := s.cache.Delete(ctx, failKey(email)); err != nil {
		s.log.Warn("admin login: throttle reset failed", slog.String("error", err.Error()))
	}

	session, tokens, err := s.issue(acc, s.now(), "")
	if err != nil {
		return s.loginFailed(OpLogin, CodeUnknown, err)
	}
	metrics.Login("ok")
	return session, tokens, nil
}

func (s *Service) loginFailed(op string, code Code, err error) (Session, Tokens, error) {
	if op == OpLogin {
		metrics.Login(string(code))
	}
	return Session{}, Tokens{}, sessionErr(op, code, err)
}

// recordFailure counts a failed attempt; reaching MaxAttempts locks the email
// for the lockout window.
func (s *Service) recordFailure(ctx context.Context, email string) {
	n, err := s.cache.Incr(ctx, failKey(email), s.opts.Lockout)
	if err != nil {
		s.log.Warn("admin login: throttle count failed", slog.String("error", err.Error()))
		return
	}
	if n >= int64(s.opts.MaxAttempts) {
		if err := s.cache.Set(ctx, lockKey(email), []byte("1"), s.opts.Lockout); err != nil {
			s.log.Warn("admin login: throttle lock failed", slog.String("error", err.Error()))
		}
	}
}

// issue signs a token pair for one session. An empty sessionID starts a new
// session.
func (s *Service) issue(acc Account, authTime time.Time, sessionID string) (Session, Tokens, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	access, err := s.tokens.NewAccessToken(acc.ID, acc.Email, sessionID, authTime)
	if err != nil {
		return Session{}, Tokens{}, err
	}
	refresh, err := s.tokens.NewRefreshToken(acc.ID, acc.Email, sessionID, authTime)
	if err != nil {
		return Session{}, Tokens{}, err
	}
	claims, err := s.tokens.Parse(access)
	if err != nil {
		return Session{}, Tokens{}, err
	}
	session := sessionFromClaims(claims)
	now := s.now()
	return session, Tokens{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  now.Add(s.tokens.AccessTTL),
		RefreshExpiresAt: now.Add(s.tokens.RefreshTTL),
	}, nil
}

func sessionFromClaims(c *auth.Claims) Session {
	s := Session{
		AccountID:       c.Subject,
		Email:           c.Email,
		Role:            c.Role,
		TokenID:         c.ID,
		SessionID:       c.SessionID,
		AuthenticatedAt: c.AuthenticatedAt(),
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s
}

// SessionFromClaims exposes the session of already verified claims.
func SessionFromClaims(c *auth.Claims) Session {
	return sessionFromClaims(c)
}

// Logout ends session: its access token and every token sharing its session
// id, refresh tokens included, stop being accepted.
func (s *Service) Logout(ctx context.Context, session Session) error {
	if err := s.revoke(ctx, session.TokenID, session.ExpiresAt); err != nil {
		return sessionErr(OpLogout, CodeUnknown, err)
	}
	if err := s.revokeSession(ctx, session.SessionID); err != nil {
		return sessionErr(OpLogout, CodeUnknown, err)
	}
	return nil
}

// RevokeToken revokes any token issued by this service. Invalid tokens are
// ignored since they cannot be used anyway.
func (s *Service) RevokeToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	if err := s.revoke(ctx, claims.ID, exp); err != nil {
		return err
	}
	return s.revokeSession(ctx, claims.SessionID)
}

func (s *Service) revoke(ctx context.Context, id string, exp time.Time) error {
	ttl := exp.Sub(s.now())
	if id == "" || ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, revokedKey(id), []byte("1"), ttl)
}

// revokeSession outlives every token of the session: none is issued with a
// lifetime longer than the refresh TTL.
func (s *Service) revokeSession(ctx context.Context, sessionID string) error {
	return s.revoke(ctx, sessionID, s.now().Add(s.tokens.RefreshTTL))
}

func (s *Service) claimsRevoked(ctx context.Context, c *auth.Claims) bool {
	return s.Revoked(ctx, c.ID) || (c.SessionID != "" && s.Revoked(ctx, c.SessionID))
}

// Revoked reports whether the token id was signed out. A failing cache counts
// as not revoked so a Redis outage does not lock the admin out.
func (s *Service) Revoked(ctx context.Context, tokenID string) bool {
	_, ok, err := s.cache.Get(ctx, revokedKey(tokenID))
	if err != nil {
		s.log.Warn("admin session: revocation lookup failed", slog.String("error", err.Error()))
		return false
	}
	return ok
}

// Current resolves the session of an access token, or nil when the token is
// missing, invalid, expired or revoked.
func (s *Service) Current(ctx context.Context, token string) *Session {
	if token == "" {
		return nil
	}
	claims, err := s.tokens.ParseAccess(token)
	if err != nil || s.claimsRevoked(ctx, claims) {
		return nil
	}
	session := sessionFromClaims(claims)
	return &session
}

// Refresh swaps a refresh token for a new pair. The authentication time is
// carried over so refreshing never counts as a recent login.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, Tokens, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil || s.claimsRevoked(ctx, claims) {
		return Session{}, Tokens{}, sessionErr(OpLogin, CodeNoSession, err)
	}

	acc, err := s.accounts.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return Session{}, Tokens{}, sessionErr(OpLogin, CodeUserNotFound, nil)
		}
		return Session{}, Tokens{}, sessionErr(OpLogin, CodeUnknown, err)
	}
	if acc.Disabled {
		return Session{}, Tokens{}, sessionErr(OpLogin, CodeDisabled, nil)
	}
	if claims.AuthenticatedAt().Before(acc.PasswordChangedAt.Truncate(time.Second)) {
		return Session{}, Tokens{}, sessionErr(OpLogin, CodeRequiresRecentLogin, nil)
	}

	if err := s.RevokeToken(ctx, refreshToken); err != nil {
		s.log.Warn("admin refresh: revoke old token failed", slog.String("error", err.Error()))
	}
	return s.issue(acc, claims.AuthenticatedAt(), claims.SessionID)
}

// ChangeCredential verifies current before anything else, then replaces the
// password and returns a fresh session. The old access token is revoked.
func (s *Service) ChangeCredential(ctx context.Context, session *Session, current, next string) (Session, Tokens, error) {
	if session == nil || session.AccountID == "" {
		return Session{}, Tokens{}, sessionErr(OpChange, CodeNoSession, nil)
	}

	acc, err := s.accounts.FindByID(ctx, session.AccountID)
	if err != nil {
		return Session{}, Tokens{}, sessionErr(OpChange, CodeUnknown, err)
	}

	if err := auth.ComparePassword(acc.PasswordHash, current); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) || current == "" {
			return Session{}, Tokens{}, sessionErr(OpChange, CodeWrongPassword, nil)
		}
		return Session{}, Tokens{}, sessionErr(OpChange, CodeUnknown, err)
	}

	if utf8.RuneCountInString(next) < auth.MinPasswordLength {
		return Session{}, Tokens{}, sessionErr(OpChange, CodeWeakPassword, nil)
	}

	now := s.now()
	if session.AuthenticatedAt.Before(acc.PasswordChangedAt.Truncate(time.Second)) {
		return Session{}, Tokens{}, sessionErr(OpChange, CodeRequiresRecentLogin, nil)
	}
	if s.opts.RecentLogin > 0 && now.Sub(session.AuthenticatedAt) > s.opts.RecentLogin {
		return Session{}, Tokens{}, sessionErr(OpChange, CodeRequiresRecentLogin, nil)
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return Session{}, Tokens{}, sessionErr(OpChange, CodeUnknown, err)
	}
	changedAt := now.Truncate(time.Second)
	if err := s.accounts.UpdatePassword(ctx, acc.ID, hash, changedAt); err != nil {
		return Session{}, Tokens{}, sessionErr(OpChange, CodeUnknown, err)
	}
	acc.PasswordChangedAt = changedAt

	if err := s.Logout(ctx, *session); err != nil {
		s.log.Warn("admin password: revoke old session failed", slog.String("error", err.Error()))
	}
	return s.issue(acc, changedAt, "")
}
