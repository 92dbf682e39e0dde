package identity

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Shravan4507/ise-elevators-website/internal/auth"
	"github.com/Shravan4507/ise-elevators-website/internal/httpx"
	"github.com/Shravan4507/ise-elevators-website/internal/middleware"
	"github.com/Shravan4507/ise-elevators-website/internal/transport"
	"github.com/Shravan4507/ise-elevators-website/internal/validation"
)

const refreshCookiePath = "/api/v1/admin"

type Handler struct {
	service      *Service
	tokens       *auth.Manager
	val          *validation.Validator
	log          *slog.Logger
	cookieSecure bool
}

func NewHandler(service *Service, tokens *auth.Manager, val *validation.Validator, log *slog.Logger, cookieSecure bool) *Handler {
	return &Handler{
		service:      service,
		tokens:       tokens,
		val:          val,
		log:          log,
		cookieSecure: cookieSecure,
	}
}

// StatusFor maps a session failure to its HTTP status.
func StatusFor(code Code) int {
	switch code {
	case CodeInvalidEmail, CodeWeakPassword:
		return http.StatusBadRequest
	case CodeUserNotFound, CodeWrongPassword, CodeNoSession:
		return http.StatusUnauthorized
	case CodeDisabled, CodeRequiresRecentLogin:
		return http.StatusForbidden
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeSessionError(w http.ResponseWriter, log *slog.Logger, op string, err error) {
	se := AsSessionError(op, err)
	if se.Code == CodeUnknown {
		log.Error("admin "+op+": failed", slog.String("error", err.Error()))
	} else {
		log.Warn("admin "+op+": rejected", slog.String("code", string(se.Code)))
	}
	transport.WriteCodedError(w, StatusFor(se.Code), string(se.Code), se.Message())
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req LoginRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin login: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	if errs := h.val.Fields(validation.LoginInput(req)); !errs.Valid() {
		log.Warn("admin login: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", errs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	session, tokens, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.writeSessionError(w, log, OpLogin, err)
		return
	}

	SetAuthCookies(w, tokens, h.cookieSecure)
	log.Info("admin login: ok", slog.String("account_id", session.AccountID))
	transport.WriteJSON(w, http.StatusOK, SessionResponse{Session: session, Tokens: tokens})
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	token := ""
	if cookie, err := r.Cookie(auth.RefreshCookie); err == nil {
		token = cookie.Value
	}
	if token == "" && r.ContentLength != 0 {
		var req RefreshRequest
		if err := httpx.DecodeJSON(r.Body, &req); err != nil {
			log.Warn("admin refresh: invalid json")
			transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
			return
		}
		token = req.RefreshToken
	}
	if token == "" {
		log.Warn("admin refresh: missing refresh token")
		transport.WriteError(w, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	session, tokens, err := h.service.Refresh(ctx, token)
	if err != nil {
		h.writeSessionError(w, log, OpLogin, err)
		return
	}

	SetAuthCookies(w, tokens, h.cookieSecure)
	log.Info("admin refresh: ok", slog.String("account_id", session.AccountID))
	transport.WriteJSON(w, http.StatusOK, SessionResponse{Session: session, Tokens: tokens})
}

// Logout always clears the cookies. The sessions of the access token and of
// the refresh token (cookie or JSON body) are ended.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if claims, ok := middleware.AdminClaims(r, h.tokens, h.service); ok {
		if err := h.service.Logout(ctx, SessionFromClaims(claims)); err != nil {
			ClearAuthCookies(w, h.cookieSecure)
			h.writeSessionError(w, log, OpLogout, err)
			return
		}
	}
	refresh := ""
	if cookie, err := r.Cookie(auth.RefreshCookie); err == nil {
		refresh = cookie.Value
	}
	if refresh == "" && r.ContentLength != 0 {
		var req RefreshRequest
		if err := httpx.DecodeJSON(r.Body, &req); err == nil {
			refresh = req.RefreshToken
		}
	}
	if err := h.service.RevokeToken(ctx, refresh); err != nil {
		log.Warn("admin logout: refresh revoke failed", slog.String("error", err.Error()))
	}

	ClearAuthCookies(w, h.cookieSecure)
	log.Info("admin logout: ok")
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Session answers 200 with the current session or 401 when signed out.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.AdminClaims(r, h.tokens, h.service)
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, SessionFromClaims(claims))
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req ChangePasswordRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin change-password: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	if errs := h.val.Fields(validation.ChangePasswordInput(req)); !errs.Valid() {
		log.Warn("admin change-password: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", errs)
		return
	}

	var current *Session
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		s := SessionFromClaims(claims)
		current = &s
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	session, tokens, err := h.service.ChangeCredential(ctx, current, req.CurrentPassword, req.NewPassword)
	if err != nil {
		h.writeSessionError(w, log, OpChange, err)
		return
	}

	SetAuthCookies(w, tokens, h.cookieSecure)
	log.Info("admin change-password: ok", slog.String("account_id", session.AccountID))
	transport.WriteJSON(w, http.StatusOK, SessionResponse{Session: session, Tokens: tokens})
}

func SetAuthCookies(w http.ResponseWriter, tokens Tokens, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessCookie,
		Value:    tokens.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  tokens.AccessExpiresAt,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     auth.RefreshCookie,
		Value:    tokens.RefreshToken,
		Path:     refreshCookiePath,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  tokens.RefreshExpiresAt,
	})
}

func ClearAuthCookies(w http.ResponseWriter, secure bool) {
	expire := time.Now().Add(-1 * time.Hour)
	for name, path := range map[string]string{auth.AccessCookie: "/", auth.RefreshCookie: refreshCookiePath} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     path,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
			Expires:  expire,
			MaxAge:   -1,
		})
	}
}

// IsSessionError reports whether err carries the given code.
func IsSessionError(err error, code Code) bool {
	var se *SessionError
	return errors.As(err, &se) && se.Code == code
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return h.log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
