package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Shravan4507/ise-elevators-website/internal/identity"
	"github.com/Shravan4507/ise-elevators-website/internal/leads"
	"github.com/Shravan4507/ise-elevators-website/internal/transport"
	"github.com/Shravan4507/ise-elevators-website/internal/validation"
)

const apiPrefix = "/api/v1"

// APIError is a non-2xx answer the client has no better classification for.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d: %s", e.Status, e.Message)
}

// Client talks to the JSON API. It is a dashboard.Store, an intake.Submitter
// and a guard.SessionSource.
type Client struct {
	baseURL  string
	http     *http.Client
	watchers *identity.Watchers

	mu      sync.Mutex
	tokens  identity.Tokens
	session *identity.Session
	onSave  func(identity.Tokens)
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokens resumes a previous login.
func WithTokens(tokens identity.Tokens) Option {
	return func(c *Client) { c.tokens = tokens }
}

// WithTokenSink is called whenever the tokens change, including on logout
// with empty tokens.
func WithTokenSink(fn func(identity.Tokens)) Option {
	return func(c *Client) { c.onSave = fn }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 15 * time.Second},
		watchers: identity.NewWatchers(nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnSessionChange fires cb with the current session right away and again
// whenever the client signs in or out.
func (c *Client) OnSessionChange(cb func(*identity.Session)) func() {
	return c.watchers.Subscribe(cb)
}

func (c *Client) Tokens() identity.Tokens {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens
}

func (c *Client) setSession(session *identity.Session, tokens identity.Tokens) {
	c.mu.Lock()
	c.session = session
	c.tokens = tokens
	sink := c.onSave
	c.mu.Unlock()

	if sink != nil {
		sink(tokens)
	}
	c.watchers.Publish(session)
}

// do sends one request. Non-2xx answers are decoded into an ErrorResponse and
// returned together with the status.
func (c *Client) do(ctx context.Context, method, path, bearer string, in, out any) (int, *transport.ErrorResponse, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr transport.ErrorResponse
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if err := json.Unmarshal(raw, &apiErr); err != nil || apiErr.Error == "" {
			apiErr.Error = strings.TrimSpace(string(raw))
		}
		return resp.StatusCode, &apiErr, nil
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, nil, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil, nil
}

// authed sends an admin request, refreshing the access token once when the
// server answers 401.
func (c *Client) authed(ctx context.Context, method, path string, in, out any) (int, *transport.ErrorResponse, error) {
	status, apiErr, err := c.do(ctx, method, path, c.Tokens().AccessToken, in, out)
	if err != nil || status != http.StatusUnauthorized {
		return status, apiErr, err
	}
	if c.Tokens().RefreshToken == "" {
		return status, apiErr, nil
	}
	if rerr := c.Refresh(ctx); rerr != nil {
		return status, apiErr, nil
	}
	return c.do(ctx, method, path, c.Tokens().AccessToken, in, out)
}

func sessionError(op string, status int, apiErr *transport.ErrorResponse) error {
	if apiErr != nil && apiErr.Code != "" {
		return &identity.SessionError{Op: op, Code: identity.Code(apiErr.Code)}
	}
	if status == http.StatusTooManyRequests {
		return &identity.SessionError{Op: op, Code: identity.CodeTooManyRequests}
	}
	if apiErr != nil && len(apiErr.Details) > 0 {
		return validation.FieldErrors(apiErr.Details)
	}
	msg := ""
	if apiErr != nil {
		msg = apiErr.Error
	}
	return &identity.SessionError{Op: op, Code: identity.CodeUnknown, Err: &APIError{Status: status, Message: msg}}
}

func (c *Client) Login(ctx context.Context, email, password string) (identity.Session, error) {
	var out identity.SessionResponse
	status, apiErr, err := c.do(ctx, http.MethodPost, "/admin/login", "", identity.LoginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return identity.Session{}, &identity.SessionError{Op: identity.OpLogin, Code: identity.CodeUnknown, Err: err}
	}
	if apiErr != nil {
		return identity.Session{}, sessionError(identity.OpLogin, status, apiErr)
	}
	session := out.Session
	c.setSession(&session, out.Tokens)
	return session, nil
}

func (c *Client) Refresh(ctx context.Context) error {
	refresh := c.Tokens().RefreshToken
	if refresh == "" {
		return &identity.SessionError{Op: identity.OpLogin, Code: identity.CodeNoSession}
	}
	var out identity.SessionResponse
	status, apiErr, err := c.do(ctx, http.MethodPost, "/admin/refresh", "", identity.RefreshRequest{RefreshToken: refresh}, &out)
	if err != nil {
		return err
	}
	if apiErr != nil {
		if status == http.StatusUnauthorized {
			c.setSession(nil, identity.Tokens{})
		}
		return sessionError(identity.OpLogin, status, apiErr)
	}
	session := out.Session
	c.setSession(&session, out.Tokens)
	return nil
}

// Session asks the server for the current session; nil means signed out.
func (c *Client) Session(ctx context.Context) (*identity.Session, error) {
	if c.Tokens().AccessToken == "" && c.Tokens().RefreshToken == "" {
		c.setSession(nil, identity.Tokens{})
		return nil, nil
	}
	var out identity.Session
	status, apiErr, err := c.authed(ctx, http.MethodGet, "/admin/session", nil, &out)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		c.setSession(nil, identity.Tokens{})
		return nil, nil
	}
	if apiErr != nil {
		return nil, &APIError{Status: status, Message: apiErr.Error}
	}
	c.setSession(&out, c.Tokens())
	return &out, nil
}

// Logout always forgets the local tokens, even if the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	tokens := c.Tokens()
	defer c.setSession(nil, identity.Tokens{})
	if tokens.AccessToken == "" && tokens.RefreshToken == "" {
		return nil
	}
	body := identity.RefreshRequest{RefreshToken: tokens.RefreshToken}
	status, apiErr, err := c.do(ctx, http.MethodPost, "/admin/logout", tokens.AccessToken, body, nil)
	if err != nil {
		return &identity.SessionError{Op: identity.OpLogout, Code: identity.CodeUnknown, Err: err}
	}
	if apiErr != nil {
		return sessionError(identity.OpLogout, status, apiErr)
	}
	return nil
}

// ChangeCredential changes the admin password; the server re-verifies current.
func (c *Client) ChangeCredential(ctx context.Context, current, next string) (identity.Session, error) {
	if c.Tokens().AccessToken == "" {
		return identity.Session{}, &identity.SessionError{Op: identity.OpChange, Code: identity.CodeNoSession}
	}
	req := identity.ChangePasswordRequest{CurrentPassword: current, NewPassword: next, ConfirmPassword: next}
	var out identity.SessionResponse
	status, apiErr, err := c.authed(ctx, http.MethodPost, "/admin/password", req, &out)
	if err != nil {
		return identity.Session{}, &identity.SessionError{Op: identity.OpChange, Code: identity.CodeUnknown, Err: err}
	}
	if apiErr != nil {
		return identity.Session{}, sessionError(identity.OpChange, status, apiErr)
	}
	session := out.Session
	c.setSession(&session, out.Tokens)
	return session, nil
}

type createResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

func (c *Client) Create(ctx context.Context, kind leads.Kind, f leads.Fields) (leads.Lead, error) {
	var in any
	switch kind {
	case leads.KindQuote:
		in = leads.CreateQuoteRequest{Name: f.Name, Email: f.Email, Phone: f.Phone, ElevatorType: f.ElevatorType, Floors: f.Floors, Message: f.Message}
	case leads.KindEnquiry:
		in = leads.CreateEnquiryRequest{Name: f.Name, Email: f.Email, Phone: f.Phone, Message: f.Message}
	default:
		return leads.Lead{}, leads.ErrUnknownKind
	}

	var out createResponse
	status, apiErr, err := c.do(ctx, http.MethodPost, "/"+kind.Collection(), "", in, &out)
	if err != nil {
		return leads.Lead{}, &leads.StoreError{Op: "create", Kind: kind, Err: err}
	}
	if apiErr != nil {
		if status == http.StatusBadRequest && len(apiErr.Details) > 0 {
			return leads.Lead{}, validation.FieldErrors(apiErr.Details)
		}
		return leads.Lead{}, &leads.StoreError{Op: "create", Kind: kind, Err: &APIError{Status: status, Message: apiErr.Error}}
	}
	return leads.Lead{
		ID:           out.ID,
		Kind:         kind,
		Name:         f.Name,
		Email:        f.Email,
		Phone:        f.Phone,
		ElevatorType: f.ElevatorType,
		Floors:       f.Floors,
		Message:      f.Message,
		Status:       leads.StatusNew,
	}, nil
}

func adminPath(kind leads.Kind, parts ...string) string {
	p := "/admin/" + kind.Collection()
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

func storeError(op string, kind leads.Kind, status int, apiErr *transport.ErrorResponse) error {
	if status == http.StatusNotFound {
		return &leads.StoreError{Op: op, Kind: kind, Err: leads.ErrNotFound}
	}
	return &leads.StoreError{Op: op, Kind: kind, Err: &APIError{Status: status, Message: apiErr.Error}}
}

// List never fails; an unreachable or refusing server yields an empty
// listing flagged Unavailable.
func (c *Client) List(ctx context.Context, kind leads.Kind) leads.Listing {
	var out leads.Listing
	_, apiErr, err := c.authed(ctx, http.MethodGet, adminPath(kind), nil, &out)
	if err != nil || apiErr != nil {
		return leads.Listing{Items: []leads.Lead{}, Unavailable: true}
	}
	if out.Items == nil {
		out.Items = []leads.Lead{}
	}
	for i := range out.Items {
		out.Items[i].Kind = kind
	}
	return out
}

func (c *Client) Get(ctx context.Context, kind leads.Kind, id string) (leads.Lead, error) {
	var out leads.Lead
	status, apiErr, err := c.authed(ctx, http.MethodGet, adminPath(kind, id), nil, &out)
	if err != nil {
		return leads.Lead{}, &leads.StoreError{Op: "get", Kind: kind, Err: err}
	}
	if apiErr != nil {
		return leads.Lead{}, storeError("get", kind, status, apiErr)
	}
	out.Kind = kind
	return out, nil
}

func (c *Client) UpdateStatus(ctx context.Context, kind leads.Kind, id string, status leads.Status) error {
	if !leads.IsValidStatus(status) {
		return leads.ErrInvalidStatus
	}
	code, apiErr, err := c.authed(ctx, http.MethodPatch, adminPath(kind, id, "status"), leads.StatusUpdateRequest{Status: string(status)}, nil)
	if err != nil {
		return &leads.StoreError{Op: "update", Kind: kind, Err: err}
	}
	if apiErr != nil {
		return storeError("update", kind, code, apiErr)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, kind leads.Kind, id string) error {
	code, apiErr, err := c.authed(ctx, http.MethodDelete, adminPath(kind, id), nil, nil)
	if err != nil {
		return &leads.StoreError{Op: "delete", Kind: kind, Err: err}
	}
	if apiErr != nil {
		return storeError("delete", kind, code, apiErr)
	}
	return nil
}
