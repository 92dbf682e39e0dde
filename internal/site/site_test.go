package site

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Shravan4507/ise-elevators-website/internal/events"
	"github.com/Shravan4507/ise-elevators-website/internal/identity"
	"github.com/Shravan4507/ise-elevators-website/internal/leads"
	"github.com/Shravan4507/ise-elevators-website/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu        sync.Mutex
	items     map[leads.Kind][]leads.Lead
	creates   []leads.Fields
	failWrite bool
	seq       int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{items: map[leads.Kind][]leads.Lead{}}
}

func (m *memoryStore) Create(_ context.Context, kind leads.Kind, f leads.Fields) (leads.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates = append(m.creates, f)
	if m.failWrite {
		return leads.Lead{}, &leads.StoreError{Op: "create", Kind: kind, Err: errors.New("store down")}
	}
	m.seq++
	at := time.Date(2024, 5, 1, 10, m.seq, 0, 0, time.UTC)
	lead := leads.Lead{
		ID: fmt.Sprintf("%s-%d", kind, m.seq), Kind: kind,
		Name: f.Name, Email: f.Email, Phone: f.Phone,
		ElevatorType: f.ElevatorType, Floors: f.Floors, Message: f.Message,
		Status: leads.StatusNew, CreatedAt: &at,
	}
	m.items[kind] = append([]leads.Lead{lead}, m.items[kind]...)
	return lead, nil
}

func (m *memoryStore) List(_ context.Context, kind leads.Kind) leads.Listing {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]leads.Lead, len(m.items[kind]))
	copy(items, m.items[kind])
	return leads.Listing{Items: items}
}

func (m *memoryStore) UpdateStatus(_ context.Context, kind leads.Kind, id string, status leads.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return errors.New("store down")
	}
	for i := range m.items[kind] {
		if m.items[kind][i].ID == id {
			m.items[kind][i].Status = status
			return nil
		}
	}
	return &leads.StoreError{Op: "update", Kind: kind, Err: leads.ErrNotFound}
}

func (m *memoryStore) Delete(_ context.Context, kind leads.Kind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return errors.New("store down")
	}
	for i, l := range m.items[kind] {
		if l.ID == id {
			m.items[kind] = append(m.items[kind][:i], m.items[kind][i+1:]...)
			return nil
		}
	}
	return &leads.StoreError{Op: "delete", Kind: kind, Err: leads.ErrNotFound}
}

type fakeSessions struct {
	mu       sync.Mutex
	password string
	session  identity.Session
	valid    map[string]bool
	issued   int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{
		password: "lift-secret",
		session:  identity.Session{AccountID: "admin-1", Email: "admin@iseelevators.in", Role: "admin"},
		valid:    map[string]bool{},
	}
}

func (f *fakeSessions) issue() identity.Tokens {
	f.issued++
	tok := fmt.Sprintf("tok-%d", f.issued)
	f.valid[tok] = true
	return identity.Tokens{AccessToken: tok, AccessExpiresAt: time.Now().Add(time.Hour), RefreshToken: "r" + tok, RefreshExpiresAt: time.Now().Add(time.Hour)}
}

func (f *fakeSessions) Login(_ context.Context, email, password string) (identity.Session, identity.Tokens, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if password != f.password {
		return identity.Session{}, identity.Tokens{}, &identity.SessionError{Op: identity.OpLogin, Code: identity.CodeWrongPassword}
	}
	return f.session, f.issue(), nil
}

func (f *fakeSessions) Logout(context.Context, identity.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.valid = map[string]bool{}
	return nil
}

func (f *fakeSessions) Current(_ context.Context, token string) *identity.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.valid[token] {
		return nil
	}
	s := f.session
	return &s
}

func (f *fakeSessions) ChangeCredential(_ context.Context, s *identity.Session, current, next string) (identity.Session, identity.Tokens, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if current != f.password {
		return identity.Session{}, identity.Tokens{}, &identity.SessionError{Op: identity.OpChange, Code: identity.CodeWrongPassword}
	}
	f.password = next
	f.valid = map[string]bool{}
	return *s, f.issue(), nil
}

type trackerSpy struct {
	mu     sync.Mutex
	events []events.Event
}

func (t *trackerSpy) Track(_ context.Context, ev events.Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, ev)
	return nil
}

func (t *trackerSpy) actions() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []string
	for _, ev := range t.events {
		out = append(out, ev.Action)
	}
	return out
}

type harness struct {
	t        *testing.T
	srv      *httptest.Server
	client   *http.Client
	store    *memoryStore
	sessions *fakeSessions
	tracker  *trackerSpy
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := newMemoryStore()
	h := startHarness(t, store)
	h.store = store
	return h
}

func startHarness(t *testing.T, store Store) *harness {
	t.Helper()
	h := &harness{t: t, sessions: newFakeSessions(), tracker: &trackerSpy{}}
	s, err := New(Options{
		Store:     store,
		Sessions:  h.sessions,
		Validator: validation.New(),
		Tracker:   h.tracker,
		Log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		CSRFKey:   []byte("0123456789abcdef0123456789abcdef"),
		Timezone:  time.UTC,
	})
	require.NoError(t, err)

	h.srv = httptest.NewServer(s.Routes())
	t.Cleanup(h.srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	h.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return h
}

func (h *harness) get(path string) (*http.Response, string) {
	h.t.Helper()
	resp, err := h.client.Get(h.srv.URL + path)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return resp, string(body)
}

var csrfInput = regexp.MustCompile(`name="gorilla.csrf.Token" value="([^"]+)"`)

// post submits a form from page, carrying the CSRF token that page rendered.
func (h *harness) post(page, action string, form url.Values) (*http.Response, string) {
	h.t.Helper()
	_, body := h.get(page)
	m := csrfInput.FindStringSubmatch(body)
	require.Len(h.t, m, 2, "page %s renders a csrf field", page)
	form.Set("gorilla.csrf.Token", m[1])

	resp, err := h.client.PostForm(h.srv.URL+action, form)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return resp, string(out)
}

func (h *harness) login() {
	h.t.Helper()
	resp, _ := h.post("/admin-login", "/admin-login", url.Values{"email": {"admin@iseelevators.in"}, "password": {"lift-secret"}})
	require.Equal(h.t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(h.t, "/admin-dashboard", resp.Header.Get("Location"))
}

func TestPublicPages(t *testing.T) {
	h := newHarness(t)
	for path, want := range map[string]string{
		"/":         "Trusted Edge Technology",
		"/about":    "About ISE Elevator",
		"/products": "Hospital Elevator",
		"/services": "Emergency Repair",
		"/contact":  "Send Enquiry",
		"/quote":    "Submit Quote Request",
	} {
		resp, body := h.get(path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Contains(t, body, want, path)
		assert.Contains(t, body, FormattedPhone, path)
	}

	resp, body := h.get("/products/home-elevator")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "/quote?type=Home%20Elevator")

	resp, _ = h.get("/products/Home-Elevator")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = h.get("/products/space-elevator")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.Contains(t, h.tracker.actions(), events.ProductViewed)
	assert.Contains(t, h.tracker.actions(), events.QuoteFormOpened)
}

func TestQuotePreselectsType(t *testing.T) {
	h := newHarness(t)
	_, body := h.get("/quote?type=Hospital+Elevator")
	assert.Contains(t, body, `<option value="Hospital Elevator" selected>`)

	_, body = h.get("/quote?type=Rocket")
	assert.NotContains(t, body, "selected>")
}

func TestOutboundLinks(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.get("/go/call")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "tel:+918390091984", resp.Header.Get("Location"))

	resp, _ = h.get("/go/whatsapp?from=/products")
	loc := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(loc, "https://wa.me/918390091984?text="))
	u, err := url.Parse(loc)
	require.NoError(t, err)
	assert.Equal(t, DefaultWhatsAppMessage, u.Query().Get("text"))

	assert.Equal(t, []string{events.CallClicked, events.WhatsAppClicked}, h.tracker.actions())
	h.tracker.mu.Lock()
	assert.Equal(t, "products", h.tracker.events[1].Label)
	h.tracker.mu.Unlock()

	resp, _ = h.get("/go/quote?from=/&type=Goods+Elevator")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/quote?type=Goods+Elevator", resp.Header.Get("Location"))
	assert.Equal(t, events.CTAClicked, h.tracker.actions()[2])

	resp, body := h.get("/contact/whatsapp.png")
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "\x89PNG"))
}

func validQuote() url.Values {
	return url.Values{
		"name":         {"Suraj"},
		"email":        {"s@x.com"},
		"phone":        {"9876543210"},
		"elevatorType": {"Home Elevator"},
		"floors":       {"3"},
		"message":      {""},
		"status":       {"replied"},
	}
}

func TestQuoteSubmit(t *testing.T) {
	h := newHarness(t)

	resp, body := h.post("/quote", "/quote", validQuote())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Quote request submitted successfully!")
	require.Len(t, h.store.creates, 1)
	assert.Equal(t, leads.Fields{Name: "Suraj", Email: "s@x.com", Phone: "9876543210", ElevatorType: "Home Elevator", Floors: "3"}, h.store.creates[0])
	assert.Equal(t, leads.StatusNew, h.store.items[leads.KindQuote][0].Status)
	assert.Contains(t, h.tracker.actions(), events.QuoteFormSubmitted)
}

func TestQuoteValidationMakesNoCall(t *testing.T) {
	h := newHarness(t)
	form := validQuote()
	form.Set("name", "A")
	form.Set("floors", "0")

	resp, body := h.post("/quote", "/quote", form)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Name must be at least 2 characters")
	assert.Contains(t, body, "Please enter a valid number of floors")
	assert.Contains(t, body, `value="s@x.com"`, "entered values are kept")
	assert.Empty(t, h.store.creates)
}

func TestEnquiryStoreFailure(t *testing.T) {
	h := newHarness(t)
	h.store.failWrite = true

	resp, body := h.post("/contact", "/contact", url.Values{
		"name":    {"Asha"},
		"email":   {"asha@example.in"},
		"message": {"Please call me back about AMC."},
	})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, "Failed to submit enquiry. Please try again.")
	assert.Contains(t, body, "Please call me back about AMC.")
	assert.Len(t, h.store.creates, 1)
}

func TestPostWithoutCSRFTokenIsRejected(t *testing.T) {
	h := newHarness(t)
	resp, err := h.client.PostForm(h.srv.URL+"/quote", validQuote())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, h.store.creates)
}

func TestAdminRedirects(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.get("/admin")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin-login", resp.Header.Get("Location"))

	for _, path := range []string{"/admin-dashboard", "/admin-dashboard/settings", "/admin-dashboard/quote/q1"} {
		resp, _ = h.get(path)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, "/admin-login", resp.Header.Get("Location"), path)
	}

	resp, _ = h.get("/admin-login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	h.login()
	resp, _ = h.get("/admin-login")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin-dashboard", resp.Header.Get("Location"))
}

func TestAdminLoginWrongPassword(t *testing.T) {
	h := newHarness(t)
	resp, body := h.post("/admin-login", "/admin-login", url.Values{"email": {"admin@iseelevators.in"}, "password": {"wrong-secret"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Incorrect password.")

	resp, body = h.post("/admin-login", "/admin-login", url.Values{"email": {"admin"}, "password": {"123"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Please enter a valid email address")
	assert.Contains(t, body, "Password must be at least 6 characters")
}

func seedLeads(h *harness) {
	ctx := context.Background()
	_, _ = h.store.Create(ctx, leads.KindQuote, leads.Fields{Name: "Suraj", Email: "s@x.com", Phone: "9876543210", ElevatorType: "Home Elevator", Floors: "3"})
	_, _ = h.store.Create(ctx, leads.KindEnquiry, leads.Fields{Name: "Asha", Email: "asha@example.in", Message: "Please call me back about AMC."})
}

func TestDashboardStatusChange(t *testing.T) {
	h := newHarness(t)
	seedLeads(h)
	h.login()

	_, body := h.get("/admin-dashboard")
	assert.Contains(t, body, "Suraj")
	assert.Contains(t, body, "Asha")
	assert.Contains(t, body, "1 May 2024, 10:01 am")
	assert.Contains(t, body, "1 new")

	id := h.store.items[leads.KindQuote][0].ID
	resp, _ := h.post("/admin-dashboard", "/admin-dashboard/quote/"+id+"/status", url.Values{"status": {"replied"}, "return": {"/admin-dashboard"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin-dashboard", resp.Header.Get("Location"))
	assert.Equal(t, leads.StatusReplied, h.store.items[leads.KindQuote][0].Status)

	resp, _ = h.post("/admin-dashboard", "/admin-dashboard/quote/"+id+"/status", url.Values{"status": {"archived"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = h.post("/admin-dashboard", "/admin-dashboard/quote/missing/status", url.Values{"status": {"read"}})
	assert.Equal(t, "/admin-dashboard?notice=not-found", resp.Header.Get("Location"))

	h.store.failWrite = true
	resp, _ = h.post("/admin-dashboard", "/admin-dashboard/quote/"+id+"/status", url.Values{"status": {"new"}, "return": {"https://evil.example/x"}})
	assert.Equal(t, "/admin-dashboard?notice=status-failed", resp.Header.Get("Location"))
	_, body = h.get("/admin-dashboard?notice=status-failed")
	assert.Contains(t, body, "Failed to update status. Please try again.")
}

func TestDashboardDetailAndDelete(t *testing.T) {
	h := newHarness(t)
	seedLeads(h)
	h.login()
	id := h.store.items[leads.KindEnquiry][0].ID

	resp, body := h.get("/admin-dashboard/enquiry/" + id)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Enquiry Details")
	assert.Contains(t, body, `href="mailto:asha@example.in"`)

	_, body = h.get("/admin-dashboard/enquiry/" + id + "/delete")
	assert.Contains(t, body, "Are you sure you want to delete this item?")

	resp, _ = h.post("/admin-dashboard/enquiry/"+id+"/delete", "/admin-dashboard/enquiry/"+id+"/delete", url.Values{"confirm": {"no"}})
	assert.Equal(t, "/admin-dashboard/enquiry/"+id, resp.Header.Get("Location"))
	assert.Len(t, h.store.items[leads.KindEnquiry], 1)

	resp, _ = h.post("/admin-dashboard/enquiry/"+id+"/delete", "/admin-dashboard/enquiry/"+id+"/delete", url.Values{"confirm": {"yes"}})
	assert.Equal(t, "/admin-dashboard?notice=deleted", resp.Header.Get("Location"))
	assert.Empty(t, h.store.items[leads.KindEnquiry])

	resp, _ = h.get("/admin-dashboard/enquiry/" + id)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = h.get("/admin-dashboard/archive/" + id)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSettingsChangePassword(t *testing.T) {
	h := newHarness(t)
	h.login()

	_, body := h.get("/admin-dashboard/settings")
	assert.Contains(t, body, "admin@iseelevators.in")
	assert.Contains(t, body, "Administrator")

	resp, body := h.post("/admin-dashboard/settings", "/admin-dashboard/settings", url.Values{
		"currentPassword": {"lift-secret"}, "newPassword": {"new-secret"}, "confirmPassword": {"other-secret"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Passwords do not match")

	resp, body = h.post("/admin-dashboard/settings", "/admin-dashboard/settings", url.Values{
		"currentPassword": {"nope-nope"}, "newPassword": {"new-secret"}, "confirmPassword": {"new-secret"},
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Current password is incorrect.")

	resp, _ = h.post("/admin-dashboard/settings", "/admin-dashboard/settings", url.Values{
		"currentPassword": {"lift-secret"}, "newPassword": {"new-secret"}, "confirmPassword": {"new-secret"},
	})
	assert.Equal(t, "/admin-dashboard/settings?notice=password-changed", resp.Header.Get("Location"))
	_, body = h.get("/admin-dashboard/settings?notice=password-changed")
	assert.Contains(t, body, "Password updated successfully!")
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	h.login()
	resp, _ := h.post("/admin-dashboard", "/admin-logout", url.Values{})
	assert.Equal(t, "/admin-login", resp.Header.Get("Location"))

	resp, _ = h.get("/admin-dashboard")
	assert.Equal(t, "/admin-login", resp.Header.Get("Location"))
}

func TestPreferencesToggle(t *testing.T) {
	h := newHarness(t)
	resp, _ := h.post("/about", "/preferences", url.Values{"toggle": {"highContrast"}, "return": {"/about"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/about", resp.Header.Get("Location"))

	_, body := h.get("/about")
	assert.Contains(t, body, `<body class="high-contrast">`)

	h.post("/about", "/preferences", url.Values{"fontSize": {"increase"}})
	_, body = h.get("/about")
	assert.Contains(t, body, `<body class="font-size-increase high-contrast">`)

	h.post("/about", "/preferences", url.Values{"reset": {"1"}})
	_, body = h.get("/about")
	assert.Contains(t, body, "<body >")

	resp, _ = h.post("/about", "/preferences", url.Values{"reset": {"1"}, "return": {`/\evil.example`}})
	assert.Equal(t, "/", resp.Header.Get("Location"), "no redirect off site")
}

func TestPreferencesIgnoreUnknownToggles(t *testing.T) {
	p := DefaultPreferences()
	assert.False(t, p.Toggle("rainbowMode"))
	assert.False(t, p.SetFontSize("huge"))
	assert.True(t, p.Toggle("bigCursor"))
	assert.Equal(t, []string{"big-cursor"}, p.Classes())
	assert.Equal(t, "bigCursor=1", p.Encode())
}

func TestLocalPath(t *testing.T) {
	assert.Equal(t, "/about", localPath("http://localhost:8080/about?x=1", "/"))
	assert.Equal(t, "/", localPath("//evil.example", "/"))
	assert.Equal(t, "/", localPath(`/\evil.example`, "/"))
	assert.Equal(t, "/", localPath(`/\/evil.example`, "/"))
	assert.Equal(t, "/", localPath("/\t/evil.example", "/"))
	assert.Equal(t, "/", localPath("https://iseelevators.in/\\evil.example", "/"))
	assert.Equal(t, "/", localPath("", "/"))
	assert.Equal(t, "/products", localPath("/products#top", "/"))
}

// leadRepo is an in-memory leads.Repository, so the form path runs through a
// real leads.Registry.
type leadRepo struct {
	mu    sync.Mutex
	items map[string]leads.Lead
}

func (r *leadRepo) Create(_ context.Context, f leads.Fields) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := fmt.Sprintf("lead-%d", len(r.items)+1)
	now := time.Now()
	r.items[id] = leads.Lead{ID: id, Name: f.Name, Email: f.Email, Phone: f.Phone, ElevatorType: f.ElevatorType, Floors: f.Floors, Message: f.Message, Status: leads.StatusNew, CreatedAt: &now}
	return id, nil
}

func (r *leadRepo) List(context.Context) ([]leads.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]leads.Lead, 0, len(r.items))
	for _, l := range r.items {
		out = append(out, l)
	}
	return out, nil
}

func (r *leadRepo) GetByID(_ context.Context, id string) (leads.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.items[id]
	if !ok {
		return leads.Lead{}, leads.ErrNotFound
	}
	return l, nil
}

func (r *leadRepo) UpdateStatus(_ context.Context, id string, status leads.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.items[id]
	if ok {
		l.Status = status
		r.items[id] = l
	}
	return ok, nil
}

func (r *leadRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.items[id]
	delete(r.items, id)
	return ok, nil
}

type countingNotifier struct {
	mu   sync.Mutex
	sent []leads.Lead
}

func (n *countingNotifier) SendLeadNotification(_ context.Context, lead leads.Lead) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, lead)
	return "msg-" + lead.ID, nil
}

func TestQuoteSubmitNotifiesInbox(t *testing.T) {
	notifier := &countingNotifier{}
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := leads.NewRegistry(
		leads.NewService(&leadRepo{items: map[string]leads.Lead{}}, leads.KindQuote, notifier, nil, discard),
		leads.NewService(&leadRepo{items: map[string]leads.Lead{}}, leads.KindEnquiry, notifier, nil, discard),
	)
	h := startHarness(t, registry)

	resp, body := h.post("/quote", "/quote", validQuote())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Quote request submitted successfully!")

	form := validQuote()
	form.Set("name", "A")
	resp, _ = h.post("/quote", "/quote", form)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	registry.Wait()
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	require.Len(t, notifier.sent, 1, "one notification per stored quote")
	assert.Equal(t, "Suraj", notifier.sent[0].Name)
	assert.Equal(t, leads.KindQuote, notifier.sent[0].Kind)
}
