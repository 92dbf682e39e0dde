package site

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/Shravan4507/ise-elevators-website/internal/dashboard"
	"github.com/Shravan4507/ise-elevators-website/internal/events"
	"github.com/Shravan4507/ise-elevators-website/internal/identity"
	"github.com/Shravan4507/ise-elevators-website/internal/intake"
	"github.com/Shravan4507/ise-elevators-website/internal/middleware"
	"github.com/Shravan4507/ise-elevators-website/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Store is the lead store the site writes to and the dashboard reads from.
type Store interface {
	intake.Submitter
	dashboard.Store
}

// Sessions is the admin session gateway.
type Sessions interface {
	Login(ctx context.Context, email, password string) (identity.Session, identity.Tokens, error)
	Logout(ctx context.Context, session identity.Session) error
	Current(ctx context.Context, token string) *identity.Session
	ChangeCredential(ctx context.Context, session *identity.Session, current, next string) (identity.Session, identity.Tokens, error)
}

type Options struct {
	Store        Store
	Sessions     Sessions
	Validator    *validation.Validator
	Tracker      events.Tracker
	Log          *slog.Logger
	CSRFKey      []byte
	CookieSecure bool
	Timezone     *time.Location
	// Optional limiters for the public forms and the login form.
	LeadLimiter  *middleware.RateLimiter
	LoginLimiter *middleware.RateLimiter
}

// Site serves the public pages, the lead forms and the admin area.
type Site struct {
	store        Store
	sessions     Sessions
	val          *validation.Validator
	tracker      events.Tracker
	log          *slog.Logger
	csrfKey      []byte
	cookieSecure bool
	tz           *time.Location
	leadLimiter  *middleware.RateLimiter
	loginLimiter *middleware.RateLimiter

	pages map[string]*template.Template
	copy  map[string]template.HTML
	qr    []byte
}

var pageNames = []string{
	"home", "about", "products", "product", "services", "contact", "quote", "not_found",
	"admin_login", "admin_dashboard", "admin_detail", "admin_delete", "admin_settings",
}

func New(opts Options) (*Site, error) {
	if opts.Store == nil || opts.Sessions == nil {
		return nil, errors.New("site: store and sessions are required")
	}
	if opts.Validator == nil {
		opts.Validator = validation.New()
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Tracker == nil {
		opts.Tracker = events.Nop{}
	}
	if opts.Timezone == nil {
		opts.Timezone = time.UTC
	}

	s := &Site{
		store:        opts.Store,
		sessions:     opts.Sessions,
		val:          opts.Validator,
		tracker:      opts.Tracker,
		log:          opts.Log,
		csrfKey:      opts.CSRFKey,
		cookieSecure: opts.CookieSecure,
		tz:           opts.Timezone,
		leadLimiter:  opts.LeadLimiter,
		loginLimiter: opts.LoginLimiter,
		pages:        map[string]*template.Template{},
	}

	funcs := template.FuncMap{"date": s.formatDate}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templatesFS,
			"templates/layout.html", "templates/admin_nav.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("site: parse %s: %w", name, err)
		}
		s.pages[name] = t
	}

	copyHTML, err := loadCopy()
	if err != nil {
		return nil, fmt.Errorf("site: page copy: %w", err)
	}
	s.copy = copyHTML

	qr, err := whatsAppQR()
	if err != nil {
		return nil, fmt.Errorf("site: whatsapp qr: %w", err)
	}
	s.qr = qr
	return s, nil
}

// Routes returns the HTML router. Every unsafe request is CSRF checked.
func (s *Site) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.plaintext)
	r.Use(csrf.Protect(s.csrfKey,
		csrf.Secure(s.cookieSecure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(s.csrfFailed)),
	))

	static, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/", s.home)
	r.Get("/about", s.about)
	r.Get("/products", s.products)
	r.Get("/products/{slug}", s.product)
	r.Get("/services", s.services)
	r.Get("/contact", s.contactForm)
	r.With(s.limit(s.leadLimiter)).Post("/contact", s.submitContact)
	r.Get("/quote", s.quoteForm)
	r.With(s.limit(s.leadLimiter)).Post("/quote", s.submitQuote)
	r.Get("/contact/whatsapp.png", s.whatsAppCode)
	r.Get("/go/whatsapp", s.goWhatsApp)
	r.Get("/go/call", s.goCall)
	r.Get("/go/quote", s.goQuote)
	r.Post("/preferences", s.updatePreferences)

	r.Get("/admin", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin-login", http.StatusFound)
	})
	r.Get("/admin-login", s.guarded(s.loginPage))
	r.With(s.limit(s.loginLimiter)).Post("/admin-login", s.guarded(s.login))
	r.Post("/admin-logout", s.logout)
	r.Route("/admin-dashboard", func(d chi.Router) {
		d.Get("/", s.guarded(s.dashboardPage))
		d.Get("/settings", s.guarded(s.settingsPage))
		d.Post("/settings", s.guarded(s.changePassword))
		d.Get("/{kind}/{id}", s.guarded(s.detailPage))
		d.Post("/{kind}/{id}/status", s.guarded(s.changeStatus))
		d.Get("/{kind}/{id}/delete", s.guarded(s.deleteConfirm))
		d.Post("/{kind}/{id}/delete", s.guarded(s.deleteLead))
	})

	r.NotFound(s.notFound)
	return r
}

// plaintext marks requests as plain HTTP for the CSRF origin checks when
// cookies are not restricted to HTTPS.
func (s *Site) plaintext(next http.Handler) http.Handler {
	if s.cookieSecure {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

func (s *Site) limit(rl *middleware.RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.Middleware
}

func (s *Site) csrfFailed(w http.ResponseWriter, r *http.Request) {
	reason := "unknown"
	if err := csrf.FailureReason(r); err != nil {
		reason = err.Error()
	}
	s.logWithRequest(r).Warn("site csrf: rejected", slog.String("reason", reason))
	http.Error(w, "Your session has expired. Please reload the page and try again.", http.StatusForbidden)
}

type notice struct {
	Text  string
	Error bool
}

type view struct {
	Title     string
	Path      string
	Bare      bool
	Prefs     Preferences
	CSRFField template.HTML
	Phone     string
	Notice    *notice
	Data      any
}

func (s *Site) render(w http.ResponseWriter, r *http.Request, status int, page string, v view) {
	t, ok := s.pages[page]
	if !ok {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	v.Path = r.URL.Path
	v.Prefs = ReadPreferences(r)
	v.CSRFField = s.csrfField(r)
	v.Phone = FormattedPhone

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout", v); err != nil {
		s.logWithRequest(r).Error("site render: failed", slog.String("page", page), slog.String("error", err.Error()))
	}
}

func (s *Site) csrfField(r *http.Request) template.HTML {
	return csrf.TemplateField(r)
}

// formatDate renders a timestamp the way Indian English dates read, or "-"
// while the store has not committed it.
func (s *Site) formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.In(s.tz).Format("2 Jan 2006, 03:04 pm")
}

func (s *Site) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "not_found", view{Title: "Page not found"})
}

func (s *Site) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return s.log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return s.log.With(slog.String("request_id", id))
	}
	return s.log
}

func (s *Site) track(r *http.Request, action, label string) {
	events.Emit(r.Context(), s.tracker, s.logWithRequest(r), action, label)
}
