package site

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Shravan4507/ise-elevators-website/internal/auth"
	"github.com/Shravan4507/ise-elevators-website/internal/dashboard"
	"github.com/Shravan4507/ise-elevators-website/internal/guard"
	"github.com/Shravan4507/ise-elevators-website/internal/identity"
	"github.com/Shravan4507/ise-elevators-website/internal/leads"
	"github.com/Shravan4507/ise-elevators-website/internal/validation"

	"github.com/go-chi/chi/v5"
)

var statusOptions = []leads.Status{leads.StatusNew, leads.StatusRead, leads.StatusReplied}

var adminNotices = map[string]notice{
	"status-failed":    {Text: "Failed to update status. Please try again.", Error: true},
	"delete-failed":    {Text: "Failed to delete. Please try again.", Error: true},
	"not-found":        {Text: "This item no longer exists.", Error: true},
	"deleted":          {Text: "Deleted successfully."},
	"password-changed": {Text: "Password updated successfully!"},
}

// requestSession is the session of a single request seen as a session
// source: it reports once, on subscribe.
type requestSession struct {
	session *identity.Session
}

func (rs requestSession) OnSessionChange(cb func(*identity.Session)) func() {
	cb(rs.session)
	return func() {}
}

type adminHandler func(w http.ResponseWriter, r *http.Request, session *identity.Session)

func (s *Site) currentSession(r *http.Request) *identity.Session {
	c, err := r.Cookie(auth.AccessCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	return s.sessions.Current(r.Context(), c.Value)
}

// guarded mounts the session guard for the requested admin view and only
// calls next when the guard keeps the visitor on it.
func (s *Site) guarded(next adminHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirected := false
		g := guard.Mount(requestSession{session: s.currentSession(r)}, r.URL.Path,
			guard.NavigatorFunc(func(to string) {
				redirected = true
				http.Redirect(w, r, to, http.StatusSeeOther)
			}))
		defer g.Teardown()
		if redirected {
			return
		}
		next(w, r, g.Session())
	}
}

func adminNotice(r *http.Request) *notice {
	if n, ok := adminNotices[r.URL.Query().Get("notice")]; ok {
		return &n
	}
	return nil
}

func redirectNotice(w http.ResponseWriter, r *http.Request, path, code string) {
	if code != "" {
		path += "?notice=" + url.QueryEscape(code)
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

type loginPage struct {
	Email  string
	Error  string
	Errors validation.FieldErrors
}

func (s *Site) loginPage(w http.ResponseWriter, r *http.Request, _ *identity.Session) {
	s.render(w, r, http.StatusOK, "admin_login", view{Title: "Admin Login", Bare: true, Data: loginPage{Errors: validation.FieldErrors{}}})
}

func (s *Site) login(w http.ResponseWriter, r *http.Request, _ *identity.Session) {
	log := s.logWithRequest(r)

	in := validation.LoginInput{Email: r.PostFormValue("email"), Password: r.PostFormValue("password")}
	if errs := s.val.Fields(in); !errs.Valid() {
		log.Warn("admin login: validation error")
		s.render(w, r, http.StatusBadRequest, "admin_login", view{Title: "Admin Login", Bare: true, Data: loginPage{Email: in.Email, Errors: errs}})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	session, tokens, err := s.sessions.Login(ctx, in.Email, in.Password)
	if err != nil {
		se := identity.AsSessionError(identity.OpLogin, err)
		log.Warn("admin login: rejected", slog.String("code", string(se.Code)))
		s.render(w, r, identity.StatusFor(se.Code), "admin_login", view{
			Title: "Admin Login",
			Bare:  true,
			Data:  loginPage{Email: in.Email, Error: se.Message(), Errors: validation.FieldErrors{}},
		})
		return
	}

	identity.SetAuthCookies(w, tokens, s.cookieSecure)
	log.Info("admin login: ok", slog.String("account_id", session.AccountID))
	http.Redirect(w, r, guard.DashboardView, http.StatusSeeOther)
}

func (s *Site) logout(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	if session := s.currentSession(r); session != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.sessions.Logout(ctx, *session); err != nil {
			log.Warn("admin logout: failed", slog.String("error", err.Error()))
		}
	}
	identity.ClearAuthCookies(w, s.cookieSecure)
	log.Info("admin logout: ok")
	http.Redirect(w, r, guard.LoginView, http.StatusSeeOther)
}

type leadRow struct {
	Lead      leads.Lead
	CSRFField template.HTML
	Return    string
	Statuses  []leads.Status
}

type leadTable struct {
	Title       string
	Empty       string
	Quotes      bool
	Unavailable bool
	Rows        []leadRow
}

type dashboardData struct {
	Session *identity.Session
	Stats   leads.Stats
	Tables  []leadTable
}

type detailData struct {
	Session   *identity.Session
	Row       leadRow
	ReplyLink string
}

type deleteData struct {
	Session *identity.Session
	Prompt  string
	Lead    leads.Lead
}

type settingsData struct {
	Session *identity.Session
	Error   string
	Errors  validation.FieldErrors
}

func (s *Site) row(r *http.Request, lead leads.Lead, ret string) leadRow {
	return leadRow{Lead: lead, CSRFField: s.csrfField(r), Return: ret, Statuses: statusOptions}
}

func (s *Site) loadDashboard(r *http.Request) (*dashboard.Dashboard, func()) {
	d := dashboard.New(s.store, s.logWithRequest(r))
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	d.Load(ctx)
	return d, func() {
		cancel()
		d.Close()
	}
}

func (s *Site) dashboardPage(w http.ResponseWriter, r *http.Request, session *identity.Session) {
	d, done := s.loadDashboard(r)
	defer done()

	tables := []leadTable{
		{Title: "Quote Requests", Empty: "quote requests", Quotes: true},
		{Title: "Enquiries", Empty: "enquiries"},
	}
	for i, kind := range []leads.Kind{leads.KindQuote, leads.KindEnquiry} {
		tables[i].Unavailable = d.Unavailable(kind)
		for _, l := range d.Items(kind) {
			tables[i].Rows = append(tables[i].Rows, s.row(r, l, guard.DashboardView))
		}
	}

	s.render(w, r, http.StatusOK, "admin_dashboard", view{
		Title:  "Admin Dashboard",
		Bare:   true,
		Notice: adminNotice(r),
		Data:   dashboardData{Session: session, Stats: d.Stats(), Tables: tables},
	})
}

// openLead loads the dashboard and opens the lead named by the URL.
func (s *Site) openLead(w http.ResponseWriter, r *http.Request) (leads.Lead, bool) {
	kind, err := leads.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.notFound(w, r)
		return leads.Lead{}, false
	}
	d, done := s.loadDashboard(r)
	defer done()
	if !d.OpenDetail(kind, chi.URLParam(r, "id")) {
		s.notFound(w, r)
		return leads.Lead{}, false
	}
	lead, ok := d.Detail()
	if !ok {
		s.notFound(w, r)
	}
	return lead, ok
}

func detailPath(kind leads.Kind, id string) string {
	return guard.DashboardView + "/" + string(kind) + "/" + url.PathEscape(id)
}

func (s *Site) detailPage(w http.ResponseWriter, r *http.Request, session *identity.Session) {
	lead, ok := s.openLead(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "admin_detail", view{
		Title:  lead.Name,
		Bare:   true,
		Notice: adminNotice(r),
		Data: detailData{
			Session:   session,
			Row:       s.row(r, lead, detailPath(lead.Kind, lead.ID)),
			ReplyLink: dashboard.ReplyLink(lead),
		},
	})
}

func (s *Site) changeStatus(w http.ResponseWriter, r *http.Request, _ *identity.Session) {
	log := s.logWithRequest(r)

	kind, err := leads.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.notFound(w, r)
		return
	}
	id := chi.URLParam(r, "id")
	status, err := leads.ParseStatus(r.PostFormValue("status"))
	if err != nil {
		log.Warn("admin status: invalid status")
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	back := r.PostFormValue("return")
	if !strings.HasPrefix(localPath(back, ""), guard.DashboardView) {
		back = guard.DashboardView
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	d := dashboard.New(s.store, log)
	defer d.Close()
	if err := d.ChangeStatus(ctx, kind, id, status); err != nil {
		code := "status-failed"
		if errors.Is(err, leads.ErrNotFound) {
			code, back = "not-found", guard.DashboardView
		}
		redirectNotice(w, r, localPath(back, guard.DashboardView), code)
		return
	}
	log.Info("admin status: ok", slog.String("kind", string(kind)), slog.String("lead_id", id), slog.String("status", string(status)))
	redirectNotice(w, r, localPath(back, guard.DashboardView), "")
}

func (s *Site) deleteConfirm(w http.ResponseWriter, r *http.Request, session *identity.Session) {
	lead, ok := s.openLead(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "admin_delete", view{
		Title: "Delete",
		Bare:  true,
		Data:  deleteData{Session: session, Prompt: dashboard.DeleteConfirmPrompt, Lead: lead},
	})
}

func (s *Site) deleteLead(w http.ResponseWriter, r *http.Request, _ *identity.Session) {
	log := s.logWithRequest(r)

	kind, err := leads.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.notFound(w, r)
		return
	}
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	d := dashboard.New(s.store, log)
	defer d.Close()
	deleted, err := d.Delete(ctx, kind, id, func() bool { return r.PostFormValue("confirm") == "yes" })
	switch {
	case errors.Is(err, leads.ErrNotFound):
		redirectNotice(w, r, guard.DashboardView, "not-found")
	case err != nil:
		redirectNotice(w, r, detailPath(kind, id), "delete-failed")
	case !deleted:
		redirectNotice(w, r, detailPath(kind, id), "")
	default:
		log.Info("admin delete: ok", slog.String("kind", string(kind)), slog.String("lead_id", id))
		redirectNotice(w, r, guard.DashboardView, "deleted")
	}
}

func (s *Site) settingsPage(w http.ResponseWriter, r *http.Request, session *identity.Session) {
	s.render(w, r, http.StatusOK, "admin_settings", view{
		Title:  "Settings",
		Bare:   true,
		Notice: adminNotice(r),
		Data:   settingsData{Session: session, Errors: validation.FieldErrors{}},
	})
}

func (s *Site) changePassword(w http.ResponseWriter, r *http.Request, session *identity.Session) {
	log := s.logWithRequest(r)

	in := validation.ChangePasswordInput{
		CurrentPassword: r.PostFormValue("currentPassword"),
		NewPassword:     r.PostFormValue("newPassword"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
	}
	if errs := s.val.Fields(in); !errs.Valid() {
		log.Warn("admin change-password: validation error")
		s.render(w, r, http.StatusBadRequest, "admin_settings", view{
			Title: "Settings",
			Bare:  true,
			Data:  settingsData{Session: session, Errors: errs},
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	next, tokens, err := s.sessions.ChangeCredential(ctx, session, in.CurrentPassword, in.NewPassword)
	if err != nil {
		se := identity.AsSessionError(identity.OpChange, err)
		log.Warn("admin change-password: rejected", slog.String("code", string(se.Code)))
		s.render(w, r, identity.StatusFor(se.Code), "admin_settings", view{
			Title: "Settings",
			Bare:  true,
			Data:  settingsData{Session: session, Error: se.Message(), Errors: validation.FieldErrors{}},
		})
		return
	}

	identity.SetAuthCookies(w, tokens, s.cookieSecure)
	log.Info("admin change-password: ok", slog.String("account_id", next.AccountID))
	redirectNotice(w, r, guard.DashboardView+"/settings", "password-changed")
}
