package site

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/Shravan4507/ise-elevators-website/internal/events"
	"github.com/Shravan4507/ise-elevators-website/internal/utils"

	qrcode "github.com/skip2/go-qrcode"
)

func whatsAppQR() ([]byte, error) {
	return qrcode.Encode(WhatsAppURL(""), qrcode.Medium, 256)
}

func (s *Site) whatsAppCode(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(s.qr)
}

func (s *Site) goWhatsApp(w http.ResponseWriter, r *http.Request) {
	s.track(r, events.WhatsAppClicked, sourceLabel(r))
	http.Redirect(w, r, WhatsAppURL(r.URL.Query().Get("text")), http.StatusFound)
}

func (s *Site) goCall(w http.ResponseWriter, r *http.Request) {
	s.track(r, events.CallClicked, sourceLabel(r))
	http.Redirect(w, r, CallURL(), http.StatusFound)
}

// goQuote records a call-to-action click and opens the quote form,
// keeping a preselected elevator type.
func (s *Site) goQuote(w http.ResponseWriter, r *http.Request) {
	s.track(r, events.CTAClicked, sourceLabel(r))
	target := "/quote"
	if t := r.URL.Query().Get("type"); t != "" {
		target += "?" + url.Values{"type": {t}}.Encode()
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// sourceLabel names the page a click came from, if the browser says so.
// The root page is "home".
func sourceLabel(r *http.Request) string {
	from := r.URL.Query().Get("from")
	if from == "" {
		from = localPath(r.Referer(), "")
	}
	if from == "/" {
		return "home"
	}
	return utils.Slugify(from)
}

// localPath keeps only the path of a same-site URL, or returns fallback.
// The result is always safe to redirect to.
func localPath(raw, fallback string) string {
	if raw == "" {
		return fallback
	}
	if i := strings.Index(raw, "://"); i >= 0 {
		rest := raw[i+3:]
		slash := strings.Index(rest, "/")
		if slash < 0 {
			return "/"
		}
		raw = rest[slash:]
	}
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return fallback
	}
	// Browsers read "\" as "/" and drop tabs and newlines, which would turn
	// "/\host" or "/\t/host" into a scheme relative URL.
	if strings.ContainsFunc(raw, func(r rune) bool { return r == '\\' || r < 0x20 || r == 0x7f }) {
		return fallback
	}
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}

func (s *Site) updatePreferences(w http.ResponseWriter, r *http.Request) {
	p := ReadPreferences(r)
	switch {
	case r.PostFormValue("reset") == "1":
		p = DefaultPreferences()
	case r.PostFormValue("toggle") != "":
		p.Toggle(r.PostFormValue("toggle"))
	case r.PostFormValue("fontSize") != "":
		p.SetFontSize(r.PostFormValue("fontSize"))
	}
	writePreferences(w, p, s.cookieSecure)
	http.Redirect(w, r, localPath(r.PostFormValue("return"), "/"), http.StatusSeeOther)
}
