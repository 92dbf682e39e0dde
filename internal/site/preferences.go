package site

import (
	"html/template"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const prefsCookie = "ise_prefs"

// Accessibility toggles and the class each one maps to on <body>.
var preferenceToggles = map[string]string{
	"highContrast":   "high-contrast",
	"highlightLinks": "highlight-links",
	"invert":         "invert-colors",
	"saturation":     "grayscale",
	"textSpacing":    "text-spacing",
	"lineHeight":     "line-height-increase",
	"hideImages":     "hide-images",
	"bigCursor":      "big-cursor",
}

const (
	FontNormal   = "normal"
	FontIncrease = "increase"
	FontDecrease = "decrease"
)

// Preferences is the visitor's accessibility state. It lives in a cookie
// and is only ever rendered, never applied from the server side.
type Preferences struct {
	Toggles  map[string]bool
	FontSize string
}

func DefaultPreferences() Preferences {
	return Preferences{Toggles: map[string]bool{}, FontSize: FontNormal}
}

func ReadPreferences(r *http.Request) Preferences {
	p := DefaultPreferences()
	c, err := r.Cookie(prefsCookie)
	if err != nil {
		return p
	}
	values, err := url.ParseQuery(c.Value)
	if err != nil {
		return p
	}
	for name := range preferenceToggles {
		if values.Get(name) == "1" {
			p.Toggles[name] = true
		}
	}
	switch fs := values.Get("fontSize"); fs {
	case FontIncrease, FontDecrease:
		p.FontSize = fs
	}
	return p
}

// Toggle flips a known toggle. Unknown names are ignored.
func (p *Preferences) Toggle(name string) bool {
	if _, ok := preferenceToggles[name]; !ok {
		return false
	}
	if p.Toggles == nil {
		p.Toggles = map[string]bool{}
	}
	p.Toggles[name] = !p.Toggles[name]
	return true
}

func (p *Preferences) SetFontSize(size string) bool {
	switch size {
	case FontNormal, FontIncrease, FontDecrease:
		p.FontSize = size
		return true
	}
	return false
}

func (p Preferences) Encode() string {
	values := url.Values{}
	for name, on := range p.Toggles {
		if on {
			values.Set(name, "1")
		}
	}
	if p.FontSize != "" && p.FontSize != FontNormal {
		values.Set("fontSize", p.FontSize)
	}
	return values.Encode()
}

// Classes lists the presentation classes of the active toggles in a stable order.
func (p Preferences) Classes() []string {
	var out []string
	for name, on := range p.Toggles {
		if on {
			out = append(out, preferenceToggles[name])
		}
	}
	switch p.FontSize {
	case FontIncrease:
		out = append(out, "font-size-increase")
	case FontDecrease:
		out = append(out, "font-size-decrease")
	}
	sort.Strings(out)
	return out
}

// Attr renders the body attribute; class names come from a fixed set.
func (p Preferences) Attr() template.HTMLAttr {
	classes := p.Classes()
	if len(classes) == 0 {
		return ""
	}
	return template.HTMLAttr(`class="` + strings.Join(classes, " ") + `"`)
}

func (p Preferences) On(name string) bool {
	return p.Toggles[name]
}

func writePreferences(w http.ResponseWriter, p Preferences, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     prefsCookie,
		Value:    p.Encode(),
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(365 * 24 * time.Hour),
	})
}
