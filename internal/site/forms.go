package site

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/Shravan4507/ise-elevators-website/internal/events"
	"github.com/Shravan4507/ise-elevators-website/internal/intake"
	"github.com/Shravan4507/ise-elevators-website/internal/leads"
	"github.com/Shravan4507/ise-elevators-website/internal/validation"
)

var formFields = map[leads.Kind][]string{
	leads.KindQuote:   {"name", "email", "phone", "elevatorType", "floors", "message"},
	leads.KindEnquiry: {"name", "email", "phone", "message"},
}

type formView struct {
	Values  leads.Fields
	Errors  validation.FieldErrors
	Success bool
}

type formPage struct {
	Copy          template.HTML
	Form          formView
	ElevatorTypes []string
}

func (s *Site) contactForm(w http.ResponseWriter, r *http.Request) {
	s.track(r, events.PageViewed, "/contact")
	s.render(w, r, http.StatusOK, "contact", view{
		Title: "Contact",
		Data:  formPage{Copy: s.copy["contact"], Form: formView{Errors: validation.FieldErrors{}}},
	})
}

func (s *Site) quoteForm(w http.ResponseWriter, r *http.Request) {
	s.track(r, events.QuoteFormOpened, r.URL.Query().Get("type"))

	var values leads.Fields
	if t := r.URL.Query().Get("type"); isElevatorType(t) {
		values.ElevatorType = t
	}
	s.render(w, r, http.StatusOK, "quote", view{
		Title: "Get a Quote",
		Data: formPage{
			Form:          formView{Values: values, Errors: validation.FieldErrors{}},
			ElevatorTypes: leads.ElevatorTypes,
		},
	})
}

func isElevatorType(value string) bool {
	for _, t := range leads.ElevatorTypes {
		if t == value {
			return true
		}
	}
	return false
}

func (s *Site) submitContact(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, leads.KindEnquiry, "contact", "Contact")
}

func (s *Site) submitQuote(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, leads.KindQuote, "quote", "Get a Quote")
}

// submit drives one intake.Form through a POST: fill, validate, create once.
func (s *Site) submit(w http.ResponseWriter, r *http.Request, kind leads.Kind, page, title string) {
	log := s.logWithRequest(r)

	if err := r.ParseForm(); err != nil {
		log.Warn(kind.Collection()+" form: invalid body", slog.String("error", err.Error()))
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	form := intake.NewForm(kind, s.val, s.tracker, log)
	for _, field := range formFields[kind] {
		form.Set(field, r.PostFormValue(field))
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	err := form.Submit(ctx, s.store)
	data := formPage{
		Copy:          s.copy["contact"],
		Form:          formView{Values: form.Values(), Errors: form.Errors()},
		ElevatorTypes: leads.ElevatorTypes,
	}

	var fieldErrs validation.FieldErrors
	switch {
	case err == nil:
		lead, _ := form.Created()
		log.Info(kind.Collection()+" form: submitted", slog.String("lead_id", lead.ID))
		data.Form.Success = true
		s.render(w, r, http.StatusOK, page, view{Title: title, Notice: &notice{Text: form.Notice()}, Data: data})
	case errors.As(err, &fieldErrs):
		log.Warn(kind.Collection() + " form: validation error")
		s.render(w, r, http.StatusBadRequest, page, view{Title: title, Data: data})
	default:
		log.Error(kind.Collection()+" form: create failed", slog.String("error", err.Error()))
		s.render(w, r, http.StatusServiceUnavailable, page, view{Title: title, Notice: &notice{Text: form.Notice(), Error: true}, Data: data})
	}
}
