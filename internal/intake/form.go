package intake

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/Shravan4507/ise-elevators-website/internal/events"
	"github.com/Shravan4507/ise-elevators-website/internal/leads"
	"github.com/Shravan4507/ise-elevators-website/internal/validation"
)

type State int

const (
	Editing State = iota
	Submitting
	Success
	EditingWithErrors
)

func (s State) String() string {
	switch s {
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case EditingWithErrors:
		return "editing-with-errors"
	default:
		return "editing"
	}
}

var (
	ErrSubmitting       = errors.New("submission already in progress")
	ErrAlreadySubmitted = errors.New("form already submitted")
)

// Submitter persists a validated lead.
type Submitter interface {
	Create(ctx context.Context, kind leads.Kind, fields leads.Fields) (leads.Lead, error)
}

type copyText struct {
	failure   string
	success   string
	submitted string
}

var texts = map[leads.Kind]copyText{
	leads.KindQuote: {
		failure:   "Failed to submit quote. Please try again.",
		success:   "Quote request submitted successfully!",
		submitted: events.QuoteFormSubmitted,
	},
	leads.KindEnquiry: {
		failure:   "Failed to submit enquiry. Please try again.",
		success:   "Your enquiry has been submitted successfully!",
		submitted: events.ContactFormSubmitted,
	},
}

// Form is the state of one quote or enquiry form.
type Form struct {
	mu      sync.Mutex
	kind    leads.Kind
	val     *validation.Validator
	tracker events.Tracker
	log     *slog.Logger
	values  leads.Fields
	errs    validation.FieldErrors
	state   State
	notice  string
	created leads.Lead
}

func NewForm(kind leads.Kind, val *validation.Validator, tracker events.Tracker, log *slog.Logger) *Form {
	if log == nil {
		log = slog.Default()
	}
	return &Form{
		kind:    kind,
		val:     val,
		tracker: tracker,
		log:     log,
		errs:    validation.FieldErrors{},
	}
}

func (f *Form) Kind() leads.Kind { return f.kind }

func (f *Form) locked() bool {
	return f.state == Submitting || f.state == Success
}

// Set updates one field and clears its error. Edits are ignored while the
// form is submitting or after it succeeded; unknown fields are ignored too.
func (f *Form) Set(field, value string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.locked() {
		return false
	}
	switch field {
	case "name":
		f.values.Name = value
	case "email":
		f.values.Email = value
	case "phone":
		f.values.Phone = value
	case "message":
		f.values.Message = value
	case "elevatorType":
		if f.kind != leads.KindQuote {
			return false
		}
		f.values.ElevatorType = value
	case "floors":
		if f.kind != leads.KindQuote {
			return false
		}
		f.values.Floors = value
	default:
		return false
	}
	delete(f.errs, field)
	return true
}

func (f *Form) Values() leads.Fields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

func (f *Form) Errors() validation.FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(validation.FieldErrors, len(f.errs))
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Notice is the transient message of the last submit, if any.
func (f *Form) Notice() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notice
}

// Created returns the stored lead once the form succeeded.
func (f *Form) Created() (leads.Lead, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created, f.state == Success
}

func (f *Form) validate() validation.FieldErrors {
	v := f.values
	if f.kind == leads.KindQuote {
		return f.val.Fields(validation.QuoteInput{
			Name:         v.Name,
			Email:        v.Email,
			Phone:        v.Phone,
			ElevatorType: v.ElevatorType,
			Floors:       v.Floors,
			Message:      v.Message,
		})
	}
	return f.val.Fields(validation.EnquiryInput{
		Name:    v.Name,
		Email:   v.Email,
		Phone:   v.Phone,
		Message: v.Message,
	})
}

// Submit validates every field and, if all pass, makes exactly one Create
// call. Validation failures are returned as validation.FieldErrors without
// reaching sub. A failed Create keeps the values and sets a notice.
func (f *Form) Submit(ctx context.Context, sub Submitter) error {
	f.mu.Lock()
	switch f.state {
	case Submitting:
		f.mu.Unlock()
		return ErrSubmitting
	case Success:
		f.mu.Unlock()
		return ErrAlreadySubmitted
	}

	errs := f.validate()
	if !errs.Valid() {
		f.errs = errs
		f.state = EditingWithErrors
		f.notice = ""
		f.mu.Unlock()
		return errs
	}

	f.errs = validation.FieldErrors{}
	f.state = Submitting
	f.notice = ""
	values := f.values
	f.mu.Unlock()

	lead, err := sub.Create(ctx, f.kind, values)

	f.mu.Lock()
	if err != nil {
		f.state = Editing
		f.notice = texts[f.kind].failure
		f.mu.Unlock()
		f.log.Warn(f.kind.Collection()+" form: submit failed", slog.String("error", err.Error()))
		return err
	}
	f.state = Success
	f.created = lead
	f.notice = texts[f.kind].success
	f.mu.Unlock()

	// The tracker may publish over the network; the form stays readable meanwhile.
	events.Emit(ctx, f.tracker, f.log, texts[f.kind].submitted, "")
	return nil
}

// Reset returns to an empty form in the editing state.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = leads.Fields{}
	f.errs = validation.FieldErrors{}
	f.state = Editing
	f.notice = ""
	f.created = leads.Lead{}
}
