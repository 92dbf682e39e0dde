package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	QuoteFormOpened      = "quote_form_opened"
	QuoteFormSubmitted   = "quote_form_submitted"
	ContactFormSubmitted = "contact_form_submitted"
	CTAClicked           = "cta_clicked"
	WhatsAppClicked      = "whatsapp_clicked"
	CallClicked          = "call_clicked"
	ProductViewed        = "product_viewed"
	PageViewed           = "page_viewed"
	LeadCreated          = "lead_created"
)

var categories = map[string]string{
	QuoteFormOpened:      "Engagement",
	QuoteFormSubmitted:   "Conversion",
	ContactFormSubmitted: "Conversion",
	CTAClicked:           "Engagement",
	WhatsAppClicked:      "Contact",
	CallClicked:          "Contact",
	ProductViewed:        "Products",
	PageViewed:           "Navigation",
	LeadCreated:          "Leads",
}

type Event struct {
	ID       string    `json:"id"`
	Action   string    `json:"action"`
	Category string    `json:"category"`
	Label    string    `json:"label,omitempty"`
	At       time.Time `json:"at"`
}

func New(action, label string) Event {
	category, ok := categories[action]
	if !ok {
		category = "Other"
	}
	return Event{
		ID:       uuid.NewString(),
		Action:   action,
		Category: category,
		Label:    label,
		At:       time.Now().UTC(),
	}
}

// Tracker records user facing events. Implementations must not block the
// caller for long and never fail the surrounding operation.
type Tracker interface {
	Track(ctx context.Context, ev Event) error
}

type LogTracker struct {
	log *slog.Logger
}

func NewLogTracker(log *slog.Logger) *LogTracker {
	return &LogTracker{log: log}
}

func (t *LogTracker) Track(_ context.Context, ev Event) error {
	t.log.Info("event",
		slog.String("event_id", ev.ID),
		slog.String("action", ev.Action),
		slog.String("category", ev.Category),
		slog.String("label", ev.Label),
	)
	return nil
}

type Nop struct{}

func (Nop) Track(context.Context, Event) error { return nil }

// Emit tracks ev and only logs a failure.
func Emit(ctx context.Context, t Tracker, log *slog.Logger, action, label string) {
	if t == nil {
		return
	}
	ev := New(action, label)
	if err := t.Track(ctx, ev); err != nil && log != nil {
		log.Warn("event: track failed",
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
	}
}
