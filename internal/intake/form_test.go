package intake

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Shravan4507/ise-elevators-website/internal/events"
	"github.com/Shravan4507/ise-elevators-website/internal/leads"
	"github.com/Shravan4507/ise-elevators-website/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmitter struct {
	mu    sync.Mutex
	calls []leads.Fields
	err   error
	gate  chan struct{}
}

func (f *fakeSubmitter) Create(_ context.Context, kind leads.Kind, fields leads.Fields) (leads.Lead, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fields)
	if f.err != nil {
		return leads.Lead{}, f.err
	}
	return leads.Lead{ID: "lead-1", Kind: kind, Name: fields.Name, Status: leads.StatusNew}, nil
}

func (f *fakeSubmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type trackerSpy struct {
	mu      sync.Mutex
	actions []string
}

func (s *trackerSpy) Track(_ context.Context, ev events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, ev.Action)
	return nil
}

func fillQuote(f *Form) {
	f.Set("name", "Suraj")
	f.Set("email", "s@x.com")
	f.Set("phone", "9876543210")
	f.Set("elevatorType", "Home Elevator")
	f.Set("floors", "3")
	f.Set("message", "")
}

func TestQuoteSubmitSuccess(t *testing.T) {
	tracker := &trackerSpy{}
	f := NewForm(leads.KindQuote, validation.New(), tracker, nil)
	fillQuote(f)
	sub := &fakeSubmitter{}

	require.NoError(t, f.Submit(context.Background(), sub))
	assert.Equal(t, Success, f.State())
	require.Equal(t, 1, sub.count())
	assert.Equal(t, "Home Elevator", sub.calls[0].ElevatorType)
	assert.Equal(t, []string{events.QuoteFormSubmitted}, tracker.actions)

	lead, ok := f.Created()
	require.True(t, ok)
	assert.Equal(t, leads.StatusNew, lead.Status)

	assert.False(t, f.Set("name", "Someone else"), "edits are locked after success")
	assert.ErrorIs(t, f.Submit(context.Background(), sub), ErrAlreadySubmitted)
	assert.Equal(t, 1, sub.count())

	f.Reset()
	assert.Equal(t, Editing, f.State())
	assert.Equal(t, leads.Fields{}, f.Values())
}

func TestQuoteSubmitValidationMakesNoCall(t *testing.T) {
	f := NewForm(leads.KindQuote, validation.New(), nil, nil)
	fillQuote(f)
	f.Set("name", "A")
	sub := &fakeSubmitter{}

	err := f.Submit(context.Background(), sub)
	var fieldErrs validation.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "Name must be at least 2 characters", fieldErrs["name"])
	assert.Equal(t, EditingWithErrors, f.State())
	assert.Equal(t, 0, sub.count())

	f.Set("name", "Suraj")
	assert.Empty(t, f.Errors()["name"], "editing a field clears its error")
	require.NoError(t, f.Submit(context.Background(), sub))
	assert.Equal(t, 1, sub.count())
}

func TestSubmitFailureKeepsValues(t *testing.T) {
	f := NewForm(leads.KindEnquiry, validation.New(), nil, nil)
	f.Set("name", "Asha")
	f.Set("email", "asha@example.in")
	f.Set("message", "Please call me back about AMC.")
	sub := &fakeSubmitter{err: errors.New("store down")}

	err := f.Submit(context.Background(), sub)
	assert.EqualError(t, err, "store down")
	assert.Equal(t, Editing, f.State())
	assert.Equal(t, "Failed to submit enquiry. Please try again.", f.Notice())
	assert.Equal(t, "Asha", f.Values().Name)

	sub.err = nil
	require.NoError(t, f.Submit(context.Background(), sub))
	assert.Equal(t, 2, sub.count())
}

func TestSubmitWhileSubmittingIsRejected(t *testing.T) {
	f := NewForm(leads.KindQuote, validation.New(), nil, nil)
	fillQuote(f)
	sub := &fakeSubmitter{gate: make(chan struct{})}

	done := make(chan error, 1)
	go func() { done <- f.Submit(context.Background(), sub) }()

	assert.Eventually(t, func() bool { return f.State() == Submitting }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, f.Submit(context.Background(), sub), ErrSubmitting)
	assert.False(t, f.Set("name", "Other"))

	close(sub.gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, sub.count())
}

func TestEnquiryIgnoresQuoteFields(t *testing.T) {
	f := NewForm(leads.KindEnquiry, validation.New(), nil, nil)
	assert.False(t, f.Set("floors", "3"))
	assert.False(t, f.Set("status", "replied"))
	assert.Empty(t, f.Values().Floors)
}

// stateReadingTracker reads the form from inside Track, as a slow network
// tracker would let other requests do.
type stateReadingTracker struct {
	form *Form
	seen State
	ok   bool
}

func (s *stateReadingTracker) Track(_ context.Context, _ events.Event) error {
	done := make(chan State, 1)
	go func() { done <- s.form.State() }()
	select {
	case st := <-done:
		s.seen, s.ok = st, true
	case <-time.After(time.Second):
	}
	return nil
}

func TestTrackingRunsOutsideFormLock(t *testing.T) {
	tracker := &stateReadingTracker{}
	f := NewForm(leads.KindQuote, validation.New(), tracker, nil)
	tracker.form = f
	fillQuote(f)

	require.NoError(t, f.Submit(context.Background(), &fakeSubmitter{}))
	require.True(t, tracker.ok, "form state readable while the event is sent")
	assert.Equal(t, Success, tracker.seen)
}
