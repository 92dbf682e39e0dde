package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Shravan4507/ise-elevators-website/internal/config"
	"github.com/Shravan4507/ise-elevators-website/internal/leads"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func quoteLead() leads.Lead {
	return leads.Lead{
		ID:           "q1",
		Kind:         leads.KindQuote,
		Name:         "Suraj",
		Email:        "s@x.com",
		Phone:        "9876543210",
		ElevatorType: "Home Elevator",
		Floors:       "3",
		Status:       leads.StatusNew,
	}
}

func TestBuildLeadNotification(t *testing.T) {
	subject, body, err := buildLeadNotification(quoteLead())
	require.NoError(t, err)
	assert.Equal(t, "New quote request: Home Elevator (3 floors) from Suraj", subject)
	assert.Contains(t, body, "Number of floors:</strong> 3")

	enquiry := leads.Lead{ID: "e1", Kind: leads.KindEnquiry, Name: "Asha <script>", Email: "asha@example.in", Message: "Call me"}
	subject, body, err = buildLeadNotification(enquiry)
	require.NoError(t, err)
	assert.Equal(t, "New enquiry from Asha <script>", subject)
	assert.NotContains(t, body, "<script>")
	assert.NotContains(t, body, "Elevator type")
}

func TestBrevoSendLeadNotification(t *testing.T) {
	var got brevoSendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-123", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"messageId":"<m1@brevo>"}`))
	}))
	defer srv.Close()

	c := NewBrevoClient("key-123", "no-reply@iseelevators.in", "ISE Elevators", "iseelevator@gmail.com", true)
	c.endpoint = srv.URL

	id, err := c.SendLeadNotification(context.Background(), quoteLead())
	require.NoError(t, err)
	assert.Equal(t, "<m1@brevo>", id)
	require.Len(t, got.To, 1)
	assert.Equal(t, "iseelevator@gmail.com", got.To[0].Email)
	require.NotNil(t, got.ReplyTo)
	assert.Equal(t, "s@x.com", got.ReplyTo.Email)
	assert.Equal(t, "drop", got.Headers["X-Sib-Sandbox"])
	assert.Equal(t, []string{"lead", "quote"}, got.Tags)
}

func TestBrevoSplitsInbox(t *testing.T) {
	c := NewBrevoClient("key", "no-reply@iseelevators.in", "", " a@x.in, ,b@x.in ", false)
	require.NotNil(t, c)
	assert.Equal(t, []brevoRecipient{{Email: "a@x.in"}, {Email: "b@x.in"}}, c.inbox)
	assert.Equal(t, "no-reply@iseelevators.in", c.sender.Name)

	c = NewBrevoClient("key", "no-reply@iseelevators.in", "", "", false)
	_, err := c.SendLeadNotification(context.Background(), quoteLead())
	assert.ErrorIs(t, err, errNoInbox)

	assert.Nil(t, NewBrevoClient("", "no-reply@iseelevators.in", "", "a@x.in", false))
}

func TestBrevoSendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewBrevoClient("key", "no-reply@iseelevators.in", "", "iseelevator@gmail.com", false)
	c.endpoint = srv.URL
	_, err := c.SendLeadNotification(context.Background(), quoteLead())
	assert.ErrorContains(t, err, "status=401")
	var be *BrevoError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusUnauthorized, be.Status)
	assert.Equal(t, "bad key", be.Body)
}

type fakeSender struct {
	msgs []*gomail.Message
	err  error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	f.msgs = append(f.msgs, m...)
	return f.err
}

func TestSMTPMailer(t *testing.T) {
	sender := &fakeSender{}
	m := &SMTPMailer{sender: sender, from: "no-reply@iseelevators.in", inbox: "iseelevator@gmail.com"}

	id, err := m.SendLeadNotification(context.Background(), quoteLead())
	require.NoError(t, err)
	assert.Contains(t, id, "@iseelevators.in>")
	require.Len(t, sender.msgs, 1)
	assert.Equal(t, []string{"iseelevator@gmail.com"}, sender.msgs[0].GetHeader("To"))
	assert.Equal(t, []string{"s@x.com"}, sender.msgs[0].GetHeader("Reply-To"))

	sender.err = errors.New("connection refused")
	_, err = m.SendLeadNotification(context.Background(), quoteLead())
	assert.ErrorContains(t, err, "connection refused")
}

func TestFromConfig(t *testing.T) {
	n, name := FromConfig(&config.Config{})
	assert.Nil(t, n)
	assert.Equal(t, "disabled", name)

	_, name = FromConfig(&config.Config{SMTPHost: "smtp.example.in", SMTPPort: 587, NotifyEmail: "x@y.in"})
	assert.Equal(t, "smtp", name)

	_, name = FromConfig(&config.Config{BrevoAPIKey: "k", BrevoSenderEmail: "a@b.in", SMTPHost: "smtp.example.in"})
	assert.Equal(t, "brevo", name)
}
