package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Shravan4507/ise-elevators-website/internal/leads"
)

const defaultBrevoEndpoint = "https://api.brevo.com/v3/smtp/email"

var (
	errNoBrevoClient = errors.New("brevo client is nil")
	errNoInbox       = errors.New("no notification inbox configured")
)

// BrevoError is a non-2xx answer of the Brevo API.
type BrevoError struct {
	Status int
	Body   string
}

func (e *BrevoError) Error() string {
	return fmt.Sprintf("brevo send failed: status=%d body=%s", e.Status, e.Body)
}

// BrevoClient sends lead notifications to the company inbox through the
// Brevo transactional email API. inbox may list several comma separated
// addresses.
type BrevoClient struct {
	apiKey     string
	sender     brevoRecipient
	inbox      []brevoRecipient
	sandbox    bool
	endpoint   string
	httpClient *http.Client
}

func NewBrevoClient(apiKey, senderEmail, senderName, inbox string, sandbox bool) *BrevoClient {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(senderEmail) == "" {
		return nil
	}
	if strings.TrimSpace(senderName) == "" {
		senderName = senderEmail
	}
	return &BrevoClient{
		apiKey:     apiKey,
		sender:     brevoRecipient{Email: senderEmail, Name: senderName},
		inbox:      splitInbox(inbox),
		sandbox:    sandbox,
		endpoint:   defaultBrevoEndpoint,
		httpClient: &http.Client{Timeout: 8 * time.Second},
	}
}

func splitInbox(raw string) []brevoRecipient {
	var out []brevoRecipient
	for _, addr := range strings.Split(raw, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, brevoRecipient{Email: addr})
		}
	}
	return out
}

// SendLeadNotification mails the lead to the inbox with the visitor as
// reply-to and returns the Brevo message id.
func (c *BrevoClient) SendLeadNotification(ctx context.Context, lead leads.Lead) (string, error) {
	if c == nil {
		return "", errNoBrevoClient
	}
	if len(c.inbox) == 0 {
		return "", errNoInbox
	}
	subject, htmlBody, err := buildLeadNotification(lead)
	if err != nil {
		return "", err
	}

	msg := brevoSendRequest{
		Sender:      c.sender,
		To:          c.inbox,
		Subject:     subject,
		HtmlContent: htmlBody,
		Tags:        []string{"lead", string(lead.Kind)},
	}
	if strings.TrimSpace(lead.Email) != "" {
		msg.ReplyTo = &brevoRecipient{Email: lead.Email, Name: lead.Name}
	}
	if c.sandbox {
		msg.Headers = map[string]string{"X-Sib-Sandbox": "drop"}
	}
	return c.post(ctx, msg)
}

func (c *BrevoClient) post(ctx context.Context, msg brevoSendRequest) (string, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("brevo marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("brevo create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("brevo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &BrevoError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out struct {
		MessageID string `json:"messageId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("brevo decode response: %w", err)
	}
	if out.MessageID == "" {
		return "", errors.New("brevo response missing messageId")
	}
	return out.MessageID, nil
}

type brevoSendRequest struct {
	Sender      brevoRecipient    `json:"sender"`
	To          []brevoRecipient  `json:"to"`
	ReplyTo     *brevoRecipient   `json:"replyTo,omitempty"`
	Subject     string            `json:"subject"`
	HtmlContent string            `json:"htmlContent"`
	Tags        []string          `json:"tags,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
}

type brevoRecipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}
