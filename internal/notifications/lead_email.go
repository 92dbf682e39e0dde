package notifications

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/Shravan4507/ise-elevators-website/internal/leads"
)

const leadNotificationTemplate = `<!DOCTYPE html>
<html>
<body>
  <h3>{{if eq .Kind "quote"}}New quote request{{else}}New enquiry{{end}}</h3>
  <p><strong>Name:</strong> {{.Name}}</p>
  <p><strong>Email:</strong> <a href="mailto:{{.Email}}">{{.Email}}</a></p>
  <p><strong>Phone:</strong> {{if .Phone}}<a href="tel:{{.Phone}}">{{.Phone}}</a>{{else}}-{{end}}</p>
  {{- if eq .Kind "quote"}}
  <p><strong>Elevator type:</strong> {{.ElevatorType}}</p>
  <p><strong>Number of floors:</strong> {{.Floors}}</p>
  {{- end}}
  <p><strong>ID:</strong> {{.ID}}</p>
  <p><strong>Message:</strong><br/>{{if .Message}}{{.Message}}{{else}}-{{end}}</p>
</body>
</html>`

var leadNotificationTmpl = template.Must(template.New("lead_notification").Parse(leadNotificationTemplate))

func buildLeadNotification(lead leads.Lead) (string, string, error) {
	var buf bytes.Buffer
	if err := leadNotificationTmpl.Execute(&buf, lead); err != nil {
		return "", "", err
	}
	subject := fmt.Sprintf("New enquiry from %s", lead.Name)
	if lead.Kind == leads.KindQuote {
		subject = fmt.Sprintf("New quote request: %s (%s floors) from %s", lead.ElevatorType, lead.Floors, lead.Name)
	}
	return subject, buf.String(), nil
}
