package mailer

import (
	"errors"

	"github.com/oksasatya/devconnector-api/pkg/mailer/templates"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template (with Data) or Subject plus Text/HTML must be set.
type EmailJob struct {
	To       string              `json:"to"`
	Template string              `json:"template,omitempty"` // welcome, account_deleted
	Data     templates.EmailData `json:"data"`
	Subject  string              `json:"subject,omitempty"`
	Text     string              `json:"text,omitempty"`
	HTML     string              `json:"html,omitempty"`
}

var ErrEmptyJob = errors.New("email job has neither template nor body")

// Content renders the job into subject, text and html bodies.
func (j EmailJob) Content() (subject, text, html string, err error) {
	if j.To == "" {
		return "", "", "", errors.New("email job has no recipient")
	}
	if j.Template != "" {
		if j.Data.Email == "" {
			j.Data.Email = j.To
		}
		return templates.Render(j.Template, j.Data)
	}
	if j.Subject == "" || (j.Text == "" && j.HTML == "") {
		return "", "", "", ErrEmptyJob
	}
	return j.Subject, j.Text, j.HTML, nil
}
