package mailtemplates

import (
	"bytes"
	"fmt"
	"strings"
	texttemplate "text/template"

	"github.com/vocdoni/donations-backend/notifications"
)

// MailTemplate struct represents an email template. The notification
// placeholder includes the subject and the plain body templates, both
// executed with the data provided to ExecTemplate.
type MailTemplate struct {
	Name        string
	Placeholder notifications.Notification
}

// ExecTemplate executes the subject and plain body templates with the data
// provided and returns the resulting notification. The recipient fields are
// left empty.
func (mt MailTemplate) ExecTemplate(data any) (*notifications.Notification, error) {
	subject, err := execText(mt.Name+"_subject", mt.Placeholder.Subject, data)
	if err != nil {
		return nil, fmt.Errorf("could not execute %s subject: %w", mt.Name, err)
	}
	body, err := execText(mt.Name+"_body", mt.Placeholder.PlainBody, data)
	if err != nil {
		return nil, fmt.Errorf("could not execute %s body: %w", mt.Name, err)
	}
	return &notifications.Notification{
		Subject:   subject,
		PlainBody: body,
	}, nil
}

func execText(name, text string, data any) (string, error) {
	if text == "" {
		return "", nil
	}
	tmpl, err := texttemplate.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", err
	}
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// EmailOptions are the details of a donation acknowledgement, assembled
// from a webhook event.
type EmailOptions struct {
	Email      string
	Name       string
	ShowOnList bool
	IsMonthly  bool
}

// Salutation returns the donor name or a generic salutation when the donor
// did not provide one.
func (o EmailOptions) Salutation() string {
	if name := strings.TrimSpace(o.Name); name != "" {
		return name
	}
	return genericSalutation
}

// ThankYou renders the acknowledgement email for the donation described by
// opts, addressed to the donor.
func ThankYou(opts EmailOptions) (*notifications.Notification, error) {
	n, err := ThankYouNotification.ExecTemplate(opts)
	if err != nil {
		return nil, err
	}
	n.ToAddress = opts.Email
	n.ToName = strings.TrimSpace(opts.Name)
	return n, nil
}
