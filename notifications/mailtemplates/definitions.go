// Package mailtemplates provides the email sent to acknowledge a donation,
// along with utilities for rendering email content.
package mailtemplates

import "github.com/vocdoni/donations-backend/notifications"

const genericSalutation = "friend"

// ThankYouNotification is the notification sent when a one-off donation is
// charged or a monthly donation subscription is created.
var ThankYouNotification = MailTemplate{
	Name: "thank_you",
	Placeholder: notifications.Notification{
		Subject: "Thank you",
		PlainBody: `Dear {{.Salutation}},

Thank you for your {{if .IsMonthly}}monthly {{end}}donation in support of Our World in Data. Your generosity keeps our research and data free and accessible to everyone.
{{- if .IsMonthly}}

You can cancel your recurring donation at any time by replying to this email.
{{- end}}
{{- if .ShowOnList}}

As you requested, your name will be included in the public list of our supporters.
{{- end}}

Kind regards,
The Our World in Data team
`,
	},
}
