// Package notifications defines the notification delivery interface used to
// acknowledge donations.
package notifications

import "context"

// Notification is a plain text message addressed to a single recipient.
// ToName is optional, when present the recipient header includes it.
type Notification struct {
	ToName    string
	ToAddress string
	Subject   string
	PlainBody string
}

// NotificationService delivers notifications. SendNotification returns once
// the relay accepted the message, or with the relay error.
type NotificationService interface {
	Init(conf any) error
	SendNotification(context.Context, *Notification) error
}
