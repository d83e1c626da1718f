// Package stripe provides integration with the Stripe payment service,
// creating donation checkout sessions and acknowledging the payment events
// notified through webhooks.
package stripe

import (
	"fmt"

	"github.com/vocdoni/donations-backend/notifications"
)

// Service provides the main business logic for Stripe operations
type Service struct {
	client *Client
	mail   notifications.NotificationService
}

// NewService creates a new Stripe service. The mail service is optional,
// without it acknowledgements are only logged.
func NewService(client *Client, mail notifications.NotificationService) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("client is required")
	}
	return &Service{
		client: client,
		mail:   mail,
	}, nil
}

// Client returns the Stripe client used by the service.
func (s *Service) Client() *Client {
	return s.client
}
