// Package test provides testing utilities for the donations backend: a
// MailHog container for the mail relay and a fake of the Stripe API.
package test

import (
	"context"
	"fmt"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// MailSMTPPort is the SMTP port used by the mail test container.
	MailSMTPPort = nat.Port("1025/tcp")
	// MailAPIPort is the API port used by the mail test container.
	MailAPIPort = nat.Port("8025/tcp")
)

// StartMailService starts a MailHog container for testing email functionality.
// It returns the container and any error encountered during startup.
func StartMailService(ctx context.Context) (testcontainers.Container, error) {
	container, err := testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "mailhog/mailhog",
				ExposedPorts: []string{string(MailSMTPPort), string(MailAPIPort)},
				WaitingFor:   wait.ForListeningPort(MailSMTPPort),
			},
			Started: true,
		})
	if err != nil {
		return nil, fmt.Errorf("could not start mail container: %w", err)
	}
	return container, nil
}
