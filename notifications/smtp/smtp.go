// Package smtp provides an SMTP-based implementation of the NotificationService interface
// for sending email notifications.
package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"github.com/vocdoni/donations-backend/notifications"
)

const (
	// implicitTLSPort is the submission port that expects TLS from the first
	// byte instead of STARTTLS.
	implicitTLSPort = 465

	// DefaultFromName and DefaultFromAddress are the sender used when the
	// configuration does not set one.
	DefaultFromName    = "Our World in Data"
	DefaultFromAddress = "donate@ourworldindata.org"
)

// Config represents the configuration for the SMTP email service. It
// contains the sender's name, address, SMTP username, password, server and
// port. RequireTLS makes the delivery fail when the server does not offer
// STARTTLS. The TestAPIPort is used to define the port of the API service
// used for testing the email service locally to check messages (for example
// using MailHog).
type Config struct {
	FromName     string
	FromAddress  string
	SMTPUsername string
	SMTPPassword string
	SMTPServer   string
	SMTPPort     int
	RequireTLS   bool
	TestAPIPort  int
}

// Email is the implementation of the NotificationService interface for the
// SMTP email service. It contains the configuration and the SMTP auth. It uses
// the net/smtp package to send emails.
type Email struct {
	config *Config
	auth   smtp.Auth
}

// Init initializes the SMTP email service with the configuration. It sets the
// SMTP auth if the username and password are provided and falls back to the
// default sender when no from address is set. It returns an error if the
// configuration is invalid or if the from email could not be parsed.
func (se *Email) Init(rawConfig any) error {
	// parse configuration
	config, ok := rawConfig.(*Config)
	if !ok {
		return fmt.Errorf("invalid SMTP configuration")
	}
	if config.SMTPServer == "" || config.SMTPPort == 0 {
		return fmt.Errorf("SMTP server and port are required")
	}
	if config.FromAddress == "" {
		config.FromAddress = DefaultFromAddress
		if config.FromName == "" {
			config.FromName = DefaultFromName
		}
	}
	// parse from email
	if _, err := mail.ParseAddress(config.FromAddress); err != nil {
		return fmt.Errorf("could not parse from email: %v", err)
	}
	// set configuration in struct
	se.config = config
	// init SMTP auth
	if se.config.SMTPUsername != "" && se.config.SMTPPassword != "" {
		se.auth = smtp.PlainAuth("", se.config.SMTPUsername, se.config.SMTPPassword, se.config.SMTPServer)
	}
	return nil
}

// SendNotification sends an email notification to the recipient. It composes
// the email body with the notification data and sends it using the SMTP
// server. It returns when the server accepted the message or with the first
// error of the SMTP dialog.
func (se *Email) SendNotification(ctx context.Context, notification *notifications.Notification) error {
	// compose email body
	body, err := se.composeBody(notification)
	if err != nil {
		return fmt.Errorf("could not compose email body: %v", err)
	}
	// create a channel to handle errors
	errCh := make(chan error, 1)
	go func() {
		errCh <- se.send(ctx, notification.ToAddress, body)
		close(errCh)
	}()
	// wait for the message to be sent or the context to be done
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// send runs the SMTP dialog: connect, upgrade to TLS, authenticate and
// submit the message.
func (se *Email) send(ctx context.Context, to string, body []byte) error {
	server := net.JoinHostPort(se.config.SMTPServer, strconv.Itoa(se.config.SMTPPort))
	tlsConfig := &tls.Config{ServerName: se.config.SMTPServer, MinVersion: tls.VersionTLS12}

	dialer := &net.Dialer{Timeout: 30 * time.Second}
	var conn net.Conn
	var err error
	if se.config.SMTPPort == implicitTLSPort {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsConfig}).DialContext(ctx, "tcp", server)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", server)
	}
	if err != nil {
		return fmt.Errorf("could not connect to %s: %w", server, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, se.config.SMTPServer)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("could not start SMTP session: %w", err)
	}
	defer func() {
		_ = client.Close()
	}()

	if se.config.SMTPPort != implicitTLSPort {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				return fmt.Errorf("could not start TLS: %w", err)
			}
		} else if se.config.RequireTLS {
			return fmt.Errorf("SMTP server %s does not support STARTTLS", server)
		}
	}
	if se.auth != nil {
		if err := client.Auth(se.auth); err != nil {
			return fmt.Errorf("could not authenticate: %w", err)
		}
	}
	if err := client.Mail(se.config.FromAddress); err != nil {
		return fmt.Errorf("sender rejected: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("recipient rejected: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("could not start data: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("could not write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("message rejected: %w", err)
	}
	return client.Quit()
}

// composeBody creates the email with the notification data: the headers
// followed by the plain text body. The recipient header includes the
// recipient name when present.
func (se *Email) composeBody(notification *notifications.Notification) ([]byte, error) {
	to, err := recipient(notification)
	if err != nil {
		return nil, err
	}
	fromAddr := mail.Address{Name: se.config.FromName, Address: se.config.FromAddress}

	var email bytes.Buffer
	email.WriteString(fmt.Sprintf("From: %s\r\n", fromAddr.String()))
	email.WriteString(fmt.Sprintf("To: %s\r\n", to))
	email.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", notification.Subject)))
	email.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z)))
	email.WriteString("MIME-Version: 1.0\r\n")
	email.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	email.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	email.WriteString("\r\n") // blank line between headers and body
	email.Write(bytes.ReplaceAll(normalizeNewlines([]byte(notification.PlainBody)), []byte("\n"), []byte("\r\n")))
	return email.Bytes(), nil
}

// recipient returns the To header value, "Name <email>" when the name is
// known and the bare address otherwise.
func recipient(notification *notifications.Notification) (string, error) {
	to, err := mail.ParseAddress(notification.ToAddress)
	if err != nil {
		return "", fmt.Errorf("could not parse to email: %v", err)
	}
	if notification.ToName == "" {
		return to.Address, nil
	}
	return (&mail.Address{Name: notification.ToName, Address: to.Address}).String(), nil
}

func normalizeNewlines(b []byte) []byte {
	return bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
}
