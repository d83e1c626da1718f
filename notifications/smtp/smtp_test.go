package smtp

import (
	"context"
	"net"
	"net/textproto"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/testcontainers/testcontainers-go"
	"github.com/vocdoni/donations-backend/notifications"
	"github.com/vocdoni/donations-backend/test"
)

const testFromAddress = "donate@example.org"

// fakeRelay is a minimal SMTP relay that accepts a single session. It never
// offers STARTTLS and stores the last message received.
type fakeRelay struct {
	port     int
	received chan string
}

func startFakeRelay(c *qt.C) *fakeRelay {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	c.Assert(err, qt.IsNil)
	c.Cleanup(func() { _ = l.Close() })
	relay := &fakeRelay{
		port:     l.Addr().(*net.TCPAddr).Port,
		received: make(chan string, 1),
	}
	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()
		tp := textproto.NewConn(conn)
		_ = tp.PrintfLine("220 localhost ESMTP")
		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			switch cmd := strings.ToUpper(line); {
			case strings.HasPrefix(cmd, "EHLO"):
				_ = tp.PrintfLine("250-localhost")
				_ = tp.PrintfLine("250 8BITMIME")
			case strings.HasPrefix(cmd, "DATA"):
				_ = tp.PrintfLine("354 go ahead")
				data, err := tp.ReadDotBytes()
				if err != nil {
					return
				}
				relay.received <- string(data)
				_ = tp.PrintfLine("250 queued")
			case strings.HasPrefix(cmd, "QUIT"):
				_ = tp.PrintfLine("221 bye")
				return
			default:
				_ = tp.PrintfLine("250 ok")
			}
		}
	}()
	return relay
}

func newTestEmail(c *qt.C, port int, requireTLS bool) *Email {
	email := new(Email)
	c.Assert(email.Init(&Config{
		FromName:    "Our World in Data",
		FromAddress: testFromAddress,
		SMTPServer:  "127.0.0.1",
		SMTPPort:    port,
		RequireTLS:  requireTLS,
	}), qt.IsNil)
	return email
}

func TestInit(t *testing.T) {
	c := qt.New(t)

	c.Assert(new(Email).Init("nope"), qt.ErrorMatches, "invalid SMTP configuration")
	c.Assert(new(Email).Init(&Config{FromAddress: testFromAddress}), qt.ErrorMatches, "SMTP server and port are required")
	c.Assert(new(Email).Init(&Config{SMTPServer: "localhost", SMTPPort: 587, FromAddress: "not an email"}),
		qt.ErrorMatches, "could not parse from email: .*")

	email := new(Email)
	c.Assert(email.Init(&Config{
		SMTPServer:   "localhost",
		SMTPPort:     587,
		FromAddress:  testFromAddress,
		SMTPUsername: "user",
		SMTPPassword: "pass",
	}), qt.IsNil)
	c.Assert(email.auth, qt.Not(qt.IsNil))

	// only the relay settings, the sender falls back to the default one
	email = new(Email)
	c.Assert(email.Init(&Config{
		SMTPServer:   "smtp.example.org",
		SMTPPort:     587,
		SMTPUsername: "user",
		SMTPPassword: "pass",
		RequireTLS:   true,
	}), qt.IsNil)
	c.Assert(email.config.FromAddress, qt.Equals, DefaultFromAddress)
	c.Assert(email.config.FromName, qt.Equals, DefaultFromName)
	body, err := email.composeBody(&notifications.Notification{ToAddress: "ada@example.com", Subject: "Thank you"})
	c.Assert(err, qt.IsNil)
	c.Assert(string(body), qt.Contains, "From: \"Our World in Data\" <donate@ourworldindata.org>\r\n")
}

func TestComposeBody(t *testing.T) {
	c := qt.New(t)
	email := newTestEmail(c, 587, true)

	body, err := email.composeBody(&notifications.Notification{
		ToName:    "Ada Lovelace",
		ToAddress: "ada@example.com",
		Subject:   "Thank you",
		PlainBody: "Dear Ada,\n\nThanks.\n",
	})
	c.Assert(err, qt.IsNil)
	msg := string(body)
	c.Assert(msg, qt.Contains, "From: \"Our World in Data\" <donate@example.org>\r\n")
	c.Assert(msg, qt.Contains, "To: \"Ada Lovelace\" <ada@example.com>\r\n")
	c.Assert(msg, qt.Contains, "Subject: Thank you\r\n")
	c.Assert(msg, qt.Contains, "Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	c.Assert(strings.HasSuffix(msg, "\r\n\r\nDear Ada,\r\n\r\nThanks.\r\n"), qt.IsTrue)

	body, err = email.composeBody(&notifications.Notification{
		ToAddress: "donor@example.com",
		Subject:   "Thank you",
	})
	c.Assert(err, qt.IsNil)
	c.Assert(string(body), qt.Contains, "To: donor@example.com\r\n")

	_, err = email.composeBody(&notifications.Notification{ToAddress: "broken"})
	c.Assert(err, qt.ErrorMatches, "could not parse to email: .*")
}

func TestSendNotification(t *testing.T) {
	c := qt.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c.Run("Delivered", func(c *qt.C) {
		relay := startFakeRelay(c)
		email := newTestEmail(c, relay.port, false)
		err := email.SendNotification(ctx, &notifications.Notification{
			ToName:    "Ada",
			ToAddress: "ada@example.com",
			Subject:   "Thank you",
			PlainBody: "Dear Ada,",
		})
		c.Assert(err, qt.IsNil)
		msg := <-relay.received
		c.Assert(msg, qt.Contains, "To: \"Ada\" <ada@example.com>")
		c.Assert(msg, qt.Contains, "Dear Ada,")
	})

	c.Run("TLSRequired", func(c *qt.C) {
		relay := startFakeRelay(c)
		email := newTestEmail(c, relay.port, true)
		err := email.SendNotification(ctx, &notifications.Notification{
			ToAddress: "ada@example.com",
			Subject:   "Thank you",
		})
		c.Assert(err, qt.ErrorMatches, ".*does not support STARTTLS")
	})

	c.Run("RelayUnreachable", func(c *qt.C) {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		c.Assert(err, qt.IsNil)
		port := l.Addr().(*net.TCPAddr).Port
		c.Assert(l.Close(), qt.IsNil)

		email := newTestEmail(c, port, false)
		err = email.SendNotification(ctx, &notifications.Notification{ToAddress: "ada@example.com"})
		c.Assert(err, qt.ErrorMatches, "could not connect to .*")
	})
}

func TestSendNotificationMailHog(t *testing.T) {
	testcontainers.SkipIfProviderIsNotHealthy(t)
	c := qt.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := test.StartMailService(ctx)
	c.Assert(err, qt.IsNil)
	defer func() { _ = container.Terminate(context.Background()) }()

	host, err := container.Host(ctx)
	c.Assert(err, qt.IsNil)
	smtpPort, err := container.MappedPort(ctx, test.MailSMTPPort)
	c.Assert(err, qt.IsNil)
	apiPort, err := container.MappedPort(ctx, test.MailAPIPort)
	c.Assert(err, qt.IsNil)

	email := new(Email)
	c.Assert(email.Init(&Config{
		FromName:    "Our World in Data",
		FromAddress: testFromAddress,
		SMTPServer:  host,
		SMTPPort:    smtpPort.Int(),
		TestAPIPort: apiPort.Int(),
	}), qt.IsNil)

	err = email.SendNotification(ctx, &notifications.Notification{
		ToName:    "Ada Lovelace",
		ToAddress: "ada@example.com",
		Subject:   "Thank you",
		PlainBody: "Dear Ada Lovelace,",
	})
	c.Assert(err, qt.IsNil)

	msg, err := email.FindEmail(ctx, "ada@example.com")
	c.Assert(err, qt.IsNil)
	c.Assert(msg.Headers["Subject"], qt.DeepEquals, []string{"Thank you"})
	c.Assert(msg.Body, qt.Contains, "Dear Ada Lovelace,")
}
