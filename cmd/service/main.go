package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/vocdoni/donations-backend/api"
	"github.com/vocdoni/donations-backend/captcha"
	"github.com/vocdoni/donations-backend/notifications"
	"github.com/vocdoni/donations-backend/notifications/mailtemplates"
	"github.com/vocdoni/donations-backend/notifications/smtp"
	"github.com/vocdoni/donations-backend/stripe"
	"go.vocdoni.io/dvote/log"
)

func main() {
	// load the local .env file, if any, before reading the environment
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		panic(err)
	}
	// define flags
	flag.StringP("host", "h", "0.0.0.0", "listen address")
	flag.IntP("port", "p", 8080, "listen port")
	flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.String("stripe-secret-key", "", "Stripe API secret key")
	flag.String("stripe-webhook-secret", "", "Stripe webhook signing secret")
	flag.String("stripe-monthly-plan-id", "", "Stripe price id of the monthly donation plan")
	flag.String("stripe-api-version", "", "Stripe API version expected on webhook events")
	flag.String("stripe-api-url", "", "Stripe API base URL override")
	flag.String("currency", stripe.DefaultCurrency, "currency of the one-off donations")
	flag.String("success-url", "", "redirect URL after a completed checkout, when the form sends none")
	flag.String("cancel-url", "", "redirect URL after a cancelled checkout, when the form sends none")
	flag.String("recaptcha-secret-key", "", "reCAPTCHA secret key, the bot check is disabled when empty")
	flag.String("recaptcha-verify-url", captcha.DefaultVerifyURL, "reCAPTCHA verification endpoint")
	flag.String("email-host", "", "SMTP server host, thank-you emails are disabled when empty")
	flag.Int("email-port", 587, "SMTP server port")
	flag.String("email-host-user", "", "SMTP username")
	flag.String("email-host-password", "", "SMTP password")
	flag.Bool("email-require-tls", true, "fail the delivery when the SMTP server does not offer STARTTLS")
	flag.String("email-from-name", smtp.DefaultFromName, "sender name of the thank-you emails")
	flag.String("email-from-address", smtp.DefaultFromAddress, "sender address of the thank-you emails")
	flag.String("email-subject", "", "subject of the thank-you emails")
	// parse flags
	flag.Parse()
	// initialize Viper
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := viper.BindPFlags(flag.CommandLine); err != nil {
		panic(err)
	}
	viper.AutomaticEnv()
	log.Init(viper.GetString("log-level"), "stdout", nil)
	// read the configuration
	host := viper.GetString("host")
	port := viper.GetInt("port")
	stripeConf := &stripe.Config{
		APIKey:        viper.GetString("stripe-secret-key"),
		WebhookSecret: viper.GetString("stripe-webhook-secret"),
		MonthlyPlanID: viper.GetString("stripe-monthly-plan-id"),
		APIVersion:    viper.GetString("stripe-api-version"),
		APIURL:        viper.GetString("stripe-api-url"),
		Currency:      viper.GetString("currency"),
		SuccessURL:    viper.GetString("success-url"),
		CancelURL:     viper.GetString("cancel-url"),
	}
	if err := stripeConf.Validate(); err != nil {
		log.Fatalf("invalid stripe configuration: %v", err)
	}
	// create the mail service, if configured
	var mailService notifications.NotificationService
	if emailHost := viper.GetString("email-host"); emailHost != "" {
		email := new(smtp.Email)
		if err := email.Init(&smtp.Config{
			FromName:     viper.GetString("email-from-name"),
			FromAddress:  viper.GetString("email-from-address"),
			SMTPUsername: viper.GetString("email-host-user"),
			SMTPPassword: viper.GetString("email-host-password"),
			SMTPServer:   emailHost,
			SMTPPort:     viper.GetInt("email-port"),
			RequireTLS:   viper.GetBool("email-require-tls"),
		}); err != nil {
			log.Fatalf("could not create the email service: %v", err)
		}
		mailService = email
		log.Infow("email service created", "host", emailHost, "port", viper.GetInt("email-port"))
	} else {
		log.Warnw("no email host configured, thank-you emails will not be sent")
	}
	if subject := viper.GetString("email-subject"); subject != "" {
		mailtemplates.ThankYouNotification.Placeholder.Subject = subject
	}
	// create the stripe service
	stripeService, err := stripe.NewService(stripe.NewClient(stripeConf), mailService)
	if err != nil {
		log.Fatalf("could not create the stripe service: %v", err)
	}
	// create the bot challenge verifier, if configured
	verifier := captcha.New(&captcha.Config{
		SecretKey: viper.GetString("recaptcha-secret-key"),
		VerifyURL: viper.GetString("recaptcha-verify-url"),
	})
	if verifier == nil {
		log.Warnw("no reCAPTCHA secret key configured, donations are accepted without a bot check")
	}
	// create the local API server
	api.New(&api.Config{
		Host:    host,
		Port:    port,
		Stripe:  stripeService,
		Captcha: verifier,
	}).Start()
	// wait forever, as the server is running in a goroutine
	log.Infow("server started", "host", host, "port", port)
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}
