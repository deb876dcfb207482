package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/logger"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

var ErrIncompleteConfig = errors.New("SMTP configuration is incomplete")

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	SenderEmail string
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends seller notifications through an SMTP relay.
type SMTPMailer struct {
	cfg    SMTPConfig
	dialer dialer
	logger *logger.Logger
}

func NewSMTPMailer(cfg SMTPConfig, log *logger.Logger) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: log.Named("SMTPMailer"),
	}
}

// SendListingCreated tells the seller that their listing was stored.
func (s *SMTPMailer) SendListingCreated(ctx context.Context, to string, listing *domain.Listing) error {
	if s.cfg.Host == "" || s.cfg.SenderEmail == "" {
		s.logger.Error("SMTP configuration is incomplete. Email not sent.",
			zap.String("host", s.cfg.Host),
			zap.String("sender", s.cfg.SenderEmail))
		return ErrIncompleteConfig
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	title := listing.Title()
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.SenderEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "New Listing Created")
	m.SetBody("text/plain", fmt.Sprintf("Your listing '%s' has been created successfully.\nListing ID: %s", title, listing.ID))

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error("Failed to send email", zap.Error(err), zap.String("to", to), zap.String("car_id", listing.ID))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("Email sent successfully", zap.String("to", to), zap.String("car_id", listing.ID))
	return nil
}
