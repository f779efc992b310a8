package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Saurabhrajput1234/BookMySeat/internal/config"
	"github.com/Saurabhrajput1234/BookMySeat/internal/logger"
)

// Sender delivers transactional mail over SMTP. Delivery is best effort:
// callers log failures and move on, a lost email never fails a booking.
type Sender struct {
	cfg    config.EmailConfig
	logger *logger.Logger
}

func NewSender(cfg config.EmailConfig, log *logger.Logger) *Sender {
	return &Sender{cfg: cfg, logger: log}
}

func (s *Sender) send(to, subject, body string) error {
	msg := strings.Join([]string{
		fmt.Sprintf("From: %s <%s>", s.cfg.FromName, s.cfg.FromAddress),
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	addr := s.cfg.SMTPHost + ":" + s.cfg.SMTPPort
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := smtp.SendMail(addr, auth, s.cfg.FromAddress, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// SendVerificationCode mails a registration verification code.
func (s *Sender) SendVerificationCode(to, code string) error {
	body := fmt.Sprintf(
		"Welcome to BookMySeat!\n\nYour verification code is: %s\n\nIt expires in 10 minutes.",
		code,
	)
	return s.send(to, "Verify your BookMySeat account", body)
}

// SendBookingConfirmation mails a payment receipt for a confirmed booking.
func (s *Sender) SendBookingConfirmation(ctx context.Context, toEmail, userName, eventName, seatInfo string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body := fmt.Sprintf(
		"Hi %s,\n\nYour payment for %s has been received.\n\nSeat: %s\n\nSee you there!",
		userName, eventName, seatInfo,
	)
	return s.send(toEmail, "Booking confirmed: "+eventName, body)
}
