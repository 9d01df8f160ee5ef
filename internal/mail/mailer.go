// Package mail delivers account notifications over SMTP.
package mail

import (
	"context"
	"fmt"
	"strings"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/cletusgizo/ZapPay-Global/internal/config"
	"github.com/cletusgizo/ZapPay-Global/internal/util"
)

// Mailer is the notification channel the account lifecycle depends on.
type Mailer interface {
	SendOTP(ctx context.Context, email, code string) error
	SendWelcome(ctx context.Context, email string) error
	SendPasswordReset(ctx context.Context, email, token string) error
}

// SMTPMailer sends notifications through a configured SMTP relay.
type SMTPMailer struct {
	cfg     config.SMTPConfig
	baseURL string
	logger  *zap.Logger
}

func NewSMTPMailer(cfg config.SMTPConfig, baseURL string, logger *zap.Logger) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	return &SMTPMailer{
		cfg:     cfg,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}, nil
}

func (m *SMTPMailer) SendOTP(ctx context.Context, email, code string) error {
	body := fmt.Sprintf(
		"Your ZapPay verification code is %s.\n\nIt expires in 10 minutes. If you did not request this code, ignore this message.\n",
		code,
	)
	return m.send(ctx, email, "Your ZapPay verification code", body)
}

func (m *SMTPMailer) SendWelcome(ctx context.Context, email string) error {
	body := "Welcome to ZapPay!\n\nYour account has been verified and is ready to use.\n"
	return m.send(ctx, email, "Welcome to ZapPay", body)
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", m.baseURL, token)
	body := fmt.Sprintf(
		"A password reset was requested for your ZapPay account.\n\nReset your password here: %s\n\nThe link expires in one hour. If you did not request a reset, ignore this message.\n",
		resetURL,
	)
	return m.send(ctx, email, "ZapPay password reset", body)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMsg()

	if m.cfg.FromName != "" {
		if err := msg.FromFormat(m.cfg.FromName, m.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(m.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
	}
	if m.cfg.TLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
		if m.cfg.Port == 465 {
			opts = append(opts, gomail.WithSSL())
		}
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}
	if m.cfg.Username != "" && m.cfg.Password != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.Username),
			gomail.WithPassword(m.cfg.Password),
		)
	}

	client, err := gomail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		m.logger.Error("Failed to deliver email",
			util.String("to", to),
			util.String("subject", subject),
			util.ErrorField(err),
		)
		return fmt.Errorf("sending email: %w", err)
	}

	m.logger.Debug("Email delivered",
		util.String("to", to),
		util.String("subject", subject),
	)
	return nil
}
