package mailer

import (
	"context"

	"github.com/diagnosis/stayvista-server/pkg/config"
	"github.com/diagnosis/stayvista-server/pkg/logger"
)

type Service interface {
	Send(ctx context.Context, toEmail, toName, subject, text, html string) (string, error)
}

// New picks a backend: dev mode logs, a MailerSend key selects MailerSend,
// otherwise SMTP.
func New(cfg config.EmailConfig) Service {
	switch {
	case cfg.DevMode:
		logger.Info("Mailer: dev mode, emails are logged only")
		return NewDevMailer()
	case cfg.MailerSendKey != "":
		logger.Info("Mailer: using MailerSend", "from", cfg.SMTPFrom)
		return NewMailer(cfg.MailerSendKey, cfg.FromName, cfg.SMTPFrom)
	default:
		logger.Info("Mailer: using SMTP", "host", cfg.SMTPHost, "port", cfg.SMTPPort)
		return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPUseTLS)
	}
}
