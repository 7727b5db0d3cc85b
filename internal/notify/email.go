package notify

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"

	"talent2income_backend/internal/events"
	"talent2income_backend/internal/models"
)

// Mailer отправляет одно письмо
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// GomailSender - SMTP через gomail
type GomailSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewGomailSender(cfg SMTPConfig) *GomailSender {
	return &GomailSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *GomailSender) Send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)
	return s.dialer.DialAndSend(m)
}

// UserLookup - откуда брать адрес получателя
type UserLookup interface {
	GetByID(ctx context.Context, id uint64) (*models.User, error)
}

// EmailSink пишет письма по событиям, для которых есть шаблон
type EmailSink struct {
	mailer    Mailer
	users     UserLookup
	templates *TemplateManager
}

func NewEmailSink(mailer Mailer, users UserLookup, templates *TemplateManager) *EmailSink {
	if templates == nil {
		templates = DefaultTemplates()
	}
	return &EmailSink{mailer: mailer, users: users, templates: templates}
}

func (s *EmailSink) Name() string { return "email" }

func (s *EmailSink) Accepts(e events.Event) bool {
	return s.templates.Has(e.EventName())
}

func (s *EmailSink) Deliver(ctx context.Context, e events.Event) error {
	var errs []error
	for _, id := range e.Recipients() {
		if err := s.deliverTo(ctx, id, e); err != nil {
			errs = append(errs, fmt.Errorf("user %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (s *EmailSink) deliverTo(ctx context.Context, userID uint64, e events.Event) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Email == "" {
		return nil
	}

	subject, body, err := s.templates.Render(e.EventName(), TemplateData{Recipient: user, Event: e})
	if err != nil {
		return err
	}
	return s.mailer.Send(user.Email, subject, body)
}
