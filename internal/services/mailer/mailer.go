// Package mailer отправляет письма из очередей: приветственные
// письма новым пользователям и обращения из формы обратной связи.
package mailer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/novawriterhq/novawriter/internal/lib/sl"
	"github.com/novawriterhq/novawriter/internal/lib/smtp"
	"github.com/novawriterhq/novawriter/internal/models"
)

// MailerService превращает сообщения очередей в исходящие письма.
type MailerService struct {
	transport    smtp.TransportInterface
	contactInbox string
	log          *slog.Logger
}

// New создает новый экземпляр MailerService. contactInbox — адрес,
// на который пересылаются обращения из формы обратной связи.
func New(transport smtp.TransportInterface, contactInbox string, log *slog.Logger) *MailerService {
	return &MailerService{
		transport:    transport,
		contactInbox: contactInbox,
		log:          log,
	}
}

// SendWelcomeEmail отправляет приветственное письмо новому пользователю.
func (s *MailerService) SendWelcomeEmail(body []byte) error {
	var message models.WelcomeEmail
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal welcome message", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Добро пожаловать в NovaWriter"
	bodyText := "Здравствуйте!\n\n" +
		"Ваша учётная запись в NovaWriter создана. Создавайте документы и проекты,\n" +
		"добавляйте образцы текста и настраивайте персональный профиль стиля.\n\n" +
		"Приятной работы!"

	return s.sendEmail([]string{message.Email}, subject, bodyText)
}

// SendContactEmail пересылает обращение пользователя на служебный ящик.
func (s *MailerService) SendContactEmail(body []byte) error {
	var message models.ContactMessage
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal contact message", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := fmt.Sprintf("Обращение от %s <%s>", message.Name, message.Email)
	bodyText := fmt.Sprintf("Имя: %s\nEmail: %s\n\n%s",
		message.Name, message.Email, message.Message)

	return s.sendEmail([]string{s.contactInbox}, subject, bodyText)
}

func (s *MailerService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), "error", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, "error", sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
