// Package sender реализует отправку писем формы обратной связи.
// Сообщения поступают из очереди RabbitMQ и доставляются оператору
// платформы по SMTP.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/videohub-backend/internal/lib/sl"
	"github.com/magabrotheeeer/videohub-backend/internal/lib/smtp"
	"github.com/magabrotheeeer/videohub-backend/internal/models"
)

// SenderService пересылает сообщения обратной связи на почту оператора.
type SenderService struct {
	transport smtp.TransportInterface
	recipient string
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.TransportInterface, recipient string, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		recipient: recipient,
		log:       log,
	}
}

// SendContactMessage разбирает сообщение из очереди и отправляет письмо
// оператору. Ответ пишется на адрес из формы.
func (s *SenderService) SendContactMessage(body []byte) error {
	var message models.ContactMessage
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := fmt.Sprintf("Сообщение с сайта от %s", message.Name)
	bodyText := fmt.Sprintf("Имя: %s\nEmail: %s\n\n%s",
		message.Name, message.Email, message.Message)

	return s.sendEmail([]string{s.recipient}, message.Email, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, replyTo, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Reply-To: " + replyTo,
		"Subject: " + subject,
		"Message-ID: <" + uuid.NewString() + "@videohub>",
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
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", s.transport.GetSMTPUser()), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("contact email sent", slog.Any("to", to))
	return nil
}
