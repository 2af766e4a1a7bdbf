package notify

import (
	"context"

	"github.com/labstack/gommon/log"
	"gopkg.in/gomail.v2"
)

// Sender доставляет письмо.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender отправляет письма через SMTP.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	// gomail не принимает контекст, поэтому ждём отправку не дольше ctx.
	errc := make(chan error, 1)
	go func() { errc <- s.dialer.DialAndSend(m) }()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogSender только пишет письмо в лог. Используется без SMTP.
type LogSender struct {
	logger *log.Logger
}

func NewLogSender(logger *log.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.Infoj(log.JSON{
		"message": "email not sent, smtp is not configured",
		"to":      msg.To,
		"subject": msg.Subject,
	})
	return nil
}
