package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/mail"
	netsmtp "net/smtp"
	"strconv"
	"strings"
	"time"

	portmail "vet-clinic/internal/ports/mail"
)

type Config struct {
	Host     string
	Port     int
	User     string
	Pass     string
	FromName string

	// Timeout acota toda la conversación SMTP cuando el ctx no trae deadline
	// (o trae uno más lejano). Default 10s.
	Timeout time.Duration
}

const defaultTimeout = 10 * time.Second

// Sender implementa mail.Sender sobre SMTP con STARTTLS (gmail por defecto).
type Sender struct {
	cfg Config
	now func() time.Time

	dialer *net.Dialer

	// send es reemplazable en tests.
	send func(ctx context.Context, addr string, a netsmtp.Auth, from string, to []string, msg []byte) error
}

func NewSender(cfg Config) *Sender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	s := &Sender{
		cfg:    cfg,
		now:    time.Now,
		dialer: &net.Dialer{},
	}
	s.send = s.deliver
	return s
}

func (s *Sender) SendEmail(ctx context.Context, to, subject, body string) error {
	if strings.TrimSpace(s.cfg.User) == "" || strings.TrimSpace(s.cfg.Pass) == "" {
		return portmail.ErrNotConfigured
	}
	to = strings.TrimSpace(to)
	if _, err := mail.ParseAddress(to); err != nil {
		return fmt.Errorf("smtp: invalid recipient %q: %w", to, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	from := mail.Address{Name: s.cfg.FromName, Address: s.cfg.User}
	msg := buildMessage(from.String(), to, subject, body, s.now())

	addr := s.cfg.Host + ":" + strconv.Itoa(s.cfg.Port)
	auth := netsmtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)

	if err := s.send(ctx, addr, auth, s.cfg.User, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// deliver hace la conversación SMTP sobre una conexión atada al ctx: el dial
// respeta la cancelación y toda la I/O corre bajo un deadline, así un servidor
// colgado no bloquea el request.
func (s *Sender) deliver(ctx context.Context, addr string, a netsmtp.Auth, from string, to []string, msg []byte) (err error) {
	conn, err := s.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer func() {
		if ctxErr := ctx.Err(); err != nil && ctxErr != nil {
			err = errors.Join(err, ctxErr)
		}
	}()

	deadline := time.Now().Add(s.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return err
	}
	// cancelar el ctx corta la I/O pendiente
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Unix(1, 0)) })
	defer stop()

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		conn.Close()
		return err
	}
	c, err := netsmtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}); err != nil {
			return err
		}
	}
	if a != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(a); err != nil {
				return err
			}
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func buildMessage(from, to, subject, body string, date time.Time) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + sanitizeHeader(subject) + "\r\n")
	b.WriteString("Date: " + date.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
