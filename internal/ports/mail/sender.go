package mail

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("mail: sender credentials not configured")

// Sender envía un email de texto plano.
type Sender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}
