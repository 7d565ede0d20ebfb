package accesscode

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"vet-clinic/internal/platform/apperr"
	"vet-clinic/internal/platform/logger"
	"vet-clinic/internal/platform/metrics"
	"vet-clinic/internal/ports/mail"
	"vet-clinic/internal/ports/session"
)

const (
	codeBytes    = 4
	emailSubject = "Diagnosis Access Code Request"
)

var (
	errNoSession     = apperr.Server("Session is not initialized.", nil)
	errNoRecipient   = apperr.Server("Clinic owner email is not set.", nil)
	errNotRequested  = apperr.Forbidden("Access code not requested or expired.")
	errInvalidCode   = apperr.Forbidden("Invalid access code.")
	msgRequestFailed = "Server error while requesting access code."
)

type Options struct {
	Logger  logger.Logger
	Metrics *metrics.Metrics
}

// Gate emite y valida el código que habilita a un clinician a editar un diagnóstico.
// Un solo código vigente por sesión; vive lo que vive la sesión.
type Gate struct {
	store     session.Store
	sender    mail.Sender
	recipient string

	log     logger.Logger
	metrics *metrics.Metrics
	rand    io.Reader
}

func NewGate(store session.Store, sender mail.Sender, recipient string, opts Options) *Gate {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	if sender == nil {
		sender = unconfigured{}
	}
	return &Gate{
		store:     store,
		sender:    sender,
		recipient: strings.TrimSpace(recipient),
		log:       log.With(map[string]any{"component": "accesscode"}),
		metrics:   opts.Metrics,
		rand:      rand.Reader,
	}
}

// Issue genera un código, lo envía al dueño de la clínica y recién después de
// un envío exitoso lo guarda en la sesión (pisando el anterior).
func (g *Gate) Issue(ctx context.Context, sess *session.Session) (code string, err error) {
	defer func() { g.metrics.AccessCode("issue", outcome(err)) }()

	if sess == nil {
		return "", errNoSession
	}
	if g.recipient == "" {
		return "", errNoRecipient
	}

	code, err = g.newCode()
	if err != nil {
		return "", apperr.Server(msgRequestFailed, err)
	}

	body := fmt.Sprintf(
		"A clinician has requested access to edit a diagnosis.\n\nAccess code: %s\n\nThe code is valid for the current session only.\n",
		code,
	)
	if err := g.sender.SendEmail(ctx, g.recipient, emailSubject, body); err != nil {
		g.log.Error("access code email failed", map[string]any{"session_id": sess.ID, "err": err.Error()})
		return "", apperr.Server(msgRequestFailed, err)
	}

	next := sess.Clone()
	next.DiagnosisAccessCode = code
	if err := g.store.Save(ctx, next); err != nil {
		g.log.Error("access code not persisted", map[string]any{"session_id": sess.ID, "err": err.Error()})
		return "", apperr.Server(msgRequestFailed, err)
	}
	*sess = *next

	g.log.Info("access code issued", map[string]any{"session_id": sess.ID})
	return code, nil
}

// Validate: match exacto contra el código de la sesión.
func (g *Gate) Validate(sess *session.Session, code string) (err error) {
	defer func() { g.metrics.AccessCode("validate", outcome(err)) }()

	if sess == nil || sess.DiagnosisAccessCode == "" {
		return errNotRequested
	}
	if subtle.ConstantTimeCompare([]byte(sess.DiagnosisAccessCode), []byte(code)) != 1 {
		return errInvalidCode
	}
	return nil
}

func (g *Gate) newCode() (string, error) {
	b := make([]byte, codeBytes)
	if _, err := io.ReadFull(g.rand, b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// unconfigured se usa cuando no hay SMTP: todo pedido de código falla.
type unconfigured struct{}

func (unconfigured) SendEmail(context.Context, string, string, string) error {
	return mail.ErrNotConfigured
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return strings.ToLower(string(apperr.KindOf(err)))
}
