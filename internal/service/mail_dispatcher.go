package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hostelhub/mess-api/pkg/jobs"
)

type mailSender interface {
	SendVerification(to, token string) error
	SendPasswordReset(to, token string) error
}

const (
	mailJobVerification  = "verification"
	mailJobPasswordReset = "password_reset"
)

type mailPayload struct {
	To    string
	Token string
}

// MailDispatcher pushes transactional email onto a background queue so
// auth flows never block on SMTP round trips. Failed sends are retried by
// the queue.
type MailDispatcher struct {
	sender mailSender
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewMailDispatcher constructs a dispatcher backed by an in-memory worker
// queue.
func NewMailDispatcher(sender mailSender, cfg jobs.QueueConfig) *MailDispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &MailDispatcher{sender: sender, logger: logger}
	d.queue = jobs.NewQueue("mail", d.handle, cfg)
	return d
}

// Start begins background delivery.
func (d *MailDispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop drains the workers.
func (d *MailDispatcher) Stop() {
	d.queue.Stop()
}

// EnqueueVerification schedules an email-verification message.
func (d *MailDispatcher) EnqueueVerification(to, token string) error {
	return d.enqueue(mailJobVerification, to, token)
}

// EnqueuePasswordReset schedules a password-reset message.
func (d *MailDispatcher) EnqueuePasswordReset(to, token string) error {
	return d.enqueue(mailJobPasswordReset, to, token)
}

func (d *MailDispatcher) enqueue(kind, to, token string) error {
	return d.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    kind,
		Payload: mailPayload{To: to, Token: token},
	})
}

func (d *MailDispatcher) handle(_ context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(mailPayload)
	if !ok {
		return fmt.Errorf("mail job %s: unexpected payload %T", job.ID, job.Payload)
	}
	switch job.Type {
	case mailJobVerification:
		return d.sender.SendVerification(payload.To, payload.Token)
	case mailJobPasswordReset:
		return d.sender.SendPasswordReset(payload.To, payload.Token)
	default:
		return fmt.Errorf("mail job %s: unknown type %q", job.ID, job.Type)
	}
}
