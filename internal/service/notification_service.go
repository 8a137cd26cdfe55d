package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-adm-api/pkg/config"
	"github.com/noah-isme/uni-adm-api/pkg/jobs"
	"github.com/noah-isme/uni-adm-api/pkg/mailer"
)

// Notification kinds used for job typing and metrics labels.
const (
	NotifyKindWelcome          = "welcome"
	NotifyKindSubmitted        = "application_submitted"
	NotifyKindStatusChanged    = "application_status"
	NotifyKindDocumentVerified = "document_verified"
)

// MailSender delivers a rendered message.
type MailSender interface {
	Send(msg mailer.Message) error
}

// NotificationService dispatches lifecycle emails fire-and-forget through
// an in-process queue. Delivery failures are retried by the queue and
// never surfaced to the request that triggered them.
type NotificationService struct {
	sender  MailSender
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
}

// NewNotificationService constructs the dispatcher and its queue.
func NewNotificationService(sender MailSender, cfg config.NotificationsConfig, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{sender: sender, metrics: metrics, logger: logger}
	s.queue = jobs.NewQueue("notifications", s.deliver, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start begins queue consumption.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the queue workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Welcome enqueues the registration confirmation email.
func (s *NotificationService) Welcome(email, name string) {
	s.enqueue(NotifyKindWelcome, mailer.Welcome(email, name))
}

// ApplicationSubmitted enqueues the submission confirmation email.
func (s *NotificationService) ApplicationSubmitted(email, name, applicationNumber, programName string) {
	s.enqueue(NotifyKindSubmitted, mailer.ApplicationSubmitted(email, name, applicationNumber, programName))
}

// ApplicationStatusChanged enqueues the review decision email.
func (s *NotificationService) ApplicationStatusChanged(email, name, applicationNumber, programName, status string) {
	s.enqueue(NotifyKindStatusChanged, mailer.ApplicationStatusUpdate(email, name, applicationNumber, programName, status))
}

// DocumentVerified enqueues the verification outcome email.
func (s *NotificationService) DocumentVerified(email, name, documentName, status string) {
	s.enqueue(NotifyKindDocumentVerified, mailer.DocumentVerified(email, name, documentName, status))
}

func (s *NotificationService) enqueue(kind string, msg mailer.Message) {
	if s == nil || s.queue == nil {
		return
	}
	err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    kind,
		Payload: msg,
	})
	if err != nil {
		s.logger.Warn("failed to enqueue notification",
			zap.String("kind", kind),
			zap.String("to", msg.To),
			zap.Error(err),
		)
	}
}

func (s *NotificationService) deliver(_ context.Context, job jobs.Job) error {
	msg, ok := job.Payload.(mailer.Message)
	if !ok {
		return fmt.Errorf("notification job %s has unexpected payload %T", job.ID, job.Payload)
	}
	err := s.sender.Send(msg)
	s.metrics.RecordNotification(job.Type, err)
	if err != nil {
		return err
	}
	s.logger.Debug("notification delivered",
		zap.String("kind", job.Type),
		zap.String("to", msg.To),
	)
	return nil
}
