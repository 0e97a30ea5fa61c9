// Package notify is the fire-and-forget notification side channel.
// Sends are queued onto a worker pool and published to the message
// broker; the caller returns immediately and never observes delivery or
// failure. Failed publishes are logged and dropped, not retried.
package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/cloudforge/invoice-service/internal/domain"
	"github.com/cloudforge/invoice-service/internal/metrics"
)

// Publisher is the broker-facing side of the dispatcher. The RabbitMQ
// implementation lives in infrastructure/messaging/rabbitmq.
type Publisher interface {
	PublishEmail(ctx context.Context, msg EmailMessage) error
	PublishSMS(ctx context.Context, msg SMSMessage) error
}

// Dispatcher implements account.Notifier.
type Dispatcher struct {
	pool    *WorkerPool
	pub     Publisher
	log     zerolog.Logger
	timeout time.Duration
}

func NewDispatcher(pub Publisher, workers int, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		pool:    NewWorkerPool(workers),
		pub:     pub,
		log:     log.With().Str("component", "notify").Logger(),
		timeout: 10 * time.Second,
	}
}

// SendVerificationEmail queues a verification or password-reset email.
// The request context is NOT reused: the job outlives the request.
func (d *Dispatcher) SendVerificationEmail(_ context.Context, firstName, email, link string, kind domain.VerificationKind) {
	msg := EmailMessage{
		FirstName: firstName,
		Email:     email,
		Link:      link,
		Kind:      string(kind),
	}
	metrics.RecordNotification("email")
	d.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.pub.PublishEmail(ctx, msg); err != nil {
			metrics.RecordNotificationDropped()
			d.log.Warn().Err(err).Str("kind", msg.Kind).Msg("email notification dropped")
		}
	})
}

// SendSMS queues an SMS (MFA codes).
func (d *Dispatcher) SendSMS(_ context.Context, phone, text string) {
	msg := SMSMessage{Phone: phone, Text: text}
	metrics.RecordNotification("sms")
	d.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.pub.PublishSMS(ctx, msg); err != nil {
			metrics.RecordNotificationDropped()
			d.log.Warn().Err(err).Msg("sms notification dropped")
		}
	})
}

// Stop drains queued sends. Called on shutdown.
func (d *Dispatcher) Stop() {
	d.pool.Stop()
}
