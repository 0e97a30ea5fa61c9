package memory

import (
	"context"
	"sync"

	"github.com/cloudforge/invoice-service/internal/notify"
)

// Publisher records messages instead of sending them. Stands in for the
// broker when RABBIT_URL is unset and in tests.
type Publisher struct {
	mu     sync.Mutex
	Emails []notify.EmailMessage
	SMS    []notify.SMSMessage
}

func NewPublisher() *Publisher {
	return &Publisher{}
}

func (p *Publisher) PublishEmail(ctx context.Context, msg notify.EmailMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Emails = append(p.Emails, msg)
	return nil
}

func (p *Publisher) PublishSMS(ctx context.Context, msg notify.SMSMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.SMS = append(p.SMS, msg)
	return nil
}

func (p *Publisher) SentEmails() []notify.EmailMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]notify.EmailMessage, len(p.Emails))
	copy(out, p.Emails)
	return out
}

func (p *Publisher) SentSMS() []notify.SMSMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]notify.SMSMessage, len(p.SMS))
	copy(out, p.SMS)
	return out
}
