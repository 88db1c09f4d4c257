package mail

import "context"

// Sender delivers a plain-text email. Implementations must be safe for
// concurrent use; the notification dispatcher calls Send from goroutines.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NopSender discards mail. Used when mail is disabled and in tests.
type NopSender struct{}

func (NopSender) Send(ctx context.Context, to, subject, body string) error { return nil }
