package email

import "context"

// Provider sends HTML email. Sends are fire-and-forget; delivery is not
// verified.
type Provider interface {
	Send(ctx context.Context, to []string, subject string, htmlBody string) error
}

// NoOpProvider discards outbound email. Used in tests and dev setups without
// an SMTP relay.
type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	return nil
}
