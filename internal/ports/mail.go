package ports

import "context"

// MailMessage is a transport-neutral outbound email.
type MailMessage struct {
	To      string
	Subject string
	HTML    string
}

// MailSender delivers mail out-of-band. Callers treat delivery as best-effort:
// a reset token is valid the moment it is stored, whether or not the email
// ever arrives.
type MailSender interface {
	Send(ctx context.Context, msg MailMessage) error
}
