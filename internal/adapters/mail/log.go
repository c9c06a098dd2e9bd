package mail

import (
	"context"
	"log/slog"

	"github.com/copperline/accounts-service/internal/ports"
)

// LogSender is the no-transport fallback used when no mail API key is
// configured: it logs the message instead of delivering it, so local runs
// still expose reset links in the service output.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger.With("module", "mail", "layer", "adapter")}
}

func (s *LogSender) Send(ctx context.Context, msg ports.MailMessage) error {
	s.logger.InfoContext(ctx, "mail transport not configured, logging message",
		"operation", "send_mail",
		"outcome", "logged",
		"to", msg.To,
		"subject", msg.Subject,
		"html", msg.HTML,
	)
	return nil
}
