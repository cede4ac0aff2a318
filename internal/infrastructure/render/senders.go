package render

import (
	"context"
	"fmt"
	"time"

	appdocument "github.com/printcloud/backend/internal/application/document"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	_ appdocument.EmailSender    = (*LogEmailSender)(nil)
	_ appdocument.WhatsAppSender = (*LogWhatsAppSender)(nil)
)

// LogEmailSender is the default EmailSender. It records the send in the log
// and returns a synthetic message ID. A real provider (SMTP, SES) replaces
// it behind the same port.
type LogEmailSender struct {
	logger *zap.Logger
}

// NewLogEmailSender creates a logging email sender
func NewLogEmailSender(logger *zap.Logger) *LogEmailSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogEmailSender{logger: logger}
}

// SendEmail logs the outgoing email and returns a synthetic message ID
func (s *LogEmailSender) SendEmail(_ context.Context, to, subject, body string, attachment []byte, attachmentName string) (string, error) {
	messageID := fmt.Sprintf("email-%s", uuid.New().String())

	s.logger.Info("Email dispatched",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)),
		zap.String("attachment", attachmentName),
		zap.Int("attachment_bytes", len(attachment)),
		zap.String("message_id", messageID),
		zap.Time("sent_at", time.Now()))

	return messageID, nil
}

// LogWhatsAppSender is the default WhatsAppSender. It records the send in
// the log and returns a synthetic message ID.
type LogWhatsAppSender struct {
	logger *zap.Logger
}

// NewLogWhatsAppSender creates a logging WhatsApp sender
func NewLogWhatsAppSender(logger *zap.Logger) *LogWhatsAppSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogWhatsAppSender{logger: logger}
}

// SendMessage logs the outgoing message and returns a synthetic message ID
func (s *LogWhatsAppSender) SendMessage(_ context.Context, to, message string) (string, error) {
	messageID := fmt.Sprintf("wa-%s", uuid.New().String())

	s.logger.Info("WhatsApp message dispatched",
		zap.String("to", to),
		zap.Int("message_bytes", len(message)),
		zap.String("message_id", messageID),
		zap.Time("sent_at", time.Now()))

	return messageID, nil
}
