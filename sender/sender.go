package sender

import (
	"context"
	"time"
)

// Message is one outbound email. Template-based channels use TemplateID and
// TemplateParams; raw channels use Subject and the body fields.
type Message struct {
	To             string
	Subject        string
	HTMLBody       string
	TextBody       string
	TemplateID     string
	TemplateParams map[string]string
}

type SendResult struct {
	MessageID string
	SentAt    time.Time
}

type EmailSender interface {
	SendEmail(ctx context.Context, msg Message) (SendResult, error)
}
