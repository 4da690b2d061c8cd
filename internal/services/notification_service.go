package services

import (
	"context"
	"fmt"

	sendgrid "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
)

// TemplateKind names a notification template.
type TemplateKind string

const (
	TemplateBuyerReceipt  TemplateKind = "buyer_receipt"
	TemplateCreatorNotice TemplateKind = "creator_notice"
	TemplateCampaignLive  TemplateKind = "campaign_live"
)

// Notifier delivers one templated notification. Callers treat delivery as
// best-effort: a Send error is reported, never propagated as the caller's
// primary failure.
type Notifier interface {
	Send(ctx context.Context, recipient string, kind TemplateKind, data map[string]interface{}) error
}

type sendgridNotifier struct {
	client    *sendgrid.Client
	fromName  string
	fromEmail string
	templates map[TemplateKind]string
}

// NewSendgridNotifier creates a Notifier backed by SendGrid dynamic
// templates.
func NewSendgridNotifier(apiKey, fromName, fromEmail string, templates map[TemplateKind]string) Notifier {
	return &sendgridNotifier{
		client:    sendgrid.NewSendClient(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
		templates: templates,
	}
}

func (n *sendgridNotifier) Send(ctx context.Context, recipient string, kind TemplateKind, data map[string]interface{}) error {
	if recipient == "" {
		return fmt.Errorf("no recipient for %s notification", kind)
	}
	templateID, ok := n.templates[kind]
	if !ok {
		return fmt.Errorf("no template configured for %s", kind)
	}

	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(n.fromName, n.fromEmail))
	m.SetTemplateID(templateID)

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", recipient))
	templateData := make(map[string]interface{}, len(data))
	for k, v := range data {
		templateData[k] = v
	}
	p.DynamicTemplateData = templateData
	m.AddPersonalizations(p)

	response, err := n.client.Send(m)
	if err != nil {
		return fmt.Errorf("failed to send %s notification: %w", kind, err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("%s notification rejected with status %d", kind, response.StatusCode)
	}
	return nil
}

type noopNotifier struct {
	log *logrus.Entry
}

// NewNoopNotifier returns a Notifier that drops everything. Used when no
// SendGrid key is configured and in tests.
func NewNoopNotifier() Notifier {
	return &noopNotifier{log: logrus.WithField("component", "notifier")}
}

func (n *noopNotifier) Send(ctx context.Context, recipient string, kind TemplateKind, data map[string]interface{}) error {
	n.log.WithFields(logrus.Fields{"recipient": recipient, "kind": kind}).Debug("notification dropped (noop notifier)")
	return nil
}
