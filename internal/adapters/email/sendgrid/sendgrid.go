package sendgrid

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
	"github.com/vncsmyrnk/accesso/internal/core/ports"
)

const mailSendPath = "/v3/mail/send"

type Config struct {
	APIKey                string
	SenderEmail           string
	Enabled               bool
	TemplateID            string
	ApplicationHost       string
	EmailConfirmURLPrefix string

	// Host overrides the SendGrid API host.
	Host string
}

// Notifier delivers domain messages through a single SendGrid dynamic
// template. The template branches on the "kind" field.
type Notifier struct {
	cfg    Config
	client *rest.Client
}

func NewNotifier(cfg Config, client *http.Client) ports.EmailNotifier {
	if !cfg.Enabled {
		return noopNotifier{}
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Notifier{cfg: cfg, client: &rest.Client{HTTPClient: client}}
}

func (n *Notifier) Send(ctx context.Context, to string, msg domain.EmailMessage) error {
	data, err := n.templateData(msg)
	if err != nil {
		return &domain.EmailError{Kind: domain.EmailEncodingError, Err: err}
	}

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", to))
	for k, v := range data {
		p.SetDynamicTemplateData(k, v)
	}
	m := mail.NewV3Mail().
		SetFrom(mail.NewEmail("", n.cfg.SenderEmail)).
		SetTemplateID(n.cfg.TemplateID).
		AddPersonalizations(p)

	// sendgrid.Client keeps the body on the request, so each send gets its own.
	sg := sendgrid.NewSendClient(n.cfg.APIKey)
	if n.cfg.Host != "" {
		sg.BaseURL = strings.TrimRight(n.cfg.Host, "/") + mailSendPath
	}
	sg.Headers["Content-Type"] = "application/json"
	sg.Body = mail.GetRequestBody(m)

	resp, err := n.client.SendWithContext(ctx, sg.Request)
	if err != nil {
		return &domain.EmailError{Kind: domain.EmailTransportError, Err: err}
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		err := fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, strings.TrimSpace(resp.Body))
		if resp.StatusCode >= http.StatusInternalServerError {
			return &domain.EmailError{Kind: domain.EmailTransportError, Err: err}
		}
		return &domain.EmailError{Kind: domain.EmailOtherError, Err: err}
	}

	log.Ctx(ctx).Debug().Str("template", msg.TemplateName()).Msg("email accepted by sendgrid")
	return nil
}

func (n *Notifier) templateData(msg domain.EmailMessage) (map[string]any, error) {
	data := map[string]any{
		"kind":             msg.TemplateName(),
		"application_host": n.cfg.ApplicationHost,
	}
	switch m := msg.(type) {
	case domain.RegisterConfirmation:
		data["code"] = m.Code
		data["confirm_url"] = n.cfg.EmailConfirmURLPrefix + m.Code
	case domain.RegisterFinished:
		data["first_name"] = m.FirstName
		data["last_name"] = m.LastName
	default:
		return nil, errors.New("unknown email message " + msg.TemplateName())
	}
	return data, nil
}

type noopNotifier struct{}

func (noopNotifier) Send(ctx context.Context, _ string, msg domain.EmailMessage) error {
	log.Ctx(ctx).Debug().Str("template", msg.TemplateName()).Msg("email delivery disabled, skipping")
	return nil
}
