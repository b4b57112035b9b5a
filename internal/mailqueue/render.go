package mailqueue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
)

var ErrUnknownMailType = errors.New("unknown mail type")

// envelope mirrors domain.MailMessage but keeps Data raw until Type is known.
type envelope struct {
	Type string          `json:"type"`
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

// Rendered is a mail ready to be handed to the SMTP client.
type Rendered struct {
	Type    string
	To      string
	Subject string
	HTML    string
}

type Renderer struct {
	business string
	tmpl     *template.Template
}

// NewRenderer parses every *.html template in dir. Each mail type renders the template
// named "<type>.html".
func NewRenderer(dir, business string) (*Renderer, error) {
	tmpl, err := template.ParseGlob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	for _, typ := range []string{domain.MailTypeNewAccount, domain.MailTypeMonthlyBill} {
		if tmpl.Lookup(typ+".html") == nil {
			return nil, fmt.Errorf("missing template %s.html in %s", typ, dir)
		}
	}
	return &Renderer{business: business, tmpl: tmpl}, nil
}

// Render decodes a queued message body and produces the final mail.
func (r *Renderer) Render(body []byte) (*Rendered, error) {
	env := envelope{}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode mail message: %w", err)
	}
	if env.To == "" {
		return nil, errors.New("mail message has no recipient")
	}

	var (
		data    any
		subject string
	)
	switch env.Type {
	case domain.MailTypeNewAccount:
		d := domain.NewAccountMailData{}
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", env.Type, err)
		}
		data = d
		subject = fmt.Sprintf("%s - your delivery account", r.business)
	case domain.MailTypeMonthlyBill:
		d := domain.MonthlyBillMailData{}
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", env.Type, err)
		}
		if d.BusinessName == "" {
			d.BusinessName = r.business
		}
		data = d
		subject = fmt.Sprintf("%s - milk bill %s to %s", d.BusinessName, d.Bill.Start, d.Bill.End)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMailType, env.Type)
	}

	buf := bytes.Buffer{}
	if err := r.tmpl.ExecuteTemplate(&buf, env.Type+".html", data); err != nil {
		return nil, fmt.Errorf("render %s mail: %w", env.Type, err)
	}

	return &Rendered{Type: env.Type, To: env.To, Subject: subject, HTML: buf.String()}, nil
}
