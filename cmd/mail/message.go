package main

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/hdclinic/bed-scheduler/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type mailKind struct {
	template string
	subject  string
	data     func() any
}

var mailKinds = map[string]mailKind{
	domain.MailTypeCreateUser: {
		template: "new_account_email.html",
		subject:  "Jadwal Hemodialisis - Informasi Akun",
		data:     func() any { return &domain.CreateUserMailData{} },
	},
	domain.MailTypeResetPassword: {
		template: "reset_password_otp_email.html",
		subject:  "Jadwal Hemodialisis - Atur Ulang Kata Sandi",
		data:     func() any { return &domain.ResetPasswordMailData{} },
	},
	domain.MailTypeGenerationReport: {
		template: "generation_report_email.html",
		subject:  "Jadwal Hemodialisis - Laporan Penjadwalan Otomatis",
		data:     func() any { return &domain.GenerationReportMailData{} },
	},
}

// buildMessage decodes a queued mail message and renders it.
func buildMessage(from string, body []byte) (*mail.Msg, error) {
	var raw struct {
		Type string          `json:"type"`
		To   string          `json:"to"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}

	kind, ok := mailKinds[raw.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported mail type %q", raw.Type)
	}

	data := kind.data()
	if err := json.Unmarshal(raw.Data, data); err != nil {
		return nil, fmt.Errorf("decode %s data: %w", raw.Type, err)
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, err
	}
	if err := m.To(raw.To); err != nil {
		return nil, err
	}
	m.Subject(kind.subject)

	tmpl := templates.Lookup(kind.template)
	if err := m.SetBodyHTMLTemplate(tmpl, data); err != nil {
		return nil, err
	}

	return m, nil
}
