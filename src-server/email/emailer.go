// Package email renders fixed templates and delivers them over SMTP.
// Delivery problems are logged and swallowed; sending an email is never
// allowed to fail a registration.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/wneessen/go-mail"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Sender is what the registration workflow talks to.
type Sender interface {
	SendFromTemplate(ctx context.Context, toAddr string, fullName string, template Template, subst map[string]string)
}

type Emailer struct {
	Server        string
	Port          int
	FromAddr      string
	SubjectPrefix string
	CC            []string
	Username      string
	Password      string
	Enabled       bool
}

// SendFromTemplate substitutes ${key} placeholders into the template and
// sends the result. Both substitution gaps and transport failures only log.
func (e *Emailer) SendFromTemplate(ctx context.Context, toAddr string, fullName string, template Template, subst map[string]string) {
	rendered, unresolved, err := render(template, fullName, subst)
	if err != nil {
		slog.Error("can't render email", "template", template, "to", toAddr, "error", err)
		return
	}
	if len(unresolved) > 0 {
		slog.Warn("email template not fully substituted",
			"template", template,
			"to", toAddr,
			"unresolved", strings.Join(unresolved, ", "))
	}

	if !e.Enabled {
		slog.Info("email sending disabled, not sending", "template", template, "to", toAddr)
		return
	}

	msg := mail.NewMsg()
	if err := msg.From(e.FromAddr); err != nil {
		slog.Error("invalid from address", "from", e.FromAddr, "error", err)
		return
	}
	if err := msg.To(toAddr); err != nil {
		slog.Error("invalid to address", "to", toAddr, "error", err)
		return
	}
	if len(e.CC) > 0 {
		if err := msg.Cc(e.CC...); err != nil {
			slog.Warn("invalid cc address", "cc", e.CC, "error", err)
		}
	}
	msg.Subject(strings.TrimSpace(e.SubjectPrefix + " " + templateSubjects[template]))
	msg.SetBodyString(mail.TypeTextPlain, rendered)

	opts := []mail.Option{
		mail.WithPort(e.Port),
		mail.WithSSL(),
	}
	if e.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(e.Username),
			mail.WithPassword(e.Password),
		)
	}
	client, err := mail.NewClient(e.Server, opts...)
	if err != nil {
		slog.Error("can't create SMTP client", "server", e.Server, "error", err)
		return
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		slog.Error("can't send email", "template", template, "to", toAddr, "error", err)
		return
	}
	slog.Info("email sent", "template", template, "to", toAddr)
}

// render substitutes ${key} placeholders and reports the keys the
// substitution map did not cover.
func render(template Template, fullName string, subst map[string]string) (string, []string, error) {
	body, ok := templateBodies[template]
	if !ok {
		return "", nil, fmt.Errorf("unknown email template: %s", template)
	}
	var unresolved []string
	rendered := os.Expand(body, func(key string) string {
		if key == "full_name" {
			return cleanupName(fullName)
		}
		if value, ok := subst[key]; ok {
			return value
		}
		unresolved = append(unresolved, key)
		return ""
	})
	return rendered, unresolved, nil
}

// strips spaces, title-cases, removes a trailing period
func cleanupName(s string) string {
	s = strings.TrimSpace(s)
	s = cases.Title(language.English).String(s)
	s = strings.TrimSuffix(s, ".")
	return s
}
