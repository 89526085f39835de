package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/sakif/quill/internal/apperror"
	"github.com/sakif/quill/internal/form"
)

var contactHTML = template.Must(template.New("contact").Parse(
	`<p><strong>{{.Name}}</strong> &lt;{{.Email}}&gt; wrote:</p>
<p>{{.Message}}</p>`))

// SendContact formats a contact-form submission and sends it to admins.
func SendContact(ctx context.Context, m Mailer, siteTitle string, admins []string, in form.Contact) error {
	if len(admins) == 0 {
		return apperror.DeliveryFailed(errors.New("mail: no admin recipients configured"))
	}

	var html bytes.Buffer
	if err := contactHTML.Execute(&html, in); err != nil {
		return apperror.DeliveryFailed(fmt.Errorf("mail: rendering body: %w", err))
	}

	plain := fmt.Sprintf("%s <%s> wrote:\n\n%s\n", in.Name, in.Email, in.Message)

	return m.Send(ctx, Message{
		Subject: fmt.Sprintf("[%s] %s", siteTitle, strings.TrimSpace(in.Subject)),
		ReplyTo: in.Email,
		To:      admins,
		Plain:   plain,
		HTML:    html.String(),
	})
}
