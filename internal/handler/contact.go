package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/quill/internal/apperror"
	"github.com/sakif/quill/internal/form"
	"github.com/sakif/quill/internal/mail"
)

// ContactHandler serves the contact form that mails the site admins.
type ContactHandler struct {
	mailer  mail.Mailer
	admins  []string
	site    string
	render  *Renderer
	flashes *Flasher
	logger  *slog.Logger
}

func NewContactHandler(mailer mail.Mailer, admins []string, siteTitle string, render *Renderer, flashes *Flasher, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		mailer:  mailer,
		admins:  admins,
		site:    siteTitle,
		render:  render,
		flashes: flashes,
		logger:  logger,
	}
}

// HandleForm serves GET /contact.
func (h *ContactHandler) HandleForm(w http.ResponseWriter, r *http.Request) {
	h.render.HTML(w, r, http.StatusOK, "contact.html", view{Title: "Contact", Form: form.Contact{}})
}

// HandleSend serves POST /contact. A delivery failure is flashed, never
// shown as an error page.
func (h *ContactHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	in, err := form.ParseContact(r)
	if err != nil {
		h.render.Error(w, r, apperror.ValidationFailed("", "malformed form"))
		return
	}
	if err := in.Validate(); err != nil {
		h.render.HTML(w, r, http.StatusBadRequest, "contact.html", view{
			Title:  "Contact",
			Form:   in,
			Errors: apperror.Fields(err),
		})
		return
	}

	if err := mail.SendContact(r.Context(), h.mailer, h.site, h.admins, in); err != nil {
		if errors.Is(err, apperror.ErrDelivery) {
			cause := err
			if inner := errors.Unwrap(err); inner != nil {
				cause = inner
			}
			h.logger.Warn("contact message not delivered", slog.String("error", cause.Error()))
			h.flashes.Add(w, r, "Your message could not be sent. Please try again later.")
			redirect(w, r, "/contact")
			return
		}
		h.render.Error(w, r, err)
		return
	}

	h.flashes.Add(w, r, "Message sent")
	redirect(w, r, "/contact")
}
