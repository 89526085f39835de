// Package handler turns HTTP requests into service calls and renders the
// results as HTML pages, redirects, feeds and images.
//
// Handlers hold no business rules. They parse input, call a service, and
// translate apperror values into responses: validation errors re-render the
// form, NotFound renders the 404 page, anything unexpected renders a 500
// without exposing internals.
package handler

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/quill/internal/apperror"
	"github.com/sakif/quill/internal/auth"
)

// Site is the blog-wide information every page shows.
type Site struct {
	Title       string
	URL         string
	Description string
}

// view is the data every template receives.
type view struct {
	Site     Site
	Title    string
	SignedIn bool
	Flashes  []string
	Errors   apperror.FieldErrors
	Form     any // values to put back into the page's form
	Data     any
}

type errorPage struct {
	Status  int
	Message string
}

var pages = []string{
	"index.html", "blog.html", "post.html", "login.html", "register.html",
	"dashboard.html", "all_posts.html", "update.html", "contact.html", "error.html",
}

var funcs = template.FuncMap{
	"date":    func(t time.Time) string { return t.Format("Jan 2, 2006") },
	"isodate": func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
}

// Renderer executes the page templates. Every page is parsed once, together
// with the shared layout in base.html.
//
// TEMPLATE SETS:
// html/template allows a name to be defined once per set, and every page
// defines "content". So instead of one set for the whole site there is one
// set per page:
//
//	pages["post.html"] = base.html + post.html
//	pages["blog.html"] = base.html + blog.html
//
// Executing "base" in a set renders the layout, which calls {{template
// "content" .}} and picks up that page's block.
//
// EVERY PAGE GETS A view:
// HTML fills in the fields every page needs (site title, signed-in flag and
// the pending flash messages) so handlers only set Title, Form, Errors and
// Data.
//
// ERRORS:
// Error maps the apperror sentinels to a status and renders error.html.
// Services never see status codes; this is the one place they are chosen.
type Renderer struct {
	pages   map[string]*template.Template
	site    Site
	flashes *Flasher
	logger  *slog.Logger
}

// NewRenderer parses templates/base.html plus each page from fsys.
func NewRenderer(fsys fs.FS, site Site, flashes *Flasher, logger *slog.Logger) (*Renderer, error) {
	rd := &Renderer{
		pages:   make(map[string]*template.Template, len(pages)),
		site:    site,
		flashes: flashes,
		logger:  logger,
	}
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(fsys, "templates/base.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("handler: parsing %s: %w", page, err)
		}
		rd.pages[page] = tmpl
	}
	return rd, nil
}

// HTML renders page with status. The page is executed into a buffer first
// so a template failure still produces a clean 500.
func (rd *Renderer) HTML(w http.ResponseWriter, r *http.Request, status int, page string, v view) {
	tmpl, ok := rd.pages[page]
	if !ok {
		rd.logger.Error("unknown template", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	v.Site = rd.site
	_, v.SignedIn = auth.SessionFromContext(r.Context())
	v.Flashes = rd.flashes.Pop(w, r)

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", v); err != nil {
		rd.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Error maps err to a status code and renders the error page.
func (rd *Renderer) Error(w http.ResponseWriter, r *http.Request, err error) {
	page := errorPage{Status: http.StatusInternalServerError, Message: "Something went wrong on our side."}

	var appErr *apperror.AppError
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		page = errorPage{Status: http.StatusNotFound, Message: "That page does not exist."}
	case errors.Is(err, apperror.ErrForbidden):
		page = errorPage{Status: http.StatusForbidden, Message: "You are not allowed to do that."}
		if errors.As(err, &appErr) {
			page.Message = appErr.Message
		}
	case errors.Is(err, apperror.ErrValidation):
		page = errorPage{Status: http.StatusBadRequest, Message: "The request was not valid."}
	default:
		rd.logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}

	rd.HTML(w, r, page.Status, "error.html", view{Title: strconv.Itoa(page.Status), Data: page})
}

// NotFound renders the 404 page for unrouted paths.
func (rd *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	rd.Error(w, r, apperror.NotFound("page", r.URL.Path))
}

// MethodNotAllowed renders a plain 405.
func (rd *Renderer) MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

// redirect sends a 303 so a POST is followed by a GET.
func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// idParam reads the {id} route parameter. Anything that is not a positive
// integer is treated as a missing post.
func idParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperror.NotFound("post", raw)
	}
	return id, nil
}

// pageParam reads ?page=, defaulting to 1. Garbage becomes 0, which the
// services report as NotFound.
func pageParam(r *http.Request) int {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
