// Package form holds the inputs accepted from HTML forms and one explicit
// Validate method per input. Each Validate trims its fields in place and
// returns apperror.FieldErrors so handlers can re-render the form with a
// message next to every failing field.
package form

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/quill/internal/apperror"
)

// Column limits from the schema.
const (
	MaxTitleLength       = 80
	MaxDescriptionLength = 140
	MaxEmailLength       = 64
	MaxNameLength        = 64
	MaxPasswordLength    = 72
	MaxSubjectLength     = 120
)

// emails validates address syntax only. The struct-tag machinery of the
// validator is not used; every rule lives in a Validate method below.
var emails = validator.New()

func required(fe apperror.FieldErrors, field, value, label string) {
	if value == "" {
		fe.Add(field, label+" is required")
	}
}

func maxLen(fe apperror.FieldErrors, field, value, label string, n int) {
	if utf8.RuneCountInString(value) > n {
		fe.Add(field, fmt.Sprintf("%s must be %d characters or less", label, n))
	}
}

func email(fe apperror.FieldErrors, field, value string) {
	required(fe, field, value, "email")
	if value != "" && emails.Var(value, "email") != nil {
		fe.Add(field, "enter a valid email address")
	}
	maxLen(fe, field, value, "email", MaxEmailLength)
}

// Login is the admin sign-in form.
type Login struct {
	Email    string
	Password string
}

func (f *Login) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	fe := apperror.FieldErrors{}
	email(fe, "email", f.Email)
	required(fe, "password", f.Password, "password")
	return fe.Err()
}

// Register creates an account.
type Register struct {
	Email    string
	Password string
	Confirm  string
}

func (f *Register) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	fe := apperror.FieldErrors{}
	email(fe, "email", f.Email)
	required(fe, "password", f.Password, "password")
	if len(f.Password) > MaxPasswordLength {
		fe.Add("password", fmt.Sprintf("password must be %d bytes or fewer", MaxPasswordLength))
	}
	if f.Password != f.Confirm {
		fe.Add("confirm", "passwords do not match")
	}
	return fe.Err()
}

// Post is the create/update post form.
type Post struct {
	Title       string
	Description string
	Body        string
}

func (f *Post) Validate() error {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Body = strings.TrimSpace(f.Body)

	fe := apperror.FieldErrors{}
	required(fe, "title", f.Title, "title")
	maxLen(fe, "title", f.Title, "title", MaxTitleLength)
	required(fe, "description", f.Description, "description")
	maxLen(fe, "description", f.Description, "description", MaxDescriptionLength)
	required(fe, "body", f.Body, "body")
	return fe.Err()
}

// Comment is the visitor comment form under a post.
type Comment struct {
	Email string
	Name  string
	Text  string
}

func (f *Comment) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	f.Name = strings.TrimSpace(f.Name)
	f.Text = strings.TrimSpace(f.Text)

	fe := apperror.FieldErrors{}
	email(fe, "email", f.Email)
	required(fe, "name", f.Name, "name")
	maxLen(fe, "name", f.Name, "name", MaxNameLength)
	required(fe, "comment", f.Text, "comment")
	return fe.Err()
}

// Contact is the message form sent to the site admins.
type Contact struct {
	Name    string
	Email   string
	Subject string
	Message string
}

func (f *Contact) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Subject = strings.TrimSpace(f.Subject)
	f.Message = strings.TrimSpace(f.Message)

	fe := apperror.FieldErrors{}
	required(fe, "name", f.Name, "name")
	maxLen(fe, "name", f.Name, "name", MaxNameLength)
	email(fe, "email", f.Email)
	required(fe, "subject", f.Subject, "subject")
	maxLen(fe, "subject", f.Subject, "subject", MaxSubjectLength)
	if strings.ContainsAny(f.Subject, "\r\n") {
		fe.Add("subject", "subject must be a single line")
	}
	required(fe, "message", f.Message, "message")
	return fe.Err()
}

// Parse helpers read url-encoded bodies into the inputs above.

func ParseLogin(r *http.Request) (Login, error) {
	if err := r.ParseForm(); err != nil {
		return Login{}, err
	}
	return Login{Email: r.PostForm.Get("email"), Password: r.PostForm.Get("password")}, nil
}

func ParseRegister(r *http.Request) (Register, error) {
	if err := r.ParseForm(); err != nil {
		return Register{}, err
	}
	return Register{
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
		Confirm:  r.PostForm.Get("confirm"),
	}, nil
}

func ParsePost(r *http.Request) (Post, error) {
	if err := r.ParseForm(); err != nil {
		return Post{}, err
	}
	return Post{
		Title:       r.PostForm.Get("title"),
		Description: r.PostForm.Get("description"),
		Body:        r.PostForm.Get("body"),
	}, nil
}

func ParseComment(r *http.Request) (Comment, error) {
	if err := r.ParseForm(); err != nil {
		return Comment{}, err
	}
	return Comment{
		Email: r.PostForm.Get("email"),
		Name:  r.PostForm.Get("name"),
		Text:  r.PostForm.Get("comment"),
	}, nil
}

func ParseContact(r *http.Request) (Contact, error) {
	if err := r.ParseForm(); err != nil {
		return Contact{}, err
	}
	return Contact{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Subject: r.PostForm.Get("subject"),
		Message: r.PostForm.Get("message"),
	}, nil
}
