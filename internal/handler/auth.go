package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/rs/xid"

	"github.com/sakif/quill/internal/apperror"
	"github.com/sakif/quill/internal/auth"
	"github.com/sakif/quill/internal/form"
	"github.com/sakif/quill/internal/service"
)

const (
	stateCookie = "quill_oauth_state"
	stateMaxAge = 600
)

// AuthHandler serves sign-in, sign-out, registration and GitHub sign-in.
type AuthHandler struct {
	auth    *service.AuthService
	tokens  *auth.TokenService
	github  *auth.GitHubProvider // nil when GitHub sign-in is not configured
	state   *securecookie.SecureCookie
	render  *Renderer
	flashes *Flasher
	secure  bool
	logger  *slog.Logger
}

func NewAuthHandler(
	authSvc *service.AuthService,
	tokens *auth.TokenService,
	github *auth.GitHubProvider,
	stateKey []byte,
	render *Renderer,
	flashes *Flasher,
	secureCookies bool,
	logger *slog.Logger,
) *AuthHandler {
	sc := securecookie.New(stateKey, nil)
	sc.MaxAge(stateMaxAge)
	return &AuthHandler{
		auth:    authSvc,
		tokens:  tokens,
		github:  github,
		state:   sc,
		render:  render,
		flashes: flashes,
		secure:  secureCookies,
		logger:  logger,
	}
}

func (h *AuthHandler) showLogin(w http.ResponseWriter, r *http.Request, status int, in form.Login, errs apperror.FieldErrors) {
	in.Password = ""
	h.render.HTML(w, r, status, "login.html", view{
		Title:  "Sign in",
		Form:   in,
		Errors: errs,
		Data:   map[string]any{"GitHub": h.github != nil},
	})
}

// HandleLoginForm serves GET /admin.
func (h *AuthHandler) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.SessionFromContext(r.Context()); ok {
		redirect(w, r, "/dashboard")
		return
	}
	h.showLogin(w, r, http.StatusOK, form.Login{}, nil)
}

// HandleLogin serves POST /admin.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.SessionFromContext(r.Context()); ok {
		redirect(w, r, "/dashboard")
		return
	}

	in, err := form.ParseLogin(r)
	if err != nil {
		h.render.Error(w, r, apperror.ValidationFailed("", "malformed form"))
		return
	}
	if err := in.Validate(); err != nil {
		h.showLogin(w, r, http.StatusBadRequest, in, apperror.Fields(err))
		return
	}

	res, err := h.auth.Authenticate(r.Context(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, apperror.ErrInvalidCredentials) {
			h.flashes.Add(w, r, "Invalid email or password")
			redirect(w, r, auth.LoginPath)
			return
		}
		h.render.Error(w, r, err)
		return
	}

	auth.SetSessionCookie(w, res.Token, h.tokens.TTL(), h.secure)
	redirect(w, r, "/dashboard")
}

// HandleLogout serves GET /logout.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w)
	h.flashes.Add(w, r, "Signed out")
	redirect(w, r, "/")
}

func (h *AuthHandler) sessionOrNil(r *http.Request) *auth.Session {
	sess, _ := auth.SessionFromContext(r.Context())
	return sess
}

// HandleRegisterForm serves GET /register.
func (h *AuthHandler) HandleRegisterForm(w http.ResponseWriter, r *http.Request) {
	ok, err := h.auth.CanRegister(r.Context(), h.sessionOrNil(r))
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	if !ok {
		h.render.Error(w, r, apperror.Forbidden("Registration is closed."))
		return
	}
	h.render.HTML(w, r, http.StatusOK, "register.html", view{Title: "Register", Form: form.Register{}})
}

// HandleRegister serves POST /register.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	in, err := form.ParseRegister(r)
	if err != nil {
		h.render.Error(w, r, apperror.ValidationFailed("", "malformed form"))
		return
	}

	sess := h.sessionOrNil(r)
	if _, err := h.auth.Register(r.Context(), sess, in); err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			in.Password, in.Confirm = "", ""
			h.render.HTML(w, r, http.StatusBadRequest, "register.html", view{
				Title:  "Register",
				Form:   in,
				Errors: apperror.Fields(err),
			})
			return
		}
		h.render.Error(w, r, err)
		return
	}

	h.flashes.Add(w, r, "Account created")
	if sess != nil {
		redirect(w, r, "/dashboard")
		return
	}
	redirect(w, r, auth.LoginPath)
}

// HandleGitHubLogin serves GET /auth/github/login. The random state is kept
// in a signed, short-lived cookie and checked on the callback.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	encoded, err := h.state.Encode(stateCookie, state)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    encoded,
		Path:     "/auth/github",
		MaxAge:   stateMaxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback serves GET /auth/github/callback.
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	if !h.validState(r) {
		h.logger.Warn("GitHub callback with invalid state")
		h.render.Error(w, r, apperror.Forbidden("Sign-in request expired. Please try again."))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/auth/github", MaxAge: -1})

	if denied := r.URL.Query().Get("error"); denied != "" {
		h.logger.Info("GitHub authorization denied", slog.String("error", denied))
		h.flashes.Add(w, r, "GitHub sign-in was cancelled")
		redirect(w, r, auth.LoginPath)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.render.Error(w, r, apperror.ValidationFailed("code", "missing OAuth code"))
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("GitHub exchange failed", slog.String("error", err.Error()))
		h.flashes.Add(w, r, "GitHub sign-in failed")
		redirect(w, r, auth.LoginPath)
		return
	}

	res, err := h.auth.LoginGitHub(r.Context(), ghUser)
	if err != nil {
		if errors.Is(err, apperror.ErrForbidden) {
			h.flashes.Add(w, r, "No account uses that GitHub email")
			redirect(w, r, auth.LoginPath)
			return
		}
		h.render.Error(w, r, err)
		return
	}

	auth.SetSessionCookie(w, res.Token, h.tokens.TTL(), h.secure)
	redirect(w, r, "/dashboard")
}

func (h *AuthHandler) validState(r *http.Request) bool {
	c, err := r.Cookie(stateCookie)
	if err != nil || c.Value == "" {
		return false
	}
	var want string
	if err := h.state.Decode(stateCookie, c.Value, &want); err != nil {
		return false
	}
	return want != "" && r.URL.Query().Get("state") == want
}
