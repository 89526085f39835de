// Package service holds the blog's business rules.
//
//	Handler (HTTP) → Service (rules, validation) → Repository (SQLite)
//
// Services never see an http.Request. They take validated inputs from
// internal/form, return model values or apperror errors, and log business
// events.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/quill/internal/apperror"
	"github.com/sakif/quill/internal/auth"
	"github.com/sakif/quill/internal/form"
	"github.com/sakif/quill/internal/model"
	"github.com/sakif/quill/internal/repository"
)

// AuthService checks credentials, creates accounts and issues session tokens.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	metrics   *Metrics
	logger    *slog.Logger

	// openRegistration lets anonymous visitors register even after the
	// first account exists.
	openRegistration bool
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	metrics *Metrics,
	logger *slog.Logger,
	openRegistration bool,
) *AuthService {
	return &AuthService{
		users:            users,
		tokens:           tokens,
		passwords:        passwords,
		metrics:          metrics,
		logger:           logger,
		openRegistration: openRegistration,
	}
}

// AuthResult bundles the signed-in user and the token for the session cookie.
type AuthResult struct {
	User  *model.User
	Token string
}

// Authenticate checks email and password. An unknown email and a wrong
// password both return apperror.InvalidCredentials, and both cost one bcrypt
// comparison.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.passwords.BurnTime(password)
			s.metrics.login("password", false)
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.metrics.login("password", false)
			s.logger.Info("failed login", slog.Int64("userID", user.ID))
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: verifying password: %w", err)
	}

	return s.issue(user, "password")
}

// LoginGitHub signs in the account whose email matches the GitHub primary
// email. GitHub never creates accounts.
func (s *AuthService) LoginGitHub(ctx context.Context, gh *auth.GitHubUser) (*AuthResult, error) {
	if gh == nil || gh.Email == "" {
		return nil, fmt.Errorf("service/auth: GitHub user without email")
	}

	user, err := s.users.GetUserByEmail(ctx, gh.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.metrics.login("github", false)
			s.logger.Warn("GitHub sign-in for unknown email", slog.String("login", gh.Login))
			return nil, apperror.Forbidden("no account is linked to this GitHub email")
		}
		return nil, fmt.Errorf("service/auth: looking up GitHub user: %w", err)
	}

	return s.issue(user, "github")
}

func (s *AuthService) issue(user *model.User, method string) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %d: %w", user.ID, err)
	}

	s.metrics.login(method, true)
	s.logger.Info("admin signed in",
		slog.Int64("userID", user.ID),
		slog.String("method", method),
	)
	return &AuthResult{User: user, Token: token}, nil
}

// CanRegister reports whether the caller may open the registration form:
// a signed-in admin, anyone while no account exists, or anyone when open
// registration is configured.
func (s *AuthService) CanRegister(ctx context.Context, sess *auth.Session) (bool, error) {
	if sess != nil || s.openRegistration {
		return true, nil
	}
	n, err := s.users.CountUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("service/auth: counting users: %w", err)
	}
	return n == 0, nil
}

// Register creates an account. A duplicate email is reported as a
// validation error on the email field.
func (s *AuthService) Register(ctx context.Context, sess *auth.Session, in form.Register) (*model.User, error) {
	ok, err := s.CanRegister(ctx, sess)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.Forbidden("registration is closed")
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", "password must be 72 bytes or fewer")
	}

	user := &model.User{Email: in.Email, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.ValidationFailed("email", "an account with this email already exists")
		}
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered", slog.Int64("userID", user.ID))
	return user, nil
}

// CurrentUser resolves the account behind a session.
func (s *AuthService) CurrentUser(ctx context.Context, sess *auth.Session) (*model.User, error) {
	if sess == nil {
		return nil, apperror.Forbidden("not signed in")
	}
	user, err := s.users.GetUserByID(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: loading user %d: %w", sess.UserID, err)
	}
	return user, nil
}
