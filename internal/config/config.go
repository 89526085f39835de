// Package config loads the blog's settings from the environment.
//
// A .env file in the working directory is read first when present, then
// every QUILL_* variable is decoded into Config. Real environment variables
// win over the .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/sakif/quill/internal/repository"
)

// Prefix is prepended to every variable name, e.g. QUILL_PORT.
const Prefix = "QUILL"

type Config struct {
	Port   int    `envconfig:"PORT" default:"8080"`
	DBPath string `envconfig:"DB_PATH" default:"data/quill.db"`

	PostsPerPage    int `envconfig:"POSTS_PER_PAGE" default:"5"`
	CommentsPerPage int `envconfig:"COMMENTS_PER_PAGE" default:"10"`
	RecentPosts     int `envconfig:"RECENT_POSTS" default:"5"`

	// Admins receive contact-form messages.
	Admins []string `envconfig:"ADMINS"`

	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"12h"`
	FlashSecret   string        `envconfig:"FLASH_SECRET"`
	CookieSecure  bool          `envconfig:"COOKIE_SECURE" default:"false"`

	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	MailFrom     string `envconfig:"MAIL_FROM"`

	GitHubClientID     string `envconfig:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string `envconfig:"GITHUB_CLIENT_SECRET"`
	GitHubCallbackURL  string `envconfig:"GITHUB_CALLBACK_URL"`

	SiteTitle       string `envconfig:"SITE_TITLE" default:"Quill"`
	SiteURL         string `envconfig:"SITE_URL" default:"http://localhost:8080"`
	SiteDescription string `envconfig:"SITE_DESCRIPTION" default:"Notes and essays"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	AllowOpenRegistration bool `envconfig:"ALLOW_OPEN_REGISTRATION" default:"false"`
}

// Load reads .env (if any) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: reading .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.normalise()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalise() {
	admins := c.Admins[:0]
	for _, a := range c.Admins {
		if a = strings.TrimSpace(a); a != "" {
			admins = append(admins, a)
		}
	}
	c.Admins = admins
	c.SiteURL = strings.TrimRight(c.SiteURL, "/")
	if c.FlashSecret == "" {
		c.FlashSecret = c.SessionSecret
	}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("config: PORT %d out of range", c.Port)
	case c.DBPath == "":
		return errors.New("config: DB_PATH must not be empty")
	case c.PostsPerPage < 1 || c.PostsPerPage > repository.MaxLimit:
		return fmt.Errorf("config: POSTS_PER_PAGE must be between 1 and %d", repository.MaxLimit)
	case c.CommentsPerPage < 1 || c.CommentsPerPage > repository.MaxLimit:
		return fmt.Errorf("config: COMMENTS_PER_PAGE must be between 1 and %d", repository.MaxLimit)
	case c.RecentPosts < 1 || c.RecentPosts > repository.MaxLimit:
		return fmt.Errorf("config: RECENT_POSTS must be between 1 and %d", repository.MaxLimit)
	case len(c.SessionSecret) < 16:
		return errors.New("config: SESSION_SECRET must be at least 16 characters")
	case len(c.FlashSecret) < 16:
		return errors.New("config: FLASH_SECRET must be at least 16 characters")
	case c.SessionTTL <= 0:
		return errors.New("config: SESSION_TTL must be positive")
	case c.SMTPHost != "" && c.MailFrom == "":
		return errors.New("config: MAIL_FROM is required when SMTP_HOST is set")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("config: LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// MailEnabled reports whether an SMTP server is configured.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

// GitHubEnabled reports whether GitHub sign-in routes should be mounted.
func (c *Config) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

func (c *Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: LOG_LEVEL: %w", err)
	}
	return lvl, nil
}
