// Package server is the composition root: it opens the database, builds
// every service and handler from the Config, and mounts them on a chi
// router.
//
//	config.Config → sqlite.DB → services → handlers → chi routes
//
// Nothing below this package reads configuration or builds its own
// dependencies.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/quill/internal/auth"
	"github.com/sakif/quill/internal/config"
	"github.com/sakif/quill/internal/handler"
	"github.com/sakif/quill/internal/mail"
	"github.com/sakif/quill/internal/middleware"
	sqliteRepo "github.com/sakif/quill/internal/repository/sqlite"
	"github.com/sakif/quill/internal/service"
	"github.com/sakif/quill/web"
)

// Option overrides a dependency that New would otherwise build from Config.
type Option func(*options)

type options struct {
	mailer    mail.Mailer
	passwords *auth.PasswordService
	github    *auth.GitHubProvider
}

// WithMailer replaces the SMTP mailer.
func WithMailer(m mail.Mailer) Option {
	return func(o *options) { o.mailer = m }
}

// WithPasswordService replaces the bcrypt service, e.g. with a low cost.
func WithPasswordService(p *auth.PasswordService) Option {
	return func(o *options) { o.passwords = p }
}

// WithGitHub enables GitHub sign-in with the given provider.
func WithGitHub(p *auth.GitHubProvider) Option {
	return func(o *options) { o.github = p }
}

// Server owns the router and the database; Start closes the database on
// shutdown.
type Server struct {
	router   *chi.Mux
	config   *config.Config
	logger   *slog.Logger
	db       *sqliteRepo.DB
	registry *prometheus.Registry
}

// New opens the database and wires the application.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Server, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		db:       db,
		registry: prometheus.NewRegistry(),
	}
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if err := s.setupRoutes(o); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

func (s *Server) setupRoutes(o options) error {
	cfg := s.config

	tokens, err := auth.NewTokenService(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return err
	}
	passwords := o.passwords
	if passwords == nil {
		passwords = auth.NewPasswordService()
	}
	mailer := o.mailer
	if mailer == nil {
		mailer = s.buildMailer()
	}
	github := o.github
	if github == nil && cfg.GitHubEnabled() {
		callback := cfg.GitHubCallbackURL
		if callback == "" {
			callback = cfg.SiteURL + "/auth/github/callback"
		}
		github = auth.NewGitHubProvider(cfg.GitHubClientID, cfg.GitHubClientSecret, callback)
	}

	// === Services ===
	metrics := service.NewMetrics(s.registry)
	stats := service.NewStatsService(s.db, metrics, s.logger)
	posts := service.NewPostService(s.db, metrics, s.logger)
	comments := service.NewCommentService(s.db, stats, metrics, s.logger)
	authSvc := service.NewAuthService(s.db, tokens, passwords, metrics, s.logger, cfg.AllowOpenRegistration)

	// === Handlers ===
	site := handler.Site{Title: cfg.SiteTitle, URL: cfg.SiteURL, Description: cfg.SiteDescription}
	flashes := handler.NewFlasher([]byte(cfg.FlashSecret), cfg.CookieSecure, s.logger)
	render, err := handler.NewRenderer(web.FS, site, flashes, s.logger)
	if err != nil {
		return err
	}

	pages := handler.NewPageHandler(posts, comments, render, flashes, handler.PageSizes{
		Recent:   cfg.RecentPosts,
		Posts:    cfg.PostsPerPage,
		Comments: cfg.CommentsPerPage,
	}, s.logger)
	authH := handler.NewAuthHandler(authSvc, tokens, github, []byte(cfg.SessionSecret), render, flashes, cfg.CookieSecure, s.logger)
	admin := handler.NewAdminHandler(authSvc, posts, stats, render, flashes, []byte(cfg.SessionSecret), cfg.PostsPerPage, s.logger)
	contact := handler.NewContactHandler(mailer, cfg.Admins, cfg.SiteTitle, render, flashes, s.logger)
	feeds := handler.NewFeedHandler(posts, stats, site, render, s.logger)

	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		return fmt.Errorf("static assets: %w", err)
	}

	// === Middleware ===
	r := s.router
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewHTTPMetrics(s.registry).Handler)
	r.Use(middleware.CountVisits(stats, s.logger))
	r.Use(auth.LoadSession(tokens))

	r.NotFound(render.NotFound)
	r.MethodNotAllowed(render.MethodNotAllowed)

	// === Infrastructure ===
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", handler.Health(s.db, s.logger))

	// === Public pages ===
	r.Get("/", pages.HandleIndex)
	r.Get("/index", pages.HandleIndex)
	r.Get("/blog", pages.HandleBlog)
	r.Get("/post/{id}", pages.HandlePost)
	r.Post("/post/{id}", pages.HandleComment)
	r.Get("/contact", contact.HandleForm)
	r.Post("/contact", contact.HandleSend)
	r.Get("/rss", feeds.HandleRSS)
	r.Get("/comments_graph", feeds.HandleCommentsGraph)
	r.Get("/visits_graph", feeds.HandleVisitsGraph)

	// === Sign-in ===
	r.Get("/admin", authH.HandleLoginForm)
	r.Post("/admin", authH.HandleLogin)
	r.Get("/logout", authH.HandleLogout)
	r.Get("/register", authH.HandleRegisterForm)
	r.Post("/register", authH.HandleRegister)
	if github != nil {
		r.Get("/auth/github/login", authH.HandleGitHubLogin)
		r.Get("/auth/github/callback", authH.HandleGitHubCallback)
	}

	// === Dashboard ===
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Get("/dashboard", admin.HandleDashboard)
		r.Post("/dashboard", admin.HandleCreatePost)
		r.Get("/all_posts", admin.HandleAllPosts)
		r.Get("/update/{id}", admin.HandleEditForm)
		r.Post("/update/{id}", admin.HandleUpdate)
		r.Get("/delete_post/{id}", admin.HandleDelete)
	})

	return nil
}

func (s *Server) buildMailer() mail.Mailer {
	if !s.config.MailEnabled() {
		s.logger.Warn("SMTP_HOST not set; contact form messages will not be delivered")
		return mail.Disabled{}
	}
	return mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     s.config.SMTPHost,
		Port:     s.config.SMTPPort,
		Username: s.config.SMTPUsername,
		Password: s.config.SMTPPassword,
		From:     s.config.MailFrom,
	}, s.logger)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests for
// up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         s.config.Addr(),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("url", s.config.SiteURL),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}
	return nil
}
