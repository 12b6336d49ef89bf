// Package app assembles the services and routes from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/DeanLuus22021994/recruit/internal/accounts"
	"github.com/DeanLuus22021994/recruit/internal/auth"
	"github.com/DeanLuus22021994/recruit/internal/candidates"
	"github.com/DeanLuus22021994/recruit/internal/config"
	"github.com/DeanLuus22021994/recruit/internal/files"
	"github.com/DeanLuus22021994/recruit/internal/handlers"
	"github.com/DeanLuus22021994/recruit/internal/interviews"
	"github.com/DeanLuus22021994/recruit/internal/jobs"
	"github.com/DeanLuus22021994/recruit/internal/mail"
	"github.com/DeanLuus22021994/recruit/internal/profiles"
	"github.com/DeanLuus22021994/recruit/internal/storage"
)

// App is a fully wired application.
type App struct {
	DB      *gorm.DB
	Handler *handlers.Handler
	Router  http.Handler

	closers []func() error
}

// New opens the database and builds every service named by cfg.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := storage.Open(cfg)
	if err != nil {
		return nil, err
	}
	a := &App{DB: db}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}

	store, err := newFileStorage(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	sessions, err := newSessionStore(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	if rs, ok := sessions.(*auth.RedisStore); ok {
		a.closers = append(a.closers, rs.Close)
	}

	var transport mail.Transport = mail.LogTransport{}
	if cfg.SendGridAPIKey != "" {
		transport = mail.NewSendGridTransport(cfg.SendGridAPIKey)
	} else {
		slog.Warn("SENDGRID_API_KEY not set, emails are only logged")
	}

	prof := profiles.NewService(db, store)
	h := &handlers.Handler{
		DB: db,
		Apply: &candidates.Apply{
			DB:       db,
			Tokens:   accounts.NewTokenSigner(cfg.SecretKey),
			Profiles: prof,
			MaxAge:   cfg.TokenMaxAge,
		},
		Profiles:   prof,
		Jobs:       jobs.NewService(db),
		Interviews: interviews.NewService(db),
		Mail:       mail.NewDispatcher(db, transport, cfg.DefaultFromEmail),
		Sessions:   sessions,
	}
	if cfg.AdminEmail != "" {
		staff, err := accounts.EnsureStaff(ctx, db, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			a.Close()
			return nil, err
		}
		slog.Info("staff account ready", slog.String("user_id", staff.ID))
	}
	secure := strings.HasPrefix(cfg.BaseURL, "https://")
	h.Password = &auth.Password{DB: db, Sessions: sessions, Secure: secure}
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		h.Google = auth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL, db, sessions)
	} else {
		slog.Warn("Google OAuth credentials not set, sign-in disabled")
	}

	a.Handler = h
	a.Router = handlers.NewRouter(h)
	return a, nil
}

func newFileStorage(ctx context.Context, cfg *config.Config) (files.Storage, error) {
	switch cfg.StorageBackend {
	case "s3":
		s, err := files.NewS3Storage(ctx, cfg.BucketName, "media")
		if err != nil {
			return nil, fmt.Errorf("s3 storage: %w", err)
		}
		slog.Info("file storage: s3", slog.String("bucket", cfg.BucketName))
		return s, nil
	case "local", "":
		s, err := files.NewLocalStorage(cfg.MediaRoot)
		if err != nil {
			return nil, fmt.Errorf("local storage: %w", err)
		}
		slog.Info("file storage: local", slog.String("root", cfg.MediaRoot))
		return s, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}

func newSessionStore(ctx context.Context, cfg *config.Config) (auth.SessionStore, error) {
	if cfg.RedisURL == "" {
		return auth.NewMemoryStore(auth.DefaultTTL), nil
	}
	s, err := auth.NewRedisStore(ctx, cfg.RedisURL, auth.DefaultTTL)
	if err != nil {
		return nil, err
	}
	slog.Info("sessions: redis")
	return s, nil
}

// Close releases connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Serve runs an HTTP server on addr until ctx is cancelled, then shuts it
// down gracefully.
func (a *App) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
