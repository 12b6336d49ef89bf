package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeanLuus22021994/recruit/internal/app"
	"github.com/DeanLuus22021994/recruit/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		DBDriver:         "sqlite",
		SQLitePath:       filepath.Join(dir, "app.db"),
		SecretKey:        "secret",
		TokenMaxAge:      time.Hour,
		DefaultFromEmail: "team@example.com",
		StorageBackend:   "local",
		MediaRoot:        filepath.Join(dir, "media"),
	}
}

func TestNewLocalMode(t *testing.T) {
	a, err := app.New(context.Background(), testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	assert.Nil(t, a.Handler.Google)

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewWithGoogle(t *testing.T) {
	cfg := testConfig(t)
	cfg.GoogleClientID = "id"
	cfg.GoogleClientSecret = "secret"
	cfg.OAuthRedirectURL = "http://localhost:8080/callback"

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
}

func TestNewWithAdminSignsInByPassword(t *testing.T) {
	cfg := testConfig(t)
	cfg.AdminEmail = "admin@example.com"
	cfg.AdminPassword = "correct horse"

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	form := url.Values{"email": {"admin@example.com"}, "password": {"correct horse"}}
	req := httptest.NewRequest(http.MethodPost, "/login/password", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	req = httptest.NewRequest(http.MethodGet, "/dashboard/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.StorageBackend = "ftp"
	_, err := app.New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestServeStopsOnCancel(t *testing.T) {
	a, err := app.New(context.Background(), testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
