package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/DeanLuus22021994/recruit/internal/accounts"
	"github.com/DeanLuus22021994/recruit/internal/auth"
	"github.com/DeanLuus22021994/recruit/internal/models"
	"github.com/DeanLuus22021994/recruit/internal/storagetest"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := auth.NewMemoryStore(time.Hour)

	id, err := store.Create(ctx, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got)

	_, err = store.Get(ctx, "unknown")
	assert.ErrorIs(t, err, auth.ErrNoSession)

	require.NoError(t, store.Delete(ctx, id))
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, auth.ErrNoSession)
}

func whoami(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		w.Write([]byte("anonymous"))
		return
	}
	w.Write([]byte(user.Email))
}

func TestMiddleware(t *testing.T) {
	db := storagetest.Open(t)
	user := storagetest.CreateUser(t, db, "staff@example.com")
	store := auth.NewMemoryStore(time.Hour)
	sid, err := store.Create(context.Background(), user.ID)
	require.NoError(t, err)
	staleSID, err := store.Create(context.Background(), "deleted-user")
	require.NoError(t, err)

	h := auth.Middleware(store, db)(http.HandlerFunc(whoami))

	tests := []struct {
		name   string
		cookie *http.Cookie
		want   string
	}{
		{name: "no cookie", want: "anonymous"},
		{name: "unknown session", cookie: &http.Cookie{Name: auth.SessionCookie, Value: "nope"}, want: "anonymous"},
		{name: "user gone", cookie: &http.Cookie{Name: auth.SessionCookie, Value: staleSID}, want: "anonymous"},
		{name: "valid", cookie: &http.Cookie{Name: auth.SessionCookie, Value: sid}, want: "staff@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestRequireUser(t *testing.T) {
	h := auth.RequireUser(http.HandlerFunc(whoami))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.WithUser(req.Context(), models.User{Email: "a@b.co"}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@b.co", rec.Body.String())
}

func fakeGoogle(t *testing.T, email string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "token_type": "Bearer", "expires_in": 3600})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "g-1", "email": email, "name": "Ana Lima"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGoogleSignIn(t *testing.T) {
	db := storagetest.Open(t)
	store := auth.NewMemoryStore(time.Hour)
	srv := fakeGoogle(t, "Ana@Example.com")

	g := auth.NewGoogle("client", "secret", "http://localhost/callback", db, store)
	g.OAuth.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	g.UserInfoURL = srv.URL + "/userinfo"

	rec := httptest.NewRecorder()
	g.HandleLogin(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	callback := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/callback?code=abc&state="+state, nil)
		req.AddCookie(&http.Cookie{Name: "oauthstate", Value: state})
		rec := httptest.NewRecorder()
		g.HandleCallback(rec, req)
		return rec
	}

	rec = callback()
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/dashboard/", rec.Header().Get("Location"))

	var sid string
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			sid = c.Value
		}
	}
	require.NotEmpty(t, sid)
	userID, err := store.Get(context.Background(), sid)
	require.NoError(t, err)

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", userID).Error)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, "Ana", user.FirstName)
	assert.Equal(t, "Lima", user.LastName)

	// A second sign-in reuses the account.
	rec = callback()
	require.Equal(t, http.StatusSeeOther, rec.Code)
	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(1), users)
}

func TestGoogleCallbackRejectsBadState(t *testing.T) {
	db := storagetest.Open(t)
	g := auth.NewGoogle("client", "secret", "http://localhost/callback", db, auth.NewMemoryStore(0))

	req := httptest.NewRequest(http.MethodGet, "/callback?code=abc&state=forged", nil)
	req.AddCookie(&http.Cookie{Name: "oauthstate", Value: "real"})
	rec := httptest.NewRecorder()
	g.HandleCallback(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogout(t *testing.T) {
	store := auth.NewMemoryStore(time.Hour)
	sid, err := store.Create(context.Background(), "user-1")
	require.NoError(t, err)
	g := auth.NewGoogle("client", "secret", "http://localhost/callback", nil, store)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: sid})
	rec := httptest.NewRecorder()
	g.HandleLogout(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	_, err = store.Get(context.Background(), sid)
	assert.ErrorIs(t, err, auth.ErrNoSession)
}

func TestPasswordLogin(t *testing.T) {
	db := storagetest.Open(t)
	user := storagetest.CreateUser(t, db, "staff@example.com")
	require.NoError(t, accounts.SetPassword(context.Background(), db, user.ID, "correct horse"))
	store := auth.NewMemoryStore(time.Hour)
	p := &auth.Password{DB: db, Sessions: store}

	login := func(password string) *httptest.ResponseRecorder {
		form := url.Values{"email": {"staff@example.com"}, "password": {password}}
		req := httptest.NewRequest(http.MethodPost, "/login/password", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		p.HandleLogin(rec, req)
		return rec
	}

	rec := login("wrong horse")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())

	rec = login("correct horse")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard/", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	got, err := store.Get(context.Background(), cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got)
}

