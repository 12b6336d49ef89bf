package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/DeanLuus22021994/recruit/internal/models"
	"github.com/DeanLuus22021994/recruit/internal/storage"
)

const (
	stateCookie        = "oauthstate"
	GoogleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
	defaultAfterLogin  = "/dashboard/"
)

var ErrNoEmail = errors.New("identity provider returned no email")

// Google signs users in with Google OAuth2 and opens a cookie session.
type Google struct {
	OAuth       *oauth2.Config
	DB          *gorm.DB
	Sessions    SessionStore
	UserInfoURL string
	AfterLogin  string
	Secure      bool
}

func NewGoogle(clientID, clientSecret, redirectURL string, db *gorm.DB, sessions SessionStore) *Google {
	return &Google{
		OAuth: &oauth2.Config{
			RedirectURL:  redirectURL,
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.profile",
				"https://www.googleapis.com/auth/userinfo.email",
			},
			Endpoint: google.Endpoint,
		},
		DB:          db,
		Sessions:    sessions,
		UserInfoURL: GoogleUserInfoURL,
		AfterLogin:  defaultAfterLogin,
		Secure:      strings.HasPrefix(redirectURL, "https://"),
	}
}

// GoogleUser is the subset of the userinfo response we use.
type GoogleUser struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

func (g *Google) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   g.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, g.OAuth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func (g *Google) HandleCallback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || r.URL.Query().Get("state") != cookie.Value {
		http.Error(w, "Invalid OAuth state", http.StatusBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/", MaxAge: -1})

	info, err := g.fetchUser(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		slog.Error("google sign-in failed", slog.Any("error", err))
		http.Error(w, "Failed to sign in with Google", http.StatusBadGateway)
		return
	}

	user, err := LookupOrCreateUser(r.Context(), g.DB, info)
	if err != nil {
		slog.Error("sign-in user lookup failed", slog.String("email", info.Email), slog.Any("error", err))
		http.Error(w, "Failed to sign in", http.StatusInternalServerError)
		return
	}

	if err := StartSession(r.Context(), w, g.Sessions, user.ID, g.Secure); err != nil {
		slog.Error("create session failed", slog.Any("error", err))
		http.Error(w, "Failed to sign in", http.StatusInternalServerError)
		return
	}
	slog.Info("user signed in", slog.String("user_id", user.ID))

	dest := g.AfterLogin
	if dest == "" {
		dest = defaultAfterLogin
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (g *Google) HandleLogout(w http.ResponseWriter, r *http.Request) {
	Logout(g.Sessions)(w, r)
}

func (g *Google) fetchUser(ctx context.Context, code string) (GoogleUser, error) {
	token, err := g.OAuth.Exchange(ctx, code)
	if err != nil {
		return GoogleUser{}, fmt.Errorf("exchange token: %w", err)
	}
	client := g.OAuth.Client(ctx, token)
	resp, err := client.Get(g.UserInfoURL)
	if err != nil {
		return GoogleUser{}, fmt.Errorf("get user info: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return GoogleUser{}, fmt.Errorf("get user info: status %d", resp.StatusCode)
	}

	var info GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return GoogleUser{}, fmt.Errorf("decode user info: %w", err)
	}
	info.Email = strings.ToLower(strings.TrimSpace(info.Email))
	if info.Email == "" {
		return GoogleUser{}, ErrNoEmail
	}
	return info, nil
}

// LookupOrCreateUser returns the user registered under info.Email, creating
// the user and an empty profile on first sign-in.
func LookupOrCreateUser(ctx context.Context, db *gorm.DB, info GoogleUser) (models.User, error) {
	if user, ok := storage.GetUserByEmail(ctx, db, info.Email); ok {
		return user, nil
	}

	first, last := info.GivenName, info.FamilyName
	if first == "" && last == "" {
		first, last, _ = strings.Cut(info.Name, " ")
	}
	user := models.User{Email: info.Email, FirstName: first, LastName: last}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&models.Profile{UserID: user.ID}).Error
	})
	if storage.IsDuplicate(err) {
		// Lost a race with a concurrent first sign-in.
		if existing, ok := storage.GetUserByEmail(ctx, db, info.Email); ok {
			return existing, nil
		}
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}
