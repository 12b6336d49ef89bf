package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/DeanLuus22021994/recruit/internal/models"
	"github.com/DeanLuus22021994/recruit/internal/storage"
)

// ErrBadCredentials is returned for an unknown email or a wrong password.
var ErrBadCredentials = errors.New("invalid email or password")

const (
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt ignores anything longer
)

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

// CheckPassword reports whether pw matches hash. An empty hash never matches.
func CheckPassword(hash, pw string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

func validatePassword(pw string) error {
	v := &ValidationError{}
	switch {
	case len(pw) < minPasswordLen:
		v.Add("password", fmt.Sprintf("Ensure this value has at least %d characters.", minPasswordLen))
	case len(pw) > maxPasswordLen:
		v.Add("password", fmt.Sprintf("Ensure this value has at most %d bytes.", maxPasswordLen))
	}
	return v.Err()
}

// SetPassword replaces the user's password hash.
func SetPassword(ctx context.Context, db *gorm.DB, userID, pw string) error {
	if err := validatePassword(pw); err != nil {
		return err
	}
	hash, err := HashPassword(pw)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	res := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("password_hash", hash)
	if res.Error != nil {
		return fmt.Errorf("set password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", userID, gorm.ErrRecordNotFound)
	}
	return nil
}

// Authenticate returns the user with the given email when pw matches the
// stored hash. Unknown emails and wrong passwords both yield ErrBadCredentials.
func Authenticate(ctx context.Context, db *gorm.DB, email, pw string) (*models.User, error) {
	user, ok := storage.GetUserByEmail(ctx, db, strings.ToLower(strings.TrimSpace(email)))
	if !ok || !CheckPassword(user.PasswordHash, pw) {
		return nil, ErrBadCredentials
	}
	return &user, nil
}

// EnsureStaff creates a staff identity with the given password, or promotes
// and re-keys an existing one.
func EnsureStaff(ctx context.Context, db *gorm.DB, email, pw string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, &ValidationError{Fields: map[string]string{"email": "This field is required."}}
	}
	if err := validatePassword(pw); err != nil {
		return nil, err
	}
	hash, err := HashPassword(pw)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var user models.User
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if existing, ok := storage.GetUserByEmail(ctx, tx, email); ok {
			user = existing
			user.IsStaff = true
			user.PasswordHash = hash
			return tx.Model(&user).Updates(map[string]any{"is_staff": true, "password_hash": hash}).Error
		}
		user = models.User{Email: email, PasswordHash: hash, IsStaff: true}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&models.Profile{UserID: user.ID}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("ensure staff %s: %w", email, err)
	}
	return &user, nil
}
