package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DeanLuus22021994/recruit/internal/config"
	"github.com/DeanLuus22021994/recruit/internal/models"
)

// Open connects to the configured database and runs the auto migration.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	case "postgres", "":
		if cfg.DatabaseURL == "" {
			return nil, errors.New("storage: DATABASE_URL is not set")
		}
		dialector = postgres.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: connect: %w", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if cfg.DBDriver == "sqlite" {
			sqlDB.SetMaxOpenConns(1) // SQLite: single writer
		} else {
			sqlDB.SetMaxOpenConns(25)
			sqlDB.SetMaxIdleConns(10)
			sqlDB.SetConnMaxLifetime(5 * time.Minute)
		}
	}

	slog.Info("connected to database", slog.String("driver", db.Dialector.Name()))

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table the application owns.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Candidate{},
		&models.CandidateDocument{},
		&models.CandidateRequirements{},
		&models.Employer{},
		&models.EmployerRequirements{},
		&models.EmployerImage{},
		&models.Recruiter{},
		&models.Job{},
		&models.JobRequirements{},
		&models.InterviewRequest{},
		&models.InterviewInvitation{},
		&models.Available{},
		&models.Exclusion{},
		&models.EmailTemplate{},
		&models.EmailLog{},
	)
	if err != nil {
		return fmt.Errorf("storage: auto migration failed: %w", err)
	}
	return nil
}

// IsDuplicate reports whether err is a unique constraint violation.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
