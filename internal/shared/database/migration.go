package database

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/memberhub/registry-api/internal/config"
	"github.com/memberhub/registry-api/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migrate executes database migration based on configuration
func Migrate(db *gorm.DB, cfg *config.Config) error {
	if !cfg.Database.IsAutoMigrate {
		slog.Info("database migration disabled",
			"auto_migrate", false, "env", cfg.App.Env,
		)
		return SeedModerator(db, cfg)
	}

	slog.Warn("database migration starting - all tables will be dropped and recreated",
		"auto_migrate", true, "env", cfg.App.Env,
	)

	// Safety check: prevent accidental data loss in production
	if cfg.App.Env == "prod" || cfg.App.Env == "production" {
		return fmt.Errorf("DB_AUTO_MIGRATE=true is not allowed in production")
	}

	// Step 1: Drop all tables (Oracle)
	slog.Info("dropping existing tables")

	// Order matters: drop in reverse dependency order (FK constraints)
	tableNames := []string{"member", "moderator"}

	for _, tableName := range tableNames {
		// Check if table exists (Oracle)
		var count int64
		db.Raw("SELECT COUNT(*) FROM USER_TABLES WHERE UPPER(TABLE_NAME) = UPPER(?)", tableName).Scan(&count)

		if count > 0 {
			// Oracle: DROP TABLE with CASCADE CONSTRAINTS
			dropSQL := fmt.Sprintf("DROP TABLE %s CASCADE CONSTRAINTS", tableName)
			if err := db.Exec(dropSQL).Error; err != nil {
				slog.Debug("failed to drop table", "table", tableName, "error", err)
			} else {
				slog.Debug("table dropped", "table", tableName)
			}
		}
	}

	// Step 2: Create tables with IDENTITY columns
	slog.Info("creating tables")
	if err := runAutoMigrate(db); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	slog.Info("migration complete")
	return SeedModerator(db, cfg)
}

// runAutoMigrate creates tables based on model definitions
func runAutoMigrate(db *gorm.DB) error {
	// Create in dependency order: independent tables first
	models := []interface{}{
		&model.Member{},
		&model.Moderator{},
	}

	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("%T migration failed: %w", m, err)
		}
		slog.Debug("table created", "model", fmt.Sprintf("%T", m))
	}

	return nil
}

// SeedModerator creates the configured moderator account if it does not
// exist. A no-op when ADMIN_EMAIL is not set.
func SeedModerator(db *gorm.DB, cfg *config.Config) error {
	if cfg.Admin.Email == "" {
		return nil
	}

	var existing model.Moderator
	err := db.Where("email = ?", cfg.Admin.Email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up seed moderator: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed moderator password: %w", err)
	}

	moderator := &model.Moderator{
		Email:    cfg.Admin.Email,
		Name:     cfg.Admin.Name,
		Password: string(hashed),
	}
	if err := db.Create(moderator).Error; err != nil {
		return fmt.Errorf("failed to create seed moderator: %w", err)
	}

	slog.Info("seed moderator created", "email", cfg.Admin.Email)
	return nil
}
