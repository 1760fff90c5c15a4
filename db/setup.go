package db

import (
	"errors"
	"os"
	"time"

	"github.com/safework-dev/safework/internal/logger"
	"github.com/safework-dev/safework/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	const maxAttempts = 10

	for i := 1; i <= maxAttempts; i++ {
		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

		if err == nil {
			return nil
		}

		logger.Log.Warnf("Failed to connect to database (attempt %d/%d): %v", i, maxAttempts, err)
		time.Sleep(2 * time.Second)
	}

	return err
}

func MigrateDatabase() error {
	models := []interface{}{
		&models.User{},
		&models.PasswordReset{},
		&models.Project{},
		&models.ProjectMember{},
		&models.RiskAssessment{},
		&models.RiskFactor{},
		&models.SafetyDocument{},
		&models.DocumentAccess{},
		&models.Worker{},
		&models.WorkerEducation{},
		&models.WorkerCheckin{},
		&models.Notification{},
		&models.CommunityPost{},
		&models.Comment{},
		&models.ChatMessage{},
	}

	migrator := DB.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := DB.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}

// SeedAdmin creates the bootstrap admin account when no ADMIN user exists.
// Credentials come from ADMIN_EMAIL / ADMIN_PASSWORD; without them seeding
// is skipped.
func SeedAdmin() error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")

	if email == "" || password == "" {
		return nil
	}

	var existing models.User

	err := DB.Where("role = ?", models.UserRoleAdmin).First(&existing).Error

	if err == nil {
		return nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	if err != nil {
		return err
	}

	admin := models.User{
		Name:         "관리자",
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         models.UserRoleAdmin,
	}

	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	logger.Log.Infof("Created bootstrap admin user %s", email)
	return nil
}
