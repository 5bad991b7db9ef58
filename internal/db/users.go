package db

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/nebari-dev/modelconfig/internal/auth"
	"github.com/nebari-dev/modelconfig/internal/models"
	"gorm.io/gorm"
)

// ErrUserNotFound is returned when a username does not resolve to a user.
var ErrUserNotFound = errors.New("user not found")

// CreateUser hashes the password and inserts a new user.
func CreateUser(db *gorm.DB, username, email, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	if email == "" {
		email = fmt.Sprintf("%s@modelconfig.local", username)
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// FindUser looks a user up by username.
func FindUser(db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	if err := db.Where(map[string]any{"username": username}).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateDefaultAdmin creates a default admin user if ADMIN_USERNAME and ADMIN_PASSWORD are set
// and no users exist in the database
func CreateDefaultAdmin(db *gorm.DB) error {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	email := os.Getenv("ADMIN_EMAIL")

	// If no admin credentials provided, skip
	if username == "" || password == "" {
		slog.Info("No ADMIN_USERNAME or ADMIN_PASSWORD set, skipping default admin creation")
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		slog.Info("Users already exist, skipping default admin creation")
		return nil
	}

	user, err := CreateUser(db, username, email, password)
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	slog.Info("Default admin user created", "username", user.Username, "email", user.Email)
	return nil
}
