package main

import (
	"errors" // Error inspection
	"os"     // Environment overrides

	"bakery_system/internal/config" // Custom import path (Config)
	"bakery_system/internal/domain" // Custom import path (Domain models)

	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/gorm"               // GORM ORM library
)

// seedUser creates an account if it does not already exist. An existing
// account is treated as success so the seed stays idempotent.
func seedUser(db *gorm.DB, user domain.User, password string) error {
	var existing domain.User
	err := db.Where("email = ?", user.Email).First(&existing).Error
	if err == nil {
		logrus.WithField("email", user.Email).Info("Account already exists, skipping")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hash)
	user.IsActive = true
	if err := db.Create(&user).Error; err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"email": user.Email, "role": user.Role}).Info("Account created")
	return nil
}

// Main entry point for seeding bootstrap accounts
func main() {
	cfg := config.LoadConfig() // Load configuration
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}

	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin12345"
	}
	bakerPassword := os.Getenv("SEED_BAKER_PASSWORD")
	if bakerPassword == "" {
		bakerPassword = "baker12345"
	}

	admin := domain.User{
		Email:    "admin@bakery.local",
		Username: "admin",
		FullName: "Bakery Admin",
		Role:     domain.RoleAdmin,
	}
	if err := seedUser(db, admin, adminPassword); err != nil {
		logrus.Fatalf("failed to seed admin: %v", err)
	}

	baker := domain.User{
		Email:    "baker@bakery.local",
		Username: "defaultbaker",
		FullName: "Default Baker",
		Role:     domain.RoleBaker,
	}
	if err := seedUser(db, baker, bakerPassword); err != nil {
		logrus.Fatalf("failed to seed baker: %v", err)
	}

	logrus.Info("Seed completed.")
}
