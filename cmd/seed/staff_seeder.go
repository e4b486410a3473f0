package main

import (
	"log"
	"os"

	"regassist-be/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedStaffUsers creates the initial staff accounts. There is no self-service
// registration, so a fresh deployment needs at least the admin seeded here.
func SeedStaffUsers(db *gorm.DB) {
	password := os.Getenv("SEED_STAFF_PASSWORD")
	if password == "" {
		password = "ChangeMe123!"
		log.Println("Warn: SEED_STAFF_PASSWORD not set, using the default. Rotate it before going live.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing staff password: %v", err)
		return
	}

	users := []model.User{
		{
			Email:        "admin@regassist.local",
			PasswordHash: string(hash),
			FullName:     "Platform Admin",
			Role:         "admin",
			Status:       "active",
		},
		{
			Email:        "curator@regassist.local",
			PasswordHash: string(hash),
			FullName:     "Golden Store Curator",
			Role:         "curator",
			Status:       "active",
		},
		{
			Email:        "reviewer@regassist.local",
			PasswordHash: string(hash),
			FullName:     "Feedback Reviewer",
			Role:         "reviewer",
			Status:       "active",
		},
	}

	for _, u := range users {
		var existing model.User
		if err := db.Where("email = ?", u.Email).First(&existing).Error; err == nil {
			log.Printf("Staff user '%s' already exists, skipping...", u.Email)
			continue
		}
		if err := db.Create(&u).Error; err != nil {
			log.Printf("Error seeding staff user %s: %v", u.Email, err)
		}
	}
	log.Println("✅ Staff users seeded successfully.")
}
