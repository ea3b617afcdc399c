// Command admin_seed creates the initial platform admin account from
// environment variables. It is safe to run repeatedly: an existing admin
// with the same email is left untouched.
package main

import (
	"errors"
	"log"
	"os"

	"bariq/internal/config"
	"bariq/internal/models"
	"bariq/internal/repositories"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	config.LoadEnv()

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}
	fullName := config.GetEnv("ADMIN_FULL_NAME", "Platform Admin")

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	admins := repositories.NewAdminRepository(repositories.DB)

	if _, err := admins.GetByEmail(email); err == nil {
		log.Printf("Admin %s already exists, nothing to do", email)
		return
	} else if !errors.Is(err, repositories.ErrAdminNotFound) {
		log.Fatalf("Failed to look up admin: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	admin := &models.AdminUser{
		ID:       uuid.NewString(),
		Email:    email,
		Password: string(hash),
		FullName: fullName,
		Role:     "admin",
		IsActive: true,
	}
	if err := admins.Create(admin); err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	log.Printf("Admin %s created", email)
}
