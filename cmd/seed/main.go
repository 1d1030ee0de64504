// Command seed creates the initial super admin. Admins are never created
// through the API.
package main

import (
	"log"
	"os"

	"huparfum-backend/config"
	"huparfum-backend/internal/auth"
	"huparfum-backend/internal/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	name := os.Getenv("SEED_ADMIN_NAME")
	if email == "" || password == "" {
		log.Fatal("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD must be set")
	}
	if name == "" {
		name = "Admin"
	}

	store, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	if _, err := store.AdminByEmail(email); err == nil {
		log.Printf("admin %s already exists, nothing to do", email)
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	admin := &db.Admin{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     db.RoleSuperAdmin,
	}
	if err := store.CreateAdmin(admin); err != nil {
		log.Fatalf("create admin: %v", err)
	}
	log.Printf("created super admin %s (id=%d)", email, admin.ID)
}
