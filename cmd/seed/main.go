package main

import (
	"context"
	"log"
	"time"

	"github.com/Shravan4507/ise-elevators-website/internal/auth"
	"github.com/Shravan4507/ise-elevators-website/internal/config"
	"github.com/Shravan4507/ise-elevators-website/internal/db"
	"github.com/Shravan4507/ise-elevators-website/internal/identity"
	"github.com/Shravan4507/ise-elevators-website/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if !validation.IsEmail(cfg.AdminEmail) {
		log.Fatal("ADMIN_EMAIL must be a valid email address")
	}
	if len(cfg.AdminPassword) < auth.MinPasswordLength {
		log.Fatalf("ADMIN_PASSWORD must be at least %d characters", auth.MinPasswordLength)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		log.Fatal(err)
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Fatal(err)
	}

	created, err := identity.NewMongoAccounts(cols.Admins).Upsert(ctx, cfg.AdminEmail, hash, time.Now().In(cfg.Timezone))
	if err != nil {
		log.Fatal(err)
	}
	if created {
		log.Printf("admin account created: %s", identity.NormalizeEmail(cfg.AdminEmail))
	} else {
		log.Printf("admin password reset: %s", identity.NormalizeEmail(cfg.AdminEmail))
	}
}
