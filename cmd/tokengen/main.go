// Command tokengen mints access tokens for local development.
//
// Usage:
//
//	tokengen -user t1 -role teacher -name "Grace Teacher"
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/learnhub/backend/internal/auth/service"
	"github.com/learnhub/backend/internal/config"
	"github.com/learnhub/backend/internal/models"
)

func main() {
	userID := flag.String("user", "", "user ID (random UUID when empty)")
	role := flag.String("role", models.RoleStudent, "role: student or teacher")
	name := flag.String("name", "", "display name")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	if *userID == "" {
		*userID = uuid.NewString()
	}

	tokenGenerator := service.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	token, err := tokenGenerator.GenerateAccessToken(models.Principal{
		UserID: *userID,
		Role:   *role,
		Name:   *name,
	})
	if err != nil {
		log.Fatalf("Failed to generate token: %v\n", err)
	}

	fmt.Println(token)
}
