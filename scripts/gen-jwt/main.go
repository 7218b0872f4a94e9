// Mints a dev token for manual API testing. Usage:
//
//	JWT_SECRET=... go run ./scripts/gen-jwt [user-id]
package main

import (
	"fmt"
	"os"
	"time"

	"todo-api/internal/auth"
	"todo-api/internal/config"
)

func main() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is required")
		os.Exit(1)
	}

	userID := "test-user"
	if len(os.Args) > 1 {
		userID = os.Args[1]
	}

	tokens := auth.NewTokenManager(&config.Config{JWTSecret: secret, TokenTTL: 24 * time.Hour})
	signed, err := tokens.Issue(userID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Token issue failed:", err)
		os.Exit(1)
	}

	fmt.Println(signed)
}
