package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/trsv-dev/gated-static-server/internal/auth"
)

// Выпуск JWT для режима -auth=jwt. Токен печатается в stdout,
// его нужно положить в cookie auth_token.
func main() {
	_ = godotenv.Load(".env.development")

	subject := flag.String("sub", "developer", "Token subject")
	ttl := flag.Duration("ttl", auth.DefaultTokenExp, "Token lifetime")
	secret := flag.String("jwt-secret", "", "JWT secret key (default: JWT_SECRET_KEY)")
	flag.Parse()

	if *secret == "" {
		*secret = os.Getenv("JWT_SECRET_KEY")
	}
	if *secret == "" {
		log.Fatal("не задан JWT_SECRET_KEY")
	}

	token, err := auth.BuildJWTToken(*subject, *secret, *ttl)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(token)
}
