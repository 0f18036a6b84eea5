// Command tokengen issues HS256 bearer tokens for local development
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	userID := flag.Int64("user", 0, "user id placed in the subject claim")
	issuer := flag.String("issuer", envOr("JWT_ISSUER", "companymcp"), "issuer claim")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "HMAC secret, defaults to JWT_SECRET")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *userID <= 0 || *secret == "" {
		flag.Usage()
		os.Exit(2)
	}

	token, err := issue(*userID, *issuer, []byte(*secret), *ttl, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

func issue(userID int64, issuer string, secret []byte, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
