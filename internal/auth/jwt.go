// Package auth implement the authentication boundary: JWT issuing/validation
// and local username/password login.
package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"
)

// SECRET_KEY signs every access token
var SECRET_KEY = os.Getenv("SECRET_KEY")

// JwtIssuer is the expected issuer claim on every token this service signs
const JwtIssuer = "JobBridge"

func generateToken(uuid uuid.UUID) (string, error) {

	generatedAccessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    JwtIssuer,
		Subject:   uuid.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})

	signedToken, err := generatedAccessToken.SignedString([]byte(SECRET_KEY))
	if err != nil {
		return "", fmt.Errorf("Failed to sign token: %s", err)
	}

	return signedToken, nil
}

// ValidatedToken parses and verifies an encoded access token.
func ValidatedToken(encodeToken string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(encodeToken, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, isvalid := token.Method.(*jwt.SigningMethodHMAC); !isvalid {
			return nil, fmt.Errorf("Invalid token")
		}
		return []byte(SECRET_KEY), nil
	})
}
