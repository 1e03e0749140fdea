// Package utilities contain utility code that use across the package
package utilities

import (
	"JobBridge-backend/internal/model"
	"errors"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrorResponse type for swagger docs
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse type for swagger docs
type MessageResponse struct {
	Message string `json:"message"`
}

// ExtractUser extracts the user model from Gin context.
// It does not abort the request; instead returns an error when missing/invalid.
func ExtractUser(c *gin.Context) (model.User, error) {
	u, _ := c.Get("user")
	if u == nil {
		return model.User{}, errors.New("User information not provided")
	}

	user, ok := u.(model.User)
	if !ok {
		return model.User{}, errors.New("Failed to assert type")
	}
	return user, nil
}

// ExtractBearerToken pulls the token out of the Authorization header.
func ExtractBearerToken(c *gin.Context) (string, error) {
	const BearerSchema = "Bearer "
	authHeader := c.GetHeader("Authorization")

	if len(authHeader) <= len(BearerSchema) {
		return "", fmt.Errorf("Invalid authorization header")
	}

	return authHeader[len(BearerSchema):], nil
}

// CreateAdmin creates an admin user with the given password and username in the provided database.
func CreateAdmin(password string, username string, db *gorm.DB) {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		log.Fatal("failed to hash password: ", err)
	}

	admin := model.User{
		Username: username,
		Password: hashedPassword,
		Role:     model.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatal("failed to create admin: ", err)
	}
}
