// Command create-admin generates an admin account with random credentials.
package main

import (
	"JobBridge-backend/internal/database"
	"JobBridge-backend/internal/model"
	"JobBridge-backend/internal/utilities"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
)

// generateRandomString creates a random hex string of length 2n
func generateRandomString(n int) string {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		log.Fatal(err)
	}
	return hex.EncodeToString(bytes)
}

// generateUniqueUsername tries until a unique username is found
func generateUniqueUsername(db *database.DBinstanceStruct) string {
	for {
		username := "admin_" + generateRandomString(4)
		var count int64
		db.Model(&model.User{}).Where("username = ?", username).Count(&count)
		if count == 0 {
			return username
		}
	}
}

func main() {
	db, err := database.GetMainDB()
	if err != nil {
		log.Fatalf("Database failed to initialize: %v", err)
	}

	username := generateUniqueUsername(db)
	password := generateRandomString(8)

	hashedPassword, err := utilities.HashPassword(password)
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

	fmt.Println("Admin credentials generated successfully!")
	fmt.Println("======================================")
	fmt.Printf("Username: %s\n", admin.Username)
	fmt.Printf("Password: %s\n", password)
	fmt.Println("======================================")

	os.Exit(0)
}
