package auth

import (
	"JobBridge-backend/internal/database"
	"JobBridge-backend/internal/model"
	"JobBridge-backend/internal/utilities"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LocalAuthHandler holds the database connection for login and registration.
type LocalAuthHandler struct {
	DB *database.DBinstanceStruct
}

// NewLocalAuthHandler creates a new instance of LocalAuthHandler with the provided database connection.
func NewLocalAuthHandler(db *database.DBinstanceStruct) *LocalAuthHandler {
	return &LocalAuthHandler{DB: db}
}

// LocalRegisterHandler function handles local registration by receiving username and password
// do nothing if username already exist in the database
// do nothing if password is shorter than 8 characters
// @Summary Register with username and password
// @Tags Auth
// @Accept json
// @Produce json
// @Success 201 {object} model.User "Successfully registered"
// @Failure 400 {object} utilities.ErrorResponse "Invalid body, duplicate username or weak password"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /auth/register [post]
func (h *LocalAuthHandler) LocalRegisterHandler(c *gin.Context) {
	var info struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role" binding:"required,oneof=applicant company"`
	}

	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Username, password, and role (only 'applicant' or 'company') must be provided",
		})
		return
	}

	var existing model.User
	err := h.DB.Where("username = ?", info.Username).First(&existing).Error

	switch {
	case err == nil:
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Username already exist",
		})
		return

	case errors.Is(err, gorm.ErrRecordNotFound):
		// Do nothing

	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %s", err.Error()),
		})
		return
	}

	if len(info.Password) < 8 {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Password should longer or equal to 8 characters",
		})
		return
	}

	hashedPassword, err := utilities.HashPassword(info.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed hash password: %s", err.Error()),
		})
		return
	}

	user := model.User{
		Username: info.Username,
		Password: hashedPassword,
		Role:     info.Role,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to create user: %s", err.Error()),
		})
		return
	}

	accessToken, err := generateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to generate access token: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":         user,
		"access_token": accessToken,
	})
}

// LocalLoginHandler function handles local login by receiving username and password
// do nothing if username does not exist in the database
// do nothing if password is incorrect
// @Summary Login with username and password
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} model.User "Successfully logged in"
// @Failure 400 {object} utilities.ErrorResponse "Username or password is not provided"
// @Failure 401 {object} utilities.ErrorResponse "Username or password is incorrect"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /auth/login [post]
func (h *LocalAuthHandler) LocalLoginHandler(c *gin.Context) {
	var info struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Username or password is not provided",
		})
		return
	}

	var user model.User
	err := h.DB.Where("username = ?", info.Username).First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{
			Error: "Username or password is incorrect",
		})
		return

	case err == nil:
		// Do nothing

	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %s", err.Error()),
		})
		return
	}

	if user.Password == "" || !utilities.VerifyPassword(info.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{
			Error: "Username or password is incorrect",
		})
		return
	}

	accessToken, err := generateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to generate access token: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"access_token": accessToken,
	})
}
