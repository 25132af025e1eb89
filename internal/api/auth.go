package api

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation
	"time"     // Token lifetimes

	"bakery_system/internal/domain" // Importing domain models
	"bakery_system/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// RegisterRequest carries a new account registration
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`    // Unique email
	Username string `json:"username" binding:"required,min=3"` // Unique username
	FullName string `json:"full_name" binding:"required"`      // Display name
	Phone    string `json:"phone"`                             // Optional phone
	Address  string `json:"address"`                           // Optional default address
	Password string `json:"password" binding:"required,min=8"` // Plain password, hashed before storage
	Role     string `json:"role"`                              // Optional role, defaults to customer
}

// LoginRequest carries login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"` // Account email
	Password string `json:"password" binding:"required"`    // Plain password
}

// AuthResponse returns a bearer token together with the user profile
type AuthResponse struct {
	AccessToken string      `json:"access_token"` // JWT token
	TokenType   string      `json:"token_type"`   // Always "bearer"
	User        domain.User `json:"user"`         // Authenticated profile
}

// RegisterHandler creates a new account and returns a token plus profile
func RegisterHandler(db *gorm.DB, jwtSecret string, tokenTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		role := req.Role
		if role == "" {
			role = domain.RoleCustomer // Default role
		}
		if !domain.ValidRole(role) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
			return
		}
		email := strings.ToLower(req.Email) // Emails are compared case-insensitively
		// Reject duplicate email before attempting the insert
		var existing domain.User
		if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		// Reject duplicate username
		if err := db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
			return
		}
		// Hash the password and create the user
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		user := domain.User{
			Email:    email,
			Username: req.Username,
			FullName: req.FullName,
			Phone:    req.Phone,
			Address:  req.Address,
			Password: string(hash),
			Role:     role,
			IsActive: true,
		}
		if err := db.Create(&user).Error; err != nil {
			// Unique constraint can still fire under concurrent registration
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		token, err := utils.GenerateJWT(user.Email, jwtSecret, tokenTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,
			"email":   user.Email,
			"role":    user.Role,
		}).Info("User registered")
		c.JSON(http.StatusCreated, AuthResponse{AccessToken: token, TokenType: "bearer", User: user})
	}
}

// LoginHandler authenticates by email and password and returns a token
func LoginHandler(db *gorm.DB, jwtSecret string, tokenTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		token, user, status, msg := authenticate(db, req.Email, req.Password, jwtSecret, tokenTTL)
		if status != http.StatusOK {
			c.JSON(status, gin.H{"error": msg})
			return
		}
		c.JSON(http.StatusOK, AuthResponse{AccessToken: token, TokenType: "bearer", User: user})
	}
}

// TokenHandler is the OAuth2-style form endpoint; the username field carries the email
func TokenHandler(db *gorm.DB, jwtSecret string, tokenTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.PostForm("username")
		password := c.PostForm("password")
		if email == "" || password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		token, user, status, msg := authenticate(db, email, password, jwtSecret, tokenTTL)
		if status != http.StatusOK {
			c.JSON(status, gin.H{"error": msg})
			return
		}
		c.JSON(http.StatusOK, AuthResponse{AccessToken: token, TokenType: "bearer", User: user})
	}
}

// MeHandler returns the authenticated user's profile
func MeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _, ok := caller(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var user domain.User
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// authenticate verifies credentials and issues a token
func authenticate(db *gorm.DB, email, password, jwtSecret string, tokenTTL time.Duration) (string, domain.User, int, string) {
	var user domain.User
	if err := db.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return "", user, http.StatusUnauthorized, "Incorrect email or password"
	}
	// Compare provided password with stored hash
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", user, http.StatusUnauthorized, "Incorrect email or password"
	}
	if !user.IsActive {
		return "", user, http.StatusForbidden, "Inactive user"
	}
	token, err := utils.GenerateJWT(user.Email, jwtSecret, tokenTTL)
	if err != nil {
		return "", user, http.StatusInternalServerError, "Failed to generate token"
	}
	return token, user, http.StatusOK, ""
}
