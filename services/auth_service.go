package services

import (
	"errors"
	"log"
	"os"
	"time"

	"campus-event-system/models"
	"campus-event-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	DB *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{DB: db}
}

// GenerateAccessToken signs the short-lived session credential (~1h).
func GenerateAccessToken(userID, username, userType string, filled bool) (string, error) {
	claims := jwt.MapClaims{
		"userId":   userID,
		"username": username,
		"userType": userType,
		"filled":   filled,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

// GenerateRefreshToken signs the long-lived renewal credential (~7d).
func GenerateRefreshToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID,
		"exp":    time.Now().Add(7 * 24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_REFRESH_SECRET")))
}

// Register creates a participant account behind the CAPTCHA gate.
func (s *AuthService) Register(c *fiber.Ctx) error {
	type Req struct {
		Email          string `json:"email" validate:"required,email"`
		Password       string `json:"password" validate:"required,min=6"`
		UserType       string `json:"userType" validate:"required,oneof=iiit non-iiit"`
		TurnstileToken string `json:"turnstileToken"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if req.TurnstileToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "CAPTCHA token is missing."})
	}
	if !utils.VerifyTurnstile(req.TurnstileToken) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "CAPTCHA verification failed. Please try again."})
	}
	if err := utils.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Email, password and user type are required"})
	}

	var existing models.User
	if err := s.DB.Where("username = ?", req.Email).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "User already exists"})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Registration lookup error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error during registration"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error during registration"})
	}

	user := models.User{
		ID:       uuid.NewString(),
		Username: req.Email,
		Password: string(hashed),
		UserType: req.UserType,
	}
	if err := s.DB.Create(&user).Error; err != nil {
		log.Printf("Registration insert error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error during registration"})
	}

	token, err := GenerateAccessToken(user.ID, user.Username, user.UserType, user.Filled)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error during registration"})
	}
	refresh, err := GenerateRefreshToken(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error during registration"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Registration successful!",
		"token":        token,
		"refreshToken": refresh,
	})
}

// Login authenticates a participant or organizer against its own store.
// The roleHint in the request decides which store is consulted; a mismatch
// between hint and the account's actual role is a 403.
func (s *AuthService) Login(c *fiber.Ctx) error {
	type Req struct {
		Email          string `json:"email"`
		Password       string `json:"password"`
		UserType       string `json:"userType"`
		TurnstileToken string `json:"turnstileToken"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	if req.UserType != models.UserTypeAdmin {
		if req.TurnstileToken == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "CAPTCHA token is missing."})
		}
		if !utils.VerifyTurnstile(req.TurnstileToken) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "CAPTCHA verification failed. Please try again."})
		}
	}

	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Email/Username and password are required"})
	}

	var (
		id, username, userType, storedHash string
		filled                             bool
	)

	switch req.UserType {
	case "participant":
		var user models.User
		if err := s.DB.Where("username = ?", req.Email).First(&user).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid credentials"})
		}
		if user.UserType != models.UserTypeIIIT && user.UserType != models.UserTypeNonIIIT {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Access denied. Not a participant."})
		}
		id, username, userType, storedHash, filled = user.ID, user.Username, user.UserType, user.Password, user.Filled
	case "organizer":
		var org models.Organizer
		if err := s.DB.Where("email = ?", req.Email).First(&org).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid credentials"})
		}
		if org.Status == models.OrganizerArchived {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Account has been archived. Please contact an administrator."})
		}
		id, username, userType, storedHash, filled = org.ID, org.Email, models.UserTypeOrganizer, org.Password, true
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid user type"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid credentials"})
	}

	token, err := GenerateAccessToken(id, username, userType, filled)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error during login"})
	}
	refresh, err := GenerateRefreshToken(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error during login"})
	}

	return c.JSON(fiber.Map{
		"message":      "Login successful!",
		"token":        token,
		"refreshToken": refresh,
	})
}

// AdminLogin authenticates against the seeded admin account. The admin is a
// regular bcrypt-hashed user row bootstrapped by SeedAdminAccount, not a
// literal credential pair baked into the handler.
func (s *AuthService) AdminLogin(c *fiber.Ctx) error {
	type Req struct {
		Username       string `json:"username"`
		Password       string `json:"password"`
		TurnstileToken string `json:"turnstileToken"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if req.TurnstileToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "CAPTCHA token is missing."})
	}
	if !utils.VerifyTurnstile(req.TurnstileToken) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "CAPTCHA verification failed. Please try again."})
	}

	var admin models.User
	if err := s.DB.Where("username = ? AND user_type = ?", req.Username, models.UserTypeAdmin).First(&admin).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid admin credentials"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid admin credentials"})
	}

	token, err := GenerateAccessToken(admin.ID, admin.Username, models.UserTypeAdmin, true)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error during admin login"})
	}

	return c.JSON(fiber.Map{
		"message": "Admin login successful!",
		"token":   token,
	})
}

// RequestPasswordReset files a pending reset request for an organizer.
// At most one pending request may exist per email.
func (s *AuthService) RequestPasswordReset(c *fiber.Ctx) error {
	type Req struct {
		Email  string `json:"email"`
		Reason string `json:"reason"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if req.Email == "" || req.Reason == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Email and reason are required"})
	}

	var org models.Organizer
	if err := s.DB.Where("email = ?", req.Email).First(&org).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Club/Organizer not found"})
	}

	var pending models.PassReset
	if err := s.DB.Where("club_email = ? AND status = ?", req.Email, models.ResetPending).First(&pending).Error; err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "A password reset request is already pending for this email"})
	}

	request := models.PassReset{
		ID:        uuid.NewString(),
		ClubEmail: req.Email,
		Reason:    req.Reason,
		Status:    models.ResetPending,
		Date:      time.Now(),
	}
	if err := s.DB.Create(&request).Error; err != nil {
		log.Printf("Password reset request error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error while submitting request"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Password reset request submitted successfully"})
}

// SeedAdminAccount bootstraps the admin user from ADMIN_USERNAME /
// ADMIN_PASSWORD. Existing admin rows are left untouched.
func SeedAdminAccount(db *gorm.DB) error {
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Println("⚠️  ADMIN_PASSWORD not set — admin account not seeded")
		return nil
	}

	var existing models.User
	err := db.Where("username = ? AND user_type = ?", username, models.UserTypeAdmin).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		ID:       uuid.NewString(),
		Username: username,
		Password: string(hashed),
		UserType: models.UserTypeAdmin,
		Filled:   true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("✅ Seeded admin account %q", username)
	return nil
}
