package services

import (
	"log"

	"campus-event-system/models"
	"campus-event-system/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type ProfileService struct {
	DB *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db}
}

// onboardingTopics is the fixed interest catalog shown during onboarding.
var onboardingTopics = []string{
	"Coding", "Robotics", "AI/ML", "Design", "Music", "Dance",
	"Drama", "Photography", "Gaming", "Literature", "Sports", "Finance",
}

// GetOnboardingData returns the interest topics and the active clubs a new
// participant can follow.
func (s *ProfileService) GetOnboardingData(c *fiber.Ctx) error {
	var clubs []models.Organizer
	if err := s.DB.Where("status = ?", models.OrganizerActive).Find(&clubs).Error; err != nil {
		log.Printf("Onboarding data error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error fetching onboarding data"})
	}
	return c.JSON(fiber.Map{"topics": onboardingTopics, "clubs": clubs})
}

type onboardingRequest struct {
	FirstName        string   `json:"firstName" validate:"required"`
	LastName         string   `json:"lastName"`
	ContactNumber    string   `json:"contactNumber"`
	College          string   `json:"college"`
	InterestedTopics []string `json:"interestedTopics"`
	InterestedClubs  []string `json:"interestedClubs"`
}

// SubmitOnboarding completes the participant's profile and re-issues the
// access token with the completed flag set, so the client does not have to
// log in again.
func (s *ProfileService) SubmitOnboarding(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req onboardingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if err := utils.Validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "firstName is required"})
	}

	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.ContactNumber = req.ContactNumber
	user.College = req.College
	user.InterestedTopics = req.InterestedTopics
	user.InterestedClubs = req.InterestedClubs
	user.Filled = true

	if err := s.DB.Save(&user).Error; err != nil {
		log.Printf("Onboarding save error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error saving profile"})
	}

	token, err := GenerateAccessToken(user.ID, user.Username, user.UserType, true)
	if err != nil {
		log.Printf("Token refresh error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error saving profile"})
	}
	return c.JSON(fiber.Map{"message": "Profile completed successfully!", "token": token})
}

// GetClubs lists active clubs for the participant club directory.
func (s *ProfileService) GetClubs(c *fiber.Ctx) error {
	var clubs []models.Organizer
	if err := s.DB.Where("status = ?", models.OrganizerActive).Find(&clubs).Error; err != nil {
		log.Printf("Get clubs error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error fetching clubs"})
	}
	return c.JSON(clubs)
}

// GetClub returns one club with its published events.
func (s *ProfileService) GetClub(c *fiber.Ctx) error {
	id := c.Params("id")

	var club models.Organizer
	if err := s.DB.First(&club, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Club not found"})
	}
	var events []models.Event
	if err := s.DB.Where("organizer_id = ?", id).Find(&events).Error; err != nil {
		log.Printf("Get club events error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error fetching club"})
	}
	return c.JSON(fiber.Map{"club": club, "events": events})
}

// ToggleFollowClub follows or unfollows a club for the caller.
func (s *ProfileService) ToggleFollowClub(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	clubID := c.Params("id")

	var club models.Organizer
	if err := s.DB.First(&club, "id = ?", clubID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Club not found"})
	}
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
	}

	following := false
	next := make([]string, 0, len(user.InterestedClubs))
	for _, id := range user.InterestedClubs {
		if id == clubID {
			following = true
			continue
		}
		next = append(next, id)
	}
	if !following {
		next = append(next, clubID)
	}
	user.InterestedClubs = next

	if err := s.DB.Save(&user).Error; err != nil {
		log.Printf("Toggle follow error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error updating profile"})
	}

	msg := "Club followed"
	if following {
		msg = "Club unfollowed"
	}
	return c.JSON(fiber.Map{"message": msg, "following": !following})
}

// GetProfile returns the participant's own profile.
func (s *ProfileService) GetProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
	}
	return c.JSON(user)
}

type profileUpdateRequest struct {
	FirstName        *string   `json:"firstName"`
	LastName         *string   `json:"lastName"`
	ContactNumber    *string   `json:"contactNumber"`
	College          *string   `json:"college"`
	InterestedTopics *[]string `json:"interestedTopics"`
}

// UpdateProfile patches the participant's editable profile fields. Followed
// clubs have their own toggle endpoint.
func (s *ProfileService) UpdateProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req profileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.ContactNumber != nil {
		user.ContactNumber = *req.ContactNumber
	}
	if req.College != nil {
		user.College = *req.College
	}
	if req.InterestedTopics != nil {
		user.InterestedTopics = *req.InterestedTopics
	}

	if err := s.DB.Save(&user).Error; err != nil {
		log.Printf("Update profile error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error updating profile"})
	}
	return c.JSON(fiber.Map{"message": "Profile updated successfully", "user": user})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// ChangePassword verifies the current secret before storing the new hash.
func (s *ProfileService) ChangePassword(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if err := utils.Validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "currentPassword and newPassword (min 6 chars) are required"})
	}

	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Current password is incorrect"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error changing password"})
	}
	if err := s.DB.Model(&user).Update("password", string(hash)).Error; err != nil {
		log.Printf("Change password error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error changing password"})
	}
	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}

// GetOrganizerProfile returns the calling organizer's own record.
func (s *ProfileService) GetOrganizerProfile(c *fiber.Ctx) error {
	organizerID, _ := c.Locals("user_id").(string)

	var organizer models.Organizer
	if err := s.DB.First(&organizer, "id = ?", organizerID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Organizer not found"})
	}
	return c.JSON(organizer)
}

type organizerUpdateRequest struct {
	Name           *string `json:"name"`
	Category       *string `json:"category"`
	Description    *string `json:"description"`
	Contact        *string `json:"contact"`
	DiscordWebhook *string `json:"discordWebhook"`
}

// UpdateOrganizerProfile patches the organizer's public details and webhook.
func (s *ProfileService) UpdateOrganizerProfile(c *fiber.Ctx) error {
	organizerID, _ := c.Locals("user_id").(string)

	var req organizerUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	var organizer models.Organizer
	if err := s.DB.First(&organizer, "id = ?", organizerID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Organizer not found"})
	}

	if req.Name != nil {
		organizer.Name = *req.Name
	}
	if req.Category != nil {
		organizer.Category = *req.Category
	}
	if req.Description != nil {
		organizer.Description = *req.Description
	}
	if req.Contact != nil {
		organizer.Contact = *req.Contact
	}
	if req.DiscordWebhook != nil {
		organizer.DiscordWebhook = *req.DiscordWebhook
	}

	if err := s.DB.Save(&organizer).Error; err != nil {
		log.Printf("Update organizer profile error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error updating profile"})
	}
	return c.JSON(fiber.Map{"message": "Profile updated successfully", "organizer": organizer})
}
