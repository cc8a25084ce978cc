package services

import (
	"errors"
	"log"

	"campus-event-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AdminService struct {
	DB *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{DB: db}
}

// CreateOrganizer registers a new club account.
func (s *AdminService) CreateOrganizer(c *fiber.Ctx) error {
	type Req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		Name        string `json:"name"`
		Category    string `json:"category"`
		Description string `json:"description"`
		Contact     string `json:"contact"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Email and password are required"})
	}

	var existing models.Organizer
	if err := s.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Organizer already exists"})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Create organizer lookup error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error creating organizer"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error creating organizer"})
	}

	org := models.Organizer{
		ID:          uuid.NewString(),
		Email:       req.Email,
		Password:    string(hashed),
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Contact:     req.Contact,
		UserType:    models.UserTypeOrganizer,
		Status:      models.OrganizerActive,
	}
	if err := s.DB.Create(&org).Error; err != nil {
		log.Printf("Create organizer insert error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error creating organizer"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Organizer created successfully!"})
}

// GetOrganizers lists every club account, password hashes excluded by the
// model's json tag.
func (s *AdminService) GetOrganizers(c *fiber.Ctx) error {
	var organizers []models.Organizer
	if err := s.DB.Find(&organizers).Error; err != nil {
		log.Printf("Get organizers error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error fetching organizers"})
	}
	return c.JSON(organizers)
}

// DeleteOrganizer hard-deletes a club account.
func (s *AdminService) DeleteOrganizer(c *fiber.Ctx) error {
	id := c.Params("id")
	result := s.DB.Delete(&models.Organizer{}, "id = ?", id)
	if result.Error != nil {
		log.Printf("Delete organizer error: %v", result.Error)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error deleting organizer"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Organizer not found"})
	}
	return c.JSON(fiber.Map{"message": "Organizer deleted successfully"})
}

// ArchiveOrganizer toggles a club between active and archived. Archived
// organizers are refused at login.
func (s *AdminService) ArchiveOrganizer(c *fiber.Ctx) error {
	type Req struct {
		Status string `json:"status"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if req.Status != models.OrganizerActive && req.Status != models.OrganizerArchived {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid status value"})
	}

	var org models.Organizer
	if err := s.DB.First(&org, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Organizer not found"})
	}
	if err := s.DB.Model(&org).Update("status", req.Status).Error; err != nil {
		log.Printf("Archive organizer error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error archiving organizer"})
	}

	return c.JSON(fiber.Map{"message": "Organizer successfully " + req.Status, "organizer": org})
}

// GetPasswordResets lists reset requests, newest first.
func (s *AdminService) GetPasswordResets(c *fiber.Ctx) error {
	var requests []models.PassReset
	if err := s.DB.Order("date DESC").Find(&requests).Error; err != nil {
		log.Printf("Fetch password resets error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error fetching requests"})
	}
	return c.JSON(requests)
}

// ResolvePasswordReset approves or rejects a pending request. Approval
// re-hashes the organizer credential — and the participant account sharing
// the same login handle, when one exists (the two identity stores overlap
// on handles, so both are resolved through resolveAccountsByHandle).
func (s *AdminService) ResolvePasswordReset(c *fiber.Ctx) error {
	type Req struct {
		Action      string  `json:"action"` // Approve | Reject
		NewPassword *string `json:"newPassword"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	var reset models.PassReset
	if err := s.DB.First(&reset, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Reset request not found"})
	}
	if reset.Status != models.ResetPending {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Request is already processed"})
	}

	switch req.Action {
	case "Reject":
		if err := s.DB.Model(&reset).Update("status", models.ResetRejected).Error; err != nil {
			log.Printf("Reject password reset error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error resolving request"})
		}
		return c.JSON(fiber.Map{"message": "Request rejected successfully"})

	case "Approve":
		if req.NewPassword == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Valid new password is required to approve"})
		}

		org, user, err := s.resolveAccountsByHandle(reset.ClubEmail)
		if err != nil {
			log.Printf("Resolve accounts error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error resolving request"})
		}
		if org == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Club/Organizer could not be found"})
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error resolving request"})
		}

		err = s.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(org).Update("password", string(hashed)).Error; err != nil {
				return err
			}
			if user != nil {
				if err := tx.Model(user).Update("password", string(hashed)).Error; err != nil {
					return err
				}
			}
			return tx.Model(&reset).Update("status", models.ResetApproved).Error
		})
		if err != nil {
			log.Printf("Approve password reset error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error resolving request"})
		}

		return c.JSON(fiber.Map{"message": "Password reset and request approved successfully"})
	}

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid action"})
}

// resolveAccountsByHandle consults both identity stores for the same login
// string. Either result may be nil; only lookup failures other than
// not-found surface as errors.
func (s *AdminService) resolveAccountsByHandle(handle string) (*models.Organizer, *models.User, error) {
	var org models.Organizer
	err := s.DB.Where("email = ?", handle).First(&org).Error
	orgPtr := &org
	if errors.Is(err, gorm.ErrRecordNotFound) {
		orgPtr = nil
	} else if err != nil {
		return nil, nil, err
	}

	var user models.User
	err = s.DB.Where("username = ?", handle).First(&user).Error
	userPtr := &user
	if errors.Is(err, gorm.ErrRecordNotFound) {
		userPtr = nil
	} else if err != nil {
		return nil, nil, err
	}

	return orgPtr, userPtr, nil
}
