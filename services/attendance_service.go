package services

import (
	"fmt"
	"log"
	"time"

	"campus-event-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AttendanceService struct {
	DB *gorm.DB
}

func NewAttendanceService(db *gorm.DB) *AttendanceService {
	return &AttendanceService{DB: db}
}

// ownedEvent resolves a published event scoped to the calling organizer.
func (s *AttendanceService) ownedEvent(c *fiber.Ctx) (*models.Event, error) {
	organizerID, _ := c.Locals("user_id").(string)
	var event models.Event
	err := s.DB.First(&event, "id = ? AND organizer_id = ?", c.Params("id"), organizerID).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetAttendance lists every ticket for an owned event with participant
// details, for the check-in dashboard.
func (s *AttendanceService) GetAttendance(c *fiber.Ctx) error {
	event, err := s.ownedEvent(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Event not found or unauthorized"})
	}

	var tickets []models.Ticket
	err = s.DB.Preload("Participant").
		Where("event_id = ?", event.ID).
		Order("purchase_date DESC").
		Find(&tickets).Error
	if err != nil {
		log.Printf("Get attendance error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error fetching attendance"})
	}
	return c.JSON(tickets)
}

type scanRequest struct {
	TicketID string `json:"ticketId"`
}

// ScanTicket marks attendance from a QR scan. Only Registered tickets pass;
// a second scan of the same ticket is reported as a duplicate.
func (s *AttendanceService) ScanTicket(c *fiber.Ctx) error {
	event, err := s.ownedEvent(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Event not found or unauthorized"})
	}

	var req scanRequest
	if err := c.BodyParser(&req); err != nil || req.TicketID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "ticketId is required"})
	}

	var ticket models.Ticket
	err = s.DB.Preload("Participant").
		First(&ticket, "ticket_id = ? AND event_id = ?", req.TicketID, event.ID).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Ticket not found for this event"})
	}

	if ticket.Status != models.TicketRegistered {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": fmt.Sprintf("Ticket status is %s. Cannot mark attendance.", ticket.Status),
		})
	}
	if ticket.AttendanceMarked {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Duplicate Scan: Attendance already marked."})
	}

	now := time.Now()
	err = s.DB.Model(&ticket).Updates(map[string]any{
		"attendance_marked":    true,
		"attendance_timestamp": now,
	}).Error
	if err != nil {
		log.Printf("Scan ticket error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error marking attendance"})
	}
	ticket.AttendanceMarked = true
	ticket.AttendanceTimestamp = &now
	return c.JSON(fiber.Map{"message": "Attendance marked successfully!", "ticket": ticket})
}

type overrideRequest struct {
	TicketID         string `json:"ticketId"`
	OverrideReason   string `json:"overrideReason"`
	AttendanceMarked *bool  `json:"attendanceMarked"`
}

// OverrideAttendance sets the attendance flag to the requested value
// regardless of ticket status, recording the operator's reason. Intentionally
// permissive: it exists to correct scanner mistakes.
func (s *AttendanceService) OverrideAttendance(c *fiber.Ctx) error {
	event, err := s.ownedEvent(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Event not found or unauthorized"})
	}

	var req overrideRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if req.TicketID == "" || req.OverrideReason == "" || req.AttendanceMarked == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "ticketId, overrideReason, and attendanceMarked are required"})
	}

	var ticket models.Ticket
	err = s.DB.First(&ticket, "ticket_id = ? AND event_id = ?", req.TicketID, event.ID).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Ticket not found for this event"})
	}

	now := time.Now()
	updates := map[string]any{
		"attendance_marked": *req.AttendanceMarked,
		"manual_override":   true,
		"override_reason":   req.OverrideReason,
	}
	if *req.AttendanceMarked {
		updates["attendance_timestamp"] = now
	} else {
		updates["attendance_timestamp"] = nil
	}
	if err := s.DB.Model(&ticket).Updates(updates).Error; err != nil {
		log.Printf("Override attendance error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error updating attendance"})
	}
	return c.JSON(fiber.Map{"message": "Attendance updated successfully"})
}

// GetParticipants returns the registration roster with summary analytics for
// an owned event.
func (s *AttendanceService) GetParticipants(c *fiber.Ctx) error {
	event, err := s.ownedEvent(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Event not found or unauthorized"})
	}

	var tickets []models.Ticket
	err = s.DB.Preload("Participant").
		Where("event_id = ?", event.ID).
		Order("purchase_date DESC").
		Find(&tickets).Error
	if err != nil {
		log.Printf("Get participants error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error fetching participants"})
	}

	var registered, attended, cancelled int64
	var itemsSold int64
	for i := range tickets {
		switch tickets[i].Status {
		case models.TicketRegistered, models.TicketCompleted:
			registered += int64(tickets[i].Quantity())
			itemsSold += int64(tickets[i].Quantity())
		case models.TicketCancelled:
			cancelled++
		}
		if tickets[i].AttendanceMarked {
			attended++
		}
	}

	analytics := fiber.Map{
		"totalRegistrations": registered,
		"totalAttended":      attended,
		"totalCancelled":     cancelled,
		"views":              event.Views,
	}
	if event.EventType == models.EventTypeMerchandise {
		analytics["itemsSold"] = itemsSold
	}

	return c.JSON(fiber.Map{
		"event":        event,
		"participants": tickets,
		"analytics":    analytics,
	})
}
