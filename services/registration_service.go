package services

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"campus-event-system/models"
	"campus-event-system/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type RegistrationService struct {
	DB *gorm.DB
	// EnqueueEmail points at the notify worker; nil disables confirmations.
	EnqueueEmail func(utils.TicketEmail)

	locks utils.KeyedMutex
}

func NewRegistrationService(db *gorm.DB, enqueueEmail func(utils.TicketEmail)) *RegistrationService {
	return &RegistrationService{DB: db, EnqueueEmail: enqueueEmail}
}

// httpError carries a status code out of a transaction closure.
type httpError struct {
	code int
	msg  string
}

func (e *httpError) Error() string { return e.msg }

func reject(code int, msg string) error { return &httpError{code: code, msg: msg} }

// BrowseEvents lists published events for participants, events from clubs
// the participant follows sorted first, newest first within each tier.
func (s *RegistrationService) BrowseEvents(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
	}
	followed := map[string]bool{}
	for _, clubID := range user.InterestedClubs {
		followed[clubID] = true
	}

	var events []models.Event
	if err := s.DB.Preload("Organizer").Find(&events).Error; err != nil {
		log.Printf("Browse events error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error fetching events"})
	}

	sort.SliceStable(events, func(i, j int) bool {
		fi, fj := followed[events[i].OrganizerID], followed[events[j].OrganizerID]
		if fi != fj {
			return fi
		}
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	return c.JSON(events)
}

// GetEventDetails returns a published event and bumps its view counter.
func (s *RegistrationService) GetEventDetails(c *fiber.Ctx) error {
	id := c.Params("id")

	var event models.Event
	if err := s.DB.Preload("Organizer").First(&event, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Event not found"})
	}
	if err := s.DB.Model(&event).Update("views", gorm.Expr("views + 1")).Error; err != nil {
		log.Printf("View counter error for %s: %v", id, err)
	}
	event.Views++
	return c.JSON(event)
}

type registerRequest struct {
	Answers               map[string]any               `json:"answers"`
	MerchandiseSelections *models.MerchandiseSelection `json:"merchandiseSelections"`
}

// Register issues a ticket for the participant. All capacity and stock
// accounting runs inside a per-event critical section so concurrent
// registrations for the same event are serialized.
func (s *RegistrationService) Register(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	eventID := c.Params("id")

	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
	}

	unlock := s.locks.Lock("event:" + eventID)
	defer unlock()

	var ticket *models.Ticket
	var event models.Event
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Organizer").First(&event, "id = ?", eventID).Error; err != nil {
			return reject(fiber.StatusNotFound, "Event not found")
		}
		if !event.Open() {
			return reject(fiber.StatusBadRequest, "Event is not open for registration.")
		}

		// Any prior ticket blocks, cancelled ones included. The ticket id
		// derivation is deterministic per (event, participant), so a second
		// row could never be stored anyway.
		var existing int64
		err := tx.Model(&models.Ticket{}).
			Where("event_id = ? AND participant_id = ?", eventID, userID).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return reject(fiber.StatusConflict, "You are already registered for this event.")
		}

		opts := IssueOptions{Answers: req.Answers}
		if event.EventType == models.EventTypeMerchandise {
			if err := s.checkMerchandise(tx, &event, req.MerchandiseSelections); err != nil {
				return err
			}
			opts.Merch = req.MerchandiseSelections
		} else if err := s.checkCapacity(tx, &event); err != nil {
			return err
		}

		issued, err := IssueTicket(tx, &event, event.Organizer.Name, &user, opts)
		if err != nil {
			return err
		}
		ticket = issued
		return nil
	})
	if err != nil {
		var he *httpError
		if errors.As(err, &he) {
			return c.Status(he.code).JSON(fiber.Map{"message": he.msg})
		}
		log.Printf("Register error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error during registration"})
	}

	if s.EnqueueEmail != nil {
		s.EnqueueEmail(confirmationEmail(ticket, &event, event.Organizer.Name, user.Username))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registered successfully!",
		"ticket":  ticket,
	})
}

// checkMerchandise validates the selection and the remaining stock. Sold
// stock is the quantity sum over all tickets; cancelling never restores it.
func (s *RegistrationService) checkMerchandise(tx *gorm.DB, event *models.Event, sel *models.MerchandiseSelection) error {
	if event.MerchandiseDetails == nil {
		return reject(fiber.StatusBadRequest, "Event has no merchandise configured")
	}
	if sel == nil || sel.Size == "" || sel.Color == "" {
		return reject(fiber.StatusBadRequest, "Please select size and color.")
	}
	if sel.Quantity <= 0 {
		sel.Quantity = 1
	}
	limit := event.MerchandiseDetails.PurchaseLimit
	if limit > 0 && sel.Quantity > limit {
		return reject(fiber.StatusBadRequest, fmt.Sprintf("You can only purchase up to %d items.", limit))
	}
	if event.RegistrationLimit == nil {
		return nil
	}

	var sold int64
	err := tx.Model(&models.Ticket{}).
		Where("event_id = ?", event.ID).
		Select("COALESCE(SUM(merch_quantity), 0)").
		Scan(&sold).Error
	if err != nil {
		return err
	}
	if sold+int64(sel.Quantity) > int64(*event.RegistrationLimit) {
		return reject(fiber.StatusBadRequest, "Out of stock! Not enough items available.")
	}
	return nil
}

// checkCapacity enforces the seat limit for non-merchandise events. A nil
// limit means unlimited. Every ticket ever issued consumes a seat;
// cancellation does not hand it back.
func (s *RegistrationService) checkCapacity(tx *gorm.DB, event *models.Event) error {
	if event.RegistrationLimit == nil {
		return nil
	}
	var count int64
	err := tx.Model(&models.Ticket{}).
		Where("event_id = ?", event.ID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count >= int64(*event.RegistrationLimit) {
		return reject(fiber.StatusBadRequest, "Registration limit reached")
	}
	return nil
}

// GetMyTickets lists the participant's tickets with their events.
func (s *RegistrationService) GetMyTickets(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var tickets []models.Ticket
	err := s.DB.Preload("Event").Preload("Event.Organizer").
		Where("participant_id = ?", userID).
		Order("purchase_date DESC").
		Find(&tickets).Error
	if err != nil {
		log.Printf("Get my tickets error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error fetching tickets"})
	}
	return c.JSON(tickets)
}

// CancelTicket moves an owned Registered ticket to Cancelled. Consumed
// capacity is deliberately not restored.
func (s *RegistrationService) CancelTicket(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	id := c.Params("id")

	var ticket models.Ticket
	err := s.DB.First(&ticket, "(id = ? OR ticket_id = ?) AND participant_id = ?", id, id, userID).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Ticket not found"})
	}
	if ticket.Status != models.TicketRegistered {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Only registered tickets can be cancelled"})
	}
	if err := s.DB.Model(&ticket).Update("status", models.TicketCancelled).Error; err != nil {
		log.Printf("Cancel ticket error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error cancelling ticket"})
	}
	return c.JSON(fiber.Map{"message": "Ticket cancelled successfully"})
}
