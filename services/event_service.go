package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"campus-event-system/models"
	"campus-event-system/utils"
	"campus-event-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type EventService struct {
	DB       *gorm.DB
	Notifier *workers.NotifyWorker
}

func NewEventService(db *gorm.DB, notifier *workers.NotifyWorker) *EventService {
	return &EventService{DB: db, Notifier: notifier}
}

// parseEventDate accepts the frontend's dd/mm/yyyy form and falls back to
// RFC3339 for already-normalized values.
func parseEventDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if strings.Contains(value, "/") {
		return time.Parse("2/1/2006", value)
	}
	return time.Parse(time.RFC3339, value)
}

type eventPayload struct {
	Name                 string                     `json:"name"`
	Description          string                     `json:"description"`
	EventType            string                     `json:"eventType"`
	Eligibility          string                     `json:"eligibility"`
	RegistrationDeadline string                     `json:"registrationDeadline"`
	StartDate            string                     `json:"startDate"`
	EndDate              string                     `json:"endDate"`
	RegistrationLimit    *int                       `json:"registrationLimit"`
	RegistrationFee      float64                    `json:"registrationFee"`
	Tags                 string                     `json:"tags"`
	Action               string                     `json:"action"` // draft | publish
	CustomFields         []models.CustomField       `json:"customFields"`
	MerchandiseDetails   *models.MerchandiseDetails `json:"merchandiseDetails"`
}

// CreateEvent stores a new event into the draft or published partition
// depending on the requested action. Publishing announces the event on the
// organizer's Discord webhook, best-effort.
func (s *EventService) CreateEvent(c *fiber.Ctx) error {
	organizerID, _ := c.Locals("user_id").(string)

	var req eventPayload
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if req.Name == "" || req.Description == "" || req.EventType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "name, description and eventType are required"})
	}
	switch req.EventType {
	case models.EventTypeNormal, models.EventTypeMerchandise, models.EventTypeHackathon:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid event type"})
	}

	deadline, err := parseEventDate(req.RegistrationDeadline)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid registrationDeadline (use dd/mm/yyyy)"})
	}
	start, err := parseEventDate(req.StartDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid startDate (use dd/mm/yyyy)"})
	}
	end, err := parseEventDate(req.EndDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid endDate (use dd/mm/yyyy)"})
	}

	// Only the payload branch matching the event type is stored.
	customFields := req.CustomFields
	merch := req.MerchandiseDetails
	if req.EventType == models.EventTypeMerchandise {
		customFields = nil
		if merch == nil {
			merch = &models.MerchandiseDetails{PurchaseLimit: 1}
		}
		if merch.PurchaseLimit <= 0 {
			merch.PurchaseLimit = 1
		}
	} else {
		merch = nil
	}

	id := uuid.NewString()

	if req.Action == "publish" {
		var organizer models.Organizer
		if err := s.DB.First(&organizer, "id = ?", organizerID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Organizer not found"})
		}

		event := models.Event{
			ID:                   id,
			Name:                 req.Name,
			Slug:                 slug.Make(organizer.Name + " " + req.Name),
			Description:          req.Description,
			EventType:            req.EventType,
			Eligibility:          req.Eligibility,
			RegistrationDeadline: deadline,
			StartDate:            start,
			EndDate:              end,
			RegistrationLimit:    req.RegistrationLimit,
			RegistrationFee:      req.RegistrationFee,
			Tags:                 req.Tags,
			OrganizerID:          organizerID,
			Status:               models.StatusPublished,
			CustomFields:         customFields,
			MerchandiseDetails:   merch,
		}
		if err := s.DB.Create(&event).Error; err != nil {
			log.Printf("Create event error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error creating event"})
		}

		s.announcePublish(&organizer, event.Name, event.Description, event.EventType, event.StartDate, event.RegistrationDeadline)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Event published successfully!", "event": event})
	}

	draft := models.DraftEvent{
		ID:                   id,
		Name:                 req.Name,
		Description:          req.Description,
		EventType:            req.EventType,
		Eligibility:          req.Eligibility,
		RegistrationDeadline: deadline,
		StartDate:            start,
		EndDate:              end,
		RegistrationLimit:    req.RegistrationLimit,
		RegistrationFee:      req.RegistrationFee,
		Tags:                 req.Tags,
		OrganizerID:          organizerID,
		Status:               models.StatusDraft,
		CustomFields:         customFields,
		MerchandiseDetails:   merch,
	}
	if err := s.DB.Create(&draft).Error; err != nil {
		log.Printf("Create draft error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error creating event"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Event saved to draft successfully!", "event": draft})
}

// GetMyEvents lists the organizer's drafts and published events; published
// entries carry the live registration count.
func (s *EventService) GetMyEvents(c *fiber.Ctx) error {
	organizerID, _ := c.Locals("user_id").(string)

	var drafts []models.DraftEvent
	if err := s.DB.Where("organizer_id = ?", organizerID).Find(&drafts).Error; err != nil {
		log.Printf("Get drafts error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error fetching events"})
	}
	var published []models.Event
	if err := s.DB.Where("organizer_id = ?", organizerID).Find(&published).Error; err != nil {
		log.Printf("Get events error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error fetching events"})
	}

	out := make([]any, 0, len(drafts)+len(published))
	for i := range drafts {
		out = append(out, drafts[i])
	}
	for i := range published {
		count, err := s.registeredCount(published[i].ID)
		if err != nil {
			log.Printf("Registered count error for %s: %v", published[i].ID, err)
		}
		out = append(out, fiber.Map{"event": published[i], "registeredCount": count})
	}
	return c.JSON(out)
}

// registeredCount sums active (Registered/Completed) tickets for an event,
// merchandise tickets weighted by quantity.
func (s *EventService) registeredCount(eventID string) (int64, error) {
	var tickets []models.Ticket
	err := s.DB.Where("event_id = ? AND status IN ?", eventID,
		[]string{models.TicketRegistered, models.TicketCompleted}).Find(&tickets).Error
	if err != nil {
		return 0, err
	}
	var total int64
	for i := range tickets {
		total += int64(tickets[i].Quantity())
	}
	return total, nil
}

// GetEvent resolves an event by id across both partitions.
func (s *EventService) GetEvent(c *fiber.Ctx) error {
	id := c.Params("id")

	var draft models.DraftEvent
	if err := s.DB.First(&draft, "id = ?", id).Error; err == nil {
		return c.JSON(draft)
	}
	var event models.Event
	if err := s.DB.First(&event, "id = ?", id).Error; err == nil {
		return c.JSON(event)
	}
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Event not found"})
}

var publishedEditableFields = map[string]bool{
	"status":               true,
	"description":          true,
	"registrationDeadline": true,
	"registrationLimit":    true,
}

// UpdateEvent applies a status-gated patch. Terminal states are immutable,
// Ongoing events accept only a status change, Published events accept the
// allow-listed fields with extend-only deadline and increase-only limit,
// and drafts patch freely — setting a draft's status to Published moves the
// record into the published partition under the same identity.
func (s *EventService) UpdateEvent(c *fiber.Ctx) error {
	organizerID, _ := c.Locals("user_id").(string)
	id := c.Params("id")

	var patchKeys map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &patchKeys); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	var patch eventPayload
	if err := json.Unmarshal(c.Body(), &patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	var statusPatch struct {
		Status string `json:"status"`
	}
	_ = json.Unmarshal(c.Body(), &statusPatch)

	var draft models.DraftEvent
	draftErr := s.DB.First(&draft, "id = ? AND organizer_id = ?", id, organizerID).Error
	if draftErr == nil {
		if statusPatch.Status == models.StatusPublished {
			return s.publishDraft(c, &draft, &patch, patchKeys)
		}
		return s.updateDraft(c, &draft, &patch, patchKeys)
	}
	if !errors.Is(draftErr, gorm.ErrRecordNotFound) {
		log.Printf("Update event lookup error: %v", draftErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error updating event"})
	}

	var event models.Event
	if err := s.DB.First(&event, "id = ? AND organizer_id = ?", id, organizerID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Event not found"})
	}

	switch event.Status {
	case models.StatusClosed, models.StatusCompleted, models.StatusCancelled:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Cannot edit an event in closed, completed, or cancelled status."})

	case models.StatusOngoing:
		for key := range patchKeys {
			if key != "status" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Ongoing events can only have their status updated (e.g., to Completed or Closed)."})
			}
		}
		if statusPatch.Status == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "status is required"})
		}
		if err := s.DB.Model(&event).Update("status", statusPatch.Status).Error; err != nil {
			log.Printf("Update event status error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error updating event"})
		}
		return c.JSON(fiber.Map{"message": "Event updated successfully"})

	case models.StatusPublished:
		for key := range patchKeys {
			if !publishedEditableFields[key] {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Published events can only update description, deadline, limit, or status."})
			}
		}

		updates := map[string]any{}
		if _, ok := patchKeys["description"]; ok {
			updates["description"] = patch.Description
		}
		if _, ok := patchKeys["registrationDeadline"]; ok {
			newDeadline, err := parseEventDate(patch.RegistrationDeadline)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid registrationDeadline (use dd/mm/yyyy)"})
			}
			if newDeadline.Before(event.RegistrationDeadline) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Registration deadline can only be extended, not shortened."})
			}
			updates["registration_deadline"] = newDeadline
		}
		if _, ok := patchKeys["registrationLimit"]; ok {
			if patch.RegistrationLimit != nil && event.RegistrationLimit != nil &&
				*patch.RegistrationLimit < *event.RegistrationLimit {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Registration limit/stock can only be increased, not decreased."})
			}
			updates["registration_limit"] = patch.RegistrationLimit
		}
		if _, ok := patchKeys["status"]; ok {
			updates["status"] = statusPatch.Status
		}

		if len(updates) > 0 {
			if err := s.DB.Model(&event).Updates(updates).Error; err != nil {
				log.Printf("Update published event error: %v", err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error updating event"})
			}
		}
		return c.JSON(fiber.Map{"message": "Event updated successfully"})
	}

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Event is not editable in its current status"})
}

// applyDraftPatch merges the patched fields into a draft. Drafts are freely
// editable; only the date fields can fail.
func applyDraftPatch(draft *models.DraftEvent, patch *eventPayload, keys map[string]json.RawMessage) error {
	if _, ok := keys["name"]; ok {
		draft.Name = patch.Name
	}
	if _, ok := keys["description"]; ok {
		draft.Description = patch.Description
	}
	if _, ok := keys["eligibility"]; ok {
		draft.Eligibility = patch.Eligibility
	}
	if _, ok := keys["tags"]; ok {
		draft.Tags = patch.Tags
	}
	if _, ok := keys["registrationFee"]; ok {
		draft.RegistrationFee = patch.RegistrationFee
	}
	if _, ok := keys["registrationLimit"]; ok {
		draft.RegistrationLimit = patch.RegistrationLimit
	}
	if _, ok := keys["registrationDeadline"]; ok {
		t, err := parseEventDate(patch.RegistrationDeadline)
		if err != nil {
			return errors.New("Invalid registrationDeadline (use dd/mm/yyyy)")
		}
		draft.RegistrationDeadline = t
	}
	if _, ok := keys["startDate"]; ok {
		t, err := parseEventDate(patch.StartDate)
		if err != nil {
			return errors.New("Invalid startDate (use dd/mm/yyyy)")
		}
		draft.StartDate = t
	}
	if _, ok := keys["endDate"]; ok {
		t, err := parseEventDate(patch.EndDate)
		if err != nil {
			return errors.New("Invalid endDate (use dd/mm/yyyy)")
		}
		draft.EndDate = t
	}
	if _, ok := keys["customFields"]; ok && draft.EventType != models.EventTypeMerchandise {
		draft.CustomFields = patch.CustomFields
	}
	if _, ok := keys["merchandiseDetails"]; ok && draft.EventType == models.EventTypeMerchandise {
		draft.MerchandiseDetails = patch.MerchandiseDetails
	}
	return nil
}

// updateDraft patches a draft in place.
func (s *EventService) updateDraft(c *fiber.Ctx, draft *models.DraftEvent, patch *eventPayload, keys map[string]json.RawMessage) error {
	if err := applyDraftPatch(draft, patch, keys); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if err := s.DB.Save(draft).Error; err != nil {
		log.Printf("Update draft error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error updating event"})
	}
	return c.JSON(fiber.Map{"message": "Event updated successfully"})
}

// publishDraft moves a draft into the published partition under the same id
// and fires the Discord announcement. Fields patched alongside the status
// flip land in the published record. The move and the draft delete run in
// one transaction.
func (s *EventService) publishDraft(c *fiber.Ctx, draft *models.DraftEvent, patch *eventPayload, keys map[string]json.RawMessage) error {
	var organizer models.Organizer
	if err := s.DB.First(&organizer, "id = ?", draft.OrganizerID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Organizer not found"})
	}

	if err := applyDraftPatch(draft, patch, keys); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	event := models.Event{
		ID:                   draft.ID, // same identity across the move
		Name:                 draft.Name,
		Slug:                 slug.Make(organizer.Name + " " + draft.Name),
		Description:          draft.Description,
		EventType:            draft.EventType,
		Eligibility:          draft.Eligibility,
		RegistrationDeadline: draft.RegistrationDeadline,
		StartDate:            draft.StartDate,
		EndDate:              draft.EndDate,
		RegistrationLimit:    draft.RegistrationLimit,
		RegistrationFee:      draft.RegistrationFee,
		Tags:                 draft.Tags,
		OrganizerID:          draft.OrganizerID,
		Status:               models.StatusPublished,
		CustomFields:         draft.CustomFields,
		MerchandiseDetails:   draft.MerchandiseDetails,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		return tx.Delete(&models.DraftEvent{}, "id = ?", draft.ID).Error
	})
	if err != nil {
		log.Printf("Publish draft error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error updating event"})
	}

	s.announcePublish(&organizer, event.Name, event.Description, event.EventType, event.StartDate, event.RegistrationDeadline)
	return c.JSON(fiber.Map{"message": "Event updated successfully"})
}

// DeleteEvent destroys a draft. Published events cannot be deleted.
func (s *EventService) DeleteEvent(c *fiber.Ctx) error {
	organizerID, _ := c.Locals("user_id").(string)
	id := c.Params("id")

	result := s.DB.Delete(&models.DraftEvent{}, "id = ? AND organizer_id = ?", id, organizerID)
	if result.Error != nil {
		log.Printf("Delete draft error: %v", result.Error)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error deleting event"})
	}
	if result.RowsAffected == 0 {
		var event models.Event
		if err := s.DB.First(&event, "id = ?", id).Error; err == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Only draft events can be deleted"})
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Event not found"})
	}
	return c.JSON(fiber.Map{"message": "Draft deleted successfully"})
}

func (s *EventService) announcePublish(org *models.Organizer, name, description, eventType string, start, deadline time.Time) {
	if s.Notifier == nil || org.DiscordWebhook == "" {
		return
	}
	organizerName := org.Name
	if organizerName == "" {
		organizerName = org.Email
	}
	s.Notifier.EnqueueDiscord(org.DiscordWebhook, utils.DiscordEventNotice{
		OrganizerName:        organizerName,
		EventName:            name,
		Description:          description,
		EventType:            eventType,
		StartDate:            start,
		RegistrationDeadline: deadline,
	})
}
