package services

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"campus-event-system/models"
	"campus-event-system/utils"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"
)

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

func stripNonAlnum(s string) string {
	return nonAlnum.ReplaceAllString(s, "")
}

// TicketIDFor derives the human-readable ticket id from the organizer name,
// event name and participant username, e.g. "RoboticsClubTechFest_alice".
func TicketIDFor(organizerName, eventName, username string) string {
	return stripNonAlnum(organizerName) + stripNonAlnum(eventName) + "_" + username
}

type qrPayload struct {
	TicketID        string `json:"ticketId"`
	EventID         string `json:"eventId"`
	EventName       string `json:"eventName"`
	ParticipantID   string `json:"participantId"`
	ParticipantName string `json:"participantName"`
}

// qrDataURL renders the ticket payload as a PNG QR code wrapped in a base64
// data URL, ready to embed in emails and API responses.
func qrDataURL(payload qrPayload) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	png, err := qrcode.Encode(string(raw), qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// IssueOptions carries the per-ticket extras beyond identity.
type IssueOptions struct {
	Answers    map[string]any
	Merch      *models.MerchandiseSelection
	TeamID     string
	TeamName   string
	TicketType string
}

// IssueTicket creates a ticket row for the participant within the given
// transaction and returns it. The caller is responsible for any capacity or
// stock accounting; this only derives the id, renders the QR code and writes
// the row.
func IssueTicket(tx *gorm.DB, event *models.Event, organizerName string, participant *models.User, opts IssueOptions) (*models.Ticket, error) {
	ticketID := TicketIDFor(organizerName, event.Name, participant.Username)

	participantName := participant.FirstName
	if participant.LastName != "" {
		participantName += " " + participant.LastName
	}
	if participantName == "" {
		participantName = participant.Username
	}

	qr, err := qrDataURL(qrPayload{
		TicketID:        ticketID,
		EventID:         event.ID,
		EventName:       event.Name,
		ParticipantID:   participant.ID,
		ParticipantName: participantName,
	})
	if err != nil {
		return nil, err
	}

	ticketType := opts.TicketType
	if ticketType == "" {
		ticketType = event.EventType
	}

	ticket := models.Ticket{
		ID:                    uuid.NewString(),
		TicketID:              ticketID,
		EventID:               event.ID,
		ParticipantID:         participant.ID,
		QRCode:                qr,
		Type:                  ticketType,
		Status:                models.TicketRegistered,
		TeamID:                opts.TeamID,
		TeamName:              opts.TeamName,
		PurchaseDate:          time.Now(),
		Answers:               opts.Answers,
		MerchandiseSelections: opts.Merch,
	}
	if err := tx.Create(&ticket).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

// confirmationEmail builds the notification for a freshly issued ticket.
func confirmationEmail(ticket *models.Ticket, event *models.Event, organizerName, to string) utils.TicketEmail {
	return utils.TicketEmail{
		To:            to,
		EventName:     event.Name,
		TicketID:      ticket.TicketID,
		EventType:     event.EventType,
		OrganizerName: organizerName,
		QRCodeDataURL: ticket.QRCode,
	}
}
