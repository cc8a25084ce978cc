package models

import (
	"time"
)

const (
	TicketRegistered = "Registered"
	TicketCompleted  = "Completed"
	TicketCancelled  = "Cancelled"
	TicketRejected   = "Rejected"
)

// MerchandiseSelection is the buyer's pick on a merchandise ticket.
// Flattened into ticket columns so stock queries can SUM the quantity.
type MerchandiseSelection struct {
	Size     string `json:"size"`
	Color    string `json:"color"`
	Variant  string `json:"variant"`
	Quantity int    `json:"quantity"`
}

// Ticket is a participant's claim on an event. TicketID is the derived
// human-readable identifier ({club}{event}_{username}); ID is the row key.
type Ticket struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	TicketID      string    `json:"ticketId" gorm:"uniqueIndex;not null"`
	EventID       string    `json:"eventId" gorm:"not null;index"`
	ParticipantID string    `json:"participantId" gorm:"not null;index"`
	QRCode        string    `json:"qrCode" gorm:"type:text"`
	Type          string    `json:"type" gorm:"not null"`              // normal | merchandise
	Status        string    `json:"status" gorm:"default:'Registered'"` // Registered | Completed | Cancelled | Rejected
	TeamID        string    `json:"teamId,omitempty"`
	TeamName      string    `json:"teamName,omitempty"`
	PurchaseDate  time.Time `json:"purchaseDate"`

	AttendanceMarked    bool       `json:"attendanceMarked" gorm:"default:false"`
	AttendanceTimestamp *time.Time `json:"attendanceTimestamp,omitempty"`
	ManualOverride      bool       `json:"manualOverride" gorm:"default:false"`
	OverrideReason      string     `json:"overrideReason,omitempty"`

	Answers               map[string]any        `json:"answers,omitempty" gorm:"serializer:json"`
	MerchandiseSelections *MerchandiseSelection `json:"merchandiseSelections,omitempty" gorm:"embedded;embeddedPrefix:merch_"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	Event       Event `json:"event,omitempty" gorm:"foreignKey:EventID;references:ID"`
	Participant User  `json:"participant,omitempty" gorm:"foreignKey:ParticipantID;references:ID"`
}

// Quantity returns the number of units the ticket accounts for when
// computing sales and stock (1 for non-merchandise tickets).
func (t *Ticket) Quantity() int {
	if t.Type == EventTypeMerchandise && t.MerchandiseSelections != nil && t.MerchandiseSelections.Quantity > 0 {
		return t.MerchandiseSelections.Quantity
	}
	return 1
}
