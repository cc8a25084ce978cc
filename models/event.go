package models

import (
	"time"
)

const (
	EventTypeNormal      = "normal"
	EventTypeMerchandise = "merchandise"
	EventTypeHackathon   = "hackathon"
)

const (
	StatusDraft     = "Draft"
	StatusPublished = "Published"
	StatusOngoing   = "Ongoing"
	StatusCompleted = "Completed"
	StatusClosed    = "Closed"
	StatusCancelled = "Cancelled"
)

// CustomField describes one entry of the dynamic registration form used by
// normal and hackathon events.
type CustomField struct {
	Label    string   `json:"label"`
	Type     string   `json:"type"` // text | dropdown | checkbox
	Required bool     `json:"required"`
	Options  []string `json:"options"`
}

// MerchandiseDetails is the merchandise-event payload branch.
type MerchandiseDetails struct {
	Sizes         []string `json:"sizes"`
	Colors        []string `json:"colors"`
	Variants      []string `json:"variants"`
	PurchaseLimit int      `json:"purchaseLimit"`
}

// DraftEvent lives in the draft partition: mutable, organizer-only visible.
type DraftEvent struct {
	ID                   string              `json:"id" gorm:"primaryKey"`
	Name                 string              `json:"name" gorm:"not null"`
	Description          string              `json:"description"`
	EventType            string              `json:"eventType" gorm:"not null"` // normal | merchandise | hackathon
	Eligibility          string              `json:"eligibility"`
	RegistrationDeadline time.Time           `json:"registrationDeadline"`
	StartDate            time.Time           `json:"startDate"`
	EndDate              time.Time           `json:"endDate"`
	RegistrationLimit    *int                `json:"registrationLimit"` // nil = unlimited
	RegistrationFee      float64             `json:"registrationFee" gorm:"default:0"`
	Tags                 string              `json:"tags"`
	OrganizerID          string              `json:"organizerId" gorm:"not null;index"`
	Status               string              `json:"status" gorm:"default:'Draft'"`
	CustomFields         []CustomField       `json:"customFields" gorm:"serializer:json"`
	MerchandiseDetails   *MerchandiseDetails `json:"merchandiseDetails,omitempty" gorm:"serializer:json"`
	CreatedAt            time.Time           `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt            time.Time           `json:"updatedAt" gorm:"autoUpdateTime"`
}

// Event lives in the published partition. Moving a draft here is a one-way
// transition that preserves the record's identity.
type Event struct {
	ID                   string              `json:"id" gorm:"primaryKey"`
	Name                 string              `json:"name" gorm:"not null"`
	Slug                 string              `json:"slug" gorm:"index"`
	Description          string              `json:"description"`
	EventType            string              `json:"eventType" gorm:"not null"`
	Eligibility          string              `json:"eligibility"`
	RegistrationDeadline time.Time           `json:"registrationDeadline"`
	StartDate            time.Time           `json:"startDate"`
	EndDate              time.Time           `json:"endDate"`
	RegistrationLimit    *int                `json:"registrationLimit"`
	RegistrationFee      float64             `json:"registrationFee" gorm:"default:0"`
	Tags                 string              `json:"tags"`
	OrganizerID          string              `json:"organizerId" gorm:"not null;index"`
	Status               string              `json:"status" gorm:"default:'Published'"` // Published | Ongoing | Completed | Closed | Cancelled
	Views                int64               `json:"views" gorm:"default:0"`
	CustomFields         []CustomField       `json:"customFields" gorm:"serializer:json"`
	MerchandiseDetails   *MerchandiseDetails `json:"merchandiseDetails,omitempty" gorm:"serializer:json"`
	CreatedAt            time.Time           `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt            time.Time           `json:"updatedAt" gorm:"autoUpdateTime"`

	Organizer Organizer `json:"organizer,omitempty" gorm:"foreignKey:OrganizerID"`
}

// Open reports whether the event still accepts registrations.
func (e *Event) Open() bool {
	return e.Status == StatusPublished || e.Status == StatusOngoing
}
