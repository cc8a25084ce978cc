package models

import (
	"time"
)

const (
	UserTypeIIIT      = "iiit"
	UserTypeNonIIIT   = "non-iiit"
	UserTypeOrganizer = "organizer"
	UserTypeAdmin     = "admin"
)

// User is a participant account. The username doubles as the login email.
type User struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	Username         string    `json:"username" gorm:"uniqueIndex;not null"`
	Password         string    `json:"-" gorm:"not null"`
	UserType         string    `json:"userType" gorm:"not null"` // iiit | non-iiit | admin
	InterestedTopics []string  `json:"interested_topics" gorm:"serializer:json"`
	InterestedClubs  []string  `json:"interested_clubs" gorm:"serializer:json"`
	Filled           bool      `json:"filled" gorm:"default:false"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	ContactNumber    string    `json:"contactNumber"`
	College          string    `json:"college"`
	CreatedAt        time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt        time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

const (
	OrganizerActive   = "active"
	OrganizerArchived = "archived"
)

// Organizer is a club account, kept in its own table mirroring the
// platform's split identity stores.
type Organizer struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	Email          string    `json:"email" gorm:"uniqueIndex;not null"`
	Password       string    `json:"-" gorm:"not null"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	Description    string    `json:"description"`
	Contact        string    `json:"contact"`
	DiscordWebhook string    `json:"discordWebhook"`
	UserType       string    `json:"userType" gorm:"default:'organizer'"`
	Status         string    `json:"status" gorm:"default:'active'"` // active | archived
	CreatedAt      time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

const (
	ResetPending  = "Pending"
	ResetApproved = "Approved"
	ResetRejected = "Rejected"
)

// PassReset is an organizer's password reset request, resolved by an admin.
type PassReset struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	ClubEmail string    `json:"clubemail" gorm:"not null;index"`
	Reason    string    `json:"reason" gorm:"not null"`
	Date      time.Time `json:"date"`
	Status    string    `json:"status" gorm:"default:'Pending'"` // Pending | Approved | Rejected
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}
