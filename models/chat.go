package models

import (
	"time"
)

// ChatMessage is one line of a team's chat log. Append-only.
type ChatMessage struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	TeamID     string    `json:"teamId" gorm:"not null;index"`
	SenderID   string    `json:"senderId" gorm:"not null"`
	SenderName string    `json:"senderName" gorm:"not null"`
	Text       string    `json:"text" gorm:"not null"`
	CreatedAt  time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
