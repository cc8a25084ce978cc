package models

import (
	"time"
)

const (
	MemberPending  = "pending"
	MemberAccepted = "accepted"
)

// Team groups participants for a hackathon event. Completion is irreversible
// and triggers ticket issuance for every member.
type Team struct {
	ID         string       `json:"id" gorm:"primaryKey"`
	Name       string       `json:"name" gorm:"not null"`
	EventID    string       `json:"eventId" gorm:"not null;index"`
	LeaderID   string       `json:"leaderId" gorm:"not null;index"`
	Size       int          `json:"size" gorm:"not null"`
	InviteCode string       `json:"inviteCode" gorm:"uniqueIndex;not null"`
	IsComplete bool         `json:"isComplete" gorm:"default:false"`
	CreatedAt  time.Time    `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt  time.Time    `json:"updatedAt" gorm:"autoUpdateTime"`

	Members []TeamMember `json:"members" gorm:"foreignKey:TeamID"`
	Event   Event        `json:"event,omitempty" gorm:"foreignKey:EventID;references:ID"`
	Leader  User         `json:"leader,omitempty" gorm:"foreignKey:LeaderID;references:ID"`
}

// TeamMember links a participant to a team.
type TeamMember struct {
	ID     string `json:"id" gorm:"primaryKey"`
	TeamID string `json:"teamId" gorm:"not null;index"`
	UserID string `json:"userId" gorm:"not null;index"`
	Status string `json:"status" gorm:"default:'pending'"` // pending | accepted

	User User `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`
}

// HasMember reports whether the given participant already belongs to the team.
func (t *Team) HasMember(userID string) bool {
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
