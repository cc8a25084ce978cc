package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// DiscordEventNotice carries the fields rendered into the publish embed.
type DiscordEventNotice struct {
	OrganizerName        string
	EventName            string
	Description          string
	EventType            string
	StartDate            time.Time
	RegistrationDeadline time.Time
}

// SendDiscordNotification posts a publish announcement embed to the
// organizer's configured webhook. Errors are returned so the caller can log
// them; nothing downstream depends on the result.
func SendDiscordNotification(webhookURL string, notice DiscordEventNotice) error {
	if webhookURL == "" {
		return nil
	}

	payload := map[string]any{
		"content": fmt.Sprintf("🎉 **New Event Published by %s!** 🎉", notice.OrganizerName),
		"embeds": []map[string]any{{
			"title":       notice.EventName,
			"description": notice.Description,
			"color":       3447003,
			"fields": []map[string]any{
				{"name": "Type", "value": notice.EventType, "inline": true},
				{"name": "Start Date", "value": notice.StartDate.Format("02/01/2006"), "inline": true},
				{"name": "Registration Deadline", "value": notice.RegistrationDeadline.Format("02/01/2006"), "inline": true},
			},
			"footer":    map[string]any{"text": "Campus Event Management System"},
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal discord payload: %w", err)
	}

	resp, err := HTTPClient.Post(webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("discord webhook returned %d", resp.StatusCode)
	}
	log.Printf("✅ Discord notification sent for event %q", notice.EventName)
	return nil
}
