package services

import (
	"net/http"
	"testing"
	"time"

	"campus-event-system/models"
)

func TestParseEventDate(t *testing.T) {
	got, err := parseEventDate("5/3/2026")
	if err != nil {
		t.Fatalf("parse dd/mm/yyyy: %v", err)
	}
	if got.Day() != 5 || got.Month() != time.March || got.Year() != 2026 {
		t.Fatalf("parsed %v, want 5 March 2026", got)
	}

	if _, err := parseEventDate("2026-03-05T10:00:00Z"); err != nil {
		t.Fatalf("parse RFC3339: %v", err)
	}
	if _, err := parseEventDate("not-a-date"); err == nil {
		t.Fatal("expected error for garbage input")
	}
}

func eventCreatePayload(action string) map[string]any {
	return map[string]any{
		"name":                 "Tech Fest",
		"description":          "Annual technology festival",
		"eventType":            "normal",
		"registrationDeadline": "10/11/2026",
		"startDate":            "20/11/2026",
		"endDate":              "21/11/2026",
		"action":               action,
	}
}

func TestCreateEventDraft(t *testing.T) {
	app, db := newTestApp(t)
	_, orgToken := seedOrganizer(t, db, "tech@clubs.example.edu", "Tech Club")

	code, body := doRequest(t, app, http.MethodPost, "/api/organizer/events", orgToken, eventCreatePayload("draft"))
	if code != http.StatusCreated {
		t.Fatalf("create draft status = %d, body = %v", code, body)
	}

	var drafts, published int64
	db.Model(&models.DraftEvent{}).Count(&drafts)
	db.Model(&models.Event{}).Count(&published)
	if drafts != 1 || published != 0 {
		t.Fatalf("drafts = %d published = %d, want 1/0", drafts, published)
	}
}

func TestCreateEventPublish(t *testing.T) {
	app, db := newTestApp(t)
	_, orgToken := seedOrganizer(t, db, "tech@clubs.example.edu", "Tech Club")

	code, body := doRequest(t, app, http.MethodPost, "/api/organizer/events", orgToken, eventCreatePayload("publish"))
	if code != http.StatusCreated {
		t.Fatalf("publish status = %d, body = %v", code, body)
	}

	var event models.Event
	if err := db.First(&event).Error; err != nil {
		t.Fatalf("load published event: %v", err)
	}
	if event.Status != models.StatusPublished {
		t.Fatalf("status = %q, want Published", event.Status)
	}
	if event.Slug != "tech-club-tech-fest" {
		t.Fatalf("slug = %q", event.Slug)
	}
}

func TestPublishDraftKeepsIdentity(t *testing.T) {
	app, db := newTestApp(t)
	_, orgToken := seedOrganizer(t, db, "tech@clubs.example.edu", "Tech Club")

	doRequest(t, app, http.MethodPost, "/api/organizer/events", orgToken, eventCreatePayload("draft"))
	var draft models.DraftEvent
	if err := db.First(&draft).Error; err != nil {
		t.Fatalf("load draft: %v", err)
	}

	code, body := doRequest(t, app, http.MethodPut, "/api/organizer/events/"+draft.ID, orgToken,
		map[string]any{"status": "Published"})
	if code != http.StatusOK {
		t.Fatalf("publish draft status = %d, body = %v", code, body)
	}

	var event models.Event
	if err := db.First(&event, "id = ?", draft.ID).Error; err != nil {
		t.Fatalf("published event should keep the draft id: %v", err)
	}
	var remaining int64
	db.Model(&models.DraftEvent{}).Count(&remaining)
	if remaining != 0 {
		t.Fatalf("draft rows remaining = %d, want 0", remaining)
	}
}

func TestPublishDraftAppliesAccompanyingPatch(t *testing.T) {
	app, db := newTestApp(t)
	_, orgToken := seedOrganizer(t, db, "tech@clubs.example.edu", "Tech Club")

	doRequest(t, app, http.MethodPost, "/api/organizer/events", orgToken, eventCreatePayload("draft"))
	var draft models.DraftEvent
	if err := db.First(&draft).Error; err != nil {
		t.Fatalf("load draft: %v", err)
	}

	code, body := doRequest(t, app, http.MethodPut, "/api/organizer/events/"+draft.ID, orgToken, map[string]any{
		"status":          "Published",
		"description":     "Final description",
		"registrationFee": 150.0,
		"startDate":       "25/12/2026",
	})
	if code != http.StatusOK {
		t.Fatalf("publish draft status = %d, body = %v", code, body)
	}

	var event models.Event
	if err := db.First(&event, "id = ?", draft.ID).Error; err != nil {
		t.Fatalf("load published event: %v", err)
	}
	if event.Description != "Final description" {
		t.Fatalf("description = %q, want the patched value", event.Description)
	}
	if event.RegistrationFee != 150.0 {
		t.Fatalf("fee = %v, want 150", event.RegistrationFee)
	}
	if event.StartDate.Day() != 25 || event.StartDate.Month() != time.December {
		t.Fatalf("start date = %v, want 25 December", event.StartDate)
	}
}

func TestUpdateTerminalEventRejected(t *testing.T) {
	app, db := newTestApp(t)
	org, orgToken := seedOrganizer(t, db, "tech@clubs.example.edu", "Tech Club")
	event := seedEvent(t, db, org, "Old Fest", withStatus(models.StatusCompleted))

	code, body := doRequest(t, app, http.MethodPut, "/api/organizer/events/"+event.ID, orgToken,
		map[string]any{"description": "new text"})
	if code != http.StatusBadRequest {
		t.Fatalf("terminal edit status = %d, body = %v", code, body)
	}
	if message(body) != "Cannot edit an event in closed, completed, or cancelled status." {
		t.Fatalf("unexpected message %q", message(body))
	}
}

func TestUpdateOngoingEventStatusOnly(t *testing.T) {
	app, db := newTestApp(t)
	org, orgToken := seedOrganizer(t, db, "tech@clubs.example.edu", "Tech Club")
	event := seedEvent(t, db, org, "Live Fest", withStatus(models.StatusOngoing))

	code, body := doRequest(t, app, http.MethodPut, "/api/organizer/events/"+event.ID, orgToken,
		map[string]any{"description": "live update"})
	if code != http.StatusBadRequest {
		t.Fatalf("ongoing non-status edit code = %d, body = %v", code, body)
	}
	if message(body) != "Ongoing events can only have their status updated (e.g., to Completed or Closed)." {
		t.Fatalf("unexpected message %q", message(body))
	}

	code, _ = doRequest(t, app, http.MethodPut, "/api/organizer/events/"+event.ID, orgToken,
		map[string]any{"status": models.StatusCompleted})
	if code != http.StatusOK {
		t.Fatalf("ongoing status edit code = %d", code)
	}
	var reloaded models.Event
	db.First(&reloaded, "id = ?", event.ID)
	if reloaded.Status != models.StatusCompleted {
		t.Fatalf("status = %q, want Completed", reloaded.Status)
	}
}

func TestUpdatePublishedFieldAllowList(t *testing.T) {
	app, db := newTestApp(t)
	org, orgToken := seedOrganizer(t, db, "tech@clubs.example.edu", "Tech Club")
	event := seedEvent(t, db, org, "Main Fest")

	code, body := doRequest(t, app, http.MethodPut, "/api/organizer/events/"+event.ID, orgToken,
		map[string]any{"name": "Renamed Fest"})
	if code != http.StatusBadRequest {
		t.Fatalf("disallowed field code = %d, body = %v", code, body)
	}
	if message(body) != "Published events can only update description, deadline, limit, or status." {
		t.Fatalf("unexpected message %q", message(body))
	}

	code, _ = doRequest(t, app, http.MethodPut, "/api/organizer/events/"+event.ID, orgToken,
		map[string]any{"description": "Now with workshops"})
	if code != http.StatusOK {
		t.Fatalf("description edit code = %d", code)
	}
}

func TestUpdatePublishedDeadlineExtendOnly(t *testing.T) {
	app, db := newTestApp(t)
	org, orgToken := seedOrganizer(t, db, "tech@clubs.example.edu", "Tech Club")
	event := seedEvent(t, db, org, "Main Fest")

	earlier := event.RegistrationDeadline.AddDate(0, 0, -3).Format("2/1/2006")
	code, body := doRequest(t, app, http.MethodPut, "/api/organizer/events/"+event.ID, orgToken,
		map[string]any{"registrationDeadline": earlier})
	if code != http.StatusBadRequest {
		t.Fatalf("shorten deadline code = %d, body = %v", code, body)
	}
	if message(body) != "Registration deadline can only be extended, not shortened." {
		t.Fatalf("unexpected message %q", message(body))
	}

	later := event.RegistrationDeadline.AddDate(0, 0, 3).Format("2/1/2006")
	code, _ = doRequest(t, app, http.MethodPut, "/api/organizer/events/"+event.ID, orgToken,
		map[string]any{"registrationDeadline": later})
	if code != http.StatusOK {
		t.Fatalf("extend deadline code = %d", code)
	}
}

func TestUpdatePublishedLimitIncreaseOnly(t *testing.T) {
	app, db := newTestApp(t)
	org, orgToken := seedOrganizer(t, db, "tech@clubs.example.edu", "Tech Club")
	event := seedEvent(t, db, org, "Main Fest", withLimit(50))

	code, body := doRequest(t, app, http.MethodPut, "/api/organizer/events/"+event.ID, orgToken,
		map[string]any{"registrationLimit": 20})
	if code != http.StatusBadRequest {
		t.Fatalf("shrink limit code = %d, body = %v", code, body)
	}
	if message(body) != "Registration limit/stock can only be increased, not decreased." {
		t.Fatalf("unexpected message %q", message(body))
	}

	code, _ = doRequest(t, app, http.MethodPut, "/api/organizer/events/"+event.ID, orgToken,
		map[string]any{"registrationLimit": 80})
	if code != http.StatusOK {
		t.Fatalf("raise limit code = %d", code)
	}
	var reloaded models.Event
	db.First(&reloaded, "id = ?", event.ID)
	if reloaded.RegistrationLimit == nil || *reloaded.RegistrationLimit != 80 {
		t.Fatalf("limit = %v, want 80", reloaded.RegistrationLimit)
	}
}

func TestDeleteDraftOnly(t *testing.T) {
	app, db := newTestApp(t)
	org, orgToken := seedOrganizer(t, db, "tech@clubs.example.edu", "Tech Club")

	doRequest(t, app, http.MethodPost, "/api/organizer/events", orgToken, eventCreatePayload("draft"))
	var draft models.DraftEvent
	db.First(&draft)

	code, _ := doRequest(t, app, http.MethodDelete, "/api/organizer/events/"+draft.ID, orgToken, nil)
	if code != http.StatusOK {
		t.Fatalf("delete draft code = %d", code)
	}

	event := seedEvent(t, db, org, "Permanent Fest")
	code, body := doRequest(t, app, http.MethodDelete, "/api/organizer/events/"+event.ID, orgToken, nil)
	if code != http.StatusBadRequest {
		t.Fatalf("delete published code = %d, body = %v", code, body)
	}
}

func TestOrganizerEventListIncludesCounts(t *testing.T) {
	app, db := newTestApp(t)
	org, orgToken := seedOrganizer(t, db, "tech@clubs.example.edu", "Tech Club")
	event := seedEvent(t, db, org, "Counted Fest")
	user, userToken := seedParticipant(t, db, "frank@students.example.edu")
	_ = user

	code, body := doRequest(t, app, http.MethodPost, "/api/events/"+event.ID+"/register", userToken, map[string]any{})
	if code != http.StatusCreated {
		t.Fatalf("register code = %d, body = %v", code, body)
	}

	code, list := doRequestList(t, app, http.MethodGet, "/api/organizer/events", orgToken)
	if code != http.StatusOK || len(list) != 1 {
		t.Fatalf("list code = %d len = %d", code, len(list))
	}
	if count, ok := list[0]["registeredCount"].(float64); !ok || count != 1 {
		t.Fatalf("registeredCount = %v, want 1", list[0]["registeredCount"])
	}
}
