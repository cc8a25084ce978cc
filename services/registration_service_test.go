package services

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"campus-event-system/models"
)

func TestRegisterIssuesTicket(t *testing.T) {
	app, db := newTestApp(t)
	org, _ := seedOrganizer(t, db, "robotics@clubs.example.edu", "Robotics Club")
	event := seedEvent(t, db, org, "Line Follower Challenge")
	_, userToken := seedParticipant(t, db, "alice@students.example.edu")

	code, body := doRequest(t, app, http.MethodPost, "/api/events/"+event.ID+"/register", userToken,
		map[string]any{"answers": map[string]any{"experience": "beginner"}})
	if code != http.StatusCreated {
		t.Fatalf("register status = %d, body = %v", code, body)
	}

	var ticket models.Ticket
	if err := db.First(&ticket, "event_id = ?", event.ID).Error; err != nil {
		t.Fatalf("load ticket: %v", err)
	}
	if ticket.Status != models.TicketRegistered {
		t.Fatalf("ticket status = %q, want Registered", ticket.Status)
	}
	if want := "RoboticsClubLineFollowerChallenge_alice@students.example.edu"; ticket.TicketID != want {
		t.Fatalf("ticket id = %q, want %q", ticket.TicketID, want)
	}
	if !strings.HasPrefix(ticket.QRCode, "data:image/png;base64,") {
		t.Fatal("qr code should be a png data url")
	}
}

func TestRegisterDuplicateRejected(t *testing.T) {
	app, db := newTestApp(t)
	org, _ := seedOrganizer(t, db, "robotics@clubs.example.edu", "Robotics Club")
	event := seedEvent(t, db, org, "Sumo Bots")
	_, userToken := seedParticipant(t, db, "bob@students.example.edu")

	if code, _ := doRequest(t, app, http.MethodPost, "/api/events/"+event.ID+"/register", userToken, map[string]any{}); code != http.StatusCreated {
		t.Fatalf("first register status = %d", code)
	}
	code, body := doRequest(t, app, http.MethodPost, "/api/events/"+event.ID+"/register", userToken, map[string]any{})
	if code != http.StatusConflict {
		t.Fatalf("second register status = %d, want 409", code)
	}
	if message(body) != "You are already registered for this event." {
		t.Fatalf("unexpected message %q", message(body))
	}

	var count int64
	db.Model(&models.Ticket{}).Where("event_id = ?", event.ID).Count(&count)
	if count != 1 {
		t.Fatalf("ticket count = %d, want 1", count)
	}
}

func TestRegisterClosedEventRejected(t *testing.T) {
	app, db := newTestApp(t)
	org, _ := seedOrganizer(t, db, "robotics@clubs.example.edu", "Robotics Club")
	event := seedEvent(t, db, org, "Closed Workshop", withStatus(models.StatusClosed))
	_, userToken := seedParticipant(t, db, "carol@students.example.edu")

	code, body := doRequest(t, app, http.MethodPost, "/api/events/"+event.ID+"/register", userToken, map[string]any{})
	if code != http.StatusBadRequest || message(body) != "Event is not open for registration." {
		t.Fatalf("status = %d message = %q", code, message(body))
	}
}

func TestRegisterCapacityLimit(t *testing.T) {
	app, db := newTestApp(t)
	org, _ := seedOrganizer(t, db, "robotics@clubs.example.edu", "Robotics Club")
	event := seedEvent(t, db, org, "Tiny Workshop", withLimit(1))
	_, tokenA := seedParticipant(t, db, "a@students.example.edu")
	_, tokenB := seedParticipant(t, db, "b@students.example.edu")

	code, _ := doRequest(t, app, http.MethodPost, "/api/events/"+event.ID+"/register", tokenA, map[string]any{})
	if code != http.StatusCreated {
		t.Fatalf("participant A register status = %d", code)
	}
	code, body := doRequest(t, app, http.MethodPost, "/api/events/"+event.ID+"/register", tokenB, map[string]any{})
	if code != http.StatusBadRequest || message(body) != "Registration limit reached" {
		t.Fatalf("participant B status = %d message = %q", code, message(body))
	}
}

func TestRegisterMerchandiseValidation(t *testing.T) {
	app, db := newTestApp(t)
	org, _ := seedOrganizer(t, db, "merch@clubs.example.edu", "Merch Store")
	event := seedEvent(t, db, org, "Hoodie Drop", withLimit(10), withMerch(&models.MerchandiseDetails{
		Sizes:         []string{"S", "M", "L"},
		Colors:        []string{"black", "maroon"},
		PurchaseLimit: 2,
	}))
	_, userToken := seedParticipant(t, db, "dora@students.example.edu")

	// Missing size/color
	code, body := doRequest(t, app, http.MethodPost, "/api/events/"+event.ID+"/register", userToken,
		map[string]any{"merchandiseSelections": map[string]any{"quantity": 1}})
	if code != http.StatusBadRequest || message(body) != "Please select size and color." {
		t.Fatalf("missing selection status = %d message = %q", code, message(body))
	}

	// Over the per-participant purchase limit
	code, body = doRequest(t, app, http.MethodPost, "/api/events/"+event.ID+"/register", userToken,
		map[string]any{"merchandiseSelections": map[string]any{"size": "M", "color": "black", "quantity": 3}})
	if code != http.StatusBadRequest || message(body) != "You can only purchase up to 2 items." {
		t.Fatalf("over limit status = %d message = %q", code, message(body))
	}

	code, _ = doRequest(t, app, http.MethodPost, "/api/events/"+event.ID+"/register", userToken,
		map[string]any{"merchandiseSelections": map[string]any{"size": "M", "color": "black", "quantity": 2}})
	if code != http.StatusCreated {
		t.Fatalf("valid purchase status = %d", code)
	}

	var ticket models.Ticket
	db.First(&ticket, "event_id = ?", event.ID)
	if ticket.Quantity() != 2 {
		t.Fatalf("ticket quantity = %d, want 2", ticket.Quantity())
	}
}

func TestRegisterMerchandiseStock(t *testing.T) {
	app, db := newTestApp(t)
	org, _ := seedOrganizer(t, db, "merch@clubs.example.edu", "Merch Store")
	event := seedEvent(t, db, org, "Cap Drop", withLimit(3), withMerch(&models.MerchandiseDetails{
		Sizes:         []string{"one-size"},
		Colors:        []string{"navy"},
		PurchaseLimit: 2,
	}))
	_, tokenA := seedParticipant(t, db, "a@students.example.edu")
	_, tokenB := seedParticipant(t, db, "b@students.example.edu")

	code, _ := doRequest(t, app, http.MethodPost, "/api/events/"+event.ID+"/register", tokenA,
		map[string]any{"merchandiseSelections": map[string]any{"size": "one-size", "color": "navy", "quantity": 2}})
	if code != http.StatusCreated {
		t.Fatalf("first purchase status = %d", code)
	}

	// 2 of 3 sold; another 2 would exceed the stock.
	code, body := doRequest(t, app, http.MethodPost, "/api/events/"+event.ID+"/register", tokenB,
		map[string]any{"merchandiseSelections": map[string]any{"size": "one-size", "color": "navy", "quantity": 2}})
	if code != http.StatusBadRequest || message(body) != "Out of stock! Not enough items available." {
		t.Fatalf("oversell status = %d message = %q", code, message(body))
	}

	code, _ = doRequest(t, app, http.MethodPost, "/api/events/"+event.ID+"/register", tokenB,
		map[string]any{"merchandiseSelections": map[string]any{"size": "one-size", "color": "navy", "quantity": 1}})
	if code != http.StatusCreated {
		t.Fatalf("exact remaining stock status = %d", code)
	}
}

func TestCancelTicket(t *testing.T) {
	app, db := newTestApp(t)
	org, _ := seedOrganizer(t, db, "robotics@clubs.example.edu", "Robotics Club")
	event := seedEvent(t, db, org, "Capped Talk", withLimit(1))
	_, tokenA := seedParticipant(t, db, "a@students.example.edu")
	_, tokenB := seedParticipant(t, db, "b@students.example.edu")

	doRequest(t, app, http.MethodPost, "/api/events/"+event.ID+"/register", tokenA, map[string]any{})
	var ticket models.Ticket
	db.First(&ticket, "event_id = ?", event.ID)

	code, _ := doRequest(t, app, http.MethodPut, "/api/tickets/"+ticket.ID+"/cancel", tokenA, nil)
	if code != http.StatusOK {
		t.Fatalf("cancel status = %d", code)
	}
	var reloaded models.Ticket
	db.First(&reloaded, "id = ?", ticket.ID)
	if reloaded.Status != models.TicketCancelled {
		t.Fatalf("ticket status = %q, want Cancelled", reloaded.Status)
	}

	// Cancelling twice is refused.
	code, body := doRequest(t, app, http.MethodPut, "/api/tickets/"+ticket.ID+"/cancel", tokenA, nil)
	if code != http.StatusBadRequest || message(body) != "Only registered tickets can be cancelled" {
		t.Fatalf("double cancel status = %d message = %q", code, message(body))
	}

	// Cancelled seats stay consumed: B still finds the event full.
	code, body = doRequest(t, app, http.MethodPost, "/api/events/"+event.ID+"/register", tokenB, map[string]any{})
	if code != http.StatusBadRequest || message(body) != "Registration limit reached" {
		t.Fatalf("register after cancel status = %d message = %q", code, message(body))
	}

	// And A's own cancelled ticket still blocks a re-register.
	code, _ = doRequest(t, app, http.MethodPost, "/api/events/"+event.ID+"/register", tokenA, map[string]any{})
	if code != http.StatusConflict {
		t.Fatalf("re-register after cancel status = %d, want 409", code)
	}
}

func TestCancelOtherParticipantsTicket(t *testing.T) {
	app, db := newTestApp(t)
	org, _ := seedOrganizer(t, db, "robotics@clubs.example.edu", "Robotics Club")
	event := seedEvent(t, db, org, "Guarded Talk")
	_, tokenA := seedParticipant(t, db, "a@students.example.edu")
	_, tokenB := seedParticipant(t, db, "b@students.example.edu")

	doRequest(t, app, http.MethodPost, "/api/events/"+event.ID+"/register", tokenA, map[string]any{})
	var ticket models.Ticket
	db.First(&ticket, "event_id = ?", event.ID)

	code, _ := doRequest(t, app, http.MethodPut, "/api/tickets/"+ticket.ID+"/cancel", tokenB, nil)
	if code != http.StatusNotFound {
		t.Fatalf("foreign cancel status = %d, want 404", code)
	}
}

func TestEventDetailsIncrementViews(t *testing.T) {
	app, db := newTestApp(t)
	org, _ := seedOrganizer(t, db, "robotics@clubs.example.edu", "Robotics Club")
	event := seedEvent(t, db, org, "Popular Talk")
	_, userToken := seedParticipant(t, db, "viewer@students.example.edu")

	for i := 0; i < 3; i++ {
		if code, _ := doRequest(t, app, http.MethodGet, "/api/events/"+event.ID, userToken, nil); code != http.StatusOK {
			t.Fatalf("get event status = %d", code)
		}
	}

	var reloaded models.Event
	db.First(&reloaded, "id = ?", event.ID)
	if reloaded.Views != 3 {
		t.Fatalf("views = %d, want 3", reloaded.Views)
	}
}

func TestBrowseEventsFollowedClubsFirst(t *testing.T) {
	app, db := newTestApp(t)
	orgA, _ := seedOrganizer(t, db, "a@clubs.example.edu", "Alpha Club")
	orgB, _ := seedOrganizer(t, db, "b@clubs.example.edu", "Beta Club")
	seedEvent(t, db, orgA, "Alpha Event")
	seedEvent(t, db, orgB, "Beta Event")

	user, userToken := seedParticipant(t, db, "fan@students.example.edu")
	user.InterestedClubs = []string{orgB.ID}
	if err := db.Save(user).Error; err != nil {
		t.Fatalf("save follows: %v", err)
	}

	code, list := doRequestList(t, app, http.MethodGet, "/api/events", userToken)
	if code != http.StatusOK || len(list) != 2 {
		t.Fatalf("browse code = %d len = %d", code, len(list))
	}
	if list[0]["name"] != "Beta Event" {
		t.Fatalf("first event = %v, want the followed club's event", list[0]["name"])
	}
}

func TestBrowseEventsNewestFirstWithinTier(t *testing.T) {
	app, db := newTestApp(t)
	org, _ := seedOrganizer(t, db, "a@clubs.example.edu", "Alpha Club")
	old := seedEvent(t, db, org, "Old Event")
	seedEvent(t, db, org, "New Event")
	db.Model(&models.Event{}).Where("id = ?", old.ID).
		Update("created_at", time.Now().Add(-24*time.Hour))

	_, userToken := seedParticipant(t, db, "fan@students.example.edu")

	code, list := doRequestList(t, app, http.MethodGet, "/api/events", userToken)
	if code != http.StatusOK || len(list) != 2 {
		t.Fatalf("browse code = %d len = %d", code, len(list))
	}
	if list[0]["name"] != "New Event" {
		t.Fatalf("first event = %v, want the most recently created", list[0]["name"])
	}
}
