package services

import (
	"net/http"
	"regexp"
	"testing"

	"campus-event-system/models"
)

func TestCreateTeam(t *testing.T) {
	app, db := newTestApp(t)
	org, _ := seedOrganizer(t, db, "hack@clubs.example.edu", "Hackathon Society")
	event := seedEvent(t, db, org, "Campus Hack", withType(models.EventTypeHackathon))
	_, leaderToken := seedParticipant(t, db, "leader@students.example.edu")

	code, body := doRequest(t, app, http.MethodPost, "/api/teams", leaderToken, map[string]any{
		"name":    "Null Pointers",
		"eventId": event.ID,
		"size":    3,
	})
	if code != http.StatusCreated {
		t.Fatalf("create team status = %d, body = %v", code, body)
	}

	var team models.Team
	if err := db.Preload("Members").First(&team).Error; err != nil {
		t.Fatalf("load team: %v", err)
	}
	if !regexp.MustCompile(`^[A-Z0-9]{6}$`).MatchString(team.InviteCode) {
		t.Fatalf("invite code %q should be 6 uppercase alphanumerics", team.InviteCode)
	}
	if team.IsComplete {
		t.Fatal("a 3-member team must not start complete")
	}
	if len(team.Members) != 1 {
		t.Fatalf("member count = %d, want leader only", len(team.Members))
	}

	// No tickets until the roster fills.
	var tickets int64
	db.Model(&models.Ticket{}).Count(&tickets)
	if tickets != 0 {
		t.Fatalf("ticket count = %d, want 0", tickets)
	}
}

func TestCreateSoloTeamIssuesTicketImmediately(t *testing.T) {
	app, db := newTestApp(t)
	org, _ := seedOrganizer(t, db, "hack@clubs.example.edu", "Hackathon Society")
	event := seedEvent(t, db, org, "Solo Jam", withType(models.EventTypeHackathon))
	leader, leaderToken := seedParticipant(t, db, "solo@students.example.edu")

	code, body := doRequest(t, app, http.MethodPost, "/api/teams", leaderToken, map[string]any{
		"name":    "Lone Wolf",
		"eventId": event.ID,
		"size":    1,
	})
	if code != http.StatusCreated {
		t.Fatalf("create team status = %d, body = %v", code, body)
	}

	var team models.Team
	db.First(&team)
	if !team.IsComplete {
		t.Fatal("a size-1 team is complete on creation")
	}

	var ticket models.Ticket
	if err := db.First(&ticket, "event_id = ? AND participant_id = ?", event.ID, leader.ID).Error; err != nil {
		t.Fatalf("leader ticket should exist: %v", err)
	}
	if ticket.TeamID != team.ID || ticket.TeamName != "Lone Wolf" {
		t.Fatalf("ticket team tag = %q/%q", ticket.TeamID, ticket.TeamName)
	}
	if ticket.Type != models.EventTypeHackathon {
		t.Fatalf("ticket type = %q, want hackathon", ticket.Type)
	}
}

func TestCreateTeamNonHackathonRejected(t *testing.T) {
	app, db := newTestApp(t)
	org, _ := seedOrganizer(t, db, "hack@clubs.example.edu", "Hackathon Society")
	event := seedEvent(t, db, org, "Plain Talk")
	_, leaderToken := seedParticipant(t, db, "leader@students.example.edu")

	code, _ := doRequest(t, app, http.MethodPost, "/api/teams", leaderToken, map[string]any{
		"name":    "Wrong Venue",
		"eventId": event.ID,
		"size":    2,
	})
	if code != http.StatusBadRequest {
		t.Fatalf("create team for normal event status = %d, want 400", code)
	}
}

func TestJoinTeamCompletesAndIssuesTickets(t *testing.T) {
	app, db := newTestApp(t)
	org, _ := seedOrganizer(t, db, "hack@clubs.example.edu", "Hackathon Society")
	event := seedEvent(t, db, org, "Pair Hack", withType(models.EventTypeHackathon))
	_, leaderToken := seedParticipant(t, db, "leader@students.example.edu")
	_, mateToken := seedParticipant(t, db, "mate@students.example.edu")

	doRequest(t, app, http.MethodPost, "/api/teams", leaderToken, map[string]any{
		"name": "Duo", "eventId": event.ID, "size": 2,
	})
	var team models.Team
	db.First(&team)

	code, body := doRequest(t, app, http.MethodPost, "/api/teams/join", mateToken,
		map[string]any{"inviteCode": team.InviteCode})
	if code != http.StatusOK {
		t.Fatalf("join status = %d, body = %v", code, body)
	}

	var reloaded models.Team
	db.First(&reloaded, "id = ?", team.ID)
	if !reloaded.IsComplete {
		t.Fatal("team should be complete after the second join")
	}

	// Exactly one ticket per member.
	var tickets int64
	db.Model(&models.Ticket{}).Where("event_id = ?", event.ID).Count(&tickets)
	if tickets != 2 {
		t.Fatalf("ticket count = %d, want 2", tickets)
	}
}

func TestJoinTeamGates(t *testing.T) {
	app, db := newTestApp(t)
	org, _ := seedOrganizer(t, db, "hack@clubs.example.edu", "Hackathon Society")
	event := seedEvent(t, db, org, "Gated Hack", withType(models.EventTypeHackathon))
	_, leaderToken := seedParticipant(t, db, "leader@students.example.edu")
	_, mateToken := seedParticipant(t, db, "mate@students.example.edu")
	_, lateToken := seedParticipant(t, db, "late@students.example.edu")

	doRequest(t, app, http.MethodPost, "/api/teams", leaderToken, map[string]any{
		"name": "Gatekeepers", "eventId": event.ID, "size": 2,
	})
	var team models.Team
	db.First(&team)

	code, body := doRequest(t, app, http.MethodPost, "/api/teams/join", mateToken,
		map[string]any{"inviteCode": "ZZZZZZ"})
	if code != http.StatusNotFound || message(body) != "Invalid invite code" {
		t.Fatalf("unknown code status = %d message = %q", code, message(body))
	}

	// Leader is already on the roster.
	code, body = doRequest(t, app, http.MethodPost, "/api/teams/join", leaderToken,
		map[string]any{"inviteCode": team.InviteCode})
	if code != http.StatusBadRequest || message(body) != "You are already a member of this team" {
		t.Fatalf("self join status = %d message = %q", code, message(body))
	}

	doRequest(t, app, http.MethodPost, "/api/teams/join", mateToken,
		map[string]any{"inviteCode": team.InviteCode})

	code, body = doRequest(t, app, http.MethodPost, "/api/teams/join", lateToken,
		map[string]any{"inviteCode": team.InviteCode})
	if code != http.StatusBadRequest || message(body) != "This team is already full" {
		t.Fatalf("late join status = %d message = %q", code, message(body))
	}
}

func TestJoinTeamInviteCodeCaseInsensitive(t *testing.T) {
	app, db := newTestApp(t)
	org, _ := seedOrganizer(t, db, "hack@clubs.example.edu", "Hackathon Society")
	event := seedEvent(t, db, org, "Case Hack", withType(models.EventTypeHackathon))
	_, leaderToken := seedParticipant(t, db, "leader@students.example.edu")
	_, mateToken := seedParticipant(t, db, "mate@students.example.edu")

	doRequest(t, app, http.MethodPost, "/api/teams", leaderToken, map[string]any{
		"name": "Mixed Case", "eventId": event.ID, "size": 3,
	})
	var team models.Team
	db.First(&team)

	lower := ""
	for _, r := range team.InviteCode {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		lower += string(r)
	}
	code, body := doRequest(t, app, http.MethodPost, "/api/teams/join", mateToken,
		map[string]any{"inviteCode": lower})
	if code != http.StatusOK {
		t.Fatalf("lowercase invite join status = %d, body = %v", code, body)
	}
}

func TestTeamMessagesMembershipGate(t *testing.T) {
	app, db := newTestApp(t)
	org, _ := seedOrganizer(t, db, "hack@clubs.example.edu", "Hackathon Society")
	event := seedEvent(t, db, org, "Chatty Hack", withType(models.EventTypeHackathon))
	leader, leaderToken := seedParticipant(t, db, "leader@students.example.edu")
	_, outsiderToken := seedParticipant(t, db, "outsider@students.example.edu")

	doRequest(t, app, http.MethodPost, "/api/teams", leaderToken, map[string]any{
		"name": "Whisperers", "eventId": event.ID, "size": 2,
	})
	var team models.Team
	db.First(&team)

	msg := models.ChatMessage{
		ID: "m1", TeamID: team.ID, SenderID: leader.ID, SenderName: leader.Username, Text: "hello",
	}
	if err := db.Create(&msg).Error; err != nil {
		t.Fatalf("seed message: %v", err)
	}

	code, list := doRequestList(t, app, http.MethodGet, "/api/teams/"+team.ID+"/messages", leaderToken)
	if code != http.StatusOK || len(list) != 1 {
		t.Fatalf("member history code = %d len = %d", code, len(list))
	}

	code, body := doRequest(t, app, http.MethodGet, "/api/teams/"+team.ID+"/messages", outsiderToken, nil)
	if code != http.StatusForbidden || message(body) != "Not a member of this team" {
		t.Fatalf("outsider history code = %d message = %q", code, message(body))
	}
}

func TestMyTeams(t *testing.T) {
	app, db := newTestApp(t)
	org, _ := seedOrganizer(t, db, "hack@clubs.example.edu", "Hackathon Society")
	event := seedEvent(t, db, org, "List Hack", withType(models.EventTypeHackathon))
	_, leaderToken := seedParticipant(t, db, "leader@students.example.edu")
	_, mateToken := seedParticipant(t, db, "mate@students.example.edu")

	doRequest(t, app, http.MethodPost, "/api/teams", leaderToken, map[string]any{
		"name": "Listed", "eventId": event.ID, "size": 3,
	})
	var team models.Team
	db.First(&team)
	doRequest(t, app, http.MethodPost, "/api/teams/join", mateToken,
		map[string]any{"inviteCode": team.InviteCode})

	code, list := doRequestList(t, app, http.MethodGet, "/api/my-teams", mateToken)
	if code != http.StatusOK || len(list) != 1 {
		t.Fatalf("my-teams code = %d len = %d", code, len(list))
	}
	if list[0]["name"] != "Listed" {
		t.Fatalf("team name = %v", list[0]["name"])
	}
}
