package services

import (
	"crypto/rand"
	"errors"
	"log"
	"strings"

	"campus-event-system/models"
	"campus-event-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TeamService struct {
	DB           *gorm.DB
	EnqueueEmail func(utils.TicketEmail)

	locks utils.KeyedMutex
}

func NewTeamService(db *gorm.DB, enqueueEmail func(utils.TicketEmail)) *TeamService {
	return &TeamService{DB: db, EnqueueEmail: enqueueEmail}
}

const inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateInviteCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = inviteCodeAlphabet[int(buf[i])%len(inviteCodeAlphabet)]
	}
	return string(buf), nil
}

type createTeamRequest struct {
	Name    string `json:"name" validate:"required"`
	EventID string `json:"eventId" validate:"required"`
	Size    int    `json:"size" validate:"required,min=1"`
}

// CreateTeam registers a new hackathon team with the caller as leader. A
// one-member team is complete from the start and gets its ticket issued
// immediately.
func (s *TeamService) CreateTeam(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req createTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if err := utils.Validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "name, eventId and size are required"})
	}

	var event models.Event
	if err := s.DB.Preload("Organizer").First(&event, "id = ?", req.EventID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Event not found"})
	}
	if event.EventType != models.EventTypeHackathon {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Teams can only be created for hackathon events"})
	}
	if !event.Open() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Event is not open for registration."})
	}

	var leader models.User
	if err := s.DB.First(&leader, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
	}

	var code string
	for attempt := 0; attempt < 5; attempt++ {
		candidate, err := generateInviteCode()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error creating team"})
		}
		var taken int64
		s.DB.Model(&models.Team{}).Where("invite_code = ?", candidate).Count(&taken)
		if taken == 0 {
			code = candidate
			break
		}
	}
	if code == "" {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error creating team"})
	}

	team := models.Team{
		ID:         uuid.NewString(),
		Name:       req.Name,
		EventID:    req.EventID,
		LeaderID:   userID,
		Size:       req.Size,
		InviteCode: code,
		IsComplete: req.Size == 1,
		Members: []models.TeamMember{{
			ID:     uuid.NewString(),
			UserID: userID,
			Status: models.MemberAccepted,
		}},
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			return err
		}
		if team.IsComplete {
			return s.issueTeamTickets(tx, &team, &event)
		}
		return nil
	})
	if err != nil {
		log.Printf("Create team error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error creating team"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Team created successfully!",
		"team":    team,
	})
}

type joinTeamRequest struct {
	InviteCode string `json:"inviteCode"`
}

// JoinTeam adds the caller to the team behind an invite code. Joins against
// the same team are serialized so the last open slot is filled exactly once;
// filling it flips the completion flag and issues tickets for every member
// in one batch.
func (s *TeamService) JoinTeam(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req joinTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	code := strings.ToUpper(strings.TrimSpace(req.InviteCode))
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "inviteCode is required"})
	}

	unlock := s.locks.Lock("team:" + code)
	defer unlock()

	var team models.Team
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Members").First(&team, "invite_code = ?", code).Error; err != nil {
			return reject(fiber.StatusNotFound, "Invalid invite code")
		}
		if team.IsComplete {
			return reject(fiber.StatusBadRequest, "This team is already full")
		}
		if team.HasMember(userID) {
			return reject(fiber.StatusBadRequest, "You are already a member of this team")
		}

		member := models.TeamMember{
			ID:     uuid.NewString(),
			TeamID: team.ID,
			UserID: userID,
			Status: models.MemberAccepted,
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		team.Members = append(team.Members, member)

		if len(team.Members) < team.Size {
			return nil
		}
		team.IsComplete = true
		if err := tx.Model(&models.Team{}).Where("id = ?", team.ID).Update("is_complete", true).Error; err != nil {
			return err
		}

		var event models.Event
		if err := tx.Preload("Organizer").First(&event, "id = ?", team.EventID).Error; err != nil {
			return err
		}
		return s.issueTeamTickets(tx, &team, &event)
	})
	if err != nil {
		var he *httpError
		if errors.As(err, &he) {
			return c.Status(he.code).JSON(fiber.Map{"message": he.msg})
		}
		log.Printf("Join team error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error joining team"})
	}

	msg := "Joined team successfully!"
	if team.IsComplete {
		msg = "Joined team successfully! The team is now complete and tickets have been issued."
	}
	return c.JSON(fiber.Map{"message": msg, "team": team})
}

// issueTeamTickets issues one ticket per accepted member. Members who
// already hold a ticket for the event — whatever its status, since ticket
// ids are unique per (event, participant) — are skipped rather than failing
// the whole batch.
func (s *TeamService) issueTeamTickets(tx *gorm.DB, team *models.Team, event *models.Event) error {
	for i := range team.Members {
		memberID := team.Members[i].UserID

		var existing int64
		err := tx.Model(&models.Ticket{}).
			Where("event_id = ? AND participant_id = ?", event.ID, memberID).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			continue
		}

		var member models.User
		if err := tx.First(&member, "id = ?", memberID).Error; err != nil {
			return err
		}
		ticket, err := IssueTicket(tx, event, event.Organizer.Name, &member, IssueOptions{
			TeamID:     team.ID,
			TeamName:   team.Name,
			TicketType: models.EventTypeHackathon,
		})
		if err != nil {
			return err
		}
		if s.EnqueueEmail != nil {
			s.EnqueueEmail(confirmationEmail(ticket, event, event.Organizer.Name, member.Username))
		}
	}
	return nil
}

// GetMyTeams lists every team the caller belongs to.
func (s *TeamService) GetMyTeams(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var memberships []models.TeamMember
	if err := s.DB.Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		log.Printf("Get my teams error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error fetching teams"})
	}
	if len(memberships) == 0 {
		return c.JSON([]models.Team{})
	}

	teamIDs := make([]string, 0, len(memberships))
	for i := range memberships {
		teamIDs = append(teamIDs, memberships[i].TeamID)
	}

	var teams []models.Team
	err := s.DB.Preload("Members").Preload("Members.User").
		Preload("Event").Preload("Leader").
		Where("id IN ?", teamIDs).
		Find(&teams).Error
	if err != nil {
		log.Printf("Get my teams error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error fetching teams"})
	}
	return c.JSON(teams)
}

// GetTeamMessages returns a team's chat history, oldest first. Members only.
func (s *TeamService) GetTeamMessages(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	teamID := c.Params("id")

	var team models.Team
	if err := s.DB.Preload("Members").First(&team, "id = ?", teamID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Team not found"})
	}
	if !team.HasMember(userID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Not a member of this team"})
	}

	var messages []models.ChatMessage
	if err := s.DB.Where("team_id = ?", teamID).Order("created_at ASC").Find(&messages).Error; err != nil {
		log.Printf("Get team messages error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error fetching messages"})
	}
	return c.JSON(messages)
}
