// handlers/team.go
package handlers

import (
	"campus-event-system/middleware"
	"campus-event-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTeamRoutes(app *fiber.App, teamService *services.TeamService) {
	// 🔐 Hackathon team routes — participants only
	asParticipant := middleware.Protected(middleware.ParticipantRoles...)
	api := app.Group("/api")

	api.Post("/teams", asParticipant, teamService.CreateTeam)
	api.Post("/teams/join", asParticipant, teamService.JoinTeam)
	api.Get("/my-teams", asParticipant, teamService.GetMyTeams)
	api.Get("/teams/:id/messages", asParticipant, teamService.GetTeamMessages)
}
