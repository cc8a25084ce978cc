// handlers/participant.go
package handlers

import (
	"campus-event-system/middleware"
	"campus-event-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupParticipantRoutes(app *fiber.App, registrationService *services.RegistrationService, profileService *services.ProfileService) {
	// 🔐 Participant routes — iiit and non-iiit accounts.
	// Middleware attaches per route: a group-level Use on /api would also
	// swallow the public /api/auth routes.
	asParticipant := middleware.Protected(middleware.ParticipantRoles...)
	api := app.Group("/api")

	api.Get("/onboarding-data", asParticipant, profileService.GetOnboardingData)
	api.Post("/onboarding", asParticipant, profileService.SubmitOnboarding)

	api.Get("/events", asParticipant, registrationService.BrowseEvents)
	api.Get("/events/:id", asParticipant, registrationService.GetEventDetails)
	api.Post("/events/:id/register", asParticipant, registrationService.Register)

	api.Get("/my-events", asParticipant, registrationService.GetMyTickets)
	api.Put("/tickets/:id/cancel", asParticipant, registrationService.CancelTicket)

	api.Get("/clubs", asParticipant, profileService.GetClubs)
	api.Get("/clubs/:id", asParticipant, profileService.GetClub)
	api.Post("/clubs/:id/follow", asParticipant, profileService.ToggleFollowClub)

	api.Get("/profile", asParticipant, profileService.GetProfile)
	api.Put("/profile", asParticipant, profileService.UpdateProfile)
	api.Put("/profile/password", asParticipant, profileService.ChangePassword)
}
