// handlers/organizer.go
package handlers

import (
	"campus-event-system/middleware"
	"campus-event-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupOrganizerRoutes(app *fiber.App, eventService *services.EventService, attendanceService *services.AttendanceService, profileService *services.ProfileService) {
	// 🔐 Organizer routes — scoped to the organizer's own events
	organizer := app.Group("/api/organizer", middleware.Protected("organizer"))

	organizer.Post("/events", eventService.CreateEvent)
	organizer.Get("/events", eventService.GetMyEvents)
	organizer.Get("/events/:id", eventService.GetEvent)
	organizer.Put("/events/:id", eventService.UpdateEvent)
	organizer.Delete("/events/:id", eventService.DeleteEvent)

	organizer.Get("/events/:id/attendance", attendanceService.GetAttendance)
	organizer.Post("/events/:id/scan", attendanceService.ScanTicket)
	organizer.Post("/events/:id/manual-override", attendanceService.OverrideAttendance)
	organizer.Get("/events/:id/participants", attendanceService.GetParticipants)

	organizer.Get("/profile", profileService.GetOrganizerProfile)
	organizer.Put("/profile", profileService.UpdateOrganizerProfile)
}
