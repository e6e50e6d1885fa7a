package api

import "github.com/gofiber/fiber/v2"

// register wires all HTTP routes onto the app.
func register(app *fiber.App, h *handlers) {
	app.Get("/", h.root)
	app.Get("/health", h.health)

	jobs := app.Group("/jobs")
	jobs.Get("/", h.listJobs)
	jobs.Get("/:id", h.getJob)

	app.Post("/analyze-profile", h.analyzeProfile)
	app.Post("/upload-resume-file", h.uploadResume)
	app.Post("/extract-skills", h.extractSkills)
	app.Post("/match", h.match)
}
