package handlers

import "github.com/gofiber/fiber/v2"

// RegisterRoutes wires the API route table. Auth and health are open; all
// media routes sit behind the bearer middleware.
func RegisterRoutes(app *fiber.App, h *Handler, verifier TokenVerifier) {
	api := app.Group("/api")
	api.Get("/health", h.Health)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", h.Register)
	authGroup.Post("/login", h.Login)

	media := api.Group("/media", BearerAuth(verifier))
	media.Post("/", h.Upload)
	media.Get("/", h.List)
	media.Get("/search", h.Search)
	media.Get("/:id", h.Get)
	media.Get("/:id/url", h.DownloadURL)
	media.Put("/:id", h.Update)
	media.Delete("/:id", h.Delete)
}
