// Package fiber wires the portal services to a Fiber v3 application.
package fiber

import (
	"github.com/gofiber/fiber/v3"

	"github.com/lborres/portal/core"
	"github.com/lborres/portal/pkg/logging"
)

// Handler bundles the services every route needs.
type Handler struct {
	auth     *core.AuthService
	sessions *core.SessionManager
	projects *core.ProjectService
	files    *core.FileService
	log      logging.Logger
}

func NewHandler(auth *core.AuthService, sessions *core.SessionManager,
	projects *core.ProjectService, files *core.FileService, log logging.Logger) *Handler {
	return &Handler{
		auth:     auth,
		sessions: sessions,
		projects: projects,
		files:    files,
		log:      log,
	}
}

// RegisterRoutes mounts the REST surface under /api.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", h.register)
	auth.Post("/login", h.login)
	auth.Post("/logout", h.logout)
	auth.Get("/profile", h.requireAuth, h.profile)
	auth.Post("/2fa/generate", h.requireAuth, h.generateTwoFactor)
	auth.Post("/2fa/enable", h.requireAuth, h.enableTwoFactor)
	auth.Post("/2fa/disable", h.requireAuth, h.disableTwoFactor)

	projects := api.Group("/projects", h.requireAuth)
	projects.Get("/", h.listProjects)
	projects.Post("/", h.createProject)
	projects.Get("/:id", h.getProject)
	projects.Put("/:id", h.updateProject)
	projects.Put("/:id/details", h.updateProjectDetails)
	projects.Delete("/:id", h.deleteProject)

	files := api.Group("/files")
	files.Get("/avatars/:filename", h.getAvatar)
	files.Post("/avatar", h.requireAuth, h.uploadAvatar)
	files.Get("/documents/:filename", h.requireAuth, h.getDocument)
}
