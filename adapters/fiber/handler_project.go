package fiber

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/portal/core"
)

func (h *Handler) listProjects(c fiber.Ctx) error {
	projects, err := h.projects.List(c.Context(), currentUser(c).ID)
	if err != nil {
		return h.handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"projects": projects,
	})
}

func (h *Handler) createProject(c fiber.Ctx) error {
	var input core.CreateProjectInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := core.ValidateCreateProjectInput(input); err != nil {
		return h.handleError(c, err)
	}

	project, err := h.projects.Create(c.Context(), currentUser(c).ID, input)
	if err != nil {
		return h.handleError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Project created successfully",
		"project": project,
	})
}

func (h *Handler) getProject(c fiber.Ctx) error {
	project, err := h.projects.Get(c.Context(), currentUser(c).ID, c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"project": project,
	})
}

func (h *Handler) updateProject(c fiber.Ctx) error {
	var input core.UpdateProjectInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := core.ValidateUpdateProjectInput(input); err != nil {
		return h.handleError(c, err)
	}

	project, err := h.projects.Update(c.Context(), currentUser(c).ID, c.Params("id"), input)
	if err != nil {
		return h.handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Project updated successfully",
		"project": project,
	})
}

func (h *Handler) updateProjectDetails(c fiber.Ctx) error {
	var input core.UpdateProjectDetailsInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := core.ValidateUpdateProjectDetailsInput(input, time.Now()); err != nil {
		return h.handleError(c, err)
	}

	project, err := h.projects.UpdateDetails(c.Context(), currentUser(c).ID, c.Params("id"), input)
	if err != nil {
		return h.handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Project details updated successfully",
		"project": project,
	})
}

func (h *Handler) deleteProject(c fiber.Ctx) error {
	if err := h.projects.Delete(c.Context(), currentUser(c).ID, c.Params("id")); err != nil {
		return h.handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
	})
}
