package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/application/projects"
)

// ProjectHandler proyectos y sus tareas.
type ProjectHandler struct {
	projects *projects.ProjectUseCase
	tasks    *projects.TaskUseCase
}

// NewProjectHandler construye el handler.
func NewProjectHandler(projectUC *projects.ProjectUseCase, taskUC *projects.TaskUseCase) *ProjectHandler {
	return &ProjectHandler{projects: projectUC, tasks: taskUC}
}

// Create POST /api/projects (uno por venta; 409 si ya existe).
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProjectRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.projects.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

func (h *ProjectHandler) List(c *fiber.Ctx) error {
	var f dto.ProjectFilter
	if err := parseQuery(c, &f); err != nil {
		return writeError(c, err)
	}
	out, err := h.projects.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// GetByID incluye el consolidado financiero (venta + upsells).
func (h *ProjectHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.projects.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProjectRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.projects.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

func (h *ProjectHandler) Assign(c *fiber.Ctx) error {
	var in dto.AssignProjectRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.projects.Assign(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	if err := h.projects.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"deleted": c.Params("id")})
}

// ListTasks GET /api/projects/:id/tasks
func (h *ProjectHandler) ListTasks(c *fiber.Ctx) error {
	out, err := h.tasks.ListByProject(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// CreateTask POST /api/projects/:id/tasks
func (h *ProjectHandler) CreateTask(c *fiber.Ctx) error {
	var in dto.CreateTaskRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.tasks.Create(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, fiber.StatusCreated, out)
}
