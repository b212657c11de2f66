package fieldcopy

import (
	"fmt"

	"bulk-manager/core/mapping"
	"bulk-manager/core/reconcile"
	"bulk-manager/core/server"
	"bulk-manager/feature/migration"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for field copies.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the field-copy routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/fieldcopy")
	group.Post("/preview", h.HandlePreview)
	group.Post("/execute", h.HandleExecute)
}

func (h *Handler) parse(c *fiber.Ctx) (mapping.Mapping, error) {
	var m mapping.Mapping
	if err := c.BodyParser(&m); err != nil {
		return m, fmt.Errorf("%w: %v", mapping.ErrInvalid, err)
	}
	return m, nil
}

// HandlePreview classifies every entity without writing.
// @Summary Preview field copy
// @Description Lists all entities, reads source and target fields and classifies each one.
// @Tags fieldcopy
// @Accept json
// @Produce json
// @Param mapping body mapping.Mapping true "Rules and entity type"
// @Success 200 {object} server.PlanResponse
// @Failure 400 {object} map[string]string "Invalid mapping"
// @Failure 502 {object} map[string]string "Source unavailable"
// @Router /fieldcopy/preview [post]
func (h *Handler) HandlePreview(c *fiber.Ctx) error {
	m, err := h.parse(c)
	if err != nil {
		return server.Fail(c, h.logger, "Invalid field-copy request", err)
	}
	plan, err := h.service.Plan(c.Context(), m)
	if err != nil {
		return server.Fail(c, h.logger, "Field-copy preview failed", err)
	}
	return c.JSON(server.PlanResponse{Preview: plan.Preview(h.service.runner.Config.PreviewLimit)})
}

// HandleExecute classifies and, when confirmed, executes the copy.
// @Summary Execute field copy
// @Tags fieldcopy
// @Accept json
// @Produce json
// @Param confirm query bool false "Must be true to write"
// @Param mapping body mapping.Mapping true "Rules and entity type"
// @Success 200 {object} fieldcopy.ExecuteResponse
// @Failure 400 {object} map[string]string "Invalid mapping"
// @Router /fieldcopy/execute [post]
func (h *Handler) HandleExecute(c *fiber.Ctx) error {
	m, err := h.parse(c)
	if err != nil {
		return server.Fail(c, h.logger, "Invalid field-copy request", err)
	}
	plan, err := h.service.Plan(c.Context(), m)
	if err != nil {
		return server.Fail(c, h.logger, "Field-copy planning failed", err)
	}
	if !server.Confirmed(c) {
		return c.JSON(server.PlanResponse{Preview: plan.Preview(h.service.runner.Config.PreviewLimit)})
	}

	report, logs := h.service.Execute(c.Context(), plan, m, reconcile.ExecuteOptions{Confirmed: true})
	return c.JSON(ExecuteResponse{
		ExecuteResponse: server.Executed(report, h.service.runner.Config.FailureDisplayLimit),
		Migrations:      logs,
	})
}

// ExecuteResponse adds the migration logs written by the run.
type ExecuteResponse struct {
	server.ExecuteResponse
	Migrations []migration.Log `json:"migrations"`
}
