package bulkupdate

import (
	"bulk-manager/core/reconcile"
	"bulk-manager/core/server"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for bulk updates.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the bulk-update routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/bulk-update")
	group.Post("/preview", h.HandlePreview)
	group.Post("/execute", h.HandleExecute)
}

func (h *Handler) plan(c *fiber.Ctx) (*reconcile.Plan, error) {
	csv, m, err := server.Upload(c)
	if err != nil {
		return nil, err
	}
	return h.service.Plan(c.Context(), csv, m)
}

// HandlePreview classifies an uploaded CSV without writing.
// @Summary Preview bulk field update
// @Description Parses the CSV, coerces every mapped cell and classifies each row.
// @Tags bulk-update
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV upload"
// @Param mapping formData string true "Column mapping (YAML or JSON)"
// @Success 200 {object} server.PlanResponse
// @Failure 400 {object} map[string]string "Invalid mapping or upload"
// @Router /bulk-update/preview [post]
func (h *Handler) HandlePreview(c *fiber.Ctx) error {
	plan, err := h.plan(c)
	if err != nil {
		return server.Fail(c, h.logger, "Bulk-update preview failed", err)
	}
	return c.JSON(server.PlanResponse{Preview: plan.Preview(h.service.runner.Config.PreviewLimit)})
}

// HandleExecute classifies the upload and, when confirmed, writes the values.
// @Summary Execute bulk field update
// @Tags bulk-update
// @Accept multipart/form-data
// @Produce json
// @Param confirm query bool false "Must be true to write"
// @Param file formData file true "CSV upload"
// @Param mapping formData string true "Column mapping (YAML or JSON)"
// @Success 200 {object} server.ExecuteResponse
// @Failure 400 {object} map[string]string "Invalid mapping or upload"
// @Router /bulk-update/execute [post]
func (h *Handler) HandleExecute(c *fiber.Ctx) error {
	plan, err := h.plan(c)
	if err != nil {
		return server.Fail(c, h.logger, "Bulk-update planning failed", err)
	}
	if !server.Confirmed(c) {
		return c.JSON(server.PlanResponse{Preview: plan.Preview(h.service.runner.Config.PreviewLimit)})
	}

	report := h.service.Execute(c.Context(), plan, reconcile.ExecuteOptions{Confirmed: true})
	return c.JSON(server.Executed(report, h.service.runner.Config.FailureDisplayLimit))
}
