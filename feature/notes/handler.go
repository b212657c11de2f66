package notes

import (
	"bulk-manager/core/reconcile"
	"bulk-manager/core/server"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for note deduplication.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the dedupe routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/notes/duplicates")
	group.Post("/preview", h.HandlePreview)
	group.Post("/execute", h.HandleExecute)
}

// PreviewResponse lists the duplicate sets next to the usual preview.
type PreviewResponse struct {
	server.PlanResponse
	Groups       []Group `json:"groups"`
	HiddenGroups int     `json:"hidden_groups"`
}

func (h *Handler) preview(plan *Plan) PreviewResponse {
	limit := h.service.runner.Config.PreviewLimit
	groups := plan.Groups
	hidden := 0
	if limit > 0 && len(groups) > limit {
		hidden = len(groups) - limit
		groups = groups[:limit]
	}
	return PreviewResponse{
		PlanResponse: server.PlanResponse{Preview: plan.Preview(limit)},
		Groups:       groups,
		HiddenGroups: hidden,
	}
}

// HandlePreview finds duplicate notes without deleting anything.
// @Summary Preview duplicate notes
// @Tags notes
// @Produce json
// @Success 200 {object} notes.PreviewResponse
// @Failure 502 {object} map[string]string "Source unavailable"
// @Router /notes/duplicates/preview [post]
func (h *Handler) HandlePreview(c *fiber.Ctx) error {
	plan, err := h.service.Plan(c.Context())
	if err != nil {
		return server.Fail(c, h.logger, "Duplicate scan failed", err)
	}
	return c.JSON(h.preview(plan))
}

// HandleExecute deletes duplicate notes when confirmed.
// @Summary Delete duplicate notes
// @Tags notes
// @Produce json
// @Param confirm query bool false "Must be true to delete"
// @Success 200 {object} server.ExecuteResponse
// @Failure 502 {object} map[string]string "Source unavailable"
// @Router /notes/duplicates/execute [post]
func (h *Handler) HandleExecute(c *fiber.Ctx) error {
	plan, err := h.service.Plan(c.Context())
	if err != nil {
		return server.Fail(c, h.logger, "Duplicate scan failed", err)
	}
	if !server.Confirmed(c) {
		return c.JSON(h.preview(plan))
	}

	report := h.service.Execute(c.Context(), plan, reconcile.ExecuteOptions{Confirmed: true})
	return c.JSON(server.Executed(report, h.service.runner.Config.FailureDisplayLimit))
}
