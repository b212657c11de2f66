package migration

import (
	"errors"

	"bulk-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler exposes migration logs over HTTP.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// RegisterRoutes registers the migration routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/migrations")
	group.Get("/", h.HandleList)
	group.Get("/:id", h.HandleGet)
}

// HandleList returns recent migration logs.
// @Summary List migration logs
// @Description Most recent field migration logs first.
// @Tags migrations
// @Produce json
// @Param limit query int false "Maximum number of logs" default(50)
// @Success 200 {array} migration.Log
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /migrations [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	logs, err := h.repo.List(c.Context(), c.QueryInt("limit", 50))
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Listing migration logs failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(logs)
}

// HandleGet returns one migration log.
// @Summary Get migration log
// @Tags migrations
// @Produce json
// @Param id path string true "Log ID"
// @Success 200 {object} migration.Log
// @Failure 404 {object} map[string]string "Not Found"
// @Router /migrations/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	log, err := h.repo.Get(c.Context(), c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Reading migration log failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(log)
}
