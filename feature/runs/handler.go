package runs

import (
	"bulk-manager/core/logger"
	"bulk-manager/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves run reports.
type Handler struct {
	runner *reconcile.Runner
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(runner *reconcile.Runner, logger *zap.Logger) *Handler {
	return &Handler{runner: runner, logger: logger}
}

// RegisterRoutes registers the run routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/runs")
	group.Get("/", h.HandleList)
	group.Get("/:id", h.HandleGet)
	group.Get("/:id/report.csv", h.HandleReport)
}

// ListResponse lists known runs.
type ListResponse struct {
	Recent   []string `json:"recent"`
	Archived []string `json:"archived"`
}

// HandleList returns the ids of recent and archived runs.
// @Summary List runs
// @Tags runs
// @Produce json
// @Success 200 {object} runs.ListResponse
// @Router /runs [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	resp := ListResponse{Recent: h.runner.Store.IDs(), Archived: []string{}}
	if archive := h.runner.Archive; archive != nil {
		ids, err := reconcile.ArchivedRunIDs(c.Context(), archive.Client, archive.Bucket)
		if err != nil {
			logger.WithRayID(h.logger, c).Warn("Listing archived reports failed", zap.Error(err))
		} else {
			resp.Archived = ids
		}
	}
	return c.JSON(resp)
}

// HandleGet returns a recent run's summary.
// @Summary Get run summary
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Param failures query int false "Failure messages to include" default(10)
// @Success 200 {object} reconcile.Summary
// @Failure 404 {object} map[string]string "Run not found"
// @Router /runs/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	report, ok := h.runner.Store.Get(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "run not found"})
	}
	return c.JSON(report.Summarize(c.QueryInt("failures", h.runner.Config.FailureDisplayLimit)))
}

// HandleReport downloads a run's CSV report.
// @Summary Download run report
// @Tags runs
// @Produce text/csv
// @Param id path string true "Run ID"
// @Success 200 {string} string "CSV report"
// @Failure 404 {object} map[string]string "Run not found"
// @Router /runs/{id}/report.csv [get]
func (h *Handler) HandleReport(c *fiber.Ctx) error {
	id := c.Params("id")

	if report, ok := h.runner.Store.Get(id); ok {
		setCSV(c, id)
		return report.WriteCSV(c)
	}

	if archive := h.runner.Archive; archive != nil {
		data, err := reconcile.DownloadReport(c.Context(), archive.Client, archive.Bucket, id)
		if err == nil {
			setCSV(c, id)
			return c.Send(data)
		}
		logger.WithRayID(h.logger, c).Debug("Archived report unavailable", zap.String("run_id", id), zap.Error(err))
	}

	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "run not found"})
}

func setCSV(c *fiber.Ctx, id string) {
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+id+`.csv"`)
}
