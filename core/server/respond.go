package server

import (
	"context"
	"errors"

	"bulk-manager/core/logger"
	"bulk-manager/core/mapping"
	"bulk-manager/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Confirmed reports whether the request opted into execution with ?confirm=true.
func Confirmed(c *fiber.Ctx) bool {
	return c.QueryBool("confirm", false)
}

// StatusFor maps an engine error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, mapping.ErrInvalid):
		return fiber.StatusBadRequest
	case errors.Is(err, reconcile.ErrSourceUnavailable):
		return fiber.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// Fail logs err with the request's ray id and writes it as a JSON error.
func Fail(c *fiber.Ctx, log *zap.Logger, msg string, err error) error {
	status := StatusFor(err)
	l := logger.WithRayID(log, c)
	if status >= fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Warn(msg, zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// PlanResponse is returned by preview endpoints and by execute endpoints that were not
// confirmed.
type PlanResponse struct {
	Confirmed bool              `json:"confirmed"`
	Preview   reconcile.Preview `json:"preview"`
}

// ExecuteResponse is returned after a confirmed execution.
type ExecuteResponse struct {
	Confirmed bool              `json:"confirmed"`
	Summary   reconcile.Summary `json:"summary"`
	ReportURL string            `json:"report_url"`
}

// Executed builds the response for a finished run.
func Executed(report *reconcile.Report, failureLimit int) ExecuteResponse {
	return ExecuteResponse{
		Confirmed: true,
		Summary:   report.Summarize(failureLimit),
		ReportURL: "/runs/" + report.RunID + "/report.csv",
	}
}
