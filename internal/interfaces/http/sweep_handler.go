package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/billing-api/internal/application/billing"
	"github.com/jhoicas/billing-api/internal/application/dto"
)

// sweepObserver lo implementa *metrics.Metrics.
type sweepObserver interface {
	ObserveSweep(res billing.SweepResult, err error)
}

// SweepHandler dispara el barrido bajo demanda (solo admin).
type SweepHandler struct {
	uc  *billing.SweepUseCase
	obs sweepObserver
}

// NewSweepHandler construye el handler. obs puede ser nil.
func NewSweepHandler(uc *billing.SweepUseCase, obs sweepObserver) *SweepHandler {
	return &SweepHandler{uc: uc, obs: obs}
}

// Run POST /api/sweep
func (h *SweepHandler) Run(c *fiber.Ctx) error {
	res, err := h.uc.Run(c.UserContext())
	if h.obs != nil {
		h.obs.ObserveSweep(res, err)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SweepResponse{
		RemindersSent: res.RemindersSent,
		Expired:       res.Expired,
		Overdue:       res.Overdue,
		Skipped:       res.Skipped,
	})
}
