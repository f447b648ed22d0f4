package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/greenroute/fulfillment-engine/internal/core/ports"
)

// OptimizeHandler triggers fulfillment optimization runs.
type OptimizeHandler struct {
	optimizer ports.OptimizerService
}

func NewOptimizeHandler(optimizer ports.OptimizerService) *OptimizeHandler {
	return &OptimizeHandler{optimizer: optimizer}
}

// Optimize handles POST /v1/orders/:id/optimize — runs the decision pipeline
// synchronously and returns the committed decision. Re-running on an already
// decided order yields 409; the owning workflow must reset the order first.
//
// @Summary      Run fulfillment optimization for an order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  optimizeResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Failure      504  {object}  errorResponse
// @Router       /v1/orders/{id}/optimize [post]
func (h *OptimizeHandler) Optimize(c echo.Context) error {
	result, err := h.optimizer.Optimize(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, optimizeResponse{
		OrderID:             result.OrderID,
		Decision:            toDecisionResponse(result.Decision),
		CandidatesEvaluated: result.CandidatesEvaluated,
		CandidatesFeasible:  result.CandidatesFeasible,
	})
}
