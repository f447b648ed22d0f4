package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/greenroute/fulfillment-engine/internal/core/ports"
)

// OrderHandler handles HTTP requests for order intake and lookup.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// Create handles POST /v1/orders — registers an order for fulfillment.
//
// @Summary      Register an order for fulfillment
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createOrderRequest  true  "Order details"
// @Success      201   {object}  createOrderResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/orders [post]
func (h *OrderHandler) Create(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.service.CreateOrder(c.Request().Context(), toCreateInput(req))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createOrderResponse{
		OrderID:   result.OrderID,
		Status:    result.Status,
		Strategy:  result.Strategy,
		CreatedAt: result.CreatedAt,
		Links: orderLinks{
			Self:     fmt.Sprintf("/v1/orders/%s", result.OrderID),
			Optimize: fmt.Sprintf("/v1/orders/%s/optimize", result.OrderID),
		},
	})
}

// Get handles GET /v1/orders/:id — returns the order with its decision, if any.
//
// @Summary      Get an order and its fulfillment decision
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  getOrderResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/orders/{id} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	detail, err := h.service.GetOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toGetOrderResponse(detail))
}
