package handler

import (
	"errors"
	"net/http"

	"fulfillment-tracker/internal/core/apierror"
	"fulfillment-tracker/internal/core/logger"
	"fulfillment-tracker/internal/features/orders/domain"
	"fulfillment-tracker/internal/features/orders/ports"
	"fulfillment-tracker/internal/features/orders/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests related to orders.
type OrderHandler struct {
	// service is the OrderService instance.
	service *service.OrderService
}

// NewOrderHandler creates a new instance of OrderHandler.
func NewOrderHandler(s *service.OrderService) *OrderHandler {
	return &OrderHandler{
		service: s,
	}
}

// PlaceOrderRequest represents the request body for placing an order.
type PlaceOrderRequest struct {
	ID        string             `json:"id"`
	Email     string             `json:"email"`
	FirstName string             `json:"firstName"`
	LastName  string             `json:"lastName"`
	Items     []domain.OrderItem `json:"items"`
}

// PlaceOrder handles POST /orders.
// @Summary Place an order
// @Description Stores a new order with its initial tracking (status placed, one order_placed event).
// @Tags orders
// @Accept json
// @Produce json
// @Param order body PlaceOrderRequest true "Order details"
// @Success 201 {object} domain.Order
// @Failure 400 {object} apierror.ErrorResponse
// @Failure 409 {object} apierror.ErrorResponse
// @Failure 500 {object} apierror.ErrorResponse
// @Router /orders [post]
func (h *OrderHandler) PlaceOrder(c *fiber.Ctx) error {
	rayID := apierror.RayID(c)

	var req PlaceOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return apierror.Send(c, http.StatusBadRequest, "Invalid request body")
	}

	order, err := h.service.PlaceOrder(c.UserContext(), service.PlaceOrderInput{
		ID:        req.ID,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Items:     req.Items,
	})
	if err != nil {
		status := http.StatusInternalServerError
		msg := "Internal Server Error"

		switch {
		case errors.Is(err, service.ErrInvalidOrder):
			status = http.StatusBadRequest
			msg = err.Error()
		case errors.Is(err, ports.ErrOrderExists):
			status = http.StatusConflict
			msg = "Order already exists"
		default:
			logger.Get().Error("Failed to place order",
				zap.String("order_id", req.ID),
				zap.String("ray_id", rayID),
				zap.Error(err),
			)
		}

		return apierror.Send(c, status, msg)
	}

	return c.Status(http.StatusCreated).JSON(order)
}

// GetOrder handles the customer order lookup.
// @Summary Get Order by ID
// @Description Fetch order details, including tracking, using Order ID and Email.
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param email query string true "Customer Email"
// @Success 200 {object} domain.Order
// @Failure 400 {object} apierror.ErrorResponse
// @Failure 401 {object} apierror.ErrorResponse
// @Failure 404 {object} apierror.ErrorResponse
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	email := c.Query("email")
	rayID := apierror.RayID(c)

	if orderID == "" {
		return apierror.Send(c, http.StatusBadRequest, "Order ID is required")
	}

	if email == "" {
		return apierror.Send(c, http.StatusBadRequest, "Email is required")
	}

	order, err := h.service.GetOrder(c.UserContext(), orderID, email)
	if err != nil {
		status := http.StatusInternalServerError
		msg := "Internal Server Error"

		if errors.Is(err, service.ErrOrderNotFound) {
			status = http.StatusNotFound
			msg = "Order not found"
		} else if errors.Is(err, service.ErrEmailMismatch) {
			status = http.StatusUnauthorized
			msg = "Email mismatch"
		} else {
			logger.Get().Error("Failed to fetch order",
				zap.String("order_id", orderID),
				zap.String("ray_id", rayID),
				zap.Error(err),
			)
		}

		return apierror.Send(c, status, msg)
	}

	return c.Status(http.StatusOK).JSON(order)
}
