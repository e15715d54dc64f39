package handler

import (
	"errors"
	"time"

	"fulfillment-tracker/internal/core/apierror"
	"fulfillment-tracker/internal/core/logger"
	orderports "fulfillment-tracker/internal/features/orders/ports"
	"fulfillment-tracker/internal/features/tracking/domain"
	"fulfillment-tracker/internal/features/tracking/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TrackingHandler handles HTTP requests for tracking operations.
type TrackingHandler struct {
	service ports.Service
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(service ports.Service) *TrackingHandler {
	return &TrackingHandler{
		service: service,
	}
}

// SetStatusRequest is the body of the status update.
type SetStatusRequest struct {
	// Status is the target status.
	Status string `json:"status"`
	// Quiet sets the status without recording a milestone event.
	Quiet bool `json:"quiet"`
	// Actor optionally names the operator; the role is always admin.
	Actor *domain.Actor `json:"actor,omitempty"`
}

// AddEventRequest is the body of an event append. Type and title are mandatory.
type AddEventRequest struct {
	ID          string         `json:"id,omitempty"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Status      string         `json:"status,omitempty"`
	At          *time.Time     `json:"at,omitempty"`
	Actor       *domain.Actor  `json:"actor,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// UpdateETARequest is the body of the expected delivery update.
type UpdateETARequest struct {
	ExpectedDelivery *time.Time `json:"expectedDelivery"`
}

// GetTracking godoc
// @Summary Get tracking for an order
// @Description Returns the current status, expected delivery, courier and the events sorted by time.
// @Tags tracking
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Tracking
// @Failure 404 {object} apierror.ErrorResponse
// @Failure 500 {object} apierror.ErrorResponse
// @Router /orders/{id}/tracking [get]
func (h *TrackingHandler) GetTracking(c *fiber.Ctx) error {
	tr, err := h.service.GetTracking(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err, "get_tracking")
	}
	return c.JSON(tr)
}

// GetTrackingByNumber godoc
// @Summary Get tracking by courier tracking number
// @Description Looks up the order carrying the courier tracking number and returns its tracking.
// @Tags tracking
// @Produce json
// @Param number path string true "Tracking Number"
// @Success 200 {object} domain.Tracking
// @Failure 404 {object} apierror.ErrorResponse
// @Failure 429 {object} apierror.ErrorResponse
// @Router /tracking/{number} [get]
func (h *TrackingHandler) GetTrackingByNumber(c *fiber.Ctx) error {
	number := c.Params("number")
	if number == "" {
		return apierror.Send(c, fiber.StatusBadRequest, "tracking number is required")
	}

	tr, err := h.service.GetTrackingByNumber(c.UserContext(), number)
	if err != nil {
		return h.fail(c, err, "get_tracking_by_number")
	}
	return c.JSON(tr)
}

// GetProgress godoc
// @Summary Get the delivery progress timeline
// @Description Six forward steps (placed to delivered) with their state and matching events.
// @Tags tracking
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {array} domain.ProgressStep
// @Failure 404 {object} apierror.ErrorResponse
// @Router /orders/{id}/tracking/progress [get]
func (h *TrackingHandler) GetProgress(c *fiber.Ctx) error {
	steps, err := h.service.GetProgress(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err, "get_progress")
	}
	return c.JSON(steps)
}

// SetStatus godoc
// @Summary Set the order status
// @Description Sets the status and records the milestone event, or only the status when quiet is true.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param body body SetStatusRequest true "Target status"
// @Success 200 {object} domain.Tracking
// @Failure 400 {object} apierror.ErrorResponse
// @Failure 404 {object} apierror.ErrorResponse
// @Failure 409 {object} apierror.ErrorResponse
// @Router /admin/orders/{id}/tracking/status [post]
func (h *TrackingHandler) SetStatus(c *fiber.Ctx) error {
	var req SetStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	status := domain.Status(req.Status)
	var (
		tr  *domain.Tracking
		err error
	)
	if req.Quiet {
		tr, err = h.service.CorrectStatus(c.UserContext(), c.Params("id"), status)
	} else {
		actor := domain.Actor{}
		if req.Actor != nil {
			actor = *req.Actor
		}
		tr, err = h.service.SetStatus(c.UserContext(), c.Params("id"), status, actor)
	}
	if err != nil {
		return h.fail(c, err, "set_status")
	}
	return c.JSON(tr)
}

// AddEvent godoc
// @Summary Append a tracking event
// @Description Inserts the event in chronological order. Type and title are required.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param body body AddEventRequest true "Event"
// @Success 201 {object} domain.Tracking
// @Failure 400 {object} apierror.ErrorResponse
// @Failure 404 {object} apierror.ErrorResponse
// @Failure 409 {object} apierror.ErrorResponse
// @Router /admin/orders/{id}/tracking/events [post]
func (h *TrackingHandler) AddEvent(c *fiber.Ctx) error {
	var req AddEventRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	in := domain.EventInput{
		ID:          req.ID,
		Type:        domain.EventType(req.Type),
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.Severity(req.Status),
		Actor:       req.Actor,
		Meta:        req.Meta,
	}
	if req.At != nil {
		in.At = *req.At
	}

	tr, err := h.service.AddEvent(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return h.fail(c, err, "add_event")
	}
	return c.Status(fiber.StatusCreated).JSON(tr)
}

// UpdateCourier godoc
// @Summary Update courier details
// @Description Merges the supplied fields into the courier record. No event is recorded.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param body body domain.CourierPatch true "Courier fields"
// @Success 200 {object} domain.Tracking
// @Failure 400 {object} apierror.ErrorResponse
// @Failure 404 {object} apierror.ErrorResponse
// @Failure 409 {object} apierror.ErrorResponse
// @Router /admin/orders/{id}/tracking/courier [post]
func (h *TrackingHandler) UpdateCourier(c *fiber.Ctx) error {
	var patch domain.CourierPatch
	if err := c.BodyParser(&patch); err != nil {
		return badBody(c)
	}

	tr, err := h.service.UpdateCourier(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return h.fail(c, err, "update_courier")
	}
	return c.JSON(tr)
}

// UpdateExpectedDelivery godoc
// @Summary Update the expected delivery
// @Description Replaces the delivery estimate. No event is recorded.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param body body UpdateETARequest true "RFC 3339 timestamp"
// @Success 200 {object} domain.Tracking
// @Failure 400 {object} apierror.ErrorResponse
// @Failure 404 {object} apierror.ErrorResponse
// @Failure 409 {object} apierror.ErrorResponse
// @Router /admin/orders/{id}/tracking/eta [post]
func (h *TrackingHandler) UpdateExpectedDelivery(c *fiber.Ctx) error {
	var req UpdateETARequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if req.ExpectedDelivery == nil {
		return apierror.Send(c, fiber.StatusBadRequest, "expectedDelivery is required")
	}

	tr, err := h.service.UpdateExpectedDelivery(c.UserContext(), c.Params("id"), *req.ExpectedDelivery)
	if err != nil {
		return h.fail(c, err, "update_eta")
	}
	return c.JSON(tr)
}

// fail maps service errors onto HTTP statuses.
func (h *TrackingHandler) fail(c *fiber.Ctx, err error, op string) error {
	var (
		verr *domain.ValidationError
		terr *domain.TransitionError
	)

	switch {
	case errors.Is(err, orderports.ErrOrderNotFound):
		return apierror.Send(c, fiber.StatusNotFound, "order not found")
	case errors.As(err, &verr), errors.As(err, &terr):
		return apierror.Send(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, orderports.ErrVersionConflict):
		return apierror.Send(c, fiber.StatusConflict, "order was modified concurrently, reload and retry")
	}

	logger.Get().Error("Tracking request failed",
		zap.String("op", op),
		zap.String("order_id", c.Params("id")),
		zap.String("ray_id", apierror.RayID(c)),
		zap.Error(err),
	)
	return apierror.Send(c, fiber.StatusInternalServerError, "internal server error")
}

func badBody(c *fiber.Ctx) error {
	return apierror.Send(c, fiber.StatusBadRequest, "invalid request body")
}
