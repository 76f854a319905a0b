package handlers

import (
	"errors"
	"strconv"

	"github.com/escrow-marketplace/backend/internal/http/dto"
	"github.com/escrow-marketplace/backend/internal/middleware"
	"github.com/escrow-marketplace/backend/internal/models"
	"github.com/escrow-marketplace/backend/internal/money"
	"github.com/escrow-marketplace/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orderService  *services.OrderService
	escrowService *services.EscrowService
	log           *zap.Logger
}

func NewOrderHandler(orderService *services.OrderService, escrowService *services.EscrowService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{orderService: orderService, escrowService: escrowService, log: log}
}

func (h *OrderHandler) InitiatePayment(c *fiber.Ctx) error {
	var req dto.InitiatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid product_id"})
	}
	if req.Reference == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "reference is required"})
	}
	amount, err := money.Parse(req.Amount)
	if err != nil || !amount.IsPositive() {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "amount must be a positive decimal"})
	}

	buyerID := middleware.GetUserID(c)
	order, err := h.orderService.InitiatePayment(c.Context(), buyerID, productID, req.Reference, amount)
	if err != nil {
		return h.orderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: order})
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid order id"})
	}

	order, err := h.orderService.GetOrder(c.Context(), orderID)
	if err != nil {
		return h.orderError(c, err)
	}

	// Only the parties to the order see it.
	userID := middleware.GetUserID(c)
	if order.BuyerID != userID && order.SellerID != userID {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "not authorized"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: order})
}

func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	limit, offset := 20, 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}

	var (
		orders []models.Order
		err    error
	)
	switch c.Query("role") {
	case models.PartySeller:
		orders, err = h.orderService.GetOrdersForSeller(c.Context(), userID, limit, offset)
	default:
		orders, err = h.orderService.GetOrdersForBuyer(c.Context(), userID, limit, offset)
	}
	if err != nil {
		h.log.Error("list orders failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: orders})
}

// Confirm records the acting user's confirmation as the requested party and
// reports whether the escrow released as a result.
func (h *OrderHandler) Confirm(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid order id"})
	}

	var req dto.ConfirmOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	if !models.IsValidParty(req.Party) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "party must be buyer or seller"})
	}

	actorID := middleware.GetUserID(c)
	order, err := h.escrowService.Confirm(c.Context(), orderID, actorID, req.Party)
	if err != nil {
		return h.orderError(c, err)
	}

	return c.JSON(dto.ConfirmResponse{OK: true, Order: order, Released: order.EscrowReleased})
}

func (h *OrderHandler) GetOrderEvents(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid order id"})
	}

	order, err := h.orderService.GetOrder(c.Context(), orderID)
	if err != nil {
		return h.orderError(c, err)
	}
	userID := middleware.GetUserID(c)
	if order.BuyerID != userID && order.SellerID != userID {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "not authorized"})
	}

	entries, err := h.orderService.GetOrderEvents(c.Context(), orderID)
	if err != nil {
		h.log.Error("get order events failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: entries})
}

func (h *OrderHandler) orderError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "not found"})
	case errors.Is(err, models.ErrUnauthorized):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "not authorized"})
	case errors.Is(err, models.ErrVerificationFailed):
		return c.Status(fiber.StatusPaymentRequired).JSON(dto.ErrorResponse{Error: "payment verification failed"})
	default:
		h.log.Error("order operation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
}
