package handlers

import (
	"errors"

	"github.com/escrow-marketplace/backend/internal/http/dto"
	"github.com/escrow-marketplace/backend/internal/middleware"
	"github.com/escrow-marketplace/backend/internal/models"
	"github.com/escrow-marketplace/backend/internal/repositories"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserHandler struct {
	users *repositories.UserRepo
	audit *repositories.AuditRepo
	log   *zap.Logger
}

func NewUserHandler(users *repositories.UserRepo, audit *repositories.AuditRepo, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, audit: audit, log: log}
}

func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	user, err := h.users.GetByID(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "user not found"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: user})
}

// SetBlocked blocks or unblocks a user. The block takes effect on the
// target's next request because the auth middleware re-resolves the user from
// the store every time.
func (h *UserHandler) SetBlocked(c *fiber.Ctx) error {
	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid user id"})
	}

	var req dto.SetBlockedRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	if err := h.users.SetBlocked(c.Context(), targetID, req.Blocked); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "user not found"})
		}
		h.log.Error("set blocked failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	actorID := middleware.GetUserID(c)
	action := "user_unblocked"
	if req.Blocked {
		action = "user_blocked"
	}
	_ = h.audit.Log(c.Context(), models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   "user",
		Action:      action,
		EntityType:  "user",
		EntityID:    &targetID,
	})

	return c.JSON(dto.SuccessResponse{OK: true})
}
