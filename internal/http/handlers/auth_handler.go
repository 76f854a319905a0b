package handlers

import (
	"errors"

	"github.com/escrow-marketplace/backend/internal/auth"
	"github.com/escrow-marketplace/backend/internal/config"
	"github.com/escrow-marketplace/backend/internal/http/dto"
	"github.com/escrow-marketplace/backend/internal/models"
	"github.com/escrow-marketplace/backend/internal/rbac"
	"github.com/escrow-marketplace/backend/internal/repositories"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthHandler struct {
	users *repositories.UserRepo
	cfg   *config.Config
	log   *zap.Logger
}

func NewAuthHandler(users *repositories.UserRepo, cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, cfg: cfg, log: log}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	if req.Username == "" || len(req.Password) < 8 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "username required and password must be at least 8 characters"})
	}
	// Admins are provisioned out of band, never self-registered.
	if req.Role != rbac.RoleBuyer && req.Role != rbac.RoleSeller {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "role must be buyer or seller"})
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.log.Error("hash password failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	user := &models.User{Username: req.Username, PasswordHash: hash, Role: req.Role}
	if err := h.users.Create(c.Context(), user); err != nil {
		if errors.Is(err, repositories.ErrUsernameTaken) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: "username already taken"})
		}
		h.log.Error("create user failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	token, err := auth.GenerateJWT(h.cfg.JWTSecret, user.ID, h.cfg.JWTExpiration)
	if err != nil {
		h.log.Error("generate token failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.AuthResponse{Token: token, User: user})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	user, err := h.users.GetByUsername(c.Context(), req.Username)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "invalid credentials"})
	}
	if user.Blocked {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "account blocked"})
	}

	_ = h.users.UpdateLastActive(c.Context(), user.ID)

	token, err := auth.GenerateJWT(h.cfg.JWTSecret, user.ID, h.cfg.JWTExpiration)
	if err != nil {
		h.log.Error("generate token failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.AuthResponse{Token: token, User: user})
}
