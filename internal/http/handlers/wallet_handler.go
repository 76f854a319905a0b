package handlers

import (
	"github.com/escrow-marketplace/backend/internal/http/dto"
	"github.com/escrow-marketplace/backend/internal/middleware"
	"github.com/escrow-marketplace/backend/internal/repositories"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type WalletHandler struct {
	wallets *repositories.WalletRepo
	log     *zap.Logger
}

func NewWalletHandler(wallets *repositories.WalletRepo, log *zap.Logger) *WalletHandler {
	return &WalletHandler{wallets: wallets, log: log}
}

func (h *WalletHandler) GetMyWallet(c *fiber.Ctx) error {
	sellerID := middleware.GetUserID(c)
	wallet, err := h.wallets.Get(c.Context(), sellerID)
	if err != nil {
		h.log.Error("get wallet failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.WalletResponse{
		SellerID: wallet.SellerID.String(),
		Balance:  wallet.Balance.String(),
	}})
}
