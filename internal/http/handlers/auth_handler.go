package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/opechapo/kara-backend/internal/http/dto"
	"github.com/opechapo/kara-backend/internal/services"
	"go.uber.org/zap"
)

type AuthHandler struct {
	userService *services.UserService
	log         *zap.Logger
}

func NewAuthHandler(userService *services.UserService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{userService: userService, log: log}
}

func (h *AuthHandler) GetNonce(c *fiber.Ctx) error {
	nonce, err := h.userService.IssueNonce(c.Context(), c.Params("walletAddress"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.NonceResponse{Nonce: nonce})
}

func (h *AuthHandler) ConnectWallet(c *fiber.Ctx) error {
	var req dto.ConnectWalletRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	if req.Message == "" || req.Signature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "message and signature are required"})
	}

	user, token, err := h.userService.ConnectWallet(c.Context(), req.Message, req.Signature)
	if err != nil {
		return fail(c, err)
	}

	if req.Email != nil && *req.Email != "" {
		if updated, err := h.userService.UpdateProfile(c.Context(), user.ID, req.Email, nil); err == nil {
			user = updated
		}
	}

	return c.JSON(dto.AuthResponse{
		Token:         token,
		WalletAddress: user.WalletAddress,
		IsAdmin:       user.IsAdmin,
	})
}
