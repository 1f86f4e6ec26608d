package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/opechapo/kara-backend/internal/http/dto"
	"github.com/opechapo/kara-backend/internal/middleware"
	"github.com/opechapo/kara-backend/internal/services"
	"go.uber.org/zap"
)

type CartHandler struct {
	cartService *services.CartService
	log         *zap.Logger
}

func NewCartHandler(cartService *services.CartService, log *zap.Logger) *CartHandler {
	return &CartHandler{cartService: cartService, log: log}
}

func (h *CartHandler) Get(c *fiber.Ctx) error {
	cart, err := h.cartService.Get(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: cart})
}

func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var req dto.AddCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid product id"})
	}

	cart, err := h.cartService.AddItem(c.Context(), middleware.GetUserID(c), productID, req.Quantity)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: cart})
}

func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid product id"})
	}
	cart, err := h.cartService.RemoveItem(c.Context(), middleware.GetUserID(c), productID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: cart})
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	if err := h.cartService.Clear(c.Context(), middleware.GetUserID(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *CartHandler) Cleanup(c *fiber.Ctx) error {
	cart, err := h.cartService.Cleanup(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: cart})
}

func (h *CartHandler) CleanupAll(c *fiber.Ctx) error {
	affected, err := h.cartService.CleanupAll(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: fiber.Map{"carts_affected": affected}})
}
