package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/opechapo/kara-backend/internal/http/dto"
	"github.com/opechapo/kara-backend/internal/middleware"
	"github.com/opechapo/kara-backend/internal/services"
	"go.uber.org/zap"
)

type ChatHandler struct {
	chatService *services.ChatService
	log         *zap.Logger
}

func NewChatHandler(chatService *services.ChatService, log *zap.Logger) *ChatHandler {
	return &ChatHandler{chatService: chatService, log: log}
}

func (h *ChatHandler) Send(c *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid product id"})
	}

	var receiverID *uuid.UUID
	if req.ReceiverID != nil {
		id, err := uuid.Parse(*req.ReceiverID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid receiver id"})
		}
		receiverID = &id
	}

	msg, err := h.chatService.Send(c.Context(), middleware.GetUserID(c), productID, receiverID, req.Body)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: msg})
}

func (h *ChatHandler) History(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid product id"})
	}

	var otherID *uuid.UUID
	if v := c.Query("with"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid counterparty id"})
		}
		otherID = &id
	}

	msgs, err := h.chatService.History(c.Context(), middleware.GetUserID(c), productID, otherID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: msgs})
}
