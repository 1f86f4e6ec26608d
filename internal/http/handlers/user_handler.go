package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/opechapo/kara-backend/internal/http/dto"
	"github.com/opechapo/kara-backend/internal/middleware"
	"github.com/opechapo/kara-backend/internal/services"
	"github.com/opechapo/kara-backend/internal/storage"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService *services.UserService
	store       *storage.LocalStore
	log         *zap.Logger
}

func NewUserHandler(userService *services.UserService, store *storage.LocalStore, log *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, store: store, log: log}
}

func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	user, err := h.userService.GetMe(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: user})
}

// UpdateMe accepts multipart form data: an optional email field and an
// optional avatar file.
func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	var email, avatarURL *string

	if v := c.FormValue("email"); v != "" {
		email = &v
	}
	if file, err := c.FormFile("avatar"); err == nil {
		url, err := h.store.Save(c, file)
		if err != nil {
			h.log.Error("avatar upload failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "upload failed"})
		}
		avatarURL = &url
	}

	if email == nil && avatarURL == nil {
		var req dto.UpdateProfileRequest
		if err := c.BodyParser(&req); err == nil {
			email = req.Email
		}
	}

	user, err := h.userService.UpdateProfile(c.Context(), middleware.GetUserID(c), email, avatarURL)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: user})
}

func (h *UserHandler) Logout(c *fiber.Ctx) error {
	h.userService.Logout(c.Context(), middleware.GetUserID(c))
	return c.JSON(dto.SuccessResponse{OK: true})
}
