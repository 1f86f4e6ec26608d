package handlers

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/opechapo/kara-backend/internal/http/dto"
	"github.com/opechapo/kara-backend/internal/middleware"
	"github.com/opechapo/kara-backend/internal/repositories"
	"github.com/opechapo/kara-backend/internal/services"
	"github.com/opechapo/kara-backend/internal/storage"
	"go.uber.org/zap"
)

type StoreHandler struct {
	storeService *services.StoreService
	store        *storage.LocalStore
	log          *zap.Logger
}

func NewStoreHandler(storeService *services.StoreService, store *storage.LocalStore, log *zap.Logger) *StoreHandler {
	return &StoreHandler{storeService: storeService, store: store, log: log}
}

// saveOptionalFile stores the named multipart file if present and
// returns its URL, or nil.
func (h *StoreHandler) saveOptionalFile(c *fiber.Ctx, field string) (*string, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	return h.saveFile(c, file)
}

func (h *StoreHandler) saveFile(c *fiber.Ctx, file *multipart.FileHeader) (*string, error) {
	url, err := h.store.Save(c, file)
	if err != nil {
		return nil, err
	}
	return &url, nil
}

func (h *StoreHandler) Create(c *fiber.Ctx) error {
	in := services.StoreInput{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
	}
	if v := c.FormValue("slogan"); v != "" {
		in.Slogan = &v
	}

	var err error
	if in.BannerImage, err = h.saveOptionalFile(c, "bannerImage"); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "upload failed"})
	}
	if in.FeaturedImage, err = h.saveOptionalFile(c, "featuredImage"); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "upload failed"})
	}
	if in.Logo, err = h.saveOptionalFile(c, "logo"); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "upload failed"})
	}

	store, err := h.storeService.Create(c.Context(), middleware.GetUserID(c), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: store})
}

func (h *StoreHandler) ListFeatured(c *fiber.Ctx) error {
	stores, err := h.storeService.ListFeatured(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: stores})
}

// ListAll is public but honors an optional token to exclude the
// caller's own stores.
func (h *StoreHandler) ListAll(c *fiber.Ctx) error {
	var exclude *uuid.UUID
	if c.Query("excludeSelf") == "true" {
		if id := middleware.GetUserID(c); id != uuid.Nil {
			exclude = &id
		}
	}
	stores, err := h.storeService.ListAll(c.Context(), exclude)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: stores})
}

func (h *StoreHandler) ListMine(c *fiber.Ctx) error {
	stores, err := h.storeService.ListMine(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: stores})
}

func (h *StoreHandler) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid store id"})
	}
	store, err := h.storeService.GetByID(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: store})
}

func (h *StoreHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid store id"})
	}

	upd := repositories.StoreUpdate{}
	if v := c.FormValue("name"); v != "" {
		upd.Name = &v
	}
	if v := c.FormValue("description"); v != "" {
		upd.Description = &v
	}
	if v := c.FormValue("slogan"); v != "" {
		upd.Slogan = &v
	}
	if upd.BannerImage, err = h.saveOptionalFile(c, "bannerImage"); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "upload failed"})
	}
	if upd.FeaturedImage, err = h.saveOptionalFile(c, "featuredImage"); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "upload failed"})
	}
	if upd.Logo, err = h.saveOptionalFile(c, "logo"); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "upload failed"})
	}

	store, err := h.storeService.Update(c.Context(), id, middleware.GetUserID(c), upd)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: store})
}

func (h *StoreHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid store id"})
	}
	if err := h.storeService.Delete(c.Context(), id, middleware.GetUserID(c)); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
