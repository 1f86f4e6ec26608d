package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/opechapo/kara-backend/internal/http/dto"
	"github.com/opechapo/kara-backend/internal/middleware"
	"github.com/opechapo/kara-backend/internal/repositories"
	"github.com/opechapo/kara-backend/internal/services"
	"github.com/opechapo/kara-backend/internal/storage"
	"go.uber.org/zap"
)

type CollectionHandler struct {
	collectionService *services.CollectionService
	store             *storage.LocalStore
	log               *zap.Logger
}

func NewCollectionHandler(collectionService *services.CollectionService, store *storage.LocalStore, log *zap.Logger) *CollectionHandler {
	return &CollectionHandler{collectionService: collectionService, store: store, log: log}
}

func (h *CollectionHandler) Create(c *fiber.Ctx) error {
	storeID, err := uuid.Parse(c.FormValue("storeId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid store id"})
	}

	in := services.CollectionInput{
		Name:             c.FormValue("name"),
		ShortDescription: c.FormValue("shortDescription"),
		StoreID:          storeID,
	}
	if v := c.FormValue("description"); v != "" {
		in.Description = &v
	}
	if file, err := c.FormFile("generalImage"); err == nil {
		url, err := h.store.Save(c, file)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "upload failed"})
		}
		in.GeneralImage = &url
	}

	col, err := h.collectionService.Create(c.Context(), middleware.GetUserID(c), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: col})
}

func (h *CollectionHandler) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid collection id"})
	}
	col, err := h.collectionService.GetByID(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: col})
}

func (h *CollectionHandler) ListAll(c *fiber.Ctx) error {
	cols, err := h.collectionService.ListAll(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: cols})
}

func (h *CollectionHandler) ListByStore(c *fiber.Ctx) error {
	storeID, err := uuid.Parse(c.Params("storeId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid store id"})
	}
	cols, err := h.collectionService.ListByStore(c.Context(), storeID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: cols})
}

func (h *CollectionHandler) ListMine(c *fiber.Ctx) error {
	cols, err := h.collectionService.ListMine(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: cols})
}

func (h *CollectionHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid collection id"})
	}

	upd := repositories.CollectionUpdate{}
	if v := c.FormValue("name"); v != "" {
		upd.Name = &v
	}
	if v := c.FormValue("shortDescription"); v != "" {
		upd.ShortDescription = &v
	}
	if v := c.FormValue("description"); v != "" {
		upd.Description = &v
	}
	if file, err := c.FormFile("generalImage"); err == nil {
		url, err := h.store.Save(c, file)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "upload failed"})
		}
		upd.GeneralImage = &url
	}

	col, err := h.collectionService.Update(c.Context(), id, middleware.GetUserID(c), upd)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: col})
}

func (h *CollectionHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid collection id"})
	}

	col, err := h.collectionService.GetByID(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if err := h.collectionService.Delete(c.Context(), id, middleware.GetUserID(c)); err != nil {
		return fail(c, err)
	}
	if col.GeneralImage != nil {
		if err := h.store.Delete(*col.GeneralImage); err != nil {
			h.log.Warn("failed to delete collection image", zap.Error(err))
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}
