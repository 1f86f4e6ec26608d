package handlers

import (
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/opechapo/kara-backend/internal/http/dto"
	"github.com/opechapo/kara-backend/internal/middleware"
	"github.com/opechapo/kara-backend/internal/models"
	"github.com/opechapo/kara-backend/internal/repositories"
	"github.com/opechapo/kara-backend/internal/services"
	"github.com/opechapo/kara-backend/internal/storage"
	"go.uber.org/zap"
)

type ProductHandler struct {
	productService *services.ProductService
	store          *storage.LocalStore
	log            *zap.Logger
}

func NewProductHandler(productService *services.ProductService, store *storage.LocalStore, log *zap.Logger) *ProductHandler {
	return &ProductHandler{productService: productService, store: store, log: log}
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	storeID, err := uuid.Parse(c.FormValue("storeId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid store id"})
	}
	collectionID, err := uuid.Parse(c.FormValue("collectionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid collection id"})
	}
	amount, err := strconv.Atoi(c.FormValue("amount"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid amount"})
	}
	price, err := strconv.ParseFloat(c.FormValue("price"), 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid price"})
	}

	in := services.ProductInput{
		Name:             c.FormValue("name"),
		ShortDescription: c.FormValue("shortDescription"),
		StoreID:          storeID,
		Category:         c.FormValue("category"),
		CollectionID:     collectionID,
		Amount:           amount,
		Price:            price,
		PaymentToken:     c.FormValue("paymentToken"),
		EscrowSystem:     c.FormValue("escrowSystem"),
	}
	if v := c.FormValue("description"); v != "" {
		in.Description = &v
	}
	if v := c.FormValue("vendorDeposit"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid vendor deposit"})
		}
		in.VendorDeposit = &d
	}
	if v := c.FormValue("customerDeposit"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid customer deposit"})
		}
		in.CustomerDeposit = &d
	}
	if file, err := c.FormFile("generalImage"); err == nil {
		url, err := h.store.Save(c, file)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "upload failed"})
		}
		in.GeneralImage = url
	}

	p, err := h.productService.Create(c.Context(), middleware.GetUserID(c), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: p})
}

// ListLatest serves the landing page: the five newest live products.
func (h *ProductHandler) ListLatest(c *fiber.Ctx) error {
	products, err := h.productService.List(c.Context(), repositories.ProductFilter{Limit: 5})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: products})
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	f := repositories.ProductFilter{}
	if v := c.Query("category"); v != "" {
		f.Category = &v
	}
	if v := c.Query("storeId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid store id"})
		}
		f.StoreID = &id
	}
	if v := c.Query("collectionId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid collection id"})
		}
		f.CollectionID = &id
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Limit = n
		}
	}

	products, err := h.productService.List(c.Context(), f)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: products})
}

func (h *ProductHandler) ListByCategory(c *fiber.Ctx) error {
	category := c.Params("category")
	if decoded, err := url.PathUnescape(category); err == nil {
		category = decoded
	}
	products, err := h.productService.List(c.Context(), repositories.ProductFilter{Category: &category})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: products})
}

func (h *ProductHandler) ListCategories(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: models.ProductCategories})
}

func (h *ProductHandler) ListByStore(c *fiber.Ctx) error {
	storeID, err := uuid.Parse(c.Params("storeId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid store id"})
	}
	products, err := h.productService.List(c.Context(), repositories.ProductFilter{StoreID: &storeID})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: products})
}

func (h *ProductHandler) ListMine(c *fiber.Ctx) error {
	products, err := h.productService.ListMine(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: products})
}

func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid product id"})
	}
	p, err := h.productService.GetByID(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: p})
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid product id"})
	}

	upd := repositories.ProductUpdate{}
	if v := c.FormValue("name"); v != "" {
		upd.Name = &v
	}
	if v := c.FormValue("shortDescription"); v != "" {
		upd.ShortDescription = &v
	}
	if v := c.FormValue("category"); v != "" {
		upd.Category = &v
	}
	if v := c.FormValue("description"); v != "" {
		upd.Description = &v
	}
	if v := c.FormValue("amount"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid amount"})
		}
		upd.Amount = &n
	}
	if v := c.FormValue("price"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid price"})
		}
		upd.Price = &p
	}
	if v := c.FormValue("paymentToken"); v != "" {
		upd.PaymentToken = &v
	}
	if file, err := c.FormFile("generalImage"); err == nil {
		url, err := h.store.Save(c, file)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "upload failed"})
		}
		upd.GeneralImage = &url
	}

	p, err := h.productService.Update(c.Context(), id, middleware.GetUserID(c), upd)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: p})
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid product id"})
	}

	p, err := h.productService.GetByID(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if err := h.productService.Delete(c.Context(), id, middleware.GetUserID(c)); err != nil {
		return fail(c, err)
	}
	if p.GeneralImage != "" {
		if err := h.store.Delete(p.GeneralImage); err != nil {
			h.log.Warn("failed to delete product image", zap.Error(err))
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}
