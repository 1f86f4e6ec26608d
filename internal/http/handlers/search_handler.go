package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/opechapo/kara-backend/internal/http/dto"
	"github.com/opechapo/kara-backend/internal/services"
	"go.uber.org/zap"
)

type SearchHandler struct {
	searchService *services.SearchService
	log           *zap.Logger
}

func NewSearchHandler(searchService *services.SearchService, log *zap.Logger) *SearchHandler {
	return &SearchHandler{searchService: searchService, log: log}
}

func (h *SearchHandler) Search(c *fiber.Ctx) error {
	results, err := h.searchService.Search(c.Context(), c.Query("q"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: results})
}

// Categories lists the categories that currently have live products,
// with storefront links.
func (h *SearchHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.searchService.Categories(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: cats})
}
