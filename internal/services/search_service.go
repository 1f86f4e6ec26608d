package services

import (
	"context"

	"github.com/opechapo/kara-backend/internal/repositories"
	"go.uber.org/zap"
)

// SearchResult tags each hit with its kind so the client can route it.
type SearchResult struct {
	Type string `json:"type"` // product or store
	Item any    `json:"item"`
}

type SearchService struct {
	productRepo *repositories.ProductRepo
	storeRepo   *repositories.StoreRepo
	log         *zap.Logger
}

func NewSearchService(productRepo *repositories.ProductRepo, storeRepo *repositories.StoreRepo, log *zap.Logger) *SearchService {
	return &SearchService{productRepo: productRepo, storeRepo: storeRepo, log: log}
}

// Search runs a case-insensitive substring match over live products and
// all stores.
func (s *SearchService) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if query == "" {
		return nil, badRequest("Search query is required")
	}

	products, err := s.productRepo.List(ctx, repositories.ProductFilter{Search: &query})
	if err != nil {
		return nil, err
	}
	stores, err := s.storeRepo.List(ctx, repositories.StoreFilter{Search: &query})
	if err != nil {
		return nil, err
	}

	results := []SearchResult{}
	for _, p := range products {
		results = append(results, SearchResult{Type: "product", Item: p})
	}
	for _, st := range stores {
		results = append(results, SearchResult{Type: "store", Item: st})
	}
	return results, nil
}

// CategoryLink pairs a category with its storefront path.
type CategoryLink struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

// Categories returns the categories that have live products, with the
// frontend path for each.
func (s *SearchService) Categories(ctx context.Context) ([]CategoryLink, error) {
	cats, err := s.productRepo.DistinctCategories(ctx)
	if err != nil {
		return nil, err
	}
	links := make([]CategoryLink, 0, len(cats))
	for _, c := range cats {
		links = append(links, CategoryLink{Name: c, Link: "/products/category/" + c})
	}
	return links, nil
}
