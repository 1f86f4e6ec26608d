package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/opechapo/kara-backend/internal/models"
	"github.com/opechapo/kara-backend/internal/repositories"
	"go.uber.org/zap"
)

type StoreService struct {
	storeRepo *repositories.StoreRepo
	auditRepo *repositories.AuditRepo
	log       *zap.Logger
}

func NewStoreService(storeRepo *repositories.StoreRepo, auditRepo *repositories.AuditRepo, log *zap.Logger) *StoreService {
	return &StoreService{storeRepo: storeRepo, auditRepo: auditRepo, log: log}
}

type StoreInput struct {
	Name          string
	Description   string
	Slogan        *string
	BannerImage   *string
	FeaturedImage *string
	Logo          *string
}

func (s *StoreService) Create(ctx context.Context, ownerID uuid.UUID, in StoreInput) (*models.Store, error) {
	if in.Name == "" || in.Description == "" {
		return nil, badRequest("Name and description are required")
	}

	store := &models.Store{
		Name:          in.Name,
		Description:   in.Description,
		Slogan:        in.Slogan,
		OwnerID:       ownerID,
		BannerImage:   in.BannerImage,
		FeaturedImage: in.FeaturedImage,
		Logo:          in.Logo,
	}
	if err := s.storeRepo.Create(ctx, store); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, &models.AuditLog{
		ActorUserID: &ownerID,
		ActorType:   "user",
		Action:      "store_created",
		EntityType:  "store",
		EntityID:    &store.ID,
	})
	return store, nil
}

func (s *StoreService) GetByID(ctx context.Context, id uuid.UUID) (*models.StoreWithOwner, error) {
	store, err := s.storeRepo.GetByID(ctx, id)
	if err == pgx.ErrNoRows {
		return nil, notFound("Store not found")
	}
	return store, err
}

// ListFeatured returns the newest stores for the landing page.
func (s *StoreService) ListFeatured(ctx context.Context) ([]models.StoreWithOwner, error) {
	return s.storeRepo.List(ctx, repositories.StoreFilter{Limit: 10})
}

// ListAll lists every store, optionally excluding the caller's own.
func (s *StoreService) ListAll(ctx context.Context, excludeOwner *uuid.UUID) ([]models.StoreWithOwner, error) {
	return s.storeRepo.List(ctx, repositories.StoreFilter{ExcludeOwnerID: excludeOwner})
}

func (s *StoreService) ListMine(ctx context.Context, ownerID uuid.UUID) ([]models.StoreWithOwner, error) {
	return s.storeRepo.List(ctx, repositories.StoreFilter{OwnerID: &ownerID})
}

func (s *StoreService) Update(ctx context.Context, id, callerID uuid.UUID, upd repositories.StoreUpdate) (*models.Store, error) {
	store, err := s.storeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound("Store not found")
	}
	if store.OwnerID != callerID {
		return nil, forbidden("Not the store owner")
	}
	return s.storeRepo.Update(ctx, id, upd)
}

func (s *StoreService) Delete(ctx context.Context, id, callerID uuid.UUID) error {
	store, err := s.storeRepo.GetByID(ctx, id)
	if err != nil {
		return notFound("Store not found")
	}
	if store.OwnerID != callerID {
		return forbidden("Not the store owner")
	}

	if _, err := s.storeRepo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.auditRepo.Log(ctx, &models.AuditLog{
		ActorUserID: &callerID,
		ActorType:   "user",
		Action:      "store_deleted",
		EntityType:  "store",
		EntityID:    &id,
	})
	return nil
}
