package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/opechapo/kara-backend/internal/models"
	"github.com/opechapo/kara-backend/internal/repositories"
	"go.uber.org/zap"
)

type CollectionService struct {
	collectionRepo *repositories.CollectionRepo
	storeRepo      *repositories.StoreRepo
	log            *zap.Logger
}

func NewCollectionService(collectionRepo *repositories.CollectionRepo, storeRepo *repositories.StoreRepo, log *zap.Logger) *CollectionService {
	return &CollectionService{collectionRepo: collectionRepo, storeRepo: storeRepo, log: log}
}

type CollectionInput struct {
	Name             string
	ShortDescription string
	StoreID          uuid.UUID
	Description      *string
	GeneralImage     *string
}

func (s *CollectionService) Create(ctx context.Context, ownerID uuid.UUID, in CollectionInput) (*models.Collection, error) {
	if in.Name == "" || in.ShortDescription == "" {
		return nil, badRequest("Name and short description are required")
	}

	store, err := s.storeRepo.GetByID(ctx, in.StoreID)
	if err != nil {
		return nil, notFound("Store not found")
	}
	if store.OwnerID != ownerID {
		return nil, forbidden("Not the store owner")
	}

	col := &models.Collection{
		Name:             in.Name,
		ShortDescription: in.ShortDescription,
		StoreID:          in.StoreID,
		Description:      in.Description,
		GeneralImage:     in.GeneralImage,
		OwnerID:          ownerID,
	}
	if err := s.collectionRepo.Create(ctx, col); err != nil {
		return nil, err
	}
	return col, nil
}

func (s *CollectionService) GetByID(ctx context.Context, id uuid.UUID) (*models.CollectionWithRefs, error) {
	col, err := s.collectionRepo.GetByID(ctx, id)
	if err == pgx.ErrNoRows {
		return nil, notFound("Collection not found")
	}
	return col, err
}

func (s *CollectionService) ListAll(ctx context.Context) ([]models.CollectionWithRefs, error) {
	return s.collectionRepo.List(ctx, repositories.CollectionFilter{})
}

func (s *CollectionService) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.CollectionWithRefs, error) {
	return s.collectionRepo.List(ctx, repositories.CollectionFilter{StoreID: &storeID})
}

func (s *CollectionService) ListMine(ctx context.Context, ownerID uuid.UUID) ([]models.CollectionWithRefs, error) {
	return s.collectionRepo.List(ctx, repositories.CollectionFilter{OwnerID: &ownerID})
}

func (s *CollectionService) Update(ctx context.Context, id, callerID uuid.UUID, upd repositories.CollectionUpdate) (*models.Collection, error) {
	col, err := s.collectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound("Collection not found")
	}
	if col.OwnerID != callerID {
		return nil, forbidden("Not the collection owner")
	}
	return s.collectionRepo.Update(ctx, id, upd)
}

func (s *CollectionService) Delete(ctx context.Context, id, callerID uuid.UUID) error {
	col, err := s.collectionRepo.GetByID(ctx, id)
	if err != nil {
		return notFound("Collection not found")
	}
	if col.OwnerID != callerID {
		return forbidden("Not the collection owner")
	}
	_, err = s.collectionRepo.Delete(ctx, id)
	return err
}
