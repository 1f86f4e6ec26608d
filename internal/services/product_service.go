package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/opechapo/kara-backend/internal/models"
	"github.com/opechapo/kara-backend/internal/repositories"
	"go.uber.org/zap"
)

type ProductService struct {
	productRepo    *repositories.ProductRepo
	storeRepo      *repositories.StoreRepo
	collectionRepo *repositories.CollectionRepo
	escrowRepo     *repositories.EscrowRepo
	cartRepo       *repositories.CartRepo
	notifier       *NotificationService
	auditRepo      *repositories.AuditRepo
	log            *zap.Logger
}

func NewProductService(
	productRepo *repositories.ProductRepo,
	storeRepo *repositories.StoreRepo,
	collectionRepo *repositories.CollectionRepo,
	escrowRepo *repositories.EscrowRepo,
	cartRepo *repositories.CartRepo,
	notifier *NotificationService,
	auditRepo *repositories.AuditRepo,
	log *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:    productRepo,
		storeRepo:      storeRepo,
		collectionRepo: collectionRepo,
		escrowRepo:     escrowRepo,
		cartRepo:       cartRepo,
		notifier:       notifier,
		auditRepo:      auditRepo,
		log:            log,
	}
}

type ProductInput struct {
	Name             string
	ShortDescription string
	StoreID          uuid.UUID
	Category         string
	CollectionID     uuid.UUID
	Description      *string
	Amount           int
	Price            float64
	PaymentToken     string
	GeneralImage     string
	EscrowSystem     string
	VendorDeposit    *float64
	CustomerDeposit  *float64
}

func (s *ProductService) Create(ctx context.Context, ownerID uuid.UUID, in ProductInput) (*models.Product, error) {
	if in.Name == "" || in.ShortDescription == "" || in.GeneralImage == "" {
		return nil, badRequest("Name, short description and general image are required")
	}
	if !models.IsValidCategory(in.Category) {
		return nil, badRequest(fmt.Sprintf("Invalid category %q", in.Category))
	}
	if !models.IsValidPaymentToken(in.PaymentToken) {
		return nil, badRequest(fmt.Sprintf("Invalid payment token %q", in.PaymentToken))
	}
	if !models.IsValidEscrowSystem(in.EscrowSystem) {
		return nil, badRequest(fmt.Sprintf("Invalid escrow system %q", in.EscrowSystem))
	}
	if in.Amount <= 0 || in.Price <= 0 {
		return nil, badRequest("Amount and price must be positive")
	}
	if in.EscrowSystem == models.EscrowSystemDeposit && (in.VendorDeposit == nil || in.CustomerDeposit == nil) {
		return nil, badRequest("Deposit escrow requires vendor and customer deposits")
	}

	store, err := s.storeRepo.GetByID(ctx, in.StoreID)
	if err != nil {
		return nil, notFound("Store not found")
	}
	if store.OwnerID != ownerID {
		return nil, forbidden("Not the store owner")
	}

	col, err := s.collectionRepo.GetByID(ctx, in.CollectionID)
	if err != nil {
		return nil, notFound("Collection not found")
	}
	if col.StoreID != in.StoreID {
		return nil, badRequest("Collection does not belong to the store")
	}

	p := &models.Product{
		Name:             in.Name,
		ShortDescription: in.ShortDescription,
		StoreID:          in.StoreID,
		Category:         in.Category,
		CollectionID:     in.CollectionID,
		Description:      in.Description,
		Amount:           in.Amount,
		Price:            in.Price,
		PaymentToken:     in.PaymentToken,
		GeneralImage:     in.GeneralImage,
		EscrowSystem:     in.EscrowSystem,
		VendorDeposit:    in.VendorDeposit,
		CustomerDeposit:  in.CustomerDeposit,
		OwnerID:          ownerID,
	}
	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, &models.AuditLog{
		ActorUserID: &ownerID,
		ActorType:   "user",
		Action:      "product_created",
		EntityType:  "product",
		EntityID:    &p.ID,
	})
	return p, nil
}

func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*models.ProductWithRefs, error) {
	p, err := s.productRepo.GetByID(ctx, id)
	if err == pgx.ErrNoRows {
		return nil, notFound("Product not found or deleted")
	}
	return p, err
}

func (s *ProductService) List(ctx context.Context, f repositories.ProductFilter) ([]models.ProductWithRefs, error) {
	if f.Category != nil && !models.IsValidCategory(*f.Category) {
		return nil, badRequest(fmt.Sprintf("Invalid category %q", *f.Category))
	}
	return s.productRepo.List(ctx, f)
}

func (s *ProductService) ListMine(ctx context.Context, ownerID uuid.UUID) ([]models.ProductWithRefs, error) {
	return s.productRepo.List(ctx, repositories.ProductFilter{OwnerID: &ownerID})
}

func (s *ProductService) Update(ctx context.Context, id, callerID uuid.UUID, upd repositories.ProductUpdate) (*models.Product, error) {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound("Product not found or deleted")
	}
	if p.OwnerID != callerID {
		return nil, forbidden("Not the product owner")
	}
	if upd.Category != nil && !models.IsValidCategory(*upd.Category) {
		return nil, badRequest(fmt.Sprintf("Invalid category %q", *upd.Category))
	}
	if upd.PaymentToken != nil && !models.IsValidPaymentToken(*upd.PaymentToken) {
		return nil, badRequest(fmt.Sprintf("Invalid payment token %q", *upd.PaymentToken))
	}
	return s.productRepo.Update(ctx, id, upd)
}

// Delete soft-deletes the product and sweeps everything that references
// it: escrows are soft-deleted, cart rows dropped, affected cart owners
// notified.
func (s *ProductService) Delete(ctx context.Context, id, callerID uuid.UUID) error {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return notFound("Product not found or deleted")
	}
	if p.OwnerID != callerID {
		return forbidden("Not the product owner")
	}

	if _, err := s.productRepo.SoftDelete(ctx, id); err != nil {
		return err
	}
	if _, err := s.escrowRepo.SoftDeleteByProduct(ctx, id); err != nil {
		s.log.Error("escrow sweep after product delete failed", zap.Error(err))
	}

	owners, err := s.cartRepo.RemoveDanglingItems(ctx, nil)
	if err != nil {
		s.log.Error("cart sweep after product delete failed", zap.Error(err))
	}
	for _, uid := range owners {
		s.notifier.Notify(ctx, uid,
			fmt.Sprintf("%q was removed from your cart because the listing was deleted", p.Name),
			models.NotificationTypeCart)
	}

	_ = s.auditRepo.Log(ctx, &models.AuditLog{
		ActorUserID: &callerID,
		ActorType:   "user",
		Action:      "product_deleted",
		EntityType:  "product",
		EntityID:    &id,
	})
	return nil
}
