package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/opechapo/kara-backend/internal/models"
	"github.com/opechapo/kara-backend/internal/repositories"
	"go.uber.org/zap"
)

type CartService struct {
	cartRepo    *repositories.CartRepo
	productRepo *repositories.ProductRepo
	notifier    *NotificationService
	log         *zap.Logger
}

func NewCartService(cartRepo *repositories.CartRepo, productRepo *repositories.ProductRepo, notifier *NotificationService, log *zap.Logger) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo, notifier: notifier, log: log}
}

// Get returns the user's cart, sweeping items whose product has been
// deleted first so the client never sees dead listings.
func (s *CartService) Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	owners, err := s.cartRepo.RemoveDanglingItems(ctx, &cart.ID)
	if err != nil {
		s.log.Error("cart sweep failed", zap.Error(err))
		return cart, nil
	}
	if len(owners) > 0 {
		s.notifier.Notify(ctx, userID, "Some items were removed from your cart because the listings were deleted", models.NotificationTypeCart)
		// Re-read without the swept rows.
		return s.cartRepo.GetOrCreate(ctx, userID)
	}
	return cart, nil
}

func (s *CartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, badRequest("Quantity must be at least 1")
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, notFound("Product not found or deleted")
	}
	if product.OwnerID == userID {
		return nil, forbidden("Cannot add your own product to the cart")
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.AddItem(ctx, cart.ID, productID, quantity); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, userID, "Item added to your cart", models.NotificationTypeCart)
	return s.cartRepo.GetOrCreate(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	affected, err := s.cartRepo.RemoveItem(ctx, cart.ID, productID)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, notFound("Item not in cart")
	}
	return s.cartRepo.GetOrCreate(ctx, userID)
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	_, err = s.cartRepo.Clear(ctx, cart.ID)
	return err
}

// Cleanup sweeps the caller's cart on demand.
func (s *CartService) Cleanup(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.cartRepo.RemoveDanglingItems(ctx, &cart.ID); err != nil {
		return nil, err
	}
	return s.cartRepo.GetOrCreate(ctx, userID)
}

// CleanupAll sweeps every cart in the system. Admin-only; each affected
// owner gets a notification.
func (s *CartService) CleanupAll(ctx context.Context) (int, error) {
	owners, err := s.cartRepo.RemoveDanglingItems(ctx, nil)
	if err != nil {
		return 0, err
	}
	for _, uid := range owners {
		s.notifier.Notify(ctx, uid, "Some items were removed from your cart because the listings were deleted", models.NotificationTypeCart)
	}
	return len(owners), nil
}
