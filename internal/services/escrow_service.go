package services

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/opechapo/kara-backend/internal/events"
	"github.com/opechapo/kara-backend/internal/models"
	"github.com/opechapo/kara-backend/internal/rbac"
	"go.uber.org/zap"
)

// Escrow collaborators as small interfaces so the state machine can be
// exercised against in-memory fakes.
type escrowStore interface {
	Create(ctx context.Context, e *models.Escrow) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Escrow, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.EscrowWithRefs, error)
	SetHeld(ctx context.Context, id uuid.UUID, contractAddress string) (int64, error)
	SetContractAddress(ctx context.Context, id uuid.UUID, contractAddress string) (int64, error)
	SetStatusFromHeld(ctx context.Context, id uuid.UUID, to string) (int64, error)
	SoftDeleteDangling(ctx context.Context, userID uuid.UUID) (int64, error)
}

type productReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.ProductWithRefs, error)
}

type orderCounter interface {
	IncrementOrderCounters(ctx context.Context, buyerID, sellerID uuid.UUID) error
}

type auditLogger interface {
	Log(ctx context.Context, entry *models.AuditLog) error
}

type escrowNotifier interface {
	Notify(ctx context.Context, userID uuid.UUID, message, notifType string)
}

// escrowRole maps the caller onto their per-escrow role. Second return
// is false when the caller is not a party at all.
func escrowRole(e *models.Escrow, callerID uuid.UUID) (string, bool) {
	switch callerID {
	case e.BuyerID:
		return rbac.RoleBuyer, true
	case e.SellerID:
		return rbac.RoleSeller, true
	}
	return "", false
}

type EscrowService struct {
	escrowRepo  escrowStore
	productRepo productReader
	userRepo    orderCounter
	auditRepo   auditLogger
	notifier    escrowNotifier
	publisher   events.Publisher
	log         *zap.Logger
}

func NewEscrowService(
	escrowRepo escrowStore,
	productRepo productReader,
	userRepo orderCounter,
	auditRepo auditLogger,
	notifier escrowNotifier,
	publisher events.Publisher,
	log *zap.Logger,
) *EscrowService {
	return &EscrowService{
		escrowRepo:  escrowRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		auditRepo:   auditRepo,
		notifier:    notifier,
		publisher:   publisher,
		log:         log,
	}
}

// Create opens a pending escrow on a live product. Amount and payment
// token come from the client (the buyer quotes what the contract will
// hold); the contract address stays at the sentinel until the buyer
// deploys on-chain and reports back.
func (s *EscrowService) Create(ctx context.Context, buyerID, productID uuid.UUID, amount float64, paymentToken string, quantity int) (*models.Escrow, error) {
	if amount <= 0 || paymentToken == "" || quantity < 1 {
		return nil, badRequest("All fields are required with valid values")
	}
	if !models.IsValidPaymentToken(paymentToken) {
		return nil, badRequest(fmt.Sprintf("Invalid payment token %q", paymentToken))
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, notFound("Product not found or deleted")
	}
	if product.OwnerID == buyerID {
		return nil, forbidden("Cannot create escrow for your own product")
	}

	e := &models.Escrow{
		ProductID:       productID,
		BuyerID:         buyerID,
		SellerID:        product.OwnerID,
		Amount:          amount,
		PaymentToken:    paymentToken,
		Quantity:        quantity,
		Status:          models.EscrowStatusPending,
		ContractAddress: models.ContractAddressPending,
	}
	if err := s.escrowRepo.Create(ctx, e); err != nil {
		return nil, err
	}

	if err := s.userRepo.IncrementOrderCounters(ctx, buyerID, product.OwnerID); err != nil {
		s.log.Error("failed to bump order counters", zap.Error(err))
	}

	s.notifier.Notify(ctx, product.OwnerID,
		fmt.Sprintf("New escrow order for %q (x%d)", product.Name, quantity),
		models.NotificationTypeEscrow)

	_ = s.auditRepo.Log(ctx, &models.AuditLog{
		ActorUserID: &buyerID,
		ActorType:   "user",
		Action:      "escrow_created",
		EntityType:  "escrow",
		EntityID:    &e.ID,
		Meta:        map[string]any{"product_id": productID.String(), "quantity": quantity},
	})
	return e, nil
}

// ListForUser sweeps escrows whose product has been deleted, then
// returns the remainder with product refs.
func (s *EscrowService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.EscrowWithRefs, error) {
	swept, err := s.escrowRepo.SoftDeleteDangling(ctx, userID)
	if err != nil {
		s.log.Error("dangling escrow sweep failed", zap.Error(err))
	} else if swept > 0 {
		s.log.Info("swept dangling escrows", zap.Int64("count", swept), zap.String("user_id", userID.String()))
	}
	return s.escrowRepo.ListForUser(ctx, userID)
}

// GetByID returns an escrow to one of its two parties.
func (s *EscrowService) GetByID(ctx context.Context, id, callerID uuid.UUID) (*models.Escrow, error) {
	e, err := s.escrowRepo.GetByID(ctx, id)
	if err == pgx.ErrNoRows {
		return nil, notFound("Escrow not found")
	}
	if err != nil {
		return nil, err
	}
	if e.BuyerID != callerID && e.SellerID != callerID {
		return nil, notFound("Escrow not found")
	}
	return e, nil
}

// Update is the buyer's deployment report. Status and contract address
// are independent: either may be sent alone. The only status a client
// may request is "held", and only from "pending"; an address update is
// just validated for shape and recorded.
func (s *EscrowService) Update(ctx context.Context, id, callerID uuid.UUID, newStatus, contractAddress string) (*models.Escrow, error) {
	e, err := s.escrowRepo.GetByID(ctx, id)
	if err == pgx.ErrNoRows {
		return nil, notFound("Escrow not found")
	}
	if err != nil {
		return nil, err
	}
	role, isParty := escrowRole(e, callerID)
	if !isParty {
		return nil, notFound("Escrow not found")
	}
	if !rbac.HasPermission(role, rbac.PermHoldEscrow) {
		return nil, forbidden("Not authorized to update this escrow")
	}

	if newStatus != "" {
		if e.Status != models.EscrowStatusPending {
			return nil, invalidTransition(fmt.Sprintf("Cannot change status from %s to %s", e.Status, newStatus))
		}
		if newStatus != models.EscrowStatusHeld {
			return nil, invalidTransition("Invalid status update: only 'held' is allowed from 'pending'")
		}
	}
	if contractAddress != "" && !common.IsHexAddress(contractAddress) {
		return nil, badRequest("Invalid contract address")
	}

	switch {
	case newStatus != "":
		// Keep the recorded address when the flip comes without one.
		addr := e.ContractAddress
		if contractAddress != "" {
			addr = contractAddress
		}
		affected, err := s.escrowRepo.SetHeld(ctx, id, addr)
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			// Lost the race to a concurrent writer; re-read for the message.
			if cur, err := s.escrowRepo.GetByID(ctx, id); err == nil {
				return nil, invalidTransition(fmt.Sprintf("Cannot change status from %s to %s", cur.Status, newStatus))
			}
			return nil, notFound("Escrow not found")
		}
		oldStatus := e.Status
		e.Status = models.EscrowStatusHeld
		e.ContractAddress = addr
		s.recordTransition(ctx, e, oldStatus, callerID)
		s.notifier.Notify(ctx, e.SellerID, "Funds are held in escrow for your order", models.NotificationTypeEscrow)
	case contractAddress != "":
		affected, err := s.escrowRepo.SetContractAddress(ctx, id, contractAddress)
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, notFound("Escrow not found")
		}
		e.ContractAddress = contractAddress
	}
	return e, nil
}

// Release moves held -> released. Buyer-only: releasing pays the seller.
func (s *EscrowService) Release(ctx context.Context, id, callerID uuid.UUID) (*models.Escrow, error) {
	e, err := s.escrowRepo.GetByID(ctx, id)
	if err == pgx.ErrNoRows {
		return nil, notFound("Escrow not found")
	}
	if err != nil {
		return nil, err
	}
	role, isParty := escrowRole(e, callerID)
	if !isParty {
		return nil, notFound("Escrow not found")
	}
	if !rbac.HasPermission(role, rbac.PermReleaseEscrow) {
		return nil, forbidden("Only the buyer can release funds")
	}
	if e.Status != models.EscrowStatusHeld {
		return nil, invalidTransition(fmt.Sprintf("Cannot release funds: escrow status is %s", e.Status))
	}

	affected, err := s.escrowRepo.SetStatusFromHeld(ctx, id, models.EscrowStatusReleased)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		if cur, err := s.escrowRepo.GetByID(ctx, id); err == nil {
			return nil, invalidTransition(fmt.Sprintf("Cannot release funds: escrow status is %s", cur.Status))
		}
		return nil, notFound("Escrow not found")
	}

	e.Status = models.EscrowStatusReleased
	s.recordTransition(ctx, e, models.EscrowStatusHeld, callerID)
	s.notifier.Notify(ctx, e.SellerID, "Escrow funds were released to you", models.NotificationTypeEscrow)
	return e, nil
}

// Refund moves held -> refunded. Seller-only: refunding returns the
// buyer's money.
func (s *EscrowService) Refund(ctx context.Context, id, callerID uuid.UUID) (*models.Escrow, error) {
	e, err := s.escrowRepo.GetByID(ctx, id)
	if err == pgx.ErrNoRows {
		return nil, notFound("Escrow not found")
	}
	if err != nil {
		return nil, err
	}
	role, isParty := escrowRole(e, callerID)
	if !isParty {
		return nil, notFound("Escrow not found")
	}
	if !rbac.HasPermission(role, rbac.PermRefundEscrow) {
		return nil, forbidden("Only the seller can refund funds")
	}
	if e.Status != models.EscrowStatusHeld {
		return nil, invalidTransition(fmt.Sprintf("Cannot refund funds: escrow status is %s", e.Status))
	}

	affected, err := s.escrowRepo.SetStatusFromHeld(ctx, id, models.EscrowStatusRefunded)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		if cur, err := s.escrowRepo.GetByID(ctx, id); err == nil {
			return nil, invalidTransition(fmt.Sprintf("Cannot refund funds: escrow status is %s", cur.Status))
		}
		return nil, notFound("Escrow not found")
	}

	e.Status = models.EscrowStatusRefunded
	s.recordTransition(ctx, e, models.EscrowStatusHeld, callerID)
	s.notifier.Notify(ctx, e.BuyerID, "Your escrow payment was refunded", models.NotificationTypeEscrow)
	return e, nil
}

// recordTransition writes the audit row and publishes the status-change
// event after a successful transition.
func (s *EscrowService) recordTransition(ctx context.Context, e *models.Escrow, oldStatus string, actorID uuid.UUID) {
	_ = s.auditRepo.Log(ctx, &models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   "user",
		Action:      fmt.Sprintf("escrow_status_%s_to_%s", oldStatus, e.Status),
		EntityType:  "escrow",
		EntityID:    &e.ID,
		Meta:        map[string]any{"old_status": oldStatus, "new_status": e.Status},
	})

	_ = s.publisher.Publish(ctx, events.StreamNotify, events.Event{
		Type: events.EventEscrowStatusChanged,
		Payload: map[string]any{
			"escrow_id":  e.ID.String(),
			"buyer_id":   e.BuyerID.String(),
			"seller_id":  e.SellerID.String(),
			"old_status": oldStatus,
			"new_status": e.Status,
		},
	})
}
