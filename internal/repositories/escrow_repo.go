package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opechapo/kara-backend/internal/models"
)

type EscrowRepo struct {
	pool *pgxpool.Pool
}

func NewEscrowRepo(pool *pgxpool.Pool) *EscrowRepo {
	return &EscrowRepo{pool: pool}
}

func (r *EscrowRepo) Create(ctx context.Context, e *models.Escrow) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO escrows (product_id, buyer_id, seller_id, amount, payment_token,
		                     quantity, status, contract_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, e.ProductID, e.BuyerID, e.SellerID, e.Amount, e.PaymentToken,
		e.Quantity, e.Status, e.ContractAddress,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func (r *EscrowRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Escrow, error) {
	var e models.Escrow
	err := r.pool.QueryRow(ctx, `
		SELECT id, product_id, buyer_id, seller_id, amount, payment_token,
		       quantity, status, contract_address, deleted_at, created_at, updated_at
		FROM escrows WHERE id = $1 AND deleted_at IS NULL
	`, id).Scan(&e.ID, &e.ProductID, &e.BuyerID, &e.SellerID, &e.Amount, &e.PaymentToken,
		&e.Quantity, &e.Status, &e.ContractAddress, &e.DeletedAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListForUser returns live escrows where the user is buyer or seller,
// enriched with product info and the seller's wallet. Escrows whose
// product has since been deleted keep nil refs: the service layer sweeps
// those before listing.
func (r *EscrowRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.EscrowWithRefs, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT e.id, e.product_id, e.buyer_id, e.seller_id, e.amount, e.payment_token,
		       e.quantity, e.status, e.contract_address, e.deleted_at, e.created_at, e.updated_at,
		       p.name, p.price, u.wallet_address
		FROM escrows e
		LEFT JOIN products p ON p.id = e.product_id AND p.deleted_at IS NULL
		LEFT JOIN users u ON u.id = e.seller_id
		WHERE (e.buyer_id = $1 OR e.seller_id = $1) AND e.deleted_at IS NULL
		ORDER BY e.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	escrows := []models.EscrowWithRefs{}
	for rows.Next() {
		var e models.EscrowWithRefs
		if err := rows.Scan(&e.ID, &e.ProductID, &e.BuyerID, &e.SellerID, &e.Amount, &e.PaymentToken,
			&e.Quantity, &e.Status, &e.ContractAddress, &e.DeletedAt, &e.CreatedAt, &e.UpdatedAt,
			&e.ProductName, &e.ProductPrice, &e.SellerWallet); err != nil {
			return nil, err
		}
		escrows = append(escrows, e)
	}
	return escrows, rows.Err()
}

// SetHeld flips a pending escrow to held and records the deployed
// contract address. Conditional on the current status so a stale client
// cannot re-hold a finished escrow.
func (r *EscrowRepo) SetHeld(ctx context.Context, id uuid.UUID, contractAddress string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE escrows SET status = $2, contract_address = $3, updated_at = now()
		WHERE id = $1 AND status = $4 AND deleted_at IS NULL
	`, id, models.EscrowStatusHeld, contractAddress, models.EscrowStatusPending)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// SetContractAddress records the deployed contract address without
// touching the status.
func (r *EscrowRepo) SetContractAddress(ctx context.Context, id uuid.UUID, contractAddress string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE escrows SET contract_address = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, id, contractAddress)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// SetStatusFromHeld moves a held escrow to released or refunded. The
// status guard in the WHERE clause makes concurrent release/refund
// first-writer-wins: the loser affects zero rows.
func (r *EscrowRepo) SetStatusFromHeld(ctx context.Context, id uuid.UUID, to string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE escrows SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3 AND deleted_at IS NULL
	`, id, to, models.EscrowStatusHeld)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// SoftDeleteDangling sweeps the user's escrows whose product has been
// deleted. Runs lazily before each per-user listing.
func (r *EscrowRepo) SoftDeleteDangling(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE escrows e SET deleted_at = now(), updated_at = now()
		WHERE (e.buyer_id = $1 OR e.seller_id = $1)
		  AND e.deleted_at IS NULL
		  AND NOT EXISTS (
			SELECT 1 FROM products p WHERE p.id = e.product_id AND p.deleted_at IS NULL
		  )
	`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// SoftDeleteByProduct sweeps all escrows of a product when the product
// itself is deleted.
func (r *EscrowRepo) SoftDeleteByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE escrows SET deleted_at = now(), updated_at = now()
		WHERE product_id = $1 AND deleted_at IS NULL
	`, productID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
