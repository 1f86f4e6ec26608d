package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opechapo/kara-backend/internal/models"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// UpsertByWallet creates the user on first sight of the wallet and stores
// the freshly issued nonce either way.
func (r *UserRepo) UpsertByWallet(ctx context.Context, walletAddress, nonce string) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (wallet_address, nonce)
		VALUES ($1, $2)
		ON CONFLICT (wallet_address)
		DO UPDATE SET nonce = $2, updated_at = now()
		RETURNING id, wallet_address, email, avatar_url, nonce,
		          orders_created, orders_received, is_admin, created_at, updated_at
	`, walletAddress, nonce).Scan(&u.ID, &u.WalletAddress, &u.Email, &u.AvatarURL, &u.Nonce,
		&u.OrdersCreated, &u.OrdersReceived, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, wallet_address, email, avatar_url, nonce,
		       orders_created, orders_received, is_admin, created_at, updated_at
		FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.WalletAddress, &u.Email, &u.AvatarURL, &u.Nonce,
		&u.OrdersCreated, &u.OrdersReceived, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByWallet(ctx context.Context, walletAddress string) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, wallet_address, email, avatar_url, nonce,
		       orders_created, orders_received, is_admin, created_at, updated_at
		FROM users WHERE lower(wallet_address) = lower($1)
	`, walletAddress).Scan(&u.ID, &u.WalletAddress, &u.Email, &u.AvatarURL, &u.Nonce,
		&u.OrdersCreated, &u.OrdersReceived, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ClearNonce burns the nonce after a successful login so the same
// signature cannot be replayed.
func (r *UserRepo) ClearNonce(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET nonce = NULL, updated_at = now() WHERE id = $1`, id)
	return err
}

type UserProfileUpdate struct {
	Email     *string
	AvatarURL *string
}

func (r *UserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, upd UserProfileUpdate) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `
		UPDATE users SET
			email = COALESCE($2, email),
			avatar_url = COALESCE($3, avatar_url),
			updated_at = now()
		WHERE id = $1
		RETURNING id, wallet_address, email, avatar_url, nonce,
		          orders_created, orders_received, is_admin, created_at, updated_at
	`, id, upd.Email, upd.AvatarURL).Scan(&u.ID, &u.WalletAddress, &u.Email, &u.AvatarURL, &u.Nonce,
		&u.OrdersCreated, &u.OrdersReceived, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// IncrementOrderCounters bumps orders_created on the buyer and
// orders_received on the seller when an escrow is opened.
func (r *UserRepo) IncrementOrderCounters(ctx context.Context, buyerID, sellerID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET
			orders_created  = orders_created + CASE WHEN id = $1 THEN 1 ELSE 0 END,
			orders_received = orders_received + CASE WHEN id = $2 THEN 1 ELSE 0 END,
			updated_at = now()
		WHERE id IN ($1, $2)
	`, buyerID, sellerID)
	return err
}
