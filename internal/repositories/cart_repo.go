package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opechapo/kara-backend/internal/models"
)

type CartRepo struct {
	pool *pgxpool.Pool
}

func NewCartRepo(pool *pgxpool.Pool) *CartRepo {
	return &CartRepo{pool: pool}
}

// GetOrCreate returns the user's cart, creating an empty one on first use.
func (r *CartRepo) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var c models.Cart
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1
	`, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err == pgx.ErrNoRows {
		err = r.pool.QueryRow(ctx, `
			INSERT INTO carts (user_id) VALUES ($1)
			ON CONFLICT (user_id) DO UPDATE SET updated_at = now()
			RETURNING id, user_id, created_at, updated_at
		`, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	}
	if err != nil {
		return nil, err
	}

	items, err := r.listItems(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Items = items
	return &c, nil
}

func (r *CartRepo) listItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT i.id, i.cart_id, i.product_id, i.quantity,
		       p.name, p.price, u.wallet_address
		FROM cart_items i
		LEFT JOIN products p ON p.id = i.product_id AND p.deleted_at IS NULL
		LEFT JOIN users u ON u.id = p.owner_id
		WHERE i.cart_id = $1
		ORDER BY i.id
	`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.CartItem{}
	for rows.Next() {
		var it models.CartItem
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity,
			&it.ProductName, &it.ProductPrice, &it.OwnerWallet); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// AddItem inserts or bumps the quantity of a product already in the cart.
func (r *CartRepo) AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + $3
	`, cartID, productID, quantity)
	return err
}

func (r *CartRepo) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2
	`, cartID, productID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *CartRepo) Clear(ctx context.Context, cartID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// RemoveDanglingItems drops cart items whose product has been deleted.
// Returns the affected cart owners so the service can notify them.
func (r *CartRepo) RemoveDanglingItems(ctx context.Context, cartID *uuid.UUID) ([]uuid.UUID, error) {
	query := `
		DELETE FROM cart_items i
		USING carts c
		WHERE c.id = i.cart_id
		  AND NOT EXISTS (
			SELECT 1 FROM products p WHERE p.id = i.product_id AND p.deleted_at IS NULL
		  )
	`
	args := []any{}
	if cartID != nil {
		query += ` AND i.cart_id = $1`
		args = append(args, *cartID)
	}
	query += ` RETURNING c.user_id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	owners := []uuid.UUID{}
	seen := map[uuid.UUID]bool{}
	for rows.Next() {
		var uid uuid.UUID
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		if !seen[uid] {
			seen[uid] = true
			owners = append(owners, uid)
		}
	}
	return owners, rows.Err()
}
