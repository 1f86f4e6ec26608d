package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opechapo/kara-backend/internal/models"
)

type ProductRepo struct {
	pool *pgxpool.Pool
}

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

const productSelectRefs = `
	SELECT p.id, p.name, p.short_description, p.store_id, p.category, p.collection_id,
	       p.description, p.amount, p.price, p.payment_token, p.general_image,
	       p.escrow_system, p.vendor_deposit, p.customer_deposit, p.owner_id,
	       p.deleted_at, p.created_at, p.updated_at,
	       s.name, s.description, c.name, u.wallet_address
	FROM products p
	LEFT JOIN stores s ON s.id = p.store_id
	LEFT JOIN collections c ON c.id = p.collection_id
	LEFT JOIN users u ON u.id = p.owner_id
`

func scanProductWithRefs(row interface{ Scan(...any) error }) (*models.ProductWithRefs, error) {
	var p models.ProductWithRefs
	err := row.Scan(&p.ID, &p.Name, &p.ShortDescription, &p.StoreID, &p.Category, &p.CollectionID,
		&p.Description, &p.Amount, &p.Price, &p.PaymentToken, &p.GeneralImage,
		&p.EscrowSystem, &p.VendorDeposit, &p.CustomerDeposit, &p.OwnerID,
		&p.DeletedAt, &p.CreatedAt, &p.UpdatedAt,
		&p.StoreName, &p.StoreDescription, &p.CollectionName, &p.OwnerWallet)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) Create(ctx context.Context, p *models.Product) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO products (name, short_description, store_id, category, collection_id,
		                      description, amount, price, payment_token, general_image,
		                      escrow_system, vendor_deposit, customer_deposit, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`, p.Name, p.ShortDescription, p.StoreID, p.Category, p.CollectionID,
		p.Description, p.Amount, p.Price, p.PaymentToken, p.GeneralImage,
		p.EscrowSystem, p.VendorDeposit, p.CustomerDeposit, p.OwnerID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// GetByID returns a live (non-deleted) product with its refs.
func (r *ProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ProductWithRefs, error) {
	row := r.pool.QueryRow(ctx, productSelectRefs+` WHERE p.id = $1 AND p.deleted_at IS NULL`, id)
	return scanProductWithRefs(row)
}

type ProductFilter struct {
	OwnerID      *uuid.UUID
	StoreID      *uuid.UUID
	CollectionID *uuid.UUID
	Category     *string
	Search       *string
	Limit        int
}

func (r *ProductRepo) List(ctx context.Context, f ProductFilter) ([]models.ProductWithRefs, error) {
	query := productSelectRefs + " WHERE p.deleted_at IS NULL"
	args := []any{}
	argIdx := 1

	if f.OwnerID != nil {
		query += fmt.Sprintf(" AND p.owner_id = $%d", argIdx)
		args = append(args, *f.OwnerID)
		argIdx++
	}
	if f.StoreID != nil {
		query += fmt.Sprintf(" AND p.store_id = $%d", argIdx)
		args = append(args, *f.StoreID)
		argIdx++
	}
	if f.CollectionID != nil {
		query += fmt.Sprintf(" AND p.collection_id = $%d", argIdx)
		args = append(args, *f.CollectionID)
		argIdx++
	}
	if f.Category != nil {
		query += fmt.Sprintf(" AND p.category = $%d", argIdx)
		args = append(args, *f.Category)
		argIdx++
	}
	if f.Search != nil {
		query += fmt.Sprintf(" AND (p.name ILIKE $%d OR p.short_description ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+*f.Search+"%")
		argIdx++
	}

	query += " ORDER BY p.created_at DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, f.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.ProductWithRefs{}
	for rows.Next() {
		p, err := scanProductWithRefs(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

type ProductUpdate struct {
	Name             *string
	ShortDescription *string
	Category         *string
	Description      *string
	Amount           *int
	Price            *float64
	PaymentToken     *string
	GeneralImage     *string
	VendorDeposit    *float64
	CustomerDeposit  *float64
}

func (r *ProductRepo) Update(ctx context.Context, id uuid.UUID, upd ProductUpdate) (*models.Product, error) {
	var p models.Product
	err := r.pool.QueryRow(ctx, `
		UPDATE products SET
			name = COALESCE($2, name),
			short_description = COALESCE($3, short_description),
			category = COALESCE($4, category),
			description = COALESCE($5, description),
			amount = COALESCE($6, amount),
			price = COALESCE($7, price),
			payment_token = COALESCE($8, payment_token),
			general_image = COALESCE($9, general_image),
			vendor_deposit = COALESCE($10, vendor_deposit),
			customer_deposit = COALESCE($11, customer_deposit),
			updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING id, name, short_description, store_id, category, collection_id,
		          description, amount, price, payment_token, general_image,
		          escrow_system, vendor_deposit, customer_deposit, owner_id,
		          deleted_at, created_at, updated_at
	`, id, upd.Name, upd.ShortDescription, upd.Category, upd.Description,
		upd.Amount, upd.Price, upd.PaymentToken, upd.GeneralImage,
		upd.VendorDeposit, upd.CustomerDeposit,
	).Scan(&p.ID, &p.Name, &p.ShortDescription, &p.StoreID, &p.Category, &p.CollectionID,
		&p.Description, &p.Amount, &p.Price, &p.PaymentToken, &p.GeneralImage,
		&p.EscrowSystem, &p.VendorDeposit, &p.CustomerDeposit, &p.OwnerID,
		&p.DeletedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DistinctCategories lists the categories that currently have at least
// one live product.
func (r *ProductRepo) DistinctCategories(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT category FROM products WHERE deleted_at IS NULL ORDER BY category
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cats := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// SoftDelete marks a product deleted. Escrows referencing it are swept
// separately so the state machine history survives.
func (r *ProductRepo) SoftDelete(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
