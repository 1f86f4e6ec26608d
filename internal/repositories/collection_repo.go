package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opechapo/kara-backend/internal/models"
)

type CollectionRepo struct {
	pool *pgxpool.Pool
}

func NewCollectionRepo(pool *pgxpool.Pool) *CollectionRepo {
	return &CollectionRepo{pool: pool}
}

func (r *CollectionRepo) Create(ctx context.Context, col *models.Collection) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO collections (name, short_description, store_id, description, general_image, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, col.Name, col.ShortDescription, col.StoreID, col.Description, col.GeneralImage, col.OwnerID,
	).Scan(&col.ID, &col.CreatedAt, &col.UpdatedAt)
}

func (r *CollectionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.CollectionWithRefs, error) {
	var c models.CollectionWithRefs
	err := r.pool.QueryRow(ctx, `
		SELECT c.id, c.name, c.short_description, c.store_id, c.description,
		       c.general_image, c.owner_id, c.created_at, c.updated_at,
		       s.name, u.wallet_address
		FROM collections c
		LEFT JOIN stores s ON s.id = c.store_id
		LEFT JOIN users u ON u.id = c.owner_id
		WHERE c.id = $1
	`, id).Scan(&c.ID, &c.Name, &c.ShortDescription, &c.StoreID, &c.Description,
		&c.GeneralImage, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt,
		&c.StoreName, &c.OwnerWallet)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

type CollectionFilter struct {
	OwnerID *uuid.UUID
	StoreID *uuid.UUID
}

func (r *CollectionRepo) List(ctx context.Context, f CollectionFilter) ([]models.CollectionWithRefs, error) {
	query := `
		SELECT c.id, c.name, c.short_description, c.store_id, c.description,
		       c.general_image, c.owner_id, c.created_at, c.updated_at,
		       s.name, u.wallet_address
		FROM collections c
		LEFT JOIN stores s ON s.id = c.store_id
		LEFT JOIN users u ON u.id = c.owner_id
	`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.OwnerID != nil {
		where = append(where, fmt.Sprintf("c.owner_id = $%d", argIdx))
		args = append(args, *f.OwnerID)
		argIdx++
	}
	if f.StoreID != nil {
		where = append(where, fmt.Sprintf("c.store_id = $%d", argIdx))
		args = append(args, *f.StoreID)
		argIdx++
	}

	for i, w := range where {
		if i == 0 {
			query += " WHERE " + w
		} else {
			query += " AND " + w
		}
	}
	query += " ORDER BY c.created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := []models.CollectionWithRefs{}
	for rows.Next() {
		var c models.CollectionWithRefs
		if err := rows.Scan(&c.ID, &c.Name, &c.ShortDescription, &c.StoreID, &c.Description,
			&c.GeneralImage, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt,
			&c.StoreName, &c.OwnerWallet); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

type CollectionUpdate struct {
	Name             *string
	ShortDescription *string
	Description      *string
	GeneralImage     *string
}

func (r *CollectionRepo) Update(ctx context.Context, id uuid.UUID, upd CollectionUpdate) (*models.Collection, error) {
	var c models.Collection
	err := r.pool.QueryRow(ctx, `
		UPDATE collections SET
			name = COALESCE($2, name),
			short_description = COALESCE($3, short_description),
			description = COALESCE($4, description),
			general_image = COALESCE($5, general_image),
			updated_at = now()
		WHERE id = $1
		RETURNING id, name, short_description, store_id, description,
		          general_image, owner_id, created_at, updated_at
	`, id, upd.Name, upd.ShortDescription, upd.Description, upd.GeneralImage,
	).Scan(&c.ID, &c.Name, &c.ShortDescription, &c.StoreID, &c.Description,
		&c.GeneralImage, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CollectionRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM collections WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
