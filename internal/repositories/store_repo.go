package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opechapo/kara-backend/internal/models"
)

type StoreRepo struct {
	pool *pgxpool.Pool
}

func NewStoreRepo(pool *pgxpool.Pool) *StoreRepo {
	return &StoreRepo{pool: pool}
}

func (r *StoreRepo) Create(ctx context.Context, s *models.Store) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO stores (name, description, slogan, owner_id, banner_image, featured_image, logo)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, s.Name, s.Description, s.Slogan, s.OwnerID, s.BannerImage, s.FeaturedImage, s.Logo,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *StoreRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.StoreWithOwner, error) {
	var s models.StoreWithOwner
	err := r.pool.QueryRow(ctx, `
		SELECT s.id, s.name, s.description, s.slogan, s.owner_id,
		       s.banner_image, s.featured_image, s.logo, s.created_at, s.updated_at,
		       u.wallet_address
		FROM stores s
		JOIN users u ON u.id = s.owner_id
		WHERE s.id = $1
	`, id).Scan(&s.ID, &s.Name, &s.Description, &s.Slogan, &s.OwnerID,
		&s.BannerImage, &s.FeaturedImage, &s.Logo, &s.CreatedAt, &s.UpdatedAt,
		&s.OwnerWallet)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

type StoreFilter struct {
	OwnerID        *uuid.UUID
	ExcludeOwnerID *uuid.UUID
	Search         *string
	Limit          int
}

func (r *StoreRepo) List(ctx context.Context, f StoreFilter) ([]models.StoreWithOwner, error) {
	query := `
		SELECT s.id, s.name, s.description, s.slogan, s.owner_id,
		       s.banner_image, s.featured_image, s.logo, s.created_at, s.updated_at,
		       u.wallet_address
		FROM stores s
		JOIN users u ON u.id = s.owner_id
	`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.OwnerID != nil {
		where = append(where, fmt.Sprintf("s.owner_id = $%d", argIdx))
		args = append(args, *f.OwnerID)
		argIdx++
	} else if f.ExcludeOwnerID != nil {
		where = append(where, fmt.Sprintf("s.owner_id <> $%d", argIdx))
		args = append(args, *f.ExcludeOwnerID)
		argIdx++
	}
	if f.Search != nil {
		where = append(where, fmt.Sprintf("(s.name ILIKE $%d OR s.description ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+*f.Search+"%")
		argIdx++
	}

	for i, w := range where {
		if i == 0 {
			query += " WHERE " + w
		} else {
			query += " AND " + w
		}
	}

	query += " ORDER BY s.created_at DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, f.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stores := []models.StoreWithOwner{}
	for rows.Next() {
		var s models.StoreWithOwner
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Slogan, &s.OwnerID,
			&s.BannerImage, &s.FeaturedImage, &s.Logo, &s.CreatedAt, &s.UpdatedAt,
			&s.OwnerWallet); err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

type StoreUpdate struct {
	Name          *string
	Description   *string
	Slogan        *string
	BannerImage   *string
	FeaturedImage *string
	Logo          *string
}

func (r *StoreRepo) Update(ctx context.Context, id uuid.UUID, upd StoreUpdate) (*models.Store, error) {
	var s models.Store
	err := r.pool.QueryRow(ctx, `
		UPDATE stores SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			slogan = COALESCE($4, slogan),
			banner_image = COALESCE($5, banner_image),
			featured_image = COALESCE($6, featured_image),
			logo = COALESCE($7, logo),
			updated_at = now()
		WHERE id = $1
		RETURNING id, name, description, slogan, owner_id,
		          banner_image, featured_image, logo, created_at, updated_at
	`, id, upd.Name, upd.Description, upd.Slogan, upd.BannerImage, upd.FeaturedImage, upd.Logo,
	).Scan(&s.ID, &s.Name, &s.Description, &s.Slogan, &s.OwnerID,
		&s.BannerImage, &s.FeaturedImage, &s.Logo, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StoreRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM stores WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
