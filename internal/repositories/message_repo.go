package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opechapo/kara-backend/internal/models"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, m *models.Message) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO messages (product_id, sender_id, receiver_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, m.ProductID, m.SenderID, m.ReceiverID, m.Body).Scan(&m.ID, &m.CreatedAt)
}

// ListConversation returns the two-way thread between a buyer and a
// seller about one product, oldest first.
func (r *MessageRepo) ListConversation(ctx context.Context, productID, userA, userB uuid.UUID) ([]models.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.product_id, m.sender_id, m.receiver_id, m.body, m.created_at,
		       su.wallet_address, ru.wallet_address
		FROM messages m
		JOIN users su ON su.id = m.sender_id
		JOIN users ru ON ru.id = m.receiver_id
		WHERE m.product_id = $1
		  AND ((m.sender_id = $2 AND m.receiver_id = $3) OR (m.sender_id = $3 AND m.receiver_id = $2))
		ORDER BY m.created_at ASC
	`, productID, userA, userB)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ProductID, &m.SenderID, &m.ReceiverID, &m.Body, &m.CreatedAt,
			&m.SenderWallet, &m.ReceiverWallet); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
