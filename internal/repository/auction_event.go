package repository

import (
	"context"
	"encoding/json"

	"farmdirect-backend/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AuctionEventRepository struct {
	pool *pgxpool.Pool
}

func NewAuctionEventRepository(pool *pgxpool.Pool) *AuctionEventRepository {
	return &AuctionEventRepository{pool: pool}
}

// InsertTx appends an audit row inside the caller's transaction so the
// event commits or rolls back together with the state change it records.
func (r *AuctionEventRepository) InsertTx(ctx context.Context, q querier, auctionID, eventType string, payload json.RawMessage) error {
	_, err := q.Exec(ctx, `
		INSERT INTO auction_events (auction_id, event_type, payload) VALUES ($1, $2, $3)
	`, auctionID, eventType, payload)
	return err
}

func (r *AuctionEventRepository) ListByAuction(ctx context.Context, auctionID string, limit int) ([]model.AuctionEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, auction_id, event_type, payload, created_at
		FROM auction_events
		WHERE auction_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, auctionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.AuctionEvent
	for rows.Next() {
		var e model.AuctionEvent
		if err := rows.Scan(&e.ID, &e.AuctionID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if events == nil {
		events = []model.AuctionEvent{}
	}
	return events, nil
}
