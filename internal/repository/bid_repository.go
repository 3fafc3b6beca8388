package repository

import (
	"context"

	"farmdirect-backend/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bidColumns = `id, auction_id, bidder_id, amount, status, is_auto_bid, max_auto_bid_amount, created_at, updated_at`

type BidRepository struct {
	pool *pgxpool.Pool
}

func NewBidRepository(pool *pgxpool.Pool) *BidRepository {
	return &BidRepository{pool: pool}
}

// InsertTx appends a new ACTIVE bid inside the auction lock.
func (r *BidRepository) InsertTx(ctx context.Context, tx pgx.Tx, b *model.Bid) error {
	return tx.QueryRow(ctx, `
		INSERT INTO bids (auction_id, bidder_id, amount, status, is_auto_bid, max_auto_bid_amount)
		VALUES ($1, $2, $3, 'ACTIVE', $4, $5)
		RETURNING id, created_at, updated_at
	`,
		b.AuctionID, b.BidderID, b.Amount, b.IsAutoBid, b.MaxAutoBidAmount,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *BidRepository) SetStatusTx(ctx context.Context, tx pgx.Tx, bidID, status string) error {
	_, err := tx.Exec(ctx, `UPDATE bids SET status = $2, updated_at = NOW() WHERE id = $1`, bidID, status)
	return err
}

// HasAcceptedBidTx reports whether the bidder already has any bid on the
// auction, which drives the unique_bidders counter.
func (r *BidRepository) HasAcceptedBidTx(ctx context.Context, tx pgx.Tx, auctionID, bidderID string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM bids WHERE auction_id = $1 AND bidder_id = $2)
	`, auctionID, bidderID).Scan(&exists)
	return exists, err
}

// StandingAutoBidsTx returns each bidder's most recent auto-bid for an
// auction. Being outbid does not retire a proxy: its ceiling keeps countering
// until exhausted, so OUTBID rows stay in the candidate set and only REJECTED
// ones drop out. One row per bidder (the latest carries the ceiling), ordered
// by each bidder's first registration so the earliest ceiling wins ties.
func (r *BidRepository) StandingAutoBidsTx(ctx context.Context, tx pgx.Tx, auctionID string) ([]model.Bid, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+bidColumns+`
		FROM (
			SELECT DISTINCT ON (bidder_id) `+bidColumns+`,
			       MIN(created_at) OVER (PARTITION BY bidder_id) AS registered_at
			FROM bids
			WHERE auction_id = $1 AND is_auto_bid = TRUE
			  AND max_auto_bid_amount IS NOT NULL
			  AND status IN ('ACTIVE', 'OUTBID')
			ORDER BY bidder_id, created_at DESC, id DESC
		) standing
		ORDER BY registered_at ASC, id ASC
	`, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBids(rows)
}

func (r *BidRepository) ListByAuction(ctx context.Context, auctionID string) ([]model.Bid, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+bidColumns+` FROM bids WHERE auction_id = $1 ORDER BY created_at DESC
	`, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBids(rows)
}

func (r *BidRepository) ListByBidder(ctx context.Context, bidderID string) ([]model.Bid, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+bidColumns+` FROM bids WHERE bidder_id = $1 ORDER BY created_at DESC
	`, bidderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBids(rows)
}

func collectBids(rows pgx.Rows) ([]model.Bid, error) {
	var bids []model.Bid
	for rows.Next() {
		var b model.Bid
		if err := rows.Scan(
			&b.ID, &b.AuctionID, &b.BidderID, &b.Amount, &b.Status,
			&b.IsAutoBid, &b.MaxAutoBidAmount, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	if bids == nil {
		bids = []model.Bid{}
	}
	return bids, nil
}
