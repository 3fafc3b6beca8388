package repository

import (
	"context"

	"farmdirect-backend/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const escrowColumns = `id, buyer_id, listing_id, auction_id, type, status, amount,
	       payment_intent_id, payment_gateway, expiry_time, held_at, released_at, refunded_at,
	       reason, created_at, updated_at`

type EscrowRepository struct {
	pool *pgxpool.Pool
}

func NewEscrowRepository(pool *pgxpool.Pool) *EscrowRepository {
	return &EscrowRepository{pool: pool}
}

func scanEscrow(row pgx.Row) (*model.EscrowHold, error) {
	h := &model.EscrowHold{}
	err := row.Scan(
		&h.ID, &h.BuyerID, &h.ListingID, &h.AuctionID, &h.Type, &h.Status, &h.Amount,
		&h.PaymentIntentID, &h.PaymentGateway, &h.ExpiryTime, &h.HeldAt, &h.ReleasedAt, &h.RefundedAt,
		&h.Reason, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (r *EscrowRepository) Create(ctx context.Context, h *model.EscrowHold) (*model.EscrowHold, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO escrow_holds (buyer_id, listing_id, auction_id, type, status, amount,
		                          payment_intent_id, payment_gateway, expiry_time, held_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`,
		h.BuyerID, h.ListingID, h.AuctionID, h.Type, h.Status, h.Amount,
		h.PaymentIntentID, h.PaymentGateway, h.ExpiryTime, h.HeldAt,
	).Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (r *EscrowRepository) GetByID(ctx context.Context, id string) (*model.EscrowHold, error) {
	return scanEscrow(r.pool.QueryRow(ctx, `SELECT `+escrowColumns+` FROM escrow_holds WHERE id = $1`, id))
}

// FindActiveHold is the admission read the auction core depends on: the
// buyer's HELD deposit for a listing, if any.
func (r *EscrowRepository) FindActiveHold(ctx context.Context, buyerID, listingID string) (*model.EscrowHold, error) {
	return r.findActiveHold(ctx, r.pool, buyerID, listingID)
}

// FindActiveHoldTx is the same read inside the auction lock, so the cascade
// checks admission against a consistent snapshot.
func (r *EscrowRepository) FindActiveHoldTx(ctx context.Context, tx pgx.Tx, buyerID, listingID string) (*model.EscrowHold, error) {
	return r.findActiveHold(ctx, tx, buyerID, listingID)
}

func (r *EscrowRepository) findActiveHold(ctx context.Context, q querier, buyerID, listingID string) (*model.EscrowHold, error) {
	return scanEscrow(q.QueryRow(ctx, `
		SELECT `+escrowColumns+`
		FROM escrow_holds
		WHERE buyer_id = $1 AND listing_id = $2 AND status = 'HELD'
		ORDER BY created_at DESC
		LIMIT 1
	`, buyerID, listingID))
}

// SetAuctionID links a hold to the auction it ended up backing.
func (r *EscrowRepository) SetAuctionID(ctx context.Context, holdID, auctionID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE escrow_holds SET auction_id = $2, updated_at = NOW() WHERE id = $1
	`, holdID, auctionID)
	return err
}

func (r *EscrowRepository) ListByBuyer(ctx context.Context, buyerID string) ([]model.EscrowHold, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+escrowColumns+` FROM escrow_holds WHERE buyer_id = $1 ORDER BY created_at DESC
	`, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectHolds(rows)
}

// ListHeldByListing returns every HELD deposit on a listing; the auction
// core walks these at settlement to issue release/refund instructions.
func (r *EscrowRepository) ListHeldByListing(ctx context.Context, listingID string) ([]model.EscrowHold, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+escrowColumns+` FROM escrow_holds WHERE listing_id = $1 AND status = 'HELD' ORDER BY created_at ASC
	`, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectHolds(rows)
}

// UpdateStatus transitions a hold and stamps the matching timestamp.
func (r *EscrowRepository) UpdateStatus(ctx context.Context, id, status, reason string) (*model.EscrowHold, error) {
	return scanEscrow(r.pool.QueryRow(ctx, `
		UPDATE escrow_holds
		SET status = $2,
		    reason = $3,
		    held_at = CASE WHEN $2 = 'HELD' THEN NOW() ELSE held_at END,
		    released_at = CASE WHEN $2 = 'RELEASED' THEN NOW() ELSE released_at END,
		    refunded_at = CASE WHEN $2 = 'REFUNDED' THEN NOW() ELSE refunded_at END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+escrowColumns,
		id, status, reason,
	))
}

func collectHolds(rows pgx.Rows) ([]model.EscrowHold, error) {
	var holds []model.EscrowHold
	for rows.Next() {
		var h model.EscrowHold
		if err := rows.Scan(
			&h.ID, &h.BuyerID, &h.ListingID, &h.AuctionID, &h.Type, &h.Status, &h.Amount,
			&h.PaymentIntentID, &h.PaymentGateway, &h.ExpiryTime, &h.HeldAt, &h.ReleasedAt, &h.RefundedAt,
			&h.Reason, &h.CreatedAt, &h.UpdatedAt,
		); err != nil {
			return nil, err
		}
		holds = append(holds, h)
	}
	if holds == nil {
		holds = []model.EscrowHold{}
	}
	return holds, nil
}
