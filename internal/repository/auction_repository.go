package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"farmdirect-backend/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrLockContention is returned after bounded retries of a serialization or
// deadlock failure on the auction row.
var ErrLockContention = errors.New("auction row contention, retries exhausted")

const lockRetries = 3

const auctionColumns = `id, listing_id, farmer_id, type, status, start_time, end_time,
	       actual_start_time, actual_end_time, starting_bid, reserve_price, current_bid,
	       min_bid_increment, anti_sniping_buffer, extensions, reserve_met,
	       winning_bid_id, winning_bidder_id, winning_bid_amount,
	       total_bids, unique_bidders, created_at, updated_at`

type AuctionRepository struct {
	pool *pgxpool.Pool
}

func NewAuctionRepository(pool *pgxpool.Pool) *AuctionRepository {
	return &AuctionRepository{pool: pool}
}

func scanAuction(row pgx.Row) (*model.Auction, error) {
	a := &model.Auction{}
	err := row.Scan(
		&a.ID, &a.ListingID, &a.FarmerID, &a.Type, &a.Status, &a.StartTime, &a.EndTime,
		&a.ActualStartTime, &a.ActualEndTime, &a.StartingBid, &a.ReservePrice, &a.CurrentBid,
		&a.MinBidIncrement, &a.AntiSnipingBuffer, &a.Extensions, &a.ReserveMet,
		&a.WinningBidID, &a.WinningBidderID, &a.WinningBidAmount,
		&a.TotalBids, &a.UniqueBidders, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AuctionRepository) Create(ctx context.Context, a *model.Auction) (*model.Auction, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO auctions (
			listing_id, farmer_id, type, status, start_time, end_time,
			starting_bid, reserve_price, min_bid_increment, anti_sniping_buffer
		) VALUES ($1, $2, $3, 'SCHEDULED', $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`,
		a.ListingID, a.FarmerID, a.Type, a.StartTime, a.EndTime,
		a.StartingBid, a.ReservePrice, a.MinBidIncrement, a.AntiSnipingBuffer,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Status = model.AuctionScheduled
	return a, nil
}

func (r *AuctionRepository) GetByID(ctx context.Context, id string) (*model.Auction, error) {
	return scanAuction(r.pool.QueryRow(ctx, `SELECT `+auctionColumns+` FROM auctions WHERE id = $1`, id))
}

// HasScheduledForListing reports whether the listing already carries a
// SCHEDULED auction (at most one is allowed).
func (r *AuctionRepository) HasScheduledForListing(ctx context.Context, listingID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM auctions WHERE listing_id = $1 AND status = 'SCHEDULED')
	`, listingID).Scan(&exists)
	return exists, err
}

func (r *AuctionRepository) List(ctx context.Context, status string, limit, offset int) ([]model.Auction, int, error) {
	where := "TRUE"
	args := []interface{}{}
	if status != "" && status != "all" {
		where = "status = $1"
		args = append(args, status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM auctions WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT `+auctionColumns+`
		FROM auctions
		WHERE %s
		ORDER BY CASE status WHEN 'LIVE' THEN 0 WHEN 'SCHEDULED' THEN 1 ELSE 2 END, end_time ASC
		LIMIT %d OFFSET %d
	`, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	auctions, err := collectAuctions(rows)
	if err != nil {
		return nil, 0, err
	}
	return auctions, total, nil
}

func (r *AuctionRepository) ListByFarmer(ctx context.Context, farmerID string) ([]model.Auction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+auctionColumns+` FROM auctions WHERE farmer_id = $1 ORDER BY created_at DESC
	`, farmerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAuctions(rows)
}

// IDsByStatus feeds the scheduler; each returned auction is then locked and
// transitioned independently.
func (r *AuctionRepository) IDsByStatus(ctx context.Context, status string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM auctions WHERE status = $1 ORDER BY start_time ASC`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// WithAuctionLock runs fn inside a transaction holding a FOR UPDATE lock on
// the auction row. This is the serialization point for everything that
// mutates one auction: bid acceptance (and its auto-bid cascade), state
// transitions, and scheduler sweeps. Serialization and deadlock failures are
// retried a bounded number of times with the whole section re-run.
func (r *AuctionRepository) WithAuctionLock(ctx context.Context, auctionID string, fn func(ctx context.Context, tx pgx.Tx, a *model.Auction) error) error {
	var err error
	for attempt := 0; attempt < lockRetries; attempt++ {
		err = r.withAuctionLockOnce(ctx, auctionID, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
		time.Sleep(time.Duration(attempt+1) * 50 * time.Millisecond)
	}
	return fmt.Errorf("%w: %v", ErrLockContention, err)
}

func (r *AuctionRepository) withAuctionLockOnce(ctx context.Context, auctionID string, fn func(ctx context.Context, tx pgx.Tx, a *model.Auction) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	a, err := scanAuction(tx.QueryRow(ctx, `
		SELECT `+auctionColumns+` FROM auctions WHERE id = $1 FOR UPDATE
	`, auctionID))
	if err != nil {
		return err
	}

	if err := fn(ctx, tx, a); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure, deadlock_detected
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// SetWinningBidTx records an accepted bid on the auction row: new current
// bid, winner pointers, and counters. Runs inside the caller's lock; the
// in-memory auction is updated to match so the cascade sees fresh state.
func (r *AuctionRepository) SetWinningBidTx(ctx context.Context, tx pgx.Tx, a *model.Auction, b *model.Bid, newBidder bool) error {
	uniqueInc := 0
	if newBidder {
		uniqueInc = 1
	}
	_, err := tx.Exec(ctx, `
		UPDATE auctions
		SET current_bid = $2, winning_bid_id = $3, winning_bidder_id = $4, winning_bid_amount = $2,
		    total_bids = total_bids + 1, unique_bidders = unique_bidders + $5, updated_at = NOW()
		WHERE id = $1
	`, a.ID, b.Amount, b.ID, b.BidderID, uniqueInc)
	if err != nil {
		return err
	}

	a.CurrentBid.Decimal = b.Amount
	a.CurrentBid.Valid = true
	a.WinningBidID = &b.ID
	a.WinningBidderID = &b.BidderID
	a.WinningBidAmount.Decimal = b.Amount
	a.WinningBidAmount.Valid = true
	a.TotalBids++
	a.UniqueBidders += uniqueInc
	return nil
}

// ExtendEndTimeTx pushes the auction end out by the anti-sniping buffer.
func (r *AuctionRepository) ExtendEndTimeTx(ctx context.Context, tx pgx.Tx, a *model.Auction, newEnd time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE auctions SET end_time = $2, extensions = extensions + 1, updated_at = NOW() WHERE id = $1
	`, a.ID, newEnd)
	if err != nil {
		return err
	}
	a.EndTime = newEnd
	a.Extensions++
	return nil
}

// SaveTransitionTx persists a lifecycle transition (start/end/pause/resume/
// cancel) already applied to the in-memory auction.
func (r *AuctionRepository) SaveTransitionTx(ctx context.Context, tx pgx.Tx, a *model.Auction) error {
	_, err := tx.Exec(ctx, `
		UPDATE auctions
		SET status = $2, actual_start_time = $3, actual_end_time = $4, reserve_met = $5, updated_at = NOW()
		WHERE id = $1
	`, a.ID, a.Status, a.ActualStartTime, a.ActualEndTime, a.ReserveMet)
	return err
}

func collectAuctions(rows pgx.Rows) ([]model.Auction, error) {
	var auctions []model.Auction
	for rows.Next() {
		var a model.Auction
		if err := rows.Scan(
			&a.ID, &a.ListingID, &a.FarmerID, &a.Type, &a.Status, &a.StartTime, &a.EndTime,
			&a.ActualStartTime, &a.ActualEndTime, &a.StartingBid, &a.ReservePrice, &a.CurrentBid,
			&a.MinBidIncrement, &a.AntiSnipingBuffer, &a.Extensions, &a.ReserveMet,
			&a.WinningBidID, &a.WinningBidderID, &a.WinningBidAmount,
			&a.TotalBids, &a.UniqueBidders, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		auctions = append(auctions, a)
	}
	if auctions == nil {
		auctions = []model.Auction{}
	}
	return auctions, nil
}
