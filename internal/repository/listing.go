package repository

import (
	"context"
	"fmt"
	"strings"

	"farmdirect-backend/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const listingColumns = `l.id, l.farmer_id, u.name, l.title, l.description, l.category,
	       l.quantity, l.unit, l.price_per_unit, l.status, l.created_at, l.updated_at`

type ListingRepository struct {
	pool *pgxpool.Pool
}

func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

func scanListing(row pgx.Row) (*model.Listing, error) {
	l := &model.Listing{}
	err := row.Scan(
		&l.ID, &l.FarmerID, &l.FarmerName, &l.Title, &l.Description, &l.Category,
		&l.Quantity, &l.Unit, &l.PricePerUnit, &l.Status, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *ListingRepository) Create(ctx context.Context, l *model.Listing) (*model.Listing, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO listings (farmer_id, title, description, category, quantity, unit, price_per_unit, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'ACTIVE')
		RETURNING id, created_at, updated_at
	`,
		l.FarmerID, l.Title, l.Description, l.Category, l.Quantity, l.Unit, l.PricePerUnit,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.Status = model.ListingActive
	return l, nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	return scanListing(r.pool.QueryRow(ctx, `
		SELECT `+listingColumns+`
		FROM listings l JOIN users u ON l.farmer_id = u.id
		WHERE l.id = $1
	`, id))
}

func (r *ListingRepository) Search(ctx context.Context, req *model.SearchListingsRequest) ([]model.Listing, int, error) {
	var conditions []string
	var args []interface{}
	argIdx := 1

	status := req.Status
	if status == "" || status == "all" {
		status = model.ListingActive
	}
	conditions = append(conditions, fmt.Sprintf("l.status = $%d", argIdx))
	args = append(args, status)
	argIdx++

	if req.Category != "" && req.Category != "all" {
		conditions = append(conditions, fmt.Sprintf("l.category = $%d", argIdx))
		args = append(args, req.Category)
		argIdx++
	}

	if req.SearchText != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(l.title) LIKE $%d OR LOWER(l.description) LIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+strings.ToLower(req.SearchText)+"%")
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM listings l WHERE " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT `+listingColumns+`
		FROM listings l JOIN users u ON l.farmer_id = u.id
		WHERE %s
		ORDER BY l.created_at DESC
		LIMIT %d OFFSET %d
	`, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	listings, err := collectListings(rows)
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func (r *ListingRepository) GetByFarmerID(ctx context.Context, farmerID string) ([]model.Listing, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+listingColumns+`
		FROM listings l JOIN users u ON l.farmer_id = u.id
		WHERE l.farmer_id = $1
		ORDER BY l.created_at DESC
	`, farmerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectListings(rows)
}

func (r *ListingRepository) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE listings SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	return err
}

func collectListings(rows pgx.Rows) ([]model.Listing, error) {
	var listings []model.Listing
	for rows.Next() {
		var l model.Listing
		if err := rows.Scan(
			&l.ID, &l.FarmerID, &l.FarmerName, &l.Title, &l.Description, &l.Category,
			&l.Quantity, &l.Unit, &l.PricePerUnit, &l.Status, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	if listings == nil {
		listings = []model.Listing{}
	}
	return listings, nil
}
