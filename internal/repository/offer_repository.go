package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tradelink/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrOfferNotFound = errors.New("offer not found")
)

// OfferRepository defines the interface for product offer data access
type OfferRepository interface {
	Create(ctx context.Context, offer *domain.Offer) error
	ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]*domain.OfferListing, error)
	ListVisibleToImporter(ctx context.Context, importerID uuid.UUID) ([]*domain.VisibleOffer, error)
	DeleteOwned(ctx context.Context, id, supplierID uuid.UUID) error
}

type offerRepository struct {
	db *sql.DB
}

// NewOfferRepository creates a new instance of OfferRepository
func NewOfferRepository(db *sql.DB) OfferRepository {
	return &offerRepository{db: db}
}

// Create inserts a new offer using parameterized queries
func (r *offerRepository) Create(ctx context.Context, offer *domain.Offer) error {
	query := `
		INSERT INTO product_offer
			(id, supplier_id, category_id, code, name, description, image_url, price, width, height, depth, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		offer.ID,
		offer.SupplierID,
		offer.CategoryID,
		offer.Code,
		offer.Name,
		offer.Description,
		offer.ImageURL,
		offer.Price,
		offer.Width,
		offer.Height,
		offer.Depth,
		offer.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}

	return nil
}

// ListBySupplier retrieves the supplier's own offers joined with the
// category name, newest first.
func (r *offerRepository) ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]*domain.OfferListing, error) {
	query := `
		SELECT o.id, o.supplier_id, o.category_id, o.code, o.name, o.description,
		       o.image_url, o.price, o.width, o.height, o.depth, o.created_at,
		       pc.name
		FROM product_offer o
		INNER JOIN product_category pc ON o.category_id = pc.id
		WHERE o.supplier_id = $1
		ORDER BY o.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to list supplier offers: %w", err)
	}
	defer rows.Close()

	offers := []*domain.OfferListing{}
	for rows.Next() {
		offer := &domain.OfferListing{}
		err := rows.Scan(
			&offer.ID,
			&offer.SupplierID,
			&offer.CategoryID,
			&offer.Code,
			&offer.Name,
			&offer.Description,
			&offer.ImageURL,
			&offer.Price,
			&offer.Width,
			&offer.Height,
			&offer.Depth,
			&offer.CreatedAt,
			&offer.CategoryName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, offer)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating offers: %w", err)
	}

	return offers, nil
}

// ListVisibleToImporter retrieves every offer belonging to a supplier the
// importer has an approved collaboration with, newest first. The inner
// join on collaborations is the visibility gate: offers from suppliers
// without a collaboration row never enter the result set, and the
// filtering happens in the query so non-visible offers leak nothing.
func (r *offerRepository) ListVisibleToImporter(ctx context.Context, importerID uuid.UUID) ([]*domain.VisibleOffer, error) {
	query := `
		SELECT o.id, o.supplier_id, o.category_id, o.code, o.name, o.description,
		       o.image_url, o.price, o.width, o.height, o.depth, o.created_at,
		       pc.name,
		       supplier.email, supplier.company_name
		FROM product_offer o
		INNER JOIN collaborations c
			ON c.importer_id = $1 AND c.supplier_id = o.supplier_id
		INNER JOIN product_category pc ON o.category_id = pc.id
		INNER JOIN users supplier ON supplier.id = o.supplier_id
		ORDER BY o.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, importerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list visible offers: %w", err)
	}
	defer rows.Close()

	offers := []*domain.VisibleOffer{}
	for rows.Next() {
		offer := &domain.VisibleOffer{}
		err := rows.Scan(
			&offer.ID,
			&offer.SupplierID,
			&offer.CategoryID,
			&offer.Code,
			&offer.Name,
			&offer.Description,
			&offer.ImageURL,
			&offer.Price,
			&offer.Width,
			&offer.Height,
			&offer.Depth,
			&offer.CreatedAt,
			&offer.CategoryName,
			&offer.SupplierEmail,
			&offer.SupplierCompanyName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan visible offer: %w", err)
		}
		offers = append(offers, offer)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating visible offers: %w", err)
	}

	return offers, nil
}

// DeleteOwned deletes an offer only when both the id and the owner match,
// in a single statement. Zero rows affected covers both "offer does not
// exist" and "offer belongs to another supplier".
func (r *offerRepository) DeleteOwned(ctx context.Context, id, supplierID uuid.UUID) error {
	query := `DELETE FROM product_offer WHERE id = $1 AND supplier_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, supplierID)
	if err != nil {
		return fmt.Errorf("failed to delete offer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOfferNotFound
	}

	return nil
}
