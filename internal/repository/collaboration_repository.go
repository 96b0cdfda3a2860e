package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tradelink/internal/domain"
)

var (
	ErrDuplicateCollaboration = errors.New("collaboration between this importer and supplier already exists")
)

// CollaborationRepository defines the interface for collaboration data access
type CollaborationRepository interface {
	Create(ctx context.Context, collaboration *domain.Collaboration) error
	ListWithParties(ctx context.Context) ([]*domain.CollaborationListing, error)
}

type collaborationRepository struct {
	db *sql.DB
}

// NewCollaborationRepository creates a new instance of CollaborationRepository
func NewCollaborationRepository(db *sql.DB) CollaborationRepository {
	return &collaborationRepository{db: db}
}

// Create inserts a new collaboration. The unique constraint on
// (importer_id, supplier_id) is the authoritative arbiter for duplicate
// pairs; its violation is mapped to ErrDuplicateCollaboration rather than
// pre-checked, which closes the check-then-insert race.
func (r *collaborationRepository) Create(ctx context.Context, collaboration *domain.Collaboration) error {
	query := `
		INSERT INTO collaborations (id, importer_id, supplier_id, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		collaboration.ID,
		collaboration.ImporterID,
		collaboration.SupplierID,
		collaboration.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "collaborations_importer_supplier_unique") {
			return ErrDuplicateCollaboration
		}
		return fmt.Errorf("failed to create collaboration: %w", err)
	}

	return nil
}

// ListWithParties retrieves every collaboration joined with both parties'
// email and company name, newest first.
func (r *collaborationRepository) ListWithParties(ctx context.Context) ([]*domain.CollaborationListing, error) {
	query := `
		SELECT c.id, c.importer_id, c.supplier_id, c.created_at,
		       importer.email, importer.company_name,
		       supplier.email, supplier.company_name
		FROM collaborations c
		INNER JOIN users importer ON importer.id = c.importer_id
		INNER JOIN users supplier ON supplier.id = c.supplier_id
		ORDER BY c.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list collaborations: %w", err)
	}
	defer rows.Close()

	listings := []*domain.CollaborationListing{}
	for rows.Next() {
		listing := &domain.CollaborationListing{}
		err := rows.Scan(
			&listing.ID,
			&listing.ImporterID,
			&listing.SupplierID,
			&listing.CreatedAt,
			&listing.ImporterEmail,
			&listing.ImporterCompanyName,
			&listing.SupplierEmail,
			&listing.SupplierCompanyName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collaboration: %w", err)
		}
		listings = append(listings, listing)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collaborations: %w", err)
	}

	return listings, nil
}
