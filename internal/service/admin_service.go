package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tradelink/internal/domain"
	"tradelink/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrSameParty        = errors.New("importer and supplier cannot be the same user")
	ErrImporterNotFound = errors.New("importer does not exist")
	ErrSupplierNotFound = errors.New("supplier does not exist")
	ErrNotAnImporter    = errors.New("selected user is not an importer")
	ErrNotASupplier     = errors.New("selected user is not a supplier")
)

// AdminService defines the interface for administrative business logic
type AdminService interface {
	ListUsers(ctx context.Context) ([]*domain.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, update repository.UserProfileUpdate) (*domain.User, error)
	ListCollaborations(ctx context.Context) ([]*domain.CollaborationListing, error)
	CreateCollaboration(ctx context.Context, importerID, supplierID uuid.UUID) (*domain.Collaboration, error)
}

type adminService struct {
	userRepo          repository.UserRepository
	collaborationRepo repository.CollaborationRepository
}

// NewAdminService creates a new instance of AdminService
func NewAdminService(userRepo repository.UserRepository, collaborationRepo repository.CollaborationRepository) AdminService {
	return &adminService{
		userRepo:          userRepo,
		collaborationRepo: collaborationRepo,
	}
}

// ListUsers returns all importer and supplier accounts, oldest first.
func (s *adminService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userRepo.ListByRoles(ctx, []domain.Role{domain.RoleImporter, domain.RoleSupplier})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateUser applies a partial profile update to an importer or supplier
// account. Role and password are never updatable.
func (s *adminService) UpdateUser(ctx context.Context, id uuid.UUID, update repository.UserProfileUpdate) (*domain.User, error) {
	user, err := s.userRepo.UpdateProfile(ctx, id, update)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound),
			errors.Is(err, repository.ErrUserAlreadyExists),
			errors.Is(err, repository.ErrNoFieldsToUpdate):
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// ListCollaborations returns every collaboration with both parties'
// contact details, newest first.
func (s *adminService) ListCollaborations(ctx context.Context) ([]*domain.CollaborationListing, error) {
	listings, err := s.collaborationRepo.ListWithParties(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collaborations: %w", err)
	}
	return listings, nil
}

// CreateCollaboration approves an (importer, supplier) pairing. Both ids
// must resolve to users holding the matching roles. Duplicate pairs are
// rejected by the storage-level unique constraint, not a pre-check.
func (s *adminService) CreateCollaboration(ctx context.Context, importerID, supplierID uuid.UUID) (*domain.Collaboration, error) {
	if importerID == supplierID {
		return nil, ErrSameParty
	}

	pair, err := s.userRepo.FindByIDs(ctx, []uuid.UUID{importerID, supplierID})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve parties: %w", err)
	}

	var importer, supplier *domain.User
	for _, u := range pair {
		switch u.ID {
		case importerID:
			importer = u
		case supplierID:
			supplier = u
		}
	}

	if importer == nil {
		return nil, ErrImporterNotFound
	}
	if supplier == nil {
		return nil, ErrSupplierNotFound
	}
	if importer.Role != domain.RoleImporter {
		return nil, ErrNotAnImporter
	}
	if supplier.Role != domain.RoleSupplier {
		return nil, ErrNotASupplier
	}

	collaboration := &domain.Collaboration{
		ID:         uuid.New(),
		ImporterID: importerID,
		SupplierID: supplierID,
		CreatedAt:  time.Now(),
	}

	if err := s.collaborationRepo.Create(ctx, collaboration); err != nil {
		if errors.Is(err, repository.ErrDuplicateCollaboration) {
			return nil, repository.ErrDuplicateCollaboration
		}
		return nil, fmt.Errorf("failed to create collaboration: %w", err)
	}

	return collaboration, nil
}
