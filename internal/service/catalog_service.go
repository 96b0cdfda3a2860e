package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tradelink/internal/domain"
	"tradelink/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownCategory = errors.New("category does not exist")
)

// CreateOfferInput carries a new offer. The supplier is never taken from
// the input; the service binds the offer to the authenticated caller.
type CreateOfferInput struct {
	CategoryID  uuid.UUID
	Code        string
	Name        string
	Description *string
	ImageURL    string
	Price       decimal.Decimal
	Width       float64
	Height      float64
	Depth       float64
}

// CatalogService defines the interface for catalog business logic
type CatalogService interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	ListSupplierOffers(ctx context.Context, supplierID uuid.UUID) ([]*domain.OfferListing, error)
	CreateOffer(ctx context.Context, supplierID uuid.UUID, input CreateOfferInput) (*domain.Offer, error)
	DeleteOffer(ctx context.Context, supplierID, offerID uuid.UUID) error
	ListImporterOffers(ctx context.Context, importerID uuid.UUID) ([]*domain.VisibleOffer, error)
}

type catalogService struct {
	offerRepo    repository.OfferRepository
	categoryRepo repository.CategoryRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(offerRepo repository.OfferRepository, categoryRepo repository.CategoryRepository) CatalogService {
	return &catalogService{
		offerRepo:    offerRepo,
		categoryRepo: categoryRepo,
	}
}

// ListCategories returns all product categories, name ascending.
func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// ListSupplierOffers returns the supplier's own offers, newest first.
func (s *catalogService) ListSupplierOffers(ctx context.Context, supplierID uuid.UUID) ([]*domain.OfferListing, error) {
	offers, err := s.offerRepo.ListBySupplier(ctx, supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to list supplier offers: %w", err)
	}
	return offers, nil
}

// CreateOffer inserts a new offer owned by the calling supplier. The
// supplier id is forced to the caller regardless of any client value.
func (s *catalogService) CreateOffer(ctx context.Context, supplierID uuid.UUID, input CreateOfferInput) (*domain.Offer, error) {
	if _, err := s.categoryRepo.FindByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrUnknownCategory
		}
		return nil, fmt.Errorf("failed to resolve category: %w", err)
	}

	offer := &domain.Offer{
		ID:          uuid.New(),
		SupplierID:  supplierID,
		CategoryID:  input.CategoryID,
		Code:        input.Code,
		Name:        input.Name,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		Price:       input.Price,
		Width:       input.Width,
		Height:      input.Height,
		Depth:       input.Depth,
		CreatedAt:   time.Now(),
	}

	if err := s.offerRepo.Create(ctx, offer); err != nil {
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}

	return offer, nil
}

// DeleteOffer removes an offer owned by the caller. "Does not exist" and
// "owned by someone else" are intentionally indistinguishable.
func (s *catalogService) DeleteOffer(ctx context.Context, supplierID, offerID uuid.UUID) error {
	if err := s.offerRepo.DeleteOwned(ctx, offerID, supplierID); err != nil {
		if errors.Is(err, repository.ErrOfferNotFound) {
			return repository.ErrOfferNotFound
		}
		return fmt.Errorf("failed to delete offer: %w", err)
	}
	return nil
}

// ListImporterOffers returns the offers visible to the importer through
// approved collaborations, newest first.
func (s *catalogService) ListImporterOffers(ctx context.Context, importerID uuid.UUID) ([]*domain.VisibleOffer, error) {
	offers, err := s.offerRepo.ListVisibleToImporter(ctx, importerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list importer offers: %w", err)
	}
	return offers, nil
}
