package transport

import (
	"errors"
	"net/http"

	"tradelink/internal/domain"
	"tradelink/internal/middleware"
	"tradelink/internal/repository"
	"tradelink/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateOfferRequest represents the offer creation payload. The price is
// a decimal string, matching the numeric(12,2) column.
type CreateOfferRequest struct {
	CategoryID  string  `json:"categoryId" validate:"required,uuid"`
	Code        string  `json:"code" validate:"required,max=64"`
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description"`
	ImageURL    string  `json:"imageUrl" validate:"required"`
	Price       string  `json:"price" validate:"required"`
	Width       float64 `json:"width" validate:"required,gt=0"`
	Height      float64 `json:"height" validate:"required,gt=0"`
	Depth       float64 `json:"depth" validate:"required,gt=0"`
}

// CatalogHandler handles HTTP requests for categories and offers
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers category and offer routes. Area guards admit
// ADMIN everywhere; offer writes additionally require the SUPPLIER role
// because offers bind to the caller's id.
func (h *CatalogHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler, logger *zap.Logger) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/api/categories", h.ListCategories)
	})

	r.Route("/api/supplier", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireArea(domain.AreaSupplier, logger))

		r.Get("/offers", h.ListSupplierOffers)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleSupplier, logger))
			r.Post("/offers", h.CreateOffer)
			r.Delete("/offers/{id}", h.DeleteOffer)
		})
	})

	r.Route("/api/importer", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireArea(domain.AreaImporter, logger))

		r.Get("/offers", h.ListImporterOffers)
	})
}

// ListCategories returns all product categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// ListSupplierOffers returns the caller's own offers
func (h *CatalogHandler) ListSupplierOffers(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	offers, err := h.catalogService.ListSupplierOffers(r.Context(), callerID)
	if err != nil {
		h.logger.Error("Failed to list supplier offers", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list offers")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, offers)
}

// CreateOffer inserts a new offer owned by the calling supplier
func (h *CatalogHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateOfferRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Offer validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		middleware.RespondWithError(w, http.StatusBadRequest, "price must be a non-negative decimal")
		return
	}

	categoryID, _ := uuid.Parse(req.CategoryID)

	offer, err := h.catalogService.CreateOffer(r.Context(), callerID, service.CreateOfferInput{
		CategoryID:  categoryID,
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Price:       price,
		Width:       req.Width,
		Height:      req.Height,
		Depth:       req.Depth,
	})
	if err != nil {
		if errors.Is(err, service.ErrUnknownCategory) {
			middleware.RespondWithError(w, http.StatusBadRequest, "category does not exist")
			return
		}

		h.logger.Error("Failed to create offer", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create offer")
		return
	}

	h.logger.Info("Offer created",
		zap.String("offer_id", offer.ID.String()),
		zap.String("supplier_id", callerID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, map[string]string{
		"id":      offer.ID.String(),
		"message": "offer created",
	})
}

// DeleteOffer removes an offer owned by the calling supplier
func (h *CatalogHandler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	offerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid offer id")
		return
	}

	if err := h.catalogService.DeleteOffer(r.Context(), callerID, offerID); err != nil {
		if errors.Is(err, repository.ErrOfferNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "offer not found")
			return
		}

		h.logger.Error("Failed to delete offer", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete offer")
		return
	}

	h.logger.Info("Offer deleted",
		zap.String("offer_id", offerID.String()),
		zap.String("supplier_id", callerID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "offer deleted"})
}

// ListImporterOffers returns the offers visible to the calling importer
func (h *CatalogHandler) ListImporterOffers(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	offers, err := h.catalogService.ListImporterOffers(r.Context(), callerID)
	if err != nil {
		h.logger.Error("Failed to list importer offers", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list offers")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, offers)
}
