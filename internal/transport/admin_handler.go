package transport

import (
	"errors"
	"net/http"

	"tradelink/internal/middleware"
	"tradelink/internal/repository"
	"tradelink/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UpdateUserRequest carries a partial profile update. Omitted fields stay
// unchanged; empty strings clear the optional fields.
type UpdateUserRequest struct {
	Email       *string `json:"email" validate:"omitempty,email"`
	CompanyName *string `json:"companyName"`
	Country     *string `json:"country"`
	Address     *string `json:"address"`
}

// CreateCollaborationRequest represents the collaboration creation payload
type CreateCollaborationRequest struct {
	ImporterID string `json:"importerId" validate:"required,uuid"`
	SupplierID string `json:"supplierId" validate:"required,uuid"`
}

// AdminHandler handles HTTP requests for administrative operations
type AdminHandler struct {
	adminService service.AdminService
	logger       *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(adminService service.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		logger:       logger,
	}
}

// RegisterRoutes registers all admin routes behind the auth middleware
// and the ADMIN role guard.
func (h *AdminHandler) RegisterRoutes(r chi.Router, authMiddleware, requireAdmin func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(requireAdmin)

		r.Get("/users", h.ListUsers)
		r.Put("/users/{id}", h.UpdateUser)
		r.Get("/collaborations", h.ListCollaborations)
		r.Post("/collaborations", h.CreateCollaboration)
	})
}

// ListUsers returns all importer and supplier accounts
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("Failed to list users", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	profiles := make([]UserProfile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, toProfile(user))
	}

	middleware.RespondWithJSON(w, http.StatusOK, profiles)
}

// UpdateUser applies a partial update to an importer or supplier account
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req UpdateUserRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("User update validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.adminService.UpdateUser(r.Context(), id, repository.UserProfileUpdate{
		Email:       req.Email,
		CompanyName: req.CompanyName,
		Country:     req.Country,
		Address:     req.Address,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNoFieldsToUpdate):
			middleware.RespondWithError(w, http.StatusBadRequest, "no fields to update")
		case errors.Is(err, repository.ErrUserNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, repository.ErrUserAlreadyExists):
			middleware.RespondWithError(w, http.StatusConflict, "email is already taken")
		default:
			h.logger.Error("Failed to update user", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update user")
		}
		return
	}

	h.logger.Info("User updated", zap.String("user_id", user.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, toProfile(user))
}

// ListCollaborations returns every collaboration with party details
func (h *AdminHandler) ListCollaborations(w http.ResponseWriter, r *http.Request) {
	listings, err := h.adminService.ListCollaborations(r.Context())
	if err != nil {
		h.logger.Error("Failed to list collaborations", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list collaborations")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, listings)
}

// CreateCollaboration approves an (importer, supplier) pairing
func (h *AdminHandler) CreateCollaboration(w http.ResponseWriter, r *http.Request) {
	var req CreateCollaborationRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Collaboration validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	importerID, _ := uuid.Parse(req.ImporterID)
	supplierID, _ := uuid.Parse(req.SupplierID)

	collaboration, err := h.adminService.CreateCollaboration(r.Context(), importerID, supplierID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSameParty),
			errors.Is(err, service.ErrImporterNotFound),
			errors.Is(err, service.ErrSupplierNotFound),
			errors.Is(err, service.ErrNotAnImporter),
			errors.Is(err, service.ErrNotASupplier):
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrDuplicateCollaboration):
			middleware.RespondWithError(w, http.StatusConflict, "collaboration already exists for this pair")
		default:
			h.logger.Error("Failed to create collaboration", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create collaboration")
		}
		return
	}

	h.logger.Info("Collaboration created",
		zap.String("collaboration_id", collaboration.ID.String()),
		zap.String("importer_id", importerID.String()),
		zap.String("supplier_id", supplierID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, collaboration)
}
