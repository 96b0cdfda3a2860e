package transport

import (
	"errors"
	"net/http"
	"time"

	"tradelink/internal/domain"
	"tradelink/internal/middleware"
	"tradelink/internal/repository"
	"tradelink/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	Role        string `json:"role" validate:"required,oneof=IMPORTER SUPPLIER"`
	CompanyName string `json:"companyName" validate:"required"`
	Country     string `json:"country" validate:"required"`
	Address     string `json:"address" validate:"required"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserProfile represents user profile data
type UserProfile struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Role        string  `json:"role"`
	CompanyName *string `json:"companyName"`
	Country     *string `json:"country"`
	Address     *string `json:"address"`
	CreatedAt   string  `json:"createdAt"`
}

func toProfile(user *domain.User) UserProfile {
	return UserProfile{
		ID:          user.ID.String(),
		Email:       user.Email,
		Role:        user.Role.String(),
		CompanyName: user.CompanyName,
		Country:     user.Country,
		Address:     user.Address,
		CreatedAt:   user.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// CookieSettings controls how the session cookie is issued.
type CookieSettings struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// AuthHandler handles HTTP requests for authentication
type AuthHandler struct {
	authService service.AuthService
	cookie      CookieSettings
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService, cookie CookieSettings, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
		logger:      logger,
	}
}

// RegisterRoutes registers all auth routes. The rate limiter guards the
// credential endpoints against brute force.
func (h *AuthHandler) RegisterRoutes(r chi.Router, rateLimit func(http.Handler) http.Handler) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if rateLimit != nil {
				r.Use(rateLimit)
			}
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
		})

		// /me tolerates missing tokens (returns a null user), so it does
		// not sit behind the auth middleware.
		r.Get("/me", h.Me)
		r.Post("/logout", h.Logout)
	})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Register handles account registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Registration validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, _ := domain.ParseRole(req.Role)

	user, token, err := h.authService.Register(r.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		Role:        role,
		CompanyName: req.CompanyName,
		Country:     req.Country,
		Address:     req.Address,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "user with this email already exists")
			return
		}
		if errors.Is(err, service.ErrRoleNotAllowed) {
			middleware.RespondWithError(w, http.StatusBadRequest, "role must be IMPORTER or SUPPLIER")
			return
		}

		h.logger.Error("Registration failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	h.setSessionCookie(w, token)

	h.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, toProfile(user))
}

// Login handles user authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}

		h.logger.Error("Login failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	h.setSessionCookie(w, token)

	h.logger.Info("User logged in", zap.String("user_id", user.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, toProfile(user))
}

// MeResponse wraps the current caller's profile, null when anonymous.
type MeResponse struct {
	User *UserProfile `json:"user"`
}

// Me returns the caller's profile. Absent token yields a null user, an
// invalid token yields 401 with a null user, and a verified token whose
// subject no longer resolves also yields a null user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(h.cookie.Name)
	if err != nil || cookie.Value == "" {
		middleware.RespondWithJSON(w, http.StatusOK, MeResponse{User: nil})
		return
	}

	claims, err := h.authService.VerifyToken(cookie.Value)
	if err != nil {
		middleware.RespondWithJSON(w, http.StatusUnauthorized, MeResponse{User: nil})
		return
	}

	userID, err := claims.UserID()
	if err != nil {
		middleware.RespondWithJSON(w, http.StatusUnauthorized, MeResponse{User: nil})
		return
	}

	user, err := h.authService.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			middleware.RespondWithJSON(w, http.StatusOK, MeResponse{User: nil})
			return
		}

		h.logger.Error("Failed to load profile", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	profile := toProfile(user)
	middleware.RespondWithJSON(w, http.StatusOK, MeResponse{User: &profile})
}

// Logout clears the session cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
