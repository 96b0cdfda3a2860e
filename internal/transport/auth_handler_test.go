package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tradelink/internal/domain"
	"tradelink/internal/repository"
	"tradelink/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type mockAuthService struct {
	users  map[string]*domain.User
	tokens map[string]*service.Claims
}

func newMockAuthService() *mockAuthService {
	return &mockAuthService{
		users:  make(map[string]*domain.User),
		tokens: make(map[string]*service.Claims),
	}
}

func (m *mockAuthService) issueToken(user *domain.User) string {
	token := "token-" + uuid.NewString()
	m.tokens[token] = &service.Claims{Email: user.Email, Role: user.Role}
	m.tokens[token].Subject = user.ID.String()
	return token
}

func (m *mockAuthService) Register(ctx context.Context, input service.RegisterInput) (*domain.User, string, error) {
	if input.Role != domain.RoleImporter && input.Role != domain.RoleSupplier {
		return nil, "", service.ErrRoleNotAllowed
	}
	if _, exists := m.users[input.Email]; exists {
		return nil, "", repository.ErrUserAlreadyExists
	}

	user := &domain.User{
		ID:          uuid.New(),
		Email:       input.Email,
		Role:        input.Role,
		CompanyName: &input.CompanyName,
		Country:     &input.Country,
		Address:     &input.Address,
		CreatedAt:   time.Now(),
	}
	m.users[input.Email] = user
	return user, m.issueToken(user), nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, exists := m.users[email]
	if !exists || password != "password123" {
		return nil, "", service.ErrInvalidCredentials
	}
	return user, m.issueToken(user), nil
}

func (m *mockAuthService) VerifyToken(tokenString string) (*service.Claims, error) {
	claims, exists := m.tokens[tokenString]
	if !exists {
		return nil, service.ErrInvalidToken
	}
	return claims, nil
}

func (m *mockAuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == userID {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func newAuthTestRouter(authService service.AuthService) chi.Router {
	handler := NewAuthHandler(authService, CookieSettings{
		Name:   "auth",
		Secure: false,
		MaxAge: time.Hour,
	}, zap.NewNop())

	r := chi.NewRouter()
	handler.RegisterRoutes(r, nil)
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}

	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "auth" {
			return cookie
		}
	}
	return nil
}

func validRegisterBody(email string) map[string]string {
	return map[string]string{
		"email":       email,
		"password":    "password123",
		"role":        "SUPPLIER",
		"companyName": "Acme",
		"country":     "Serbia",
		"address":     "Main Street 1",
	}
}

func TestRegister_SetsSessionCookie(t *testing.T) {
	router := newAuthTestRouter(newMockAuthService())

	w := postJSON(t, router, "/api/auth/register", validRegisterBody("sup@x.com"))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	cookie := sessionCookie(t, w)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("session cookie not set")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("expected SameSite=Lax, got %v", cookie.SameSite)
	}

	var profile UserProfile
	if err := json.Unmarshal(w.Body.Bytes(), &profile); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if profile.Email != "sup@x.com" || profile.Role != "SUPPLIER" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestRegister_DuplicateEmailConflict(t *testing.T) {
	router := newAuthTestRouter(newMockAuthService())

	if w := postJSON(t, router, "/api/auth/register", validRegisterBody("dup@x.com")); w.Code != http.StatusCreated {
		t.Fatalf("first registration failed: %d", w.Code)
	}

	w := postJSON(t, router, "/api/auth/register", validRegisterBody("dup@x.com"))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestRegister_ValidationFailures(t *testing.T) {
	router := newAuthTestRouter(newMockAuthService())

	tests := []struct {
		name string
		body map[string]string
	}{
		{"short password", map[string]string{
			"email": "a@b.com", "password": "short", "role": "SUPPLIER",
			"companyName": "Acme", "country": "RS", "address": "X",
		}},
		{"admin role", map[string]string{
			"email": "a@b.com", "password": "password123", "role": "ADMIN",
			"companyName": "Acme", "country": "RS", "address": "X",
		}},
		{"missing company", map[string]string{
			"email": "a@b.com", "password": "password123", "role": "IMPORTER",
		}},
		{"bad email", map[string]string{
			"email": "not-an-email", "password": "password123", "role": "IMPORTER",
			"companyName": "Acme", "country": "RS", "address": "X",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, router, "/api/auth/register", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	authService := newMockAuthService()
	router := newAuthTestRouter(authService)

	postJSON(t, router, "/api/auth/register", validRegisterBody("known@x.com"))

	w := postJSON(t, router, "/api/auth/login", map[string]string{
		"email":    "known@x.com",
		"password": "wrong-password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if cookie := sessionCookie(t, w); cookie != nil {
		t.Error("no session cookie may be issued on a failed login")
	}
}

func TestLogin_Succeeds(t *testing.T) {
	router := newAuthTestRouter(newMockAuthService())

	postJSON(t, router, "/api/auth/register", validRegisterBody("known@x.com"))

	w := postJSON(t, router, "/api/auth/login", map[string]string{
		"email":    "known@x.com",
		"password": "password123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if cookie := sessionCookie(t, w); cookie == nil || cookie.Value == "" {
		t.Fatal("session cookie not set on login")
	}
}

func TestMe_WithoutCookieReturnsNullUser(t *testing.T) {
	router := newAuthTestRouter(newMockAuthService())

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var response MeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.User != nil {
		t.Fatalf("expected null user, got %+v", response.User)
	}
}

func TestMe_InvalidTokenRejected(t *testing.T) {
	router := newAuthTestRouter(newMockAuthService())

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "auth", Value: "garbage"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	var response MeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.User != nil {
		t.Fatal("invalid token must not resolve to a user")
	}
}

func TestMe_ReturnsCallerProfile(t *testing.T) {
	router := newAuthTestRouter(newMockAuthService())

	registered := postJSON(t, router, "/api/auth/register", validRegisterBody("me@x.com"))
	cookie := sessionCookie(t, registered)
	if cookie == nil {
		t.Fatal("registration did not set a cookie")
	}

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var response MeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.User == nil || response.User.Email != "me@x.com" {
		t.Fatalf("unexpected profile: %+v", response.User)
	}
}

func TestMe_StaleSubjectReturnsNullUser(t *testing.T) {
	authService := newMockAuthService()
	router := newAuthTestRouter(authService)

	// A verified token whose subject no longer resolves to a user.
	ghost := &domain.User{ID: uuid.New(), Email: "gone@x.com", Role: domain.RoleImporter}
	token := authService.issueToken(ghost)

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "auth", Value: token})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var response MeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.User != nil {
		t.Fatalf("expected null user for stale subject, got %+v", response.User)
	}
}

func TestLogout_ClearsSessionCookie(t *testing.T) {
	router := newAuthTestRouter(newMockAuthService())

	req := httptest.NewRequest("POST", "/api/auth/logout", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	cookie := sessionCookie(t, w)
	if cookie == nil {
		t.Fatal("logout must rewrite the session cookie")
	}
	if cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Fatalf("cookie not cleared: value=%q maxAge=%d", cookie.Value, cookie.MaxAge)
	}
}
