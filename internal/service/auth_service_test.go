package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"tradelink/internal/domain"
	"tradelink/internal/repository"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"golang.org/x/crypto/bcrypt"
)

// Mock repositories for testing
type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error) {
	found := []*domain.User{}
	for _, id := range ids {
		for _, user := range m.users {
			if user.ID == id {
				found = append(found, user)
			}
		}
	}
	return found, nil
}

func (m *mockUserRepository) ListByRoles(ctx context.Context, roles []domain.Role) ([]*domain.User, error) {
	matched := []*domain.User{}
	for _, user := range m.users {
		for _, role := range roles {
			if user.Role == role {
				matched = append(matched, user)
			}
		}
	}
	return matched, nil
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, update repository.UserProfileUpdate) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID != id || (user.Role != domain.RoleImporter && user.Role != domain.RoleSupplier) {
			continue
		}
		if update.Email != nil {
			user.Email = *update.Email
		}
		if update.CompanyName != nil {
			user.CompanyName = update.CompanyName
		}
		if update.Country != nil {
			user.Country = update.Country
		}
		if update.Address != nil {
			user.Address = update.Address
		}
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func registerInput(email, password, role string) RegisterInput {
	return RegisterInput{
		Email:       email,
		Password:    password,
		Role:        domain.Role(role),
		CompanyName: "Acme",
		Country:     "Serbia",
		Address:     "Main Street 1",
	}
}

func TestProperty_RegistrationCreatesHashedPasswords(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("passwords are hashed with bcrypt and not stored as plaintext", prop.ForAll(
		func(email string, password string, role string) bool {
			userRepo := newMockUserRepository()
			service := NewAuthService(userRepo, "test-secret", time.Hour)
			ctx := context.Background()

			user, _, err := service.Register(ctx, registerInput(email, password, role))
			if err != nil {
				return true // Skip degenerate inputs
			}

			if user.PasswordHash == password {
				t.Logf("FAIL: Password stored as plaintext for email %s", email)
				return false
			}

			if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
				t.Logf("FAIL: Password hash does not verify: %v", err)
				return false
			}

			stored, err := userRepo.FindByEmail(ctx, email)
			if err != nil {
				t.Logf("FAIL: Could not find stored user: %v", err)
				return false
			}
			if stored.PasswordHash == password {
				t.Logf("FAIL: Stored password is plaintext")
				return false
			}

			return true
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.OneConstOf("IMPORTER", "SUPPLIER"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_SessionTokenRoundTripsIdentity(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("tokens verify and carry subject, email and role", prop.ForAll(
		func(email string, password string, role string) bool {
			userRepo := newMockUserRepository()
			service := NewAuthService(userRepo, "test-secret-key", time.Hour)
			ctx := context.Background()

			user, token, err := service.Register(ctx, registerInput(email, password, role))
			if err != nil {
				return true // Skip degenerate inputs
			}

			claims, err := service.VerifyToken(token)
			if err != nil {
				t.Logf("FAIL: Token verification failed: %v", err)
				return false
			}

			userID, err := claims.UserID()
			if err != nil || userID != user.ID {
				t.Logf("FAIL: Subject mismatch. Expected %s, got %s", user.ID, claims.Subject)
				return false
			}
			if claims.Email != email {
				t.Logf("FAIL: Email claim mismatch: %s", claims.Email)
				return false
			}
			if claims.Role != domain.Role(role) {
				t.Logf("FAIL: Role claim mismatch: %s", claims.Role)
				return false
			}
			if claims.ExpiresAt == nil || claims.IssuedAt == nil {
				t.Logf("FAIL: Missing registered claims")
				return false
			}

			// Login issues an equivalent token.
			_, loginToken, err := service.Login(ctx, email, password)
			if err != nil {
				t.Logf("FAIL: Login failed: %v", err)
				return false
			}
			if _, err := service.VerifyToken(loginToken); err != nil {
				t.Logf("FAIL: Login token verification failed: %v", err)
				return false
			}

			return true
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.OneConstOf("IMPORTER", "SUPPLIER"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRegister_AdminRoleRejected(t *testing.T) {
	service := NewAuthService(newMockUserRepository(), "test-secret", time.Hour)

	_, _, err := service.Register(context.Background(), registerInput("boss@x.com", "password123", "ADMIN"))
	if !errors.Is(err, ErrRoleNotAllowed) {
		t.Fatalf("expected ErrRoleNotAllowed, got %v", err)
	}
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	userRepo := newMockUserRepository()
	service := NewAuthService(userRepo, "test-secret", time.Hour)
	ctx := context.Background()

	if _, _, err := service.Register(ctx, registerInput("dup@x.com", "password123", "IMPORTER")); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	_, _, err := service.Register(ctx, registerInput("dup@x.com", "otherpassword", "SUPPLIER"))
	if !errors.Is(err, repository.ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}

	if len(userRepo.users) != 1 {
		t.Fatalf("expected 1 stored user, got %d", len(userRepo.users))
	}
}

func TestLogin_InvalidCredentialsIndistinguishable(t *testing.T) {
	userRepo := newMockUserRepository()
	service := NewAuthService(userRepo, "test-secret", time.Hour)
	ctx := context.Background()

	if _, _, err := service.Register(ctx, registerInput("known@x.com", "password123", "SUPPLIER")); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	_, _, wrongPassword := service.Login(ctx, "known@x.com", "wrong-password")
	_, _, unknownEmail := service.Login(ctx, "unknown@x.com", "password123")

	if !errors.Is(wrongPassword, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", wrongPassword)
	}
	if !errors.Is(unknownEmail, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", unknownEmail)
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Errorf("credential failures must be indistinguishable: %q vs %q", wrongPassword, unknownEmail)
	}
}

func TestVerifyToken_RejectsTamperedToken(t *testing.T) {
	service := NewAuthService(newMockUserRepository(), "secret-a", time.Hour)
	other := NewAuthService(newMockUserRepository(), "secret-b", time.Hour)

	_, token, err := service.Register(context.Background(), registerInput("sig@x.com", "password123", "IMPORTER"))
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	if _, err := other.VerifyToken(token); err == nil {
		t.Fatal("token signed with a different secret must not verify")
	}
}
