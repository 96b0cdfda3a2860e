package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tradelink/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this email already exists")
	ErrNoFieldsToUpdate  = errors.New("no fields to update")
)

// UserProfileUpdate carries a partial profile update. Nil means the field
// is left unchanged; an empty string clears an optional field.
type UserProfileUpdate struct {
	Email       *string
	CompanyName *string
	Country     *string
	Address     *string
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error)
	ListByRoles(ctx context.Context, roles []domain.Role) ([]*domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update UserProfileUpdate) (*domain.User, error)
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = "id, email, pass_hash, role, company_name, country, address, created_at"

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CompanyName,
		&user.Country,
		&user.Address,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create inserts a new user using parameterized queries
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, pass_hash, role, company_name, country, address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.CompanyName,
		user.Country,
		user.Address,
		user.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// FindByEmail retrieves a user by email
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	return user, nil
}

// FindByID retrieves a user by ID
func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// FindByIDs retrieves all users matching the given ids in one query.
func (r *userRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error) {
	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1::uuid[])`

	rows, err := r.db.QueryContext(ctx, query, idStrings)
	if err != nil {
		return nil, fmt.Errorf("failed to find users by ids: %w", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// ListByRoles retrieves users holding any of the given roles, oldest first.
func (r *userRepository) ListByRoles(ctx context.Context, roles []domain.Role) ([]*domain.User, error) {
	roleStrings := make([]string, len(roles))
	for i, role := range roles {
		roleStrings[i] = role.String()
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE role = ANY($1::user_role[]) ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, roleStrings)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// UpdateProfile applies a partial update to an importer or supplier
// account and returns the updated row. Role and password are never
// touched here. Returns ErrUserNotFound when the id does not resolve to
// an IMPORTER or SUPPLIER user.
func (r *userRepository) UpdateProfile(ctx context.Context, id uuid.UUID, update UserProfileUpdate) (*domain.User, error) {
	setClauses := []string{}
	args := []any{id}
	argIndex := 2

	addSet := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if update.Email != nil {
		addSet("email", *update.Email)
	}
	// Empty strings clear the optional profile fields.
	if update.CompanyName != nil {
		addSet("company_name", nullable(*update.CompanyName))
	}
	if update.Country != nil {
		addSet("country", nullable(*update.Country))
	}
	if update.Address != nil {
		addSet("address", nullable(*update.Address))
	}

	if len(setClauses) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	query := fmt.Sprintf(`
		UPDATE users
		SET %s
		WHERE id = $1 AND role IN ('IMPORTER', 'SUPPLIER')
		RETURNING %s
	`, strings.Join(setClauses, ", "), userColumns)

	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		if isUniqueViolation(err, "users_email_key") {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
