package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Role grants access to the administration endpoints.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

var (
	ErrNotFound           = errors.New("admin not found")
	ErrAlreadyExists      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid admin input")
)

// ParseRole validates a raw role value.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleSuperadmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
}

// Admin is an administrator account. The password hash never leaves the
// repository.
type Admin struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Repository handles persistence of administrator accounts.
type Repository struct {
	db   *sql.DB
	cost int
}

// NewRepository creates a new admin repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d, cost: bcrypt.DefaultCost}
}

// Create stores a new account with a bcrypt-hashed password.
func (r *Repository) Create(ctx context.Context, username, password string, role Role) (*Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), r.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO admins (username, password, role) VALUES (?, ?, ?)`,
		username, string(hash), string(role),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to insert admin: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read admin id: %w", err)
	}
	return &Admin{ID: id, Username: username, Role: role}, nil
}

// Get retrieves an account by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Admin, error) {
	var a Admin
	err := r.db.QueryRowContext(ctx, `SELECT id, username, role FROM admins WHERE id = ?`, id).
		Scan(&a.ID, &a.Username, &a.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get admin %d: %w", id, err)
	}
	return &a, nil
}

// List returns every account ordered by username.
func (r *Repository) List(ctx context.Context) ([]Admin, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, username, role FROM admins ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	defer rows.Close()

	admins := []Admin{}
	for rows.Next() {
		var a Admin
		if err := rows.Scan(&a.ID, &a.Username, &a.Role); err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

// Update changes username and role; the password is re-hashed only when a
// new one is provided.
func (r *Repository) Update(ctx context.Context, id int64, username, password string, role Role) (*Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}

	var (
		res sql.Result
		err error
	)
	if password != "" {
		hash, herr := bcrypt.GenerateFromPassword([]byte(password), r.cost)
		if herr != nil {
			return nil, fmt.Errorf("failed to hash password: %w", herr)
		}
		res, err = r.db.ExecContext(ctx,
			`UPDATE admins SET username = ?, password = ?, role = ? WHERE id = ?`,
			username, string(hash), string(role), id,
		)
	} else {
		res, err = r.db.ExecContext(ctx,
			`UPDATE admins SET username = ?, role = ? WHERE id = ?`,
			username, string(role), id,
		)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to update admin %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return &Admin{ID: id, Username: username, Role: role}, nil
}

// Delete removes an account.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM admins WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete admin %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Authenticate checks a username/password pair against the stored hash.
func (r *Repository) Authenticate(ctx context.Context, username, password string) (*Admin, error) {
	var (
		a    Admin
		hash string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password, role FROM admins WHERE username = ?`, username,
	).Scan(&a.ID, &a.Username, &hash, &a.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &a, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
