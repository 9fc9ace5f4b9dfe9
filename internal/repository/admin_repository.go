package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"examportal/internal/model"
)

// AdminRepository handles administrator account data access.
type AdminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository creates a new AdminRepository.
func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

// GetByUsername retrieves an admin by username.
func (r *AdminRepository) GetByUsername(ctx context.Context, username string) (*model.Admin, error) {
	a := &model.Admin{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, name, password_hash, must_change_password, created_at, updated_at
		 FROM admins WHERE username = $1`, username,
	).Scan(&a.ID, &a.Username, &a.Name, &a.PasswordHash, &a.MustChangePassword, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID retrieves an admin by ID.
func (r *AdminRepository) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	a := &model.Admin{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, name, password_hash, must_change_password, created_at, updated_at
		 FROM admins WHERE id = $1`, id,
	).Scan(&a.ID, &a.Username, &a.Name, &a.PasswordHash, &a.MustChangePassword, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a new admin account.
func (r *AdminRepository) Create(ctx context.Context, a *model.Admin) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO admins (username, name, password_hash, must_change_password)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		a.Username, a.Name, a.PasswordHash, a.MustChangePassword,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// UpdatePassword replaces the password hash and sets the forced-change flag.
// Reset flows pass mustChange=true so the next login requires a new password.
func (r *AdminRepository) UpdatePassword(ctx context.Context, id int, passwordHash string, mustChange bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE admins SET password_hash = $1, must_change_password = $2, updated_at = NOW()
		 WHERE id = $3`,
		passwordHash, mustChange, id)
	return err
}

// UpdatePasswordByUsername is UpdatePassword keyed by username, used by the
// reset CLI where only the username is known.
func (r *AdminRepository) UpdatePasswordByUsername(ctx context.Context, username, passwordHash string, mustChange bool) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE admins SET password_hash = $1, must_change_password = $2, updated_at = NOW()
		 WHERE username = $3`,
		passwordHash, mustChange, username)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
