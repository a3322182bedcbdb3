package repository

import (
    "context"
    "database/sql"

    "github.com/goviettour/booking-backend/internal/model"
)

// AdminRepo looks up staff accounts for console authentication.
type AdminRepo struct {
    db *sql.DB
}

// NewAdminRepo returns a new AdminRepo bound to the given database.
func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{db: db} }

// GetByEmail returns the active staff account with the given email, or
// ErrAdminNotFound.  Deactivated accounts are treated as missing so that
// login fails the same way for unknown and disabled users.
func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (*model.AdminUser, error) {
    const q = `SELECT id, email, password_hash, role, is_active, created_at
               FROM admin_users WHERE email = ? AND is_active = 1`
    var a model.AdminUser
    err := r.db.QueryRowContext(ctx, q, email).Scan(
        &a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.IsActive, &a.CreatedAt,
    )
    if err == sql.ErrNoRows {
        return nil, ErrAdminNotFound
    }
    if err != nil {
        return nil, err
    }
    return &a, nil
}

// Create inserts a new staff account.  Used by the provisioning CLI;
// there is no self-service registration endpoint.
func (r *AdminRepo) Create(ctx context.Context, a *model.AdminUser) error {
    const q = `INSERT INTO admin_users (email, password_hash, role, is_active)
               VALUES (?, ?, ?, 1)`
    result, err := r.db.ExecContext(ctx, q, a.Email, a.PasswordHash, a.Role)
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    a.ID = uint64(id)
    return nil
}
