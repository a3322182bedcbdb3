package repository

import (
    "context"
    "database/sql"

    "github.com/goviettour/booking-backend/internal/model"
)

// TourRepo reads the tour fields the booking core needs.  Tour content is
// managed by the CMS side of the application; this repository only serves
// the price snapshot taken at checkout.
type TourRepo struct {
    db *sql.DB
}

// NewTourRepo returns a new TourRepo bound to the given database.
func NewTourRepo(db *sql.DB) *TourRepo { return &TourRepo{db: db} }

// GetByID returns the tour with the given ID, or ErrTourNotFound.
func (r *TourRepo) GetByID(ctx context.Context, id uint64) (*model.Tour, error) {
    const q = `SELECT id, name, destination, price_adult, price_child, created_at
               FROM tours WHERE id = ?`
    var t model.Tour
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &t.ID, &t.Name, &t.Destination, &t.PriceAdult, &t.PriceChild, &t.CreatedAt,
    )
    if err == sql.ErrNoRows {
        return nil, ErrTourNotFound
    }
    if err != nil {
        return nil, err
    }
    return &t, nil
}
