package postgres

import (
	"context"

	"go-talentbridge-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type applicationRepo struct {
	db *pgxpool.Pool
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *pgxpool.Pool) domain.ApplicationRepository {
	return &applicationRepo{db: db}
}

// GetByID retrieves the application fields needed for interview creation
// ownership checks.
func (r *applicationRepo) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	query := `SELECT id, company_id, candidate_id, status, created_at FROM applications WHERE id = $1`

	var app domain.Application
	err := r.db.QueryRow(ctx, query, id).Scan(
		&app.ID, &app.CompanyID, &app.CandidateID, &app.Status, &app.CreatedAt,
	)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return &app, nil
}
