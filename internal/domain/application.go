package domain

import (
	"context"
	"time"
)

// Application is the job application an interview may trace back to. Only
// the fields needed for ownership validation at interview creation are
// modeled; application CRUD itself lives outside this service.
type Application struct {
	ID          int64     `json:"id"`
	CompanyID   string    `json:"company_id"`
	CandidateID string    `json:"candidate_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type ApplicationRepository interface {
	GetByID(ctx context.Context, id int64) (*Application, error)
}
