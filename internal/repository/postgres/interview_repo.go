package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-talentbridge-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type interviewRepo struct {
	db *pgxpool.Pool
}

// NewInterviewRepository creates a new interview repository
func NewInterviewRepository(db *pgxpool.Pool) domain.InterviewRepository {
	return &interviewRepo{db: db}
}

const interviewColumns = `
	id, company_id, candidate_id, created_by, application_id,
	title, scheduled_date, type, comments,
	status, admin_status, feedback_status,
	company_feedback, candidate_feedback,
	version, created_at, updated_at`

// Create inserts a new interview at version 1.
func (r *interviewRepo) Create(ctx context.Context, iv *domain.Interview) error {
	query := `
		INSERT INTO interviews (
			company_id, candidate_id, created_by, application_id,
			title, scheduled_date, type, comments,
			status, admin_status, feedback_status,
			version, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1, $12, $12)
		RETURNING id`

	now := time.Now()
	iv.CreatedAt = now
	iv.UpdatedAt = now
	iv.Version = 1

	return r.db.QueryRow(ctx, query,
		iv.CompanyID,
		iv.CandidateID,
		iv.CreatedBy,
		iv.ApplicationID,
		iv.Title,
		iv.ScheduledDate,
		iv.Type,
		iv.Comments,
		iv.Status,
		iv.AdminStatus,
		iv.FeedbackStatus,
		now,
	).Scan(&iv.ID)
}

// GetByID retrieves an interview by ID.
func (r *interviewRepo) GetByID(ctx context.Context, id int64) (*domain.Interview, error) {
	query := `SELECT` + interviewColumns + ` FROM interviews WHERE id = $1`

	iv, err := scanInterview(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return iv, nil
}

// Find returns the matching page ordered by creation time descending plus
// the total matching count. Filters combine with AND semantics.
func (r *interviewRepo) Find(ctx context.Context, filter domain.InterviewFilter) ([]domain.Interview, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}

	addFilter := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		where += fmt.Sprintf(" AND %s = $%d", column, len(args))
	}
	addFilter("candidate_id", filter.CandidateID)
	addFilter("company_id", filter.CompanyID)
	addFilter("status", string(filter.Status))
	addFilter("admin_status", string(filter.AdminStatus))
	addFilter("feedback_status", string(filter.FeedbackStatus))

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM interviews "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(
		"SELECT%s FROM interviews %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		interviewColumns, where, len(args)-1, len(args),
	)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var interviews []domain.Interview
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, 0, err
		}
		interviews = append(interviews, *iv)
	}
	return interviews, total, nil
}

// CompareAndSwap writes the mutable fields only when the stored version
// still matches, bumping the version so a concurrent writer loses the race.
func (r *interviewRepo) CompareAndSwap(ctx context.Context, iv *domain.Interview) error {
	companyFB, err := marshalFeedback(iv.CompanyFeedback)
	if err != nil {
		return err
	}
	candidateFB, err := marshalFeedback(iv.CandidateFeedback)
	if err != nil {
		return err
	}

	query := `
		UPDATE interviews
		SET status = $2, admin_status = $3, feedback_status = $4,
		    comments = $5, company_feedback = $6, candidate_feedback = $7,
		    version = version + 1, updated_at = $8
		WHERE id = $1 AND version = $9`

	now := time.Now()
	result, err := r.db.Exec(ctx, query,
		iv.ID,
		iv.Status,
		iv.AdminStatus,
		iv.FeedbackStatus,
		iv.Comments,
		companyFB,
		candidateFB,
		now,
		iv.Version,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrVersionConflict
	}
	iv.Version++
	iv.UpdatedAt = now
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInterview(row rowScanner) (*domain.Interview, error) {
	var (
		iv          domain.Interview
		companyFB   []byte
		candidateFB []byte
	)
	if err := row.Scan(
		&iv.ID, &iv.CompanyID, &iv.CandidateID, &iv.CreatedBy, &iv.ApplicationID,
		&iv.Title, &iv.ScheduledDate, &iv.Type, &iv.Comments,
		&iv.Status, &iv.AdminStatus, &iv.FeedbackStatus,
		&companyFB, &candidateFB,
		&iv.Version, &iv.CreatedAt, &iv.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if companyFB != nil {
		iv.CompanyFeedback = &domain.CompanyFeedback{}
		if err := json.Unmarshal(companyFB, iv.CompanyFeedback); err != nil {
			return nil, err
		}
	}
	if candidateFB != nil {
		iv.CandidateFeedback = &domain.CandidateFeedback{}
		if err := json.Unmarshal(candidateFB, iv.CandidateFeedback); err != nil {
			return nil, err
		}
	}
	return &iv, nil
}

// marshalFeedback keeps NULL columns for absent feedback instead of JSON
// null literals.
func marshalFeedback(v interface{}) ([]byte, error) {
	switch fb := v.(type) {
	case *domain.CompanyFeedback:
		if fb == nil {
			return nil, nil
		}
	case *domain.CandidateFeedback:
		if fb == nil {
			return nil, nil
		}
	}
	return json.Marshal(v)
}
