package domain

import (
	"context"
	"time"
)

// InterviewStatus is the candidate-facing lifecycle of an interview.
//
// Valid status graph (gated by AdminStatus):
//
//	pending_response ──► accepted ──► completed
//	        │
//	        └──► rejected
//
// The status may only leave pending_response after the administrator has
// approved the interview.
type InterviewStatus string

const (
	InterviewStatusPendingResponse InterviewStatus = "pending_response"
	InterviewStatusAccepted        InterviewStatus = "accepted"
	InterviewStatusRejected        InterviewStatus = "rejected"
	InterviewStatusCompleted       InterviewStatus = "completed"
)

// AdminStatus is the administrator gate. It leaves pending exactly once;
// rejected is terminal for the whole record.
type AdminStatus string

const (
	AdminStatusPending  AdminStatus = "pending"
	AdminStatusApproved AdminStatus = "approved"
	AdminStatusRejected AdminStatus = "rejected"
)

// FeedbackStatus tracks aggregate feedback progress. It is stored for query
// efficiency but always recomputed from the feedback fields inside the same
// compare-and-swap that sets them, so the two cannot drift apart.
type FeedbackStatus string

const (
	FeedbackStatusNone               FeedbackStatus = "none"
	FeedbackStatusCompanySubmitted   FeedbackStatus = "company_submitted"
	FeedbackStatusCandidateSubmitted FeedbackStatus = "candidate_submitted"
	FeedbackStatusBothSubmitted      FeedbackStatus = "both_submitted"
	FeedbackStatusAdminReviewed      FeedbackStatus = "admin_reviewed"
)

// CompanyFeedback holds the company's post-interview scores. Write-once.
type CompanyFeedback struct {
	Technical     int    `json:"technical" validate:"required,min=1,max=5"`
	Communication int    `json:"communication" validate:"required,min=1,max=5"`
	Experience    int    `json:"experience" validate:"required,min=1,max=5"`
	Overall       int    `json:"overall" validate:"required,min=1,max=5"`
	Comments      string `json:"comments,omitempty"`
}

// CandidateFeedback holds the candidate's post-interview rating. Write-once.
type CandidateFeedback struct {
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Comments string `json:"comments,omitempty"`
}

// Interview is the multi-party approval workflow record. Rows are never
// physically deleted; terminal states are retained for audit.
type Interview struct {
	ID                int64              `json:"id"`
	CompanyID         string             `json:"company_id"`
	CandidateID       string             `json:"candidate_id"`
	CreatedBy         string             `json:"created_by"`
	ApplicationID     *int64             `json:"application_id,omitempty"`
	Title             string             `json:"title"`
	ScheduledDate     time.Time          `json:"scheduled_date"`
	Type              string             `json:"type,omitempty"`
	Comments          string             `json:"comments,omitempty"`
	Status            InterviewStatus    `json:"status"`
	AdminStatus       AdminStatus        `json:"admin_status"`
	FeedbackStatus    FeedbackStatus     `json:"feedback_status"`
	CompanyFeedback   *CompanyFeedback   `json:"company_feedback,omitempty"`
	CandidateFeedback *CandidateFeedback `json:"candidate_feedback,omitempty"`

	// Version is the optimistic-lock counter used by CompareAndSwap to
	// serialize concurrent transitions on the same record.
	Version   int       `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecomputeFeedbackStatus derives FeedbackStatus from the feedback fields.
// admin_reviewed is sticky: once the administrator has reconciled, the
// status no longer tracks the fields.
func (i *Interview) RecomputeFeedbackStatus() {
	if i.FeedbackStatus == FeedbackStatusAdminReviewed {
		return
	}
	switch {
	case i.CompanyFeedback != nil && i.CandidateFeedback != nil:
		i.FeedbackStatus = FeedbackStatusBothSubmitted
	case i.CompanyFeedback != nil:
		i.FeedbackStatus = FeedbackStatusCompanySubmitted
	case i.CandidateFeedback != nil:
		i.FeedbackStatus = FeedbackStatusCandidateSubmitted
	default:
		i.FeedbackStatus = FeedbackStatusNone
	}
}

// InterviewFilter combines list filters with AND semantics. Zero values mean
// "no filter".
type InterviewFilter struct {
	CandidateID    string
	CompanyID      string
	Status         InterviewStatus
	AdminStatus    AdminStatus
	FeedbackStatus FeedbackStatus
	Limit          int
	Offset         int
}

// InterviewRepository defines data access for interviews.
type InterviewRepository interface {
	Create(ctx context.Context, iv *Interview) error
	GetByID(ctx context.Context, id int64) (*Interview, error)
	// Find returns the matching page ordered by creation time descending,
	// plus the total matching count so callers can compute hasMore.
	Find(ctx context.Context, filter InterviewFilter) ([]Interview, int, error)
	// CompareAndSwap persists the mutable fields of iv only if the stored
	// version still equals iv.Version, bumping the version on success.
	// Returns ErrVersionConflict when another transition won the race.
	CompareAndSwap(ctx context.Context, iv *Interview) error
}

// CreateInterviewRequest is the payload for proposing an interview.
type CreateInterviewRequest struct {
	CandidateID   string    `json:"candidate_id" validate:"required"`
	ApplicationID *int64    `json:"application_id,omitempty"`
	Title         string    `json:"title" validate:"required,max=200"`
	ScheduledDate time.Time `json:"scheduled_date" validate:"required"`
	Type          string    `json:"type,omitempty" validate:"max=100"`
}

// InterviewUsecase is the workflow coordinator. Every method reads the
// acting identity from the context and enforces role and ownership before
// mutating anything.
type InterviewUsecase interface {
	Create(ctx context.Context, req CreateInterviewRequest) (*Interview, error)
	AdminDecide(ctx context.Context, id int64, action string, comments string) (*Interview, error)
	CandidateRespond(ctx context.Context, id int64, response string, comments string) (*Interview, error)
	SubmitCompanyFeedback(ctx context.Context, id int64, fb CompanyFeedback) (*Interview, error)
	SubmitCandidateFeedback(ctx context.Context, id int64, fb CandidateFeedback) (*Interview, error)
	AdminReview(ctx context.Context, id int64, comments string) (*Interview, error)
	GetByID(ctx context.Context, id int64) (*Interview, error)
	List(ctx context.Context, filter InterviewFilter) ([]Interview, int, error)
}
