package usecase

import (
	"context"
	"errors"
	"fmt"

	"go-talentbridge-backend/internal/domain"
	"go-talentbridge-backend/pkg/apperror"
	"go-talentbridge-backend/pkg/audit"

	"github.com/go-playground/validator/v10"
)

// Decision and response action enums accepted by the workflow endpoints.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"

	ResponseAccepted = "accepted"
	ResponseRejected = "rejected"
)

type interviewUsecase struct {
	interviewRepo   domain.InterviewRepository
	applicationRepo domain.ApplicationRepository
	userRepo        domain.UserRepository
	dispatcher      domain.NotificationDispatcher
	validate        *validator.Validate
	auditLog        *audit.Logger
}

// NewInterviewUsecase creates the workflow coordinator. It owns every
// interview transition; notifications are requested through the dispatcher,
// never written directly.
func NewInterviewUsecase(
	interviewRepo domain.InterviewRepository,
	applicationRepo domain.ApplicationRepository,
	userRepo domain.UserRepository,
	dispatcher domain.NotificationDispatcher,
	validate *validator.Validate,
	auditLog *audit.Logger,
) domain.InterviewUsecase {
	return &interviewUsecase{
		interviewRepo:   interviewRepo,
		applicationRepo: applicationRepo,
		userRepo:        userRepo,
		dispatcher:      dispatcher,
		validate:        validate,
		auditLog:        auditLog,
	}
}

// Create proposes a new interview. Company actors only; when the interview
// traces back to an application, that application must belong to the acting
// company.
func (uc *interviewUsecase) Create(ctx context.Context, req domain.CreateInterviewRequest) (*domain.Interview, error) {
	// 1. Resolve and authorize the actor
	actor, err := uc.requireRole(ctx, "interview.create", domain.RoleCompany)
	if err != nil {
		return nil, err
	}

	// 2. Validate payload
	if err := uc.validate.Struct(req); err != nil {
		return nil, apperror.BadRequest(err.Error())
	}

	// 3. Validate the candidate exists and is a candidate
	candidate, err := uc.userRepo.GetByID(ctx, req.CandidateID)
	if err != nil {
		return nil, apperror.NotFound("Candidate not found")
	}
	if candidate.Role != domain.RoleCandidate {
		return nil, apperror.BadRequest("Interview recipient must be a candidate")
	}

	// 4. Validate application ownership when a back-reference is supplied
	if req.ApplicationID != nil {
		app, err := uc.applicationRepo.GetByID(ctx, *req.ApplicationID)
		if err != nil {
			return nil, apperror.NotFound("Application not found")
		}
		if app.CompanyID != actor.ID {
			return nil, apperror.Forbidden("Application belongs to another company")
		}
	}

	// 5. Create the record in its initial composite state
	iv := &domain.Interview{
		CompanyID:      actor.ID,
		CandidateID:    req.CandidateID,
		CreatedBy:      actor.ID,
		ApplicationID:  req.ApplicationID,
		Title:          req.Title,
		ScheduledDate:  req.ScheduledDate,
		Type:           req.Type,
		Status:         domain.InterviewStatusPendingResponse,
		AdminStatus:    domain.AdminStatusPending,
		FeedbackStatus: domain.FeedbackStatusNone,
	}
	if err := uc.interviewRepo.Create(ctx, iv); err != nil {
		return nil, apperror.Internal(err)
	}

	// 6. Notify administrators that a new interview awaits the gate
	uc.notifyAdmins(ctx, domain.NotificationTypeInterviewCreated,
		"New interview awaiting approval",
		fmt.Sprintf("Interview %q was proposed and needs review.", iv.Title),
		iv, domain.PriorityNormal)

	uc.auditLog.Transition(iv.ID, "create", actor.ID, string(actor.Role))
	return iv, nil
}

// AdminDecide applies the administrator gate. Callable exactly once per
// interview while the gate is pending.
func (uc *interviewUsecase) AdminDecide(ctx context.Context, id int64, action string, comments string) (*domain.Interview, error) {
	actor, err := uc.requireRole(ctx, "interview.admin_decide", domain.RoleAdmin)
	if err != nil {
		return nil, err
	}

	if action != DecisionApprove && action != DecisionReject {
		return nil, apperror.BadRequest("Invalid action. Must be: approve or reject")
	}

	iv, err := uc.transition(ctx, id, func(iv *domain.Interview) error {
		if iv.AdminStatus != domain.AdminStatusPending {
			return apperror.Conflict("Interview has already been decided")
		}
		if action == DecisionApprove {
			iv.AdminStatus = domain.AdminStatusApproved
		} else {
			iv.AdminStatus = domain.AdminStatusRejected
		}
		if comments != "" {
			iv.Comments = comments
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if iv.AdminStatus == domain.AdminStatusApproved {
		uc.notify(ctx, iv.CandidateID, domain.NotificationTypeInterviewApproved,
			"Interview approved",
			fmt.Sprintf("Interview %q was approved. Please respond.", iv.Title),
			iv, domain.PriorityHigh)
		uc.notify(ctx, iv.CompanyID, domain.NotificationTypeInterviewApproved,
			"Interview approved",
			fmt.Sprintf("Interview %q passed review and was sent to the candidate.", iv.Title),
			iv, domain.PriorityNormal)
	} else {
		uc.notify(ctx, iv.CompanyID, domain.NotificationTypeInterviewRejected,
			"Interview rejected",
			fmt.Sprintf("Interview %q was rejected during review.", iv.Title),
			iv, domain.PriorityNormal)
	}

	uc.auditLog.Transition(iv.ID, "admin_decide:"+action, actor.ID, string(actor.Role))
	return iv, nil
}

// CandidateRespond records the candidate's answer. Only the owning
// candidate may respond, and only after the gate approved the interview.
func (uc *interviewUsecase) CandidateRespond(ctx context.Context, id int64, response string, comments string) (*domain.Interview, error) {
	actor, err := uc.requireRole(ctx, "interview.respond", domain.RoleCandidate)
	if err != nil {
		return nil, err
	}

	if response != ResponseAccepted && response != ResponseRejected {
		return nil, apperror.BadRequest("Invalid response. Must be: accepted or rejected")
	}

	iv, err := uc.transition(ctx, id, func(iv *domain.Interview) error {
		if iv.CandidateID != actor.ID {
			return apperror.Forbidden("You can only respond to your own interviews")
		}
		if iv.AdminStatus == domain.AdminStatusRejected {
			return apperror.Conflict("Interview was rejected during review")
		}
		if iv.AdminStatus != domain.AdminStatusApproved {
			return apperror.Conflict("Interview has not been approved yet")
		}
		if iv.Status != domain.InterviewStatusPendingResponse {
			return apperror.Conflict("Interview has already been responded to")
		}
		iv.Status = domain.InterviewStatus(response)
		if comments != "" {
			iv.Comments = comments
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("The candidate %s interview %q.", response, iv.Title)
	uc.notify(ctx, iv.CompanyID, domain.NotificationTypeInterviewResponse,
		"Candidate responded", message, iv, domain.PriorityHigh)
	uc.notifyAdmins(ctx, domain.NotificationTypeInterviewResponse,
		"Candidate responded", message, iv, domain.PriorityLow)

	uc.auditLog.Transition(iv.ID, "candidate_respond:"+response, actor.ID, string(actor.Role))
	return iv, nil
}

// SubmitCompanyFeedback records the company's scores. Write-once: a second
// submission conflicts and leaves the original untouched.
func (uc *interviewUsecase) SubmitCompanyFeedback(ctx context.Context, id int64, fb domain.CompanyFeedback) (*domain.Interview, error) {
	actor, err := uc.requireRole(ctx, "interview.company_feedback", domain.RoleCompany)
	if err != nil {
		return nil, err
	}

	if err := uc.validate.Struct(fb); err != nil {
		return nil, apperror.BadRequest("All scores must be between 1 and 5")
	}

	iv, err := uc.transition(ctx, id, func(iv *domain.Interview) error {
		if iv.CompanyID != actor.ID {
			return apperror.Forbidden("You can only submit feedback for your own interviews")
		}
		if iv.Status != domain.InterviewStatusAccepted {
			return apperror.Conflict("Feedback is only accepted after the candidate accepts the interview")
		}
		if iv.CompanyFeedback != nil {
			return apperror.Conflict("Company feedback has already been submitted")
		}
		fbCopy := fb
		iv.CompanyFeedback = &fbCopy
		iv.RecomputeFeedbackStatus()
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notifyAdmins(ctx, domain.NotificationTypeFeedbackSubmitted,
		"Company feedback submitted",
		fmt.Sprintf("The company submitted feedback for interview %q.", iv.Title),
		iv, domain.PriorityNormal)

	uc.auditLog.Transition(iv.ID, "company_feedback", actor.ID, string(actor.Role))
	return iv, nil
}

// SubmitCandidateFeedback records the candidate's rating. Write-once.
func (uc *interviewUsecase) SubmitCandidateFeedback(ctx context.Context, id int64, fb domain.CandidateFeedback) (*domain.Interview, error) {
	actor, err := uc.requireRole(ctx, "interview.candidate_feedback", domain.RoleCandidate)
	if err != nil {
		return nil, err
	}

	if err := uc.validate.Struct(fb); err != nil {
		return nil, apperror.BadRequest("Rating must be between 1 and 5")
	}

	iv, err := uc.transition(ctx, id, func(iv *domain.Interview) error {
		if iv.CandidateID != actor.ID {
			return apperror.Forbidden("You can only submit feedback for your own interviews")
		}
		if iv.Status != domain.InterviewStatusAccepted {
			return apperror.Conflict("Feedback is only accepted after you accept the interview")
		}
		if iv.CandidateFeedback != nil {
			return apperror.Conflict("Candidate feedback has already been submitted")
		}
		fbCopy := fb
		iv.CandidateFeedback = &fbCopy
		iv.RecomputeFeedbackStatus()
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notifyAdmins(ctx, domain.NotificationTypeFeedbackSubmitted,
		"Candidate feedback submitted",
		fmt.Sprintf("The candidate submitted feedback for interview %q.", iv.Title),
		iv, domain.PriorityNormal)

	uc.auditLog.Transition(iv.ID, "candidate_feedback", actor.ID, string(actor.Role))
	return iv, nil
}

// AdminReview reconciles both feedback sets and closes the record.
func (uc *interviewUsecase) AdminReview(ctx context.Context, id int64, comments string) (*domain.Interview, error) {
	actor, err := uc.requireRole(ctx, "interview.admin_review", domain.RoleAdmin)
	if err != nil {
		return nil, err
	}

	iv, err := uc.transition(ctx, id, func(iv *domain.Interview) error {
		if iv.FeedbackStatus == domain.FeedbackStatusAdminReviewed {
			return apperror.Conflict("Interview feedback has already been reviewed")
		}
		if iv.CompanyFeedback == nil || iv.CandidateFeedback == nil {
			return apperror.Conflict("Both feedback submissions are required before review")
		}
		iv.FeedbackStatus = domain.FeedbackStatusAdminReviewed
		if iv.Status == domain.InterviewStatusAccepted {
			iv.Status = domain.InterviewStatusCompleted
		}
		if comments != "" {
			iv.Comments = comments
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Feedback for interview %q was reviewed and the interview is closed.", iv.Title)
	uc.notify(ctx, iv.CompanyID, domain.NotificationTypeFeedbackReviewed,
		"Interview closed", message, iv, domain.PriorityNormal)
	uc.notify(ctx, iv.CandidateID, domain.NotificationTypeFeedbackReviewed,
		"Interview closed", message, iv, domain.PriorityNormal)

	uc.auditLog.Transition(iv.ID, "admin_review", actor.ID, string(actor.Role))
	return iv, nil
}

// GetByID returns a single interview; only parties to the record or an
// administrator may read it.
func (uc *interviewUsecase) GetByID(ctx context.Context, id int64) (*domain.Interview, error) {
	actor, ok := domain.IdentityFromContext(ctx)
	if !ok {
		return nil, apperror.Unauthorized("User not authenticated")
	}

	iv, err := uc.interviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("Interview not found")
	}

	if actor.Role != domain.RoleAdmin && iv.CompanyID != actor.ID && iv.CandidateID != actor.ID {
		uc.auditLog.Denied("interview.get", actor.ID, "not a party to the interview")
		return nil, apperror.Forbidden("You do not have access to this interview")
	}
	return iv, nil
}

// List returns interviews matching the filter, newest first, plus the total
// matching count. Non-admin actors are always scoped to their own records.
func (uc *interviewUsecase) List(ctx context.Context, filter domain.InterviewFilter) ([]domain.Interview, int, error) {
	actor, ok := domain.IdentityFromContext(ctx)
	if !ok {
		return nil, 0, apperror.Unauthorized("User not authenticated")
	}

	switch actor.Role {
	case domain.RoleCandidate:
		filter.CandidateID = actor.ID
	case domain.RoleCompany:
		filter.CompanyID = actor.ID
	case domain.RoleAdmin:
		// Admins may filter freely.
	}

	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	items, total, err := uc.interviewRepo.Find(ctx, filter)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return items, total, nil
}

// transition runs one read-validate-write cycle against the optimistic
// version lock. A lost race is retried once on a fresh read; a second loss
// surfaces as a conflict.
func (uc *interviewUsecase) transition(ctx context.Context, id int64, apply func(*domain.Interview) error) (*domain.Interview, error) {
	for attempt := 0; attempt < 2; attempt++ {
		iv, err := uc.interviewRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, apperror.NotFound("Interview not found")
			}
			return nil, apperror.Internal(err)
		}

		if err := apply(iv); err != nil {
			return nil, err
		}

		err = uc.interviewRepo.CompareAndSwap(ctx, iv)
		if err == nil {
			return iv, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return nil, apperror.Internal(err)
		}
	}
	return nil, apperror.Conflict("Interview was modified concurrently, please retry")
}

// requireRole resolves the acting identity and checks its role.
func (uc *interviewUsecase) requireRole(ctx context.Context, action string, role domain.Role) (domain.Identity, error) {
	actor, ok := domain.IdentityFromContext(ctx)
	if !ok {
		return domain.Identity{}, apperror.Unauthorized("User not authenticated")
	}
	if actor.Role != role {
		uc.auditLog.Denied(action, actor.ID, "role mismatch")
		return domain.Identity{}, apperror.Forbidden(fmt.Sprintf("Only %s actors can perform this action", role))
	}
	return actor, nil
}

// notify requests a single notification; failures are logged, never fatal
// to the transition that triggered them.
func (uc *interviewUsecase) notify(ctx context.Context, userID, notificationType, title, message string, iv *domain.Interview, priority domain.NotificationPriority) {
	_, err := uc.dispatcher.Create(ctx, domain.CreateNotificationRequest{
		UserID:   userID,
		Type:     notificationType,
		Title:    title,
		Message:  message,
		Priority: priority,
		Data: map[string]interface{}{
			"interview_id": iv.ID,
		},
	})
	if err != nil {
		uc.auditLog.NotificationFailed(userID, notificationType, err)
	}
}

// notifyAdmins fans the notification out to every administrator.
func (uc *interviewUsecase) notifyAdmins(ctx context.Context, notificationType, title, message string, iv *domain.Interview, priority domain.NotificationPriority) {
	admins, err := uc.userRepo.ListAdmins(ctx)
	if err != nil {
		uc.auditLog.NotificationFailed("admins", notificationType, err)
		return
	}
	for _, admin := range admins {
		uc.notify(ctx, admin.ID, notificationType, title, message, iv, priority)
	}
}
