package v1

import (
	"net/http"
	"strconv"

	"go-talentbridge-backend/internal/delivery/http/response"
	"go-talentbridge-backend/internal/domain"
	"go-talentbridge-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type InterviewHandler struct {
	interviewUC domain.InterviewUsecase
}

// NewInterviewHandler registers interview workflow routes
func NewInterviewHandler(r *gin.RouterGroup, interviewUC domain.InterviewUsecase) {
	handler := &InterviewHandler{interviewUC: interviewUC}

	interviews := r.Group("/interviews")
	{
		interviews.POST("", handler.Create)
		interviews.GET("", handler.List)
		interviews.GET("/:id", handler.GetByID)
		interviews.PATCH("/:id/decision", handler.AdminDecide)
		interviews.PATCH("/:id/response", handler.CandidateRespond)
		interviews.POST("/:id/feedback/company", handler.SubmitCompanyFeedback)
		interviews.POST("/:id/feedback/candidate", handler.SubmitCandidateFeedback)
		interviews.PATCH("/:id/review", handler.AdminReview)
	}
}

// DecisionRequest is the admin gate payload
type DecisionRequest struct {
	Action   string `json:"action" binding:"required"`
	Comments string `json:"comments"`
}

// ResponseRequest is the candidate response payload
type ResponseRequest struct {
	Response string `json:"response" binding:"required"`
	Comments string `json:"comments"`
}

// ReviewRequest is the admin feedback review payload
type ReviewRequest struct {
	Comments string `json:"comments"`
}

// Create godoc
// @Summary      Propose an interview
// @Description  Create a new interview proposal (Company only). It enters the admin gate as pending.
// @Tags         interviews
// @Accept       json
// @Produce      json
// @Param        body  body      domain.CreateInterviewRequest  true  "Interview data"
// @Success      201   {object}  response.Response{data=domain.Interview}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Router       /interviews [post]
// @Security     BearerAuth
func (h *InterviewHandler) Create(c *gin.Context) {
	var req domain.CreateInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	iv, err := h.interviewUC.Create(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Interview created successfully", iv)
}

// List godoc
// @Summary      List interviews
// @Description  List interviews with AND-combined filters, newest first. Non-admin actors only see their own records.
// @Tags         interviews
// @Produce      json
// @Param        status           query  string  false  "Candidate-facing status"
// @Param        admin_status     query  string  false  "Admin gate status"
// @Param        feedback_status  query  string  false  "Feedback progress"
// @Param        candidate_id     query  string  false  "Candidate filter (admin only)"
// @Param        company_id       query  string  false  "Company filter (admin only)"
// @Param        limit            query  int     false  "Page size"
// @Param        offset           query  int     false  "Page offset"
// @Success      200  {object}  response.Response{data=[]domain.Interview}
// @Router       /interviews [get]
// @Security     BearerAuth
func (h *InterviewHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := domain.InterviewFilter{
		CandidateID:    c.Query("candidate_id"),
		CompanyID:      c.Query("company_id"),
		Status:         domain.InterviewStatus(c.Query("status")),
		AdminStatus:    domain.AdminStatus(c.Query("admin_status")),
		FeedbackStatus: domain.FeedbackStatus(c.Query("feedback_status")),
		Limit:          limit,
		Offset:         offset,
	}

	items, total, err := h.interviewUC.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	response.Paginated(c, http.StatusOK, "Interviews retrieved successfully", items, response.Meta{
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// GetByID godoc
// @Summary      Get an interview
// @Tags         interviews
// @Produce      json
// @Param        id  path  int  true  "Interview ID"
// @Success      200  {object}  response.Response{data=domain.Interview}
// @Failure      404  {object}  response.Response
// @Router       /interviews/{id} [get]
// @Security     BearerAuth
func (h *InterviewHandler) GetByID(c *gin.Context) {
	id, ok := h.interviewID(c)
	if !ok {
		return
	}

	iv, err := h.interviewUC.GetByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Interview retrieved successfully", iv)
}

// AdminDecide godoc
// @Summary      Decide the admin gate
// @Description  Approve or reject a pending interview (Admin only). Callable exactly once per interview.
// @Tags         interviews
// @Accept       json
// @Produce      json
// @Param        id    path  int              true  "Interview ID"
// @Param        body  body  DecisionRequest  true  "approve or reject"
// @Success      200  {object}  response.Response{data=domain.Interview}
// @Failure      409  {object}  response.Response
// @Router       /interviews/{id}/decision [patch]
// @Security     BearerAuth
func (h *InterviewHandler) AdminDecide(c *gin.Context) {
	id, ok := h.interviewID(c)
	if !ok {
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	iv, err := h.interviewUC.AdminDecide(c.Request.Context(), id, req.Action, req.Comments)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Interview decision recorded", iv)
}

// CandidateRespond godoc
// @Summary      Respond to an approved interview
// @Description  Accept or reject an interview (owning candidate only, after admin approval).
// @Tags         interviews
// @Accept       json
// @Produce      json
// @Param        id    path  int              true  "Interview ID"
// @Param        body  body  ResponseRequest  true  "accepted or rejected"
// @Success      200  {object}  response.Response{data=domain.Interview}
// @Failure      409  {object}  response.Response
// @Router       /interviews/{id}/response [patch]
// @Security     BearerAuth
func (h *InterviewHandler) CandidateRespond(c *gin.Context) {
	id, ok := h.interviewID(c)
	if !ok {
		return
	}

	var req ResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	iv, err := h.interviewUC.CandidateRespond(c.Request.Context(), id, req.Response, req.Comments)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Interview response recorded", iv)
}

// SubmitCompanyFeedback godoc
// @Summary      Submit company feedback
// @Description  Record the company's scores for an accepted interview. Write-once.
// @Tags         interviews
// @Accept       json
// @Produce      json
// @Param        id    path  int                     true  "Interview ID"
// @Param        body  body  domain.CompanyFeedback  true  "Scores 1-5"
// @Success      200  {object}  response.Response{data=domain.Interview}
// @Failure      409  {object}  response.Response
// @Router       /interviews/{id}/feedback/company [post]
// @Security     BearerAuth
func (h *InterviewHandler) SubmitCompanyFeedback(c *gin.Context) {
	id, ok := h.interviewID(c)
	if !ok {
		return
	}

	var fb domain.CompanyFeedback
	if err := c.ShouldBindJSON(&fb); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	iv, err := h.interviewUC.SubmitCompanyFeedback(c.Request.Context(), id, fb)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Company feedback submitted", iv)
}

// SubmitCandidateFeedback godoc
// @Summary      Submit candidate feedback
// @Description  Record the candidate's rating for an accepted interview. Write-once.
// @Tags         interviews
// @Accept       json
// @Produce      json
// @Param        id    path  int                       true  "Interview ID"
// @Param        body  body  domain.CandidateFeedback  true  "Rating 1-5"
// @Success      200  {object}  response.Response{data=domain.Interview}
// @Failure      409  {object}  response.Response
// @Router       /interviews/{id}/feedback/candidate [post]
// @Security     BearerAuth
func (h *InterviewHandler) SubmitCandidateFeedback(c *gin.Context) {
	id, ok := h.interviewID(c)
	if !ok {
		return
	}

	var fb domain.CandidateFeedback
	if err := c.ShouldBindJSON(&fb); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	iv, err := h.interviewUC.SubmitCandidateFeedback(c.Request.Context(), id, fb)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Candidate feedback submitted", iv)
}

// AdminReview godoc
// @Summary      Review submitted feedback
// @Description  Reconcile both feedback sets and close the interview (Admin only).
// @Tags         interviews
// @Accept       json
// @Produce      json
// @Param        id    path  int            true  "Interview ID"
// @Param        body  body  ReviewRequest  true  "Review comments"
// @Success      200  {object}  response.Response{data=domain.Interview}
// @Failure      409  {object}  response.Response
// @Router       /interviews/{id}/review [patch]
// @Security     BearerAuth
func (h *InterviewHandler) AdminReview(c *gin.Context) {
	id, ok := h.interviewID(c)
	if !ok {
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	iv, err := h.interviewUC.AdminReview(c.Request.Context(), id, req.Comments)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Interview feedback reviewed", iv)
}

func (h *InterviewHandler) interviewID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid interview ID"))
		return 0, false
	}
	return id, true
}
