package v1

import (
	"fmt"
	"net/http"

	"go-talentbridge-backend/internal/delivery/http/response"
	"go-talentbridge-backend/internal/domain"
	"go-talentbridge-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	notificationUC domain.NotificationUsecase
	reportUC       domain.ReportUsecase
}

// NewAdminHandler registers admin operational routes
func NewAdminHandler(r *gin.RouterGroup, notificationUC domain.NotificationUsecase, reportUC domain.ReportUsecase) {
	handler := &AdminHandler{notificationUC: notificationUC, reportUC: reportUC}

	admin := r.Group("/admin")
	{
		admin.POST("/notifications/process", handler.ProcessScheduled)
		admin.GET("/interviews/export", handler.ExportInterviews)
	}
}

// ProcessScheduled godoc
// @Summary      Run the scheduled notification sweep
// @Description  Trigger the dispatch sweep outside its cron cadence (Admin only). Safe to call repeatedly.
// @Tags         admin
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /admin/notifications/process [post]
// @Security     BearerAuth
func (h *AdminHandler) ProcessScheduled(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	if err := h.notificationUC.ProcessScheduled(c.Request.Context()); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Scheduled notifications processed", nil)
}

// ExportInterviews godoc
// @Summary      Export interview data
// @Description  Download matching interviews with feedback as a spreadsheet (Admin only).
// @Tags         admin
// @Produce      application/octet-stream
// @Param        format        query  string  false  "xlsx or csv"  default(xlsx)
// @Param        status        query  string  false  "Candidate-facing status"
// @Param        admin_status  query  string  false  "Admin gate status"
// @Param        company_id    query  string  false  "Company filter"
// @Success      200  {file}    file
// @Failure      403  {object}  response.Response
// @Router       /admin/interviews/export [get]
// @Security     BearerAuth
func (h *AdminHandler) ExportInterviews(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	format := c.DefaultQuery("format", "xlsx")
	filter := domain.InterviewFilter{
		CandidateID:    c.Query("candidate_id"),
		CompanyID:      c.Query("company_id"),
		Status:         domain.InterviewStatus(c.Query("status")),
		AdminStatus:    domain.AdminStatus(c.Query("admin_status")),
		FeedbackStatus: domain.FeedbackStatus(c.Query("feedback_status")),
	}

	data, filename, err := h.reportUC.ExportInterviews(c.Request.Context(), format, filter)
	if err != nil {
		c.Error(err)
		return
	}

	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if format == "csv" {
		contentType = "text/csv"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

func (h *AdminHandler) requireAdmin(c *gin.Context) bool {
	identity, ok := domain.IdentityFromContext(c.Request.Context())
	if !ok {
		c.Error(apperror.Unauthorized("Authentication required"))
		return false
	}
	if identity.Role != domain.RoleAdmin {
		c.Error(apperror.Forbidden("Admin access required"))
		return false
	}
	return true
}
