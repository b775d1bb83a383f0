package v1

import (
	"net/http"
	"strconv"

	"go-talentbridge-backend/internal/delivery/http/response"
	"go-talentbridge-backend/internal/domain"
	"go-talentbridge-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationUC domain.NotificationUsecase
}

// NewNotificationHandler registers notification routes
func NewNotificationHandler(r *gin.RouterGroup, notificationUC domain.NotificationUsecase) {
	handler := &NotificationHandler{notificationUC: notificationUC}

	notifications := r.Group("/notifications")
	{
		notifications.GET("", handler.List)
		notifications.GET("/unread-count", handler.UnreadCount)
		notifications.PATCH("/read-all", handler.MarkAllRead)
		notifications.PATCH("/:id/read", handler.MarkRead)
		notifications.GET("/preferences", handler.GetPreferences)
		notifications.PUT("/preferences", handler.UpdatePreferences)
	}
}

// List godoc
// @Summary      List my notifications
// @Description  Return the caller's notifications, newest first.
// @Tags         notifications
// @Produce      json
// @Param        limit        query  int     false  "Max rows"
// @Param        unread_only  query  bool    false  "Only unread"
// @Param        type         query  string  false  "Filter by notification type"
// @Success      200  {object}  response.Response{data=[]domain.Notification}
// @Router       /notifications [get]
// @Security     BearerAuth
func (h *NotificationHandler) List(c *gin.Context) {
	identity, ok := domain.IdentityFromContext(c.Request.Context())
	if !ok {
		c.Error(apperror.Unauthorized("Authentication required"))
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	opts := domain.NotificationListOptions{
		Limit:      limit,
		UnreadOnly: c.Query("unread_only") == "true",
		Type:       c.Query("type"),
	}

	items, err := h.notificationUC.List(c.Request.Context(), identity.ID, opts)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Notifications retrieved successfully", items)
}

// UnreadCount godoc
// @Summary      Count my unread notifications
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /notifications/unread-count [get]
// @Security     BearerAuth
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	identity, ok := domain.IdentityFromContext(c.Request.Context())
	if !ok {
		c.Error(apperror.Unauthorized("Authentication required"))
		return
	}

	count, err := h.notificationUC.UnreadCount(c.Request.Context(), identity.ID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Unread count retrieved successfully", gin.H{"count": count})
}

// MarkRead godoc
// @Summary      Mark a notification read
// @Description  Sets the read timestamp once; repeated calls keep the first one.
// @Tags         notifications
// @Produce      json
// @Param        id  path  string  true  "Notification ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /notifications/{id}/read [patch]
// @Security     BearerAuth
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	identity, ok := domain.IdentityFromContext(c.Request.Context())
	if !ok {
		c.Error(apperror.Unauthorized("Authentication required"))
		return
	}

	id := c.Param("id")
	if id == "" {
		c.Error(apperror.BadRequest("Notification ID is required"))
		return
	}

	if err := h.notificationUC.MarkRead(c.Request.Context(), identity.ID, id); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Notification marked as read", nil)
}

// MarkAllRead godoc
// @Summary      Mark all my notifications read
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /notifications/read-all [patch]
// @Security     BearerAuth
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	identity, ok := domain.IdentityFromContext(c.Request.Context())
	if !ok {
		c.Error(apperror.Unauthorized("Authentication required"))
		return
	}

	if err := h.notificationUC.MarkAllRead(c.Request.Context(), identity.ID); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "All notifications marked as read", nil)
}

// GetPreferences godoc
// @Summary      Get my notification preferences
// @Description  Returns saved preferences, or the defaults when none were saved.
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.NotificationPreference}
// @Router       /notifications/preferences [get]
// @Security     BearerAuth
func (h *NotificationHandler) GetPreferences(c *gin.Context) {
	identity, ok := domain.IdentityFromContext(c.Request.Context())
	if !ok {
		c.Error(apperror.Unauthorized("Authentication required"))
		return
	}

	pref, err := h.notificationUC.GetPreferences(c.Request.Context(), identity.ID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Preferences retrieved successfully", pref)
}

// UpdatePreferences godoc
// @Summary      Update my notification preferences
// @Description  Partial update; omitted fields keep their current values.
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Param        body  body  domain.PreferencePatch  true  "Fields to change"
// @Success      200  {object}  response.Response{data=domain.NotificationPreference}
// @Failure      400  {object}  response.Response
// @Router       /notifications/preferences [put]
// @Security     BearerAuth
func (h *NotificationHandler) UpdatePreferences(c *gin.Context) {
	identity, ok := domain.IdentityFromContext(c.Request.Context())
	if !ok {
		c.Error(apperror.Unauthorized("Authentication required"))
		return
	}

	var patch domain.PreferencePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	pref, err := h.notificationUC.UpdatePreferences(c.Request.Context(), identity.ID, patch)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Preferences updated successfully", pref)
}
