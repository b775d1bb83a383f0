package v1

import (
	"net/http"

	"go-talentbridge-backend/internal/delivery/http/response"
	"go-talentbridge-backend/internal/domain"
	"go-talentbridge-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUC domain.AuthUsecase
}

// NewAuthHandler registers authenticated identity routes
func NewAuthHandler(r *gin.RouterGroup, authUC domain.AuthUsecase) {
	handler := &AuthHandler{authUC: authUC}

	auth := r.Group("/auth")
	{
		auth.GET("/me", handler.Me)
	}
}

// Me godoc
// @Summary      Get the current user
// @Description  Return the profile of the authenticated caller.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
// @Security     BearerAuth
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := domain.IdentityFromContext(c.Request.Context())
	if !ok {
		c.Error(apperror.Unauthorized("Authentication required"))
		return
	}

	user, err := h.authUC.GetCurrentUser(c.Request.Context(), identity.ID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "User retrieved successfully", user)
}
