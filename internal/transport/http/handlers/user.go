package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-auth/internal/transport/http/middleware"
	"github.com/arklim/social-platform-auth/internal/usecase"
)

// UserHandler exposes endpoints for the authenticated account.
type UserHandler struct {
	auth *usecase.AuthService
}

func NewUserHandler(auth *usecase.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

// RegisterRoutes binds the user endpoints. The group must carry RequireAuth.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/me", h.Me)
}

// Me returns the profile of the authenticated account.
func (h *UserHandler) Me(c *gin.Context) {
	email := c.GetString(middleware.EmailKey)
	if email == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	account, err := h.auth.Profile(c.Request.Context(), email)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusInternalServerError, "failed to load profile")
		return
	}

	c.JSON(http.StatusOK, newAccountSummary(account))
}
