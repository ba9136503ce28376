package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-auth/internal/infra/security"
)

// Context keys populated by RequireAuth.
const (
	AccountIDKey = "account_id"
	EmailKey     = "email"
	RoleKey      = "role"
	ClaimsKey    = "claims"
)

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// newErrorResponse creates an error response with request ID
func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:     errorMsg,
		RequestID: requestIDFromContext(c.Request.Context()),
	}
}

// RequireAuth validates the Authorization header and extracts account claims
func RequireAuth(tokens *security.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "invalid authorization format: expected 'Bearer <token>'"))
			return
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing access token"))
			return
		}

		claims, err := tokens.Parse(token, security.TokenTypeAccess)
		if err != nil {
			switch {
			case errors.Is(err, security.ErrWrongTokenType):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "refresh token not accepted here"))
			case errors.Is(err, security.ErrInvalidToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "invalid or expired access token"))
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					newErrorResponse(c, "authentication failed"))
			}
			return
		}

		c.Set(AccountIDKey, claims.Subject)
		c.Set(EmailKey, claims.Email)
		c.Set(RoleKey, claims.Role)
		c.Set(ClaimsKey, claims)

		c.Next()
	}
}
