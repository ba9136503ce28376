package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-auth/internal/core/domain"
	"github.com/arklim/social-platform-auth/internal/infra/logger"
)

// ErrorResponse represents a generic error payload with request ID for debugging.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// NewErrorResponse creates an error response with request ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	requestID, _ := c.Get("request_id")
	requestIDStr, _ := requestID.(string)
	if requestIDStr == "" {
		if id, ok := c.Request.Context().Value(logger.RequestIDKey{}).(string); ok {
			requestIDStr = id
		}
	}

	return ErrorResponse{
		Error:     errorMsg,
		RequestID: requestIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// AccountSummary describes the account view returned by the API.
type AccountSummary struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

func newAccountSummary(account *domain.Account) AccountSummary {
	return AccountSummary{
		ID:        account.ID,
		Username:  account.Username,
		Email:     account.Email,
		Role:      string(account.Role),
		Verified:  account.Verified,
		CreatedAt: account.CreatedAt,
	}
}

// RegisterRequest defines the payload for the register endpoint.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// VerifyOtpRequest defines the payload for confirming a registration code.
type VerifyOtpRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

// VerifyOtpResponse describes the response for a successful verification.
type VerifyOtpResponse struct {
	Message string         `json:"message"`
	Account AccountSummary `json:"account"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse describes the response returned for a successful login.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// ForgotPasswordRequest defines the payload for requesting a reset code.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest defines the payload for confirming a password reset.
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,len=6"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// HealthResponse reports liveness state.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports per-dependency readiness state.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
