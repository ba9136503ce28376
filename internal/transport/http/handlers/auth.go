package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-auth/internal/usecase"
)

// AuthHandler exposes the registration and credential endpoints.
type AuthHandler struct {
	auth *usecase.AuthService
}

func NewAuthHandler(auth *usecase.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterRoutes binds the auth endpoints. Per-endpoint middleware, such as
// rate limits, is supplied by the caller.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, registerMW, loginMW, resetMW []gin.HandlerFunc) {
	r.POST("/register", append(append([]gin.HandlerFunc{}, registerMW...), h.Register)...)
	r.POST("/verify-otp", h.VerifyOtp)
	r.POST("/login", append(append([]gin.HandlerFunc{}, loginMW...), h.Login)...)
	r.POST("/forgot-password", append(append([]gin.HandlerFunc{}, resetMW...), h.ForgotPassword)...)
	r.POST("/reset-password", append(append([]gin.HandlerFunc{}, resetMW...), h.ResetPassword)...)
}

// Register stores a provisional registration and emails a verification code.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrDuplicateEmail, Status: http.StatusConflict, Message: "email already registered"},
			{Err: usecase.ErrDuplicateUsername, Status: http.StatusConflict, Message: "username already taken"},
			{Err: usecase.ErrRateLimited, Status: http.StatusTooManyRequests, Message: "a code was sent recently, retry later"},
			{Err: usecase.ErrDeliveryFailure, Status: http.StatusBadGateway, Message: "failed to send verification code"},
		}, http.StatusInternalServerError, "failed to register")
		return
	}

	c.JSON(http.StatusCreated, MessageResponse{Message: "verification code sent"})
}

// VerifyOtp confirms the registration code and activates the account.
func (h *AuthHandler) VerifyOtp(c *gin.Context) {
	var req VerifyOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid verification payload"))
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Code = strings.TrimSpace(req.Code)

	account, err := h.auth.VerifyOtp(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidOrExpiredOtp, Status: http.StatusBadRequest, Message: "verification code is invalid or expired"},
			{Err: usecase.ErrPendingNotFound, Status: http.StatusNotFound, Message: "no registration pending for this email"},
			{Err: usecase.ErrDuplicateUsername, Status: http.StatusConflict, Message: "username already taken"},
		}, http.StatusInternalServerError, "failed to verify code")
		return
	}

	c.JSON(http.StatusOK, VerifyOtpResponse{
		Message: "account verified",
		Account: newAccountSummary(account),
	})
}

// Login checks credentials and returns a token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	pair, err := h.auth.Login(c.Request.Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid email or password"},
			{Err: usecase.ErrNotVerified, Status: http.StatusForbidden, Message: "account is not verified"},
		}, http.StatusInternalServerError, "failed to log in")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(time.Until(pair.AccessExpiresAt).Seconds()),
	})
}

// ForgotPassword issues a reset code for an existing account.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid payload"))
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := h.auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
			{Err: usecase.ErrRateLimited, Status: http.StatusTooManyRequests, Message: "a code was sent recently, retry later"},
			{Err: usecase.ErrDeliveryFailure, Status: http.StatusBadGateway, Message: "failed to send reset code"},
		}, http.StatusInternalServerError, "failed to request password reset")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "reset code sent"})
}

// ResetPassword consumes the reset code and replaces the password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid payload"))
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Code = strings.TrimSpace(req.Code)

	if err := h.auth.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
			{Err: usecase.ErrInvalidOrExpiredOtp, Status: http.StatusBadRequest, Message: "reset code is invalid or expired"},
		}, http.StatusInternalServerError, "failed to reset password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password updated"})
}
