package transport

import (
	"net/http"
	"strings"

	"github.com/ds124wfegd/eventhub/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "User registered successfully. Please check your email to verify your account.", user)
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if strings.TrimSpace(token) == "" {
		badRequest(c, "token is required")
		return
	}

	result, err := h.authService.VerifyEmail(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Email verified successfully"
	if result.AlreadyVerified {
		message = "Email already verified"
	}
	respond(c, http.StatusOK, message, result)
}

func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.authService.ResendVerification(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Verification email sent", nil)
}

func (h *AuthHandler) CheckVerificationStatus(c *gin.Context) {
	email := c.Query("email")
	if strings.TrimSpace(email) == "" {
		badRequest(c, "email is required")
		return
	}

	status, err := h.authService.CheckVerificationStatus(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Verification status", status)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	id, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "OTP sent to your email", gin.H{"user_id": id})
}

func (h *AuthHandler) VerifyOtp(c *gin.Context) {
	var req service.VerifyOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	session, err := h.authService.VerifyOtp(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Login successful", session)
}

func (h *AuthHandler) ResendOtp(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.authService.ResendOtp(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "OTP resent to your email", nil)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), userID(c)); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) SocialLogin(c *gin.Context) {
	var req service.SocialLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	session, err := h.authService.SocialLogin(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Login successful", session)
}

func (h *AuthHandler) LinkSocial(c *gin.Context) {
	var req service.LinkSocialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.authService.LinkSocialAccount(c.Request.Context(), userID(c), &req); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Social account linked", nil)
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, err := h.authService.GetProfile(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Profile", user)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), userID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Profile updated", user)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req service.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID(c), &req); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Password changed successfully", nil)
}
