package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/identity"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/models"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/services"
)

// RestAuthHandler handles the identity lifecycle. All credential checks are
// delegated to the external identity provider; only the profile row lives
// locally.
type RestAuthHandler struct {
	identityClient identity.IClient
	userService    services.IUserService
}

// NewRestAuthHandler creates a new RestAuthHandler.
func NewRestAuthHandler(identityClient identity.IClient, userService services.IUserService) *RestAuthHandler {
	return &RestAuthHandler{
		identityClient: identityClient,
		userService:    userService,
	}
}

type signUpRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// SignUp handles POST /auth/signup. Creates the provider account first, then
// the local profile. A failed profile insert rolls the provider account back
// so the email is not left claimed by a half-created user.
func (h *RestAuthHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	role := models.Role(req.Role)
	if role != models.RoleBuyer && role != models.RoleAgent {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be buyer or agent"})
		return
	}

	session, err := h.identityClient.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Sign up failed", "details": err.Error()})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sign up failed"})
		return
	}

	user := &models.User{
		ID:        session.User.ID,
		Email:     req.Email,
		Role:      role,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	}
	if name := strings.TrimSpace(req.FirstName + " " + req.LastName); name != "" {
		user.Name = name
	}
	if err := h.userService.CreateProfile(c.Request.Context(), user); err != nil {
		// Roll the provider account back so the email can be reused.
		if delErr := h.identityClient.AdminDeleteUser(c.Request.Context(), session.User.ID); delErr != nil {
			log.Printf("ERROR: failed to roll back provider account %s after profile insert failure: %v", session.User.ID, delErr)
		}
		writeServiceError(c, err)
		return
	}

	if session.AccessToken == "" {
		// Provider wants the email confirmed before issuing tokens.
		c.JSON(http.StatusCreated, gin.H{
			"user":                  user,
			"requires_confirmation": true,
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"user":    user,
		"session": session,
	})
}

type signInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignIn handles POST /auth/signin.
func (h *RestAuthHandler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	session, err := h.identityClient.SignInWithPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sign in failed"})
		return
	}

	user, err := h.userService.FindByID(c.Request.Context(), session.User.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if user.AccountStatus != models.AccountActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is deactivated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "session": session})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh handles POST /auth/refresh.
func (h *RestAuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	session, err := h.identityClient.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token refresh failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword handles POST /auth/forgot-password. The response is
// identical whether or not the account exists, so the endpoint cannot be
// used to probe for registered emails.
func (h *RestAuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if err := h.identityClient.Recover(c.Request.Context(), req.Email); err != nil {
		log.Printf("WARN: password recovery for %s failed: %v", req.Email, err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "If an account exists for that email, a reset link has been sent"})
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// ResetPassword handles POST /auth/reset-password: verifies the emailed
// recovery token, then sets the new password with the short-lived session it
// yields.
func (h *RestAuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	session, err := h.identityClient.Verify(c.Request.Context(), "recovery", req.Token, req.Email)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token"})
		return
	}
	if err := h.identityClient.UpdatePassword(c.Request.Context(), session.AccessToken, req.NewPassword); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Password reset failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}

type updatePasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// UpdatePassword handles POST /auth/update-password for a signed-in user.
// The caller's own bearer token is forwarded to the provider.
func (h *RestAuthHandler) UpdatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
		return
	}
	if err := h.identityClient.UpdatePassword(c.Request.Context(), token, req.NewPassword); err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Password update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

type confirmEmailRequest struct {
	Token string `json:"token" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// ConfirmEmail handles POST /auth/confirm-email: redeems the signup
// confirmation token and returns the resulting session.
func (h *RestAuthHandler) ConfirmEmail(c *gin.Context) {
	var req confirmEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	session, err := h.identityClient.Verify(c.Request.Context(), "signup", req.Token, req.Email)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired confirmation token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}
