package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/api/middleware"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/identity"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/services"
)

// RestUserHandler handles self-service profile requests.
type RestUserHandler struct {
	userService    services.IUserService
	identityClient identity.IClient
}

// NewRestUserHandler creates a new RestUserHandler.
func NewRestUserHandler(userService services.IUserService, identityClient identity.IClient) *RestUserHandler {
	return &RestUserHandler{
		userService:    userService,
		identityClient: identityClient,
	}
}

// GetProfile handles GET /user/profile.
func (h *RestUserHandler) GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": middleware.CurrentUser(c)})
}

type updateProfileRequest struct {
	FirstName          *string `json:"first_name"`
	LastName           *string `json:"last_name"`
	Name               *string `json:"name"`
	Phone              *string `json:"phone"`
	CountryOfResidence *string `json:"country_of_residence"`
	Parish             *string `json:"parish"`
}

// UpdateProfile handles PUT /user/profile: a partial merge of the supplied
// fields.
func (h *RestUserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)
	updated, err := h.userService.UpdateProfile(c.Request.Context(), user.ID, services.ProfileUpdate{
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Name:               req.Name,
		Phone:              req.Phone,
		CountryOfResidence: req.CountryOfResidence,
		Parish:             req.Parish,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": updated})
}

type updateEmailRequest struct {
	NewEmail string `json:"new_email" binding:"required,email"`
}

// UpdateEmail handles PUT /user/email. The provider is updated first; only
// when it accepts the change does the local row follow, so the two stores
// cannot disagree about a rejected email.
func (h *RestUserHandler) UpdateEmail(c *gin.Context) {
	var req updateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)
	if err := h.identityClient.AdminUpdateEmail(c.Request.Context(), user.ID, req.NewEmail); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email update rejected", "details": err.Error()})
		return
	}

	updated, err := h.userService.UpdateEmail(c.Request.Context(), user.ID, req.NewEmail)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": updated})
}

// GetAccountStatus handles GET /user/account-status.
func (h *RestUserHandler) GetAccountStatus(c *gin.Context) {
	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"account_status": user.AccountStatus,
		"role":           user.Role,
	})
}
