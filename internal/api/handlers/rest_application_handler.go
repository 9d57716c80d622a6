package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/api/middleware"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/auth"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/models"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/services"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/utils"
)

// RestApplicationHandler handles application lifecycle requests.
type RestApplicationHandler struct {
	applicationService services.IApplicationService
}

// NewRestApplicationHandler creates a new RestApplicationHandler.
func NewRestApplicationHandler(applicationService services.IApplicationService) *RestApplicationHandler {
	return &RestApplicationHandler{applicationService: applicationService}
}

// CreateApplication handles POST /applications/create. Buyers (and admins)
// may apply to a listing; agents are admitted only on the listing-less path,
// where they become the routing agent for their own intake.
func (h *RestApplicationHandler) CreateApplication(c *gin.Context) {
	var req services.ApplicationIntake
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)
	if !auth.IsBuyer(user.Role) && req.ListingID != "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only buyers can apply to a listing"})
		return
	}

	application, err := h.applicationService.Create(c.Request.Context(), user, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"application": application})
}

type updateApplicationStatusRequest struct {
	ApplicationID string `json:"application_id" binding:"required"`
	Status        string `json:"status" binding:"required"`
}

// UpdateApplicationStatus handles POST /applications/update-status (owning
// agent or admin).
func (h *RestApplicationHandler) UpdateApplicationStatus(c *gin.Context) {
	var req updateApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	applicationID, err := utils.ParseSixID(req.ApplicationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID format"})
		return
	}

	user := middleware.CurrentUser(c)
	application, err := h.applicationService.UpdateStatus(c.Request.Context(), applicationID, user,
		models.ApplicationStatus(req.Status))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"application": application})
}

// GetMyApplications handles GET /applications/mine: the caller's own side of
// the pipeline (buyer: submitted by them; agent: routed to them).
func (h *RestApplicationHandler) GetMyApplications(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var applications []models.Application
	var err error
	if user.Role == models.RoleAgent {
		applications, err = h.applicationService.FindByAgentID(c.Request.Context(), user.ID)
	} else {
		applications, err = h.applicationService.FindByBuyerID(c.Request.Context(), user.ID)
	}
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": applications})
}
