package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/api/middleware"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/models"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/services"
)

// RestDashboardHandler composes the role dashboards and analytics views from
// the listing and application stores.
type RestDashboardHandler struct {
	listingService     services.IListingService
	applicationService services.IApplicationService
	analyticsService   services.IAnalyticsService
}

// NewRestDashboardHandler creates a new RestDashboardHandler.
func NewRestDashboardHandler(
	listingService services.IListingService,
	applicationService services.IApplicationService,
	analyticsService services.IAnalyticsService,
) *RestDashboardHandler {
	return &RestDashboardHandler{
		listingService:     listingService,
		applicationService: applicationService,
		analyticsService:   analyticsService,
	}
}

// AgentDashboard handles GET /dashboard/agent: the agent's listings, the
// applications routed to them, and their counters.
func (h *RestDashboardHandler) AgentDashboard(c *gin.Context) {
	user := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	listings, err := h.listingService.FindByAgentID(ctx, user.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	applications, err := h.applicationService.FindByAgentID(ctx, user.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	analytics, err := h.analyticsService.ForAgent(ctx, user.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listings":     listings,
		"applications": applications,
		"analytics":    analytics,
	})
}

// BuyerDashboard handles GET /dashboard/buyer: the buyer's applications and
// counters.
func (h *RestDashboardHandler) BuyerDashboard(c *gin.Context) {
	user := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	applications, err := h.applicationService.FindByBuyerID(ctx, user.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	analytics, err := h.analyticsService.ForBuyer(ctx, user.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": applications,
		"analytics":    analytics,
	})
}

// Analytics handles GET /analytics: the caller's counters, shaped by role.
func (h *RestDashboardHandler) Analytics(c *gin.Context) {
	user := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	if user.Role == models.RoleAgent {
		analytics, err := h.analyticsService.ForAgent(ctx, user.ID)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"analytics": analytics})
		return
	}

	analytics, err := h.analyticsService.ForBuyer(ctx, user.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analytics": analytics})
}
