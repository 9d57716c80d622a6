package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/api/middleware"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/services"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/utils"
)

// RestEngagementHandler handles buyer engagement: view tracking, saved
// searches, alerts and messaging.
type RestEngagementHandler struct {
	viewService        services.IViewService
	savedSearchService services.ISavedSearchService
	messageService     services.IMessageService
}

// NewRestEngagementHandler creates a new RestEngagementHandler.
func NewRestEngagementHandler(
	viewService services.IViewService,
	savedSearchService services.ISavedSearchService,
	messageService services.IMessageService,
) *RestEngagementHandler {
	return &RestEngagementHandler{
		viewService:        viewService,
		savedSearchService: savedSearchService,
		messageService:     messageService,
	}
}

type trackViewRequest struct {
	ListingID string `json:"listing_id" binding:"required"`
}

// TrackView handles POST /listings/track-view.
func (h *RestEngagementHandler) TrackView(c *gin.Context) {
	var req trackViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	listingID, err := utils.ParseSixID(req.ListingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID format"})
		return
	}

	user := middleware.CurrentUser(c)
	if err := h.viewService.RecordView(c.Request.Context(), user.ID, listingID); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "View recorded"})
}

// RecentlyViewed handles GET /listings/recently-viewed.
func (h *RestEngagementHandler) RecentlyViewed(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	user := middleware.CurrentUser(c)
	recent, err := h.viewService.RecentlyViewed(c.Request.Context(), user.ID, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recently_viewed": recent})
}

// GetSavedSearches handles GET /saved-searches.
func (h *RestEngagementHandler) GetSavedSearches(c *gin.Context) {
	user := middleware.CurrentUser(c)
	searches, err := h.savedSearchService.FindByBuyerID(c.Request.Context(), user.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved_searches": searches})
}

type savedSearchCriteria struct {
	Location string   `json:"location"`
	MinPrice *float64 `json:"min_price"`
	MaxPrice *float64 `json:"max_price"`
}

type savedSearchRequest struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	SearchCriteria savedSearchCriteria `json:"search_criteria"`
	AlertsEnabled  *bool               `json:"alerts_enabled"`
}

func (r savedSearchRequest) toInput() services.SavedSearchInput {
	return services.SavedSearchInput{
		Name:          r.Name,
		Location:      r.SearchCriteria.Location,
		MinPrice:      r.SearchCriteria.MinPrice,
		MaxPrice:      r.SearchCriteria.MaxPrice,
		AlertsEnabled: r.AlertsEnabled,
	}
}

// CreateSavedSearch handles POST /saved-searches.
func (h *RestEngagementHandler) CreateSavedSearch(c *gin.Context) {
	var req savedSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)
	search, err := h.savedSearchService.Create(c.Request.Context(), user.ID, req.toInput())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"saved_search": search})
}

// UpdateSavedSearch handles PUT /saved-searches. The target search rides in
// the body's id field.
func (h *RestEngagementHandler) UpdateSavedSearch(c *gin.Context) {
	var req savedSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	searchID, err := utils.ParseSixID(req.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid saved search ID format"})
		return
	}

	user := middleware.CurrentUser(c)
	search, err := h.savedSearchService.Update(c.Request.Context(), searchID, user.ID, req.toInput())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved_search": search})
}

// DeleteSavedSearch handles DELETE /saved-searches?id=...
func (h *RestEngagementHandler) DeleteSavedSearch(c *gin.Context) {
	searchID, err := utils.ParseSixID(c.Query("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid saved search ID format"})
		return
	}

	user := middleware.CurrentUser(c)
	if err := h.savedSearchService.Delete(c.Request.Context(), searchID, user.ID); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Saved search deleted"})
}

// GetSearchAlerts handles GET /saved-searches/alerts.
func (h *RestEngagementHandler) GetSearchAlerts(c *gin.Context) {
	user := middleware.CurrentUser(c)
	alerts, err := h.savedSearchService.FindAlertsByBuyerID(c.Request.Context(), user.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// GetMessages handles GET /messages with optional listing_id and
// application_id filters.
func (h *RestEngagementHandler) GetMessages(c *gin.Context) {
	filter := services.MessageFilter{}
	if v := c.Query("listing_id"); v != "" {
		id, err := utils.ParseSixID(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID format"})
			return
		}
		filter.ListingID = &id
	}
	if v := c.Query("application_id"); v != "" {
		id, err := utils.ParseSixID(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID format"})
			return
		}
		filter.ApplicationID = &id
	}

	user := middleware.CurrentUser(c)
	messages, err := h.messageService.List(c.Request.Context(), user, filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type sendMessageRequest struct {
	AgentID       string `json:"agent_id"`
	BuyerID       string `json:"buyer_id"`
	Message       string `json:"message" binding:"required"`
	ListingID     string `json:"listing_id"`
	ApplicationID string `json:"application_id"`
}

// SendMessage handles POST /messages.
func (h *RestEngagementHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	input := services.SendMessageInput{
		AgentID: req.AgentID,
		BuyerID: req.BuyerID,
		Body:    req.Message,
	}
	if req.ListingID != "" {
		id, err := utils.ParseSixID(req.ListingID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID format"})
			return
		}
		input.ListingID = &id
	}
	if req.ApplicationID != "" {
		id, err := utils.ParseSixID(req.ApplicationID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID format"})
			return
		}
		input.ApplicationID = &id
	}

	user := middleware.CurrentUser(c)
	message, err := h.messageService.Send(c.Request.Context(), user, input)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": message})
}
