package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/api/middleware"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/cache"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/models"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/services"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/tasks"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/utils"
)

const browseCachePrefix = "browse:"

// RestListingHandler handles listing lifecycle requests.
type RestListingHandler struct {
	listingService services.IListingService
	browseCache    *cache.ResponseCache
	taskClient     IAsynqClient
}

// NewRestListingHandler creates a new RestListingHandler. browseCache and
// taskClient may be nil (caching and alert scanning degrade to no-ops).
func NewRestListingHandler(listingService services.IListingService, browseCache *cache.ResponseCache, taskClient IAsynqClient) *RestListingHandler {
	return &RestListingHandler{
		listingService: listingService,
		browseCache:    browseCache,
		taskClient:     taskClient,
	}
}

type listingDetailsRequest struct {
	PropertyType        string `json:"property_type"`
	ListingType         string `json:"listing_type"`
	StreetAddress       string `json:"street_address"`
	Parish              string `json:"parish"`
	Bedrooms            int    `json:"bedrooms"`
	Bathrooms           int    `json:"bathrooms"`
	InteriorDetails     string `json:"interior_details"`
	PropertySize        string `json:"property_size"`
	AvailabilityStatus  string `json:"availability_status"`
	ViewingInstructions string `json:"viewing_instructions"`
}

func (r listingDetailsRequest) toInput() services.ListingDetails {
	return services.ListingDetails{
		PropertyType:        r.PropertyType,
		ListingType:         r.ListingType,
		StreetAddress:       r.StreetAddress,
		Parish:              r.Parish,
		Bedrooms:            r.Bedrooms,
		Bathrooms:           r.Bathrooms,
		InteriorDetails:     r.InteriorDetails,
		PropertySize:        r.PropertySize,
		AvailabilityStatus:  r.AvailabilityStatus,
		ViewingInstructions: r.ViewingInstructions,
	}
}

type createListingRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Price       float64  `json:"price" binding:"required"`
	Location    string   `json:"location" binding:"required"`
	Status      string   `json:"status"`
	Images      []string `json:"images"`
	Documents   []string `json:"documents"`
	listingDetailsRequest
}

// CreateListing handles POST /listings/create (agent or admin).
func (h *RestListingHandler) CreateListing(c *gin.Context) {
	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)
	listing, err := h.listingService.Create(c.Request.Context(), user.ID, services.CreateListingInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Location:    req.Location,
		Details:     req.toInput(),
		Images:      req.Images,
		Documents:   req.Documents,
		Status:      models.ListingStatus(req.Status),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"listing": listing})
}

type updateListingRequest struct {
	ListingID   string                 `json:"listing_id" binding:"required"`
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	Price       *float64               `json:"price"`
	Location    *string                `json:"location"`
	Status      *string                `json:"status"`
	Images      *[]string              `json:"images"`
	Documents   *[]string              `json:"documents"`
	Details     *listingDetailsRequest `json:"details"`
}

// UpdateListing handles PUT /listings/update (owner or admin).
func (h *RestListingHandler) UpdateListing(c *gin.Context) {
	var req updateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	listingID, err := utils.ParseSixID(req.ListingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID format"})
		return
	}

	input := services.UpdateListingInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Location:    req.Location,
		Images:      req.Images,
		Documents:   req.Documents,
	}
	if req.Status != nil {
		status := models.ListingStatus(*req.Status)
		input.Status = &status
	}
	if req.Details != nil {
		details := req.Details.toInput()
		input.Details = &details
	}

	user := middleware.CurrentUser(c)
	listing, err := h.listingService.Update(c.Request.Context(), listingID, user, input)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	h.invalidateBrowseCache(c)
	c.JSON(http.StatusOK, gin.H{"listing": listing})
}

type listingActionRequest struct {
	ListingID string `json:"listing_id" binding:"required"`
	Reason    string `json:"reason"`
}

// ApproveListing handles POST /listings/approve (admin). On success the
// saved-search alert scan is enqueued; a broker hiccup there does not undo
// the approval.
func (h *RestListingHandler) ApproveListing(c *gin.Context) {
	var req listingActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	listingID, err := utils.ParseSixID(req.ListingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID format"})
		return
	}

	listing, err := h.listingService.Approve(c.Request.Context(), listingID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if h.taskClient != nil {
		task, err := tasks.NewAlertsScanTask(listing.ID)
		if err == nil {
			_, err = h.taskClient.Enqueue(task)
		}
		if err != nil {
			log.Printf("WARN: failed to enqueue alerts scan for listing %s: %v", listing.ID.String(), err)
		}
	}
	h.invalidateBrowseCache(c)
	c.JSON(http.StatusOK, gin.H{"listing": listing})
}

// RejectListing handles POST /listings/reject (admin).
func (h *RestListingHandler) RejectListing(c *gin.Context) {
	var req listingActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	listingID, err := utils.ParseSixID(req.ListingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID format"})
		return
	}

	listing, err := h.listingService.Reject(c.Request.Context(), listingID, req.Reason)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listing": listing})
}

// BrowseListings handles GET /listings/browse (public). Responses are cached
// briefly in Redis keyed by the raw query string.
func (h *RestListingHandler) BrowseListings(c *gin.Context) {
	cacheKey := browseCachePrefix + c.Request.URL.RawQuery
	if h.browseCache != nil {
		if body, ok := h.browseCache.Get(c.Request.Context(), cacheKey); ok {
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(body))
			return
		}
	}

	filter := services.BrowseFilter{Location: c.Query("location")}
	if v := c.Query("min_price"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinPrice = &parsed
		}
	}
	if v := c.Query("max_price"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxPrice = &parsed
		}
	}
	if v, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil && v > 0 {
		filter.Offset = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.Limit = v
	}

	listings, total, err := h.listingService.Browse(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response := gin.H{"listings": listings, "total": total}
	if h.browseCache != nil {
		if body, err := json.Marshal(response); err == nil {
			h.browseCache.Set(c.Request.Context(), cacheKey, string(body))
		}
	}
	c.JSON(http.StatusOK, response)
}

// GetMyListings handles GET /listings/mine (agent or admin).
func (h *RestListingHandler) GetMyListings(c *gin.Context) {
	user := middleware.CurrentUser(c)
	listings, err := h.listingService.FindByAgentID(c.Request.Context(), user.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

// invalidateBrowseCache drops cached browse pages after a visible state
// change. Stale pages expiring via TTL would also be acceptable; this just
// tightens the window.
func (h *RestListingHandler) invalidateBrowseCache(c *gin.Context) {
	if h.browseCache != nil {
		h.browseCache.Invalidate(c.Request.Context(), browseCachePrefix+"*")
	}
}
