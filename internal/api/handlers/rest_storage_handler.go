package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/api/middleware"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/config"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/storage"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/utils"
)

// RestStorageHandler handles file uploads and the WhatsApp deep-link helper.
type RestStorageHandler struct {
	cfg            *config.Config
	storageService storage.IS3Storage
}

// NewRestStorageHandler creates a new RestStorageHandler.
func NewRestStorageHandler(cfg *config.Config, storageService storage.IS3Storage) *RestStorageHandler {
	return &RestStorageHandler{
		cfg:            cfg,
		storageService: storageService,
	}
}

// Upload handles POST /storage/upload: a multipart file streamed through to
// the object store. Returns the public URL.
func (h *RestStorageHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A file field is required"})
		return
	}

	maxBytes := int64(h.cfg.UploadMaxSizeMB) * 1024 * 1024
	if fileHeader.Size > maxBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File exceeds the maximum upload size"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	user := middleware.CurrentUser(c)
	contentType := fileHeader.Header.Get("Content-Type")
	url, err := h.storageService.Upload(c.Request.Context(), user.ID, fileHeader.Filename, contentType, file)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}

type presignRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// Presign handles POST /storage/presign: a pre-signed PUT URL so the client
// can upload directly to the bucket.
func (h *RestStorageHandler) Presign(c *gin.Context) {
	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)
	url, key, err := h.storageService.GeneratePresignedPutURL(c.Request.Context(), user.ID, req.Filename, req.ContentType)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate upload URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"upload_url": url, "key": key})
}

type whatsAppLinkRequest struct {
	Phone         string `json:"phone" binding:"required"`
	ListingTitle  string `json:"listing_title"`
	ApplicationID string `json:"application_id"`
	Message       string `json:"message"`
}

// GenerateWhatsAppLink handles POST /whatsapp/generate-link. With a listing
// title the agent-contact message is used; with an application ID the
// buyer-contact message; a custom message overrides both.
func (h *RestStorageHandler) GenerateWhatsAppLink(c *gin.Context) {
	var req whatsAppLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	var link string
	switch {
	case req.Message != "":
		link = utils.WhatsAppLink(req.Phone, req.Message)
	case req.ApplicationID != "":
		link = utils.BuyerWhatsAppLink(req.Phone, req.ApplicationID)
	default:
		link = utils.AgentWhatsAppLink(req.Phone, req.ListingTitle)
	}

	c.JSON(http.StatusOK, gin.H{"whatsapp_link": link})
}
