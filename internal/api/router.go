package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/api/handlers"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/api/middleware"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/cache"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/config"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/identity"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/payments"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/services"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/storage"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(
	cfg *config.Config,
	db *mongo.Database,
	rdb *redis.Client,
	identityClient identity.IClient,
	paymentsClient payments.IClient,
	s3Storage storage.IS3Storage,
	taskClient handlers.IAsynqClient,
) *gin.Engine {
	userService := services.NewUserService(db)
	subscriptionService := services.NewSubscriptionService(db)
	listingService := services.NewListingService(db, subscriptionService)
	applicationService := services.NewApplicationService(db, userService, listingService, cfg.SystemAgentEmail)
	viewService := services.NewViewService(db, listingService)
	savedSearchService := services.NewSavedSearchService(db)
	messageService := services.NewMessageService(db, userService)
	analyticsService := services.NewAnalyticsService(db)

	var browseCache *cache.ResponseCache
	if rdb != nil {
		browseCache = cache.NewResponseCache(rdb, cfg.BrowseCacheTTL)
	}

	r := gin.Default()

	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)
	r.Use(middleware.CORSMiddleware())
	r.Use(rateLimiter.Limit())

	authHandler := handlers.NewRestAuthHandler(identityClient, userService)
	userHandler := handlers.NewRestUserHandler(userService, identityClient)
	listingHandler := handlers.NewRestListingHandler(listingService, browseCache, taskClient)
	applicationHandler := handlers.NewRestApplicationHandler(applicationService)
	engagementHandler := handlers.NewRestEngagementHandler(viewService, savedSearchService, messageService)
	billingHandler := handlers.NewRestBillingHandler(cfg, paymentsClient, subscriptionService)
	dashboardHandler := handlers.NewRestDashboardHandler(listingService, applicationService, analyticsService)
	storageHandler := handlers.NewRestStorageHandler(cfg, s3Storage)

	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	// Public routes
	auth := r.Group("/auth")
	{
		auth.POST("/signup", authHandler.SignUp)
		auth.POST("/signin", authHandler.SignIn)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
		auth.POST("/confirm-email", authHandler.ConfirmEmail)
	}
	r.GET("/listings/browse", listingHandler.BrowseListings)

	// Authenticated routes
	authed := r.Group("/")
	authed.Use(middleware.AuthMiddleware(cfg.JwtSecret, userService))
	{
		authed.POST("/auth/update-password", authHandler.UpdatePassword)

		authed.GET("/user/profile", userHandler.GetProfile)
		authed.PUT("/user/profile", userHandler.UpdateProfile)
		authed.PUT("/user/email", userHandler.UpdateEmail)
		authed.GET("/user/account-status", userHandler.GetAccountStatus)

		authed.POST("/applications/create", applicationHandler.CreateApplication)
		authed.GET("/applications/mine", applicationHandler.GetMyApplications)

		authed.GET("/messages", engagementHandler.GetMessages)
		authed.POST("/messages", engagementHandler.SendMessage)

		authed.GET("/analytics", dashboardHandler.Analytics)

		authed.POST("/stripe/checkout", billingHandler.CreateCheckout)
		authed.POST("/stripe/payment-success", billingHandler.PaymentSuccess)
		authed.GET("/stripe/subscription", billingHandler.GetSubscription)

		authed.POST("/storage/upload", storageHandler.Upload)
		authed.POST("/storage/presign", storageHandler.Presign)
		authed.POST("/whatsapp/generate-link", storageHandler.GenerateWhatsAppLink)

		// Agent surface
		agent := authed.Group("/")
		agent.Use(middleware.RequireAgent())
		{
			agent.POST("/listings/create", listingHandler.CreateListing)
			agent.PUT("/listings/update", listingHandler.UpdateListing)
			agent.GET("/listings/mine", listingHandler.GetMyListings)
			agent.POST("/applications/update-status", applicationHandler.UpdateApplicationStatus)
			agent.GET("/dashboard/agent", dashboardHandler.AgentDashboard)
		}

		// Buyer surface
		buyer := authed.Group("/")
		buyer.Use(middleware.RequireBuyer())
		{
			buyer.POST("/listings/track-view", engagementHandler.TrackView)
			buyer.GET("/listings/recently-viewed", engagementHandler.RecentlyViewed)
			buyer.GET("/saved-searches", engagementHandler.GetSavedSearches)
			buyer.POST("/saved-searches", engagementHandler.CreateSavedSearch)
			buyer.PUT("/saved-searches", engagementHandler.UpdateSavedSearch)
			buyer.DELETE("/saved-searches", engagementHandler.DeleteSavedSearch)
			buyer.GET("/saved-searches/alerts", engagementHandler.GetSearchAlerts)
			buyer.GET("/dashboard/buyer", dashboardHandler.BuyerDashboard)
		}

		// Admin surface
		admin := authed.Group("/")
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("/listings/approve", listingHandler.ApproveListing)
			admin.POST("/listings/reject", listingHandler.RejectListing)
		}
	}

	return r
}

// SetupServiceRouter configures and returns the internal service Gin engine.
// It only exposes operational commands and is never bound publicly.
func SetupServiceRouter(cfg *config.Config, shutdownChan chan<- struct{}) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.POST("/api", func(c *gin.Context) {
		var req struct {
			Method    string          `json:"method"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
			return
		}

		switch req.Method {
		case "shutdown":
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "Shutdown initiated"})
			select {
			case shutdownChan <- struct{}{}:
			default:
				// Already signaled.
			}
		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
		}
	})
	return r
}
