package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/api/middleware"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/config"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/payments"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/services"
)

// RestBillingHandler handles the hosted-checkout billing flow.
type RestBillingHandler struct {
	cfg                 *config.Config
	paymentsClient      payments.IClient
	subscriptionService services.ISubscriptionService
}

// NewRestBillingHandler creates a new RestBillingHandler.
func NewRestBillingHandler(cfg *config.Config, paymentsClient payments.IClient, subscriptionService services.ISubscriptionService) *RestBillingHandler {
	return &RestBillingHandler{
		cfg:                 cfg,
		paymentsClient:      paymentsClient,
		subscriptionService: subscriptionService,
	}
}

// priceID maps a plan type to its configured provider price, or "" for an
// unknown plan.
func (h *RestBillingHandler) priceID(planType string) string {
	switch planType {
	case "agent_monthly":
		return h.cfg.StripeAgentMonthlyPrice
	case "agent_yearly":
		return h.cfg.StripeAgentYearlyPrice
	case "buyer_monthly":
		return h.cfg.StripeBuyerMonthlyPrice
	case "buyer_yearly":
		return h.cfg.StripeBuyerYearlyPrice
	}
	return ""
}

type checkoutRequest struct {
	PlanType string `json:"plan_type" binding:"required"`
	UserRole string `json:"user_role"`
}

// CreateCheckout handles POST /stripe/checkout. The plan's role prefix must
// match both the role the client claims and the role the account actually
// holds: a mismatched claim is a bad request, a mismatched account is
// forbidden.
func (h *RestBillingHandler) CreateCheckout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	priceID := h.priceID(req.PlanType)
	if priceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan type"})
		return
	}

	if req.UserRole != "" && !strings.HasPrefix(req.PlanType, req.UserRole+"_") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Plan type does not match user role"})
		return
	}

	user := middleware.CurrentUser(c)
	if !strings.HasPrefix(req.PlanType, string(user.Role)+"_") {
		c.JSON(http.StatusForbidden, gin.H{"error": "User role mismatch"})
		return
	}

	session, err := h.paymentsClient.CreateCheckoutSession(c.Request.Context(), payments.CheckoutParams{
		PriceID:       priceID,
		CustomerEmail: user.Email,
		SuccessURL:    h.cfg.AppBaseURL + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     h.cfg.AppBaseURL + "/cancel",
		Metadata: map[string]string{
			"user_id":   user.ID,
			"user_role": string(user.Role),
			"plan_type": req.PlanType,
		},
	})
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"checkout_url": session.URL,
		"session_id":   session.ID,
	})
}

type paymentSuccessRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// PaymentSuccess handles POST /stripe/payment-success: verifies the session
// with the provider and activates the caller's subscription. Safe to replay;
// the upsert is idempotent.
func (h *RestBillingHandler) PaymentSuccess(c *gin.Context) {
	var req paymentSuccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	session, err := h.paymentsClient.GetCheckoutSession(c.Request.Context(), req.SessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not retrieve checkout session"})
		return
	}
	if !session.Paid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment not completed"})
		return
	}

	user := middleware.CurrentUser(c)
	if session.Metadata["user_id"] != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Session does not belong to user"})
		return
	}

	subscription, err := h.subscriptionService.UpsertFromCheckout(c.Request.Context(), user.ID, services.CheckoutResult{
		StripeSubscriptionID: session.Subscription,
		StripeCustomerID:     session.Customer,
		PlanType:             session.Metadata["plan_type"],
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Payment successful",
		"subscription": subscription,
	})
}

// GetSubscription handles GET /stripe/subscription: the caller's current
// subscription row, if any.
func (h *RestBillingHandler) GetSubscription(c *gin.Context) {
	user := middleware.CurrentUser(c)
	subscription, err := h.subscriptionService.FindByUserID(c.Request.Context(), user.ID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"subscription": nil})
			return
		}
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscription": subscription})
}
