package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/models"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/services"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/utils"
)

func TestAgentDashboard_ComposesSections(t *testing.T) {
	listingService := new(MockListingService)
	applicationService := new(MockApplicationService)
	analyticsService := new(MockAnalyticsService)
	handler := NewRestDashboardHandler(listingService, applicationService, analyticsService)

	agent := testAgent()
	listingService.On("FindByAgentID", mock.Anything, agent.ID).
		Return([]models.Listing{{ID: utils.NewSixID(), AgentID: agent.ID}}, nil)
	applicationService.On("FindByAgentID", mock.Anything, agent.ID).
		Return([]models.Application{{ID: utils.NewSixID(), AgentID: agent.ID}}, nil)
	analyticsService.On("ForAgent", mock.Anything, agent.ID).
		Return(&services.AgentAnalytics{TotalListings: 1, TotalApplications: 1}, nil)

	router := newTestRouter(agent)
	router.GET("/dashboard/agent", handler.AgentDashboard)

	recorder := performJSON(t, router, http.MethodGet, "/dashboard/agent", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Len(t, body["listings"], 1)
	assert.Len(t, body["applications"], 1)
	assert.Contains(t, body, "analytics")
}

func TestBuyerDashboard_ComposesSections(t *testing.T) {
	applicationService := new(MockApplicationService)
	analyticsService := new(MockAnalyticsService)
	handler := NewRestDashboardHandler(new(MockListingService), applicationService, analyticsService)

	buyer := testBuyer()
	applicationService.On("FindByBuyerID", mock.Anything, buyer.ID).
		Return([]models.Application{{ID: utils.NewSixID(), BuyerID: buyer.ID}}, nil)
	analyticsService.On("ForBuyer", mock.Anything, buyer.ID).
		Return(&services.BuyerAnalytics{TotalApplications: 1, SubmittedApplications: 1}, nil)

	router := newTestRouter(buyer)
	router.GET("/dashboard/buyer", handler.BuyerDashboard)

	recorder := performJSON(t, router, http.MethodGet, "/dashboard/buyer", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Len(t, body["applications"], 1)
	assert.Contains(t, body, "analytics")
}

func TestAnalytics_ShapedByRole(t *testing.T) {
	t.Run("agent", func(t *testing.T) {
		analyticsService := new(MockAnalyticsService)
		handler := NewRestDashboardHandler(new(MockListingService), new(MockApplicationService), analyticsService)

		agent := testAgent()
		analyticsService.On("ForAgent", mock.Anything, agent.ID).
			Return(&services.AgentAnalytics{ApprovedListings: 3}, nil)

		router := newTestRouter(agent)
		router.GET("/analytics", handler.Analytics)

		recorder := performJSON(t, router, http.MethodGet, "/analytics", nil)

		assert.Equal(t, http.StatusOK, recorder.Code)
		analyticsService.AssertNotCalled(t, "ForBuyer", mock.Anything, mock.Anything)
	})

	t.Run("buyer", func(t *testing.T) {
		analyticsService := new(MockAnalyticsService)
		handler := NewRestDashboardHandler(new(MockListingService), new(MockApplicationService), analyticsService)

		buyer := testBuyer()
		analyticsService.On("ForBuyer", mock.Anything, buyer.ID).
			Return(&services.BuyerAnalytics{AcceptedApplications: 2}, nil)

		router := newTestRouter(buyer)
		router.GET("/analytics", handler.Analytics)

		recorder := performJSON(t, router, http.MethodGet, "/analytics", nil)

		assert.Equal(t, http.StatusOK, recorder.Code)
		analyticsService.AssertNotCalled(t, "ForAgent", mock.Anything, mock.Anything)
	})
}
