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

func TestCreateApplication_BuyerAppliesToListing(t *testing.T) {
	applicationService := new(MockApplicationService)
	handler := NewRestApplicationHandler(applicationService)

	buyer := testBuyer()
	listingID := utils.NewSixID()
	created := &models.Application{ID: utils.NewSixID(), BuyerID: buyer.ID, ListingID: listingID}
	applicationService.On("Create", mock.Anything, buyer, mock.MatchedBy(func(in services.ApplicationIntake) bool {
		return in.ListingID == listingID.String() && in.ApplicationType == "Rent"
	})).Return(created, nil)

	router := newTestRouter(buyer)
	router.POST("/applications/create", handler.CreateApplication)

	recorder := performJSON(t, router, http.MethodPost, "/applications/create", map[string]any{
		"listing_id":       listingID.String(),
		"application_type": "Rent",
		"monthly_income":   "JMD 100,000 - 150,000",
	})

	assert.Equal(t, http.StatusCreated, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Contains(t, body, "application")
	applicationService.AssertExpectations(t)
}

func TestCreateApplication_AgentCannotApplyToListing(t *testing.T) {
	applicationService := new(MockApplicationService)
	handler := NewRestApplicationHandler(applicationService)

	router := newTestRouter(testAgent())
	router.POST("/applications/create", handler.CreateApplication)

	recorder := performJSON(t, router, http.MethodPost, "/applications/create", map[string]any{
		"listing_id": utils.NewSixID().String(),
	})

	assert.Equal(t, http.StatusForbidden, recorder.Code)
	applicationService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateApplication_AgentAllowedOnGeneralIntake(t *testing.T) {
	applicationService := new(MockApplicationService)
	handler := NewRestApplicationHandler(applicationService)

	agent := testAgent()
	created := &models.Application{ID: utils.NewSixID(), BuyerID: agent.ID}
	applicationService.On("Create", mock.Anything, agent, mock.Anything).Return(created, nil)

	router := newTestRouter(agent)
	router.POST("/applications/create", handler.CreateApplication)

	recorder := performJSON(t, router, http.MethodPost, "/applications/create", map[string]any{
		"application_type": "Buy",
		"purchase_budget":  "10M+",
	})

	assert.Equal(t, http.StatusCreated, recorder.Code)
	applicationService.AssertExpectations(t)
}

func TestUpdateApplicationStatus_PassesStatusThrough(t *testing.T) {
	applicationService := new(MockApplicationService)
	handler := NewRestApplicationHandler(applicationService)

	agent := testAgent()
	applicationID := utils.NewSixID()
	updated := &models.Application{ID: applicationID, Status: models.ApplicationAccepted}
	applicationService.On("UpdateStatus", mock.Anything, applicationID, agent, models.ApplicationAccepted).
		Return(updated, nil)

	router := newTestRouter(agent)
	router.POST("/applications/update-status", handler.UpdateApplicationStatus)

	recorder := performJSON(t, router, http.MethodPost, "/applications/update-status", map[string]any{
		"application_id": applicationID.String(),
		"status":         "accepted",
	})

	assert.Equal(t, http.StatusOK, recorder.Code)
	applicationService.AssertExpectations(t)
}

func TestUpdateApplicationStatus_InvalidStatusRejected(t *testing.T) {
	applicationService := new(MockApplicationService)
	handler := NewRestApplicationHandler(applicationService)

	agent := testAgent()
	applicationID := utils.NewSixID()
	applicationService.On("UpdateStatus", mock.Anything, applicationID, agent, models.ApplicationStatus("bogus")).
		Return(nil, services.ErrValidation)

	router := newTestRouter(agent)
	router.POST("/applications/update-status", handler.UpdateApplicationStatus)

	recorder := performJSON(t, router, http.MethodPost, "/applications/update-status", map[string]any{
		"application_id": applicationID.String(),
		"status":         "bogus",
	})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestGetMyApplications_SplitsByRole(t *testing.T) {
	t.Run("buyer sees own submissions", func(t *testing.T) {
		applicationService := new(MockApplicationService)
		handler := NewRestApplicationHandler(applicationService)

		buyer := testBuyer()
		applicationService.On("FindByBuyerID", mock.Anything, buyer.ID).
			Return([]models.Application{{ID: utils.NewSixID(), BuyerID: buyer.ID}}, nil)

		router := newTestRouter(buyer)
		router.GET("/applications/mine", handler.GetMyApplications)

		recorder := performJSON(t, router, http.MethodGet, "/applications/mine", nil)

		assert.Equal(t, http.StatusOK, recorder.Code)
		applicationService.AssertNotCalled(t, "FindByAgentID", mock.Anything, mock.Anything)
	})

	t.Run("agent sees routed applications", func(t *testing.T) {
		applicationService := new(MockApplicationService)
		handler := NewRestApplicationHandler(applicationService)

		agent := testAgent()
		applicationService.On("FindByAgentID", mock.Anything, agent.ID).
			Return([]models.Application{{ID: utils.NewSixID(), AgentID: agent.ID}}, nil)

		router := newTestRouter(agent)
		router.GET("/applications/mine", handler.GetMyApplications)

		recorder := performJSON(t, router, http.MethodGet, "/applications/mine", nil)

		assert.Equal(t, http.StatusOK, recorder.Code)
		applicationService.AssertNotCalled(t, "FindByBuyerID", mock.Anything, mock.Anything)
	})
}
