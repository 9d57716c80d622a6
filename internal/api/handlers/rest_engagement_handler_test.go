package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/models"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/services"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/utils"
)

func newEngagementHandler() (*RestEngagementHandler, *MockViewService, *MockSavedSearchService, *MockMessageService) {
	viewService := new(MockViewService)
	savedSearchService := new(MockSavedSearchService)
	messageService := new(MockMessageService)
	return NewRestEngagementHandler(viewService, savedSearchService, messageService),
		viewService, savedSearchService, messageService
}

func TestTrackView_RecordsView(t *testing.T) {
	handler, viewService, _, _ := newEngagementHandler()

	buyer := testBuyer()
	listingID := utils.NewSixID()
	viewService.On("RecordView", mock.Anything, buyer.ID, listingID).Return(nil)

	router := newTestRouter(buyer)
	router.POST("/listings/track-view", handler.TrackView)

	recorder := performJSON(t, router, http.MethodPost, "/listings/track-view", map[string]any{
		"listing_id": listingID.String(),
	})

	assert.Equal(t, http.StatusOK, recorder.Code)
	viewService.AssertExpectations(t)
}

func TestTrackView_UnpublishedListing(t *testing.T) {
	handler, viewService, _, _ := newEngagementHandler()

	viewService.On("RecordView", mock.Anything, mock.Anything, mock.Anything).Return(services.ErrValidation)

	router := newTestRouter(testBuyer())
	router.POST("/listings/track-view", handler.TrackView)

	recorder := performJSON(t, router, http.MethodPost, "/listings/track-view", map[string]any{
		"listing_id": utils.NewSixID().String(),
	})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRecentlyViewed_DefaultsLimit(t *testing.T) {
	handler, viewService, _, _ := newEngagementHandler()

	buyer := testBuyer()
	recent := []services.RecentView{{ViewedAt: time.Now(), Listing: &models.Listing{ID: utils.NewSixID()}}}
	viewService.On("RecentlyViewed", mock.Anything, buyer.ID, 10).Return(recent, nil)

	router := newTestRouter(buyer)
	router.GET("/listings/recently-viewed", handler.RecentlyViewed)

	recorder := performJSON(t, router, http.MethodGet, "/listings/recently-viewed", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Len(t, body["recently_viewed"], 1)
	viewService.AssertExpectations(t)
}

func TestCreateSavedSearch_MapsCriteria(t *testing.T) {
	handler, _, savedSearchService, _ := newEngagementHandler()

	buyer := testBuyer()
	created := &models.SavedSearch{ID: utils.NewSixID(), BuyerID: buyer.ID, Name: "Kingston rentals"}
	savedSearchService.On("Create", mock.Anything, buyer.ID, mock.MatchedBy(func(in services.SavedSearchInput) bool {
		return in.Name == "Kingston rentals" &&
			in.Location == "Kingston" &&
			in.MinPrice != nil && *in.MinPrice == 50000 &&
			in.AlertsEnabled != nil && !*in.AlertsEnabled
	})).Return(created, nil)

	router := newTestRouter(buyer)
	router.POST("/saved-searches", handler.CreateSavedSearch)

	recorder := performJSON(t, router, http.MethodPost, "/saved-searches", map[string]any{
		"name": "Kingston rentals",
		"search_criteria": map[string]any{
			"location":  "Kingston",
			"min_price": 50000,
		},
		"alerts_enabled": false,
	})

	assert.Equal(t, http.StatusCreated, recorder.Code)
	savedSearchService.AssertExpectations(t)
}

func TestUpdateSavedSearch_InvalidID(t *testing.T) {
	handler, _, _, _ := newEngagementHandler()

	router := newTestRouter(testBuyer())
	router.PUT("/saved-searches", handler.UpdateSavedSearch)

	recorder := performJSON(t, router, http.MethodPut, "/saved-searches", map[string]any{
		"id":   "nope",
		"name": "Renamed",
	})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestDeleteSavedSearch_NotFound(t *testing.T) {
	handler, _, savedSearchService, _ := newEngagementHandler()

	buyer := testBuyer()
	searchID := utils.NewSixID()
	savedSearchService.On("Delete", mock.Anything, searchID, buyer.ID).Return(services.ErrNotFound)

	router := newTestRouter(buyer)
	router.DELETE("/saved-searches", handler.DeleteSavedSearch)

	recorder := performJSON(t, router, http.MethodDelete, "/saved-searches?id="+searchID.String(), nil)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestGetSearchAlerts_ReturnsAlerts(t *testing.T) {
	handler, _, savedSearchService, _ := newEngagementHandler()

	buyer := testBuyer()
	alerts := []models.SearchAlert{{ID: utils.NewSixID(), BuyerID: buyer.ID}}
	savedSearchService.On("FindAlertsByBuyerID", mock.Anything, buyer.ID).Return(alerts, nil)

	router := newTestRouter(buyer)
	router.GET("/saved-searches/alerts", handler.GetSearchAlerts)

	recorder := performJSON(t, router, http.MethodGet, "/saved-searches/alerts", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Len(t, body["alerts"], 1)
}

func TestGetMessages_ParsesFilters(t *testing.T) {
	handler, _, _, messageService := newEngagementHandler()

	buyer := testBuyer()
	listingID := utils.NewSixID()
	messageService.On("List", mock.Anything, buyer, mock.MatchedBy(func(f services.MessageFilter) bool {
		return f.ListingID != nil && *f.ListingID == listingID && f.ApplicationID == nil
	})).Return([]models.Message{}, nil)

	router := newTestRouter(buyer)
	router.GET("/messages", handler.GetMessages)

	recorder := performJSON(t, router, http.MethodGet, "/messages?listing_id="+listingID.String(), nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	messageService.AssertExpectations(t)
}

func TestSendMessage_RequiresBody(t *testing.T) {
	handler, _, _, _ := newEngagementHandler()

	router := newTestRouter(testBuyer())
	router.POST("/messages", handler.SendMessage)

	recorder := performJSON(t, router, http.MethodPost, "/messages", map[string]any{
		"agent_id": "agent-uuid-1",
	})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestSendMessage_CreatesMessage(t *testing.T) {
	handler, _, _, messageService := newEngagementHandler()

	buyer := testBuyer()
	sent := &models.Message{ID: utils.NewSixID(), BuyerID: buyer.ID, Body: "Is this still available?"}
	messageService.On("Send", mock.Anything, buyer, mock.MatchedBy(func(in services.SendMessageInput) bool {
		return in.AgentID == "agent-uuid-1" && in.Body == "Is this still available?"
	})).Return(sent, nil)

	router := newTestRouter(buyer)
	router.POST("/messages", handler.SendMessage)

	recorder := performJSON(t, router, http.MethodPost, "/messages", map[string]any{
		"agent_id": "agent-uuid-1",
		"message":  "Is this still available?",
	})

	assert.Equal(t, http.StatusCreated, recorder.Code)
	messageService.AssertExpectations(t)
}
