package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/db"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/models"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/utils"
)

const (
	savedSearchesCollection = "saved_searches"
	searchAlertsCollection  = "search_alerts"
)

// SavedSearchInput carries the caller-supplied fields of a saved search.
type SavedSearchInput struct {
	Name          string
	Location      string
	MinPrice      *float64
	MaxPrice      *float64
	AlertsEnabled *bool
}

// ISavedSearchService manages buyer saved searches and the alert rows
// produced when newly approved listings match them.
type ISavedSearchService interface {
	Create(ctx context.Context, buyerID string, in SavedSearchInput) (*models.SavedSearch, error)
	Update(ctx context.Context, searchID utils.SixID, buyerID string, in SavedSearchInput) (*models.SavedSearch, error)
	Delete(ctx context.Context, searchID utils.SixID, buyerID string) error
	FindByBuyerID(ctx context.Context, buyerID string) ([]models.SavedSearch, error)
	FindMatching(ctx context.Context, listing *models.Listing) ([]models.SavedSearch, error)
	CreateAlert(ctx context.Context, search *models.SavedSearch, listingID utils.SixID) error
	FindAlertsByBuyerID(ctx context.Context, buyerID string) ([]models.SearchAlert, error)
}

// savedSearchService implements ISavedSearchService.
type savedSearchService struct {
	db *mongo.Database
}

// NewSavedSearchService creates a new SavedSearchService.
func NewSavedSearchService(db *mongo.Database) ISavedSearchService {
	return &savedSearchService{db: db}
}

// Create stores a saved search for the buyer. Alerts default to enabled.
func (s *savedSearchService) Create(ctx context.Context, buyerID string, in SavedSearchInput) (*models.SavedSearch, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationErr("name is required")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MinPrice > *in.MaxPrice {
		return nil, validationErr("min_price cannot exceed max_price")
	}

	alertsEnabled := true
	if in.AlertsEnabled != nil {
		alertsEnabled = *in.AlertsEnabled
	}

	now := time.Now().UTC()
	search := &models.SavedSearch{
		ID:            utils.NewSixID(),
		BuyerID:       buyerID,
		Name:          in.Name,
		Location:      in.Location,
		MinPrice:      in.MinPrice,
		MaxPrice:      in.MaxPrice,
		AlertsEnabled: alertsEnabled,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	_, err := s.db.Collection(savedSearchesCollection).InsertOne(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("failed to insert saved search for buyer %s: %w", buyerID, err)
	}
	return search, nil
}

// Update rewrites a saved search owned by the buyer.
func (s *savedSearchService) Update(ctx context.Context, searchID utils.SixID, buyerID string, in SavedSearchInput) (*models.SavedSearch, error) {
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MinPrice > *in.MaxPrice {
		return nil, validationErr("min_price cannot exceed max_price")
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if strings.TrimSpace(in.Name) != "" {
		set["name"] = in.Name
	}
	set["location"] = in.Location
	set["min_price"] = in.MinPrice
	set["max_price"] = in.MaxPrice
	if in.AlertsEnabled != nil {
		set["alerts_enabled"] = *in.AlertsEnabled
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.SavedSearch
	err := s.db.Collection(savedSearchesCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": searchID, "buyer_id": buyerID},
		bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFoundErr("saved search %s not found for buyer %s", searchID.String(), buyerID)
		}
		return nil, fmt.Errorf("failed to update saved search %s: %w", searchID.String(), err)
	}
	return &updated, nil
}

// Delete removes a saved search owned by the buyer.
func (s *savedSearchService) Delete(ctx context.Context, searchID utils.SixID, buyerID string) error {
	result, err := s.db.Collection(savedSearchesCollection).DeleteOne(ctx,
		bson.M{"_id": searchID, "buyer_id": buyerID})
	if err != nil {
		return fmt.Errorf("failed to delete saved search %s: %w", searchID.String(), err)
	}
	if result.DeletedCount == 0 {
		return notFoundErr("saved search %s not found for buyer %s", searchID.String(), buyerID)
	}
	return nil
}

// FindByBuyerID returns the buyer's saved searches, newest first.
func (s *savedSearchService) FindByBuyerID(ctx context.Context, buyerID string) ([]models.SavedSearch, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.db.Collection(savedSearchesCollection).Find(ctx, bson.M{"buyer_id": buyerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch saved searches for buyer %s: %w", buyerID, err)
	}
	defer cursor.Close(ctx)

	searches := []models.SavedSearch{}
	if err = cursor.All(ctx, &searches); err != nil {
		return nil, fmt.Errorf("failed to decode saved searches: %w", err)
	}
	return searches, nil
}

// FindMatching returns every alert-enabled saved search the listing
// satisfies: location is a case-insensitive substring match, price bounds
// are inclusive and optional.
func (s *savedSearchService) FindMatching(ctx context.Context, listing *models.Listing) ([]models.SavedSearch, error) {
	cursor, err := s.db.Collection(savedSearchesCollection).Find(ctx, bson.M{"alerts_enabled": true})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch alert-enabled searches: %w", err)
	}
	defer cursor.Close(ctx)

	candidates := []models.SavedSearch{}
	if err = cursor.All(ctx, &candidates); err != nil {
		return nil, fmt.Errorf("failed to decode alert-enabled searches: %w", err)
	}

	matches := []models.SavedSearch{}
	for _, search := range candidates {
		if search.Location != "" &&
			!strings.Contains(strings.ToLower(listing.Location), strings.ToLower(search.Location)) {
			continue
		}
		if search.MinPrice != nil && listing.Price < *search.MinPrice {
			continue
		}
		if search.MaxPrice != nil && listing.Price > *search.MaxPrice {
			continue
		}
		matches = append(matches, search)
	}
	return matches, nil
}

// CreateAlert records that a listing matched a saved search. The unique
// index on (saved_search_id, listing_id) makes replays no-ops, so a rerun of
// the scan never duplicates alerts.
func (s *savedSearchService) CreateAlert(ctx context.Context, search *models.SavedSearch, listingID utils.SixID) error {
	alert := &models.SearchAlert{
		ID:            utils.NewSixID(),
		SavedSearchID: search.ID,
		BuyerID:       search.BuyerID,
		ListingID:     listingID,
		CreatedAt:     time.Now().UTC(),
	}
	_, err := s.db.Collection(searchAlertsCollection).InsertOne(ctx, alert)
	if err != nil {
		if db.IsMongoDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("failed to insert alert for search %s: %w", search.ID.String(), err)
	}
	return nil
}

// FindAlertsByBuyerID returns the buyer's alerts, newest first.
func (s *savedSearchService) FindAlertsByBuyerID(ctx context.Context, buyerID string) ([]models.SearchAlert, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.db.Collection(searchAlertsCollection).Find(ctx, bson.M{"buyer_id": buyerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch alerts for buyer %s: %w", buyerID, err)
	}
	defer cursor.Close(ctx)

	alerts := []models.SearchAlert{}
	if err = cursor.All(ctx, &alerts); err != nil {
		return nil, fmt.Errorf("failed to decode alerts: %w", err)
	}
	return alerts, nil
}
