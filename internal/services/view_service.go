package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/models"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/utils"
)

const propertyViewsCollection = "property_views"

// RecentView pairs a view record with its listing for the buyer's
// recently-viewed feed.
type RecentView struct {
	ViewedAt time.Time       `json:"viewed_at"`
	Listing  *models.Listing `json:"listing"`
}

// IViewService tracks unique property views per buyer.
type IViewService interface {
	RecordView(ctx context.Context, buyerID string, listingID utils.SixID) error
	RecentlyViewed(ctx context.Context, buyerID string, limit int) ([]RecentView, error)
}

// viewService implements IViewService.
type viewService struct {
	db       *mongo.Database
	listings IListingService
}

// NewViewService creates a new ViewService.
func NewViewService(db *mongo.Database, listings IListingService) IViewService {
	return &viewService{db: db, listings: listings}
}

// RecordView upserts the (buyer, listing) view row and refreshes its
// timestamp. The listing's view counter is bumped only when the upsert
// inserted, so each buyer counts once no matter how often they look.
func (s *viewService) RecordView(ctx context.Context, buyerID string, listingID utils.SixID) error {
	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.Status != models.ListingApproved {
		return validationErr("listing %s is not published", listingID.String())
	}

	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{"viewed_at": now},
		"$setOnInsert": bson.M{
			"_id":        utils.NewSixID(),
			"buyer_id":   buyerID,
			"listing_id": listingID,
		},
	}
	result, err := s.db.Collection(propertyViewsCollection).UpdateOne(ctx,
		bson.M{"buyer_id": buyerID, "listing_id": listingID},
		update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to record view of listing %s by buyer %s: %w", listingID.String(), buyerID, err)
	}

	if result.UpsertedCount == 1 {
		if err := s.listings.IncrementViews(ctx, listingID); err != nil {
			// The view row is already down; a lost counter bump is tolerable.
			log.Printf("WARN: failed to bump view counter for listing %s: %v", listingID.String(), err)
		}
	}
	return nil
}

// RecentlyViewed returns the buyer's most recently viewed listings, newest
// first. Listings deleted since the view are skipped.
func (s *viewService) RecentlyViewed(ctx context.Context, buyerID string, limit int) ([]RecentView, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "viewed_at", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := s.db.Collection(propertyViewsCollection).Find(ctx, bson.M{"buyer_id": buyerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch views for buyer %s: %w", buyerID, err)
	}
	defer cursor.Close(ctx)

	views := []models.PropertyView{}
	if err = cursor.All(ctx, &views); err != nil {
		return nil, fmt.Errorf("failed to decode views for buyer %s: %w", buyerID, err)
	}

	recent := []RecentView{}
	for _, view := range views {
		listing, err := s.listings.FindByID(ctx, view.ListingID)
		if err != nil {
			continue
		}
		recent = append(recent, RecentView{ViewedAt: view.ViewedAt, Listing: listing})
	}
	return recent, nil
}
