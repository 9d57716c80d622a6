package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/db"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/models"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/utils"
)

const listingsCollection = "listings"

// ListingDetails carries the optional property attributes of a listing.
type ListingDetails struct {
	PropertyType        string
	ListingType         string
	StreetAddress       string
	Parish              string
	Bedrooms            int
	Bathrooms           int
	InteriorDetails     string
	PropertySize        string
	AvailabilityStatus  string
	ViewingInstructions string
}

// CreateListingInput carries the caller-supplied fields of a new listing.
type CreateListingInput struct {
	Title       string
	Description string
	Price       float64
	Location    string
	Details     ListingDetails
	Images      []string
	Documents   []string
	Status      models.ListingStatus // empty means draft
}

// UpdateListingInput carries partial-update fields. Nil means "leave
// unchanged".
type UpdateListingInput struct {
	Title       *string
	Description *string
	Price       *float64
	Location    *string
	Details     *ListingDetails
	Images      *[]string
	Documents   *[]string
	Status      *models.ListingStatus
}

// BrowseFilter is the public browse query: approved listings only, optionally
// narrowed by location substring and inclusive price bounds.
type BrowseFilter struct {
	Location string
	MinPrice *float64
	MaxPrice *float64
	Offset   int
	Limit    int
}

// IListingService defines the listing lifecycle operations.
type IListingService interface {
	Create(ctx context.Context, agentID string, in CreateListingInput) (*models.Listing, error)
	FindByID(ctx context.Context, listingID utils.SixID) (*models.Listing, error)
	Update(ctx context.Context, listingID utils.SixID, caller *models.User, in UpdateListingInput) (*models.Listing, error)
	Approve(ctx context.Context, listingID utils.SixID) (*models.Listing, error)
	Reject(ctx context.Context, listingID utils.SixID, reason string) (*models.Listing, error)
	Browse(ctx context.Context, filter BrowseFilter) ([]models.Listing, int64, error)
	FindByAgentID(ctx context.Context, agentID string) ([]models.Listing, error)
	IncrementViews(ctx context.Context, listingID utils.SixID) error
}

// listingService implements IListingService.
type listingService struct {
	db            *mongo.Database
	subscriptions ISubscriptionService
}

// NewListingService creates a new ListingService. Approval consults the
// subscription service: a listing cannot go live unless its owning agent is
// subscribed at approval time.
func NewListingService(db *mongo.Database, subscriptions ISubscriptionService) IListingService {
	return &listingService{db: db, subscriptions: subscriptions}
}

// Create inserts a new listing owned by agentID. The initial status is
// constrained to draft or pending_review; the view counter starts at zero.
func (s *listingService) Create(ctx context.Context, agentID string, in CreateListingInput) (*models.Listing, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" || strings.TrimSpace(in.Location) == "" {
		return nil, validationErr("title, description and location are required")
	}
	if in.Price <= 0 {
		return nil, validationErr("price must be greater than zero")
	}

	status := in.Status
	if status == "" {
		status = models.ListingDraft
	}
	if status != models.ListingDraft && status != models.ListingPendingReview {
		return nil, validationErr("initial status must be draft or pending_review, got %q", status)
	}

	collection := s.db.Collection(listingsCollection)
	now := time.Now().UTC()

	var newListing *models.Listing
	operation := func() error {
		newListing = &models.Listing{
			ID:          utils.NewSixID(),
			AgentID:     agentID,
			Title:       in.Title,
			Description: in.Description,
			Price:       in.Price,
			Location:    in.Location,
			Status:      status,

			PropertyType:        in.Details.PropertyType,
			ListingType:         in.Details.ListingType,
			StreetAddress:       in.Details.StreetAddress,
			Parish:              in.Details.Parish,
			Bedrooms:            in.Details.Bedrooms,
			Bathrooms:           in.Details.Bathrooms,
			InteriorDetails:     in.Details.InteriorDetails,
			PropertySize:        in.Details.PropertySize,
			AvailabilityStatus:  in.Details.AvailabilityStatus,
			ViewingInstructions: in.Details.ViewingInstructions,

			Images:    emptyIfNil(in.Images),
			Documents: emptyIfNil(in.Documents),
			Views:     0,
			CreatedAt: now,
			UpdatedAt: now,
		}
		_, insertErr := collection.InsertOne(ctx, newListing)
		return insertErr
	}

	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to insert listing for agent %s after multiple retries: %w", agentID, err)
	}
	return newListing, nil
}

func (s *listingService) FindByID(ctx context.Context, listingID utils.SixID) (*models.Listing, error) {
	var listing models.Listing
	err := s.db.Collection(listingsCollection).FindOne(ctx, bson.M{"_id": listingID}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFoundErr("listing %s not found", listingID.String())
		}
		return nil, fmt.Errorf("error finding listing %s: %w", listingID.String(), err)
	}
	return &listing, nil
}

// Update writes the supplied fields to a listing owned by the caller (admins
// bypass the ownership check). A supplied status must belong to the
// five-value domain; no transition-table enforcement happens here.
func (s *listingService) Update(ctx context.Context, listingID utils.SixID, caller *models.User, in UpdateListingInput) (*models.Listing, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if in.Title != nil {
		set["title"] = *in.Title
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.Price != nil {
		if *in.Price <= 0 {
			return nil, validationErr("price must be greater than zero")
		}
		set["price"] = *in.Price
	}
	if in.Location != nil {
		set["location"] = *in.Location
	}
	if in.Details != nil {
		set["property_type"] = in.Details.PropertyType
		set["listing_type"] = in.Details.ListingType
		set["street_address"] = in.Details.StreetAddress
		set["parish"] = in.Details.Parish
		set["bedrooms"] = in.Details.Bedrooms
		set["bathrooms"] = in.Details.Bathrooms
		set["interior_details"] = in.Details.InteriorDetails
		set["property_size"] = in.Details.PropertySize
		set["availability_status"] = in.Details.AvailabilityStatus
		set["viewing_instructions"] = in.Details.ViewingInstructions
	}
	if in.Images != nil {
		set["images"] = *in.Images
	}
	if in.Documents != nil {
		set["documents"] = *in.Documents
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, validationErr("invalid listing status %q", *in.Status)
		}
		set["status"] = *in.Status
	}
	if len(set) == 1 {
		return nil, validationErr("no fields provided for update")
	}

	filter := bson.M{"_id": listingID}
	if caller.Role != models.RoleAdmin {
		filter["agent_id"] = caller.ID
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Listing
	err := s.db.Collection(listingsCollection).FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Diagnose: missing listing vs someone else's listing.
			if _, findErr := s.FindByID(ctx, listingID); findErr != nil {
				return nil, findErr
			}
			return nil, forbiddenErr("listing %s does not belong to agent %s", listingID.String(), caller.ID)
		}
		return nil, fmt.Errorf("failed to update listing %s: %w", listingID.String(), err)
	}
	return &updated, nil
}

// Approve transitions a pending_review listing to approved and stamps
// published_at. The owning agent must hold an active subscription at approval
// time, not at creation time. The status guard rides in the update filter so
// concurrent approvals cannot both succeed.
func (s *listingService) Approve(ctx context.Context, listingID utils.SixID) (*models.Listing, error) {
	listing, err := s.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status != models.ListingPendingReview {
		return nil, conflictErr("listing %s is %s, only pending_review listings can be approved", listingID.String(), listing.Status)
	}

	subscribed, err := s.subscriptions.HasActiveSubscription(ctx, listing.AgentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check subscription for agent %s: %w", listing.AgentID, err)
	}
	if !subscribed {
		return nil, forbiddenErr("agent not subscribed")
	}

	now := time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var approved models.Listing
	err = s.db.Collection(listingsCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": listingID, "status": models.ListingPendingReview},
		bson.M{"$set": bson.M{"status": models.ListingApproved, "published_at": now, "updated_at": now}},
		opts).Decode(&approved)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Lost a race: somebody moved it out of pending_review between
			// the check and the write.
			current, findErr := s.FindByID(ctx, listingID)
			if findErr != nil {
				return nil, findErr
			}
			return nil, conflictErr("listing %s is %s, only pending_review listings can be approved", listingID.String(), current.Status)
		}
		return nil, fmt.Errorf("failed to approve listing %s: %w", listingID.String(), err)
	}
	return &approved, nil
}

// Reject transitions a pending_review listing to rejected. The reason is
// accepted for the audit log line but not persisted.
func (s *listingService) Reject(ctx context.Context, listingID utils.SixID, reason string) (*models.Listing, error) {
	now := time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var rejected models.Listing
	err := s.db.Collection(listingsCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": listingID, "status": models.ListingPendingReview},
		bson.M{"$set": bson.M{"status": models.ListingRejected, "updated_at": now}},
		opts).Decode(&rejected)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			current, findErr := s.FindByID(ctx, listingID)
			if findErr != nil {
				return nil, findErr
			}
			return nil, conflictErr("listing %s is %s, only pending_review listings can be rejected", listingID.String(), current.Status)
		}
		return nil, fmt.Errorf("failed to reject listing %s: %w", listingID.String(), err)
	}
	return &rejected, nil
}

// Browse returns approved listings matching the filter, most recently
// published first, along with the exact total count for the filter.
func (s *listingService) Browse(ctx context.Context, filter BrowseFilter) ([]models.Listing, int64, error) {
	collection := s.db.Collection(listingsCollection)

	query := bson.M{"status": models.ListingApproved}
	if filter.Location != "" {
		query["location"] = bson.M{"$regex": regexp.QuoteMeta(filter.Location), "$options": "i"}
	}
	price := bson.M{}
	if filter.MinPrice != nil {
		price["$gte"] = *filter.MinPrice
	}
	if filter.MaxPrice != nil {
		price["$lte"] = *filter.MaxPrice
	}
	if len(price) > 0 {
		query["price"] = price
	}

	total, err := collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count browse results: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "published_at", Value: -1}}).
		SetSkip(int64(filter.Offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute browse query: %w", err)
	}
	defer cursor.Close(ctx)

	listings := []models.Listing{}
	if err = cursor.All(ctx, &listings); err != nil {
		return nil, 0, fmt.Errorf("failed to decode browse results: %w", err)
	}
	return listings, total, nil
}

// FindByAgentID returns all of an agent's listings, newest first.
func (s *listingService) FindByAgentID(ctx context.Context, agentID string) ([]models.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.db.Collection(listingsCollection).Find(ctx, bson.M{"agent_id": agentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listings for agent %s: %w", agentID, err)
	}
	defer cursor.Close(ctx)

	listings := []models.Listing{}
	if err = cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode listings for agent %s: %w", agentID, err)
	}
	return listings, nil
}

// IncrementViews bumps the unique-view counter. Callers invoke this only when
// a property-view row was actually inserted, so the counter tracks unique
// viewers.
func (s *listingService) IncrementViews(ctx context.Context, listingID utils.SixID) error {
	result, err := s.db.Collection(listingsCollection).UpdateByID(ctx, listingID,
		bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return fmt.Errorf("failed to increment views for listing %s: %w", listingID.String(), err)
	}
	if result.MatchedCount == 0 {
		return notFoundErr("listing %s not found", listingID.String())
	}
	return nil
}

func emptyIfNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
