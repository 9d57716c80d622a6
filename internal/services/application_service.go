package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/db"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/models"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/utils"
)

const applicationsCollection = "applications"

// IApplicationService defines the application lifecycle operations.
type IApplicationService interface {
	Create(ctx context.Context, buyer *models.User, in ApplicationIntake) (*models.Application, error)
	FindByID(ctx context.Context, applicationID utils.SixID) (*models.Application, error)
	UpdateStatus(ctx context.Context, applicationID utils.SixID, caller *models.User, newStatus models.ApplicationStatus) (*models.Application, error)
	FindByBuyerID(ctx context.Context, buyerID string) ([]models.Application, error)
	FindByAgentID(ctx context.Context, agentID string) ([]models.Application, error)
}

// applicationService implements IApplicationService.
type applicationService struct {
	db               *mongo.Database
	users            IUserService
	listings         IListingService
	systemAgentEmail string
}

// NewApplicationService creates a new ApplicationService. systemAgentEmail
// identifies the fallback agent account used for applications that arrive
// without a listing when no real agent exists yet.
func NewApplicationService(db *mongo.Database, users IUserService, listings IListingService, systemAgentEmail string) IApplicationService {
	return &applicationService{
		db:               db,
		users:            users,
		listings:         listings,
		systemAgentEmail: systemAgentEmail,
	}
}

// Create submits a buyer's application. With a listing_id the listing must
// exist and be approved; without one a routing agent is resolved and a draft
// placeholder listing is created to hang the application on. Profile fields
// riding along in the payload are merged into the buyer's account, but a
// failure there never sinks the application. The unique index on
// (listing_id, buyer_id) rejects a second application to the same listing.
func (s *applicationService) Create(ctx context.Context, buyer *models.User, in ApplicationIntake) (*models.Application, error) {
	normalized := NormalizeIntake(in)

	var listingID utils.SixID
	var agentID string

	if strings.TrimSpace(in.ListingID) != "" {
		parsed, err := utils.ParseSixID(in.ListingID)
		if err != nil {
			return nil, validationErr("invalid listing_id: %s", in.ListingID)
		}
		listing, err := s.listings.FindByID(ctx, parsed)
		if err != nil {
			return nil, err
		}
		if listing.Status != models.ListingApproved {
			return nil, validationErr("Listing is not available for applications")
		}
		listingID = listing.ID
		agentID = listing.AgentID
	} else {
		listing, err := s.createPlaceholderListing(ctx, buyer, normalized)
		if err != nil {
			return nil, err
		}
		listingID = listing.ID
		agentID = listing.AgentID
	}

	// Only merge once the application has somewhere to go; a rejected
	// submission must not touch the buyer's profile.
	s.mergeProfile(ctx, buyer, in)

	collection := s.db.Collection(applicationsCollection)
	now := time.Now().UTC()
	application := &models.Application{
		ID:                                utils.NewSixID(),
		ListingID:                         listingID,
		BuyerID:                           buyer.ID,
		AgentID:                           agentID,
		Status:                            models.ApplicationSubmitted,
		Message:                           normalized.Message,
		Documents:                         normalized.Documents,
		EmploymentStatus:                  normalized.EmploymentStatus,
		MonthlyIncomeRange:                normalized.MonthlyIncomeRange,
		BudgetRange:                       normalized.BudgetRange,
		PurchaseBudgetRange:               normalized.PurchaseBudgetRange,
		IntendedMoveInTimeframe:           normalized.IntendedMoveInTimeframe,
		DeclarationApplicationNotApproval: normalized.DeclarationApplicationNotApproval,
		DeclarationPreparedToProvideDocs:  normalized.DeclarationPreparedToProvideDocs,
		DeclarationActivelyLooking:        normalized.DeclarationActivelyLooking,
		CreatedAt:                         now,
		UpdatedAt:                         now,
	}

	_, err := collection.InsertOne(ctx, application)
	if err != nil {
		if db.IsMongoDuplicateKeyError(err) {
			return nil, validationErr("You have already applied to this listing")
		}
		return nil, fmt.Errorf("failed to insert application for buyer %s: %w", buyer.ID, err)
	}
	return application, nil
}

// mergeProfile copies any profile fields riding in the application payload
// onto the buyer's account. Errors are logged and swallowed.
func (s *applicationService) mergeProfile(ctx context.Context, buyer *models.User, in ApplicationIntake) {
	update := ProfileUpdate{}
	touched := false
	if strings.TrimSpace(in.FirstName) != "" {
		update.FirstName = &in.FirstName
		touched = true
	}
	if strings.TrimSpace(in.LastName) != "" {
		update.LastName = &in.LastName
		touched = true
	}
	if strings.TrimSpace(in.Phone) != "" {
		update.Phone = &in.Phone
		touched = true
	}
	if strings.TrimSpace(in.CountryOfResidence) != "" {
		update.CountryOfResidence = &in.CountryOfResidence
		touched = true
	}
	if strings.TrimSpace(in.Parish) != "" {
		update.Parish = &in.Parish
		touched = true
	}
	if !touched {
		return
	}
	if _, err := s.users.UpdateProfile(ctx, buyer.ID, update); err != nil {
		log.Printf("WARN: profile merge for buyer %s failed: %v", buyer.ID, err)
	}
}

// createPlaceholderListing supports listing-less applications. An agent is
// resolved to own the placeholder: the caller if they happen to be an agent,
// otherwise the oldest real agent, otherwise the system agent. The listing
// stays in draft so it never shows up in public browse.
func (s *applicationService) createPlaceholderListing(ctx context.Context, buyer *models.User, normalized NormalizedIntake) (*models.Listing, error) {
	var agent *models.User
	var err error

	if buyer.Role == models.RoleAgent {
		agent = buyer
	} else {
		agent, err = s.users.FindAnyAgent(ctx)
		if errors.Is(err, ErrNotFound) {
			agent, err = s.users.GetOrCreateSystemAgent(ctx, s.systemAgentEmail)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve routing agent: %w", err)
		}
	}

	price := ParseBudgetEstimate(firstNonEmpty(normalized.PurchaseBudgetRange, normalized.BudgetRange))
	if price <= 0 {
		price = 1
	}
	location := firstNonEmpty(buyer.Parish, buyer.CountryOfResidence, "Unspecified")

	return s.listings.Create(ctx, agent.ID, CreateListingInput{
		Title:       "General Application",
		Description: "Placeholder listing for an application submitted without a property",
		Price:       price,
		Location:    location,
		Status:      models.ListingDraft,
	})
}

func (s *applicationService) FindByID(ctx context.Context, applicationID utils.SixID) (*models.Application, error) {
	var application models.Application
	err := s.db.Collection(applicationsCollection).FindOne(ctx, bson.M{"_id": applicationID}).Decode(&application)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFoundErr("application %s not found", applicationID.String())
		}
		return nil, fmt.Errorf("error finding application %s: %w", applicationID.String(), err)
	}
	return &application, nil
}

// UpdateStatus moves an application along its lifecycle. Only the owning
// agent (or an admin) may change status, and the first transition into
// viewed stamps viewed_at exactly once.
func (s *applicationService) UpdateStatus(ctx context.Context, applicationID utils.SixID, caller *models.User, newStatus models.ApplicationStatus) (*models.Application, error) {
	if !newStatus.Valid() {
		return nil, validationErr("invalid application status %q", newStatus)
	}

	filter := bson.M{"_id": applicationID}
	if caller.Role != models.RoleAdmin {
		filter["agent_id"] = caller.ID
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Application
	err := s.db.Collection(applicationsCollection).FindOneAndUpdate(ctx, filter,
		bson.M{"$set": bson.M{"status": newStatus, "updated_at": time.Now().UTC()}},
		opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if _, findErr := s.FindByID(ctx, applicationID); findErr != nil {
				return nil, findErr
			}
			return nil, forbiddenErr("application %s does not belong to agent %s", applicationID.String(), caller.ID)
		}
		return nil, fmt.Errorf("failed to update application %s: %w", applicationID.String(), err)
	}

	if newStatus == models.ApplicationViewed && updated.ViewedAt == nil {
		now := time.Now().UTC()
		// viewed_at is write-once; the null guard in the filter keeps a
		// concurrent update from moving the stamp.
		result, err := s.db.Collection(applicationsCollection).UpdateOne(ctx,
			bson.M{"_id": applicationID, "viewed_at": nil},
			bson.M{"$set": bson.M{"viewed_at": now}})
		if err != nil {
			return nil, fmt.Errorf("failed to stamp viewed_at on application %s: %w", applicationID.String(), err)
		}
		if result.ModifiedCount == 1 {
			updated.ViewedAt = &now
		}
	}
	return &updated, nil
}

// FindByBuyerID returns a buyer's applications, newest first.
func (s *applicationService) FindByBuyerID(ctx context.Context, buyerID string) ([]models.Application, error) {
	return s.find(ctx, bson.M{"buyer_id": buyerID})
}

// FindByAgentID returns the applications routed to an agent, newest first.
func (s *applicationService) FindByAgentID(ctx context.Context, agentID string) ([]models.Application, error) {
	return s.find(ctx, bson.M{"agent_id": agentID})
}

func (s *applicationService) find(ctx context.Context, filter bson.M) ([]models.Application, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.db.Collection(applicationsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch applications: %w", err)
	}
	defer cursor.Close(ctx)

	applications := []models.Application{}
	if err = cursor.All(ctx, &applications); err != nil {
		return nil, fmt.Errorf("failed to decode applications: %w", err)
	}
	return applications, nil
}
