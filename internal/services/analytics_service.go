package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/models"
)

// AgentAnalytics summarizes an agent's portfolio and pipeline.
type AgentAnalytics struct {
	TotalListings        int64 `json:"total_listings"`
	PendingListings      int64 `json:"pending_listings"`
	ApprovedListings     int64 `json:"approved_listings"`
	TotalApplications    int64 `json:"total_applications"`
	PendingApplications  int64 `json:"pending_applications"`
	AcceptedApplications int64 `json:"accepted_applications"`
}

// BuyerAnalytics summarizes a buyer's application history.
type BuyerAnalytics struct {
	TotalApplications     int64 `json:"total_applications"`
	SubmittedApplications int64 `json:"submitted_applications"`
	AcceptedApplications  int64 `json:"accepted_applications"`
	RejectedApplications  int64 `json:"rejected_applications"`
}

// IAnalyticsService computes role-specific dashboard counters.
type IAnalyticsService interface {
	ForAgent(ctx context.Context, agentID string) (*AgentAnalytics, error)
	ForBuyer(ctx context.Context, buyerID string) (*BuyerAnalytics, error)
}

// analyticsService implements IAnalyticsService.
type analyticsService struct {
	db *mongo.Database
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(db *mongo.Database) IAnalyticsService {
	return &analyticsService{db: db}
}

func (s *analyticsService) count(ctx context.Context, collection string, filter bson.M) (int64, error) {
	n, err := s.db.Collection(collection).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", collection, err)
	}
	return n, nil
}

func (s *analyticsService) ForAgent(ctx context.Context, agentID string) (*AgentAnalytics, error) {
	out := &AgentAnalytics{}
	var err error

	if out.TotalListings, err = s.count(ctx, listingsCollection, bson.M{"agent_id": agentID}); err != nil {
		return nil, err
	}
	if out.PendingListings, err = s.count(ctx, listingsCollection,
		bson.M{"agent_id": agentID, "status": models.ListingPendingReview}); err != nil {
		return nil, err
	}
	if out.ApprovedListings, err = s.count(ctx, listingsCollection,
		bson.M{"agent_id": agentID, "status": models.ListingApproved}); err != nil {
		return nil, err
	}
	if out.TotalApplications, err = s.count(ctx, applicationsCollection, bson.M{"agent_id": agentID}); err != nil {
		return nil, err
	}
	if out.PendingApplications, err = s.count(ctx, applicationsCollection,
		bson.M{"agent_id": agentID, "status": bson.M{"$in": []models.ApplicationStatus{
			models.ApplicationSubmitted, models.ApplicationViewed, models.ApplicationUnderReview,
		}}}); err != nil {
		return nil, err
	}
	if out.AcceptedApplications, err = s.count(ctx, applicationsCollection,
		bson.M{"agent_id": agentID, "status": models.ApplicationAccepted}); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *analyticsService) ForBuyer(ctx context.Context, buyerID string) (*BuyerAnalytics, error) {
	out := &BuyerAnalytics{}
	var err error

	if out.TotalApplications, err = s.count(ctx, applicationsCollection, bson.M{"buyer_id": buyerID}); err != nil {
		return nil, err
	}
	if out.SubmittedApplications, err = s.count(ctx, applicationsCollection,
		bson.M{"buyer_id": buyerID, "status": models.ApplicationSubmitted}); err != nil {
		return nil, err
	}
	if out.AcceptedApplications, err = s.count(ctx, applicationsCollection,
		bson.M{"buyer_id": buyerID, "status": models.ApplicationAccepted}); err != nil {
		return nil, err
	}
	if out.RejectedApplications, err = s.count(ctx, applicationsCollection,
		bson.M{"buyer_id": buyerID, "status": models.ApplicationRejected}); err != nil {
		return nil, err
	}
	return out, nil
}
