package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/models"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/utils"
)

const subscriptionsCollection = "subscriptions"

// CheckoutResult carries the provider-side identifiers of a completed
// checkout, used to upsert the local subscription row.
type CheckoutResult struct {
	StripeSubscriptionID string
	StripeCustomerID     string
	PlanType             string
}

// ISubscriptionService defines operations on subscription rows. Each user
// holds at most one row (backed by a unique index on user_id).
type ISubscriptionService interface {
	HasActiveSubscription(ctx context.Context, userID string) (bool, error)
	FindByUserID(ctx context.Context, userID string) (*models.Subscription, error)
	UpsertFromCheckout(ctx context.Context, userID string, result CheckoutResult) (*models.Subscription, error)
}

// subscriptionService implements ISubscriptionService.
type subscriptionService struct {
	db *mongo.Database
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(db *mongo.Database) ISubscriptionService {
	return &subscriptionService{db: db}
}

// HasActiveSubscription reports whether the user holds a subscription in
// status active that has not expired.
func (s *subscriptionService) HasActiveSubscription(ctx context.Context, userID string) (bool, error) {
	sub, err := s.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if sub.Status != models.SubscriptionActive {
		return false, nil
	}
	if sub.ExpiresAt != nil && sub.ExpiresAt.Before(time.Now().UTC()) {
		return false, nil
	}
	return true, nil
}

func (s *subscriptionService) FindByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.Collection(subscriptionsCollection).FindOne(ctx, bson.M{"user_id": userID}).Decode(&sub)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFoundErr("no subscription for user %s", userID)
		}
		return nil, fmt.Errorf("error finding subscription for user %s: %w", userID, err)
	}
	return &sub, nil
}

// UpsertFromCheckout activates (or re-activates) the user's subscription
// after a paid checkout. The unique index on user_id makes the upsert
// idempotent: replaying the same success callback lands on the same row.
func (s *subscriptionService) UpsertFromCheckout(ctx context.Context, userID string, result CheckoutResult) (*models.Subscription, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"status":                 models.SubscriptionActive,
			"stripe_subscription_id": result.StripeSubscriptionID,
			"stripe_customer_id":     result.StripeCustomerID,
			"plan_type":              result.PlanType,
			"updated_at":             now,
		},
		"$setOnInsert": bson.M{
			"_id":        utils.NewSixID(),
			"user_id":    userID,
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var sub models.Subscription
	err := s.db.Collection(subscriptionsCollection).FindOneAndUpdate(ctx,
		bson.M{"user_id": userID}, update, opts).Decode(&sub)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert subscription for user %s: %w", userID, err)
	}
	return &sub, nil
}
