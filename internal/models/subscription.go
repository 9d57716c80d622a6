package models

import (
	"time"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/utils"
)

// SubscriptionStatus mirrors the payment provider's subscription state.
type SubscriptionStatus string

const (
	SubscriptionActive     SubscriptionStatus = "active"
	SubscriptionCanceled   SubscriptionStatus = "canceled"
	SubscriptionPastDue    SubscriptionStatus = "past_due"
	SubscriptionIncomplete SubscriptionStatus = "incomplete"
)

// Subscription is the local record of a user's payment subscription. One row
// per user, enforced by a unique index on user_id; payment success upserts it.
// An agent needs an active row here before any of their listings can be
// approved.
type Subscription struct {
	ID                   utils.SixID        `bson:"_id,omitempty" json:"id,omitempty"`
	UserID               string             `bson:"user_id" json:"user_id"`
	Status               SubscriptionStatus `bson:"status" json:"status"`
	StripeSubscriptionID string             `bson:"stripe_subscription_id,omitempty" json:"stripe_subscription_id,omitempty"`
	StripeCustomerID     string             `bson:"stripe_customer_id,omitempty" json:"stripe_customer_id,omitempty"`
	PlanType             string             `bson:"plan_type,omitempty" json:"plan_type,omitempty"`
	CreatedAt            time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt            time.Time          `bson:"updated_at" json:"updated_at"`
	ExpiresAt            *time.Time         `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
}
