package models

import (
	"time"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/utils"
)

// ApplicationStatus is the review state of a buyer's application.
//
// submitted → viewed → under_review → {accepted, rejected}. Transitions are
// validated against the value domain only; the owning agent may jump between
// states. Entering "viewed" stamps ViewedAt exactly once.
type ApplicationStatus string

const (
	ApplicationSubmitted   ApplicationStatus = "submitted"
	ApplicationViewed      ApplicationStatus = "viewed"
	ApplicationUnderReview ApplicationStatus = "under_review"
	ApplicationAccepted    ApplicationStatus = "accepted"
	ApplicationRejected    ApplicationStatus = "rejected"
)

// Valid reports whether s is one of the five known application states.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationSubmitted, ApplicationViewed, ApplicationUnderReview, ApplicationAccepted, ApplicationRejected:
		return true
	}
	return false
}

// Application is a buyer's request to be considered for a listing. AgentID is
// a denormalized copy of the listing's owner taken at creation time. At most
// one application may exist per (listing_id, buyer_id) pair, enforced by a
// unique index.
type Application struct {
	ID        utils.SixID       `bson:"_id,omitempty" json:"id,omitempty"`
	ListingID utils.SixID       `bson:"listing_id" json:"listing_id"`
	BuyerID   string            `bson:"buyer_id" json:"buyer_id"`
	AgentID   string            `bson:"agent_id" json:"agent_id"`
	Status    ApplicationStatus `bson:"status" json:"status"`
	Message   string            `bson:"message,omitempty" json:"message,omitempty"`
	Documents []string          `bson:"documents" json:"documents"`

	// Financial and employment intake
	EmploymentStatus        string `bson:"employment_status,omitempty" json:"employment_status,omitempty"`
	MonthlyIncomeRange      string `bson:"monthly_income_range,omitempty" json:"monthly_income_range,omitempty"`
	BudgetRange             string `bson:"budget_range,omitempty" json:"budget_range,omitempty"`
	PurchaseBudgetRange     string `bson:"purchase_budget_range,omitempty" json:"purchase_budget_range,omitempty"`
	IntendedMoveInTimeframe string `bson:"intended_move_in_timeframe,omitempty" json:"intended_move_in_timeframe,omitempty"`

	// Declarations
	DeclarationApplicationNotApproval bool `bson:"declaration_application_not_approval" json:"declaration_application_not_approval"`
	DeclarationPreparedToProvideDocs  bool `bson:"declaration_prepared_to_provide_docs" json:"declaration_prepared_to_provide_docs"`
	DeclarationActivelyLooking        bool `bson:"declaration_actively_looking" json:"declaration_actively_looking"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	ViewedAt  *time.Time `bson:"viewed_at,omitempty" json:"viewed_at,omitempty"`
}
