package models

import (
	"time"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/utils"
)

// ListingStatus is the lifecycle state of a property listing.
//
// draft → pending_review → {approved, rejected}; approved listings may later
// be archived. Only approved listings are visible to the public browse feed.
type ListingStatus string

const (
	ListingDraft         ListingStatus = "draft"
	ListingPendingReview ListingStatus = "pending_review"
	ListingApproved      ListingStatus = "approved"
	ListingRejected      ListingStatus = "rejected"
	ListingArchived      ListingStatus = "archived"
)

// Valid reports whether s is one of the five known listing states.
func (s ListingStatus) Valid() bool {
	switch s {
	case ListingDraft, ListingPendingReview, ListingApproved, ListingRejected, ListingArchived:
		return true
	}
	return false
}

// Listing is a property offering owned by exactly one agent.
type Listing struct {
	ID          utils.SixID   `bson:"_id,omitempty" json:"id,omitempty"`
	AgentID     string        `bson:"agent_id" json:"agent_id"`
	Title       string        `bson:"title" json:"title"`
	Description string        `bson:"description" json:"description"`
	Price       float64       `bson:"price" json:"price"`
	Location    string        `bson:"location" json:"location"`
	Status      ListingStatus `bson:"status" json:"status"`

	// Property details, all optional.
	PropertyType        string `bson:"property_type,omitempty" json:"property_type,omitempty"`
	ListingType         string `bson:"listing_type,omitempty" json:"listing_type,omitempty"` // sale or rental
	StreetAddress       string `bson:"street_address,omitempty" json:"street_address,omitempty"`
	Parish              string `bson:"parish,omitempty" json:"parish,omitempty"`
	Bedrooms            int    `bson:"bedrooms,omitempty" json:"bedrooms,omitempty"`
	Bathrooms           int    `bson:"bathrooms,omitempty" json:"bathrooms,omitempty"`
	InteriorDetails     string `bson:"interior_details,omitempty" json:"interior_details,omitempty"`
	PropertySize        string `bson:"property_size,omitempty" json:"property_size,omitempty"`
	AvailabilityStatus  string `bson:"availability_status,omitempty" json:"availability_status,omitempty"`
	ViewingInstructions string `bson:"viewing_instructions,omitempty" json:"viewing_instructions,omitempty"`

	Images      []string   `bson:"images" json:"images"`
	Documents   []string   `bson:"documents" json:"documents"`
	Views       int64      `bson:"views" json:"views"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
	PublishedAt *time.Time `bson:"published_at,omitempty" json:"published_at,omitempty"`
	ExpiresAt   *time.Time `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
}
