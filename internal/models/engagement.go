package models

import (
	"time"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/utils"
)

// PropertyView records a buyer having viewed a listing. One row per
// (buyer_id, listing_id) pair, enforced by a unique index; ViewedAt is
// refreshed on every visit (last-view-wins).
type PropertyView struct {
	ID        utils.SixID `bson:"_id,omitempty" json:"id,omitempty"`
	BuyerID   string      `bson:"buyer_id" json:"buyer_id"`
	ListingID utils.SixID `bson:"listing_id" json:"listing_id"`
	ViewedAt  time.Time   `bson:"viewed_at" json:"viewed_at"`
}

// SavedSearch is a buyer-owned search definition. When AlertsEnabled, the
// background alert scan matches newly approved listings against it.
type SavedSearch struct {
	ID            utils.SixID `bson:"_id,omitempty" json:"id,omitempty"`
	BuyerID       string      `bson:"buyer_id" json:"buyer_id"`
	Name          string      `bson:"name" json:"name"`
	Location      string      `bson:"location,omitempty" json:"location,omitempty"`
	MinPrice      *float64    `bson:"min_price,omitempty" json:"min_price,omitempty"`
	MaxPrice      *float64    `bson:"max_price,omitempty" json:"max_price,omitempty"`
	AlertsEnabled bool        `bson:"alerts_enabled" json:"alerts_enabled"`
	CreatedAt     time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `bson:"updated_at" json:"updated_at"`
}

// SearchAlert links a saved search to a listing that matched it. Unique per
// (saved_search_id, listing_id) so re-running the scan is idempotent.
type SearchAlert struct {
	ID            utils.SixID `bson:"_id,omitempty" json:"id,omitempty"`
	SavedSearchID utils.SixID `bson:"saved_search_id" json:"saved_search_id"`
	BuyerID       string      `bson:"buyer_id" json:"buyer_id"`
	ListingID     utils.SixID `bson:"listing_id" json:"listing_id"`
	CreatedAt     time.Time   `bson:"created_at" json:"created_at"`
}
