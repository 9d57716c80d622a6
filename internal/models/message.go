package models

import (
	"time"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/utils"
)

// Message is a buyer↔agent message, optionally tied to a listing and/or an
// application.
type Message struct {
	ID            utils.SixID  `bson:"_id,omitempty" json:"id,omitempty"`
	BuyerID       string       `bson:"buyer_id" json:"buyer_id"`
	AgentID       string       `bson:"agent_id" json:"agent_id"`
	ListingID     *utils.SixID `bson:"listing_id,omitempty" json:"listing_id,omitempty"`
	ApplicationID *utils.SixID `bson:"application_id,omitempty" json:"application_id,omitempty"`
	SenderRole    Role         `bson:"sender_role" json:"sender_role"`
	Body          string       `bson:"message" json:"message"`
	Read          bool         `bson:"read" json:"read"`
	CreatedAt     time.Time    `bson:"created_at" json:"created_at"`
}
