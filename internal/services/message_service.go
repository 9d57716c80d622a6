package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/models"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/utils"
)

const messagesCollection = "messages"

// MessageFilter narrows a conversation listing to one listing or application
// thread.
type MessageFilter struct {
	ListingID     *utils.SixID
	ApplicationID *utils.SixID
}

// SendMessageInput carries an outgoing message. Exactly one of AgentID /
// BuyerID is required depending on which side the sender is on.
type SendMessageInput struct {
	AgentID       string
	BuyerID       string
	Body          string
	ListingID     *utils.SixID
	ApplicationID *utils.SixID
}

// IMessageService defines buyer/agent messaging.
type IMessageService interface {
	List(ctx context.Context, caller *models.User, filter MessageFilter) ([]models.Message, error)
	Send(ctx context.Context, sender *models.User, in SendMessageInput) (*models.Message, error)
}

// messageService implements IMessageService.
type messageService struct {
	db    *mongo.Database
	users IUserService
}

// NewMessageService creates a new MessageService.
func NewMessageService(db *mongo.Database, users IUserService) IMessageService {
	return &messageService{db: db, users: users}
}

// List returns the caller's messages, newest first, capped at 50. Buyers see
// the buyer side, agents the agent side; admins see everything.
func (s *messageService) List(ctx context.Context, caller *models.User, filter MessageFilter) ([]models.Message, error) {
	query := bson.M{}
	switch caller.Role {
	case models.RoleBuyer:
		query["buyer_id"] = caller.ID
	case models.RoleAgent:
		query["agent_id"] = caller.ID
	case models.RoleAdmin:
		// no side restriction
	default:
		return nil, forbiddenErr("role %s cannot list messages", caller.Role)
	}
	if filter.ListingID != nil {
		query["listing_id"] = *filter.ListingID
	}
	if filter.ApplicationID != nil {
		query["application_id"] = *filter.ApplicationID
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(50)
	cursor, err := s.db.Collection(messagesCollection).Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages for user %s: %w", caller.ID, err)
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return messages, nil
}

// Send records a message from the caller to the named counterparty. The
// counterparty must exist and hold the opposite role.
func (s *messageService) Send(ctx context.Context, sender *models.User, in SendMessageInput) (*models.Message, error) {
	if strings.TrimSpace(in.Body) == "" {
		return nil, validationErr("message body is required")
	}

	var buyerID, agentID string
	switch sender.Role {
	case models.RoleBuyer:
		if in.AgentID == "" {
			return nil, validationErr("agent_id is required")
		}
		agent, err := s.users.FindByID(ctx, in.AgentID)
		if err != nil || agent.Role != models.RoleAgent {
			return nil, validationErr("Invalid agent_id")
		}
		buyerID, agentID = sender.ID, agent.ID
	case models.RoleAgent:
		if in.BuyerID == "" {
			return nil, validationErr("buyer_id is required")
		}
		buyer, err := s.users.FindByID(ctx, in.BuyerID)
		if err != nil || buyer.Role != models.RoleBuyer {
			return nil, validationErr("Invalid buyer_id")
		}
		buyerID, agentID = buyer.ID, sender.ID
	default:
		return nil, forbiddenErr("role %s cannot send messages", sender.Role)
	}

	message := &models.Message{
		ID:            utils.NewSixID(),
		BuyerID:       buyerID,
		AgentID:       agentID,
		ListingID:     in.ListingID,
		ApplicationID: in.ApplicationID,
		SenderRole:    sender.Role,
		Body:          in.Body,
		Read:          false,
		CreatedAt:     time.Now().UTC(),
	}
	_, err := s.db.Collection(messagesCollection).InsertOne(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message from %s: %w", sender.ID, err)
	}
	return message, nil
}
