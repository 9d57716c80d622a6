package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/models"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/utils"
)

func setupMessageFixture(t *testing.T, dbName string) (*mongo.Database, IMessageService, *models.User, *models.User) {
	database := utils.SetupTestDB(t, dbName, "messages", "users")
	users := NewUserService(database)
	svc := NewMessageService(database, users)
	ctx := context.Background()

	buyer := &models.User{ID: uuid.NewString(), Email: "buyer@example.com", Role: models.RoleBuyer}
	assert.NoError(t, users.CreateProfile(ctx, buyer))
	agent := &models.User{ID: uuid.NewString(), Email: "agent@example.com", Role: models.RoleAgent}
	assert.NoError(t, users.CreateProfile(ctx, agent))

	return database, svc, buyer, agent
}

func TestMessageService_SendAndList(t *testing.T) {
	_, svc, buyer, agent := setupMessageFixture(t, "testdb_message_service_send")
	ctx := context.Background()

	listingID := utils.NewSixID()
	sent, err := svc.Send(ctx, buyer, SendMessageInput{
		AgentID:   agent.ID,
		Body:      "Is this available?",
		ListingID: &listingID,
	})
	assert.NoError(t, err)
	assert.Equal(t, models.RoleBuyer, sent.SenderRole)
	assert.False(t, sent.Read)

	reply, err := svc.Send(ctx, agent, SendMessageInput{
		BuyerID: buyer.ID,
		Body:    "Yes, want a viewing?",
	})
	assert.NoError(t, err)
	assert.Equal(t, models.RoleAgent, reply.SenderRole)

	// Each side sees the thread from its own column.
	buyerView, err := svc.List(ctx, buyer, MessageFilter{})
	assert.NoError(t, err)
	assert.Len(t, buyerView, 2)

	agentView, err := svc.List(ctx, agent, MessageFilter{})
	assert.NoError(t, err)
	assert.Len(t, agentView, 2)

	filtered, err := svc.List(ctx, buyer, MessageFilter{ListingID: &listingID})
	assert.NoError(t, err)
	assert.Len(t, filtered, 1)
	assert.Equal(t, "Is this available?", filtered[0].Body)

	otherBuyer := &models.User{ID: uuid.NewString(), Role: models.RoleBuyer}
	empty, err := svc.List(ctx, otherBuyer, MessageFilter{})
	assert.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMessageService_SendValidation(t *testing.T) {
	_, svc, buyer, agent := setupMessageFixture(t, "testdb_message_service_validation")
	ctx := context.Background()

	_, err := svc.Send(ctx, buyer, SendMessageInput{AgentID: agent.ID, Body: "   "})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Send(ctx, buyer, SendMessageInput{Body: "hi"})
	assert.ErrorIs(t, err, ErrValidation)

	// Counterparty must exist and hold the opposite role.
	_, err = svc.Send(ctx, buyer, SendMessageInput{AgentID: uuid.NewString(), Body: "hi"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "Invalid agent_id")

	_, err = svc.Send(ctx, buyer, SendMessageInput{AgentID: buyer.ID, Body: "hi"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Send(ctx, agent, SendMessageInput{BuyerID: agent.ID, Body: "hi"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "Invalid buyer_id")
}
