package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/db"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/models"
)

const usersCollection = "users"

// ProfileUpdate carries the partial-merge fields of a profile update. Nil
// means "leave unchanged".
type ProfileUpdate struct {
	FirstName          *string
	LastName           *string
	Name               *string
	Phone              *string
	CountryOfResidence *string
	Parish             *string
}

// IUserService defines operations on local profile rows. Rows are keyed by
// the provider-issued UUID; emails are unique (backed by an index).
type IUserService interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	CreateProfile(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*models.User, error)
	UpdateEmail(ctx context.Context, userID, newEmail string) (*models.User, error)
	FindAnyAgent(ctx context.Context) (*models.User, error)
	GetOrCreateSystemAgent(ctx context.Context, email string) (*models.User, error)
}

// userService implements IUserService.
type userService struct {
	db *mongo.Database
}

// NewUserService creates a new UserService.
func NewUserService(db *mongo.Database) IUserService {
	return &userService{db: db}
}

func (s *userService) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFoundErr("user %s not found", id)
		}
		return nil, fmt.Errorf("error finding user by ID %s: %w", id, err)
	}
	return &user, nil
}

// FindByEmail looks a user up by email. Emails are stored lowercased, so the
// comparison is effectively case-insensitive.
func (s *userService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email))}
	err := s.db.Collection(usersCollection).FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFoundErr("no user with email %s", email)
		}
		return nil, fmt.Errorf("error finding user by email: %w", err)
	}
	return &user, nil
}

// CreateProfile inserts the local profile row paired with a provider account.
// The email unique index turns a concurrent duplicate into ErrConflict.
func (s *userService) CreateProfile(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.AccountStatus == "" {
		user.AccountStatus = models.AccountActive
	}

	_, err := s.db.Collection(usersCollection).InsertOne(ctx, user)
	if err != nil {
		if db.IsMongoDuplicateKeyError(err) {
			return conflictErr("account with email %s already exists", user.Email)
		}
		return fmt.Errorf("failed to insert user profile %s: %w", user.ID, err)
	}
	return nil
}

// UpdateProfile merges the supplied fields into the profile. When name parts
// change without an explicit display name, the name is recomposed from the
// resulting first/last pair.
func (s *userService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*models.User, error) {
	current, err := s.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if update.FirstName != nil {
		set["first_name"] = *update.FirstName
	}
	if update.LastName != nil {
		set["last_name"] = *update.LastName
	}
	if update.Phone != nil {
		set["phone"] = *update.Phone
	}
	if update.CountryOfResidence != nil {
		set["country_of_residence"] = *update.CountryOfResidence
	}
	if update.Parish != nil {
		set["parish"] = *update.Parish
	}

	switch {
	case update.Name != nil:
		set["name"] = *update.Name
	case update.FirstName != nil || update.LastName != nil:
		first := current.FirstName
		if update.FirstName != nil {
			first = *update.FirstName
		}
		last := current.LastName
		if update.LastName != nil {
			last = *update.LastName
		}
		if composed := strings.TrimSpace(first + " " + last); composed != "" {
			set["name"] = composed
		}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.User
	err = s.db.Collection(usersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": userID}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFoundErr("user %s not found", userID)
		}
		return nil, fmt.Errorf("failed to update profile for user %s: %w", userID, err)
	}
	return &updated, nil
}

// UpdateEmail rewrites the local email after the provider accepted the change.
func (s *userService) UpdateEmail(ctx context.Context, userID, newEmail string) (*models.User, error) {
	newEmail = strings.ToLower(strings.TrimSpace(newEmail))
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.User
	err := s.db.Collection(usersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"email": newEmail, "updated_at": time.Now().UTC()}},
		opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFoundErr("user %s not found", userID)
		}
		if db.IsMongoDuplicateKeyError(err) {
			return nil, conflictErr("email %s is already in use", newEmail)
		}
		return nil, fmt.Errorf("failed to update email for user %s: %w", userID, err)
	}
	return &updated, nil
}

// FindAnyAgent returns an arbitrary agent account, oldest first so the pick
// is stable.
func (s *userService) FindAnyAgent(ctx context.Context) (*models.User, error) {
	var agent models.User
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}})
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"role": models.RoleAgent}, opts).Decode(&agent)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFoundErr("no agent accounts exist")
		}
		return nil, fmt.Errorf("error finding an agent: %w", err)
	}
	return &agent, nil
}

// GetOrCreateSystemAgent returns the singleton fallback agent, creating it on
// first use. The email unique index makes the create idempotent under
// concurrency: the loser of an insert race re-reads the winner's row.
func (s *userService) GetOrCreateSystemAgent(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	agent, err := s.FindByEmail(ctx, email)
	if err == nil {
		return agent, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	created := &models.User{
		ID:            uuid.NewString(),
		Email:         email,
		Role:          models.RoleAgent,
		AccountStatus: models.AccountActive,
		Name:          "System Agent",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	_, err = s.db.Collection(usersCollection).InsertOne(ctx, created)
	if err != nil {
		if db.IsMongoDuplicateKeyError(err) {
			return s.FindByEmail(ctx, email)
		}
		return nil, fmt.Errorf("failed to create system agent: %w", err)
	}
	return created, nil
}
