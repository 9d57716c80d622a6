package models

import (
	"time"
)

// Role defines the access level of an account.
type Role string

const (
	RoleBuyer Role = "buyer"
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// AccountStatus defines whether an account may sign in.
type AccountStatus string

const (
	AccountActive   AccountStatus = "active"
	AccountInactive AccountStatus = "inactive"
)

// User is the local profile row paired 1:1 with an identity-provider account.
// The ID is the provider-issued UUID, so it is stored as a plain string rather
// than a SixID.
type User struct {
	ID                 string        `bson:"_id" json:"id"`
	Email              string        `bson:"email" json:"email"`
	Role               Role          `bson:"role" json:"role"`
	AccountStatus      AccountStatus `bson:"account_status" json:"account_status"`
	Name               string        `bson:"name,omitempty" json:"name,omitempty"`
	FirstName          string        `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName           string        `bson:"last_name,omitempty" json:"last_name,omitempty"`
	Phone              string        `bson:"phone,omitempty" json:"phone,omitempty"`
	CountryOfResidence string        `bson:"country_of_residence,omitempty" json:"country_of_residence,omitempty"`
	Parish             string        `bson:"parish,omitempty" json:"parish,omitempty"`
	CreatedAt          time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time     `bson:"updated_at" json:"updated_at"`
}
