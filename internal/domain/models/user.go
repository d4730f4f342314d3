package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Platform roles. Each maps to a dashboard with its own view of the
// donation collection.
const (
	RoleDonor     = "donor"
	RoleRecipient = "recipient"
	RoleAnalyst   = "analyst"
	RoleAdmin     = "admin"
)

// User is a registered platform account. Donations reference users only
// through opaque id strings (donorId, claimedBy), so the lifecycle logic
// never depends on this type.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Role         string             `bson:"role" json:"role"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	PasswordSalt string             `bson:"passwordSalt" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// Identity is the verified caller attached to a request after token
// verification.
type Identity struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// ValidRole reports whether r is one of the platform roles.
func ValidRole(r string) bool {
	switch r {
	case RoleDonor, RoleRecipient, RoleAnalyst, RoleAdmin:
		return true
	}
	return false
}
