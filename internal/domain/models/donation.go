package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Donation lifecycle statuses. Transitions move one way:
// available -> claimed -> distributed.
const (
	StatusAvailable   = "available"
	StatusClaimed     = "claimed"
	StatusDistributed = "distributed"
)

// Canonical donation type tags. The field is open-ended; these are the
// values the clients render with dedicated styling.
const (
	TypePrepared = "prepared"
	TypeGrocery  = "grocery"
	TypeProduce  = "produce"
	TypeBakery   = "bakery"
	TypeDairy    = "dairy"
)

// Donation is the single persisted entity: an offer of surplus food and its
// lifecycle state. Field names follow the JSON contract the dashboards
// consume; the Mongo _id is re-exposed as "id".
type Donation struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FoodItem       string             `bson:"foodItem" json:"foodItem"`
	Quantity       string             `bson:"quantity" json:"quantity"`
	ExpiryDate     time.Time          `bson:"expiryDate" json:"expiryDate"`
	PickupLocation string             `bson:"pickupLocation" json:"pickupLocation"`
	Type           string             `bson:"type" json:"type"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	ContactInfo    string             `bson:"contactInfo,omitempty" json:"contactInfo,omitempty"`
	DonorID        string             `bson:"donorId" json:"donorId"`
	DonorName      string             `bson:"donorName" json:"donorName"`
	Status         string             `bson:"status" json:"status"`
	ClaimedBy      string             `bson:"claimedBy,omitempty" json:"claimedBy,omitempty"`
	ClaimedAt      *time.Time         `bson:"claimedAt,omitempty" json:"claimedAt,omitempty"`
	DistributedAt  *time.Time         `bson:"distributedAt,omitempty" json:"distributedAt,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

// Flagged reports whether the donation is past its expiry without having
// reached distribution. Derived on read, never persisted.
func (d Donation) Flagged(now time.Time) bool {
	return d.Status != StatusDistributed && !d.ExpiryDate.IsZero() && d.ExpiryDate.Before(now)
}

// ValidStatus reports whether s is one of the lifecycle statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusAvailable, StatusClaimed, StatusDistributed:
		return true
	}
	return false
}
