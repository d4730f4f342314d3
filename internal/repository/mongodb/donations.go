package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/foodsecurity/foodshare/internal/domain/models"
)

// DonationRepository persists donation records in the donations collection.
type DonationRepository struct {
	repo *Repository
}

// NewDonationRepository builds the donation store backed by the shared client.
func NewDonationRepository(repo *Repository) *DonationRepository {
	return &DonationRepository{repo: repo}
}

// Insert stores a new donation and returns it with the assigned id.
func (r *DonationRepository) Insert(ctx context.Context, d models.Donation) (models.Donation, error) {
	res, err := r.repo.collection(donationsCollection).InsertOne(ctx, d)
	if err != nil {
		return models.Donation{}, translate("insert donation", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return models.Donation{}, fmt.Errorf("insert donation: unexpected id type %T", res.InsertedID)
	}
	d.ID = oid
	return d, nil
}

// FindByID fetches a single donation. Returns models.ErrNotFound when the id
// is unknown or not a valid object id.
func (r *DonationRepository) FindByID(ctx context.Context, id string) (models.Donation, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Donation{}, models.ErrNotFound
	}

	var d models.Donation
	err = r.repo.collection(donationsCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Donation{}, models.ErrNotFound
	}
	if err != nil {
		return models.Donation{}, translate("find donation", err)
	}
	return d, nil
}

// Find returns every donation matching the field-equality filter, newest
// first. A nil filter returns the full collection.
func (r *DonationRepository) Find(ctx context.Context, filter map[string]any) ([]models.Donation, error) {
	query := bson.M{}
	for k, v := range filter {
		query[k] = v
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.repo.collection(donationsCollection).Find(ctx, query, opts)
	if err != nil {
		return nil, translate("find donations", err)
	}
	defer cursor.Close(ctx)

	donations := make([]models.Donation, 0)
	if err := cursor.All(ctx, &donations); err != nil {
		return nil, translate("decode donations", err)
	}
	return donations, nil
}

// UpdateFields applies a partial $set to a donation and reports the modified
// count. Returns models.ErrNotFound when no record matched.
func (r *DonationRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, models.ErrNotFound
	}

	res, err := r.repo.collection(donationsCollection).UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M(fields)},
	)
	if err != nil {
		return 0, translate("update donation", err)
	}
	if res.MatchedCount == 0 {
		return 0, models.ErrNotFound
	}
	return res.ModifiedCount, nil
}

// Delete permanently removes a donation. Returns models.ErrNotFound when the
// id is unknown.
func (r *DonationRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrNotFound
	}

	res, err := r.repo.collection(donationsCollection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return translate("delete donation", err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ClaimAvailable atomically transitions an available donation to claimed.
// The status precondition is part of the update filter, so two racing claims
// can never both succeed; the loser gets models.ErrNotFound and the caller
// decides whether that means a missing record or a lost race.
func (r *DonationRepository) ClaimAvailable(ctx context.Context, id, recipientID string, at time.Time) (models.Donation, error) {
	return r.conditionalUpdate(ctx, id,
		bson.M{"status": models.StatusAvailable},
		bson.M{
			"status":    models.StatusClaimed,
			"claimedBy": recipientID,
			"claimedAt": at,
		})
}

// CompleteClaimed atomically transitions a claimed donation to distributed,
// but only for the recipient holding the claim.
func (r *DonationRepository) CompleteClaimed(ctx context.Context, id, recipientID string, at time.Time) (models.Donation, error) {
	return r.conditionalUpdate(ctx, id,
		bson.M{"status": models.StatusClaimed, "claimedBy": recipientID},
		bson.M{
			"status":        models.StatusDistributed,
			"distributedAt": at,
		})
}

func (r *DonationRepository) conditionalUpdate(ctx context.Context, id string, precondition, set bson.M) (models.Donation, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Donation{}, models.ErrNotFound
	}

	filter := bson.M{"_id": oid}
	for k, v := range precondition {
		filter[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var d models.Donation
	err = r.repo.collection(donationsCollection).
		FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).
		Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Donation{}, models.ErrNotFound
	}
	if err != nil {
		return models.Donation{}, translate("transition donation", err)
	}
	return d, nil
}
