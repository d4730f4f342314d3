package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/foodsecurity/foodshare/internal/domain/models"
)

// UserRepository persists platform accounts in the users collection.
type UserRepository struct {
	repo *Repository
}

// NewUserRepository builds the user store backed by the shared client.
func NewUserRepository(repo *Repository) *UserRepository {
	return &UserRepository{repo: repo}
}

// InsertUser stores a new account. A duplicate email trips the unique index
// and comes back as a validation error.
func (r *UserRepository) InsertUser(ctx context.Context, u models.User) (models.User, error) {
	res, err := r.repo.collection(usersCollection).InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return models.User{}, &models.ValidationError{Field: "email", Reason: "already registered"}
	}
	if err != nil {
		return models.User{}, translate("insert user", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return models.User{}, fmt.Errorf("insert user: unexpected id type %T", res.InsertedID)
	}
	u.ID = oid
	return u, nil
}

// FindUserByEmail fetches an account by its login email.
func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := r.repo.collection(usersCollection).FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, models.ErrNotFound
	}
	if err != nil {
		return models.User{}, translate("find user", err)
	}
	return u, nil
}

// FindUserByID fetches an account by id.
func (r *UserRepository) FindUserByID(ctx context.Context, id string) (models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, models.ErrNotFound
	}

	var u models.User
	err = r.repo.collection(usersCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, models.ErrNotFound
	}
	if err != nil {
		return models.User{}, translate("find user", err)
	}
	return u, nil
}
