package memory

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/foodsecurity/foodshare/internal/domain/models"
)

// UserStore is a mutex-guarded account store.
type UserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

// NewUserStore builds an empty in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]models.User)}
}

// InsertUser stores a new account, rejecting duplicate emails the way the
// Mongo unique index does.
func (s *UserStore) InsertUser(_ context.Context, u models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return models.User{}, &models.ValidationError{Field: "email", Reason: "already registered"}
		}
	}

	u.ID = primitive.NewObjectID()
	s.users[u.ID.Hex()] = u
	return u, nil
}

// FindUserByEmail fetches an account by its login email.
func (s *UserStore) FindUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, models.ErrNotFound
}

// FindUserByID fetches an account by id.
func (s *UserStore) FindUserByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return u, nil
}
