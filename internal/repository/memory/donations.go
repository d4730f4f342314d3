// Package memory holds in-memory store implementations with the same
// conditional-update semantics as the MongoDB repositories. Used by tests
// and local development runs without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/foodsecurity/foodshare/internal/domain/models"
)

// DonationStore is a mutex-guarded donation store.
type DonationStore struct {
	mu      sync.Mutex
	records map[string]models.Donation
}

// NewDonationStore builds an empty in-memory donation store.
func NewDonationStore() *DonationStore {
	return &DonationStore{records: make(map[string]models.Donation)}
}

// Insert assigns a fresh id and stores the donation.
func (s *DonationStore) Insert(_ context.Context, d models.Donation) (models.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d.ID = primitive.NewObjectID()
	s.records[d.ID.Hex()] = d
	return d, nil
}

// FindByID fetches a single donation.
func (s *DonationStore) FindByID(_ context.Context, id string) (models.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.records[id]
	if !ok {
		return models.Donation{}, models.ErrNotFound
	}
	return d, nil
}

// Find returns donations matching the equality filter, newest first.
func (s *DonationStore) Find(_ context.Context, filter map[string]any) ([]models.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Donation, 0, len(s.records))
	for _, d := range s.records {
		if matches(d, filter) {
			out = append(out, d)
		}
	}
	// Secondary key on id keeps equal-createdAt records in a stable order
	// across calls.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

// UpdateFields applies a partial update and reports the modified count.
func (s *DonationStore) UpdateFields(_ context.Context, id string, fields map[string]any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.records[id]
	if !ok {
		return 0, models.ErrNotFound
	}

	var modified int64
	for k, v := range fields {
		if applyField(&d, k, v) {
			modified = 1
		}
	}
	s.records[id] = d
	return modified, nil
}

// Delete removes a donation.
func (s *DonationStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

// ClaimAvailable transitions available -> claimed under the lock, so only
// one of several racing claims can win.
func (s *DonationStore) ClaimAvailable(_ context.Context, id, recipientID string, at time.Time) (models.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.records[id]
	if !ok || d.Status != models.StatusAvailable {
		return models.Donation{}, models.ErrNotFound
	}

	d.Status = models.StatusClaimed
	d.ClaimedBy = recipientID
	d.ClaimedAt = &at
	s.records[id] = d
	return d, nil
}

// CompleteClaimed transitions claimed -> distributed for the claim holder.
func (s *DonationStore) CompleteClaimed(_ context.Context, id, recipientID string, at time.Time) (models.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.records[id]
	if !ok || d.Status != models.StatusClaimed || d.ClaimedBy != recipientID {
		return models.Donation{}, models.ErrNotFound
	}

	d.Status = models.StatusDistributed
	d.DistributedAt = &at
	s.records[id] = d
	return d, nil
}

func matches(d models.Donation, filter map[string]any) bool {
	for k, v := range filter {
		switch k {
		case "donorId":
			if d.DonorID != v {
				return false
			}
		case "status":
			if d.Status != v {
				return false
			}
		case "type":
			if d.Type != v {
				return false
			}
		case "claimedBy":
			if d.ClaimedBy != v {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func applyField(d *models.Donation, key string, value any) bool {
	switch key {
	case "status":
		if v, ok := value.(string); ok {
			d.Status = v
			return true
		}
	case "foodItem":
		if v, ok := value.(string); ok {
			d.FoodItem = v
			return true
		}
	case "quantity":
		if v, ok := value.(string); ok {
			d.Quantity = v
			return true
		}
	case "pickupLocation":
		if v, ok := value.(string); ok {
			d.PickupLocation = v
			return true
		}
	case "type":
		if v, ok := value.(string); ok {
			d.Type = v
			return true
		}
	case "description":
		if v, ok := value.(string); ok {
			d.Description = v
			return true
		}
	case "contactInfo":
		if v, ok := value.(string); ok {
			d.ContactInfo = v
			return true
		}
	case "claimedBy":
		if v, ok := value.(string); ok {
			d.ClaimedBy = v
			return true
		}
	case "expiryDate":
		if v, ok := value.(time.Time); ok {
			d.ExpiryDate = v
			return true
		}
	case "claimedAt":
		if v, ok := value.(time.Time); ok {
			d.ClaimedAt = &v
			return true
		}
	case "distributedAt":
		if v, ok := value.(time.Time); ok {
			d.DistributedAt = &v
			return true
		}
	}
	return false
}
