package donations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/foodsecurity/foodshare/internal/domain/models"
)

// expiry dates arrive either as full timestamps or as bare calendar dates
// from the dashboard date picker.
var expiryLayouts = []string{time.RFC3339, "2006-01-02"}

// Store is the persistence surface the lifecycle service needs. The MongoDB
// repository implements it; tests use an in-memory fake.
type Store interface {
	Insert(ctx context.Context, d models.Donation) (models.Donation, error)
	FindByID(ctx context.Context, id string) (models.Donation, error)
	Find(ctx context.Context, filter map[string]any) ([]models.Donation, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) (int64, error)
	Delete(ctx context.Context, id string) error
	ClaimAvailable(ctx context.Context, id, recipientID string, at time.Time) (models.Donation, error)
	CompleteClaimed(ctx context.Context, id, recipientID string, at time.Time) (models.Donation, error)
}

// Service owns donation lifecycle rules: creation validation, the
// available -> claimed -> distributed transitions, and the admin escape
// hatches that bypass them.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new lifecycle service instance.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// CreateInput carries the fields a donor submits for a new donation.
type CreateInput struct {
	FoodItem       string `json:"foodItem"`
	Quantity       string `json:"quantity"`
	ExpiryDate     string `json:"expiryDate"`
	PickupLocation string `json:"pickupLocation"`
	Type           string `json:"type"`
	Description    string `json:"description"`
	ContactInfo    string `json:"contactInfo"`
	DonorID        string `json:"donorId"`
	DonorName      string `json:"donorName"`
}

// Create validates the input and stores a new donation with status available.
// Nothing is written when validation fails.
func (s *Service) Create(ctx context.Context, in CreateInput) (models.Donation, error) {
	if s.store == nil {
		return models.Donation{}, models.ErrUnavailable
	}

	switch {
	case strings.TrimSpace(in.FoodItem) == "":
		return models.Donation{}, &models.ValidationError{Field: "foodItem", Reason: "must not be empty"}
	case strings.TrimSpace(in.Quantity) == "":
		return models.Donation{}, &models.ValidationError{Field: "quantity", Reason: "must not be empty"}
	case strings.TrimSpace(in.PickupLocation) == "":
		return models.Donation{}, &models.ValidationError{Field: "pickupLocation", Reason: "must not be empty"}
	case strings.TrimSpace(in.DonorID) == "":
		return models.Donation{}, &models.ValidationError{Field: "donorId", Reason: "must not be empty"}
	}

	expiry, err := parseExpiry(in.ExpiryDate)
	if err != nil {
		return models.Donation{}, &models.ValidationError{Field: "expiryDate", Reason: "must be a valid timestamp"}
	}

	donationType := strings.TrimSpace(in.Type)
	if donationType == "" {
		donationType = models.TypePrepared
	}

	d := models.Donation{
		FoodItem:       strings.TrimSpace(in.FoodItem),
		Quantity:       strings.TrimSpace(in.Quantity),
		ExpiryDate:     expiry,
		PickupLocation: strings.TrimSpace(in.PickupLocation),
		Type:           donationType,
		Description:    strings.TrimSpace(in.Description),
		ContactInfo:    strings.TrimSpace(in.ContactInfo),
		DonorID:        in.DonorID,
		DonorName:      in.DonorName,
		Status:         models.StatusAvailable,
		CreatedAt:      s.now().UTC(),
	}

	created, err := s.store.Insert(ctx, d)
	if err != nil {
		return models.Donation{}, err
	}

	s.logger.Info("donation created",
		zap.String("id", created.ID.Hex()),
		zap.String("donorId", created.DonorID),
		zap.String("type", created.Type))
	return created, nil
}

// Get fetches a single donation by id.
func (s *Service) Get(ctx context.Context, id string) (models.Donation, error) {
	if s.store == nil {
		return models.Donation{}, models.ErrUnavailable
	}
	return s.store.FindByID(ctx, id)
}

// List returns donations matching the equality filter, newest first. A nil
// or empty filter returns everything.
func (s *Service) List(ctx context.Context, filter map[string]any) ([]models.Donation, error) {
	if s.store == nil {
		return nil, models.ErrUnavailable
	}
	return s.store.Find(ctx, filter)
}

// Claim reserves an available donation for a recipient. The transition runs
// as one conditional store update, so a racing second claim loses cleanly
// with a conflict instead of overwriting the winner.
func (s *Service) Claim(ctx context.Context, id, recipientID string) (models.Donation, error) {
	if s.store == nil {
		return models.Donation{}, models.ErrUnavailable
	}
	if strings.TrimSpace(recipientID) == "" {
		return models.Donation{}, &models.ValidationError{Field: "recipientId", Reason: "must not be empty"}
	}

	claimed, err := s.store.ClaimAvailable(ctx, id, recipientID, s.now().UTC())
	if errors.Is(err, models.ErrNotFound) {
		return models.Donation{}, s.transitionFailure(ctx, id, "claim")
	}
	if err != nil {
		return models.Donation{}, err
	}

	s.logger.Info("donation claimed",
		zap.String("id", claimed.ID.Hex()),
		zap.String("claimedBy", recipientID))
	return claimed, nil
}

// Complete marks a claimed donation as distributed. Only the recipient
// holding the claim may complete it.
func (s *Service) Complete(ctx context.Context, id, recipientID string) (models.Donation, error) {
	if s.store == nil {
		return models.Donation{}, models.ErrUnavailable
	}

	done, err := s.store.CompleteClaimed(ctx, id, recipientID, s.now().UTC())
	if errors.Is(err, models.ErrNotFound) {
		return models.Donation{}, s.transitionFailure(ctx, id, "complete")
	}
	if err != nil {
		return models.Donation{}, err
	}

	s.logger.Info("donation distributed", zap.String("id", done.ID.Hex()))
	return done, nil
}

// Override applies a partial update without transition checks. This is the
// admin escape hatch: it can force status and associated fields, but the
// write-once fields stay immutable.
func (s *Service) Override(ctx context.Context, id string, fields map[string]any) (int64, error) {
	if s.store == nil {
		return 0, models.ErrUnavailable
	}
	if len(fields) == 0 {
		return 0, &models.ValidationError{Field: "body", Reason: "no fields to update"}
	}

	sanitized := make(map[string]any, len(fields))
	for k, v := range fields {
		switch k {
		case "id", "_id", "donorId", "donorName", "createdAt":
			// write-once at creation
			continue
		case "status":
			status, ok := v.(string)
			if !ok || !models.ValidStatus(status) {
				return 0, &models.ValidationError{Field: "status", Reason: "unknown status"}
			}
			sanitized[k] = status
		case "expiryDate", "claimedAt", "distributedAt":
			switch raw := v.(type) {
			case string:
				parsed, err := parseExpiry(raw)
				if err != nil {
					return 0, &models.ValidationError{Field: k, Reason: "must be a valid timestamp"}
				}
				sanitized[k] = parsed
			case time.Time:
				sanitized[k] = raw
			default:
				// Anything else would corrupt the stored timestamp field.
				return 0, &models.ValidationError{Field: k, Reason: "must be a valid timestamp"}
			}
		default:
			sanitized[k] = v
		}
	}
	if len(sanitized) == 0 {
		return 0, &models.ValidationError{Field: "body", Reason: "no updatable fields"}
	}

	modified, err := s.store.UpdateFields(ctx, id, sanitized)
	if err != nil {
		return 0, err
	}

	s.logger.Info("donation overridden",
		zap.String("id", id),
		zap.Int64("modifiedCount", modified))
	return modified, nil
}

// Delete permanently removes a donation record.
func (s *Service) Delete(ctx context.Context, id string) error {
	if s.store == nil {
		return models.ErrUnavailable
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("donation deleted", zap.String("id", id))
	return nil
}

// transitionFailure disambiguates a failed conditional update: either the
// record is gone, or it exists in a state the transition does not permit.
func (s *Service) transitionFailure(ctx context.Context, id, op string) error {
	current, err := s.store.FindByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return models.ErrNotFound
	}
	if err != nil {
		return err
	}
	return &models.ConflictError{Op: op, Current: current.Status}
}

func parseExpiry(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty expiry date")
	}
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized expiry date %q", value)
}
