package donations

import (
	"context"
	"strings"

	"github.com/foodsecurity/foodshare/internal/domain/models"
)

// Role-shaped read views. Each is a pure predicate over the full record
// list; the dashboards re-poll these rather than subscribing to changes.

// DonorView keeps the donations created by the given donor, all statuses.
// Doubles as the donor's history.
func DonorView(records []models.Donation, donorID string) []models.Donation {
	out := make([]models.Donation, 0, len(records))
	for _, d := range records {
		if d.DonorID == donorID {
			out = append(out, d)
		}
	}
	return out
}

// RecipientView keeps donations a recipient can act on: everything still
// available, plus the claims they currently hold.
func RecipientView(records []models.Donation, recipientID string) []models.Donation {
	out := make([]models.Donation, 0, len(records))
	for _, d := range records {
		if d.Status == models.StatusAvailable ||
			(d.Status == models.StatusClaimed && d.ClaimedBy == recipientID) {
			out = append(out, d)
		}
	}
	return out
}

// AdminFilter narrows the admin table. Empty fields match everything;
// non-empty fields are combined with AND.
type AdminFilter struct {
	Search string
	Status string
	Type   string
}

// AdminView applies the free-text search over foodItem, donorName and
// pickupLocation together with the independent status and type filters.
func AdminView(records []models.Donation, f AdminFilter) []models.Donation {
	needle := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]models.Donation, 0, len(records))
	for _, d := range records {
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		if f.Type != "" && d.Type != f.Type {
			continue
		}
		if needle != "" && !matchesSearch(d, needle) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func matchesSearch(d models.Donation, needle string) bool {
	return strings.Contains(strings.ToLower(d.FoodItem), needle) ||
		strings.Contains(strings.ToLower(d.DonorName), needle) ||
		strings.Contains(strings.ToLower(d.PickupLocation), needle)
}

// ListForDonor returns the donor's history, newest first. The donorId
// predicate is a plain equality filter, so it runs store-side.
func (s *Service) ListForDonor(ctx context.Context, donorID string) ([]models.Donation, error) {
	if s.store == nil {
		return nil, models.ErrUnavailable
	}
	return s.store.Find(ctx, map[string]any{"donorId": donorID})
}

// ListForRecipient returns the recipient-actionable view. The OR across
// status and claim holder is not a single equality filter, so it reads the
// full set and shapes it here.
func (s *Service) ListForRecipient(ctx context.Context, recipientID string) ([]models.Donation, error) {
	records, err := s.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	return RecipientView(records, recipientID), nil
}

// ListForAdmin returns the filtered admin table.
func (s *Service) ListForAdmin(ctx context.Context, f AdminFilter) ([]models.Donation, error) {
	records, err := s.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	return AdminView(records, f), nil
}
