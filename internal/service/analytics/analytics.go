// Package analytics derives the analyst-facing aggregates from a raw
// donation set. Everything here is a pure function: same input slice, same
// report, no store access.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/foodsecurity/foodshare/internal/domain/models"
)

const (
	// leaderboardSize caps the top donors/recipients lists.
	leaderboardSize = 5
	// trendMonths caps the monthly trend series to the most recent buckets.
	trendMonths = 6
)

// Summarize computes the full aggregate over the given records. Ties in the
// leaderboards break by first-encountered order among equal counts, so the
// result is deterministic for a given input ordering.
func Summarize(records []models.Donation, now time.Time) models.SummaryReport {
	report := models.SummaryReport{
		Total:       len(records),
		ByStatus:    map[string]int{},
		ByType:      map[string]int{},
		GeneratedAt: now,
	}

	for _, d := range records {
		report.ByStatus[d.Status]++
		report.ByType[d.Type]++
		if d.Flagged(now) {
			report.Flagged++
		}
	}

	report.TopDonors = topContributors(records, func(d models.Donation) (string, string) {
		return d.DonorID, d.DonorName
	})
	report.TopRecipients = topContributors(records, func(d models.Donation) (string, string) {
		if d.ClaimedBy == "" {
			return "", ""
		}
		return d.ClaimedBy, recipientLabel(d.ClaimedBy)
	})
	report.MonthlyTrends = monthlyTrends(records)

	return report
}

// WithinWindow keeps records created in the trailing window ending at now.
// A non-positive day count keeps everything.
func WithinWindow(records []models.Donation, now time.Time, days int) []models.Donation {
	if days <= 0 {
		return records
	}
	cutoff := now.AddDate(0, 0, -days)

	out := make([]models.Donation, 0, len(records))
	for _, d := range records {
		if !d.CreatedAt.Before(cutoff) {
			out = append(out, d)
		}
	}
	return out
}

func topContributors(records []models.Donation, key func(models.Donation) (id, name string)) []models.Contributor {
	byID := map[string]*models.Contributor{}
	order := map[string]int{}

	for _, d := range records {
		id, name := key(d)
		if id == "" {
			continue
		}
		c, ok := byID[id]
		if !ok {
			c = &models.Contributor{ID: id, Name: name}
			byID[id] = c
			order[id] = len(order)
		}
		c.Count++
	}

	ranked := make([]models.Contributor, 0, len(byID))
	for _, c := range byID {
		ranked = append(ranked, *c)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return order[ranked[i].ID] < order[ranked[j].ID]
	})

	if len(ranked) > leaderboardSize {
		ranked = ranked[:leaderboardSize]
	}
	return ranked
}

// monthlyTrends buckets records by creation month. A distributed record
// counts in the month it was created, matching how the trend chart reads.
func monthlyTrends(records []models.Donation) []models.MonthlyTrend {
	byMonth := map[string]*models.MonthlyTrend{}

	for _, d := range records {
		month := d.CreatedAt.Format("2006-01")
		t, ok := byMonth[month]
		if !ok {
			t = &models.MonthlyTrend{Month: month}
			byMonth[month] = t
		}
		t.Donations++
		if d.Status == models.StatusDistributed {
			t.Distributed++
		}
	}

	trends := make([]models.MonthlyTrend, 0, len(byMonth))
	for _, t := range byMonth {
		trends = append(trends, *t)
	}
	sort.Slice(trends, func(i, j int) bool { return trends[i].Month < trends[j].Month })

	if len(trends) > trendMonths {
		trends = trends[len(trends)-trendMonths:]
	}
	return trends
}

// recipientLabel builds a short display label from an opaque recipient id;
// donation records do not carry recipient names.
func recipientLabel(id string) string {
	suffix := id
	if len(suffix) > 3 {
		suffix = suffix[len(suffix)-3:]
	}
	return fmt.Sprintf("Recipient %s", suffix)
}
