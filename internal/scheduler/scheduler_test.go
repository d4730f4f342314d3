package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodsecurity/foodshare/internal/config"
	"github.com/foodsecurity/foodshare/internal/domain/models"
	"github.com/foodsecurity/foodshare/internal/repository/memory"
	"github.com/foodsecurity/foodshare/internal/service/donations"
)

type captureExporter struct {
	reports []models.SummaryReport
}

func (c *captureExporter) AppendSummary(_ context.Context, report models.SummaryReport) error {
	c.reports = append(c.reports, report)
	return nil
}

func testConfig() config.ReportingConfig {
	return config.ReportingConfig{
		ExportCronSchedule: "0 2 * * *",
		SweepCronSchedule:  "0 * * * *",
	}
}

func seedService(t *testing.T) *donations.Service {
	t.Helper()
	svc := donations.NewService(memory.NewDonationStore(), nil)

	_, err := svc.Create(context.Background(), donations.CreateInput{
		FoodItem:       "Bread",
		Quantity:       "5 loaves",
		ExpiryDate:     time.Now().AddDate(0, 0, -1).Format(time.RFC3339),
		PickupLocation: "123 Main St",
		DonorID:        "d1",
		DonorName:      "Alice",
	})
	require.NoError(t, err)
	return svc
}

func TestExportSnapshot(t *testing.T) {
	exporter := &captureExporter{}
	sched := NewScheduler(testConfig(), seedService(t), exporter, nil)

	sched.exportSnapshot()

	require.Len(t, exporter.reports, 1)
	report := exporter.reports[0]
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.ByStatus[models.StatusAvailable])
	assert.Equal(t, 1, report.Flagged, "expired undistributed record is flagged")
}

func TestSweepDoesNotMutateRecords(t *testing.T) {
	svc := seedService(t)
	sched := NewScheduler(testConfig(), svc, nil, nil)

	sched.sweepFlagged()

	records, err := svc.List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.StatusAvailable, records[0].Status, "sweep observes, never transitions")
}

func TestStartStopWithValidSchedules(t *testing.T) {
	sched := NewScheduler(testConfig(), seedService(t), &captureExporter{}, nil)
	sched.Start()
	sched.Stop()
}
