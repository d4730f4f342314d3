package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/foodsecurity/foodshare/internal/config"
	"github.com/foodsecurity/foodshare/internal/domain/models"
)

// Exporter is the sink for scheduled analytics snapshots.
type Exporter interface {
	AppendSummary(ctx context.Context, report models.SummaryReport) error
}

// ReportExporter appends aggregate snapshots to a Google Sheets spreadsheet,
// giving operators a running history the dashboards do not keep.
type ReportExporter struct {
	service       *sheetsapi.Service
	spreadsheetID string
	exportRange   string
	logger        *zap.Logger
}

// NewReportExporter builds a Google Sheets backed exporter instance.
func NewReportExporter(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Exporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &ReportExporter{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		exportRange:   cfg.ExportRange,
		logger:        logger,
	}, nil
}

// AppendSummary writes one snapshot row: timestamp, totals per status, the
// flagged count, and the per-type breakdown.
func (e *ReportExporter) AppendSummary(ctx context.Context, report models.SummaryReport) error {
	row := []interface{}{
		report.GeneratedAt.Format(time.RFC3339),
		report.Total,
		report.ByStatus[models.StatusAvailable],
		report.ByStatus[models.StatusClaimed],
		report.ByStatus[models.StatusDistributed],
		report.Flagged,
		report.ByType[models.TypePrepared],
		report.ByType[models.TypeGrocery],
		report.ByType[models.TypeProduce],
		report.ByType[models.TypeBakery],
		report.ByType[models.TypeDairy],
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{row}}

	call := e.service.Spreadsheets.Values.Append(e.spreadsheetID, e.exportRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append summary into range %s: %w", e.exportRange, err)
	}

	e.logger.Debug("summary row appended to sheet",
		zap.String("range", e.exportRange),
		zap.Int("total", report.Total))
	return nil
}
