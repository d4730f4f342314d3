package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/foodsecurity/foodshare/internal/service/analytics"
	"github.com/foodsecurity/foodshare/internal/service/donations"
)

// ReportsHandler serves the analyst aggregate.
type ReportsHandler struct {
	svc    *donations.Service
	logger *zap.Logger
}

// NewReportsHandler constructs the HTTP handler adapter.
func NewReportsHandler(svc *donations.Service, logger *zap.Logger) *ReportsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportsHandler{svc: svc, logger: logger}
}

// Summary computes the aggregate over the current record set. An optional
// windowDays query param restricts it to a trailing creation window first.
func (h *ReportsHandler) Summary(c *gin.Context) {
	records, err := h.svc.List(c.Request.Context(), nil)
	if err != nil {
		h.logger.Error("failed loading records for summary", zap.Error(err))
		respondError(c, err)
		return
	}

	now := time.Now().UTC()

	if raw := c.Query("windowDays"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "windowDays must be a non-negative integer"})
			return
		}
		records = analytics.WithinWindow(records, now, days)
	}

	c.JSON(http.StatusOK, analytics.Summarize(records, now))
}
