package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/foodsecurity/foodshare/internal/service/donations"
)

// DonationHandler adapts the lifecycle service to the HTTP surface the
// dashboards poll.
type DonationHandler struct {
	svc    *donations.Service
	logger *zap.Logger
}

// NewDonationHandler constructs the HTTP handler adapter.
func NewDonationHandler(svc *donations.Service, logger *zap.Logger) *DonationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DonationHandler{svc: svc, logger: logger}
}

// List returns donations shaped for the caller. view=donor and
// view=recipient produce the role views; otherwise the optional search,
// status and type query params narrow the full set conjunctively.
func (h *DonationHandler) List(c *gin.Context) {
	identity, _ := callerIdentity(c)

	var (
		records any
		err     error
	)
	switch c.Query("view") {
	case "donor":
		records, err = h.svc.ListForDonor(c.Request.Context(), identity.UserID)
	case "recipient":
		records, err = h.svc.ListForRecipient(c.Request.Context(), identity.UserID)
	default:
		if donorID := c.Query("donorId"); donorID != "" {
			records, err = h.svc.List(c.Request.Context(), map[string]any{"donorId": donorID})
			break
		}
		records, err = h.svc.ListForAdmin(c.Request.Context(), donations.AdminFilter{
			Search: c.Query("search"),
			Status: c.Query("status"),
			Type:   c.Query("type"),
		})
	}
	if err != nil {
		h.logger.Error("failed listing donations", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// Get returns a single donation by id.
func (h *DonationHandler) Get(c *gin.Context) {
	donation, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, donation)
}

// Create stores a new donation for the authenticated caller.
func (h *DonationHandler) Create(c *gin.Context) {
	var in donations.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("invalid donation payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	// The verified identity owns the record, whatever the body says.
	if identity, ok := callerIdentity(c); ok {
		in.DonorID = identity.UserID
		in.DonorName = identity.Name
	}

	created, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Claim reserves an available donation for the authenticated recipient.
func (h *DonationHandler) Claim(c *gin.Context) {
	identity, _ := callerIdentity(c)

	claimed, err := h.svc.Claim(c.Request.Context(), c.Param("id"), identity.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, claimed)
}

// Complete marks the caller's claimed donation as distributed.
func (h *DonationHandler) Complete(c *gin.Context) {
	identity, _ := callerIdentity(c)

	done, err := h.svc.Complete(c.Request.Context(), c.Param("id"), identity.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, done)
}

// Update applies an admin partial update without transition checks.
func (h *DonationHandler) Update(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		h.logger.Warn("invalid update payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	modified, err := h.svc.Override(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Updated successfully", "modifiedCount": modified})
}

// Delete permanently removes a donation.
func (h *DonationHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deleted successfully"})
}
