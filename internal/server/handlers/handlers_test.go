package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodsecurity/foodshare/internal/domain/models"
	"github.com/foodsecurity/foodshare/internal/repository/memory"
	"github.com/foodsecurity/foodshare/internal/server/handlers"
	"github.com/foodsecurity/foodshare/internal/server/router"
	"github.com/foodsecurity/foodshare/internal/service/auth"
	"github.com/foodsecurity/foodshare/internal/service/donations"
)

type testServer struct {
	engine *gin.Engine
}

func newTestServer(t *testing.T, store donations.Store) *testServer {
	t.Helper()

	lifecycleSvc := donations.NewService(store, nil)
	identitySvc := auth.NewService(memory.NewUserStore(), "test-secret", time.Hour, nil)

	engine := router.New(
		handlers.NewDonationHandler(lifecycleSvc, nil),
		handlers.NewAuthHandler(identitySvc, nil),
		handlers.NewReportsHandler(lifecycleSvc, nil),
		identitySvc,
		nil,
	)
	return &testServer{engine: engine}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

// register creates an account through the API and returns its id and token.
func (s *testServer) register(t *testing.T, name, role string) (id, token string) {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    fmt.Sprintf("%s@example.org", name),
		"password": "correct horse",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.User.ID.Hex(), resp.Token
}

func (s *testServer) createDonation(t *testing.T, token string) models.Donation {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/donations", token, map[string]string{
		"foodItem":       "Bread",
		"quantity":       "5 loaves",
		"expiryDate":     time.Now().AddDate(0, 0, 1).Format(time.RFC3339),
		"pickupLocation": "123 Main St",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var d models.Donation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	return d
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestAuthRoundTrip(t *testing.T) {
	srv := newTestServer(t, memory.NewDonationStore())
	userID, token := srv.register(t, "alice", models.RoleDonor)

	rec := srv.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var identity models.Identity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &identity))
	assert.Equal(t, userID, identity.UserID)
	assert.Equal(t, models.RoleDonor, identity.Role)

	rec = srv.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.org", "password": "correct horse",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.org", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestsWithoutTokenAreRejected(t *testing.T) {
	srv := newTestServer(t, memory.NewDonationStore())

	rec := srv.do(t, http.MethodGet, "/api/donations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/donations", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateDonation(t *testing.T) {
	srv := newTestServer(t, memory.NewDonationStore())
	donorID, token := srv.register(t, "alice", models.RoleDonor)

	d := srv.createDonation(t, token)
	assert.False(t, d.ID.IsZero())
	assert.Equal(t, models.StatusAvailable, d.Status)
	assert.Equal(t, models.TypePrepared, d.Type)
	assert.Equal(t, donorID, d.DonorID, "record belongs to the verified caller")
	assert.Equal(t, "alice", d.DonorName)
}

func TestCreateDonationValidation(t *testing.T) {
	srv := newTestServer(t, memory.NewDonationStore())
	_, token := srv.register(t, "alice", models.RoleDonor)

	rec := srv.do(t, http.MethodPost, "/api/donations", token, map[string]string{
		"quantity":       "5 loaves",
		"expiryDate":     time.Now().AddDate(0, 0, 1).Format(time.RFC3339),
		"pickupLocation": "123 Main St",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorBody(t, rec), "foodItem")
}

func TestListShapesByView(t *testing.T) {
	srv := newTestServer(t, memory.NewDonationStore())
	_, donorToken := srv.register(t, "alice", models.RoleDonor)
	_, otherToken := srv.register(t, "bob", models.RoleDonor)
	recipientID, recipientToken := srv.register(t, "carol", models.RoleRecipient)

	mine := srv.createDonation(t, donorToken)
	srv.createDonation(t, otherToken)

	rec := srv.do(t, http.MethodGet, "/api/donations?view=donor", donorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view []models.Donation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view, 1)
	assert.Equal(t, mine.ID, view[0].ID)

	// Recipient sees both available records; after claiming one, a second
	// recipient no longer sees it.
	rec = srv.do(t, http.MethodGet, "/api/donations?view=recipient", recipientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Len(t, view, 2)

	rec = srv.do(t, http.MethodPost, "/api/donations/"+mine.ID.Hex()+"/claim", recipientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	_, strangerToken := srv.register(t, "dave", models.RoleRecipient)
	rec = srv.do(t, http.MethodGet, "/api/donations?view=recipient", strangerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view, 1)
	assert.NotEqual(t, mine.ID, view[0].ID)

	// The claim holder still sees their claim.
	rec = srv.do(t, http.MethodGet, "/api/donations?view=recipient", recipientToken, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view, 2)

	var claimed models.Donation
	for _, d := range view {
		if d.ID == mine.ID {
			claimed = d
		}
	}
	assert.Equal(t, recipientID, claimed.ClaimedBy)
}

func TestClaimConflict(t *testing.T) {
	srv := newTestServer(t, memory.NewDonationStore())
	_, donorToken := srv.register(t, "alice", models.RoleDonor)
	r1ID, r1Token := srv.register(t, "carol", models.RoleRecipient)
	_, r2Token := srv.register(t, "dave", models.RoleRecipient)

	d := srv.createDonation(t, donorToken)
	path := "/api/donations/" + d.ID.Hex() + "/claim"

	rec := srv.do(t, http.MethodPost, path, r1Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var claimed models.Donation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &claimed))
	assert.Equal(t, models.StatusClaimed, claimed.Status)
	assert.Equal(t, r1ID, claimed.ClaimedBy)

	rec = srv.do(t, http.MethodPost, path, r2Token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NotEmpty(t, errorBody(t, rec))
}

func TestClaimUnknownID(t *testing.T) {
	srv := newTestServer(t, memory.NewDonationStore())
	_, token := srv.register(t, "carol", models.RoleRecipient)

	rec := srv.do(t, http.MethodPost, "/api/donations/64b0c0ffee0000000000dead/claim", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Donation not found", errorBody(t, rec))
}

func TestCompleteLifecycle(t *testing.T) {
	srv := newTestServer(t, memory.NewDonationStore())
	_, donorToken := srv.register(t, "alice", models.RoleDonor)
	_, recipientToken := srv.register(t, "carol", models.RoleRecipient)

	d := srv.createDonation(t, donorToken)
	base := "/api/donations/" + d.ID.Hex()

	// Completing an unclaimed donation conflicts.
	rec := srv.do(t, http.MethodPost, base+"/complete", recipientToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = srv.do(t, http.MethodPost, base+"/claim", recipientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Only the claim holder may complete.
	_, strangerToken := srv.register(t, "dave", models.RoleRecipient)
	rec = srv.do(t, http.MethodPost, base+"/complete", strangerToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = srv.do(t, http.MethodPost, base+"/complete", recipientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var done models.Donation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &done))
	assert.Equal(t, models.StatusDistributed, done.Status)
	require.NotNil(t, done.DistributedAt)
}

func TestUpdateRequiresAdmin(t *testing.T) {
	srv := newTestServer(t, memory.NewDonationStore())
	_, donorToken := srv.register(t, "alice", models.RoleDonor)
	_, adminToken := srv.register(t, "eve", models.RoleAdmin)

	d := srv.createDonation(t, donorToken)
	path := "/api/donations/" + d.ID.Hex()

	rec := srv.do(t, http.MethodPatch, path, donorToken, map[string]any{"status": models.StatusClaimed})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodPatch, path, adminToken, map[string]any{"status": models.StatusClaimed})
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Updated successfully", body["message"])
	assert.Equal(t, float64(1), body["modifiedCount"])
}

func TestUpdateUnknownID(t *testing.T) {
	srv := newTestServer(t, memory.NewDonationStore())
	_, adminToken := srv.register(t, "eve", models.RoleAdmin)

	rec := srv.do(t, http.MethodPatch, "/api/donations/64b0c0ffee0000000000dead", adminToken, map[string]any{
		"pickupLocation": "moved",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Donation not found", errorBody(t, rec))
}

func TestDelete(t *testing.T) {
	srv := newTestServer(t, memory.NewDonationStore())
	_, donorToken := srv.register(t, "alice", models.RoleDonor)
	_, adminToken := srv.register(t, "eve", models.RoleAdmin)

	d := srv.createDonation(t, donorToken)
	path := "/api/donations/" + d.ID.Hex()

	rec := srv.do(t, http.MethodDelete, path, donorToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodDelete, path, adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Deleted successfully", body["message"])

	rec = srv.do(t, http.MethodDelete, path, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStoreUnavailableMapsTo503(t *testing.T) {
	srv := newTestServer(t, nil)
	_, token := srv.register(t, "alice", models.RoleDonor)

	rec := srv.do(t, http.MethodGet, "/api/donations", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Database not initialized", errorBody(t, rec))
}

func TestSummaryEndpoint(t *testing.T) {
	srv := newTestServer(t, memory.NewDonationStore())
	_, donorToken := srv.register(t, "alice", models.RoleDonor)
	_, analystToken := srv.register(t, "frank", models.RoleAnalyst)

	srv.createDonation(t, donorToken)
	srv.createDonation(t, donorToken)

	rec := srv.do(t, http.MethodGet, "/api/reports/summary", donorToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/reports/summary", analystToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var report models.SummaryReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 2, report.ByStatus[models.StatusAvailable])
	require.Len(t, report.TopDonors, 1)
	assert.Equal(t, "alice", report.TopDonors[0].Name)

	rec = srv.do(t, http.MethodGet, "/api/reports/summary?windowDays=abc", analystToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/reports/summary?windowDays=30", analystToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, memory.NewDonationStore())
	rec := srv.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
