// Package foodshare is a typed client for the platform API, used by the
// polling dashboards' backend-for-frontend processes and by ops tooling.
// It carries its own wire types so consumers outside this module can build
// against it.
package foodshare

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Donation mirrors one record of the donations collection as the API
// serves it.
type Donation struct {
	ID             string     `json:"id"`
	FoodItem       string     `json:"foodItem"`
	Quantity       string     `json:"quantity"`
	ExpiryDate     time.Time  `json:"expiryDate"`
	PickupLocation string     `json:"pickupLocation"`
	Type           string     `json:"type"`
	Description    string     `json:"description,omitempty"`
	ContactInfo    string     `json:"contactInfo,omitempty"`
	DonorID        string     `json:"donorId"`
	DonorName      string     `json:"donorName"`
	Status         string     `json:"status"`
	ClaimedBy      string     `json:"claimedBy,omitempty"`
	ClaimedAt      *time.Time `json:"claimedAt,omitempty"`
	DistributedAt  *time.Time `json:"distributedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// CreateDonationInput is the payload for a new donation. The server takes
// the donor identity from the bearer token, not from the body.
type CreateDonationInput struct {
	FoodItem       string `json:"foodItem"`
	Quantity       string `json:"quantity"`
	ExpiryDate     string `json:"expiryDate"`
	PickupLocation string `json:"pickupLocation"`
	Type           string `json:"type,omitempty"`
	Description    string `json:"description,omitempty"`
	ContactInfo    string `json:"contactInfo,omitempty"`
}

// User mirrors a platform account as the auth endpoints serve it.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Contributor is one leaderboard row of the analyst aggregate.
type Contributor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MonthlyTrend is one "YYYY-MM" bucket of the analyst aggregate.
type MonthlyTrend struct {
	Month       string `json:"month"`
	Donations   int    `json:"donations"`
	Distributed int    `json:"distributed"`
}

// SummaryReport mirrors the analyst aggregate response.
type SummaryReport struct {
	Total         int            `json:"total"`
	ByStatus      map[string]int `json:"byStatus"`
	ByType        map[string]int `json:"byType"`
	Flagged       int            `json:"flagged"`
	TopDonors     []Contributor  `json:"topDonors"`
	TopRecipients []Contributor  `json:"topRecipients"`
	MonthlyTrends []MonthlyTrend `json:"monthlyTrends"`
	GeneratedAt   time.Time      `json:"generatedAt"`
}

// Client exposes the platform API operations.
type Client interface {
	Login(ctx context.Context, email, password string) (User, error)
	ListDonations(ctx context.Context, view string) ([]Donation, error)
	CreateDonation(ctx context.Context, in CreateDonationInput) (Donation, error)
	ClaimDonation(ctx context.Context, id string) (Donation, error)
	CompleteDonation(ctx context.Context, id string) (Donation, error)
	Summary(ctx context.Context, windowDays int) (SummaryReport, error)
}

// APIClient is a resty-backed implementation of Client. Login stores the
// issued token for subsequent calls.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a platform API client against the given base URL.
func NewClient(baseURL string) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{httpClient: restyClient}
}

// apiError mirrors the platform's error body.
type apiError struct {
	Error string `json:"error"`
}

type sessionResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Login authenticates and keeps the bearer token on the client.
func (c *APIClient) Login(ctx context.Context, email, password string) (User, error) {
	result := new(sessionResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(result).
		SetError(apiErr).
		Post("/api/auth/login")
	if err != nil {
		return User{}, fmt.Errorf("login: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return User{}, fmt.Errorf("login failed: status=%d, message=%s", resp.StatusCode(), apiErr.Error)
	}

	c.httpClient.SetAuthToken(result.Token)
	return result.User, nil
}

// ListDonations fetches the caller's view of the collection. view may be
// "donor", "recipient" or empty for the unshaped list.
func (c *APIClient) ListDonations(ctx context.Context, view string) ([]Donation, error) {
	var result []Donation
	apiErr := new(apiError)

	req := c.httpClient.R().SetContext(ctx).SetResult(&result).SetError(apiErr)
	if view != "" {
		req.SetQueryParam("view", view)
	}

	resp, err := req.Get("/api/donations")
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("list donations failed: status=%d, message=%s", resp.StatusCode(), apiErr.Error)
	}
	return result, nil
}

// CreateDonation posts a new donation.
func (c *APIClient) CreateDonation(ctx context.Context, in CreateDonationInput) (Donation, error) {
	return c.donationCall(ctx, http.MethodPost, "/api/donations", in)
}

// ClaimDonation reserves an available donation for the logged-in recipient.
func (c *APIClient) ClaimDonation(ctx context.Context, id string) (Donation, error) {
	return c.donationCall(ctx, http.MethodPost, fmt.Sprintf("/api/donations/%s/claim", id), nil)
}

// CompleteDonation marks the logged-in recipient's claim as distributed.
func (c *APIClient) CompleteDonation(ctx context.Context, id string) (Donation, error) {
	return c.donationCall(ctx, http.MethodPost, fmt.Sprintf("/api/donations/%s/complete", id), nil)
}

// Summary fetches the analyst aggregate, optionally windowed.
func (c *APIClient) Summary(ctx context.Context, windowDays int) (SummaryReport, error) {
	result := new(SummaryReport)
	apiErr := new(apiError)

	req := c.httpClient.R().SetContext(ctx).SetResult(result).SetError(apiErr)
	if windowDays > 0 {
		req.SetQueryParam("windowDays", fmt.Sprintf("%d", windowDays))
	}

	resp, err := req.Get("/api/reports/summary")
	if err != nil {
		return SummaryReport{}, fmt.Errorf("summary: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return SummaryReport{}, fmt.Errorf("summary failed: status=%d, message=%s", resp.StatusCode(), apiErr.Error)
	}
	return *result, nil
}

func (c *APIClient) donationCall(ctx context.Context, method, path string, body any) (Donation, error) {
	result := new(Donation)
	apiErr := new(apiError)

	req := c.httpClient.R().SetContext(ctx).SetResult(result).SetError(apiErr)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return Donation{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return Donation{}, fmt.Errorf("%s %s failed: status=%d, message=%s", method, path, resp.StatusCode(), apiErr.Error)
	}
	return *result, nil
}
