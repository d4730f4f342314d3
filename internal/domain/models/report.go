package models

import "time"

// Contributor is one leaderboard row: a donor or recipient ranked by the
// number of donations they touched.
type Contributor struct {
	ID    string `bson:"id" json:"id"`
	Name  string `bson:"name" json:"name"`
	Count int    `bson:"count" json:"count"`
}

// MonthlyTrend counts donations created, and among those the ones that
// reached distribution, for a single "YYYY-MM" bucket.
type MonthlyTrend struct {
	Month       string `bson:"month" json:"month"`
	Donations   int    `bson:"donations" json:"donations"`
	Distributed int    `bson:"distributed" json:"distributed"`
}

// SummaryReport is the analyst aggregate derived from the raw donation set.
// Computed fresh per request; never persisted alongside the donations.
type SummaryReport struct {
	Total         int            `bson:"total" json:"total"`
	ByStatus      map[string]int `bson:"byStatus" json:"byStatus"`
	ByType        map[string]int `bson:"byType" json:"byType"`
	Flagged       int            `bson:"flagged" json:"flagged"`
	TopDonors     []Contributor  `bson:"topDonors" json:"topDonors"`
	TopRecipients []Contributor  `bson:"topRecipients" json:"topRecipients"`
	MonthlyTrends []MonthlyTrend `bson:"monthlyTrends" json:"monthlyTrends"`
	GeneratedAt   time.Time      `bson:"generatedAt" json:"generatedAt"`
}
