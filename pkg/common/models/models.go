package models

import (
	"time"
)

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // bundle-generated, status-changed, payer-response
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

// Dataset generation
type GenerateRequest struct {
	OrganizationID string `json:"organization_id"`
	Count          int    `json:"count"`
	Seed           int64  `json:"seed,omitempty"`
}

type GenerateResponse struct {
	OrganizationID   string    `json:"organization_id"`
	ClaimCount       int       `json:"claim_count"`
	LineCount        int       `json:"line_count"`
	StatusCount      int       `json:"status_count"`
	RemittanceCount  int       `json:"remittance_count"`
	PriorAuthCount   int       `json:"prior_auth_count"`
	EligibilityCount int       `json:"eligibility_count"`
	Seed             int64     `json:"seed"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// Live status transitions
type StatusEventRequest struct {
	Event string `json:"event"`
	Actor string `json:"actor,omitempty"`
	Note  string `json:"note,omitempty"`
}

// Aggregate read model for dashboard consumers
type BundleSummary struct {
	OrganizationID   string           `json:"organization_id"`
	ClaimCount       int64            `json:"claim_count"`
	ClaimsByStatus   map[string]int64 `json:"claims_by_status"`
	TotalCharged     float64          `json:"total_charged"`
	TotalPaid        float64          `json:"total_paid"`
	TotalAdjusted    float64          `json:"total_adjusted"`
	RemittanceCount  int64            `json:"remittance_count"`
	PriorAuthCount   int64            `json:"prior_auth_count"`
	EligibilityCount int64            `json:"eligibility_count"`
	ComputedAt       time.Time        `json:"computed_at"`
}
