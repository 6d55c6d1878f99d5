// Package domain defines core domain types, constants, and validation for
// the pricing engine. It acts as the validation gate at pipeline entry points.
package domain

import "time"

// ProductRecord is a priced catalog material with its precomputed embedding.
// Records are immutable once ingested except UpdatedAt and Embedding, which
// the ingestion pipeline refreshes on re-ingest.
type ProductRecord struct {
	ID           string    `json:"product_id"`
	Name         string    `json:"material_name"`
	Description  string    `json:"description"`
	UnitPrice    string    `json:"unit_price"` // locale-formatted, e.g. "1.234,56"
	Unit         string    `json:"unit"`
	Region       string    `json:"region"`
	Vendor       string    `json:"vendor"`
	VATRate      string    `json:"vat_rate"`
	QualityScore float64   `json:"quality_score"`
	UpdatedAt    time.Time `json:"updated_at"`
	Source       string    `json:"source"`
	Embedding    []float32 `json:"embedding,omitempty"`
}

// ConfidenceTier buckets a similarity score.
type ConfidenceTier string

const (
	TierHigh   ConfidenceTier = "high"
	TierMedium ConfidenceTier = "medium"
	TierLow    ConfidenceTier = "low"
)

// TierFor assigns a confidence tier using strict thresholds: a similarity of
// exactly 0.8 is medium and exactly 0.6 is low.
func TierFor(similarity float64) ConfidenceTier {
	switch {
	case similarity > 0.8:
		return TierHigh
	case similarity > 0.6:
		return TierMedium
	default:
		return TierLow
	}
}

// MatchResult is one ranked catalog hit. All display fields are stringified
// and the similarity is rounded to 4 decimals. Ephemeral, never persisted.
type MatchResult struct {
	ProductID       string         `json:"product_id"`
	MaterialName    string         `json:"material_name"`
	Description     string         `json:"description"`
	UnitPrice       string         `json:"unit_price"`
	Unit            string         `json:"unit"`
	Region          string         `json:"region"`
	Vendor          string         `json:"vendor"`
	VATRate         string         `json:"vat_rate"`
	QualityScore    string         `json:"quality_score"`
	UpdatedAt       string         `json:"updated_at"`
	Source          string         `json:"source"`
	SimilarityScore string         `json:"similarity_score"`
	ConfidenceTier  ConfidenceTier `json:"confidence_tier"`
}

// Task is one unit of renovation work split out of a transcript.
type Task struct {
	TaskName string   `json:"task_name"`
	AreaM2   *float64 `json:"area_m2,omitempty"`
}

// TranscriptExtraction is the material/vendor view of a transcript.
type TranscriptExtraction struct {
	RenovationType string   `json:"renovation_type,omitempty"`
	Materials      []string `json:"materials"`
	Region         string   `json:"region,omitempty"`
	Vendor         string   `json:"vendor,omitempty"`
}

// TaskPlan is the labor view of a transcript: where, what, and how big.
type TaskPlan struct {
	Zone       string   `json:"zone"`
	City       string   `json:"city,omitempty"`
	BudgetFlag bool     `json:"budget_flag"`
	Tasks      []Task   `json:"tasks"`
	AreaM2     *float64 `json:"area_m2,omitempty"`
}

// ProposalTask is the single synthesized task block of a Proposal.
type ProposalTask struct {
	Label                string   `json:"label"`
	Materials            []string `json:"materials"`
	EstimatedDuration    string   `json:"estimated_duration"`
	MarginProtectedPrice float64  `json:"margin_protected_price"`
	ConfidenceScore      float64  `json:"confidence_score"`
}

// Proposal is the final priced quote returned to the caller.
type Proposal struct {
	QuoteID       string         `json:"quote_id"`
	Tasks         []ProposalTask `json:"tasks"`
	TotalEstimate int            `json:"total_estimate"`
}

// UserType identifies who left feedback on a quote.
type UserType string

const (
	UserContractor UserType = "contractor"
	UserClient     UserType = "client"
)

// ValidUserTypes is the set of recognised feedback user types.
var ValidUserTypes = map[UserType]bool{
	UserContractor: true,
	UserClient:     true,
}

// Feedback is an append-only record of a verdict on a generated quote.
type Feedback struct {
	TaskID    string    `json:"task_id"`
	QuoteID   string    `json:"quote_id"`
	UserType  UserType  `json:"user_type"`
	Verdict   string    `json:"verdict"`
	Comments  string    `json:"comments"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// FeedbackResult is the structured outcome of a feedback save. Persistence
// failures surface here, never as an error to the HTTP caller.
type FeedbackResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

const (
	// StatusSuccess marks a recorded feedback row.
	StatusSuccess = "success"
	// StatusFail marks an absorbed persistence failure.
	StatusFail = "fail"
)
