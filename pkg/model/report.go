package model

import "github.com/google/uuid"

// ProductRecord is the outcome of a single product-page fetch. Exactly one is
// produced per requested ASIN; a failed fetch is reported through Err rather
// than an error return, so the fan-in step treats every outcome uniformly.
type ProductRecord struct {
	ASIN        string   `json:"asin"`
	Locale      string   `json:"country_code"`
	SourceURL   string   `json:"url"`
	Rating      *float64 `json:"rating"`
	ReviewCount *int     `json:"review_count"`
	Err         string   `json:"error,omitempty"`
}

// ReviewRecord is one extracted critical review, in page presentation order.
type ReviewRecord struct {
	Star   float64 `json:"star"`
	Review string  `json:"review"`
	Date   string  `json:"date"`
}

// CombinedResult pairs a successfully fetched product with its negative
// reviews. NegativeReviewCount always equals len(NegativeReviews).
type CombinedResult struct {
	ProductRecord
	NegativeReviews     []ReviewRecord `json:"negative_reviews"`
	NegativeReviewCount int            `json:"negative_review_count"`
}

// BatchReport wraps a batch's surviving results with timing and status
// metadata. Results follow input ASIN order with failed ASINs omitted.
type BatchReport struct {
	BatchID         uuid.UUID        `json:"batch_id"`
	Status          string           `json:"status"`
	DurationSeconds float64          `json:"duration_seconds"`
	Results         []CombinedResult `json:"data"`
	Timestamp       string           `json:"timestamp"`
}

// BatchEvent is the summary published to the event bus after a batch
// completes. Payload stays small on purpose; consumers needing full results
// call the API.
type BatchEvent struct {
	BatchID         uuid.UUID `json:"batch_id"`
	Locale          string    `json:"country_code"`
	Requested       int       `json:"requested"`
	Succeeded       int       `json:"succeeded"`
	DurationSeconds float64   `json:"duration_seconds"`
	Timestamp       string    `json:"timestamp"`
}
