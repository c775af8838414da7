package api

import "errors"

// ScrapeRequest is the inbound batch submission payload.
type ScrapeRequest struct {
	ASINs       []string `json:"asins"`
	CountryCode string   `json:"country_code"`
}

// Validate checks structural requirements. An empty (but present) ASIN list
// is allowed and yields an empty result list.
func (r *ScrapeRequest) Validate() error {
	if r.ASINs == nil {
		return errors.New("asins is required")
	}
	return nil
}
