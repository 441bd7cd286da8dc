package server

import (
	"github.com/hubenschmidt/reelmatch/recommend"
	"github.com/hubenschmidt/reelmatch/server/store"
)

// Re-export types from store package
type (
	Lookup        = store.Lookup
	LookupSummary = store.LookupSummary
)

type RecommendResponse struct {
	LookupID        string                     `json:"lookup_id"`
	Query           string                     `json:"query"`
	Match           string                     `json:"match"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

type LookupListResponse struct {
	Lookups []Lookup `json:"lookups"`
}

type ErrorResponse struct {
	Error    string `json:"error"`
	Query    string `json:"query,omitempty"`
	LookupID string `json:"lookup_id,omitempty"`
}
