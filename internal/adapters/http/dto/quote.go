package dto

import (
	"time"

	"github.com/jsamuelsen/quote-manager/internal/app"
	"github.com/jsamuelsen/quote-manager/internal/domain"
)

// QuoteResponse is the HTTP shape of a quote.
type QuoteResponse struct {
	ID       string `json:"id,omitempty"`
	Text     string `json:"text"`
	Author   string `json:"author,omitempty"`
	Category string `json:"category"`
}

// FromQuote converts a domain quote.
func FromQuote(q domain.Quote) QuoteResponse {
	return QuoteResponse{ID: q.ID, Text: q.Text, Author: q.Author, Category: q.Category}
}

// FromCollection converts a collection, never returning nil.
func FromCollection(c domain.Collection) []QuoteResponse {
	out := make([]QuoteResponse, 0, len(c))
	for _, q := range c {
		out = append(out, FromQuote(q))
	}

	return out
}

// CreateQuoteRequest is the body of POST /quotes.
type CreateQuoteRequest struct {
	ID       string `json:"id"       validate:"omitempty,max=64,quoteid"`
	Text     string `json:"text"     validate:"required,notempty,max=2000"`
	Author   string `json:"author"   validate:"max=200,oneline"`
	Category string `json:"category" validate:"required,notempty,max=100,oneline"`
}

// ToDomain converts the request into a domain quote.
func (r CreateQuoteRequest) ToDomain() domain.Quote {
	return domain.Quote{ID: r.ID, Text: r.Text, Author: r.Author, Category: r.Category}
}

// ListQuotesRequest holds the query parameters of GET /quotes.
type ListQuotesRequest struct {
	PaginationRequest

	Category string `form:"category" validate:"max=100,oneline"`
}

// CategoryRequest is the body of PUT /preferences/category.
// An empty category selects "all".
type CategoryRequest struct {
	Category string `json:"category" validate:"max=100,oneline"`
}

// CategoryResponse reports the selected category.
type CategoryResponse struct {
	Category string `json:"category"`
}

// CategoriesResponse lists the distinct categories.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// ImportResponse reports an import.
type ImportResponse struct {
	Imported []QuoteResponse      `json:"imported"`
	Skipped  []ImportRejectionDTO `json:"skipped"`
}

// ImportRejectionDTO explains one skipped import element.
type ImportRejectionDTO struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// FromImportResult converts an import result.
func FromImportResult(r app.ImportResult) ImportResponse {
	resp := ImportResponse{
		Imported: FromCollection(r.Imported),
		Skipped:  make([]ImportRejectionDTO, 0, len(r.Skipped)),
	}

	for _, s := range r.Skipped {
		resp.Skipped = append(resp.Skipped, ImportRejectionDTO{Index: s.Index, Reason: s.Reason})
	}

	return resp
}

// SyncStatusResponse is the body of GET /sync/status.
type SyncStatusResponse struct {
	InProgress bool                `json:"inProgress"`
	Periodic   bool                `json:"periodic"`
	Interval   string              `json:"interval,omitempty"`
	LastSyncAt *time.Time          `json:"lastSyncAt,omitempty"`
	LastStatus string              `json:"lastStatus,omitempty"`
	Last       *domain.SyncSummary `json:"last,omitempty"`
}

// FromSyncState converts the sync state.
func FromSyncState(s app.SyncState) SyncStatusResponse {
	resp := SyncStatusResponse{
		InProgress: s.InProgress,
		Periodic:   s.Periodic,
		LastStatus: string(s.LastStatus),
		Last:       s.LastSummary,
	}

	if s.Interval > 0 {
		resp.Interval = s.Interval.String()
	}

	if !s.LastSyncAt.IsZero() {
		at := s.LastSyncAt
		resp.LastSyncAt = &at
	}

	return resp
}
