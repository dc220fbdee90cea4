package dto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// DefaultLimit is the default number of items per page.
const DefaultLimit = 20

// MaxLimit is the maximum allowed items per page.
const MaxLimit = 100

// Cursor errors.
var (
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrNoCursor signals a first-page request. It is not a failure.
	ErrNoCursor = errors.New("no cursor provided")
)

// PaginationRequest represents pagination parameters from the request.
type PaginationRequest struct {
	// Cursor is an opaque string from a previous response's NextCursor.
	Cursor string `form:"cursor"`

	// Limit is the maximum number of items to return (1-100, default 20).
	Limit int `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// GetLimit returns the limit with defaults applied.
func (p *PaginationRequest) GetLimit() int {
	if p.Limit <= 0 {
		return DefaultLimit
	}

	return min(p.Limit, MaxLimit)
}

// DecodeCursor decodes the request cursor. Returns ErrNoCursor when empty.
func (p *PaginationRequest) DecodeCursor() (*CursorData, error) {
	return DecodeCursor(p.Cursor)
}

// PaginatedResponse is a generic paginated response structure.
type PaginatedResponse[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
	Total      int    `json:"total"`
}

// CursorData is the position a page ended at.
//
// Offset is where the next page starts in the filtered collection and Key
// is the identity of the last item served. If the collection shifted between
// requests the key is used to find the position again.
type CursorData struct {
	Offset int    `json:"o"`
	Key    string `json:"k"`
}

// EncodeCursor encodes cursor data to a base64 string.
func EncodeCursor(data *CursorData) string {
	if data == nil {
		return ""
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return ""
	}

	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor decodes a base64 cursor string. Returns ErrNoCursor when empty.
func DecodeCursor(encoded string) (*CursorData, error) {
	if encoded == "" {
		return nil, ErrNoCursor
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	var data CursorData
	if err := json.Unmarshal(raw, &data); err != nil || data.Offset < 0 {
		return nil, ErrInvalidCursor
	}

	return &data, nil
}

// Paginate slices items starting after cursor. keyOf returns the stable
// identity used to re-anchor a cursor when items moved.
func Paginate[T any](items []T, cursor *CursorData, limit int, keyOf func(T) string) *PaginatedResponse[T] {
	start := 0

	if cursor != nil {
		start = resolveOffset(items, cursor, keyOf)
	}

	end := min(start+limit, len(items))

	page := make([]T, 0, end-start)
	page = append(page, items[start:end]...)

	resp := &PaginatedResponse[T]{
		Items:   page,
		HasMore: end < len(items),
		Total:   len(items),
	}

	if resp.HasMore && len(page) > 0 {
		resp.NextCursor = EncodeCursor(&CursorData{Offset: end, Key: keyOf(page[len(page)-1])})
	}

	return resp
}

func resolveOffset[T any](items []T, cursor *CursorData, keyOf func(T) string) int {
	if cursor.Offset > 0 && cursor.Offset <= len(items) && keyOf(items[cursor.Offset-1]) == cursor.Key {
		return cursor.Offset
	}

	for i, item := range items {
		if keyOf(item) == cursor.Key {
			return i + 1
		}
	}

	return min(cursor.Offset, len(items))
}
