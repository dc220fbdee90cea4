package dto

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-manager/internal/app"
	"github.com/jsamuelsen/quote-manager/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponseWithDetails(ErrorCodeValidation, "bad", map[string]string{"text": "required"}).
		WithTraceID("abc")

	assert.Equal(t, ErrorCodeValidation, resp.Error.Code)
	assert.Equal(t, "bad", resp.Error.Message)
	assert.Equal(t, "required", resp.Error.Details["text"])
	assert.Equal(t, "abc", resp.TraceID)
}

func TestHTTPStatusFromCode(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{code: ErrorCodeNotFound, expected: http.StatusNotFound},
		{code: ErrorCodeValidation, expected: http.StatusBadRequest},
		{code: ErrorCodeBadRequest, expected: http.StatusBadRequest},
		{code: ErrorCodeConflict, expected: http.StatusConflict},
		{code: ErrorCodeRemote, expected: http.StatusBadGateway},
		{code: ErrorCodeUndecodable, expected: http.StatusUnprocessableEntity},
		{code: ErrorCodeTooLarge, expected: http.StatusRequestEntityTooLarge},
		{code: ErrorCodeTimeout, expected: http.StatusServiceUnavailable},
		{code: ErrorCodeInternal, expected: http.StatusInternalServerError},
		{code: "SOMETHING_ELSE", expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatusFromCode(tt.code))
		})
	}
}

func TestGetLimit(t *testing.T) {
	tests := []struct {
		limit    int
		expected int
	}{
		{limit: 0, expected: DefaultLimit},
		{limit: -5, expected: DefaultLimit},
		{limit: 7, expected: 7},
		{limit: 500, expected: MaxLimit},
	}

	for _, tt := range tests {
		p := PaginationRequest{Limit: tt.limit}
		assert.Equal(t, tt.expected, p.GetLimit(), "limit %d", tt.limit)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	encoded := EncodeCursor(&CursorData{Offset: 3, Key: "id:q3"})
	require.NotEmpty(t, encoded)

	decoded, err := DecodeCursor(encoded)
	require.NoError(t, err)
	assert.Equal(t, &CursorData{Offset: 3, Key: "id:q3"}, decoded)

	assert.Empty(t, EncodeCursor(nil))
}

func TestDecodeCursor_Errors(t *testing.T) {
	_, err := DecodeCursor("")
	assert.ErrorIs(t, err, ErrNoCursor)

	_, err = (&PaginationRequest{}).DecodeCursor()
	assert.ErrorIs(t, err, ErrNoCursor)

	_, err = DecodeCursor("%%%")
	assert.ErrorIs(t, err, ErrInvalidCursor)

	_, err = DecodeCursor(EncodeCursor(&CursorData{Offset: -1}))
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestPaginate(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	key := func(s string) string { return s }

	first := Paginate(items, nil, 2, key)
	assert.Equal(t, []string{"a", "b"}, first.Items)
	assert.True(t, first.HasMore)
	assert.Equal(t, 5, first.Total)

	cursor, err := DecodeCursor(first.NextCursor)
	require.NoError(t, err)

	second := Paginate(items, cursor, 2, key)
	assert.Equal(t, []string{"c", "d"}, second.Items)

	cursor, err = DecodeCursor(second.NextCursor)
	require.NoError(t, err)

	last := Paginate(items, cursor, 2, key)
	assert.Equal(t, []string{"e"}, last.Items)
	assert.False(t, last.HasMore)
	assert.Empty(t, last.NextCursor)
}

func TestPaginate_ReanchorsWhenItemsShift(t *testing.T) {
	key := func(s string) string { return s }

	// Page ended after "b" at offset 2, then "a" was removed.
	cursor := &CursorData{Offset: 2, Key: "b"}

	page := Paginate([]string{"b", "c", "d"}, cursor, 10, key)
	assert.Equal(t, []string{"c", "d"}, page.Items)

	// Anchor removed entirely: fall back to the offset.
	page = Paginate([]string{"x", "y", "z"}, cursor, 10, key)
	assert.Equal(t, []string{"z"}, page.Items)

	// Offset past the end yields an empty page.
	page = Paginate([]string{"x"}, &CursorData{Offset: 9, Key: "gone"}, 10, key)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
}

func TestBindAndValidate_CreateQuoteRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		errType error
		field   string
	}{
		{name: "valid", body: `{"text":"Be bold.","category":"Motivation"}`},
		{name: "invalid JSON", body: `{invalid}`, errType: ErrBinding},
		{name: "missing text", body: `{"category":"Motivation"}`, errType: ErrValidation, field: "text"},
		{name: "blank category", body: `{"text":"x","category":"   "}`, errType: ErrValidation, field: "category"},
		{name: "id with slash", body: `{"id":"a/b","text":"x","category":"c"}`, errType: ErrValidation, field: "id"},
		{name: "category with newline", body: `{"text":"x","category":"a\nb"}`, errType: ErrValidation, field: "category"},
		{
			name:    "author too long",
			body:    `{"text":"x","category":"c","author":"` + strings.Repeat("a", 201) + `"}`,
			errType: ErrValidation,
			field:   "author",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var req CreateQuoteRequest
			err := BindAndValidate(c, &req)

			if tt.errType == nil {
				require.NoError(t, err)
				assert.Equal(t, domain.Quote{Text: "Be bold.", Category: "Motivation"}, req.ToDomain())

				return
			}

			require.ErrorIs(t, err, tt.errType)

			if tt.field != "" {
				assert.True(t, IsValidationError(err))
				assert.Contains(t, ValidationErrors(err), tt.field)
			}
		})
	}
}

func TestBindQueryAndValidate_ListQuotesRequest(t *testing.T) {
	tests := []struct {
		query   string
		wantErr bool
	}{
		{query: "?category=Wisdom&limit=10&cursor=abc"},
		{query: ""},
		{query: "?limit=150", wantErr: true},
		{query: "?limit=-1", wantErr: true},
		{query: "?limit=abc", wantErr: true},
		{query: "?category=a%0Ab", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/quotes"+tt.query, nil)

			var req ListQuotesRequest
			err := BindQueryAndValidate(c, &req)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestValidationMessage(t *testing.T) {
	type input struct {
		Name string `json:"name" validate:"required"`
		Code string `json:"code" validate:"min=3"`
		Kind string `json:"kind" validate:"oneof=a b"`
	}

	err := Validate(input{Code: "x", Kind: "c"})
	require.Error(t, err)

	details := ValidationErrors(err)
	assert.Equal(t, "this field is required", details["name"])
	assert.Equal(t, "must be at least 3 characters", details["code"])
	assert.Equal(t, "must be one of: a b", details["kind"])
}

func TestValidationMessage_QuoteRules(t *testing.T) {
	err := Validate(CreateQuoteRequest{ID: "has space", Text: "x", Category: "c", Author: "two\nlines"})
	require.Error(t, err)

	details := ValidationErrors(err)
	assert.Contains(t, details["id"], "may only contain")
	assert.Equal(t, "must be a single line without control characters", details["author"])

	require.NoError(t, Validate(CreateQuoteRequest{ID: "01HZX3A9QK-r.1", Text: "x", Category: "c"}))
}

func TestFromImportResult(t *testing.T) {
	resp := FromImportResult(app.ImportResult{
		Imported: domain.Collection{{ID: "1", Text: "t", Category: "c"}},
		Skipped:  []app.ImportRejection{{Index: 2, Reason: "duplicate id"}},
	})

	assert.Equal(t, []QuoteResponse{{ID: "1", Text: "t", Category: "c"}}, resp.Imported)
	assert.Equal(t, []ImportRejectionDTO{{Index: 2, Reason: "duplicate id"}}, resp.Skipped)

	empty := FromImportResult(app.ImportResult{})
	assert.NotNil(t, empty.Imported)
	assert.NotNil(t, empty.Skipped)
}

func TestFromSyncState(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	summary := domain.SyncSummary{Status: domain.SyncStatusOK, FinishedAt: at}

	resp := FromSyncState(app.SyncState{
		LastSyncAt:  at,
		LastStatus:  domain.SyncStatusOK,
		LastSummary: &summary,
		Periodic:    true,
		Interval:    30 * time.Second,
	})

	assert.Equal(t, "30s", resp.Interval)
	require.NotNil(t, resp.LastSyncAt)
	assert.Equal(t, at, *resp.LastSyncAt)
	assert.Equal(t, "ok", resp.LastStatus)

	idle := FromSyncState(app.SyncState{})
	assert.Nil(t, idle.LastSyncAt)
	assert.Empty(t, idle.Interval)
}
