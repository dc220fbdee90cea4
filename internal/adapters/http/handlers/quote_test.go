package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-manager/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-manager/internal/adapters/storage"
	"github.com/jsamuelsen/quote-manager/internal/app"
	"github.com/jsamuelsen/quote-manager/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testSeeds = domain.Collection{
	{ID: "s1", Text: "Stay hungry.", Author: "Jobs", Category: "Motivation"},
	{ID: "s2", Text: "Know thyself.", Category: "Wisdom"},
	{ID: "s3", Text: "Keep going.", Category: "Motivation"},
}

func newQuoteService(t testing.TB, seeds domain.Collection) *app.QuoteService {
	t.Helper()

	next := 0
	store := app.NewQuoteStore(app.QuoteStoreConfig{
		Slots: storage.NewMemoryStore(),
		Seeds: seeds,
		NewID: func() string {
			next++
			return "new" + strconv.Itoa(next)
		},
		Logger: discardLogger(),
	})

	_, err := store.Load(context.Background())
	require.NoError(t, err)

	return app.NewQuoteService(app.QuoteServiceConfig{
		Store:       store,
		Preferences: storage.NewMemoryStore(),
		Session:     storage.NewMemoryStore(),
		IntN:        func(int) int { return 0 },
		Logger:      discardLogger(),
	})
}

func newQuoteEngine(t testing.TB, seeds domain.Collection) *gin.Engine {
	t.Helper()

	engine := gin.New()
	NewQuoteHandler(newQuoteService(t, seeds)).RegisterRoutes(engine.Group("/api/v1"))

	return engine
}

func serve(engine *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())

	return v
}

func TestNewQuoteHandler_PanicsWithoutService(t *testing.T) {
	assert.Panics(t, func() { NewQuoteHandler(nil) })
}

func TestQuoteHandler_List(t *testing.T) {
	engine := newQuoteEngine(t, testSeeds)

	tests := []struct {
		name   string
		query  string
		status int
		ids    []string
	}{
		{name: "all", query: "", status: http.StatusOK, ids: []string{"s1", "s2", "s3"}},
		{name: "by category", query: "?category=motivation", status: http.StatusOK, ids: []string{"s1", "s3"}},
		{name: "category all", query: "?category=all", status: http.StatusOK, ids: []string{"s1", "s2", "s3"}},
		{name: "unknown category", query: "?category=Humor", status: http.StatusOK, ids: []string{}},
		{name: "bad limit", query: "?limit=1000", status: http.StatusBadRequest},
		{name: "bad cursor", query: "?cursor=***", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(engine, http.MethodGet, "/api/v1/quotes"+tt.query, "")
			require.Equal(t, tt.status, w.Code, w.Body.String())

			if tt.status != http.StatusOK {
				return
			}

			page := decode[dto.PaginatedResponse[dto.QuoteResponse]](t, w)

			ids := make([]string, 0, len(page.Items))
			for _, q := range page.Items {
				ids = append(ids, q.ID)
			}

			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestQuoteHandler_List_Pages(t *testing.T) {
	engine := newQuoteEngine(t, testSeeds)

	w := serve(engine, http.MethodGet, "/api/v1/quotes?limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)

	first := decode[dto.PaginatedResponse[dto.QuoteResponse]](t, w)
	require.Len(t, first.Items, 2)
	assert.True(t, first.HasMore)
	assert.Equal(t, 3, first.Total)

	w = serve(engine, http.MethodGet, "/api/v1/quotes?limit=2&cursor="+first.NextCursor, "")
	require.Equal(t, http.StatusOK, w.Code)

	second := decode[dto.PaginatedResponse[dto.QuoteResponse]](t, w)
	require.Len(t, second.Items, 1)
	assert.Equal(t, "s3", second.Items[0].ID)
	assert.False(t, second.HasMore)
}

func TestQuoteHandler_Create(t *testing.T) {
	engine := newQuoteEngine(t, nil)

	w := serve(engine, http.MethodPost, "/api/v1/quotes", `{"text":"  Be bold.  ","category":"Motivation"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[dto.QuoteResponse](t, w)
	assert.Equal(t, "new1", created.ID)
	assert.Equal(t, "Be bold.", created.Text)
	assert.Equal(t, "/api/v1/quotes/new1", w.Header().Get("Location"))

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{name: "missing text", body: `{"category":"x"}`, status: http.StatusBadRequest, code: dto.ErrorCodeValidation},
		{name: "malformed", body: `{`, status: http.StatusBadRequest, code: dto.ErrorCodeBadRequest},
		{name: "duplicate id", body: `{"id":"new1","text":"t","category":"c"}`, status: http.StatusBadRequest, code: dto.ErrorCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(engine, http.MethodPost, "/api/v1/quotes", tt.body)
			require.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decode[dto.ErrorResponse](t, w).Error.Code)
		})
	}
}

func TestQuoteHandler_Delete(t *testing.T) {
	engine := newQuoteEngine(t, testSeeds)

	w := serve(engine, http.MethodDelete, "/api/v1/quotes/s2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Know thyself.", decode[dto.QuoteResponse](t, w).Text)

	w = serve(engine, http.MethodDelete, "/api/v1/quotes/s2", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrorCodeNotFound, decode[dto.ErrorResponse](t, w).Error.Code)
}

func TestQuoteHandler_RandomAndLast(t *testing.T) {
	engine := newQuoteEngine(t, testSeeds)

	w := serve(engine, http.MethodGet, "/api/v1/quotes/last", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	w = serve(engine, http.MethodGet, "/api/v1/quotes/random?category=Wisdom", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s2", decode[dto.QuoteResponse](t, w).ID)

	w = serve(engine, http.MethodGet, "/api/v1/quotes/last", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s2", decode[dto.QuoteResponse](t, w).ID)

	w = serve(engine, http.MethodGet, "/api/v1/quotes/random?category=Humor", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuoteHandler_RandomUsesSelectedCategory(t *testing.T) {
	engine := newQuoteEngine(t, testSeeds)

	w := serve(engine, http.MethodPut, "/api/v1/preferences/category", `{"category":"Wisdom"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(engine, http.MethodGet, "/api/v1/quotes/random", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s2", decode[dto.QuoteResponse](t, w).ID)

	// An explicit parameter overrides the preference.
	w = serve(engine, http.MethodGet, "/api/v1/quotes/random?category=all", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", decode[dto.QuoteResponse](t, w).ID)
}

func TestQuoteHandler_Preferences(t *testing.T) {
	engine := newQuoteEngine(t, nil)

	w := serve(engine, http.MethodGet, "/api/v1/preferences/category", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.CategoryAll, decode[dto.CategoryResponse](t, w).Category)

	w = serve(engine, http.MethodPut, "/api/v1/preferences/category", `{"category":"  "}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.CategoryAll, decode[dto.CategoryResponse](t, w).Category)

	w = serve(engine, http.MethodPut, "/api/v1/preferences/category", `{"category":"`+strings.Repeat("x", 101)+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuoteHandler_Categories(t *testing.T) {
	engine := newQuoteEngine(t, testSeeds)

	w := serve(engine, http.MethodGet, "/api/v1/categories", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Motivation", "Wisdom"}, decode[dto.CategoriesResponse](t, w).Categories)

	empty := newQuoteEngine(t, nil)
	w = serve(empty, http.MethodGet, "/api/v1/categories", "")
	assert.JSONEq(t, `{"categories":[]}`, w.Body.String())
}

func TestQuoteHandler_ExportImport(t *testing.T) {
	source := newQuoteEngine(t, testSeeds)

	w := serve(source, http.MethodGet, "/api/v1/quotes/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="quotes.json"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	exported := w.Body.String()

	target := newQuoteEngine(t, nil)

	w = serve(target, http.MethodPost, "/api/v1/quotes/import", exported)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[dto.ImportResponse](t, w)
	assert.Len(t, resp.Imported, 3)
	assert.Empty(t, resp.Skipped)

	// Importing the same document again skips every record.
	w = serve(target, http.MethodPost, "/api/v1/quotes/import", exported)
	require.Equal(t, http.StatusOK, w.Code)

	resp = decode[dto.ImportResponse](t, w)
	assert.Empty(t, resp.Imported)
	assert.Len(t, resp.Skipped, 3)
}

func TestQuoteHandler_Import_Errors(t *testing.T) {
	engine := newQuoteEngine(t, nil)

	w := serve(engine, http.MethodPost, "/api/v1/quotes/import", `{"text":"not an array"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrorCodeUndecodable, decode[dto.ErrorResponse](t, w).Error.Code)

	w = serve(engine, http.MethodPost, "/api/v1/quotes/import", `[{"text":"ok","category":"c"}, 42, {"text":""}]`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[dto.ImportResponse](t, w)
	assert.Len(t, resp.Imported, 1)
	require.Len(t, resp.Skipped, 2)
	assert.Equal(t, 1, resp.Skipped[0].Index)
	assert.Equal(t, 2, resp.Skipped[1].Index)
}
