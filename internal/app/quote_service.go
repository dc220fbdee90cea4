// Package app contains application services that orchestrate use cases.
//
// It coordinates the domain with the storage and remote ports: the quote
// store and its read-side use cases (QuoteService), and synchronization with
// the remote source (SyncService, Scheduler). HTTP, CLI and storage specifics
// live in adapters.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/jsamuelsen/quote-manager/internal/domain"
	"github.com/jsamuelsen/quote-manager/internal/platform/logging"
	"github.com/jsamuelsen/quote-manager/internal/ports"
)

// QuoteServiceConfig contains the dependencies of the quote service.
type QuoteServiceConfig struct {
	Store *QuoteStore

	// Preferences persists the selected category across restarts.
	Preferences ports.SlotStore

	// Session keeps the last shown quote for the lifetime of the process.
	Session ports.SlotStore

	// IntN picks a random index in [0, n). Defaults to math/rand/v2.IntN.
	IntN func(n int) int

	Logger *slog.Logger
}

// QuoteService implements the quote use cases on top of the store.
type QuoteService struct {
	store       *QuoteStore
	preferences ports.SlotStore
	session     ports.SlotStore
	intN        func(n int) int
	logger      *slog.Logger
}

// NewQuoteService creates a new quote service with the provided dependencies.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Store == nil || cfg.Preferences == nil || cfg.Session == nil {
		panic("QuoteService: Store, Preferences and Session are required")
	}

	intN := cfg.IntN
	if intN == nil {
		intN = rand.IntN
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteService{
		store:       cfg.Store,
		preferences: cfg.Preferences,
		session:     cfg.Session,
		intN:        intN,
		logger:      logger.With(slog.String("component", "app.QuoteService")),
	}
}

// Store returns the underlying quote store.
func (s *QuoteService) Store() *QuoteStore {
	return s.store
}

// List returns the quotes in a category ("" or "all" for every quote).
func (s *QuoteService) List(category string) domain.Collection {
	return s.store.List(category)
}

// Add stores a new quote.
func (s *QuoteService) Add(ctx context.Context, q domain.Quote) (domain.Quote, error) {
	added, err := s.store.Add(ctx, q)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("adding quote: %w", err)
	}

	return added, nil
}

// Remove deletes a quote by ID.
func (s *QuoteService) Remove(ctx context.Context, id string) (domain.Quote, error) {
	removed, err := s.store.Remove(ctx, id)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("removing quote: %w", err)
	}

	return removed, nil
}

// RemoveAt deletes a quote by position.
func (s *QuoteService) RemoveAt(ctx context.Context, index int) (domain.Quote, error) {
	removed, err := s.store.RemoveAt(ctx, index)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("removing quote: %w", err)
	}

	return removed, nil
}

// Categories returns the distinct categories in first-appearance order.
func (s *QuoteService) Categories() domain.CategoryIndex {
	return s.store.Categories()
}

// Random picks a quote uniformly from the category and remembers it as the
// last shown quote. An empty category yields a NotFoundError.
func (s *QuoteService) Random(ctx context.Context, category string) (domain.Quote, error) {
	candidates := s.store.List(category)
	if len(candidates) == 0 {
		return domain.Quote{}, domain.NewNotFoundError("quote in category", normalizeCategory(category))
	}

	q := candidates[s.intN(len(candidates))]

	data, err := json.Marshal(q)
	if err == nil {
		err = s.session.Put(ctx, ports.SlotLastQuote, data)
	}

	if err != nil {
		logging.FromContextOr(ctx, s.logger).WarnContext(ctx, "failed to remember last quote", slog.Any("error", err))
	}

	return q, nil
}

// LastQuote returns the quote most recently picked by Random in this process.
func (s *QuoteService) LastQuote(ctx context.Context) (domain.Quote, error) {
	data, err := s.session.Get(ctx, ports.SlotLastQuote)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.Quote{}, domain.NewNotFoundError("last quote", "session")
		}

		return domain.Quote{}, fmt.Errorf("reading last quote: %w", err)
	}

	var q domain.Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return domain.Quote{}, domain.NewDecodeError(ports.SlotLastQuote, err.Error())
	}

	return q, nil
}

// SelectedCategory returns the persisted category filter, "all" when unset.
func (s *QuoteService) SelectedCategory(ctx context.Context) (string, error) {
	data, err := s.preferences.Get(ctx, ports.SlotSelectedCategory)
	if domain.IsNotFound(err) {
		return domain.CategoryAll, nil
	}

	if err != nil {
		return "", fmt.Errorf("reading selected category: %w", err)
	}

	return normalizeCategory(string(data)), nil
}

// SetSelectedCategory persists the category filter. Blank means "all".
func (s *QuoteService) SetSelectedCategory(ctx context.Context, category string) (string, error) {
	category = normalizeCategory(category)

	if err := s.preferences.Put(ctx, ports.SlotSelectedCategory, []byte(category)); err != nil {
		return "", fmt.Errorf("saving selected category: %w", err)
	}

	return category, nil
}

// Export renders the whole collection as an indented JSON array.
func (s *QuoteService) Export() ([]byte, error) {
	data, err := json.MarshalIndent(s.store.Snapshot(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}

	return data, nil
}

// ImportJSON imports a JSON document whose root must be an array of quotes.
// Elements that are not quote objects are listed as skipped like any other
// invalid record.
func (s *QuoteService) ImportJSON(ctx context.Context, data []byte) (ImportResult, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil || elements == nil {
		reason := "root must be a JSON array"
		if err != nil {
			reason = fmt.Sprintf("%s: %v", reason, err)
		}

		return ImportResult{}, domain.NewDecodeError("import", reason)
	}

	records := make(domain.Collection, 0, len(elements))
	positions := make([]int, 0, len(elements))

	var rejected []ImportRejection

	for i, raw := range elements {
		var q domain.Quote
		if err := json.Unmarshal(raw, &q); err != nil {
			rejected = append(rejected, ImportRejection{Index: i, Reason: "not a quote object"})
			continue
		}

		records = append(records, q)
		positions = append(positions, i)
	}

	result, err := s.store.Import(ctx, records)
	if err != nil {
		return ImportResult{}, fmt.Errorf("importing quotes: %w", err)
	}

	for i := range result.Skipped {
		result.Skipped[i].Index = positions[result.Skipped[i].Index]
	}

	result.Skipped = append(result.Skipped, rejected...)
	slices.SortFunc(result.Skipped, func(a, b ImportRejection) int { return a.Index - b.Index })

	return result, nil
}

// Restore replaces the whole collection with an exported document. Records
// are kept as given, so restoring an export reproduces it exactly. Nothing is
// written unless every record is valid.
func (s *QuoteService) Restore(ctx context.Context, data []byte) (domain.Collection, error) {
	var coll domain.Collection
	if err := json.Unmarshal(data, &coll); err != nil || coll == nil {
		reason := "root must be a JSON array of quotes"
		if err != nil {
			reason = fmt.Sprintf("%s: %v", reason, err)
		}

		return nil, domain.NewDecodeError("restore", reason)
	}

	seen := make(map[string]int, len(coll))

	for i, q := range coll {
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}

		if first, dup := seen[q.Key()]; dup && q.HasID() {
			return nil, domain.NewValidationError("id",
				fmt.Sprintf("record %d repeats the id of record %d", i, first))
		}

		seen[q.Key()] = i
	}

	if err := s.store.Save(ctx, coll); err != nil {
		return nil, fmt.Errorf("restoring quotes: %w", err)
	}

	return coll.Clone(), nil
}

func normalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "" || strings.EqualFold(category, domain.CategoryAll) {
		return domain.CategoryAll
	}

	return category
}
