package app

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jsamuelsen/quote-manager/internal/domain"
	"github.com/jsamuelsen/quote-manager/internal/platform/logging"
	"github.com/jsamuelsen/quote-manager/internal/ports"
)

// DefaultSeeds returns the starter quotes written on first run.
func DefaultSeeds() domain.Collection {
	return domain.Collection{
		{Text: "The best way to get started is to quit talking and begin doing.", Category: "Motivation"},
		{Text: "Don’t let yesterday take up too much of today.", Category: "Inspiration"},
		{Text: "Failure is not the opposite of success; it’s part of success.", Category: "Wisdom"},
	}
}

// NewULID returns a new lexicographically sortable quote ID.
func NewULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// QuoteStoreConfig configures a QuoteStore.
type QuoteStoreConfig struct {
	// Slots persists the collection under ports.SlotQuotes. Required.
	Slots ports.SlotStore

	// Seeds are used and persisted when the quotes slot has never been written.
	Seeds domain.Collection

	// NewID generates IDs for records that have none. Defaults to NewULID.
	NewID func() string

	Logger *slog.Logger
}

// QuoteStore owns the in-memory collection and its durable copy.
//
// Every mutation and its persist happen under one write lock, so readers never
// observe a state that was not (or will not be) saved.
type QuoteStore struct {
	mu     sync.RWMutex
	quotes domain.Collection

	slots  ports.SlotStore
	seeds  domain.Collection
	newID  func() string
	logger *slog.Logger
}

// NewQuoteStore creates an empty store. Call Load to read the persisted collection.
func NewQuoteStore(cfg QuoteStoreConfig) *QuoteStore {
	if cfg.Slots == nil {
		panic("QuoteStore: Slots is required")
	}

	newID := cfg.NewID
	if newID == nil {
		newID = NewULID
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteStore{
		quotes: domain.Collection{},
		slots:  cfg.Slots,
		seeds:  cfg.Seeds.Clone(),
		newID:  newID,
		logger: logger.With(slog.String("component", "app.QuoteStore")),
	}
}

// Load reads the persisted collection and makes it current.
//
// A missing slot yields the seeds (persisted) or an empty collection. A slot
// that cannot be decoded is logged at WARN and treated as empty; it is not an
// error. Only a failing backend is.
func (s *QuoteStore) Load(ctx context.Context) (domain.Collection, error) {
	logger := logging.FromContextOr(ctx, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.slots.Get(ctx, ports.SlotQuotes)

	switch {
	case domain.IsNotFound(err):
		s.quotes = domain.Collection{}

		if len(s.seeds) > 0 {
			seeds := s.withIDs(s.seeds)
			if err := s.persist(ctx, seeds); err != nil {
				return nil, err
			}

			s.quotes = seeds
			logger.InfoContext(ctx, "seeded quote collection", slog.Int("count", len(seeds)))
		}

	case err != nil:
		return nil, fmt.Errorf("loading quotes: %w", err)

	default:
		var loaded domain.Collection
		if err := json.Unmarshal(data, &loaded); err != nil {
			logger.WarnContext(ctx, "stored quote collection is corrupt, starting empty",
				slog.Any("error", err),
				slog.Int("bytes", len(data)),
			)

			loaded = domain.Collection{}
		}

		if loaded == nil {
			loaded = domain.Collection{}
		}

		s.quotes = loaded
	}

	return s.quotes.Clone(), nil
}

// Save replaces the whole collection and persists it.
func (s *QuoteStore) Save(ctx context.Context, coll domain.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := coll.Clone()
	if err := s.persist(ctx, next); err != nil {
		return err
	}

	s.quotes = next

	return nil
}

// Add validates q, assigns an ID when missing, appends it and persists.
// The append is undone if the persist fails.
func (s *QuoteStore) Add(ctx context.Context, q domain.Quote) (domain.Quote, error) {
	q = q.Normalized()
	if err := q.Validate(); err != nil {
		return domain.Quote{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if q.HasID() && s.quotes.IndexOfID(q.ID) >= 0 {
		return domain.Quote{}, domain.NewValidationErrorWithValue("id", "already exists", q.ID)
	}

	if !q.HasID() {
		q.ID = s.newID()
	}

	next := append(s.quotes.Clone(), q)
	if err := s.persist(ctx, next); err != nil {
		return domain.Quote{}, err
	}

	s.quotes = next

	logging.FromContextOr(ctx, s.logger).InfoContext(ctx, "quote added",
		slog.String("quote_id", q.ID),
		slog.String("category", q.Category),
	)

	return q, nil
}

// Remove deletes the quote with the given ID.
func (s *QuoteStore) Remove(ctx context.Context, id string) (domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.quotes.IndexOfID(id)
	if idx < 0 {
		return domain.Quote{}, domain.NewNotFoundError("quote", id)
	}

	return s.removeLocked(ctx, idx)
}

// RemoveAt deletes the quote at the given position.
func (s *QuoteStore) RemoveAt(ctx context.Context, index int) (domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.quotes) {
		return domain.Quote{}, domain.NewNotFoundError("quote", "#"+strconv.Itoa(index))
	}

	return s.removeLocked(ctx, index)
}

func (s *QuoteStore) removeLocked(ctx context.Context, idx int) (domain.Quote, error) {
	removed := s.quotes[idx]

	next := make(domain.Collection, 0, len(s.quotes)-1)
	next = append(next, s.quotes[:idx]...)
	next = append(next, s.quotes[idx+1:]...)

	if err := s.persist(ctx, next); err != nil {
		return domain.Quote{}, err
	}

	s.quotes = next

	logging.FromContextOr(ctx, s.logger).InfoContext(ctx, "quote removed",
		slog.String("quote_id", removed.ID),
		slog.Int("index", idx),
	)

	return removed, nil
}

// List returns the quotes matching the category filter.
func (s *QuoteStore) List(category string) domain.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.quotes.Filter(category)
}

// Snapshot returns a copy of the whole collection.
func (s *QuoteStore) Snapshot() domain.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.quotes.Clone()
}

// Categories returns the derived category index.
func (s *QuoteStore) Categories() domain.CategoryIndex {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.quotes.Categories()
}

// Len returns the number of stored quotes.
func (s *QuoteStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.quotes)
}

// MergeRemote reconciles remote into the current collection and persists the
// result when it changed. Local records added while the remote was being
// fetched are part of the merge.
//
// A persist failure leaves the in-memory collection untouched and returns a
// StorageError alongside the computed result.
func (s *QuoteStore) MergeRemote(ctx context.Context, remote domain.Collection) (domain.MergeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := domain.Merge(s.quotes, remote)
	if !result.Changed {
		return result, nil
	}

	if err := s.persist(ctx, result.Merged); err != nil {
		return result, err
	}

	s.quotes = result.Merged.Clone()

	return result, nil
}

// ImportRejection explains why one imported record was skipped.
type ImportRejection struct {
	Index  int          `json:"index"`
	Quote  domain.Quote `json:"quote"`
	Reason string       `json:"reason"`
}

// ImportResult reports the outcome of an import.
type ImportResult struct {
	Imported domain.Collection `json:"imported"`
	Skipped  []ImportRejection `json:"skipped,omitempty"`
}

// Import appends the valid records and persists once.
//
// Each record is normalized and validated. Invalid records, records whose ID
// is already present and records whose content (text + category) already
// exists are skipped and listed. Records without ID get one.
func (s *QuoteStore) Import(ctx context.Context, records domain.Collection) (ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := ImportResult{Imported: domain.Collection{}}
	next := s.quotes.Clone()

	ids := make(map[string]struct{}, len(next)+len(records))
	contents := make(map[string]struct{}, len(next)+len(records))

	for _, q := range next {
		if q.HasID() {
			ids[q.ID] = struct{}{}
		}

		contents[q.ContentKey()] = struct{}{}
	}

	for i, raw := range records {
		q := raw.Normalized()

		reason := ""
		if err := q.Validate(); err != nil {
			reason = err.Error()
		} else if _, dup := ids[q.ID]; q.HasID() && dup {
			reason = "duplicate id"
		} else if _, dup := contents[q.ContentKey()]; dup {
			reason = "duplicate content"
		}

		if reason != "" {
			result.Skipped = append(result.Skipped, ImportRejection{Index: i, Quote: raw, Reason: reason})
			continue
		}

		if !q.HasID() {
			q.ID = s.newID()
		}

		ids[q.ID] = struct{}{}
		contents[q.ContentKey()] = struct{}{}

		next = append(next, q)
		result.Imported = append(result.Imported, q)
	}

	if len(result.Imported) == 0 {
		return result, nil
	}

	if err := s.persist(ctx, next); err != nil {
		return ImportResult{}, err
	}

	s.quotes = next

	logging.FromContextOr(ctx, s.logger).InfoContext(ctx, "quotes imported",
		slog.Int("imported", len(result.Imported)),
		slog.Int("skipped", len(result.Skipped)),
	)

	return result, nil
}

// Name implements ports.HealthChecker.
func (s *QuoteStore) Name() string {
	return "quote-store"
}

// Check implements ports.HealthChecker by reading the durable slot.
func (s *QuoteStore) Check(ctx context.Context) error {
	_, err := s.slots.Get(ctx, ports.SlotQuotes)
	if err != nil && !domain.IsNotFound(err) {
		return err
	}

	return nil
}

// persist must be called with the write lock held.
func (s *QuoteStore) persist(ctx context.Context, coll domain.Collection) error {
	if coll == nil {
		coll = domain.Collection{}
	}

	data, err := json.Marshal(coll)
	if err != nil {
		return domain.NewStorageError(ports.SlotQuotes, "encode", err)
	}

	if err := s.slots.Put(ctx, ports.SlotQuotes, data); err != nil {
		if domain.IsStorage(err) {
			return err
		}

		return domain.NewStorageError(ports.SlotQuotes, "write", err)
	}

	return nil
}

func (s *QuoteStore) withIDs(coll domain.Collection) domain.Collection {
	out := coll.Clone()

	for i := range out {
		if !out[i].HasID() {
			out[i].ID = s.newID()
		}
	}

	return out
}
