// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrNetwork, etc.)
//   - Keep interfaces small and focused
package ports

import (
	"context"

	"github.com/jsamuelsen/quote-manager/internal/domain"
)

// Well-known storage slot names.
const (
	// SlotQuotes holds the serialized quote collection.
	SlotQuotes = "quotes"

	// SlotSelectedCategory holds the last selected category filter as plain text.
	SlotSelectedCategory = "selectedCategory"

	// SlotLastQuote holds the last displayed quote. It lives in session storage.
	SlotLastQuote = "lastQuote"
)

// SlotStore is a named-slot key/value store holding opaque bytes.
// A slot is overwritten as a whole; there are no partial writes.
//
// Example usage in application layer:
//
//	data, err := slots.Get(ctx, ports.SlotQuotes)
//	if domain.IsNotFound(err) {
//	    // first run
//	}
type SlotStore interface {
	// Get returns the slot contents.
	// Returns domain.ErrNotFound if the slot has never been written.
	Get(ctx context.Context, slot string) ([]byte, error)

	// Put overwrites the slot contents.
	Put(ctx context.Context, slot string, data []byte) error

	// Delete removes the slot. Deleting a missing slot is not an error.
	Delete(ctx context.Context, slot string) error
}

// RemoteQuotes is the remote data source the local collection is reconciled against.
//
// Key considerations:
//   - Handle timeouts via context deadline
//   - Map transport failures to domain.NetworkError and bad payloads to domain.DecodeError
//   - Never mutate caller state
type RemoteQuotes interface {
	// FetchRemote retrieves the remote snapshot translated into domain quotes.
	FetchRemote(ctx context.Context) (domain.Collection, error)

	// PushLocal sends the full local collection to the remote.
	PushLocal(ctx context.Context, quotes domain.Collection) error
}

// SyncNotifier receives the summary of every finished synchronization attempt.
// Implementations must not block the caller for long.
type SyncNotifier interface {
	NotifySync(ctx context.Context, summary domain.SyncSummary)
}

// SyncNotifierFunc adapts a plain function to SyncNotifier.
type SyncNotifierFunc func(ctx context.Context, summary domain.SyncSummary)

// NotifySync calls f.
func (f SyncNotifierFunc) NotifySync(ctx context.Context, summary domain.SyncSummary) {
	f(ctx, summary)
}

// SyncNotifiers fans a summary out to several notifiers in order.
type SyncNotifiers []SyncNotifier

// NotifySync calls every notifier.
func (n SyncNotifiers) NotifySync(ctx context.Context, summary domain.SyncSummary) {
	for _, notifier := range n {
		if notifier != nil {
			notifier.NotifySync(ctx, summary)
		}
	}
}
