package domain

import (
	"fmt"
	"strings"
)

// ConflictKind classifies a note produced during a merge.
type ConflictKind string

const (
	// ConflictOverwritten means a local record was replaced by the remote version.
	ConflictOverwritten ConflictKind = "overwritten"

	// ConflictMalformed means a remote record was missing a required field and was skipped.
	ConflictMalformed ConflictKind = "malformed"

	// ConflictDuplicate means a remote record repeated an identity already
	// seen in the same snapshot and was skipped.
	ConflictDuplicate ConflictKind = "duplicate"
)

// ConflictNote reports which record a merge touched and why.
type ConflictNote struct {
	Kind    ConflictKind `json:"kind"`
	ID      string       `json:"id,omitempty"`
	Fields  []string     `json:"fields,omitempty"`
	Message string       `json:"message"`
	Local   *Quote       `json:"local,omitempty"`
	Remote  *Quote       `json:"remote,omitempty"`
}

// MergeResult is the outcome of reconciling a remote snapshot into a local collection.
type MergeResult struct {
	// Merged is the reconciled collection. It never aliases the inputs.
	Merged Collection `json:"merged"`

	// Changed is true when Merged differs from the local input.
	Changed bool `json:"changed"`

	// Added counts remote records inserted because no local record matched.
	Added int `json:"added"`

	// Updated counts local records overwritten by their remote version.
	Updated int `json:"updated"`

	// Conflicts lists overwrites and skipped remote records.
	Conflicts []ConflictNote `json:"conflicts,omitempty"`
}

// Malformed returns the number of remote records skipped for missing fields.
func (r MergeResult) Malformed() int {
	n := 0

	for _, c := range r.Conflicts {
		if c.Kind == ConflictMalformed {
			n++
		}
	}

	return n
}

// Merge reconciles remote into local using a server-wins policy keyed on
// record identity.
//
// Remote records with no local counterpart are appended. When a local record
// shares the identity and any field differs, the remote version replaces it
// in place. Local-only records are kept unchanged. Remote records missing a
// required field, or repeating an identity already seen in the same snapshot,
// are skipped and reported.
//
// Remote always wins; there is no timestamp comparison. A local edit made
// after the last fetch is lost if the remote copy of that record differs.
//
// Merge is idempotent: merging the same remote snapshot into its own output
// reports Changed == false.
func Merge(local, remote Collection) MergeResult {
	result := MergeResult{Merged: local.Clone()}

	if len(remote) == 0 {
		return result
	}

	positions := make(map[string]int, len(result.Merged))
	for i, q := range result.Merged {
		if _, ok := positions[q.Key()]; !ok {
			positions[q.Key()] = i
		}
	}

	seen := make(map[string]struct{}, len(remote))

	for i := range remote {
		incoming := remote[i].Normalized()

		if err := incoming.Validate(); err != nil {
			result.Conflicts = append(result.Conflicts, malformedNote(i, incoming, err))
			continue
		}

		key := incoming.Key()
		if _, dup := seen[key]; dup {
			result.Conflicts = append(result.Conflicts, ConflictNote{
				Kind:    ConflictDuplicate,
				ID:      incoming.ID,
				Message: fmt.Sprintf("remote record %d repeats an identity already merged", i),
				Remote:  quotePtr(incoming),
			})

			continue
		}

		seen[key] = struct{}{}

		pos, exists := positions[key]
		if !exists {
			positions[key] = len(result.Merged)
			result.Merged = append(result.Merged, incoming)
			result.Added++
			result.Changed = true

			continue
		}

		current := result.Merged[pos]

		fields := current.DiffFields(incoming)
		if len(fields) == 0 {
			continue
		}

		result.Merged[pos] = Quote{
			ID:       current.ID,
			Text:     incoming.Text,
			Author:   incoming.Author,
			Category: incoming.Category,
		}
		result.Updated++
		result.Changed = true
		result.Conflicts = append(result.Conflicts, ConflictNote{
			Kind:    ConflictOverwritten,
			ID:      current.ID,
			Fields:  fields,
			Message: "remote version replaced local " + strings.Join(fields, ", "),
			Local:   quotePtr(current),
			Remote:  quotePtr(incoming),
		})
	}

	return result
}

func malformedNote(index int, q Quote, err error) ConflictNote {
	return ConflictNote{
		Kind:    ConflictMalformed,
		ID:      q.ID,
		Message: fmt.Sprintf("remote record %d skipped: %v", index, err),
		Remote:  quotePtr(q),
	}
}

func quotePtr(q Quote) *Quote {
	return &q
}
