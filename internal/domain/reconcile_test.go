package domain

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_EmptyRemoteIsNoOp(t *testing.T) {
	local := Collection{{ID: "1", Text: "a", Category: "x"}}

	result := Merge(local, nil)

	assert.False(t, result.Changed)
	assert.Equal(t, local, result.Merged)
	assert.Empty(t, result.Conflicts)
}

func TestMerge_EmptyLocal(t *testing.T) {
	remote := Collection{{ID: "1", Text: "a", Category: "Remote"}}

	result := Merge(nil, remote)

	assert.True(t, result.Changed)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, remote, result.Merged)
}

func TestMerge_Rules(t *testing.T) {
	tests := []struct {
		name        string
		local       Collection
		remote      Collection
		wantMerged  Collection
		wantChanged bool
		wantAdded   int
		wantUpdated int
		wantKinds   []ConflictKind
	}{
		{
			name:        "addition appended",
			local:       Collection{{ID: "1", Text: "a", Category: "x"}},
			remote:      Collection{{ID: "2", Text: "b", Category: "y"}},
			wantMerged:  Collection{{ID: "1", Text: "a", Category: "x"}, {ID: "2", Text: "b", Category: "y"}},
			wantChanged: true,
			wantAdded:   1,
		},
		{
			name:        "server wins on text",
			local:       Collection{{ID: "1", Text: "old", Category: "x"}},
			remote:      Collection{{ID: "1", Text: "new", Category: "x"}},
			wantMerged:  Collection{{ID: "1", Text: "new", Category: "x"}},
			wantChanged: true,
			wantUpdated: 1,
			wantKinds:   []ConflictKind{ConflictOverwritten},
		},
		{
			name:        "server wins on author",
			local:       Collection{{ID: "1", Text: "t", Author: "me", Category: "x"}},
			remote:      Collection{{ID: "1", Text: "t", Author: "User 1", Category: "x"}},
			wantMerged:  Collection{{ID: "1", Text: "t", Author: "User 1", Category: "x"}},
			wantChanged: true,
			wantUpdated: 1,
			wantKinds:   []ConflictKind{ConflictOverwritten},
		},
		{
			name:       "identical record unchanged",
			local:      Collection{{ID: "1", Text: "t", Category: "x"}},
			remote:     Collection{{ID: "1", Text: "t", Category: "x"}},
			wantMerged: Collection{{ID: "1", Text: "t", Category: "x"}},
		},
		{
			name:       "malformed remote skipped",
			local:      Collection{{ID: "1", Text: "t", Category: "x"}},
			remote:     Collection{{ID: "9", Category: "x"}, {ID: "10", Text: "no category"}},
			wantMerged: Collection{{ID: "1", Text: "t", Category: "x"}},
			wantKinds:  []ConflictKind{ConflictMalformed, ConflictMalformed},
		},
		{
			name:  "duplicate remote identity first wins",
			local: Collection{},
			remote: Collection{
				{ID: "5", Text: "first", Category: "x"},
				{ID: "5", Text: "second", Category: "x"},
			},
			wantMerged:  Collection{{ID: "5", Text: "first", Category: "x"}},
			wantChanged: true,
			wantAdded:   1,
			wantKinds:   []ConflictKind{ConflictDuplicate},
		},
		{
			name:       "content identity without ids",
			local:      Collection{{Text: "same", Category: "x"}},
			remote:     Collection{{Text: "same", Category: "x"}},
			wantMerged: Collection{{Text: "same", Category: "x"}},
		},
		{
			name:        "local-only retained in order",
			local:       Collection{{ID: "a", Text: "1", Category: "x"}, {ID: "b", Text: "2", Category: "x"}},
			remote:      Collection{{ID: "b", Text: "2b", Category: "x"}, {ID: "c", Text: "3", Category: "x"}},
			wantMerged:  Collection{{ID: "a", Text: "1", Category: "x"}, {ID: "b", Text: "2b", Category: "x"}, {ID: "c", Text: "3", Category: "x"}},
			wantChanged: true,
			wantAdded:   1,
			wantUpdated: 1,
			wantKinds:   []ConflictKind{ConflictOverwritten},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Merge(tt.local, tt.remote)

			assert.Equal(t, tt.wantMerged, result.Merged)
			assert.Equal(t, tt.wantChanged, result.Changed)
			assert.Equal(t, tt.wantAdded, result.Added)
			assert.Equal(t, tt.wantUpdated, result.Updated)

			kinds := make([]ConflictKind, 0, len(result.Conflicts))
			for _, c := range result.Conflicts {
				kinds = append(kinds, c.Kind)
			}

			if len(tt.wantKinds) == 0 {
				assert.Empty(t, kinds)
			} else {
				assert.Equal(t, tt.wantKinds, kinds)
			}
		})
	}
}

func TestMerge_OverwrittenNote(t *testing.T) {
	local := Collection{{ID: "1", Text: "old", Author: "me", Category: "x"}}
	remote := Collection{{ID: "1", Text: "new", Author: "me", Category: "y"}}

	result := Merge(local, remote)

	require.Len(t, result.Conflicts, 1)

	note := result.Conflicts[0]
	assert.Equal(t, ConflictOverwritten, note.Kind)
	assert.Equal(t, "1", note.ID)
	assert.Equal(t, []string{"text", "category"}, note.Fields)
	require.NotNil(t, note.Local)
	require.NotNil(t, note.Remote)
	assert.Equal(t, "old", note.Local.Text)
	assert.Equal(t, "new", note.Remote.Text)
}

func TestMerge_ContentIdentityKeepsDistinctLocalRecords(t *testing.T) {
	local := Collection{{Text: "a\x00b", Category: "c"}}
	remote := Collection{{Text: "a", Category: "b\x00c"}}

	result := Merge(local, remote)

	assert.Equal(t, Collection{local[0], remote[0]}, result.Merged)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 0, result.Updated)
}

func TestMerge_MalformedCount(t *testing.T) {
	result := Merge(nil, Collection{{Text: "a"}, {Category: "b"}, {Text: "ok", Category: "c"}})

	assert.Equal(t, 2, result.Malformed())
	assert.Equal(t, 1, result.Added)
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	local := Collection{{ID: "1", Text: "old", Category: "x"}}
	remote := Collection{{ID: "1", Text: "new", Category: "x"}, {ID: "2", Text: "b", Category: "x"}}

	localCopy := local.Clone()
	remoteCopy := remote.Clone()

	result := Merge(local, remote)
	result.Merged[0].Text = "mutated"

	assert.Equal(t, localCopy, local)
	assert.Equal(t, remoteCopy, remote)
}

// randomCollection builds a collection whose ids and contents overlap often
// enough to exercise every merge rule.
func randomCollection(r *rand.Rand, n int) Collection {
	categories := []string{"Motivation", "Wisdom", "Remote", ""}
	c := make(Collection, 0, n)

	for range n {
		q := Quote{
			Text:     fmt.Sprintf("text-%d", r.IntN(5)),
			Category: categories[r.IntN(len(categories))],
		}

		if r.IntN(3) > 0 {
			q.ID = fmt.Sprintf("%d", r.IntN(8))
		}

		if r.IntN(2) == 0 {
			q.Author = fmt.Sprintf("User %d", r.IntN(3))
		}

		c = append(c, q)
	}

	return c
}

func TestMerge_Properties(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	for i := range 500 {
		local := randomCollection(r, r.IntN(6))
		remote := randomCollection(r, r.IntN(8))

		first := Merge(local, remote)
		second := Merge(first.Merged, remote)

		require.False(t, second.Changed, "iteration %d: merge not idempotent", i)
		assert.Equal(t, first.Merged, second.Merged, "iteration %d", i)

		for _, c := range second.Conflicts {
			assert.NotEqual(t, ConflictOverwritten, c.Kind, "iteration %d", i)
		}

		// Every local record survives by identity.
		for _, q := range local {
			assert.GreaterOrEqual(t, first.Merged.IndexOf(q.Key()), 0, "iteration %d: lost %v", i, q)
		}

		// Every well-formed remote record is present with the remote fields,
		// unless an earlier remote record claimed the same identity.
		claimed := map[string]bool{}

		for _, q := range remote {
			q = q.Normalized()
			if q.Validate() != nil || claimed[q.Key()] {
				continue
			}

			claimed[q.Key()] = true

			idx := first.Merged.IndexOf(q.Key())
			require.GreaterOrEqual(t, idx, 0, "iteration %d: missing remote %v", i, q)
			assert.Empty(t, first.Merged[idx].DiffFields(q), "iteration %d", i)
		}

		// Malformed remote records never appear.
		for _, q := range first.Merged[len(local):] {
			assert.NoError(t, q.Validate(), "iteration %d", i)
		}
	}
}
