package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductIndexLetter(t *testing.T) {
	assert.Equal(t, "A", ProductIndexLetter(0))
	assert.Equal(t, "B", ProductIndexLetter(1))
	assert.Equal(t, "Z", ProductIndexLetter(25))
	assert.Equal(t, "AA", ProductIndexLetter(26))
	assert.Equal(t, "AB", ProductIndexLetter(27))
	assert.Equal(t, "AZ", ProductIndexLetter(51))
	assert.Equal(t, "BA", ProductIndexLetter(52))
	assert.Equal(t, "", ProductIndexLetter(-1))
}

func TestProductIndexLetter_Distinct(t *testing.T) {
	seen := make(map[string]int)
	for i := 0; i < 100; i++ {
		letter := ProductIndexLetter(i)
		prev, dup := seen[letter]
		require.False(t, dup, "positions %d and %d both map to %s", prev, i, letter)
		seen[letter] = i
	}
}

func TestBatchID_Deterministic(t *testing.T) {
	assert.Equal(t, "MO-202601-0001A1", BatchID("MO-202601-0001", "A", 1))
	assert.Equal(t, BatchID("X", "B", 2), BatchID("X", "B", 2))

	assert.NotEqual(t, BatchID("X", "A", 1), BatchID("Y", "A", 1))
	assert.NotEqual(t, BatchID("X", "A", 1), BatchID("X", "B", 1))
	assert.NotEqual(t, BatchID("X", "A", 1), BatchID("X", "A", 2))
}

func TestAssignBatchIDs(t *testing.T) {
	first := itemWithBatches(30, 10, 20)
	second := itemWithBatches(5, 5)

	assigned := AssignBatchIDs("MO-1", []LineItem{first, second})

	require.Len(t, assigned, 3)
	assert.Equal(t, "MO-1A1", assigned[first.Batches[0].ID])
	assert.Equal(t, "MO-1A2", assigned[first.Batches[1].ID])
	assert.Equal(t, "MO-1B1", assigned[second.Batches[0].ID])
}
