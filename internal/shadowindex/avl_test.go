package shadowindex

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compareInts(a, b *int) int {
	switch {
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}

func TestInsertFindRemove(t *testing.T) {
	tree := New[int](compareInts)

	for _, v := range []int{5, 3, 8, 1, 4} {
		v := v
		require.NotNil(t, tree.Insert(v))
	}
	assert.Equal(t, 5, tree.Len())

	found := tree.Find(ptr(3))
	require.NotNil(t, found)
	assert.Equal(t, 3, *found)

	assert.Nil(t, tree.Find(ptr(99)))

	removed := tree.Remove(ptr(3), nil)
	assert.True(t, removed)
	assert.Nil(t, tree.Find(ptr(3)))
	assert.Equal(t, 4, tree.Len())

	assert.False(t, tree.Remove(ptr(3), nil), "removing a missing key reports false")
}

func TestInsertDuplicateRejected(t *testing.T) {
	tree := New[int](compareInts)
	require.NotNil(t, tree.Insert(5))
	assert.Nil(t, tree.Insert(5), "duplicate key insert must return nil")
	assert.Equal(t, 1, tree.Len())
}

func TestRemoveInvokesFreeCallbackExactlyOnce(t *testing.T) {
	tree := New[int](compareInts)
	tree.Insert(7)

	calls := 0
	ok := tree.Remove(ptr(7), func(v *int) { calls++ })
	assert.True(t, ok)
	assert.Equal(t, 1, calls)
}

func TestBalanceHoldsUnderRandomInsertsAndRemoves(t *testing.T) {
	tree := New[int](compareInts)
	r := rand.New(rand.NewSource(1))

	present := map[int]bool{}
	for i := 0; i < 500; i++ {
		v := r.Intn(1000)
		if tree.Insert(v) != nil {
			present[v] = true
		}
		require.True(t, tree.CheckBalance())
	}

	for v := range present {
		v := v
		require.True(t, tree.Remove(ptr(v), nil))
		require.True(t, tree.CheckBalance())
	}
	assert.Equal(t, 0, tree.Len())
}

func TestWalkVisitsInOrder(t *testing.T) {
	tree := New[int](compareInts)
	for _, v := range []int{5, 3, 8, 1, 4, 9} {
		tree.Insert(v)
	}

	var got []int
	tree.Walk(func(v *int) bool {
		got = append(got, *v)
		return true
	})
	assert.Equal(t, []int{1, 3, 4, 5, 8, 9}, got)
}

func ptr(v int) *int { return &v }
