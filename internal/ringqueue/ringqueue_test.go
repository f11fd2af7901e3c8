package ringqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushPopOne(t *testing.T) {
	q := New(pageSize)
	require.True(t, q.Push([]byte("hello")))

	out := make([]byte, 16)
	n, ok := q.PopOne(out)
	require.True(t, ok)
	assert.Equal(t, "hello", string(out[:n]))
}

func TestPopOneTooSmall(t *testing.T) {
	q := New(pageSize)
	require.True(t, q.Push([]byte("a long message that won't fit")))

	out := make([]byte, 4)
	_, ok := q.PopOne(out)
	assert.False(t, ok, "PopOne must leave the queue unchanged when out is too small")

	big := make([]byte, 64)
	n, ok := q.PopOne(big)
	require.True(t, ok)
	assert.Equal(t, "a long message that won't fit", string(big[:n]))
}

func TestDrainOrderFIFO(t *testing.T) {
	q := New(pageSize)
	want := []string{"one", "two", "three"}
	for _, m := range want {
		require.True(t, q.Push([]byte(m)))
	}

	var got []string
	done := q.Drain(func(raw []byte) {
		got = append(got, string(raw))
	})
	assert.True(t, done, "Drain reports true once the queue is fully drained")
	assert.Equal(t, want, got)
}

func TestPushDropsWhenFull(t *testing.T) {
	q := New(pageSize)
	// Fill the queue with fixed-size records until a push fails.
	rec := make([]byte, 256)
	pushed := 0
	for q.Push(rec) {
		pushed++
		if pushed > 10000 {
			t.Fatal("queue never reported full")
		}
	}
	assert.False(t, q.Push(rec), "push on a full queue must return false, not block")
}

func TestWrapAroundRoundTrip(t *testing.T) {
	q := New(pageSize)
	// Push and pop repeatedly so top/bottom wrap past the buffer end, then
	// verify a final record that straddles the wrap point round-trips.
	small := make([]byte, 64)
	for i := 0; i < 200; i++ {
		require.True(t, q.Push(small))
		out := make([]byte, 64)
		_, ok := q.PopOne(out)
		require.True(t, ok)
	}

	payload := make([]byte, pageSize/2)
	for i := range payload {
		payload[i] = byte(i)
	}
	require.True(t, q.Push(payload))

	out := make([]byte, pageSize)
	n, ok := q.PopOne(out)
	require.True(t, ok)
	assert.Equal(t, payload, out[:n])
}

func TestCapacityRoundedToPage(t *testing.T) {
	q := New(1)
	assert.Equal(t, uint64(pageSize), q.Capacity())

	q2 := New(pageSize + 1)
	assert.Equal(t, uint64(pageSize*2), q2.Capacity())
}
