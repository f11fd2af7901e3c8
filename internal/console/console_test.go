package console

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintAndCloseDeliversRecord(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, 0)
	c.Print(Green, "hello %s", "world")
	c.Close()

	assert.Contains(t, buf.String(), "hello world")
}

func TestCloseDrainsPendingRecordsBeforeExit(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, 0)
	for i := 0; i < 20; i++ {
		c.Print(Default, "line %d", i)
	}
	c.Close()

	out := buf.String()
	assert.Equal(t, 20, strings.Count(out, "line "))
}

func TestMessageTruncatedAtMaxLen(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, 0)
	c.Print(Default, "%s", strings.Repeat("x", MaxMessageLen+100))
	c.Close()

	line := strings.TrimRight(buf.String(), "\n")
	assert.LessOrEqual(t, len(line), MaxMessageLen)
}

func TestWithConsoleFromContext(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, 0)
	defer c.Close()

	def := New(&bytes.Buffer{}, 0)
	defer def.Close()

	ctx := WithConsole(context.Background(), c)
	got := FromContext(ctx, def)
	assert.Same(t, c, got)

	assert.Same(t, def, FromContext(context.Background(), def))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rec := Record{Color: Cyan, Message: "round trip"}
	decoded, ok := decode(encode(rec))
	require.True(t, ok)
	assert.Equal(t, rec, decoded)
}

func TestWithDropCounterFiresWhenQueueFull(t *testing.T) {
	// pw blocks on Write until pr is read, so the drain goroutine stalls
	// inside render() on the very first record, letting the queue fill up
	// from under it deterministically rather than racing the drain.
	pr, pw := io.Pipe()

	var drops int64
	c := New(pw, 1, WithDropCounter(func() { atomic.AddInt64(&drops, 1) }))

	msg := strings.Repeat("x", MaxMessageLen)
	for i := 0; i < 64; i++ {
		c.Print(Default, "%s", msg)
	}

	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt64(&drops) == 0 && time.Now().Before(deadline) {
		c.Print(Default, "%s", msg)
		time.Sleep(time.Millisecond)
	}
	assert.Greater(t, atomic.LoadInt64(&drops), int64(0), "expected at least one drop once the queue filled up")

	go io.Copy(io.Discard, pr)
	c.Close()
	_ = pw.Close()
}

func TestCloseIsSafeWithNoPendingWork(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, 0)
	done := make(chan struct{})
	go func() {
		c.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not return")
	}
}
