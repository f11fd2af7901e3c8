// Package console implements the single background consumer (C3) that
// drains a ring queue of log records and writes them to the terminal with
// per-record color, mirroring the original ConsolePrinter's async
// dispatcher thread but built on a ringqueue.Queue instead of a raw
// Win32 console handle.
package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/ralex1975/shadowbackup/internal/ringqueue"
)

// MaxMessageLen bounds a single record's message, matching the original's
// wide_char_message[<=511] cap.
const MaxMessageLen = 511

// Color selects the SGR color a record is rendered with. Default leaves
// the terminal's current attribute untouched.
type Color int

const (
	Default Color = iota
	Red
	Yellow
	Green
	Cyan
	MaxColor
)

var ansiCodes = map[Color]string{
	Red:    "\x1b[31m",
	Yellow: "\x1b[33m",
	Green:  "\x1b[32m",
	Cyan:   "\x1b[36m",
}

const ansiReset = "\x1b[0m"

// Record is one queued log line.
type Record struct {
	Color   Color
	Message string
}

// Console is a single drain goroutine parked on its queue, matching the
// original's one-background-thread-per-console-instance design.
type Console struct {
	queue    *ringqueue.Queue
	out      io.Writer
	colorize bool
	onDrop   func()

	work chan struct{}
	wg   sync.WaitGroup

	mu          sync.Mutex
	terminating bool
}

// Option configures optional Console behavior.
type Option func(*Console)

// WithDropCounter registers a callback invoked once for every record Print
// drops because the ring queue was full, e.g. metrics.Metrics.RingDrops.Inc.
func WithDropCounter(onDrop func()) Option {
	return func(c *Console) { c.onDrop = onDrop }
}

// New creates a Console writing to w (wrapped in go-colorable so Windows
// consoles translate the ANSI codes written below into
// SetConsoleTextAttribute calls, the direct equivalent of the original's
// own use of that API). Plain, non-terminal output (redirected to a file,
// or piped) falls back to uncolored text via go-isatty, matching rclone's
// own terminal-detection idiom.
func New(w io.Writer, queueSize int, opts ...Option) *Console {
	out := w
	var colorize bool
	if f, ok := w.(*os.File); ok {
		out = colorable.NewColorable(f)
		colorize = isatty.IsTerminal(f.Fd())
	}

	c := &Console{
		queue:    ringqueue.New(queueSize),
		out:      out,
		colorize: colorize,
		work:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.wg.Add(1)
	go c.run()
	return c
}

// Print enqueues a record for the drain to render. It never blocks and may
// silently drop the record if the queue is full — log-record loss under
// heavy load is accepted by design (§7 propagation policy).
func (c *Console) Print(color Color, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if len(msg) > MaxMessageLen {
		msg = msg[:MaxMessageLen]
	}
	rec := encode(Record{Color: color, Message: msg})
	if c.queue.Push(rec) {
		select {
		case c.work <- struct{}{}:
		default:
		}
		return
	}
	if c.onDrop != nil {
		c.onDrop()
	}
}

// Close signals the drain to finish its current backlog and exit, then
// waits for it to do so. It is safe to call once.
func (c *Console) Close() {
	c.mu.Lock()
	c.terminating = true
	c.mu.Unlock()
	select {
	case c.work <- struct{}{}:
	default:
	}
	c.wg.Wait()
}

func (c *Console) run() {
	defer c.wg.Done()
	for {
		<-c.work
		c.queue.Drain(c.render)

		c.mu.Lock()
		done := c.terminating
		c.mu.Unlock()
		if done {
			// Drain once more in case a Print raced the terminating flag
			// between the last drain and this check, so no pending record
			// is lost.
			c.queue.Drain(c.render)
			return
		}
	}
}

func (c *Console) render(raw []byte) {
	rec, ok := decode(raw)
	if !ok {
		return
	}
	if c.colorize {
		if code, ok := ansiCodes[rec.Color]; ok {
			fmt.Fprint(c.out, code)
			fmt.Fprintln(c.out, rec.Message)
			fmt.Fprint(c.out, ansiReset)
			return
		}
	}
	fmt.Fprintln(c.out, rec.Message)
}

// --- thread/goroutine console association ---

type contextKey struct{}

// WithConsole returns a context carrying console for use by Print retrieved
// via FromContext — the goroutine-scoped equivalent of the original's
// per-thread console association (Go has no implicit thread-locals).
func WithConsole(ctx context.Context, c *Console) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the console bound to ctx, or def if none is bound.
func FromContext(ctx context.Context, def *Console) *Console {
	if c, ok := ctx.Value(contextKey{}).(*Console); ok {
		return c
	}
	return def
}

// --- wire format: {color byte}{message bytes} ---

func encode(r Record) []byte {
	buf := make([]byte, 1+len(r.Message))
	buf[0] = byte(r.Color)
	copy(buf[1:], r.Message)
	return buf
}

func decode(raw []byte) (Record, bool) {
	if len(raw) == 0 {
		return Record{}, false
	}
	return Record{Color: Color(raw[0]), Message: string(raw[1:])}, true
}
