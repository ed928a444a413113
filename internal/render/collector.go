package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alnah/go-html2pdf/internal/geometry"
)

// eventBuffer bounds the queue between the page binding and the consumer.
// Producers block when it is full; the paginator waits on each binding
// call, so the browser is throttled rather than events dropped.
const eventBuffer = 64

type eventKind int

const (
	eventPage eventKind = iota
	eventSize
	eventRendered
	eventFailed
)

func (k eventKind) String() string {
	switch k {
	case eventPage:
		return "page"
	case eventSize:
		return "size"
	case eventRendered:
		return "rendered"
	case eventFailed:
		return "failed"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

type event struct {
	kind    eventKind
	payload []byte
}

var errCollectorClosed = errors.New("event collector closed")

// collector owns the state of one render. The binding callback pushes raw
// payloads; a single consumer goroutine decodes them, appends pages in
// arrival order and forwards each event to the observer. A failed event
// is terminal at once. A rendered event is terminal once as many pages as
// its total have arrived; until then pages are still accepted.
type collector struct {
	events   chan event
	stop     chan struct{}
	done     chan struct{}
	exited   chan struct{}
	observer Observer
	logger   *slog.Logger

	stopOnce sync.Once
	doneOnce sync.Once

	mu       sync.Mutex
	pages    []geometry.Page
	size     *SizeEvent
	pending  *RenderedEvent
	rendered *RenderedEvent
	err      error
}

func newCollector(observer Observer, logger *slog.Logger) *collector {
	if logger == nil {
		logger = slog.Default()
	}
	c := &collector{
		events:   make(chan event, eventBuffer),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		exited:   make(chan struct{}),
		observer: observer,
		logger:   logger,
	}
	go c.run()
	return c
}

// push queues a payload for the consumer. It blocks while the buffer is
// full and fails once the collector is closed.
func (c *collector) push(kind eventKind, payload []byte) error {
	select {
	case <-c.stop:
		return errCollectorClosed
	default:
	}
	select {
	case c.events <- event{kind: kind, payload: payload}:
		return nil
	case <-c.stop:
		return errCollectorClosed
	}
}

func (c *collector) run() {
	defer close(c.exited)
	for {
		select {
		case e := <-c.events:
			c.handle(e)
		case <-c.stop:
			return
		}
	}
}

func (c *collector) handle(e event) {
	select {
	case <-c.done:
		c.logger.Debug("event after terminal signal ignored", "event", e.kind.String())
		return
	default:
	}

	switch e.kind {
	case eventPage:
		var p pagePayload
		if err := json.Unmarshal(e.payload, &p); err != nil {
			c.finish(fmt.Errorf("%w: decoding page event: %v", ErrPaginate, err))
			return
		}
		page := p.page()
		c.mu.Lock()
		c.pages = append(c.pages, page)
		c.mu.Unlock()
		if c.observer != nil {
			c.observer.OnPage(page)
		}
		c.complete()

	case eventSize:
		var s SizeEvent
		if err := json.Unmarshal(e.payload, &s); err != nil {
			c.logger.Warn("malformed size event", "error", err)
			return
		}
		c.mu.Lock()
		c.size = &s
		c.mu.Unlock()
		if c.observer != nil {
			c.observer.OnSize(s)
		}

	case eventRendered:
		var r RenderedEvent
		if err := json.Unmarshal(e.payload, &r); err != nil {
			c.finish(fmt.Errorf("%w: decoding rendered event: %v", ErrPaginate, err))
			return
		}
		c.mu.Lock()
		if c.pending != nil || c.rendered != nil {
			c.mu.Unlock()
			c.logger.Debug("duplicate rendered event ignored")
			return
		}
		c.pending = &r
		n := len(c.pages)
		c.mu.Unlock()
		if n < r.Total {
			c.logger.Debug("rendered before last pages", "pages", n, "total", r.Total)
		}
		c.complete()

	case eventFailed:
		var f failurePayload
		_ = json.Unmarshal(e.payload, &f)
		c.finish(fmt.Errorf("%w: %s", ErrPaginate, f.Message))
	}
}

// complete finishes the render once a pending rendered event has all its
// pages. The observer sees rendered after the last page.
func (c *collector) complete() {
	c.mu.Lock()
	r := c.pending
	if r == nil || len(c.pages) < r.Total {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	c.rendered = r
	c.mu.Unlock()
	if c.observer != nil {
		c.observer.OnRendered(*r)
	}
	c.finish(nil)
}

// finish records the terminal outcome. Only the first call has effect.
func (c *collector) finish(err error) {
	c.doneOnce.Do(func() {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		close(c.done)
	})
}

// wait blocks until the terminal event or the context ends. A context
// deadline is reported as ErrRenderTimeout.
func (c *collector) wait(ctx context.Context) error {
	select {
	case <-c.done:
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			c.mu.Lock()
			n := len(c.pages)
			pending := c.pending
			c.mu.Unlock()
			if pending != nil {
				return fmt.Errorf("%w: %d of %d pages received", ErrRenderTimeout, n, pending.Total)
			}
			return fmt.Errorf("%w: %d pages laid out", ErrRenderTimeout, n)
		}
		return ctx.Err()
	}
}

// close stops the consumer and waits for it to exit. Safe to call twice.
func (c *collector) close() {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.exited
}

func (c *collector) snapshot() ([]geometry.Page, *SizeEvent, *RenderedEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pages := make([]geometry.Page, len(c.pages))
	copy(pages, c.pages)
	return pages, c.size, c.rendered
}
