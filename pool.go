package html2pdf

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one printer is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("printer pool closed")

// PrinterPool manages a pool of Printer instances for parallel rendering.
// Each printer has its own browser, so documents do not share a renderer
// process. Printers are created lazily on first acquire.
type PrinterPool struct {
	size     int
	opts     []Option
	printers []*Printer
	sem      chan *Printer
	mu       sync.Mutex
	created  int
	closed   bool
}

// NewPrinterPool creates a pool with capacity for n printers, each built
// with opts.
func NewPrinterPool(n int, opts ...Option) *PrinterPool {
	if n < 1 {
		n = 1
	}

	return &PrinterPool{
		size:     n,
		opts:     opts,
		printers: make([]*Printer, 0, n),
		sem:      make(chan *Printer, n),
	}
}

// Acquire gets a printer from the pool, creating one if capacity allows.
// Blocks until a printer is released or ctx ends.
func (p *PrinterPool) Acquire(ctx context.Context) (*Printer, error) {
	select {
	case pr, ok := <-p.sem:
		if !ok {
			return nil, ErrPoolClosed
		}
		return pr, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		// Create outside the lock; loading scripts touches the disk.
		pr, err := NewPrinter(p.opts...)

		p.mu.Lock()
		defer p.mu.Unlock()
		if err != nil {
			p.created--
			return nil, err
		}
		if p.closed {
			_ = pr.Close()
			return nil, ErrPoolClosed
		}
		p.printers = append(p.printers, pr)
		return pr, nil
	}
	p.mu.Unlock()

	select {
	case pr, ok := <-p.sem:
		if !ok {
			return nil, ErrPoolClosed
		}
		return pr, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a printer to the pool.
// The channel holds every printer the pool can create, so sending under
// the lock never blocks and cannot race with Close.
func (p *PrinterPool) Release(pr *Printer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || pr == nil {
		return
	}
	p.sem <- pr
}

// Close releases all browser resources.
// Returns an aggregated error if multiple printers fail to close.
func (p *PrinterPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	printers := p.printers
	p.mu.Unlock()

	var errs []error
	for _, pr := range printers {
		if err := pr.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *PrinterPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the optimal pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by servers and CLIs.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	available := runtime.GOMAXPROCS(0)
	n := available / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
