// Package live decides when a stream of query edits actually reaches the
// search engine: it debounces keystrokes, runs searches off the caller's
// loop, and guarantees that only the newest query's results are delivered.
package live

import (
	"sync/atomic"
	"time"
)

// SearchFunc executes one query. It runs on a worker goroutine and must be
// safe to call concurrently with the caller's loop.
type SearchFunc[T any] func(query string) (T, error)

// Delivery carries the outcome of the newest query.
type Delivery[T any] struct {
	Query    string
	Response T
	Err      error
}

// Config controls dispatch behavior. Interval only applies when Debounce is
// set; Live gates whether Update fires searches at all.
type Config struct {
	Live     bool
	Debounce bool
	Interval time.Duration
}

type request struct {
	text  string
	force bool
}

type completion[T any] struct {
	seq uint64
	d   Delivery[T]
}

// Dispatcher owns a single event loop: a pending debounce timer and the
// query sequence counter live only on that loop, so no mutexes are needed.
// Each accepted edit supersedes everything before it; a search still in
// flight for an older edit is discarded on completion, never delivered out
// of order.
type Dispatcher[T any] struct {
	cfg      Config
	searchFn SearchFunc[T]

	updates     chan request
	completions chan completion[T]
	results     chan Delivery[T]

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// New creates a Dispatcher and starts its loop.
func New[T any](cfg Config, fn SearchFunc[T]) *Dispatcher[T] {
	if cfg.Interval <= 0 {
		cfg.Interval = 200 * time.Millisecond
	}
	d := &Dispatcher[T]{
		cfg:         cfg,
		searchFn:    fn,
		updates:     make(chan request, 64),
		completions: make(chan completion[T], 8),
		results:     make(chan Delivery[T], 1),
		stopCh:      make(chan struct{}),
		stopped:     make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher[T]) run() {
	defer close(d.stopped)
	defer close(d.results)

	var (
		seq     uint64 // bumped on every accepted edit; completions carry the seq they ran under
		pending string
		armed   bool
		timer   *time.Timer
		timerCh <-chan time.Time
	)

	arm := func() {
		armed = true
		if timer == nil {
			timer = time.NewTimer(d.cfg.Interval)
			timerCh = timer.C
		} else {
			timer.Reset(d.cfg.Interval)
		}
	}

	fire := func(query string) {
		s := seq
		go func() {
			resp, err := d.searchFn(query)
			select {
			case d.completions <- completion[T]{seq: s, d: Delivery[T]{Query: query, Response: resp, Err: err}}:
			case <-d.stopCh:
			}
		}()
	}

	for {
		select {
		case <-d.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return

		case req := <-d.updates:
			if !req.force && !d.cfg.Live {
				continue
			}
			seq++
			if req.force || !d.cfg.Debounce {
				armed = false
				if timer != nil {
					timer.Stop()
				}
				fire(req.text)
				continue
			}
			pending = req.text
			arm()

		case <-timerCh:
			if !armed {
				continue // stale tick from a stopped timer
			}
			armed = false
			fire(pending)

		case c := <-d.completions:
			if c.seq != seq {
				continue // superseded by a newer edit
			}
			d.deliver(c.d)
		}
	}
}

// deliver hands the newest delivery to the consumer without ever blocking
// the loop: the buffer holds one delivery and a stale one is displaced.
func (d *Dispatcher[T]) deliver(del Delivery[T]) {
	for {
		select {
		case d.results <- del:
			return
		default:
		}
		select {
		case <-d.results:
		default:
		}
	}
}

// Update feeds one query edit into the dispatcher. With live search off the
// edit is ignored; use Submit to search explicitly.
func (d *Dispatcher[T]) Update(text string) {
	d.send(request{text: text})
}

// Submit runs a query immediately, bypassing live mode and the debounce.
func (d *Dispatcher[T]) Submit(text string) {
	d.send(request{text: text, force: true})
}

func (d *Dispatcher[T]) send(req request) {
	if d.closed.Load() {
		return
	}
	select {
	case d.updates <- req:
	case <-d.stopped:
	}
}

// Results returns the delivery channel. It carries at most the newest
// outcome and is closed by Close.
func (d *Dispatcher[T]) Results() <-chan Delivery[T] {
	return d.results
}

// Close stops the loop. Any in-flight search is discarded.
func (d *Dispatcher[T]) Close() {
	if d.closed.CompareAndSwap(false, true) {
		close(d.stopCh)
	}
	<-d.stopped
}
