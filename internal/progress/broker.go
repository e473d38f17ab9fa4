// Package progress implements a broker that fans rebuild progress and status
// events out to subscribers, throttling the progress stream so a fast walk
// cannot flood slow consumers.
package progress

import (
	"sync/atomic"
	"time"
)

// EventType identifies a rebuild event.
type EventType string

const (
	// EventProgress is emitted during a walk at a bounded rate.
	EventProgress EventType = "rebuild.progress"
	// EventCompleted is emitted once when a rebuild commits.
	EventCompleted EventType = "rebuild.completed"
	// EventCancelled is emitted once when a rebuild is cancelled.
	EventCancelled EventType = "rebuild.cancelled"
	// EventFailed is emitted once when a rebuild fails.
	EventFailed EventType = "rebuild.failed"
)

// Event is one rebuild notification. Processed/CurrentPath are set on
// progress events; Entries/Warnings/Elapsed on terminal events; Err on
// failures.
type Event struct {
	Type        EventType
	Processed   int
	CurrentPath string
	Entries     int
	Warnings    int
	Elapsed     time.Duration
	Err         string
}

// Broker manages subscriber channels and broadcasts events.
//
// Concurrency model: a single internal event loop (goroutine) owns mutable
// state (subscribers + progress throttle timestamp). Public methods
// communicate with this loop through channels, so no mutexes are required.
type Broker struct {
	progressMin time.Duration

	subscribeCh   chan chan Event
	unsubscribeCh chan chan Event
	publishCh     chan Event
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker whose progress events are delivered at most
// once per progressThrottle. Terminal events are never throttled.
func NewBroker(progressThrottle time.Duration) *Broker {
	if progressThrottle <= 0 {
		progressThrottle = 100 * time.Millisecond
	}

	b := &Broker{
		progressMin:   progressThrottle,
		subscribeCh:   make(chan chan Event),
		unsubscribeCh: make(chan chan Event),
		publishCh:     make(chan Event, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	subscribers := make(map[chan Event]struct{})
	var lastProgress time.Time

	broadcast := func(ev Event) {
		for ch := range subscribers {
			select {
			case ch <- ev:
			default:
				// Subscriber buffer full; skip to avoid blocking the loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range subscribers {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			subscribers[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := subscribers[ch]; ok {
				delete(subscribers, ch)
				close(ch)
			}

		case ev := <-b.publishCh:
			if ev.Type == EventProgress {
				now := time.Now()
				if now.Sub(lastProgress) < b.progressMin {
					continue
				}
				lastProgress = now
			}
			broadcast(ev)

		case resp := <-b.countReqCh:
			resp <- len(subscribers)
		}
	}
}

// Close gracefully stops the loop and closes all subscriber channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new subscriber and returns its channel.
func (b *Broker) Subscribe() chan Event {
	ch := make(chan Event, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(ch chan Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Broker) SubscriberCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all subscribers. Progress events may be dropped
// by the throttle; terminal events are always delivered to live subscribers.
func (b *Broker) Publish(ev Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- ev:
	case <-b.stopped:
	}
}
