// Package stream implements the in-process progress event broker: one
// bounded, append-only log per job with fan-out to live subscribers.
package stream

import (
	"sync"

	"RegCollector/internal/domain"
	"RegCollector/internal/ports"
)

const defaultCapacity = 100

// Broker keeps a bounded backlog of progress events per job and fans each
// published event out to the job's subscribers. The job runner is the only
// writer; any number of readers may subscribe. After the terminal event all
// subscriber channels are closed and the job's log is dropped.
type Broker struct {
	mu       sync.Mutex
	capacity int
	jobs     map[string]*jobLog
}

type jobLog struct {
	backlog []domain.ProgressEvent
	subs    map[int]chan domain.ProgressEvent
	nextSub int
	done    bool
}

var _ ports.EventStream = (*Broker)(nil)

// NewBroker creates a broker whose per-job backlog holds at most capacity
// events; older events are discarded first.
func NewBroker(capacity int) *Broker {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Broker{
		capacity: capacity,
		jobs:     make(map[string]*jobLog),
	}
}

// Publish appends the event to the job's backlog and delivers it to every
// live subscriber. A slow subscriber loses its oldest buffered event rather
// than blocking the publisher. A terminal event closes all subscriber
// channels and marks the log finished; the backlog is retained so late
// readers can still replay it.
func (b *Broker) Publish(jobID string, event domain.ProgressEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	log, ok := b.jobs[jobID]
	if !ok {
		log = &jobLog{subs: make(map[int]chan domain.ProgressEvent)}
		b.jobs[jobID] = log
	}
	if log.done {
		return
	}

	log.backlog = append(log.backlog, event)
	if len(log.backlog) > b.capacity {
		log.backlog = log.backlog[len(log.backlog)-b.capacity:]
	}

	for _, ch := range log.subs {
		send(ch, event)
	}

	if event.Terminal() {
		for _, ch := range log.subs {
			close(ch)
		}
		log.subs = make(map[int]chan domain.ProgressEvent)
		log.done = true
	}
}

// Drop removes a job's event log entirely.
func (b *Broker) Drop(jobID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if log, ok := b.jobs[jobID]; ok {
		for _, ch := range log.subs {
			close(ch)
		}
		delete(b.jobs, jobID)
	}
}

// Subscribe attaches a reader to the job's event log, creating the log when
// the job has not published yet so a reader attaching between job creation
// and the first event misses nothing. With backlog true the buffered history
// is delivered before any live event. For a finished job the backlog (when
// requested) is replayed and then the channel closes. The cancel function
// detaches the reader; calling it more than once is safe.
func (b *Broker) Subscribe(jobID string, backlog bool) (<-chan domain.ProgressEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	log, ok := b.jobs[jobID]
	if !ok {
		log = &jobLog{subs: make(map[int]chan domain.ProgressEvent)}
		b.jobs[jobID] = log
	}

	size := b.capacity
	if backlog {
		size += len(log.backlog)
	}
	ch := make(chan domain.ProgressEvent, size)
	if backlog {
		for _, event := range log.backlog {
			ch <- event
		}
	}
	if log.done {
		close(ch)
		return ch, func() {}
	}

	id := log.nextSub
	log.nextSub++
	log.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if log, ok := b.jobs[jobID]; ok {
				if ch, ok := log.subs[id]; ok {
					delete(log.subs, id)
					close(ch)
				}
			}
		})
	}
	return ch, cancel
}

// send never blocks: on a full channel the oldest buffered event is dropped
// to make room for the newest one.
func send(ch chan domain.ProgressEvent, event domain.ProgressEvent) {
	for {
		select {
		case ch <- event:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
