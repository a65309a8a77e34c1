// Package broadcast is the process-wide progress pub/sub registry. Topics
// are keyed by job ID with an explicit lifecycle: opened on first publish
// or subscribe, closed once when the job reaches a terminal state. Events
// for one job are delivered in publish order (single producer per job);
// delivery is at-least-once and subscribers must treat events as idempotent
// by their status+progress tuple. Slow subscribers lose intermediate
// events, never the latest one.
package broadcast

import (
	"sync"

	"github.com/orendrasingh/video-transcription/internal/domain"
)

// Event is one progress update for a job.
type Event struct {
	ID       string           `json:"id"`
	Status   domain.JobStatus `json:"status"`
	Progress int              `json:"progress"`
	Message  string           `json:"message,omitempty"`
}

// subscriberBuffer bounds the per-subscriber channel. With milestone-grained
// events a small buffer is plenty.
const subscriberBuffer = 16

type topic struct {
	subs   map[int]chan Event
	nextID int
	last   *Event
	closed bool
}

// Broadcaster fans job progress events out to per-job subscribers.
type Broadcaster struct {
	mu     sync.Mutex
	topics map[string]*topic
}

// New creates an empty broadcaster.
func New() *Broadcaster {
	return &Broadcaster{topics: make(map[string]*topic)}
}

func (b *Broadcaster) topicLocked(jobID string) *topic {
	t, ok := b.topics[jobID]
	if !ok {
		t = &topic{subs: make(map[int]chan Event)}
		b.topics[jobID] = t
	}
	return t
}

// Publish delivers ev to every subscriber of the job's topic. A full
// subscriber channel drops its oldest event to make room, so a live
// subscriber always converges on the newest state. Publishing to a closed
// topic is a no-op.
func (b *Broadcaster) Publish(jobID string, ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := b.topicLocked(jobID)
	if t.closed {
		return
	}
	t.last = &ev
	for _, ch := range t.subs {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

// Subscribe registers interest in a job's topic and returns the event
// channel plus a cancel func. The topic's last event, if any, is replayed
// immediately so late subscribers converge. Subscribing to a closed topic
// yields the final event and an already-closed channel.
func (b *Broadcaster) Subscribe(jobID string) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := b.topicLocked(jobID)
	ch := make(chan Event, subscriberBuffer)
	if t.last != nil {
		ch <- *t.last
	}
	if t.closed {
		close(ch)
		return ch, func() {}
	}

	id := t.nextID
	t.nextID++
	t.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if cur, ok := b.topics[jobID]; ok {
			if sub, ok := cur.subs[id]; ok {
				delete(cur.subs, id)
				close(sub)
			}
		}
	}
	return ch, cancel
}

// Close seals a job's topic after its terminal event: subscriber channels
// are closed and further publishes are ignored. The final event stays
// available for late subscribers.
func (b *Broadcaster) Close(jobID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[jobID]
	if !ok || t.closed {
		return
	}
	t.closed = true
	for id, ch := range t.subs {
		delete(t.subs, id)
		close(ch)
	}
}
