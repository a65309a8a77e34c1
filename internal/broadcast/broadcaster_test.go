package broadcast

import (
	"testing"

	"github.com/orendrasingh/video-transcription/internal/domain"
)

func TestPublishOrderPreserved(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe("job-1")
	defer cancel()

	statuses := []domain.JobStatus{
		domain.StatusQueued,
		domain.StatusExtracting,
		domain.StatusSegmenting,
		domain.StatusTranscribing,
	}
	for i, s := range statuses {
		b.Publish("job-1", Event{ID: "job-1", Status: s, Progress: i * 10})
	}

	for i, want := range statuses {
		ev := <-ch
		if ev.Status != want {
			t.Errorf("event %d: status = %s, want %s", i, ev.Status, want)
		}
	}
}

func TestLateSubscriberGetsLastEvent(t *testing.T) {
	b := New()
	b.Publish("job-2", Event{ID: "job-2", Status: domain.StatusExtracting, Progress: 10})
	b.Publish("job-2", Event{ID: "job-2", Status: domain.StatusSegmenting, Progress: 20})

	ch, cancel := b.Subscribe("job-2")
	defer cancel()

	ev := <-ch
	if ev.Status != domain.StatusSegmenting || ev.Progress != 20 {
		t.Errorf("late subscriber got %+v, want the latest event", ev)
	}
}

func TestSlowSubscriberKeepsNewest(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe("job-3")
	defer cancel()

	// Overflow the buffer without draining; oldest events are dropped.
	for i := 0; i < subscriberBuffer*3; i++ {
		b.Publish("job-3", Event{ID: "job-3", Status: domain.StatusTranscribing, Progress: i})
	}

	var last Event
	for {
		select {
		case ev := <-ch:
			last = ev
			continue
		default:
		}
		break
	}
	if last.Progress != subscriberBuffer*3-1 {
		t.Errorf("newest progress = %d, want %d", last.Progress, subscriberBuffer*3-1)
	}
}

func TestCloseEndsSubscribersAndKeepsFinalEvent(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe("job-4")
	defer cancel()

	final := Event{ID: "job-4", Status: domain.StatusCompleted, Progress: 100}
	b.Publish("job-4", final)
	b.Close("job-4")

	// Drain: the final event then channel close.
	ev, ok := <-ch
	if !ok || ev.Status != domain.StatusCompleted {
		t.Fatalf("expected final event, got %+v ok=%v", ev, ok)
	}
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after Close")
	}

	// Closed topic: publish is a no-op, late subscribe replays the final
	// event on an already-closed channel.
	b.Publish("job-4", Event{ID: "job-4", Status: domain.StatusQueued})

	late, lateCancel := b.Subscribe("job-4")
	defer lateCancel()
	ev, ok = <-late
	if !ok || ev.Status != domain.StatusCompleted {
		t.Fatalf("late subscriber after close got %+v ok=%v", ev, ok)
	}
	if _, ok := <-late; ok {
		t.Error("late channel should be closed")
	}
}

func TestCloseIdempotent(t *testing.T) {
	b := New()
	b.Publish("job-5", Event{ID: "job-5", Status: domain.StatusFailed})
	b.Close("job-5")
	b.Close("job-5")
}

func TestCancelStopsDelivery(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe("job-6")
	cancel()

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after cancel")
	}
	// Publishing after cancel must not panic on the removed channel.
	b.Publish("job-6", Event{ID: "job-6", Status: domain.StatusQueued})
}
