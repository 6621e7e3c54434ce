package events

import (
	"context"
	"errors"
	"testing"
)

func TestPublishRunsEveryHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.Subscribe(EventHelperChanged, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventHelperChanged, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventUserChanged, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), New(EventHelperChanged, "h-1", nil, ChangedPayload{Action: ActionUpdated}))
	if err == nil {
		t.Fatal("expected handler error to be reported")
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Fatalf("calls = %v", calls)
	}
}

func TestNewRecordsActor(t *testing.T) {
	ev := New(EventContactChanged, "c-1", nil, nil)
	if ev.ActorID != nil || ev.ID == "" || ev.Timestamp.IsZero() {
		t.Fatalf("unexpected event %+v", ev)
	}
}
