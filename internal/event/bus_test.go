package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestTopic_Matches(t *testing.T) {
	tests := []struct {
		topic   Topic
		pattern Topic
		want    bool
	}{
		{"window.closed", "window.closed", true},
		{"window.closed", "window.*", true},
		{"window.closed", "buffer.*", false},
		{"window.closed", "**", true},
		{"window.closed", "*", false},
		{"window.closed", "window.closed.x", false},
		{"config.reloaded", "**.reloaded", true},
		{"window", "window.**", true},
		{"a.b.c.d", "a.**.d", true},
		{"a.d", "a.**.d", true},
		{"a.b.c", "a.**.d", false},
		{"cursor.moved", TopicAll, true},
	}
	for _, tt := range tests {
		if got := tt.topic.Matches(tt.pattern); got != tt.want {
			t.Errorf("%q.Matches(%q) = %v, want %v", tt.topic, tt.pattern, got, tt.want)
		}
	}
}

func TestTopic_IsValid(t *testing.T) {
	for topic, want := range map[Topic]bool{
		"window.closed": true,
		"":              false,
		"window..x":     false,
		".window":       false,
	} {
		if got := topic.IsValid(); got != want {
			t.Errorf("%q.IsValid() = %v, want %v", topic, got, want)
		}
	}
}

func TestNewEvent(t *testing.T) {
	e := NewEvent(TopicWindowClosed, WindowClosed{Win: 3}, "editor")
	if e.Type != TopicWindowClosed || e.Payload.Win != 3 || e.Metadata.Source != "editor" {
		t.Errorf("event = %+v", e)
	}
	if _, err := uuid.Parse(e.Metadata.ID); err != nil {
		t.Errorf("ID %q is not a uuid: %v", e.Metadata.ID, err)
	}
	if e.Metadata.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}
	if other := NewEvent(TopicWindowClosed, WindowClosed{}, ""); other.Metadata.ID == e.Metadata.ID {
		t.Error("event ids collide")
	}
}

func TestBus_PublishOrder(t *testing.T) {
	bus := NewBus()
	var order []string
	record := func(name string) HandlerFunc {
		return func(ctx context.Context, event any) error {
			order = append(order, name)
			return nil
		}
	}

	mustSubscribe(t, bus, "window.*", record("normal-1"))
	mustSubscribe(t, bus, "window.closed", record("low"), WithPriority(PriorityLow))
	mustSubscribe(t, bus, "window.closed", record("critical"), WithPriority(PriorityCritical))
	mustSubscribe(t, bus, "**", record("normal-2"))
	mustSubscribe(t, bus, "buffer.deleted", record("other"))

	if err := bus.Publish(context.Background(), NewEvent(TopicWindowClosed, WindowClosed{Win: 1}, "")); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	want := []string{"critical", "normal-1", "normal-2", "low"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order = %v, want %v", order, want)
			break
		}
	}
}

func TestSubscribeTyped(t *testing.T) {
	bus := NewBus()
	var got []int
	_, err := SubscribeTyped(bus, TopicBufferDeleted, func(ctx context.Context, e Event[BufferDeleted]) error {
		got = append(got, e.Payload.Buf)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	_ = bus.Publish(ctx, NewEvent(TopicBufferDeleted, BufferDeleted{Buf: 7}, ""))
	_ = bus.Publish(ctx, NewEvent(TopicBufferDeleted, "wrong payload", ""))

	if len(got) != 1 || got[0] != 7 {
		t.Errorf("got = %v, want [7]", got)
	}
}

func TestBus_HandlerFailures(t *testing.T) {
	bus := NewBus()
	boom := errors.New("boom")
	delivered := false

	mustSubscribe(t, bus, "**", func(ctx context.Context, event any) error { return boom }, WithPriority(PriorityCritical))
	mustSubscribe(t, bus, "**", func(ctx context.Context, event any) error { panic("bad handler") })
	mustSubscribe(t, bus, "**", func(ctx context.Context, event any) error {
		delivered = true
		return nil
	}, WithPriority(PriorityLow))

	err := bus.Publish(context.Background(), NewEvent(TopicConfigReloaded, ConfigReloaded{}, ""))
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if !errors.Is(err, ErrHandlerPanic) {
		t.Errorf("err = %v, want ErrHandlerPanic", err)
	}
	var herr *HandlerError
	if !errors.As(err, &herr) || herr.Topic != TopicConfigReloaded {
		t.Errorf("HandlerError = %+v", herr)
	}
	if !delivered {
		t.Error("failing handlers stopped delivery")
	}

	stats := bus.Stats()
	if stats.HandlerErrors != 1 || stats.HandlerPanics != 1 || stats.Delivered != 1 || stats.Published != 1 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestBus_Once(t *testing.T) {
	bus := NewBus()
	calls := 0
	mustSubscribe(t, bus, "window.focused", func(ctx context.Context, event any) error {
		calls++
		return nil
	}, WithOnce())

	ev := NewEvent(TopicWindowFocused, WindowFocused{Win: 2}, "")
	_ = bus.Publish(context.Background(), ev)
	_ = bus.Publish(context.Background(), ev)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if n := bus.Stats().Subscriptions; n != 0 {
		t.Errorf("Subscriptions = %d, want 0", n)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0
	sub := mustSubscribe(t, bus, "**", func(ctx context.Context, event any) error {
		calls++
		return nil
	})

	if err := sub.Cancel(); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if err := bus.Unsubscribe(sub); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Errorf("second Unsubscribe() = %v, want ErrSubscriptionNotFound", err)
	}
	_ = bus.Publish(context.Background(), NewEvent(TopicWindowClosed, WindowClosed{}, ""))
	if calls != 0 {
		t.Errorf("cancelled handler called %d times", calls)
	}
}

func TestBus_Errors(t *testing.T) {
	bus := NewBus()
	if _, err := bus.Subscribe("window.closed", nil); !errors.Is(err, ErrNilHandler) {
		t.Errorf("nil handler: %v", err)
	}
	if _, err := bus.SubscribeFunc("", func(context.Context, any) error { return nil }); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic: %v", err)
	}
	if err := bus.Publish(context.Background(), "not an event"); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("untyped event: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mustSubscribe(t, bus, "**", func(context.Context, any) error { return nil })
	if err := bus.Publish(ctx, NewEvent(TopicWindowClosed, WindowClosed{}, "")); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled context: %v", err)
	}

	bus.Close()
	if err := bus.Publish(context.Background(), NewEvent(TopicWindowClosed, WindowClosed{}, "")); !errors.Is(err, ErrBusClosed) {
		t.Errorf("closed bus: %v", err)
	}
	if _, err := bus.SubscribeFunc("**", func(context.Context, any) error { return nil }); !errors.Is(err, ErrBusClosed) {
		t.Errorf("subscribe on closed bus: %v", err)
	}
}

func mustSubscribe(t *testing.T, bus *Bus, pattern Topic, fn HandlerFunc, opts ...SubscriptionOption) *Subscription {
	t.Helper()
	sub, err := bus.SubscribeFunc(pattern, fn, opts...)
	if err != nil {
		t.Fatalf("SubscribeFunc(%q) error = %v", pattern, err)
	}
	return sub
}
