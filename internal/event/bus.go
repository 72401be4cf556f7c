package event

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/indentscope/internal/logging"
)

// Priority determines handler execution order.
// Lower values execute first.
type Priority int

const (
	// PriorityCritical is for state owners that must forget before others redraw.
	PriorityCritical Priority = 0

	// PriorityNormal is the default priority.
	PriorityNormal Priority = 200

	// PriorityLow is for logging handlers that run last.
	PriorityLow Priority = 300
)

// Handler is the interface for event handlers.
type Handler interface {
	// Handle processes an event.
	// The event parameter is type-erased; handlers should type-assert.
	Handle(ctx context.Context, event any) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, event any) error

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, event any) error {
	return f(ctx, event)
}

// SubscriptionOption configures a subscription.
type SubscriptionOption func(*Subscription)

// WithPriority sets the subscription priority.
func WithPriority(p Priority) SubscriptionOption {
	return func(s *Subscription) {
		s.priority = p
	}
}

// WithOnce cancels the subscription after its first successful delivery.
func WithOnce() SubscriptionOption {
	return func(s *Subscription) {
		s.once = true
	}
}

// Subscription is a registered handler.
type Subscription struct {
	id       string
	pattern  Topic
	handler  Handler
	priority Priority
	once     bool
	seq      uint64
	bus      *Bus
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string { return s.id }

// Topic returns the subscribed topic pattern.
func (s *Subscription) Topic() Topic { return s.pattern }

// Cancel removes the subscription from its bus.
func (s *Subscription) Cancel() error {
	return s.bus.Unsubscribe(s)
}

// Stats counts bus activity.
type Stats struct {
	Published     uint64
	Delivered     uint64
	HandlerErrors uint64
	HandlerPanics uint64
	Subscriptions int
}

// Bus delivers events synchronously to matching subscriptions.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	seq    uint64
	closed bool
	logger *logging.Logger

	published     atomic.Uint64
	delivered     atomic.Uint64
	handlerErrors atomic.Uint64
	handlerPanics atomic.Uint64
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) BusOption {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBus creates a new event bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{
		subs:   make(map[string]*Subscription),
		logger: logging.Null,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.WithComponent("event")
	return b
}

// Subscribe registers handler for events whose topic matches pattern.
func (b *Bus) Subscribe(pattern Topic, handler Handler, opts ...SubscriptionOption) (*Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if !pattern.IsValid() {
		return nil, ErrInvalidTopic
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBusClosed
	}

	sub := &Subscription{
		id:       uuid.NewString(),
		pattern:  pattern,
		handler:  handler,
		priority: PriorityNormal,
		bus:      b,
	}
	for _, opt := range opts {
		opt(sub)
	}
	b.seq++
	sub.seq = b.seq
	b.subs[sub.id] = sub
	return sub, nil
}

// SubscribeFunc is a convenience method for subscribing with a function handler.
func (b *Bus) SubscribeFunc(pattern Topic, fn HandlerFunc, opts ...SubscriptionOption) (*Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, fn, opts...)
}

// SubscribeTyped subscribes fn to events with payload type T. Events of
// other payload types on a matching topic are skipped.
func SubscribeTyped[T any](b *Bus, pattern Topic, fn func(ctx context.Context, e Event[T]) error, opts ...SubscriptionOption) (*Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, HandlerFunc(func(ctx context.Context, event any) error {
		e, ok := event.(Event[T])
		if !ok {
			return nil
		}
		return fn(ctx, e)
	}), opts...)
}

// Unsubscribe removes a subscription.
func (b *Bus) Unsubscribe(sub *Subscription) error {
	if sub == nil {
		return ErrSubscriptionNotFound
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub.id]; !ok {
		return ErrSubscriptionNotFound
	}
	delete(b.subs, sub.id)
	return nil
}

// Publish delivers event to every matching subscription in priority order,
// then subscription order. Handler failures do not stop delivery; they are
// joined into the returned error.
func (b *Bus) Publish(ctx context.Context, event any) error {
	tp, ok := event.(TopicProvider)
	if !ok || tp.EventTopic() == "" {
		return ErrInvalidEvent
	}
	t := tp.EventTopic()

	subs, err := b.match(t)
	if err != nil {
		return err
	}
	b.published.Add(1)

	var errs []error
	for _, sub := range subs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := b.deliver(ctx, sub, t, event); err != nil {
			b.logger.Warn("%v", err)
			errs = append(errs, err)
			continue
		}
		b.delivered.Add(1)
		if sub.once {
			_ = b.Unsubscribe(sub)
		}
	}
	return errors.Join(errs...)
}

func (b *Bus) match(t Topic) ([]*Subscription, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	var subs []*Subscription
	for _, sub := range b.subs {
		if t.Matches(sub.pattern) {
			subs = append(subs, sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].priority != subs[j].priority {
			return subs[i].priority < subs[j].priority
		}
		return subs[i].seq < subs[j].seq
	})
	return subs, nil
}

func (b *Bus) deliver(ctx context.Context, sub *Subscription, t Topic, event any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
			err = &PanicError{SubscriptionID: sub.id, Topic: t, Value: r}
		}
	}()
	if herr := sub.handler.Handle(ctx, event); herr != nil {
		b.handlerErrors.Add(1)
		return &HandlerError{SubscriptionID: sub.id, Topic: t, Err: herr}
	}
	return nil
}

// Close drops all subscriptions. Later calls fail with ErrBusClosed.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = make(map[string]*Subscription)
}

// Stats returns current bus statistics.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	n := len(b.subs)
	b.mu.RUnlock()
	return Stats{
		Published:     b.published.Load(),
		Delivered:     b.delivered.Load(),
		HandlerErrors: b.handlerErrors.Load(),
		HandlerPanics: b.handlerPanics.Load(),
		Subscriptions: n,
	}
}
