package app

import (
	"context"
	"sync"

	"github.com/dshills/indentscope/internal/event"
)

// subscriptionManager manages event bus subscriptions for the application.
type subscriptionManager struct {
	mu            sync.Mutex
	subscriptions []*event.Subscription
	app           *Application
}

// newSubscriptionManager creates a new subscription manager.
func newSubscriptionManager(app *Application) *subscriptionManager {
	return &subscriptionManager{app: app}
}

// setupSubscriptions registers all event subscriptions.
func (sm *subscriptionManager) setupSubscriptions() error {
	for _, subscribe := range []func() error{
		sm.subscribeTrace,
		sm.subscribeWindowClosed,
		sm.subscribeBufferDeleted,
		sm.subscribeWindowFocused,
		sm.subscribeCursorMoved,
		sm.subscribeBufferChanged,
		sm.subscribeConfigReloaded,
	} {
		if err := subscribe(); err != nil {
			sm.cancelAll()
			return err
		}
	}
	return nil
}

func (sm *subscriptionManager) add(sub *event.Subscription, err error) error {
	if err != nil {
		return err
	}
	sm.mu.Lock()
	sm.subscriptions = append(sm.subscriptions, sub)
	sm.mu.Unlock()
	return nil
}

// cancelAll removes every subscription.
func (sm *subscriptionManager) cancelAll() {
	sm.mu.Lock()
	subs := sm.subscriptions
	sm.subscriptions = nil
	sm.mu.Unlock()
	for _, sub := range subs {
		_ = sub.Cancel()
	}
}

// count returns the number of active subscriptions.
func (sm *subscriptionManager) count() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.subscriptions)
}

// Every event -> count it by topic and trace it.
func (sm *subscriptionManager) subscribeTrace() error {
	app := sm.app
	return sm.add(app.bus.SubscribeFunc(event.TopicAll,
		func(_ context.Context, ev any) error {
			tp, ok := ev.(event.TopicProvider)
			if !ok {
				return nil
			}
			app.metrics.RecordEvent(tp.EventTopic())
			app.logger.Debug("event %s", tp.EventTopic())
			return nil
		}, event.WithPriority(event.PriorityLow)))
}

// Window closed -> drop per-window state everywhere.
func (sm *subscriptionManager) subscribeWindowClosed() error {
	app := sm.app
	return sm.add(event.SubscribeTyped(app.bus, event.TopicWindowClosed,
		func(_ context.Context, e event.Event[event.WindowClosed]) error {
			win := e.Payload.Win
			app.engine.ForgetWindow(win)
			app.ctrl.Forget(win)
			app.scopes.Forget(win)
			app.editor.Decorations().Clear(win)
			app.layout()
			return nil
		}, event.WithPriority(event.PriorityCritical)))
}

// Buffer deleted -> drop caches and scopes built for it.
func (sm *subscriptionManager) subscribeBufferDeleted() error {
	app := sm.app
	return sm.add(event.SubscribeTyped(app.bus, event.TopicBufferDeleted,
		func(_ context.Context, e event.Event[event.BufferDeleted]) error {
			app.engine.ForgetBuffer(e.Payload.Buf)
			app.ctrl.ForgetBuffer(e.Payload.Buf)
			return nil
		}, event.WithPriority(event.PriorityCritical)))
}

// Focus change -> engine focus and the scope of the new window.
func (sm *subscriptionManager) subscribeWindowFocused() error {
	app := sm.app
	return sm.add(event.SubscribeTyped(app.bus, event.TopicWindowFocused,
		func(_ context.Context, e event.Event[event.WindowFocused]) error {
			app.engine.SetFocus(e.Payload.Win)
			app.scopes.Update(e.Payload.Win)
			app.requestFrame()
			return nil
		}))
}

// Cursor moved -> recompute the scope of the window.
func (sm *subscriptionManager) subscribeCursorMoved() error {
	app := sm.app
	return sm.add(event.SubscribeTyped(app.bus, event.TopicCursorMoved,
		func(_ context.Context, e event.Event[event.CursorMoved]) error {
			app.scopes.Update(e.Payload.Win)
			return nil
		}))
}

// Buffer changed -> recompute the scope of every window showing it.
func (sm *subscriptionManager) subscribeBufferChanged() error {
	app := sm.app
	return sm.add(event.SubscribeTyped(app.bus, event.TopicBufferChanged,
		func(_ context.Context, e event.Event[event.BufferChanged]) error {
			for _, w := range app.editor.Windows() {
				if w.Buffer().ID() == e.Payload.Buf {
					app.scopes.Update(w.ID())
				}
			}
			app.requestFrame()
			return nil
		}))
}

// Config reloaded -> report the outcome on the status line.
func (sm *subscriptionManager) subscribeConfigReloaded() error {
	app := sm.app
	return sm.add(event.SubscribeTyped(app.bus, event.TopicConfigReloaded,
		func(_ context.Context, e event.Event[event.ConfigReloaded]) error {
			if e.Payload.Err != nil {
				app.setStatus("config: " + e.Payload.Err.Error())
			} else {
				app.setStatus("reloaded " + e.Payload.Path)
			}
			return nil
		}, event.WithPriority(event.PriorityLow)))
}
