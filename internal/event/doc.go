// Package event provides the lifecycle event bus for indentscope.
//
// The host publishes window and buffer lifecycle events; the indent engine
// and scope controller subscribe to drop their per-window and per-buffer
// state. Delivery is synchronous, in the publisher's goroutine, ordered by
// subscription priority.
//
// # Event Topics
//
// Events use hierarchical topics with dot notation:
//
//	window.closed      - A window was closed
//	window.focused     - Focus moved to another window
//	buffer.deleted     - A buffer was deleted
//	config.reloaded    - Settings were reloaded from disk
//
// # Wildcard Patterns
//
// Subscriptions support wildcard patterns:
//
//	window.*     - Matches window.closed, window.focused
//	**           - Matches every topic
//
// # Usage
//
//	bus := event.NewBus()
//	sub, err := event.SubscribeTyped(bus, event.TopicWindowClosed,
//	    func(ctx context.Context, e event.Event[event.WindowClosed]) error {
//	        engine.ForgetWindow(e.Payload.Win)
//	        return nil
//	    })
//
//	bus.Publish(ctx, event.NewEvent(event.TopicWindowClosed, event.WindowClosed{Win: 3}, "editor"))
package event
