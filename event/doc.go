/*
Package event provides the synchronous lifecycle event bus used by models.

Handlers run in registration order on the emitting goroutine. The first handler
that returns an error stops the emit, which lets "before" events veto an
operation:

	bus := event.New[*Order]()
	l := bus.On(event.Saving, func(ctx context.Context, o *Order) error {
	    if o.Total < 0 {
	        return errors.New("negative total")
	    }
	    return nil
	})
	defer bus.Off(event.Saving, l)

	err := bus.Emit(ctx, event.Saving, order)

Go functions are not comparable, so On returns a *Listener that identifies the
registration for Off. Once listeners are removed before they are invoked.
*/
package event
