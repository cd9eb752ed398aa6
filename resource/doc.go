// Package resource tracks externally allocated objects so that each one is
// released exactly once, whichever path an operation exits through.
//
// A Scope is created per operation and closed with defer:
//
//	scope := resource.NewScope()
//	defer func() { err = errors.Join(err, scope.Close(ctx)) }()
//
//	buf, err := lib.NewBuffer(ctx, data)
//	if err != nil {
//	    return err
//	}
//	h, err := scope.Track(ctx, "buffer", buf)
//	if err != nil {
//	    return err
//	}
//	...
//	// Early release once the data has been consumed.
//	if err := scope.Release(ctx, h); err != nil {
//	    return err
//	}
//
// # Observers
//
// Observers receive EventAcquired and EventReleased notifications, which is
// how callers log or count decoder allocations.
package resource
