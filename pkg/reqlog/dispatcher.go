package reqlog

import (
	"context"
	"sync"
)

// dispatcher runs exactly one of two callbacks per request: the finish
// callback when the handler chain returns, or the close callback when the
// request context ends first.
type dispatcher struct {
	once sync.Once
	stop func() bool
}

// arm subscribes onClose to ctx and returns immediately. onClose runs on its
// own goroutine.
func arm(ctx context.Context, onClose func()) *dispatcher {
	d := &dispatcher{}
	d.stop = context.AfterFunc(ctx, func() {
		d.once.Do(onClose)
	})
	return d
}

// finish detaches the close subscription and runs onFinish, unless close
// already fired. If close is still running, finish waits for it.
func (d *dispatcher) finish(onFinish func()) {
	d.stop()
	d.once.Do(onFinish)
}
