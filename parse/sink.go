package parse

import "sync"

// Sink receives recoverable errors.
type Sink interface {
	Report(err *Error)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(*Error)

func (f SinkFunc) Report(err *Error) {
	f(err)
}

// Collector is a Sink that keeps every error in arrival order. It is safe for
// concurrent use.
type Collector struct {
	mu   sync.Mutex
	errs []*Error
}

func (c *Collector) Report(err *Error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}

// Errors returns a copy of the collected errors.
func (c *Collector) Errors() []*Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Error(nil), c.errs...)
}

func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.errs)
}
