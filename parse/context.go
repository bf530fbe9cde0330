package parse

import (
	"sync"

	"github.com/tliron/commonlog"
)

// Transform decorates an error raised inside a context scope.
type Transform func(*Error) *Error

// TieBreak picks between the errors of sibling alternatives of equal Level.
type TieBreak int

const (
	// PreferFirst keeps the error of the earliest alternative.
	PreferFirst TieBreak = iota
	// PreferLast keeps the error of the latest alternative.
	PreferLast
	// PreferFurthest keeps the error that starts furthest into the text,
	// the earliest alternative winning ties.
	PreferFurthest
)

func (tb TieBreak) pick(a, b *Error) *Error {
	if a.Level != b.Level {
		if b.Level > a.Level {
			return b
		}
		return a
	}
	switch tb {
	case PreferLast:
		return b
	case PreferFurthest:
		if b.Span.Start.Byte > a.Span.Start.Byte {
			return b
		}
	}
	return a
}

type frame struct {
	transform Transform
	parent    *frame
}

type sinkSlot struct {
	mu   sync.Mutex
	sink Sink
}

// Context carries the error transforms of the enclosing grammar scopes and
// the sink shared by the whole parse. It is a small value: Push returns a
// new Context sharing its parent chain, and every Context derived from the
// same NewContext call shares one sink slot.
type Context struct {
	frame  *frame
	slot   *sinkSlot
	locked bool
	tie    TieBreak
}

type ContextOption func(*Context)

// WithSink installs the sink that recoverable errors are routed to.
func WithSink(s Sink) ContextOption {
	return func(c *Context) {
		c.slot.sink = s
	}
}

// WithTieBreak selects how Choice reports sibling failures.
func WithTieBreak(tb TieBreak) ContextOption {
	return func(c *Context) {
		c.tie = tb
	}
}

func NewContext(opts ...ContextOption) Context {
	c := Context{slot: &sinkSlot{}}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Push returns a context whose innermost transform is t. A locked context
// is returned unchanged.
func (c Context) Push(t Transform) Context {
	if c.locked || t == nil {
		return c
	}
	c.frame = &frame{transform: t, parent: c.frame}
	return c
}

// Lock returns a copy of c on which Push has no effect.
func (c Context) Lock() Context {
	c.locked = true
	return c
}

func (c Context) Locked() bool {
	return c.locked
}

func (c Context) TieBreak() TieBreak {
	return c.tie
}

// Apply runs the transform chain over err, innermost first.
func (c Context) Apply(err *Error) *Error {
	for f := c.frame; f != nil; f = f.parent {
		err = f.transform(err)
	}
	return err
}

// Sink returns the configured sink, or nil.
func (c Context) Sink() Sink {
	if c.slot == nil {
		return nil
	}
	c.slot.mu.Lock()
	defer c.slot.mu.Unlock()
	return c.slot.sink
}

// SetSink replaces the sink for every context sharing c's slot and returns
// the previous one. It has no effect on the zero Context.
func (c Context) SetSink(s Sink) Sink {
	if c.slot == nil {
		return nil
	}
	c.slot.mu.Lock()
	defer c.slot.mu.Unlock()
	prev := c.slot.sink
	c.slot.sink = s
	return prev
}

func (c Context) HasSink() bool {
	return c.Sink() != nil
}

// Send delivers err, decorated by the whole transform chain, to the sink and
// returns nil. Without a sink it returns err untouched so that the caller
// can fail with it instead.
func (c Context) Send(err *Error) *Error {
	s := c.Sink()
	if s == nil {
		return err
	}
	decorated := c.Apply(err)
	commonlog.GetLogger("combi.parse").Debugf("recoverable error: %s", decorated)
	s.Report(decorated)
	return nil
}

// Label returns a transform pushing a context error with the given level,
// message and highlight label.
func Label(level Level, message, label string) Transform {
	return func(err *Error) *Error {
		return err.PushContext(&Error{Kind: KindCustom, Level: level, Message: message, Label: label})
	}
}
