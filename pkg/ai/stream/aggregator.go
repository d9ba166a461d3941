// Package stream folds an incremental vendor response into one growing text
// while giving the caller live partial updates. One aggregator serves exactly
// one stream; a new call builds a new aggregator, so no locking is needed.
package stream

import "strings"

// Callbacks are the caller-supplied progress hooks. Any of them may be nil.
//
// OnUpdate receives the FULL accumulated text after every increment, not the
// delta — callers depend on getting the whole string each time.
// OnComplete and OnError are terminal and mutually exclusive: exactly one of
// them fires, exactly once, and nothing fires afterward.
type Callbacks struct {
	OnUpdate   func(full string)
	OnComplete func()
	OnError    func(err error)
}

// Aggregator accumulates streamed text increments and drives Callbacks with
// the exactly-once completion/error contract.
type Aggregator struct {
	cb   Callbacks
	full strings.Builder
	done bool
}

// New creates an aggregator for a single stream.
func New(cb Callbacks) *Aggregator {
	return &Aggregator{cb: cb}
}

// Append adds one text increment and reports the full accumulated text to
// OnUpdate. Appends after the terminal event are ignored.
func (a *Aggregator) Append(delta string) {
	if a.done || delta == "" {
		return
	}

	a.full.WriteString(delta)
	if a.cb.OnUpdate != nil {
		a.cb.OnUpdate(a.full.String())
	}
}

// Complete marks the stream as successfully finished. Only the first
// terminal event has any effect.
func (a *Aggregator) Complete() {
	if a.done {
		return
	}
	a.done = true

	if a.cb.OnComplete != nil {
		a.cb.OnComplete()
	}
}

// Fail marks the stream as failed. Only the first terminal event has any
// effect; no callbacks fire after it.
func (a *Aggregator) Fail(err error) {
	if a.done {
		return
	}
	a.done = true

	if a.cb.OnError != nil {
		a.cb.OnError(err)
	}
}

// ChannelClosed handles the underlying channel closing without an explicit
// final marker. Accumulated text makes this an implicit success — an abrupt
// disconnect is not distinguished from graceful completion once partial
// content exists. Returns true when the close was treated as success.
func (a *Aggregator) ChannelClosed() bool {
	if a.done {
		return true
	}

	if a.full.Len() > 0 {
		a.Complete()
		return true
	}

	return false
}

// Content returns the text accumulated so far.
func (a *Aggregator) Content() string {
	return a.full.String()
}

// Len returns the number of bytes accumulated so far.
func (a *Aggregator) Len() int {
	return a.full.Len()
}

// Done reports whether a terminal event has fired.
func (a *Aggregator) Done() bool {
	return a.done
}
