package eventstream

import "errors"

// ErrNilComponentEvent indicates a nil component event payload was provided
// to a publisher.
var ErrNilComponentEvent = errors.New("nil component event")
