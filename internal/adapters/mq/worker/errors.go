package worker

import "errors"

// ErrPanic wraps a recovered panic from a pipeline stage.
var ErrPanic = errors.New("worker: recovered panic")
