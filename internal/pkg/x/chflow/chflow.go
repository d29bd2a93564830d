// Package chflow provides context-aware helpers for sending to and
// receiving from Go channels, so channel operations always respect
// cancellation and deadlines.
package chflow

import "context"

// Receive waits for a value from ch or for the context to be canceled.
// The boolean result is false when the context ended first or the
// channel was closed.
func Receive[T any](ctx context.Context, ch <-chan T) (T, bool) {
	var data T
	select {
	case <-ctx.Done():
		return data, false
	case data, ok := <-ch:
		return data, ok
	}
}

// Send delivers data to ch unless the context is canceled first.
// It returns true when the value was sent.
func Send[T any](ctx context.Context, ch chan<- T, data T) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- data:
		return true
	}
}
