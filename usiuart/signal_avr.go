//go:build avr

package usiuart

import "context"

// On AVR the blocking calls busy-wait: wait returns at once and the caller
// re-reads the shared index with interrupts enabled.
type signal struct{}

func newSignal() signal { return signal{} }

func (signal) notify() {}

func (signal) wait() {}

func (signal) waitContext(ctx context.Context) error { return ctx.Err() }

// ch returns a nil channel; selecting on it never fires.
func (signal) ch() <-chan struct{} { return nil }
