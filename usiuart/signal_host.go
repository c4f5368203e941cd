//go:build !avr

package usiuart

import "context"

// signal is a coalesced wake-up: any number of notify calls before a wait
// collapse into one. Waiters must re-check their condition after waking.
type signal chan struct{}

func newSignal() signal { return make(signal, 1) }

// notify never blocks; it is called from interrupt handlers.
func (s signal) notify() {
	select {
	case s <- struct{}{}:
	default:
	}
}

func (s signal) wait() { <-s }

func (s signal) waitContext(ctx context.Context) error {
	select {
	case <-s:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s signal) ch() <-chan struct{} { return s }
