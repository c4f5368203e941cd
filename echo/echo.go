// Package echo is the demonstration application: every received byte is
// answered with a prompt followed by the byte itself.
package echo

import (
	"context"
	"runtime"
)

// Prompt is sent before each echoed byte.
const Prompt = "\nEcho: "

// Port is the part of a serial line the echo loop needs. *usiuart.Driver
// satisfies it.
type Port interface {
	DataAvailable() bool
	ReceiveByte() byte
	SendByte(b byte)
}

// Step answers one received byte if there is one, and reports whether it
// did. It blocks while the TX ring is full.
func Step(p Port) bool {
	if !p.DataAvailable() {
		return false
	}
	for i := 0; i < len(Prompt); i++ {
		p.SendByte(Prompt[i])
	}
	p.SendByte(p.ReceiveByte())
	return true
}

// Serve runs Step until ctx is done. Ports that can wait for data (such as
// *usiuart.Driver on a host) are waited on; others are polled.
func Serve(ctx context.Context, p Port) error {
	w, canWait := p.(interface {
		WaitReadable(ctx context.Context) error
	})
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if Step(p) {
			continue
		}
		if canWait {
			if err := w.WaitReadable(ctx); err != nil {
				return err
			}
			continue
		}
		runtime.Gosched()
	}
}
