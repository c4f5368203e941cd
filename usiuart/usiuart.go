// usiuart/usiuart.go

// Package usiuart emulates an 8N1 UART on parts without one, using a
// synchronous shift peripheral clocked by a free-running 8-bit timer and a
// pin-change interrupt that detects start bits.
//
// A Driver owns one serial line. The line listens until a byte is queued
// with SendByte, transmits until its TX ring drains and then listens again;
// transmission is never interrupted by reception. ReceiveByte and SendByte
// block without a timeout, the same way the ring buffer indices do on the
// device; the Context variants add cancellation on top.
package usiuart

import (
	"context"
	"errors"
)

// ErrBufferEmpty is returned by the non-blocking reads when the RX ring is empty.
var ErrBufferEmpty = errors.New("usiuart: RX buffer empty")

// Driver is one emulated serial line. All shared state lives here; the
// platform binds its three interrupts to this instance.
type Driver struct {
	hw     Platform
	timing Timing

	rx *ringBuffer // producer: HandleShiftComplete; consumer: foreground
	tx *ringBuffer // producer: foreground; consumer: HandleShiftComplete

	status statusFlags
	txData byte // shift-ordered byte whose second half is still to go

	rxNotify   signal // a byte was stored (or dropped)
	txNotify   signal // a TX slot was freed or the ring drained
	lineNotify signal // a receive window closed

	stats Stats
}

// New returns a driver using the compile-time timing constants.
func New(hw Platform) *Driver { return NewWithTiming(hw, DefaultTiming) }

// NewWithTiming returns a driver using t instead of DefaultTiming.
func NewWithTiming(hw Platform, t Timing) *Driver {
	return &Driver{
		hw:         hw,
		timing:     t,
		rx:         newRingBuffer(RxBufferSize),
		tx:         newRingBuffer(TxBufferSize),
		rxNotify:   newSignal(),
		txNotify:   newSignal(),
		lineNotify: newSignal(),
	}
}

// Timing returns the constants the handlers use.
func (d *Driver) Timing() Timing { return d.timing }

// FlushBuffers empties both rings.
func (d *Driver) FlushBuffers() {
	state := d.hw.DisableInterrupts()
	d.rx.Clear()
	d.tx.Clear()
	d.hw.RestoreInterrupts(state)
}

// DataAvailable reports whether ReceiveByte would return without waiting.
func (d *Driver) DataAvailable() bool { return !d.rx.Empty() }

// ReceiveByte removes the oldest received byte. It suspends the caller
// until the receive handler advances the RX head; there is no timeout.
func (d *Driver) ReceiveByte() byte {
	return Reverse(d.rx.get(d.rxNotify.wait))
}

// SendByte queues b for transmission, suspending the caller while the TX
// ring is full, and starts the transmitter if the line is listening. A
// receive window that is already open is allowed to finish first.
func (d *Driver) SendByte(b byte) {
	d.tx.put(Reverse(b), d.waitTxSpace)
	d.kick()
}

func (d *Driver) waitTxSpace() {
	d.kick()
	d.txNotify.wait()
}

// kick starts the transmitter unless it is already running.
func (d *Driver) kick() {
	_ = d.kickContext(context.Background())
}

func (d *Driver) kickContext(ctx context.Context) error {
	for {
		state := d.hw.DisableInterrupts()
		switch {
		case d.status.ongoingTxFromBuf:
			d.hw.RestoreInterrupts(state)
			return nil
		case !d.status.ongoingRx:
			d.initTransmitter()
			d.hw.RestoreInterrupts(state)
			return nil
		}
		d.hw.RestoreInterrupts(state)

		// Wait with interrupts enabled for the receive window to close.
		if err := d.lineNotify.waitContext(ctx); err != nil {
			return err
		}
	}
}

// Overflowed reports the sticky RX overflow flag.
func (d *Driver) Overflowed() bool {
	state := d.hw.DisableInterrupts()
	ovf := d.status.rxBufOvf
	d.hw.RestoreInterrupts(state)
	return ovf
}

// ClearOverflow clears the RX overflow flag and returns its previous value.
// Nothing else clears it.
func (d *Driver) ClearOverflow() bool {
	state := d.hw.DisableInterrupts()
	ovf := d.status.rxBufOvf
	d.status.rxBufOvf = false
	d.hw.RestoreInterrupts(state)
	return ovf
}

// Transmitting reports whether the line is currently driven by the transmitter.
func (d *Driver) Transmitting() bool {
	state := d.hw.DisableInterrupts()
	tx := d.status.ongoingTxFromBuf
	d.hw.RestoreInterrupts(state)
	return tx
}

// Receiving reports whether a receive window is open.
func (d *Driver) Receiving() bool {
	state := d.hw.DisableInterrupts()
	rx := d.status.ongoingRx
	d.hw.RestoreInterrupts(state)
	return rx
}
