// sim/link.go

package sim

import (
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/jangala-dev/tinygo-usiuart/usiuart"
)

// Link is two chips wired back to back on one bench, each running a
// driver that is flushed and listening.
type Link struct {
	Bench  *Bench
	A, B   *Chip
	DA, DB *usiuart.Driver

	timing usiuart.Timing
}

// NewLink builds a link whose drivers use t and whose chips take latency
// ticks to enter an interrupt handler.
func NewLink(t usiuart.Timing, latency int) (*Link, error) {
	a, b := NewChip("A"), NewChip("B")
	a.Latency, b.Latency = latency, latency

	bench := NewBench(a, b)
	if err := bench.Connect(a, b); err != nil {
		return nil, err
	}

	l := &Link{
		Bench:  bench,
		A:      a,
		B:      b,
		DA:     usiuart.NewWithTiming(a, t),
		DB:     usiuart.NewWithTiming(b, t),
		timing: t,
	}
	for _, p := range []struct {
		c *Chip
		d *usiuart.Driver
	}{{a, l.DA}, {b, l.DB}} {
		p.c.Attach(p.d)
		p.d.FlushBuffers()
		p.d.InitReceiver()
	}
	return l, nil
}

// TicksPerBit returns the bit period in bench ticks.
func (l *Link) TicksPerBit() int { return int(l.timing.CyclesPerBit) }

// FrameTicks returns the ticks needed for one 8N1 character.
func (l *Link) FrameTicks() int { return 10 * l.TicksPerBit() }

// TickPeriod returns the wall-clock length of a tick for a given CPU clock
// and timer prescale, for pacing Bench.Run.
func TickPeriod(clock, prescaler uint32) time.Duration {
	if clock == 0 {
		return 0
	}
	return time.Duration(uint64(prescaler) * uint64(time.Second) / uint64(clock))
}

// Transfer sends data from one driver to the other by stepping the bench
// from the calling goroutine, and returns what the receiver collected.
// Chunks never exceed the free space of either ring, so nothing blocks and
// nothing is dropped.
func (l *Link) Transfer(from, to *usiuart.Driver, data []byte) ([]byte, error) {
	limit := (TxWindow + 2) * l.FrameTicks() * 4
	got := make([]byte, 0, len(data))
	buf := make([]byte, usiuart.RxBufferSize)

	for sent := 0; sent < len(data); {
		if err := l.Bench.RunUntil(func() bool { return !from.Receiving() }, limit); err != nil {
			return got, fmt.Errorf("sender busy receiving: %w", err)
		}

		n := len(data) - sent
		if free := from.TxFree(); n > free {
			n = free
		}
		if free := usiuart.RxBufferSize - 1 - to.Buffered(); n > free {
			n = free
		}
		if n == 0 {
			return got, fmt.Errorf("no room to send at offset %d: %w", sent, ErrTimeout)
		}
		for _, c := range data[sent : sent+n] {
			from.SendByte(c)
		}
		sent += n

		if err := l.Bench.RunUntil(func() bool { return !from.Transmitting() }, limit); err != nil {
			return got, fmt.Errorf("transmitter did not drain: %w", err)
		}
		// Let the receiver finish sampling the last stop bit.
		l.Bench.RunFor(l.TicksPerBit())

		k := to.TryRead(buf)
		got = append(got, buf[:k]...)
		glog.V(2).Infof("transfer: %d/%d sent, %d received", sent, len(data), len(got))
	}
	return got, nil
}

// TxWindow is the most bytes a single Transfer chunk can carry.
const TxWindow = usiuart.TxBufferSize - 1
