// usiuart/stream.go

package usiuart

import "context"

// Readable returns a coalesced notification for RX readiness. The receive
// handler sends on it after every completed byte; callers must re-check
// state after waking. On AVR the channel is nil.
func (d *Driver) Readable() <-chan struct{} { return d.rxNotify.ch() }

// Buffered returns the number of bytes waiting in the RX ring.
func (d *Driver) Buffered() int { return d.rx.Used() }

// TxFree returns how many bytes SendByte can queue without waiting.
func (d *Driver) TxFree() int { return d.tx.Free() }

// ReadByte returns the oldest received byte without waiting, or
// ErrBufferEmpty.
func (d *Driver) ReadByte() (byte, error) {
	v, ok := d.rx.tryGet()
	if !ok {
		return 0, ErrBufferEmpty
	}
	return Reverse(v), nil
}

// TryRead copies up to len(p) buffered bytes and never blocks. A return of
// 0 means no data now.
func (d *Driver) TryRead(p []byte) int {
	n := 0
	for n < len(p) {
		b, err := d.ReadByte()
		if err != nil {
			break
		}
		p[n] = b
		n++
	}
	return n
}

// Read implements io.Reader. It blocks until at least one byte is
// available. It never returns io.EOF.
func (d *Driver) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	p[0] = d.ReceiveByte()
	return 1 + d.TryRead(p[1:]), nil
}

// WriteByte implements io.ByteWriter with SendByte semantics.
func (d *Driver) WriteByte(c byte) error {
	d.SendByte(c)
	return nil
}

// Write implements io.Writer. It blocks until every byte of p is queued; it
// does not wait for the line to drain, use Flush for that.
func (d *Driver) Write(p []byte) (int, error) {
	for _, b := range p {
		d.SendByte(b)
	}
	return len(p), nil
}

// TrySend queues as much of p as fits in the TX ring without waiting and
// returns how many bytes were queued. The transmitter is started unless a
// receive window is open, in which case the bytes go out as soon as it
// closes.
func (d *Driver) TrySend(p []byte) int {
	n := 0
	for n < len(p) && d.tx.tryPut(Reverse(p[n])) {
		n++
	}
	if n > 0 {
		state := d.hw.DisableInterrupts()
		if !d.status.ongoingTxFromBuf && !d.status.ongoingRx {
			d.initTransmitter()
		}
		d.hw.RestoreInterrupts(state)
	}
	return n
}

// Flush blocks until the TX ring has drained and the line is listening again.
func (d *Driver) Flush() error {
	return d.FlushContext(context.Background())
}

// FlushContext is Flush with cancellation.
func (d *Driver) FlushContext(ctx context.Context) error {
	for {
		if !d.Transmitting() {
			if d.tx.Empty() {
				return nil
			}
			// Queued but idle: start it, waiting out a receive window.
			if err := d.kickContext(ctx); err != nil {
				return err
			}
			continue
		}
		if err := d.txNotify.waitContext(ctx); err != nil {
			return err
		}
	}
}

// WaitReadable blocks until data is available or ctx is done.
func (d *Driver) WaitReadable(ctx context.Context) error {
	for d.rx.Empty() {
		if err := d.rxNotify.waitContext(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ReceiveByteContext blocks for a single byte or until ctx is done.
func (d *Driver) ReceiveByteContext(ctx context.Context) (byte, error) {
	for {
		if b, err := d.ReadByte(); err == nil {
			return b, nil
		}
		if err := d.rxNotify.waitContext(ctx); err != nil {
			return 0, err
		}
	}
}

// SendByteContext queues b like SendByte but gives up when ctx is done. A
// byte that was queued before ctx expired stays queued and goes out when
// the receive window it was waiting on closes.
func (d *Driver) SendByteContext(ctx context.Context, b byte) error {
	r := Reverse(b)
	for !d.tx.tryPut(r) {
		if err := d.kickContext(ctx); err != nil {
			return err
		}
		if err := d.txNotify.waitContext(ctx); err != nil {
			return err
		}
	}
	return d.kickContext(ctx)
}

// Writev writes the provided buffers in sequence with the same blocking
// behaviour as Write.
func (d *Driver) Writev(bufs ...[]byte) (int, error) {
	sent := 0
	for _, p := range bufs {
		n, err := d.Write(p)
		sent += n
		if err != nil {
			return sent, err
		}
	}
	return sent, nil
}
