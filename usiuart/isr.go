// usiuart/isr.go

package usiuart

// Register images for the two half-frames of a byte r that is already in
// shift order (Reverse of the wire byte). Bit 7 repeats the level currently
// on the line so reloading the register never glitches it.
//
//	first:  1 S r7 r6 r5 r4 r3 r2   -> start, d0..d3
//	second: r4 r3 r2 r1 r0 1 1 1    -> d4..d7, stop
const holdHigh = 0x80

func firstHalf(r byte) byte  { return r>>2 | holdHigh }
func secondHalf(r byte) byte { return r<<3 | stopPattern }

// InitReceiver arms the line for listening: the shift peripheral is stopped,
// the pins are released to the pull-up and the start-bit edge interrupt is
// cleared and enabled. It is idempotent and is also what every completed
// receive or drained transmission returns to.
func (d *Driver) InitReceiver() {
	d.hw.StopShift()
	d.hw.ListenLine()
	d.hw.ArmEdge()
}

// initTransmitter switches the line to output. The register starts with an
// idle pattern and txData is idle too, so the first two half-frames keep
// the line high for one character time before the first queued byte.
// Called with interrupts disabled.
func (d *Driver) initTransmitter() {
	d.hw.DisarmEdge()
	d.hw.StartTimer(0)
	d.hw.StartShift()
	d.hw.LoadShift(idlePattern)
	d.hw.SeedCounter(d.timing.TxCounterSeed)
	d.hw.DriveLine()

	d.txData = idlePattern
	d.status.ongoingTx = true
	d.status.ongoingTxFromBuf = true
}

// HandleStartBit runs on the falling edge of a start bit. It plants the
// timer so the first overflow lands in the middle of the first sampled bit
// and opens a receive window of RxCounterSeed..16 shift clocks.
func (d *Driver) HandleStartBit() {
	d.hw.DisarmEdge()
	d.hw.StartTimer(d.timing.StartSeed())
	d.hw.SeedCounter(d.timing.RxCounterSeed)
	d.hw.StartShift()

	d.status.ongoingRx = true
	d.dbgStartBit()
}

// HandleShiftComplete runs when the shift counter wraps.
//
// While transmitting it alternates between the second half of txData and
// the first half of the next queued byte; an empty TX ring at a byte
// boundary is the only way back to listening. Otherwise it closes the
// receive window, stores the sampled byte and starts the transmitter if
// anything was queued meanwhile.
func (d *Driver) HandleShiftComplete() {
	if d.status.ongoingTxFromBuf {
		if d.status.ongoingTx {
			d.status.ongoingTx = false
			d.hw.SeedCounter(d.timing.TxCounterSeed)
			d.hw.LoadShift(secondHalf(d.txData))
			return
		}

		if r, ok := d.tx.tryGet(); ok {
			d.txData = r
			d.status.ongoingTx = true
			d.hw.SeedCounter(d.timing.TxCounterSeed)
			d.hw.LoadShift(firstHalf(r))
			d.dbgTxByte()
			d.txNotify.notify()
			return
		}

		// Drained.
		d.status.ongoingTxFromBuf = false
		d.InitReceiver()
		d.dbgTxDrained()
		d.txNotify.notify()
		return
	}

	d.status.ongoingRx = false
	raw := d.hw.ShiftData()
	if d.rx.tryPut(raw) {
		d.dbgRxByte(d.rx.Used())
	} else {
		d.status.rxBufOvf = true
		d.dbgRxDrop()
	}
	// Bytes queued while the window was open go out now.
	if d.tx.Empty() {
		d.InitReceiver()
	} else {
		d.initTransmitter()
	}

	d.rxNotify.notify()
	d.lineNotify.notify()
}

// HandleTimerOverflow reseeds the bit timer. Adding to the counter instead
// of writing it keeps the ticks that elapsed since the overflow, so
// interrupt latency does not accumulate into the bit period.
func (d *Driver) HandleTimerOverflow() {
	d.hw.AdvanceTimer(d.timing.TimerSeed)
	d.dbgTimer()
}
