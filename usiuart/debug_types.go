//go:build usiuartdebug

package usiuart

import "sync/atomic"

// Stats holds counters since the last reset.
type Stats struct {
	// Handler entries
	StartBits      uint32 // start-bit edges that opened a receive window
	TimerOverflows uint32 // bit-timer reseeds

	// Receive
	RxBytes   uint32 // bytes stored in the RX ring
	RxDrops   uint32 // bytes dropped on a full RX ring
	RxMaxUsed uint32 // high-water mark of RX ring occupancy

	// Transmit
	TxBytes  uint32 // bytes moved from the TX ring onto the line
	TxDrains uint32 // returns from transmit to listening
}

func (d *Driver) DebugReset() {
	state := d.hw.DisableInterrupts()
	d.stats = Stats{}
	d.hw.RestoreInterrupts(state)
}

func (d *Driver) DebugStats() Stats {
	return Stats{
		StartBits:      atomic.LoadUint32(&d.stats.StartBits),
		TimerOverflows: atomic.LoadUint32(&d.stats.TimerOverflows),

		RxBytes:   atomic.LoadUint32(&d.stats.RxBytes),
		RxDrops:   atomic.LoadUint32(&d.stats.RxDrops),
		RxMaxUsed: atomic.LoadUint32(&d.stats.RxMaxUsed),

		TxBytes:  atomic.LoadUint32(&d.stats.TxBytes),
		TxDrains: atomic.LoadUint32(&d.stats.TxDrains),
	}
}
