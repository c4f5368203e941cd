//go:build usiuartdebug

package usiuart

import "sync/atomic"

func (d *Driver) dbgStartBit() { atomic.AddUint32(&d.stats.StartBits, 1) }
func (d *Driver) dbgTimer()    { atomic.AddUint32(&d.stats.TimerOverflows, 1) }
func (d *Driver) dbgTxByte()   { atomic.AddUint32(&d.stats.TxBytes, 1) }
func (d *Driver) dbgTxDrained() {
	atomic.AddUint32(&d.stats.TxDrains, 1)
}
func (d *Driver) dbgRxDrop() { atomic.AddUint32(&d.stats.RxDrops, 1) }

// Called per stored byte with the ring occupancy after the store.
func (d *Driver) dbgRxByte(used int) {
	atomic.AddUint32(&d.stats.RxBytes, 1)
	// track high-water mark
	for {
		max := atomic.LoadUint32(&d.stats.RxMaxUsed)
		if uint32(used) <= max {
			break
		}
		if atomic.CompareAndSwapUint32(&d.stats.RxMaxUsed, max, uint32(used)) {
			break
		}
	}
}
