//go:build !usiuartdebug

package usiuart

func (d *Driver) dbgStartBit()  {}
func (d *Driver) dbgTimer()     {}
func (d *Driver) dbgTxByte()    {}
func (d *Driver) dbgTxDrained() {}
func (d *Driver) dbgRxDrop()    {}
func (d *Driver) dbgRxByte(int) {}
