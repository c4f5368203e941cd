// usiuart/status.go

package usiuart

// statusFlags tracks which phase of receive or transmit is active. Handlers
// update the flags freely; foreground code touches them only between
// DisableInterrupts and RestoreInterrupts.
type statusFlags struct {
	ongoingTxFromBuf bool // a multi-phase transmission is underway
	ongoingTx        bool // the first half-frame of txData is on the wire
	ongoingRx        bool // a receive window is open
	rxBufOvf         bool // sticky: a received byte was dropped
}
