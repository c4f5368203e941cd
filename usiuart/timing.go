// usiuart/timing.go

package usiuart

import "errors"

// Shift peripheral geometry and 8N1 framing.
const (
	counterMax = 16 // 4-bit shift counter wraps after 16 clocks
	dataBits   = 8
	startBits  = 1
	halfFrame  = 5 // start + d0..d3, then d4..d7 + stop

	// stopPattern fills the register below the second half-frame's data bits:
	// the stop bit and trailing idle level.
	stopPattern = 0x07
	// idlePattern keeps the line high for a whole shift group.
	idlePattern = 0xFF
)

// Derived timing, evaluated by the compiler from config.go.
const (
	CyclesPerBit = SystemClock / (BaudRate * TimerPrescaler)
	TimerSeed    = (256 - CyclesPerBit) & 0xFF

	// StartupDelay compensates for the cycles spent entering the start-bit
	// interrupt, so the first sample lands mid-bit.
	StartupDelay = 0x11 / TimerPrescaler

	// sampleStartBit is 1 when 1.5 bit periods do not fit the 8-bit timer.
	// The first sample is then taken half a bit in (on the start bit itself)
	// and the receive window is one bit longer.
	sampleStartBit = (CyclesPerBit*3/2 - 1) / 256

	InitialTimerSeed = 256 - CyclesPerBit*3/2 + sampleStartBit*CyclesPerBit
	RxCounterSeed    = counterMax - dataBits - sampleStartBit*startBits
	TxCounterSeed    = counterMax - halfFrame
)

// A bit period outside 1..256 timer ticks cannot be produced by an 8-bit timer.
var _ = [1]struct{}{}[(CyclesPerBit-1)>>8]

var errTimingRange = errors.New("usiuart: bit period does not fit the 8-bit timer")

// Timing holds the constants the handlers load into the timer and the shift
// counter. DefaultTiming is the compile-time set; DeriveTiming computes the
// same values for other clocks, used by the simulator and tests.
type Timing struct {
	CyclesPerBit     uint16 // timer ticks per bit
	TimerSeed        uint8  // added to the timer on every overflow
	StartupDelay     uint8
	InitialTimerSeed uint8
	RxCounterSeed    uint8
	TxCounterSeed    uint8
	SampleStartBit   bool // receive window also samples the start bit
}

// DefaultTiming is built entirely from constants.
var DefaultTiming = Timing{
	CyclesPerBit:     CyclesPerBit,
	TimerSeed:        TimerSeed,
	StartupDelay:     StartupDelay,
	InitialTimerSeed: InitialTimerSeed,
	RxCounterSeed:    RxCounterSeed,
	TxCounterSeed:    TxCounterSeed,
	SampleStartBit:   sampleStartBit == 1,
}

// StartSeed is the timer value planted by the start-bit handler.
func (t Timing) StartSeed() uint8 { return t.StartupDelay + t.InitialTimerSeed }

// BaudRate returns the rate actually produced after integer division.
func (t Timing) BaudRate(clock, prescaler uint32) uint32 {
	if t.CyclesPerBit == 0 || prescaler == 0 {
		return 0
	}
	return clock / (prescaler * uint32(t.CyclesPerBit))
}

// DeriveTiming evaluates the timing formulas for an arbitrary clock, baud
// rate and timer prescaler.
func DeriveTiming(clock, baud, prescaler uint32) (Timing, error) {
	if baud == 0 || prescaler == 0 {
		return Timing{}, errTimingRange
	}
	cpb := clock / (baud * prescaler)
	if cpb == 0 || cpb > 256 {
		return Timing{}, errTimingRange
	}
	var t Timing
	t.CyclesPerBit = uint16(cpb)
	t.TimerSeed = uint8(256 - cpb)
	t.StartupDelay = uint8(0x11 / prescaler)
	t.TxCounterSeed = counterMax - halfFrame
	if cpb*3/2 > 256 {
		t.SampleStartBit = true
		t.InitialTimerSeed = uint8(256 - cpb/2)
		t.RxCounterSeed = counterMax - (startBits + dataBits)
	} else {
		t.InitialTimerSeed = uint8(256 - cpb*3/2)
		t.RxCounterSeed = counterMax - dataBits
	}
	return t, nil
}
