// usiuart/config.go

package usiuart

// Build-time line configuration. Change these and rebuild; nothing here is
// read at run time.
const (
	SystemClock    = 8000000 // CPU clock in Hz
	BaudRate       = 9600    // line rate in bit/s
	TimerPrescaler = 8       // Timer0 clock divider

	RxBufferSize = 4 // must be a power of two; usable capacity is RxBufferSize-1
	TxBufferSize = 4 // must be a power of two; usable capacity is TxBufferSize-1
)

// Buffer sizes that are not a power of two between 2 and 128 index past the
// end of these arrays (or divide by zero), which the compiler rejects.
var (
	_ = [1]struct{}{}[RxBufferSize&(RxBufferSize-1)]
	_ = [1]struct{}{}[TxBufferSize&(TxBufferSize-1)]
	_ = [1]struct{}{}[2/RxBufferSize>>1]
	_ = [1]struct{}{}[2/TxBufferSize>>1]
	_ = [1]struct{}{}[RxBufferSize>>8]
	_ = [1]struct{}{}[TxBufferSize>>8]
)

// timer0ClockSelect is the TCCR0B CS0[2:0] value for TimerPrescaler. Each
// term is 1 only when the prescaler equals that divider exactly.
const timer0ClockSelect = 1*(TimerPrescaler/1)*(1/TimerPrescaler) +
	2*(TimerPrescaler/8)*(8/TimerPrescaler) +
	3*(TimerPrescaler/64)*(64/TimerPrescaler) +
	4*(TimerPrescaler/256)*(256/TimerPrescaler) +
	5*(TimerPrescaler/1024)*(1024/TimerPrescaler)

// Timer0 divides by 1, 8, 64, 256 or 1024 only.
var _ = [5]struct{}{}[timer0ClockSelect-1]
