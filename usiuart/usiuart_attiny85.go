// usiuart/usiuart_attiny85.go

//go:build attiny85

package usiuart

import (
	"device/avr"
	"runtime/interrupt"
)

// Pin and register bit positions from the ATtiny25/45/85 datasheet.
const (
	pinDI = 0 // PB0, receive
	pinDO = 1 // PB1, transmit

	usiOIE = 1 << 6 // USICR: counter overflow interrupt enable
	usiWM0 = 1 << 4 // USICR: three-wire mode
	usiCS0 = 1 << 2 // USICR: clock from Timer0 compare match

	usiFlags = 0xF0 // USISR: writing ones clears all four flags

	psr0  = 1 << 0 // GTCCR: reset Timer0 prescaler
	tov0  = 1 << 1 // TIFR
	toie0 = 1 << 1 // TIMSK

	pcif   = 1 << 5 // GIFR
	pcie   = 1 << 5 // GIMSK
	pcint0 = 1 << 0 // PCMSK
)

// attiny85 drives the USI, Timer0 and the pin-change interrupt on PB0/PB1.
type attiny85 struct{}

func (attiny85) ShiftData() byte     { return avr.USIDR.Get() }
func (attiny85) LoadShift(v byte)    { avr.USIDR.Set(v) }
func (attiny85) StopShift()          { avr.USICR.Set(0) }
func (attiny85) StartShift()         { avr.USICR.Set(usiOIE | usiWM0 | usiCS0) }
func (attiny85) SeedCounter(s uint8) { avr.USISR.Set(usiFlags | s&0x0F) }

func (attiny85) StartTimer(seed uint8) {
	avr.TCNT0.Set(seed)
	avr.GTCCR.Set(psr0)
	avr.TCCR0B.Set(timer0ClockSelect)
	avr.TIFR.Set(tov0)
	avr.TIMSK.SetBits(toie0)
}

func (attiny85) AdvanceTimer(delta uint8) { avr.TCNT0.Set(avr.TCNT0.Get() + delta) }

func (attiny85) ArmEdge() {
	avr.PCMSK.SetBits(pcint0)
	avr.GIFR.Set(pcif)
	avr.GIMSK.SetBits(pcie)
}

func (attiny85) DisarmEdge() { avr.GIMSK.ClearBits(pcie) }

func (attiny85) ListenLine() {
	avr.PORTB.SetBits(1 << pinDO)
	avr.DDRB.ClearBits(1<<pinDO | 1<<pinDI)
}

func (attiny85) DriveLine() { avr.DDRB.SetBits(1 << pinDO) }

func (attiny85) DisableInterrupts() uintptr { return uintptr(interrupt.Disable()) }

func (attiny85) RestoreInterrupts(state uintptr) { interrupt.Restore(interrupt.State(state)) }

// Line0 is the serial line on PB0 (RX) and PB1 (TX).
var Line0 = New(attiny85{})

func init() {
	interrupt.New(avr.IRQ_PCINT0, onPinChange)
	interrupt.New(avr.IRQ_USI_OVF, onShiftComplete)
	interrupt.New(avr.IRQ_TIMER0_OVF, onTimerOverflow)
}

// The pin-change interrupt fires on both edges; only a low level is a start bit.
func onPinChange(interrupt.Interrupt) {
	if avr.PINB.HasBits(1 << pinDI) {
		return
	}
	Line0.HandleStartBit()
}

func onShiftComplete(interrupt.Interrupt) { Line0.HandleShiftComplete() }

func onTimerOverflow(interrupt.Interrupt) { Line0.HandleTimerOverflow() }
