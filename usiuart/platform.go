// usiuart/platform.go

package usiuart

// ShiftRegister is a synchronous shift peripheral (the USI on ATtiny parts).
// Bit 7 of the data register is the level on the output pin; each clock
// shifts the register left by one and samples the input pin into bit 0.
type ShiftRegister interface {
	// ShiftData returns the data register.
	ShiftData() byte
	// LoadShift writes the data register.
	LoadShift(v byte)
	// SeedCounter clears the completion flag and presets the 4-bit counter,
	// so completion is raised after 16-seed clocks.
	SeedCounter(seed uint8)
	// StartShift enables three-wire mode clocked by the bit timer, with the
	// completion interrupt unmasked.
	StartShift()
	// StopShift disables the peripheral and masks its completion interrupt.
	StopShift()
}

// BitTimer is a free-running 8-bit timer whose overflow clocks the shift
// peripheral.
type BitTimer interface {
	// StartTimer presets the counter, resets the prescaler, runs the timer at
	// the configured prescale, clears a pending overflow and unmasks the
	// overflow interrupt.
	StartTimer(seed uint8)
	// AdvanceTimer adds delta to the running counter.
	AdvanceTimer(delta uint8)
}

// EdgeDetector raises an interrupt on a falling edge of the receive pin.
type EdgeDetector interface {
	// ArmEdge clears a pending edge and unmasks the interrupt.
	ArmEdge()
	// DisarmEdge masks the interrupt.
	DisarmEdge()
}

// Line owns the GPIO direction of the serial pins.
type Line interface {
	// ListenLine makes both pins inputs with the pull-up on the output pin,
	// leaving the line idle high.
	ListenLine()
	// DriveLine turns the output pin into an output following the shift
	// register.
	DriveLine()
}

// Interrupts is the global interrupt mask.
type Interrupts interface {
	DisableInterrupts() uintptr
	RestoreInterrupts(state uintptr)
}

// Platform is everything the driver needs from the chip.
type Platform interface {
	ShiftRegister
	BitTimer
	EdgeDetector
	Line
	Interrupts
}

// Handlers are the three interrupt entry points a platform binds to one
// driver instance.
type Handlers interface {
	HandleStartBit()
	HandleShiftComplete()
	HandleTimerOverflow()
}
