// sim/chip.go

package sim

import (
	"sync"

	"github.com/golang/glog"
)

// Handlers are the interrupt entry points a Chip calls. *usiuart.Driver
// implements it.
type Handlers interface {
	HandleStartBit()
	HandleShiftComplete()
	HandleTimerOverflow()
}

// DefaultLatency is the interrupt entry latency in timer ticks: 17 CPU
// cycles at a prescale of 8.
const DefaultLatency = 2

const none = -1

// Chip models the peripherals of one ATtiny-class MCU at timer-tick
// resolution: Timer0, the USI in three-wire mode clocked by Timer0, the
// pin-change interrupt on DI and the DI/DO pins.
//
// A Chip implements usiuart.Platform. Handlers run on the goroutine that
// steps the Bench while cpu is held; DisableInterrupts takes the same
// lock, so foreground critical sections and handlers never overlap.
type Chip struct {
	Name    string
	Latency int // ticks between an interrupt flag and its handler

	cpu  sync.Mutex // global interrupt mask
	regs sync.Mutex // peripheral state below

	handlers Handlers

	// Timer0
	tcnt    uint8
	running bool
	timerIE bool

	// USI
	usidr   byte
	usicnt  uint8
	usiOn   bool // three-wire mode, Timer0 clock, overflow interrupt enabled
	usiFlag bool

	// pin change on DI
	edgeIE   bool
	edgeFlag bool
	lastDI   bool

	// DO
	driving bool

	// pending handler countdowns, none when idle
	pendEdge, pendTimer, pendShift int
}

// NewChip returns a powered-up chip with both pins floating high.
func NewChip(name string) *Chip {
	return &Chip{
		Name:      name,
		Latency:   DefaultLatency,
		lastDI:    true,
		pendEdge:  none,
		pendTimer: none,
		pendShift: none,
	}
}

// Attach binds the chip's interrupts to h.
func (c *Chip) Attach(h Handlers) {
	c.cpu.Lock()
	c.handlers = h
	c.cpu.Unlock()
}

// DO returns the level the chip puts on its output pin. Released, the pin
// is pulled up.
func (c *Chip) DO() bool {
	c.regs.Lock()
	defer c.regs.Unlock()
	return c.level()
}

func (c *Chip) level() bool {
	return !c.driving || c.usidr&0x80 != 0
}

// Driving reports whether DO is an output.
func (c *Chip) Driving() bool {
	c.regs.Lock()
	defer c.regs.Unlock()
	return c.driving
}

// Listening reports whether the start-bit interrupt is armed.
func (c *Chip) Listening() bool {
	c.regs.Lock()
	defer c.regs.Unlock()
	return c.edgeIE
}

// tick advances the chip by one timer tick with di on its input pin.
func (c *Chip) tick(di bool) {
	c.cpu.Lock()
	defer c.cpu.Unlock()

	c.regs.Lock()
	if c.lastDI && !di {
		c.edgeFlag = true
		if c.edgeIE && c.pendEdge == none {
			c.pendEdge = c.Latency
		}
	}
	c.lastDI = di

	if c.running {
		c.tcnt++
		if c.tcnt == 0 {
			// Compare match at zero clocks the USI, then overflow.
			if c.usiOn {
				c.clockShift(di)
			}
			if c.timerIE && c.pendTimer == none {
				c.pendTimer = c.Latency
			}
		}
	}
	c.regs.Unlock()

	c.dispatch()
}

// clockShift shifts one bit in from DI. Called with regs held.
func (c *Chip) clockShift(di bool) {
	c.usidr <<= 1
	if di {
		c.usidr |= 1
	}
	c.usicnt = (c.usicnt + 1) & 0x0F
	if c.usicnt == 0 {
		c.usiFlag = true
		if c.pendShift == none {
			c.pendShift = c.Latency
		}
	}
}

// dispatch counts down pending interrupts and runs the due handlers in
// vector order: PCINT0, TIMER0_OVF, USI_OVF.
func (c *Chip) dispatch() {
	if c.handlers == nil {
		return
	}
	if c.due(&c.pendEdge, func() bool { return c.edgeIE && c.edgeFlag }) {
		c.regs.Lock()
		c.edgeFlag = false
		c.regs.Unlock()
		glog.V(3).Infof("%s: start bit", c.Name)
		c.handlers.HandleStartBit()
	}
	if c.due(&c.pendTimer, func() bool { return c.timerIE }) {
		c.handlers.HandleTimerOverflow()
	}
	if c.due(&c.pendShift, func() bool { return c.usiOn && c.usiFlag }) {
		c.regs.Lock()
		c.usiFlag = false
		c.regs.Unlock()
		glog.V(3).Infof("%s: shift complete", c.Name)
		c.handlers.HandleShiftComplete()
	}
}

// due decrements a pending countdown and reports whether its handler should
// run now. A source whose enable or flag went away meanwhile is dropped.
func (c *Chip) due(pend *int, enabled func() bool) bool {
	c.regs.Lock()
	defer c.regs.Unlock()
	if *pend == none {
		return false
	}
	if !enabled() {
		*pend = none
		return false
	}
	if *pend > 0 {
		*pend--
		return false
	}
	*pend = none
	return true
}

// ---------- usiuart.Platform ----------

func (c *Chip) ShiftData() byte {
	c.regs.Lock()
	defer c.regs.Unlock()
	return c.usidr
}

func (c *Chip) LoadShift(v byte) {
	c.regs.Lock()
	c.usidr = v
	c.regs.Unlock()
}

func (c *Chip) SeedCounter(seed uint8) {
	c.regs.Lock()
	c.usicnt = seed & 0x0F
	c.usiFlag = false
	c.pendShift = none
	c.regs.Unlock()
}

func (c *Chip) StartShift() {
	c.regs.Lock()
	c.usiOn = true
	c.regs.Unlock()
}

func (c *Chip) StopShift() {
	c.regs.Lock()
	c.usiOn = false
	c.pendShift = none
	c.regs.Unlock()
}

func (c *Chip) StartTimer(seed uint8) {
	c.regs.Lock()
	c.tcnt = seed
	c.running = true
	c.timerIE = true
	c.pendTimer = none
	c.regs.Unlock()
}

func (c *Chip) AdvanceTimer(delta uint8) {
	c.regs.Lock()
	c.tcnt += delta
	c.regs.Unlock()
}

func (c *Chip) ArmEdge() {
	c.regs.Lock()
	c.edgeFlag = false
	c.pendEdge = none
	c.edgeIE = true
	c.regs.Unlock()
}

func (c *Chip) DisarmEdge() {
	c.regs.Lock()
	c.edgeIE = false
	c.pendEdge = none
	c.regs.Unlock()
}

func (c *Chip) ListenLine() {
	c.regs.Lock()
	c.driving = false
	c.regs.Unlock()
}

func (c *Chip) DriveLine() {
	c.regs.Lock()
	c.driving = true
	c.regs.Unlock()
}

func (c *Chip) DisableInterrupts() uintptr {
	c.cpu.Lock()
	return 0
}

func (c *Chip) RestoreInterrupts(uintptr) { c.cpu.Unlock() }
