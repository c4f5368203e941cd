package usiuart

import (
	"fmt"
	"sync"
)

// fakePlatform records every peripheral access. Its interrupt mask is a
// mutex so tests can run handlers from another goroutine with irq.
type fakePlatform struct {
	cpu sync.Mutex

	mu       sync.Mutex
	calls    []string
	data     byte
	loads    []byte
	counter  uint8
	timer    uint8
	edge     bool
	shifting bool
	driving  bool
}

func newFakePlatform() *fakePlatform { return &fakePlatform{} }

func (f *fakePlatform) log(format string, args ...interface{}) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

// irq runs h the way an interrupt would: with the mask held.
func (f *fakePlatform) irq(h func()) {
	f.cpu.Lock()
	defer f.cpu.Unlock()
	h()
}

// takeCalls returns and clears the call log.
func (f *fakePlatform) takeCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.calls
	f.calls = nil
	return c
}

func (f *fakePlatform) lastLoad() byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.loads) == 0 {
		return 0
	}
	return f.loads[len(f.loads)-1]
}

func (f *fakePlatform) setData(v byte) {
	f.mu.Lock()
	f.data = v
	f.mu.Unlock()
}

func (f *fakePlatform) ShiftData() byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data
}

func (f *fakePlatform) LoadShift(v byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = v
	f.loads = append(f.loads, v)
	f.log("LoadShift(%d)", v)
}

func (f *fakePlatform) SeedCounter(seed uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counter = seed
	f.log("SeedCounter(%d)", seed)
}

func (f *fakePlatform) StartShift() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shifting = true
	f.log("StartShift")
}

func (f *fakePlatform) StopShift() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shifting = false
	f.log("StopShift")
}

func (f *fakePlatform) StartTimer(seed uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timer = seed
	f.log("StartTimer(%d)", seed)
}

func (f *fakePlatform) AdvanceTimer(delta uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timer += delta
	f.log("AdvanceTimer(%d)", delta)
}

func (f *fakePlatform) ArmEdge() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edge = true
	f.log("ArmEdge")
}

func (f *fakePlatform) DisarmEdge() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edge = false
	f.log("DisarmEdge")
}

func (f *fakePlatform) ListenLine() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.driving = false
	f.log("ListenLine")
}

func (f *fakePlatform) DriveLine() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.driving = true
	f.log("DriveLine")
}

func (f *fakePlatform) DisableInterrupts() uintptr {
	f.cpu.Lock()
	return 0
}

func (f *fakePlatform) RestoreInterrupts(uintptr) { f.cpu.Unlock() }

// newTestDriver returns a flushed, listening driver on a fake platform with
// the setup calls already drained from the log.
func newTestDriver() (*Driver, *fakePlatform) {
	fp := newFakePlatform()
	d := New(fp)
	d.FlushBuffers()
	d.InitReceiver()
	fp.takeCalls()
	return d, fp
}
