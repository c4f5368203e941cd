// usiuart/ringbuffer.go

package usiuart

// ringBuffer is a single-producer single-consumer byte queue. One slot is
// always left empty so that head == tail means empty and head+1 == tail
// means full. Capacity is therefore len(buf)-1.
//
// Only the producer writes head and only the consumer writes tail; the
// index registers are the sole point of contention between foreground code
// and the interrupt handlers.
type ringBuffer struct {
	buf  []byte
	mask uint8
	head register8
	tail register8
}

// newRingBuffer returns an empty ring of the given power-of-two size.
func newRingBuffer(size uint8) *ringBuffer {
	return &ringBuffer{buf: make([]byte, size), mask: size - 1}
}

// Size returns the storage length, one more than the usable capacity.
func (rb *ringBuffer) Size() int { return len(rb.buf) }

// Used returns how many bytes are queued.
func (rb *ringBuffer) Used() int {
	return int((rb.head.Get() - rb.tail.Get()) & rb.mask)
}

// Free returns how many bytes can be queued before put blocks.
func (rb *ringBuffer) Free() int { return len(rb.buf) - 1 - rb.Used() }

// Empty reports head == tail.
func (rb *ringBuffer) Empty() bool { return rb.head.Get() == rb.tail.Get() }

// tryPut stores val unless the ring is full.
func (rb *ringBuffer) tryPut(val byte) bool {
	next := (rb.head.Get() + 1) & rb.mask
	if next == rb.tail.Get() { // full
		return false
	}
	rb.buf[next] = val // 1) write data
	rb.head.Set(next)  // 2) publish
	return true
}

// tryGet removes the oldest byte, or returns (0, false) when empty.
func (rb *ringBuffer) tryGet() (byte, bool) {
	t := rb.tail.Get()
	if t == rb.head.Get() {
		return 0, false
	}
	t = (t + 1) & rb.mask
	v := rb.buf[t] // 1) read element
	rb.tail.Set(t) // 2) publish consumption
	return v, true
}

// put stores val, calling wait while the ring is full. wait must return
// with interrupts enabled so the consumer can advance tail.
func (rb *ringBuffer) put(val byte, wait func()) {
	for !rb.tryPut(val) {
		wait()
	}
}

// get removes the oldest byte, calling wait while the ring is empty.
func (rb *ringBuffer) get(wait func()) byte {
	for {
		if v, ok := rb.tryGet(); ok {
			return v
		}
		wait()
	}
}

// Clear resets head and tail. Callers must own both sides of the ring.
func (rb *ringBuffer) Clear() {
	rb.head.Set(0)
	rb.tail.Set(0)
}
