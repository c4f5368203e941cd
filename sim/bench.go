// sim/bench.go

package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
)

var (
	// ErrTimeout is returned by RunUntil when the condition does not hold
	// within the tick limit.
	ErrTimeout = errors.New("sim: condition not reached")
	// ErrNoLink is returned when wiring refers to a chip that is not on the bench.
	ErrNoLink = errors.New("sim: chip not on bench")
)

// Bench steps a set of chips on a shared timer clock and carries each
// chip's DO level to the DI pin of the chip wired to it.
type Bench struct {
	mu        sync.Mutex // serialises stepping
	chips     []*Chip
	source    map[*Chip]*Chip // DI of key is driven by DO of value
	recorders []*Recorder
	now       uint64
}

// NewBench returns a bench holding chips, none of them wired.
func NewBench(chips ...*Chip) *Bench {
	return &Bench{
		chips:  chips,
		source: make(map[*Chip]*Chip),
	}
}

// Connect cross-wires a and b: a.DO to b.DI and b.DO to a.DI.
func (b *Bench) Connect(a, c *Chip) error {
	if !b.has(a) || !b.has(c) {
		return fmt.Errorf("connect %s-%s: %w", name(a), name(c), ErrNoLink)
	}
	b.mu.Lock()
	b.source[c] = a
	b.source[a] = c
	b.mu.Unlock()
	glog.V(2).Infof("wired %s <-> %s", a.Name, c.Name)
	return nil
}

// Record starts recording the DO level of c.
func (b *Bench) Record(c *Chip) (*Recorder, error) {
	if !b.has(c) {
		return nil, fmt.Errorf("record %s: %w", name(c), ErrNoLink)
	}
	r := newRecorder(c)
	b.mu.Lock()
	b.recorders = append(b.recorders, r)
	b.mu.Unlock()
	return r, nil
}

// Now returns the number of ticks stepped so far.
func (b *Bench) Now() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.now
}

// Step advances every chip by one tick. Input levels are sampled before
// any chip moves, so a DO change is seen on the wired DI one tick later.
func (b *Bench) Step() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.step()
}

func (b *Bench) step() {
	levels := make([]bool, len(b.chips))
	for i, c := range b.chips {
		levels[i] = true // unwired inputs float high
		if src, ok := b.source[c]; ok {
			levels[i] = src.DO()
		}
	}
	for i, c := range b.chips {
		c.tick(levels[i])
	}
	b.now++
	for _, r := range b.recorders {
		r.observe(b.now)
	}
}

// RunFor advances the bench by n ticks.
func (b *Bench) RunFor(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := 0; i < n; i++ {
		b.step()
	}
}

// RunUntil steps until cond returns true or limit ticks have passed. cond
// is evaluated between ticks without any chip lock held.
func (b *Bench) RunUntil(cond func() bool, limit int) error {
	for i := 0; i < limit; i++ {
		if cond() {
			return nil
		}
		b.Step()
	}
	if cond() {
		return nil
	}
	return fmt.Errorf("after %d ticks: %w", limit, ErrTimeout)
}

// Run steps the bench until ctx is done. With a non-zero tickPeriod the
// bench is paced to wall-clock time; otherwise it runs flat out, yielding
// between batches.
func (b *Bench) Run(ctx context.Context, tickPeriod time.Duration) error {
	const batch = 256
	start := time.Now()
	var ticks int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		b.RunFor(batch)
		ticks += batch
		if tickPeriod > 0 {
			if ahead := time.Duration(ticks)*tickPeriod - time.Since(start); ahead > 0 {
				time.Sleep(ahead)
			}
		} else {
			time.Sleep(0)
		}
	}
}

func (b *Bench) has(c *Chip) bool {
	if c == nil {
		return false
	}
	for _, x := range b.chips {
		if x == c {
			return true
		}
	}
	return false
}

func name(c *Chip) string {
	if c == nil {
		return "<nil>"
	}
	return c.Name
}
