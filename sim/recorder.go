// sim/recorder.go

package sim

import (
	"errors"
	"math"
	"sync"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"
)

// Edge is a level change on a recorded pin.
type Edge struct {
	Tick  uint64
	Level bool // level after the change
}

// Recorder captures the DO transitions of one chip.
type Recorder struct {
	chip *Chip

	mu    sync.Mutex
	last  bool
	edges []Edge
}

func newRecorder(c *Chip) *Recorder {
	return &Recorder{chip: c, last: c.DO()}
}

func (r *Recorder) observe(now uint64) {
	lvl := r.chip.DO()
	r.mu.Lock()
	if lvl != r.last {
		r.edges = append(r.edges, Edge{Tick: now, Level: lvl})
		r.last = lvl
	}
	r.mu.Unlock()
}

// Edges returns a copy of the transitions seen so far.
func (r *Recorder) Edges() []Edge {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.edges)
}

// Reset drops the recorded transitions.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.edges = r.edges[:0]
	r.mu.Unlock()
}

// Decode recovers 8N1 bytes from recorded edges given the bit period in
// ticks. It samples the middle of every bit after each falling start edge,
// the way a receiver with an ideal clock would.
func Decode(edges []Edge, ticksPerBit float64) []byte {
	var out []byte
	levelAt := func(t float64) bool {
		lvl := true
		for _, e := range edges {
			if float64(e.Tick) > t {
				break
			}
			lvl = e.Level
		}
		return lvl
	}
	i := 0
	for i < len(edges) {
		e := edges[i]
		if e.Level {
			i++
			continue
		}
		start := float64(e.Tick)
		var b byte
		for bit := 0; bit < 8; bit++ {
			if levelAt(start + (float64(bit)+1.5)*ticksPerBit) {
				b |= 1 << bit
			}
		}
		out = append(out, b)
		// Skip to the first edge past the stop bit sample.
		end := start + 9.5*ticksPerBit
		for i < len(edges) && float64(edges[i].Tick) <= end {
			i++
		}
	}
	return out
}

// TimingReport summarises how far recorded edges sit from an ideal bit
// clock. Errors are in ticks.
type TimingReport struct {
	Edges     int
	Bursts    int
	BitPeriod float64 // least-squares ticks per bit over all bursts
	MeanError float64
	StdDev    float64
	MaxError  float64
}

var errTooFewEdges = errors.New("sim: not enough edges to analyse")

// Analyze measures the recorded edges against a bit clock of ticksPerBit.
// A line idle for longer than a frame starts a new burst whose phase
// origin is the next falling edge; inside a burst every edge should fall on
// a whole number of bit periods from that start bit.
func Analyze(edges []Edge, ticksPerBit float64) (TimingReport, error) {
	if len(edges) < 2 || ticksPerBit <= 0 {
		return TimingReport{}, errTooFewEdges
	}
	gap := 10 * ticksPerBit

	var (
		bits, offs, errs []float64
		rep              TimingReport
		origin           float64
		prev             = math.Inf(-1)
		needOrigin       bool
	)
	for _, e := range edges {
		t := float64(e.Tick)
		if t-prev > gap {
			needOrigin = true
		}
		prev = t
		if needOrigin {
			if e.Level {
				continue // a rising edge cannot open a frame
			}
			origin = t
			needOrigin = false
			rep.Bursts++
		}
		n := math.Round((t - origin) / ticksPerBit)
		bits = append(bits, n)
		offs = append(offs, t-origin)
		d := t - origin - n*ticksPerBit
		errs = append(errs, d)
		if math.Abs(d) > rep.MaxError {
			rep.MaxError = math.Abs(d)
		}
	}
	if len(errs) < 2 {
		return TimingReport{}, errTooFewEdges
	}
	rep.Edges = len(errs)
	rep.MeanError, rep.StdDev = stat.MeanStdDev(errs, nil)
	_, rep.BitPeriod = stat.LinearRegression(bits, offs, nil, true)
	return rep, nil
}
