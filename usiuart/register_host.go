//go:build !tinygo

package usiuart

import "sync/atomic"

// register8 is the host stand-in for volatile.Register8. Simulated
// interrupt handlers run on another goroutine, so loads and stores must
// also order the surrounding buffer accesses.
type register8 struct{ v atomic.Uint32 }

func (r *register8) Get() uint8  { return uint8(r.v.Load()) }
func (r *register8) Set(v uint8) { r.v.Store(uint32(v)) }
