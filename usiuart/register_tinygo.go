//go:build tinygo

package usiuart

import "runtime/volatile"

// register8 is an 8-bit location shared between foreground code and an
// interrupt handler.
type register8 = volatile.Register8
