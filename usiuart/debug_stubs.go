//go:build !usiuartdebug

package usiuart

type Stats struct{}

func (d *Driver) DebugReset()       {}
func (d *Driver) DebugStats() Stats { return Stats{} }
