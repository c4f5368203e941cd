package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jangala-dev/tinygo-usiuart/sim"
	"github.com/jangala-dev/tinygo-usiuart/usiuart"
)

// Deterministic patterns, one per direction.
func patternA(i int) byte { return byte((i*31 + 0x55) & 0xFF) }
func patternB(i int) byte { return byte((i*17 + 0xA6) & 0xFF) }

const contextRadius = 8 // bytes shown either side of a mismatch

var (
	integrityOpts = struct {
		bytes int
	}{}

	integrityCmd = &cobra.Command{
		Use:   "integrity",
		Short: "Stream a byte pattern each way over a simulated link and verify it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := lineTiming()
			if err != nil {
				return err
			}
			l, err := sim.NewLink(t, lineOpts.latency)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fail := 0
			report := func(name string, err error) {
				if err == nil {
					fmt.Fprintln(out, "[PASS]", name)
					return
				}
				fmt.Fprintln(out, "[FAIL]", name, ":", err)
				fail++
			}
			report("A -> B", runOneWay(out, l, l.DA, l.DB, patternA, integrityOpts.bytes))
			report("B -> A", runOneWay(out, l, l.DB, l.DA, patternB, integrityOpts.bytes))

			fmt.Fprintf(out, "%d ticks, %d failed\n", l.Bench.Now(), fail)
			if fail > 0 {
				return fmt.Errorf("%d direction(s) failed", fail)
			}
			return nil
		},
	}
)

func init() {
	integrityCmd.Flags().IntVar(&integrityOpts.bytes, "bytes", 1024, "bytes per direction")
	rootCmd.AddCommand(integrityCmd)
}

func runOneWay(out io.Writer, l *sim.Link, tx, rx *usiuart.Driver, gen func(int) byte, n int) error {
	want := make([]byte, n)
	for i := range want {
		want[i] = gen(i)
	}
	got, err := l.Transfer(tx, rx, want)
	if err != nil {
		return err
	}
	if mis := firstMismatch(got, want); mis >= 0 {
		dumpAround(out, "got ", got, mis)
		dumpAround(out, "want", want, mis)
		return fmt.Errorf("mismatch at offset %d", mis)
	}
	if rx.Overflowed() {
		return fmt.Errorf("receiver overflowed")
	}
	return nil
}

// firstMismatch returns the first index where a and b differ, counting a
// length difference as a mismatch at the shorter length, or -1.
func firstMismatch(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return n
	}
	return -1
}

func dumpAround(out io.Writer, label string, buf []byte, i int) {
	start := i - contextRadius
	if start < 0 {
		start = 0
	}
	end := i + contextRadius
	if end > len(buf) {
		end = len(buf)
	}
	fmt.Fprintf(out, "%s:", label)
	for j := start; j < end; j++ {
		if j == i {
			fmt.Fprintf(out, " [%02X]", buf[j])
		} else {
			fmt.Fprintf(out, " %02X", buf[j])
		}
	}
	fmt.Fprintln(out)
}
