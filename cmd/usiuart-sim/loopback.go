package main

import (
	"fmt"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"

	"github.com/jangala-dev/tinygo-usiuart/sim"
)

var loopbackCmd = &cobra.Command{
	Use:   "loopback [text]",
	Short: "Send text from chip A to chip B and check what arrives",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := lineTiming()
		if err != nil {
			return err
		}
		msg := []byte("Hello, USI!")
		if len(args) > 0 {
			msg = []byte(strings.Join(args, " "))
		}

		l, err := sim.NewLink(t, lineOpts.latency)
		if err != nil {
			return err
		}
		rec, err := l.Bench.Record(l.A)
		if err != nil {
			return err
		}

		got, err := l.Transfer(l.DA, l.DB, msg)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "sent     %q\n", msg)
		fmt.Fprintf(out, "received %q in %d ticks\n", got, l.Bench.Now())
		if !slices.Equal(msg, got) {
			return fmt.Errorf("loopback mismatch")
		}

		tpb := float64(l.TicksPerBit())
		if dec := sim.Decode(rec.Edges(), tpb); !slices.Equal(msg, dec) {
			glog.Warningf("waveform decodes as %q", dec)
		}
		rep, err := sim.Analyze(rec.Edges(), tpb)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "edges    %d in %d bursts\n", rep.Edges, rep.Bursts)
		fmt.Fprintf(out, "bit      %.3f ticks (ideal %d)\n", rep.BitPeriod, l.TicksPerBit())
		fmt.Fprintf(out, "error    mean %.3f sd %.3f max %.3f ticks\n", rep.MeanError, rep.StdDev, rep.MaxError)
		if l.DB.Overflowed() {
			return fmt.Errorf("receiver overflowed")
		}
		return nil
	},
}
