package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Print the timing constants for a clock, baud rate and prescaler",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := lineTiming()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "clock            %d Hz / %d\n", lineOpts.clock, lineOpts.prescaler)
		fmt.Fprintf(out, "baud             %d requested, %d actual\n", lineOpts.baud, t.BaudRate(lineOpts.clock, lineOpts.prescaler))
		fmt.Fprintf(out, "CyclesPerBit     %d\n", t.CyclesPerBit)
		fmt.Fprintf(out, "TimerSeed        %d\n", t.TimerSeed)
		fmt.Fprintf(out, "StartupDelay     %d\n", t.StartupDelay)
		fmt.Fprintf(out, "InitialTimerSeed %d\n", t.InitialTimerSeed)
		fmt.Fprintf(out, "RxCounterSeed    %d\n", t.RxCounterSeed)
		fmt.Fprintf(out, "TxCounterSeed    %d\n", t.TxCounterSeed)
		if t.SampleStartBit {
			fmt.Fprintln(out, "first sample     start bit (0.5 bit)")
		} else {
			fmt.Fprintln(out, "first sample     data bit 0 (1.5 bits)")
		}
		return nil
	},
}
