package main

import (
	"flag"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jangala-dev/tinygo-usiuart/sim"
	"github.com/jangala-dev/tinygo-usiuart/usiuart"
)

var (
	lineOpts = struct {
		clock     uint32
		baud      uint32
		prescaler uint32
		latency   int
		speed     float64
	}{}

	rootCmd = &cobra.Command{
		Use:   "usiuart-sim",
		Short: "Simulate USI software UART lines",
		Long: "Run two simulated ATtiny-class chips wired back to back, each driving its " +
			"line with the usiuart driver, at timer-tick resolution.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// glog complains unless the standard flag set is marked parsed.
			flag.CommandLine.Parse(nil)
		},
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.Uint32Var(&lineOpts.clock, "clock", usiuart.SystemClock, "CPU clock in Hz")
	pf.Uint32Var(&lineOpts.baud, "baud", usiuart.BaudRate, "line rate in bit/s")
	pf.Uint32Var(&lineOpts.prescaler, "prescaler", usiuart.TimerPrescaler, "Timer0 prescale factor")
	pf.IntVar(&lineOpts.latency, "latency", sim.DefaultLatency, "interrupt entry latency in timer ticks")
	pf.Float64Var(&lineOpts.speed, "speed", 1, "simulation speed relative to real time, 0 runs flat out")
	// glog registers -v, -logtostderr and friends on the standard set.
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	pf.AddFlagSet(pflag.CommandLine)

	rootCmd.AddCommand(deriveCmd, loopbackCmd, echoCmd, shellCmd)
}

// lineTiming derives the driver constants from the persistent flags.
func lineTiming() (usiuart.Timing, error) {
	return usiuart.DeriveTiming(lineOpts.clock, lineOpts.baud, lineOpts.prescaler)
}

func main() {
	defer glog.Flush()
	if err := rootCmd.Execute(); err != nil {
		glog.Flush()
		os.Exit(1)
	}
}
