package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestDerive(t *testing.T) {
	out := run(t, "derive", "--clock=16000000", "--baud=9600", "--prescaler=8")
	require.Contains(t, out, "CyclesPerBit     208")
	require.Contains(t, out, "TimerSeed        48")
	require.Contains(t, out, "start bit (0.5 bit)")

	out = run(t, "derive", "--clock=8000000", "--baud=9600", "--prescaler=8")
	require.Contains(t, out, "CyclesPerBit     104")
	require.Contains(t, out, "9615 actual")
}

func TestDerive_RejectsUnreachableBaud(t *testing.T) {
	rootCmd.SetArgs([]string{"derive", "--clock=8000000", "--baud=300", "--prescaler=8"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	require.Error(t, rootCmd.Execute())
}

func TestLoopback(t *testing.T) {
	out := run(t, "loopback", "--clock=8000000", "--baud=9600", "--prescaler=8", "ping", "pong")
	require.Contains(t, out, `received "ping pong"`)
	require.Contains(t, out, "max 0.000 ticks")
}

func TestIntegrity(t *testing.T) {
	out := run(t, "integrity", "--clock=8000000", "--baud=9600", "--prescaler=8", "--bytes=64")
	require.Contains(t, out, "[PASS] A -> B")
	require.Contains(t, out, "[PASS] B -> A")
}

func TestFirstMismatch(t *testing.T) {
	require.Equal(t, -1, firstMismatch([]byte("abc"), []byte("abc")))
	require.Equal(t, 1, firstMismatch([]byte("abc"), []byte("axc")))
	require.Equal(t, 2, firstMismatch([]byte("ab"), []byte("abc")))

	var out bytes.Buffer
	dumpAround(&out, "got", []byte{1, 2, 3}, 1)
	require.Equal(t, "got: 01 [02] 03\n", out.String())
}
