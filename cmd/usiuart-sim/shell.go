package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/abiosoft/ishell"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const sessionKey = "$session"

var (
	shellCommands = []*ishell.Cmd{
		{
			Name: "send",
			Help: "TEXT - type TEXT at the echo chip and print its replies",
			Func: func(c *ishell.Context) {
				s := sessionFrom(c)
				text := strings.Join(c.Args, " ")
				if text == "" {
					c.Err(fmt.Errorf("nothing to send"))
					return
				}
				var out strings.Builder
				for i := 0; i < len(text); i++ {
					reply, err := s.exchange(text[i], s.replyTimeout())
					out.Write(reply)
					if err != nil {
						c.Println(out.String())
						c.Err(err)
						return
					}
				}
				c.Println(out.String())
			},
		},
		{
			Name: "stats",
			Help: "print driver counters (needs -tags usiuartdebug)",
			Func: func(c *ishell.Context) {
				s := sessionFrom(c)
				c.Printf("A: %+v\n", s.link.DA.DebugStats())
				c.Printf("B: %+v\n", s.link.DB.DebugStats())
				c.Printf("ticks: %d\n", s.link.Bench.Now())
			},
		},
		{
			Name: "overflow",
			Help: "print and clear the RX overflow flags",
			Func: func(c *ishell.Context) {
				s := sessionFrom(c)
				c.Printf("A: %v\n", s.link.DA.ClearOverflow())
				c.Printf("B: %v\n", s.link.DB.ClearOverflow())
			},
		},
		{
			Name: "flush",
			Help: "empty both rings on both chips",
			Func: func(c *ishell.Context) {
				s := sessionFrom(c)
				s.link.DA.FlushBuffers()
				s.link.DB.FlushBuffers()
			},
		},
	}

	shellCmd = &cobra.Command{
		Use:   "shell [command...]",
		Short: "Interactive terminal to a simulated echo chip",
		Long: "Start a simulated link with the echo application on chip B. With arguments, " +
			"run them as one shell command and exit. With stdin not a terminal, run one " +
			"command per input line.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			defer s.Close()

			sh := ishell.New()
			sh.Set(sessionKey, s)
			sh.SetPrompt("usiuart> ")
			for _, c := range shellCommands {
				sh.AddCmd(c)
			}
			if len(args) > 0 {
				return sh.Process(args...)
			}
			if fd := os.Stdin.Fd(); !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
				return runScript(sh, bufio.NewScanner(os.Stdin))
			}
			sh.Run()
			return nil
		},
	}
)

func sessionFrom(c *ishell.Context) *session {
	return c.Get(sessionKey).(*session)
}

// runScript feeds each non-empty, non-comment line of sc to sh.
func runScript(sh *ishell.Shell, sc *bufio.Scanner) error {
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := sh.Process(strings.Fields(line)...); err != nil {
			return err
		}
	}
	return sc.Err()
}
