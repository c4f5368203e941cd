package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var echoCmd = &cobra.Command{
	Use:   "echo [text]",
	Short: "Type text at a simulated chip running the echo application",
	RunE: func(cmd *cobra.Command, args []string) error {
		text := "usi"
		if len(args) > 0 {
			text = strings.Join(args, " ")
		}
		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()

		out := cmd.OutOrStdout()
		for i := 0; i < len(text); i++ {
			reply, err := s.exchange(text[i], s.replyTimeout())
			fmt.Fprint(out, string(reply))
			if err != nil {
				fmt.Fprintln(out)
				return err
			}
		}
		fmt.Fprintln(out)
		return nil
	},
}
