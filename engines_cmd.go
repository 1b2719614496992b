package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List the speech engines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		r, err := newRegistry()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, name := range r.Names() {
			if name == cfg.Engine {
				fmt.Fprintf(out, "%s %s (voice %s)\n", keyword("*"), keyword(name), cfg.VoiceFor(name))
				continue
			}
			fmt.Fprintf(out, "  %s\n", name)
		}
		return nil
	},
}
