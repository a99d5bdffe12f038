// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package replay

import (
	"os"

	"github.com/luxfi/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "replay [script]",
		Short: "Replays a script of operations against an in-memory ledger",
		Args:  cobra.MaximumNArgs(1),
		RunE:  replayFunc,
	}
	flags := c.Flags()
	AddFlags(flags)
	return c
}

func replayFunc(c *cobra.Command, args []string) error {
	config, err := ParseFlags(c.Flags(), args)
	if err != nil {
		return err
	}

	scriptBytes, err := os.ReadFile(config.Script)
	if err != nil {
		return err
	}
	script, err := ParseScript(scriptBytes)
	if err != nil {
		return err
	}

	var logger log.Logger = log.NoLog{}
	if config.Verbose {
		logger = log.NewLogger("replay")
	}

	report, replayErr := Replay(script, logger)
	if report != nil {
		encoder := yaml.NewEncoder(c.OutOrStdout())
		encoder.SetIndent(2)
		if err := encoder.Encode(report); err != nil {
			return err
		}
		if err := encoder.Close(); err != nil {
			return err
		}
	}
	return replayErr
}
