// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luxfi/ledger/cmd/ledger/replay"
	"github.com/luxfi/ledger/cmd/ledger/serve"
)

func init() {
	cobra.EnablePrefixMatching = true
}

func main() {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Multi-asset deposit and loan ledger",
	}
	cmd.AddCommand(
		serve.Command(),
		replay.Command(),
	)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "command failed %v\n", err)
		os.Exit(1)
	}
}
