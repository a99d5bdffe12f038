// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package replay

import (
	"errors"

	"github.com/spf13/pflag"
)

const (
	ScriptKey  = "script"
	VerboseKey = "verbose"
)

var errMissingScript = errors.New("missing script")

func AddFlags(flags *pflag.FlagSet) {
	flags.String(ScriptKey, "", "YAML script of operations to replay (required). Also accepted as the first argument")
	flags.Bool(VerboseKey, false, "Log every committed event")
}

type Config struct {
	Script  string
	Verbose bool
}

func ParseFlags(flags *pflag.FlagSet, args []string) (*Config, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	script, err := flags.GetString(ScriptKey)
	if err != nil {
		return nil, err
	}
	if script == "" && flags.NArg() > 0 {
		script = flags.Arg(0)
	}
	if script == "" {
		return nil, errMissingScript
	}

	verbose, err := flags.GetBool(VerboseKey)
	if err != nil {
		return nil, err
	}
	return &Config{
		Script:  script,
		Verbose: verbose,
	}, nil
}
