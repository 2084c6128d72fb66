package main

import (
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/resumestore/internal/config"
)

// app carries the loaded configuration to subcommands.
type app struct {
	configFile string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "resumestore",
		Short:         "Object storage for resume builder user files",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (.yaml, .toml or .env); environment variables override it")

	cmd.AddCommand(
		newServeCmd(a),
		newProvisionCmd(a),
		newPurgeCmd(a),
		newTokenCmd(a),
	)

	return cmd
}
