package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProvisionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "provision",
		Short: "Create the bucket and apply the public read policy if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(a.cfg)
			if err != nil {
				return err
			}
			store, err := newBucket(cmd.Context(), a.cfg.Storage)
			if err != nil {
				return err
			}
			files, err := newFiles(a.cfg, store, log, nil)
			if err != nil {
				return err
			}
			if err := files.Provision(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "bucket %s ready\n", a.cfg.Storage.Bucket)
			return nil
		},
	}
}
