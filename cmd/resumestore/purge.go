package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/resumestore/pkg/events"
)

func newPurgeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "purge <prefix>",
		Short: "Delete every object whose key starts with prefix",
		Example: `  resumestore purge user123/          # all files of one tenant
  resumestore purge user123/resumes/  # one category`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(a.cfg)
			if err != nil {
				return err
			}
			store, err := newBucket(cmd.Context(), a.cfg.Storage)
			if err != nil {
				return err
			}

			var publisher events.Publisher
			pub, err := newPublisher(a.cfg.Events)
			if err != nil {
				return err
			}
			if pub != nil {
				defer pub.Close()
				publisher = pub
			}

			files, err := newFiles(a.cfg, store, log, publisher)
			if err != nil {
				return err
			}

			n, err := files.DeleteByPrefix(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d objects under %s\n", n, args[0])
			return nil
		},
	}
}
