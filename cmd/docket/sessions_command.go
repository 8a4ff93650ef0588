package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"docket/internal/config"
	"docket/internal/store"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	var storePath string

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List cataloging sessions recorded in a store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			path := storePath
			if path == "" {
				path = cfg.Store.Path
			}
			path, err = config.ExpandPath(path)
			if err != nil {
				return err
			}

			src, err := store.OpenRead(path)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer src.Close()

			sessions, err := src.Sessions(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No sessions recorded")
				return nil
			}

			rows := make([][]string, 0, len(sessions))
			for _, session := range sessions {
				rows = append(rows, []string{
					session.ID,
					session.CreatedAt.UTC().Format("2006-01-02 15:04"),
					strconv.Itoa(session.FileCount),
					session.HashAlgorithm,
					yesNo(session.ContentCheck),
					session.ImportSource,
				})
			}
			table := renderTable(
				[]string{"Session", "Created", "Files", "Hash", "Content", "Source"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
			)
			fmt.Fprintln(out, table)
			return nil
		},
	}

	cmd.Flags().StringVar(&storePath, "store", "", "Catalog store path (defaults to the configured store)")
	return cmd
}
