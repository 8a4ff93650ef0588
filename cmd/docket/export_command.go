package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"docket/internal/config"
	"docket/internal/engine"
	"docket/internal/logging"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		storePath string
		sessionID string
		output    string
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a workbook from an existing catalog store",
		Long: `Export reads a catalog store without walking any directories, recomputes
duplicate marks over the stored records, and writes them to an Excel
workbook. Use --session to export a single cataloging run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			source := storePath
			if source == "" {
				source = cfg.Store.Path
			}
			destination := output
			if destination == "" {
				destination = cfg.Export.Path
			}
			if destination == "" {
				return errors.New("a workbook destination is required (--output or export.path)")
			}
			source, err = config.ExpandPath(source)
			if err != nil {
				return err
			}
			destination, err = config.ExpandPath(destination)
			if err != nil {
				return err
			}

			replace := overwrite || cfg.Export.Overwrite
			if !replace {
				replace, err = confirmWorkbookReplace(cmd, destination)
				if err != nil {
					return err
				}
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			summary, err := engine.ExportStore(cmd.Context(), engine.ExportRequest{
				StorePath: source,
				SessionID: sessionID,
				Output:    destination,
				Overwrite: replace,
			}, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Exported %d records (%d duplicates) from %d session(s) to %s\n",
				summary.Records, summary.Duplicates, summary.Sessions, summary.Output)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&storePath, "store", "", "Catalog store path (defaults to the configured store)")
	flags.StringVar(&sessionID, "session", "", "Export only this session id")
	flags.StringVarP(&output, "output", "o", "", "Workbook destination (.xlsx)")
	flags.BoolVar(&overwrite, "overwrite", false, "Replace the workbook if present")

	return cmd
}
