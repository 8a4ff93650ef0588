package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"docket/internal/config"
	"docket/internal/engine"
	"docket/internal/logging"
	"docket/internal/store"
)

type scanFlags struct {
	searchDirs     []string
	baseDir        string
	exclude        []string
	input          string
	fromStore      string
	session        string
	allowMissing   bool
	storePath      string
	storePolicy    string
	output         string
	overwriteOut   bool
	noContentCheck bool
	hashAlgorithm  string
	hashWorkers    int
	bufferSize     int
	flushThreshold int
	verbose        bool
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Walk the search directories and build the catalog",
		Long: `Scan walks the configured search directories, merges any existing catalog
sources, persists every file to the catalog store, and optionally writes
the result to an Excel workbook. Flags override the corresponding
configuration values for this run only.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}

			if err := resolveStoreConflict(cmd, cfg, cmd.Flags().Changed("store-policy")); err != nil {
				return err
			}
			if err := resolveOutputOverwrite(cmd, cfg); err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			eng, err := engine.New(cfg, logger)
			if err != nil {
				return err
			}
			summary, err := eng.Run(runCtx)
			if err != nil {
				return err
			}

			printScanSummary(cmd.OutOrStdout(), cfg, summary)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&flags.searchDirs, "search-dir", "d", nil, "Directory tree to catalog (repeatable)")
	f.StringVar(&flags.baseDir, "base-dir", "", "Base directory for relative paths")
	f.StringArrayVar(&flags.exclude, "exclude", nil, "Directory name to skip at any depth (repeatable)")
	f.StringVarP(&flags.input, "input", "i", "", "Existing catalog workbook to merge before walking")
	f.StringVar(&flags.fromStore, "from-store", "", "Existing catalog store to merge before walking")
	f.StringVar(&flags.session, "session", "", "Restrict --from-store to a single session id")
	f.BoolVar(&flags.allowMissing, "allow-missing-input", false, "Continue when an import source does not exist")
	f.StringVar(&flags.storePath, "store", "", "Catalog store path")
	f.StringVar(&flags.storePolicy, "store-policy", "", "Existing-store policy (append, overwrite, error)")
	f.StringVarP(&flags.output, "output", "o", "", "Workbook destination (.xlsx)")
	f.BoolVar(&flags.overwriteOut, "overwrite-output", false, "Replace the output workbook if present")
	f.BoolVar(&flags.noContentCheck, "no-content-check", false, "Compare files by path only, skip checksums")
	f.StringVar(&flags.hashAlgorithm, "hash-algorithm", "", "Checksum algorithm (sha1, sha256, sha512, md5)")
	f.IntVar(&flags.hashWorkers, "hash-workers", 0, "Concurrent checksum workers")
	f.IntVar(&flags.bufferSize, "buffer-size", 0, "Read buffer size in bytes for checksumming")
	f.IntVar(&flags.flushThreshold, "flush-threshold", 0, "Buffered records per store flush")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

// apply layers changed flags onto the loaded configuration and re-validates
// the result. Paths given on the command line get the same tilde and
// absolute-path treatment the config loader applies to file values.
func (s *scanFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed

	if changed("search-dir") {
		cfg.Scan.SearchDirs = s.searchDirs
	}
	if changed("base-dir") {
		cfg.Scan.BaseDir = s.baseDir
	}
	if changed("exclude") {
		cfg.Scan.Exclude = s.exclude
	}
	if changed("input") {
		cfg.Import.Workbook = s.input
	}
	if changed("from-store") {
		cfg.Import.StorePath = s.fromStore
	}
	if changed("session") {
		cfg.Import.Session = s.session
	}
	if changed("allow-missing-input") {
		cfg.Import.AllowMissing = s.allowMissing
	}
	if changed("store") {
		cfg.Store.Path = s.storePath
	}
	if changed("store-policy") {
		cfg.Store.Policy = strings.ToLower(strings.TrimSpace(s.storePolicy))
	}
	if changed("output") {
		cfg.Export.Path = s.output
	}
	if changed("overwrite-output") {
		cfg.Export.Overwrite = s.overwriteOut
	}
	if changed("no-content-check") {
		cfg.Scan.ContentCheck = !s.noContentCheck
	}
	if changed("hash-algorithm") {
		cfg.Hash.Algorithm = strings.ToLower(strings.TrimSpace(s.hashAlgorithm))
	}
	if changed("hash-workers") {
		cfg.Hash.Workers = s.hashWorkers
	}
	if changed("buffer-size") {
		cfg.Hash.BufferSize = s.bufferSize
	}
	if changed("flush-threshold") {
		cfg.Store.FlushThreshold = s.flushThreshold
	}
	if s.verbose {
		cfg.Logging.Level = "debug"
	}

	if err := expandConfigPaths(cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

// expandConfigPaths normalizes every path field. Expansion is idempotent, so
// values the config loader already resolved pass through unchanged.
func expandConfigPaths(cfg *config.Config) error {
	for i, dir := range cfg.Scan.SearchDirs {
		expanded, err := config.ExpandPath(dir)
		if err != nil {
			return err
		}
		cfg.Scan.SearchDirs[i] = expanded
	}
	fields := []*string{
		&cfg.Scan.BaseDir,
		&cfg.Import.Workbook,
		&cfg.Import.StorePath,
		&cfg.Store.Path,
		&cfg.Export.Path,
	}
	for _, field := range fields {
		expanded, err := config.ExpandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	return nil
}

// resolveStoreConflict lets an interactive user pick a policy for a store
// that already exists when neither flag nor config made the choice explicit.
// Non-interactive runs keep the configured policy and fail fast in the engine.
func resolveStoreConflict(cmd *cobra.Command, cfg *config.Config, explicit bool) error {
	if explicit {
		return nil
	}
	policy, err := store.ParsePolicy(cfg.Store.Policy)
	if err != nil {
		return err
	}
	if policy != store.PolicyError {
		return nil
	}
	if _, err := os.Stat(cfg.Store.Path); err != nil {
		return nil
	}
	in := cmd.InOrStdin()
	if !interactiveTerminal(in) {
		return nil
	}
	chosen, err := promptStorePolicy(in, cmd.ErrOrStderr(), cfg.Store.Path)
	if err != nil {
		return err
	}
	cfg.Store.Policy = string(chosen)
	return nil
}

// resolveOutputOverwrite confirms replacing an existing workbook with an
// interactive user. Declining aborts before the run touches the store.
func resolveOutputOverwrite(cmd *cobra.Command, cfg *config.Config) error {
	if cfg.Export.Path == "" || cfg.Export.Overwrite {
		return nil
	}
	replace, err := confirmWorkbookReplace(cmd, cfg.Export.Path)
	if err != nil {
		return err
	}
	if replace {
		cfg.Export.Overwrite = true
	}
	return nil
}

func printScanSummary(out io.Writer, cfg *config.Config, summary *engine.Summary) {
	fmt.Fprintf(out, "Session:    %s\n", summary.SessionID)
	fmt.Fprintf(out, "Catalogued: %d files (%d existing, %d new)\n", summary.Total(), summary.Existing, summary.New)
	if cfg.Scan.ContentCheck {
		fmt.Fprintf(out, "Duplicates: %d\n", summary.Duplicates)
	}
	if summary.Rehashed > 0 {
		fmt.Fprintf(out, "Rehashed:   %d\n", summary.Rehashed)
	}
	if skipped := summary.Skips.Total(); skipped > 0 {
		fmt.Fprintf(out, "Skipped:    %d (%d permission, %d not found, %d read errors)\n",
			skipped, summary.Skips.Permission, summary.Skips.NotFound, summary.Skips.IO)
	}
	fmt.Fprintf(out, "Store:      %s (%d records)\n", cfg.Store.Path, summary.Persisted)
	if summary.Exported != "" {
		fmt.Fprintf(out, "Workbook:   %s\n", summary.Exported)
	}
	fmt.Fprintf(out, "Elapsed:    %s\n", summary.Elapsed.Round(time.Millisecond))
}
