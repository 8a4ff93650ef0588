package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"docket/internal/config"
	"docket/internal/dedupe"
	"docket/internal/identity"
	"docket/internal/logging"
	"docket/internal/record"
	"docket/internal/store"
	"docket/internal/walker"
)

// Engine drives one cataloging run. Construct with New, run once with Run;
// an Engine is not reusable.
type Engine struct {
	cfg      *config.Config
	logger   *slog.Logger
	resolver *identity.Resolver

	store       *store.Store
	policy      store.Policy
	mismatch    store.MismatchPolicy
	session     *store.Session
	preexisting bool

	records  []*record.Record
	admitted map[string]struct{}

	skips     identity.SkipStats
	walkStats walker.Stats
	summary   Summary

	mu      sync.Mutex
	state   State
	history []State
}

// New validates the run configuration far enough to construct an engine.
// Semantic checks that touch the filesystem happen in Run's init phase.
func New(cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: configuration is nil", ErrConfig)
	}
	resolver, err := identity.NewResolver(cfg.Hash.Algorithm, cfg.Hash.BufferSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	policy, err := store.ParsePolicy(cfg.Store.Policy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	mismatch, err := store.ParseMismatchPolicy(cfg.Store.OnHashMismatch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return &Engine{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "engine"),
		resolver: resolver,
		policy:   policy,
		mismatch: mismatch,
		admitted: make(map[string]struct{}),
	}, nil
}

// Run executes the full state machine and returns the run summary. Any error
// transitions the engine to Failed; records flushed before the failure stay
// in the store.
func (e *Engine) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary, err := e.run(ctx)
	if err != nil {
		e.setState(StateFailed)
		e.logger.Error("run failed",
			logging.Error(err),
			logging.Duration("elapsed", time.Since(start)))
		return nil, err
	}
	summary.Elapsed = time.Since(start)
	e.setState(StateDone)
	e.logger.Info("run finished",
		logging.String(logging.FieldSession, summary.SessionID),
		logging.Int("existing", summary.Existing),
		logging.Int("new", summary.New),
		logging.Int("duplicates", summary.Duplicates),
		logging.Int("skipped", summary.Skips.Total()),
		logging.Duration("elapsed", summary.Elapsed))
	return summary, nil
}

func (e *Engine) run(ctx context.Context) (*Summary, error) {
	e.setState(StateInit)
	if err := e.init(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if err := e.store.Close(); err != nil {
			e.logger.Warn("store close failed", logging.Error(err))
		}
	}()

	e.setState(StateLoadingExisting)
	if err := e.loadExisting(ctx); err != nil {
		return nil, err
	}

	e.setState(StateWalking)
	if err := e.walk(ctx); err != nil {
		return nil, err
	}

	e.setState(StateDeduplicating)
	e.runDedupe()

	e.setState(StateFlushing)
	if err := e.store.Flush(ctx); err != nil {
		return nil, fmt.Errorf("final flush: %w", err)
	}

	e.setState(StateExporting)
	if err := e.export(); err != nil {
		return nil, err
	}

	return e.buildSummary(ctx), nil
}

// init performs the fail-fast checks, opens the store, and persists the
// session row. Everything here aborts before any record is touched.
func (e *Engine) init(ctx context.Context) error {
	cfg := e.cfg
	if len(cfg.Scan.SearchDirs) == 0 {
		return fmt.Errorf("%w: no search directories configured", ErrConfig)
	}
	for _, dir := range cfg.Scan.SearchDirs {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("%w: search directory %s: %v", ErrConfig, dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%w: search path %s is not a directory", ErrConfig, dir)
		}
	}
	if workbook := cfg.Import.Workbook; workbook != "" && !cfg.Import.AllowMissing {
		if _, err := os.Stat(workbook); err != nil {
			return fmt.Errorf("%w: import workbook %s: %v", ErrConfig, workbook, err)
		}
	}
	if err := e.checkExportDestination(); err != nil {
		return err
	}

	if err := cfg.EnsureStoreDir(); err != nil {
		return fmt.Errorf("prepare store directory: %w", err)
	}
	e.preexisting = pathExists(cfg.Store.Path)
	st, err := store.Open(cfg.Store.Path, e.policy, cfg.Store.FlushThreshold, e.logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	e.store = st

	session := &store.Session{
		ID:             uuid.NewString(),
		SearchDirs:     cfg.Scan.SearchDirs,
		BaseDir:        cfg.Scan.BaseDir,
		ExcludeDirs:    cfg.Scan.Exclude,
		ContentCheck:   cfg.Scan.ContentCheck,
		HashAlgorithm:  e.resolver.Algorithm(),
		BufferSize:     cfg.Hash.BufferSize,
		FlushThreshold: cfg.Store.FlushThreshold,
		ImportSource:   importSource(cfg),
		CreatedAt:      time.Now().UTC(),
	}
	if err := e.store.InsertSession(ctx, session); err != nil {
		_ = e.store.Close()
		return fmt.Errorf("persist session: %w", err)
	}
	e.session = session
	e.logger.Info("session started",
		logging.String(logging.FieldSession, session.ID),
		logging.String("base_dir", session.BaseDir),
		logging.Int("search_dirs", len(session.SearchDirs)),
		logging.Bool("content_check", session.ContentCheck))
	return nil
}

// checkExportDestination rejects an unwritable export target before the run
// does any work, instead of failing after the walk.
func (e *Engine) checkExportDestination() error {
	path := e.cfg.Export.Path
	if path == "" {
		return nil
	}
	if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return fmt.Errorf("%w: export path %s: extension must be .xlsx", ErrConfig, path)
	}
	if pathExists(path) && !e.cfg.Export.Overwrite {
		return fmt.Errorf("%w: export destination %s already exists", ErrConfig, path)
	}
	return nil
}

// admit appends a record to the run's catalog and indexes its identity.
// persist controls whether it is also queued for the store; records loaded
// from the destination store itself are already durable there.
func (e *Engine) admit(ctx context.Context, rec *record.Record, persist bool) error {
	e.admitted[rec.IdentityUnder(e.cfg.Scan.ContentCheck)] = struct{}{}
	e.records = append(e.records, rec)
	if rec.Origin == record.OriginNew {
		e.summary.New++
		e.logger.Debug("new file admitted", logging.String(logging.FieldPath, rec.Path))
	} else {
		e.summary.Existing++
	}
	if !persist {
		return nil
	}
	if err := e.store.Enqueue(ctx, rec); err != nil {
		return fmt.Errorf("enqueue record: %w", err)
	}
	return nil
}

// known reports whether an equal record was already admitted. Equality is
// the derived key in content mode and the relative path otherwise.
func (e *Engine) known(rec *record.Record) bool {
	_, ok := e.admitted[rec.IdentityUnder(e.cfg.Scan.ContentCheck)]
	if ok {
		e.summary.AlreadyKnown++
	}
	return ok
}

// recordSkip folds a per-file failure into the skip counters. Any other
// error, including cancellation, is returned for the caller to abort on.
func (e *Engine) recordSkip(err error) error {
	var skip *identity.SkipError
	if !errors.As(err, &skip) {
		return err
	}
	e.skips.Add(skip.Reason)
	e.logger.Debug("file skipped",
		logging.String(logging.FieldPath, skip.Path),
		logging.String(logging.FieldReason, string(skip.Reason)))
	return nil
}

func (e *Engine) runDedupe() {
	if !e.cfg.Scan.ContentCheck {
		e.logger.Debug("duplicate detection skipped, content check disabled")
		return
	}
	marked := dedupe.Mark(e.records)
	e.summary.Duplicates = marked
	e.logger.Info("duplicate detection finished",
		logging.Int("marked", marked),
		logging.Int("records", len(e.records)))
}

func (e *Engine) buildSummary(ctx context.Context) *Summary {
	s := e.summary
	s.SessionID = e.session.ID
	s.Skips = e.skips
	s.Walk = e.walkStats
	count, err := e.store.Count(ctx)
	if err != nil {
		e.logger.Warn("store count failed", logging.Error(err))
	} else {
		s.Persisted = count
	}
	return &s
}

func importSource(cfg *config.Config) string {
	if cfg.Import.Workbook != "" {
		return cfg.Import.Workbook
	}
	return cfg.Import.StorePath
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
