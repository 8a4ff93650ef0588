package engine

import (
	"context"
	"errors"
	"fmt"
	"os"

	"docket/internal/identity"
	"docket/internal/logging"
	"docket/internal/record"
	"docket/internal/store"
	"docket/internal/tabular"
)

// loadExisting seeds the catalog with prior records. Load order is fixed:
// the destination store's own rows first (append policy), then an imported
// store, then an imported workbook. That order makes re-running against the
// same destination idempotent: rows already durable are admitted first and
// later sources collapse into them.
func (e *Engine) loadExisting(ctx context.Context) error {
	if e.preexisting && e.policy == store.PolicyAppend {
		recs, err := e.store.LoadAll(ctx)
		if err != nil {
			return fmt.Errorf("load destination store: %w", err)
		}
		if err := e.admitExisting(ctx, recs, false); err != nil {
			return err
		}
		e.logger.Info("loaded destination store records",
			logging.Int(logging.FieldCount, len(recs)))
	}

	if path := e.cfg.Import.StorePath; path != "" {
		if err := e.loadImportStore(ctx, path); err != nil {
			return err
		}
	}
	if path := e.cfg.Import.Workbook; path != "" {
		if err := e.loadWorkbook(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) loadImportStore(ctx context.Context, path string) error {
	src, err := store.OpenRead(path)
	if err != nil {
		if errors.Is(err, store.ErrMissing) && e.cfg.Import.AllowMissing {
			e.logger.Warn("import store missing, starting from an empty catalog",
				logging.String(logging.FieldPath, path))
			return nil
		}
		return fmt.Errorf("open import store: %w", err)
	}
	defer src.Close()

	var recs []*record.Record
	if sessionID := e.cfg.Import.Session; sessionID != "" {
		session, err := src.Session(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("look up session: %w", err)
		}
		if session == nil {
			return fmt.Errorf("import store %s has no session %s", path, sessionID)
		}
		recs, err = src.LoadSession(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("load import session: %w", err)
		}
	} else {
		recs, err = src.LoadAll(ctx)
		if err != nil {
			return fmt.Errorf("load import store: %w", err)
		}
	}

	if err := e.admitExisting(ctx, recs, true); err != nil {
		return err
	}
	e.logger.Info("loaded import store records",
		logging.String(logging.FieldPath, path),
		logging.Int(logging.FieldCount, len(recs)))
	return nil
}

func (e *Engine) loadWorkbook(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		if e.cfg.Import.AllowMissing && os.IsNotExist(err) {
			e.logger.Warn("import workbook missing, starting from an empty catalog",
				logging.String(logging.FieldPath, path))
			return nil
		}
		return fmt.Errorf("%w: import workbook %s: %v", ErrConfig, path, err)
	}

	result, err := tabular.Import(path, e.cfg.Scan.BaseDir)
	if err != nil {
		return fmt.Errorf("import workbook: %w", err)
	}
	// The workbook's declared hash function travels with each checksum so
	// the mismatch policy sees imported rows the same way it sees store rows.
	if alg := result.HashAlgorithm; alg != "" {
		for _, rec := range result.Records {
			if rec.Checksum != "" && rec.HashAlgorithm == "" {
				rec.HashAlgorithm = alg
			}
		}
	}

	if err := e.admitExisting(ctx, result.Records, true); err != nil {
		return err
	}
	e.logger.Info("imported workbook records",
		logging.String(logging.FieldPath, path),
		logging.Int(logging.FieldCount, len(result.Records)))
	return nil
}

// admitExisting runs each prior record through the mismatch policy and the
// admission index. persist is false only for the destination store's own
// rows, which are already durable there.
func (e *Engine) admitExisting(ctx context.Context, recs []*record.Record, persist bool) error {
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.applyMismatchPolicy(rec); err != nil {
			return err
		}
		if e.known(rec) {
			continue
		}
		if err := e.admit(ctx, rec, persist); err != nil {
			return err
		}
	}
	return nil
}

// applyMismatchPolicy reconciles a prior record's checksum algorithm with
// the run's. Error aborts; rehash recomputes the checksum in place, dropping
// it when the file is no longer readable.
func (e *Engine) applyMismatchPolicy(rec *record.Record) error {
	if !e.cfg.Scan.ContentCheck {
		return nil
	}
	if rec.Checksum == "" || rec.HashAlgorithm == "" {
		return nil
	}
	if rec.HashAlgorithm == e.resolver.Algorithm() {
		return nil
	}

	if e.mismatch == store.MismatchRehash {
		id, err := e.resolver.Resolve(rec.Path)
		if err != nil {
			var skip *identity.SkipError
			if !errors.As(err, &skip) {
				return err
			}
			e.skips.Add(skip.Reason)
			e.logger.Warn("rehash failed, checksum dropped",
				logging.String(logging.FieldPath, rec.Path),
				logging.String(logging.FieldReason, string(skip.Reason)))
			rec.Checksum = ""
			rec.HashAlgorithm = ""
			return nil
		}
		rec.SetIdentity(id.Size, id.Checksum, id.Algorithm)
		e.summary.Rehashed++
		return nil
	}

	return fmt.Errorf("%w: %s carries a %s checksum, run expects %s (set store.on_hash_mismatch = \"rehash\" to recompute)",
		ErrHashMismatch, rec.Path, rec.HashAlgorithm, e.resolver.Algorithm())
}
