package engine

import (
	"context"
	"fmt"
	"log/slog"

	"docket/internal/dedupe"
	"docket/internal/logging"
	"docket/internal/record"
	"docket/internal/store"
	"docket/internal/tabular"
)

func (e *Engine) export() error {
	path := e.cfg.Export.Path
	if path == "" {
		e.logger.Debug("no export destination configured")
		return nil
	}
	if err := tabular.Export(path, e.records, sessionProperties(e.session), e.cfg.Export.Overwrite); err != nil {
		return fmt.Errorf("export catalog: %w", err)
	}
	e.summary.Exported = path
	e.logger.Info("catalog exported",
		logging.String(logging.FieldPath, path),
		logging.Int(logging.FieldCount, len(e.records)))
	return nil
}

// ExportRequest re-exports a persisted store to a workbook without walking.
type ExportRequest struct {
	StorePath string
	SessionID string // empty exports every session
	Output    string
	Overwrite bool
}

// ExportSummary reports what a store export produced.
type ExportSummary struct {
	Records    int
	Duplicates int
	Sessions   int
	Output     string
}

// ExportStore loads a catalog database read-only, recomputes the duplicate
// marks over the stored order, and writes the workbook.
func ExportStore(ctx context.Context, req ExportRequest, logger *slog.Logger) (*ExportSummary, error) {
	log := logging.NewComponentLogger(logger, "export")

	src, err := store.OpenRead(req.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer src.Close()

	sessions, err := src.Sessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	var (
		recs    []*record.Record
		props   tabular.Properties
		covered int
	)
	if req.SessionID != "" {
		session := findSession(sessions, req.SessionID)
		if session == nil {
			return nil, fmt.Errorf("store %s has no session %s", req.StorePath, req.SessionID)
		}
		recs, err = src.LoadSession(ctx, req.SessionID)
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		props = sessionProperties(session)
		covered = 1
	} else {
		recs, err = src.LoadAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("load store: %w", err)
		}
		props = storeProperties(sessions)
		covered = len(sessions)
	}

	marked := dedupe.Mark(recs)

	if err := tabular.Export(req.Output, recs, props, req.Overwrite); err != nil {
		return nil, fmt.Errorf("export catalog: %w", err)
	}
	log.Info("store exported",
		logging.String(logging.FieldPath, req.Output),
		logging.Int(logging.FieldCount, len(recs)),
		logging.Int("sessions", covered),
		logging.Int("duplicates", marked))
	return &ExportSummary{
		Records:    len(recs),
		Duplicates: marked,
		Sessions:   covered,
		Output:     req.Output,
	}, nil
}

func sessionProperties(s *store.Session) tabular.Properties {
	return tabular.Properties{
		SearchDirs:    s.SearchDirs,
		BaseDir:       s.BaseDir,
		ExcludeDirs:   s.ExcludeDirs,
		ImportSource:  s.ImportSource,
		BufferSize:    s.BufferSize,
		HashAlgorithm: s.HashAlgorithm,
		SessionID:     s.ID,
		CreatedAt:     s.CreatedAt,
	}
}

// storeProperties describes a whole-store export: the most recent session's
// settings, with the base directory kept only when every session agrees on
// it. A workbook spanning sessions names no single session.
func storeProperties(sessions []store.Session) tabular.Properties {
	if len(sessions) == 0 {
		return tabular.Properties{}
	}
	latest := sessions[len(sessions)-1]
	props := sessionProperties(&latest)
	props.SessionID = ""
	for _, s := range sessions {
		if s.BaseDir != latest.BaseDir {
			props.BaseDir = ""
			break
		}
	}
	return props
}

func findSession(sessions []store.Session, id string) *store.Session {
	for i := range sessions {
		if sessions[i].ID == id {
			return &sessions[i]
		}
	}
	return nil
}
