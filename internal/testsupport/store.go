package testsupport

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"docket/internal/config"
	"docket/internal/logging"
	"docket/internal/store"
)

// MustOpenStore opens the configured catalog store for tests and registers
// cleanup. The parent directory is created the way the engine would.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	policy, err := store.ParsePolicy(cfg.Store.Policy)
	if err != nil {
		t.Fatalf("parse store policy: %v", err)
	}
	if err := cfg.EnsureStoreDir(); err != nil {
		t.Fatalf("prepare store directory: %v", err)
	}
	st, err := store.Open(cfg.Store.Path, policy, cfg.Store.FlushThreshold, logging.NewNop())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

// SeedSession inserts a session row derived from cfg and returns it. Each
// call produces a distinct session id.
func SeedSession(t testing.TB, st *store.Store, cfg *config.Config) *store.Session {
	t.Helper()

	session := &store.Session{
		ID:             uuid.NewString(),
		SearchDirs:     cfg.Scan.SearchDirs,
		BaseDir:        cfg.Scan.BaseDir,
		ExcludeDirs:    cfg.Scan.Exclude,
		ContentCheck:   cfg.Scan.ContentCheck,
		HashAlgorithm:  cfg.Hash.Algorithm,
		BufferSize:     cfg.Hash.BufferSize,
		FlushThreshold: cfg.Store.FlushThreshold,
		CreatedAt:      time.Now().UTC(),
	}
	if err := st.InsertSession(context.Background(), session); err != nil {
		t.Fatalf("InsertSession: %v", err)
	}
	return session
}
