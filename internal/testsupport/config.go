package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"docket/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig produces a config rooted in a unique temp directory per test: a
// single search directory for the files under test, with the store path and
// any export destinations kept outside it so re-scans never pick them up.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	data := filepath.Join(base, "data")
	if err := os.MkdirAll(data, 0o755); err != nil {
		t.Fatalf("mkdir data dir: %v", err)
	}

	cfgVal := config.Default()
	cfgVal.Scan.SearchDirs = []string{data}
	cfgVal.Scan.BaseDir = data
	cfgVal.Store.Path = filepath.Join(base, "store", "catalog.db")
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:   t,
		cfg: &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithExcludes sets the directory names skipped during the walk.
func WithExcludes(names ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scan.Exclude = names
	}
}

// WithFlushThreshold overrides the store batch size on the test config.
func WithFlushThreshold(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.FlushThreshold = n
	}
}

// WithContentCheck toggles checksum-based identity on the test config.
func WithContentCheck(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scan.ContentCheck = enabled
	}
}

// DataDir returns the search directory backing the generated config.
func DataDir(cfg *config.Config) string {
	return cfg.Scan.BaseDir
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Scan.BaseDir)
}
