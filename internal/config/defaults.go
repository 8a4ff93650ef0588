package config

const (
	defaultStorePath      = "~/.local/share/docket/catalog.db"
	defaultStorePolicy    = "error"
	defaultMismatchPolicy = "error"
	defaultFlushThreshold = 100
	defaultHashAlgorithm  = "sha1"
	defaultHashBufferSize = 65536
	defaultHashWorkers    = 1
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Scan: Scan{
			ContentCheck: true,
		},
		Hash: Hash{
			Algorithm:  defaultHashAlgorithm,
			BufferSize: defaultHashBufferSize,
			Workers:    defaultHashWorkers,
		},
		Store: Store{
			Path:           defaultStorePath,
			Policy:         defaultStorePolicy,
			FlushThreshold: defaultFlushThreshold,
			OnHashMismatch: defaultMismatchPolicy,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
