package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeScan(); err != nil {
		return err
	}
	c.normalizeHash()
	if err := c.normalizeStore(); err != nil {
		return err
	}
	if err := c.normalizeImport(); err != nil {
		return err
	}
	if err := c.normalizeExport(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeScan() error {
	dirs := make([]string, 0, len(c.Scan.SearchDirs))
	for _, dir := range c.Scan.SearchDirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		expanded, err := expandPath(dir)
		if err != nil {
			return fmt.Errorf("scan.search_dirs: %w", err)
		}
		dirs = append(dirs, expanded)
	}
	c.Scan.SearchDirs = dirs

	if strings.TrimSpace(c.Scan.BaseDir) != "" {
		expanded, err := expandPath(c.Scan.BaseDir)
		if err != nil {
			return fmt.Errorf("scan.base_dir: %w", err)
		}
		c.Scan.BaseDir = expanded
	} else if len(c.Scan.SearchDirs) > 0 {
		// Relative paths default to the first search root.
		c.Scan.BaseDir = c.Scan.SearchDirs[0]
	}

	excludes := make([]string, 0, len(c.Scan.Exclude))
	seen := make(map[string]struct{}, len(c.Scan.Exclude))
	for _, name := range c.Scan.Exclude {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		excludes = append(excludes, trimmed)
	}
	c.Scan.Exclude = excludes
	return nil
}

func (c *Config) normalizeHash() {
	c.Hash.Algorithm = strings.ToLower(strings.TrimSpace(c.Hash.Algorithm))
	if c.Hash.Algorithm == "" {
		c.Hash.Algorithm = defaultHashAlgorithm
	}
	if c.Hash.BufferSize == 0 {
		c.Hash.BufferSize = defaultHashBufferSize
	}
	if c.Hash.Workers == 0 {
		c.Hash.Workers = defaultHashWorkers
	}
}

func (c *Config) normalizeStore() error {
	var err error
	if strings.TrimSpace(c.Store.Path) == "" {
		c.Store.Path = defaultStorePath
	}
	if c.Store.Path, err = expandPath(c.Store.Path); err != nil {
		return fmt.Errorf("store.path: %w", err)
	}
	c.Store.Policy = strings.ToLower(strings.TrimSpace(c.Store.Policy))
	if c.Store.Policy == "" {
		c.Store.Policy = defaultStorePolicy
	}
	if c.Store.FlushThreshold == 0 {
		c.Store.FlushThreshold = defaultFlushThreshold
	}
	c.Store.OnHashMismatch = strings.ToLower(strings.TrimSpace(c.Store.OnHashMismatch))
	if c.Store.OnHashMismatch == "" {
		c.Store.OnHashMismatch = defaultMismatchPolicy
	}
	return nil
}

func (c *Config) normalizeImport() error {
	var err error
	if strings.TrimSpace(c.Import.Workbook) != "" {
		if c.Import.Workbook, err = expandPath(c.Import.Workbook); err != nil {
			return fmt.Errorf("import.workbook: %w", err)
		}
	} else {
		c.Import.Workbook = ""
	}
	if strings.TrimSpace(c.Import.StorePath) != "" {
		if c.Import.StorePath, err = expandPath(c.Import.StorePath); err != nil {
			return fmt.Errorf("import.store_path: %w", err)
		}
	} else {
		c.Import.StorePath = ""
	}
	c.Import.Session = strings.TrimSpace(c.Import.Session)
	return nil
}

func (c *Config) normalizeExport() error {
	var err error
	if strings.TrimSpace(c.Export.Path) != "" {
		if c.Export.Path, err = expandPath(c.Export.Path); err != nil {
			return fmt.Errorf("export.path: %w", err)
		}
	} else {
		c.Export.Path = ""
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
