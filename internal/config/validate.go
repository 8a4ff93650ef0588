package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateHash(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateImport(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateHash() error {
	switch c.Hash.Algorithm {
	case "sha1", "sha256", "sha512", "md5":
	default:
		return fmt.Errorf("hash.algorithm %q is not supported (sha1, sha256, sha512, md5)", c.Hash.Algorithm)
	}
	return ensurePositiveMap(map[string]int{
		"hash.buffer_size": c.Hash.BufferSize,
		"hash.workers":     c.Hash.Workers,
	})
}

func (c *Config) validateStore() error {
	if strings.TrimSpace(c.Store.Path) == "" {
		return errors.New("store.path must be set")
	}
	switch c.Store.Policy {
	case "append", "overwrite", "error":
	default:
		return fmt.Errorf("store.policy %q is not supported (append, overwrite, error)", c.Store.Policy)
	}
	switch c.Store.OnHashMismatch {
	case "error", "rehash":
	default:
		return fmt.Errorf("store.on_hash_mismatch %q is not supported (error, rehash)", c.Store.OnHashMismatch)
	}
	return ensurePositiveMap(map[string]int{
		"store.flush_threshold": c.Store.FlushThreshold,
	})
}

func (c *Config) validateImport() error {
	if c.Import.Session != "" && strings.TrimSpace(c.Import.StorePath) == "" {
		return errors.New("import.session requires import.store_path")
	}
	return nil
}

func (c *Config) validateExport() error {
	if c.Export.Path == "" {
		return nil
	}
	if !strings.HasSuffix(strings.ToLower(c.Export.Path), ".xlsx") {
		return fmt.Errorf("export.path %q must use the .xlsx extension", c.Export.Path)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
