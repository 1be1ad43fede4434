package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v2"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/observability/logging"
)

var (
	current   *EngineConfig
	loadOnce  sync.Once
	loadErr   error
	currentMu sync.RWMutex
)

// Load parses the YAML file at path once and caches it globally.
// Subsequent calls return the cached config regardless of path.
func Load(path string) (*EngineConfig, error) {
	loadOnce.Do(func() {
		cfg, err := Parse(path)
		if err != nil {
			loadErr = err
			return
		}
		currentMu.Lock()
		current = cfg
		currentMu.Unlock()
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return Get(), nil
}

// Parse reads and validates the YAML file at path without touching the
// global cache. Missing or zero fields fall back to Default values.
func Parse(path string) (*EngineConfig, error) {
	// Resolve symlinks so ConfigMap-style mounts reload correctly.
	resolved, _ := filepath.EvalSymlinks(path)
	if resolved == "" {
		resolved = path
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	applyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults restores default values for fields yaml zeroed out.
func applyDefaults(cfg *EngineConfig) {
	def := Default()
	if cfg.Retrieval.Alpha <= 0 || cfg.Retrieval.Alpha > 1 {
		cfg.Retrieval.Alpha = def.Retrieval.Alpha
	}
	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = def.Retrieval.TopK
	}
	if cfg.Retrieval.RerankTopK <= 0 {
		cfg.Retrieval.RerankTopK = def.Retrieval.RerankTopK
	}
	if cfg.Batch.Concurrency <= 0 {
		cfg.Batch.Concurrency = def.Batch.Concurrency
	}
	if cfg.Thresholds.NonHazardConfidence == 0 {
		cfg.Thresholds = def.Thresholds
	}
	if cfg.ResultCache.Backend == "" {
		cfg.ResultCache.Backend = def.ResultCache.Backend
	}
}

// Get returns the current configuration, or Default when Load was never
// called (tests and embedded use).
func Get() *EngineConfig {
	currentMu.RLock()
	defer currentMu.RUnlock()
	if current == nil {
		return Default()
	}
	return current
}

// Replace swaps the globally cached config. Safe for concurrent readers.
func Replace(cfg *EngineConfig) {
	currentMu.Lock()
	current = cfg
	loadErr = nil
	currentMu.Unlock()
}

// Watch re-parses path whenever it changes and replaces the cached
// config. Parse failures keep the previous config. The watcher stops
// when stop is closed.
func Watch(path string, stop <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch config dir: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, perr := Parse(path)
				if perr != nil {
					logging.Warnf("Config reload skipped, parse failed: %v", perr)
					continue
				}
				Replace(cfg)
				logging.Infof("Config reloaded from %s", path)
			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Warnf("Config watcher error: %v", werr)
			case <-stop:
				return
			}
		}
	}()
	return nil
}
