package config

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/victoralfred/gowritter/safepath"
	"gopkg.in/yaml.v3"
)

// Loader loads configuration from a YAML file under a confined base
// path, caching by content hash so unchanged files are not re-parsed.
type Loader struct {
	path      string
	safePath  *safepath.SafePath
	config    *Config
	mu        sync.RWMutex
	lastHash  []byte
	lastLoad  time.Time
	onChange  []func(*Config)
	watchStop chan struct{}
}

// LoaderOption configures the loader.
type LoaderOption func(*Loader)

// WithOnChange adds a callback invoked whenever a changed file is loaded.
func WithOnChange(fn func(*Config)) LoaderOption {
	return func(l *Loader) {
		l.onChange = append(l.onChange, fn)
	}
}

// NewLoader creates a configuration loader. basePath confines all file
// access; configFile is resolved relative to it.
func NewLoader(basePath, configFile string, opts ...LoaderOption) (*Loader, error) {
	sp, err := safepath.New(basePath)
	if err != nil {
		return nil, fmt.Errorf("creating safe path: %w", err)
	}

	l := &Loader{
		path:     configFile,
		safePath: sp,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

// Load reads, parses and validates the configuration file. When the file
// content is unchanged since the previous load, the cached configuration
// is returned without re-parsing.
func (l *Loader) Load(ctx context.Context) (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := l.safePath.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	hash := sha256.Sum256(data)
	if l.config != nil && string(hash[:]) == string(l.lastHash) {
		return l.config, nil
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	l.config = &cfg
	l.lastHash = hash[:]
	l.lastLoad = time.Now()

	for _, fn := range l.onChange {
		fn(&cfg)
	}

	return &cfg, nil
}

// Get returns the current configuration without reloading. Nil until the
// first successful Load.
func (l *Loader) Get() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config
}

// Reload reloads the configuration from the file.
func (l *Loader) Reload(ctx context.Context) error {
	_, err := l.Load(ctx)
	return err
}

// Watch polls the file for changes at the given interval until the
// context ends or StopWatch is called. Load errors leave the previous
// configuration in place.
func (l *Loader) Watch(ctx context.Context, interval time.Duration) {
	l.watchStop = make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-l.watchStop:
				return
			case <-ticker.C:
				// Errors leave the previous config in place.
				_, _ = l.Load(ctx)
			}
		}
	}()
}

// StopWatch stops watching for configuration changes.
func (l *Loader) StopWatch() {
	if l.watchStop != nil {
		close(l.watchStop)
	}
}
