package pathconfig

import (
	"context"
	"maps"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webshell/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webshell/backend/internal/shared/loop"
)

// Source labels where an applied document came from.
type Source string

const (
	SourceBundled Source = "bundled"
	SourceCached  Source = "cached"
	SourceRemote  Source = "remote"
)

// Location names the bundled file and remote URL to load from. Either may be
// empty.
type Location struct {
	AssetFilePath string
	RemoteFileURL string
}

// Config configures a Configuration.
type Config struct {
	// Debug makes invalid patterns panic at match time instead of being skipped.
	Debug      bool
	Logger     *zap.Logger
	Repository *Repository
	Metrics    *monitoring.Metrics
	// Executor, when set, receives remote documents for applying so rule swaps
	// happen on the owner's loop.
	Executor loop.Executor
}

// Configuration resolves locations to merged properties.
type Configuration struct {
	debug      bool
	logger     *zap.Logger
	repository *Repository
	metrics    *monitoring.Metrics
	executor   loop.Executor

	mu       sync.RWMutex
	rules    []compiledRule
	settings Settings
	cache    map[string]Properties
}

// New creates an empty configuration. Every location resolves to empty
// properties until a document is applied.
func New(cfg Config) *Configuration {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	repo := cfg.Repository
	if repo == nil {
		repo = NewRepository(nil, nil, "")
	}
	return &Configuration{
		debug:      cfg.Debug,
		logger:     logger,
		repository: repo,
		metrics:    cfg.Metrics,
		executor:   cfg.Executor,
		settings:   Settings{},
		cache:      make(map[string]Properties),
	}
}

// Apply replaces the rules and settings with doc and clears the resolution
// cache.
func (c *Configuration) Apply(doc *Document) {
	if doc == nil {
		return
	}

	rules := make([]compiledRule, 0, len(doc.Rules))
	for _, rule := range doc.Rules {
		compiled := compileRule(rule)
		for _, p := range compiled.patterns {
			if p.err != nil {
				c.logger.Warn("Invalid path pattern", zap.String("pattern", p.source), zap.Error(p.err))
			}
		}
		rules = append(rules, compiled)
	}

	settings := make(Settings, len(doc.Settings))
	maps.Copy(settings, doc.Settings)

	c.mu.Lock()
	c.rules = rules
	c.settings = settings
	c.cache = make(map[string]Properties)
	c.mu.Unlock()
}

// Properties returns the merged properties of every rule matching location,
// later rules overriding earlier ones. The result is a copy.
func (c *Configuration) Properties(location string) Properties {
	c.mu.RLock()
	cached, ok := c.cache[location]
	c.mu.RUnlock()
	if ok {
		return maps.Clone(cached)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.cache[location]; ok {
		return maps.Clone(cached)
	}

	path := matchPath(location)
	merged := Properties{}
	for _, rule := range c.rules {
		if rule.matches(path, c.invalidPattern) {
			maps.Copy(merged, rule.properties)
		}
	}
	c.cache[location] = merged
	return maps.Clone(merged)
}

// Settings returns a copy of the global settings.
func (c *Configuration) Settings() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.settings)
}

func (c *Configuration) invalidPattern(err error) {
	if c.debug {
		panic(err)
	}
}

// Load applies the bundled file, then the cached remote copy, both before it
// returns. The remote file is fetched in the background; the returned
// channel yields its outcome and is closed afterwards. Without a remote URL
// the channel is closed immediately.
func (c *Configuration) Load(ctx context.Context, location Location) <-chan error {
	done := make(chan error, 1)

	if location.AssetFilePath != "" {
		c.loadBundled(location.AssetFilePath)
	}
	if location.RemoteFileURL == "" {
		close(done)
		return done
	}

	c.loadCached(location.RemoteFileURL)

	go func() {
		defer close(done)
		done <- c.loadRemote(ctx, location.RemoteFileURL)
	}()
	return done
}

func (c *Configuration) loadBundled(path string) {
	data, err := c.repository.Bundled(path)
	if err != nil {
		c.logger.Error("Failed to load bundled path configuration", zap.String("path", path), zap.Error(err))
		c.metrics.RecordPathConfigLoad(string(SourceBundled), "error")
		return
	}
	doc, err := Decode(FormatFor(path), data)
	if err != nil {
		c.logger.Error("Invalid bundled path configuration", zap.String("path", path), zap.Error(err))
		c.metrics.RecordPathConfigLoad(string(SourceBundled), "invalid")
		return
	}
	c.Apply(doc)
	c.metrics.RecordPathConfigLoad(string(SourceBundled), "applied")
	c.logger.Debug("Applied path configuration", zap.String("source", string(SourceBundled)), zap.Int("rules", len(doc.Rules)))
}

func (c *Configuration) loadCached(remoteURL string) {
	data, ok := c.repository.Cached(remoteURL)
	if !ok {
		return
	}
	doc, err := Decode(FormatFor(urlPath(remoteURL)), data)
	if err != nil {
		c.logger.Warn("Ignoring invalid cached path configuration", zap.String("url", remoteURL), zap.Error(err))
		c.metrics.RecordPathConfigLoad(string(SourceCached), "invalid")
		return
	}
	c.Apply(doc)
	c.metrics.RecordPathConfigLoad(string(SourceCached), "applied")
}

func (c *Configuration) loadRemote(ctx context.Context, remoteURL string) error {
	data, err := c.repository.Remote(ctx, remoteURL)
	if err != nil {
		c.logger.Error("Failed to download path configuration", zap.String("url", remoteURL), zap.Error(err))
		c.metrics.RecordPathConfigLoad(string(SourceRemote), "error")
		return err
	}
	doc, err := Decode(FormatFor(urlPath(remoteURL)), data)
	if err != nil {
		c.logger.Error("Invalid remote path configuration", zap.String("url", remoteURL), zap.Error(err))
		c.metrics.RecordPathConfigLoad(string(SourceRemote), "invalid")
		return err
	}

	if c.executor != nil {
		c.executor.Post(func() { c.Apply(doc) })
	} else {
		c.Apply(doc)
	}
	c.metrics.RecordPathConfigLoad(string(SourceRemote), "applied")

	if err := c.repository.Cache(remoteURL, data); err != nil {
		c.logger.Warn("Failed to cache path configuration", zap.String("url", remoteURL), zap.Error(err))
	}
	return nil
}

// matchPath is the string patterns are tested against: the path, plus the
// query when there is one.
func matchPath(location string) string {
	u, err := url.Parse(location)
	if err != nil {
		return location
	}
	if u.RawQuery == "" {
		return u.Path
	}
	return u.Path + "?" + u.RawQuery
}

func urlPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Path
}
