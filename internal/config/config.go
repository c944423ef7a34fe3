// Package config provides the configuration schema and loader for the
// kirana server.
package config

// LogLevel controls log verbosity for the kirana server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure, typically loaded from a YAML
// file with [Load] or [LoadFromReader].
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Resolver   ResolverConfig   `yaml:"resolver"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Keywords   *KeywordsConfig  `yaml:"keywords"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on. Default ":8080".
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity. Default "info".
	LogLevel LogLevel `yaml:"log_level"`
}

// ClassifierConfig holds the statistical intent model settings. Zero-valued
// thresholds mean "use the built-in default".
type ClassifierConfig struct {
	// ModelPath points to the JSON model artifact. When empty or missing
	// the server starts in rule-only mode with a warning.
	ModelPath string `yaml:"model_path"`

	// Threshold gates the primary statistical pass (default 0.60).
	Threshold float64 `yaml:"threshold"`

	// SecondaryThreshold gates the retry pass on normalized text
	// (default 0.55).
	SecondaryThreshold float64 `yaml:"secondary_threshold"`

	// CheckBoost is the additive CHECK-score bias applied when a status
	// word is present (default 0.15).
	CheckBoost float64 `yaml:"check_boost"`
}

// ResolverConfig holds item-resolution settings.
type ResolverConfig struct {
	// SimilarityFloor is the minimum fuzzy-match ratio (default 0.6).
	SimilarityFloor float64 `yaml:"similarity_floor"`

	// Overrides adds deployment-specific mis-transcription rewrites on top
	// of the built-in table.
	Overrides map[string]string `yaml:"overrides"`
}

// CatalogConfig locates the catalog snapshot file.
type CatalogConfig struct {
	// Path is the YAML catalog file loaded at startup.
	Path string `yaml:"path"`
}

// KeywordsConfig optionally replaces the built-in intent keyword table.
// All four lists must be set together; a nil KeywordsConfig keeps the
// defaults. The category check order stays ADD, SALE, CHECK regardless.
type KeywordsConfig struct {
	Version int      `yaml:"version"`
	Add     []string `yaml:"add"`
	Sale    []string `yaml:"sale"`
	Check   []string `yaml:"check"`
	Status  []string `yaml:"status"`
}
