// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/templeops/templeadmin/internal/api"
	"github.com/templeops/templeadmin/internal/session"
	"github.com/templeops/templeadmin/internal/storage"
	"github.com/templeops/templeadmin/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete templeadmin configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	API     APIConfig     `toml:"api" json:"api"`
	Session SessionConfig `toml:"session" json:"session"`
	Store   StoreConfig   `toml:"store" json:"store"`
	Codec   CodecConfig   `toml:"codec" json:"codec"`
	Log     LogConfig     `toml:"log" json:"log"`
	UI      UIConfig      `toml:"ui" json:"ui"`
}

// APIConfig points the client at the admin service.
type APIConfig struct {
	// BaseURL is the service root, e.g. https://temple.example.org/api
	BaseURL     string `toml:"base_url" json:"base_url"`
	TimeoutSecs int    `toml:"timeout_secs" json:"timeout_secs"`
	// RequestsPerSecond throttles outgoing calls; 0 disables throttling.
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `toml:"burst" json:"burst"`
}

// SessionConfig holds the idle session timings.
type SessionConfig struct {
	DurationSecs         int `toml:"duration_secs" json:"duration_secs"`
	WarningSecs          int `toml:"warning_secs" json:"warning_secs"`
	CheckIntervalSecs    int `toml:"check_interval_secs" json:"check_interval_secs"`
	ActivityResolutionMs int `toml:"activity_resolution_ms" json:"activity_resolution_ms"`
}

// StoreConfig selects where the session record lives.
type StoreConfig struct {
	// Backend is one of sqlite, file, redis, memory.
	Backend string `toml:"backend" json:"backend"`
	// Path is the sqlite database or JSON file (empty = under ConfigDir).
	Path           string `toml:"path" json:"path"`
	RedisAddr      string `toml:"redis_addr" json:"redis_addr"`
	RedisNamespace string `toml:"redis_namespace" json:"redis_namespace"`
	// Watch logs this terminal out when another process clears the record.
	Watch bool `toml:"watch" json:"watch"`
}

// CodecConfig holds the shared secret for encrypted record fields.
type CodecConfig struct {
	Passphrase string `toml:"passphrase" json:"passphrase"`
}

// LogConfig controls the log file.
type LogConfig struct {
	// Level is a zerolog level name.
	Level string `toml:"level" json:"level"`
	// Path is the log file (empty = ConfigDir/templeadmin.log).
	Path string `toml:"path" json:"path"`
}

// UIConfig holds UI preferences.
type UIConfig struct {
	// Theme is "dark" or "light".
	Theme string `toml:"theme" json:"theme"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		API: APIConfig{
			BaseURL:           "http://localhost:5000/api",
			TimeoutSecs:       30,
			RequestsPerSecond: 10,
			Burst:             20,
		},

		Session: SessionConfig{
			DurationSecs:         3600,
			WarningSecs:          300,
			CheckIntervalSecs:    60,
			ActivityResolutionMs: 1000,
		},

		Store: StoreConfig{
			Backend:        storage.BackendSQLite,
			RedisNamespace: "templeadmin",
		},

		Log: LogConfig{
			Level: "info",
		},

		UI: UIConfig{
			Theme: "dark",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// HomeEnv overrides the configuration directory.
const HomeEnv = "TEMPLEADMIN_HOME"

// ConfigDir returns the templeadmin configuration directory path.
func ConfigDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".templeadmin"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ensureSecurePermissions tightens a config file to 0600. The file holds the
// codec passphrase.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finish(cfg)
			}
		}
	}

	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			cfg = Default()
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = errors.Join(loadErr, fmt.Errorf("failed to load JSON config: %w", err))
			} else {
				return finish(cfg)
			}
		}
	}

	// Defaults, with any load error for informational purposes.
	cfg, err := finish(Default())
	if err != nil {
		return nil, err
	}
	return cfg, loadErr
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		fmt.Fprintf(os.Stderr, "Warning: unknown config keys in %s: %s\n", path, strings.Join(keys, ", "))
	}
	fillDefaults(cfg)
	return nil
}

// LoadJSON loads configuration from a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

// LoadFromPath loads configuration from a specific file with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}
	return finish(cfg)
}

// fillDefaults fills in values a file explicitly blanked.
func fillDefaults(cfg *Config) {
	d := Default()

	if cfg.Version == "" {
		cfg.Version = d.Version
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = d.API.BaseURL
	}
	if cfg.API.TimeoutSecs == 0 {
		cfg.API.TimeoutSecs = d.API.TimeoutSecs
	}
	if cfg.API.Burst == 0 {
		cfg.API.Burst = d.API.Burst
	}
	if cfg.Session.DurationSecs == 0 {
		cfg.Session.DurationSecs = d.Session.DurationSecs
	}
	if cfg.Session.WarningSecs == 0 {
		cfg.Session.WarningSecs = d.Session.WarningSecs
	}
	if cfg.Session.CheckIntervalSecs == 0 {
		cfg.Session.CheckIntervalSecs = d.Session.CheckIntervalSecs
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = d.Store.Backend
	}
	if cfg.Store.RedisNamespace == "" {
		cfg.Store.RedisNamespace = d.Store.RedisNamespace
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = d.Log.Level
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = d.UI.Theme
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration atomically with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# templeadmin configuration file")
	fmt.Fprintln(&buf, "# Generated by templeadmin - edit with care")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration as JSON atomically with 0600
// permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var validLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true, "disabled": true,
}

// Validate validates the configuration and returns ValidateErrors when
// anything is wrong.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		add("api.base_url", "must be an absolute http(s) URL")
	}
	if c.API.TimeoutSecs < 1 || c.API.TimeoutSecs > 600 {
		add("api.timeout_secs", "must be between 1 and 600")
	}
	if c.API.RequestsPerSecond < 0 {
		add("api.requests_per_second", "must not be negative")
	}
	if c.API.Burst < 1 {
		add("api.burst", "must be at least 1")
	}

	if c.Session.DurationSecs < 60 {
		add("session.duration_secs", "must be at least 60")
	}
	if c.Session.WarningSecs < 1 || c.Session.WarningSecs >= c.Session.DurationSecs {
		add("session.warning_secs", "must be positive and less than duration_secs")
	}
	if c.Session.CheckIntervalSecs < 1 {
		add("session.check_interval_secs", "must be at least 1")
	} else if c.Session.CheckIntervalSecs > c.Session.WarningSecs {
		add("session.check_interval_secs", "must not exceed warning_secs or the warning can be missed")
	}
	if c.Session.ActivityResolutionMs < 0 {
		add("session.activity_resolution_ms", "must not be negative")
	}

	switch strings.ToLower(c.Store.Backend) {
	case storage.BackendSQLite, storage.BackendFile, storage.BackendMemory:
	case storage.BackendRedis:
		if c.Store.RedisAddr == "" {
			add("store.redis_addr", "is required for the redis backend")
		}
	default:
		add("store.backend", "must be one of sqlite, file, redis, memory")
	}

	if !validLevels[strings.ToLower(c.Log.Level)] {
		add("log.level", "unknown level")
	}
	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		add("ui.theme", "must be dark or light")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - TEMPLEADMIN_API_URL: overrides api.base_url
//   - TEMPLEADMIN_PASSPHRASE: overrides codec.passphrase
//   - TEMPLEADMIN_STORE: overrides store.backend
//   - TEMPLEADMIN_STORE_PATH: overrides store.path
//   - TEMPLEADMIN_REDIS_ADDR: overrides store.redis_addr
//   - TEMPLEADMIN_SESSION_SECS: overrides session.duration_secs
//   - TEMPLEADMIN_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("TEMPLEADMIN_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("TEMPLEADMIN_PASSPHRASE"); v != "" {
		c.Codec.Passphrase = v
	}
	if v := os.Getenv("TEMPLEADMIN_STORE"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("TEMPLEADMIN_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("TEMPLEADMIN_REDIS_ADDR"); v != "" {
		c.Store.RedisAddr = v
	}
	if v := os.Getenv("TEMPLEADMIN_SESSION_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Session.DurationSecs = n
		}
	}
	if v := os.Getenv("TEMPLEADMIN_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// =============================================================================
// COMPONENT CONFIGURATION
// =============================================================================

// SessionTimings converts the [session] section for the controller.
func (c *Config) SessionTimings() session.Config {
	return session.Config{
		SessionDuration:    time.Duration(c.Session.DurationSecs) * time.Second,
		WarningTime:        time.Duration(c.Session.WarningSecs) * time.Second,
		CheckInterval:      time.Duration(c.Session.CheckIntervalSecs) * time.Second,
		ActivityResolution: time.Duration(c.Session.ActivityResolutionMs) * time.Millisecond,
	}
}

// ClientConfig converts the [api] and [codec] sections for the API client.
func (c *Config) ClientConfig() *api.ClientConfig {
	cc := api.DefaultConfig()
	cc.BaseURL = c.API.BaseURL
	cc.Timeout = time.Duration(c.API.TimeoutSecs) * time.Second
	cc.RequestsPerSecond = c.API.RequestsPerSecond
	cc.Burst = c.API.Burst
	cc.Passphrase = c.Codec.Passphrase
	return cc
}

// StoreOptions converts the [store] section, resolving an empty path to a
// file under ConfigDir.
func (c *Config) StoreOptions() (storage.Options, error) {
	opts := storage.Options{
		Backend:        strings.ToLower(c.Store.Backend),
		Path:           c.Store.Path,
		RedisAddr:      c.Store.RedisAddr,
		RedisNamespace: c.Store.RedisNamespace,
	}
	if opts.Path == "" && (opts.Backend == storage.BackendSQLite || opts.Backend == storage.BackendFile) {
		dir, err := ConfigDir()
		if err != nil {
			return opts, err
		}
		name := "session.db"
		if opts.Backend == storage.BackendFile {
			name = "session.json"
		}
		opts.Path = filepath.Join(dir, name)
	}
	return opts, nil
}

// LogPath resolves the log file location.
func (c *Config) LogPath() (string, error) {
	if c.Log.Path != "" {
		return c.Log.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "templeadmin.log"), nil
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g. "api.base_url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go
// field name, case-insensitively matched afterwards.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})
	var result strings.Builder
	for _, part := range parts {
		result.WriteString(strings.ToUpper(part[:1]))
		result.WriteString(strings.ToLower(part[1:]))
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type
// conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation, sorted.
func GetAllKeys() []string {
	var keys []string
	var walk func(t reflect.Type, prefix string)
	walk = func(t reflect.Type, prefix string) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name := strings.Split(f.Tag.Get("toml"), ",")[0]
			if name == "" {
				continue
			}
			if f.Type.Kind() == reflect.Struct {
				walk(f.Type, prefix+name+".")
				continue
			}
			keys = append(keys, prefix+name)
		}
	}
	walk(reflect.TypeOf(Config{}), "")
	sort.Strings(keys)
	return keys
}

// Clone creates a copy of the configuration. Config holds no reference
// types, so a value copy is deep.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Redacted is the placeholder shown for secrets.
const Redacted = "[REDACTED]"

// String returns the config as JSON with the passphrase redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Codec.Passphrase != "" {
		safe.Codec.Passphrase = Redacted
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance, loading it on first
// access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
