package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// Exit codes
	ExitSuccess = iota
	ExitGeneralError
	ExitInvalidArguments
	ExitValidationFailed
	ExitManifestError
	ExitConfigurationError
	ExitScaffoldFailed
)

const (
	AppName    = "kiln"
	EnvPrefix  = "KILN"
	configType = "yaml"
)

const (
	DefaultLogLevel = "warn"
	DefaultDirMode  = os.FileMode(0o755)
	DefaultFileMode = os.FileMode(0o644)
)

// GlobalConfig represents the user-level configuration in kiln.yaml.
type GlobalConfig struct {
	LogLevel string              `mapstructure:"log_level"`
	NoColor  bool                `mapstructure:"no_color"`
	DirMode  os.FileMode         `mapstructure:"dir_mode"`
	FileMode os.FileMode         `mapstructure:"file_mode"`
	Tools    map[string]ToolInfo `mapstructure:"tools"`
}

// ToolInfo represents detected tool information
type ToolInfo struct {
	Path    string `mapstructure:"path" yaml:"path"`
	Version string `mapstructure:"version" yaml:"version"`
}

// Defaults returns the configuration used when no kiln.yaml exists.
func Defaults() *GlobalConfig {
	return &GlobalConfig{
		LogLevel: DefaultLogLevel,
		DirMode:  DefaultDirMode,
		FileMode: DefaultFileMode,
		Tools:    map[string]ToolInfo{},
	}
}

func newViper(configDir string) *viper.Viper {
	v := viper.New()

	v.SetConfigName(AppName)
	v.SetConfigType(configType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("no_color", false)
	v.SetDefault("dir_mode", formatFileMode(DefaultDirMode))
	v.SetDefault("file_mode", formatFileMode(DefaultFileMode))

	return v
}

// LoadGlobal loads the global configuration. A missing kiln.yaml is not an
// error: defaults and KILN_* environment variables still apply.
func LoadGlobal() (*GlobalConfig, error) {
	configDir, err := GetGlobalConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadGlobalFrom(configDir)
}

// LoadGlobalFrom loads kiln.yaml from configDir.
func LoadGlobalFrom(configDir string) (*GlobalConfig, error) {
	v := newViper(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	var cfg GlobalConfig
	if err := v.Unmarshal(&cfg, viper.DecodeHook(fileModeHook())); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.Tools == nil {
		cfg.Tools = map[string]ToolInfo{}
	}
	return &cfg, nil
}

// fileModeHook decodes octal strings such as "0755" or "0o600" into
// os.FileMode. Unquoted YAML numbers are rejected: 755 arrives as decimal
// and 0755 has already been read as 493, so neither can be trusted.
func fileModeHook() mapstructure.DecodeHookFuncType {
	modeType := reflect.TypeOf(os.FileMode(0))
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != modeType {
			return data, nil
		}
		switch from.Kind() {
		case reflect.String:
			return ParseFileMode(data.(string))
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return nil, fmt.Errorf("invalid file mode %v: quote it as an octal string such as \"0755\"", data)
		}
		return data, nil
	}
}

// ParseFileMode parses an octal permission string.
func ParseFileMode(s string) (os.FileMode, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0o"), "0O")
	n, err := strconv.ParseUint(trimmed, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid file mode %q: must be octal like 0755", s)
	}
	if n > 0o777 {
		return 0, fmt.Errorf("invalid file mode %q: only permission bits are allowed", s)
	}
	return os.FileMode(n), nil
}

func formatFileMode(m os.FileMode) string {
	return fmt.Sprintf("%04o", uint32(m.Perm()))
}

// SaveGlobal writes cfg to kiln.yaml.
// Uses yaml.v3 directly to preserve keys it does not manage.
func SaveGlobal(cfg *GlobalConfig) error {
	configDir, err := GetGlobalConfigDir()
	if err != nil {
		return err
	}
	return SaveGlobalTo(configDir, cfg)
}

func SaveGlobalTo(configDir string, cfg *GlobalConfig) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(configDir, AppName+"."+configType)

	// Read existing config if it exists (to preserve any manual edits)
	var existing map[string]interface{}
	if content, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(content, &existing); err != nil {
			return fmt.Errorf("parsing existing config: %w", err)
		}
	}

	if existing == nil {
		existing = make(map[string]interface{})
	}

	if cfg.LogLevel != "" {
		existing["log_level"] = cfg.LogLevel
	}
	if cfg.NoColor {
		existing["no_color"] = true
	}
	if cfg.DirMode != 0 {
		existing["dir_mode"] = formatFileMode(cfg.DirMode)
	}
	if cfg.FileMode != 0 {
		existing["file_mode"] = formatFileMode(cfg.FileMode)
	}
	tools := cfg.Tools
	if tools == nil {
		tools = map[string]ToolInfo{}
	}
	existing["tools"] = tools

	content, err := yaml.Marshal(existing)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// GetGlobalConfigDir returns the global config directory
func GetGlobalConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, ".config", AppName), nil
}

// GlobalConfigPath returns the path of kiln.yaml.
func GlobalConfigPath() (string, error) {
	configDir, err := GetGlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName+"."+configType), nil
}

// GlobalConfigExists reports whether kiln.yaml is present.
func GlobalConfigExists() bool {
	path, err := GlobalConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}
