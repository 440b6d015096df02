package file

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/snowreport/internal/core/domain"
)

// DefaultPaths are searched in order when no config path is given.
var DefaultPaths = []string{"config.toml", "config.yaml", "config.yml"}

// Format is a supported config file encoding.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFor returns the format implied by a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", &domain.ConfigError{Field: "config", Reason: fmt.Sprintf("unsupported config extension %q", filepath.Ext(path))}
	}
}

// Loader reads settings from a config file.
type Loader struct {
	path   string
	getenv func(string) string
}

// NewLoader creates a loader for path. An empty path searches DefaultPaths
// in the working directory.
func NewLoader(path string) *Loader {
	return &Loader{path: path, getenv: os.Getenv}
}

// Path returns the resolved config path, or "" when no file was found.
func (l *Loader) Path() string {
	if l.path != "" {
		return l.path
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Read decodes the file and applies defaults without validating.
// A missing default file yields default settings.
func (l *Loader) Read() (domain.Settings, error) {
	var s domain.Settings

	path := l.Path()
	if path == "" {
		s.ApplyDefaults()
		l.loadEnv("")
		s.API.Token = strings.TrimSpace(l.getenv(s.API.TokenEnv))
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, &domain.ConfigError{Field: "config", Reason: fmt.Sprintf("%s does not exist", path)}
		}
		return s, fmt.Errorf("read config: %w", err)
	}
	if err := Decode(path, data, &s); err != nil {
		return s, err
	}

	s.ApplyDefaults()
	l.loadEnv(filepath.Dir(path))
	s.API.Token = strings.TrimSpace(l.getenv(s.API.TokenEnv))
	return s, nil
}

// Load reads, defaults and validates settings for a report run.
// The API token must be present in the environment.
func (l *Loader) Load() (domain.Settings, error) {
	s, err := l.Read()
	if err != nil {
		return s, err
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	if s.API.Token == "" {
		return s, &domain.ConfigError{Field: "api.token_env", Reason: fmt.Sprintf("environment variable %s is not set", s.API.TokenEnv)}
	}
	return s, nil
}

// loadEnv loads .env files; missing files are ignored and set variables are kept.
func (l *Loader) loadEnv(dir string) {
	candidates := []string{".env"}
	if dir != "" && dir != "." {
		candidates = append([]string{filepath.Join(dir, ".env")}, candidates...)
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// Decode parses data in the format implied by path. Unknown keys are rejected.
func Decode(path string, data []byte, s *domain.Settings) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}

	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(s); err != nil {
			return &domain.ConfigError{Field: "config", Reason: "parse toml: " + err.Error()}
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
			return &domain.ConfigError{Field: "config", Reason: "parse yaml: " + err.Error()}
		}
	}
	return nil
}

// Encode renders settings in the format implied by path.
func Encode(path string, s domain.Settings) ([]byte, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatYAML:
		return yaml.Marshal(s)
	default:
		return toml.Marshal(s)
	}
}

// WriteDefault writes a starter config to path. Existing files are not replaced.
func WriteDefault(path, boardID, dateColumn string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	s := domain.DefaultSettings()
	s.Board.ID = boardID
	s.Board.DateColumn = dateColumn

	data, err := Encode(path, s)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o600)
}
