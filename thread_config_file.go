package jobpool

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ParseThreadConfig decodes a ThreadConfig from data in the given format
// ("toml", "yaml" or "yml"). Keys missing from data keep their
// DefaultThreadConfig values.
func ParseThreadConfig(data []byte, format string) (ThreadConfig, error) {
	cfg := DefaultThreadConfig()

	var err error
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "toml":
		err = toml.Unmarshal(data, &cfg)
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return ThreadConfig{}, fmt.Errorf("%w: %q", ErrUnknownConfigFormat, format)
	}
	if err != nil {
		return ThreadConfig{}, fmt.Errorf("jobpool: decode %s thread config: %w", format, err)
	}

	if err := cfg.Validate(); err != nil {
		return ThreadConfig{}, err
	}
	return cfg, nil
}

// LoadThreadConfig reads a ThreadConfig from path. The format is taken
// from the file extension.
func LoadThreadConfig(path string) (ThreadConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ThreadConfig{}, fmt.Errorf("jobpool: read thread config: %w", err)
	}
	return ParseThreadConfig(data, filepath.Ext(path))
}
