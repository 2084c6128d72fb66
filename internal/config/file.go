package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// readFile parses a flat KEY: value file. The format follows the extension:
// .yaml/.yml, .toml or .env. Keys are the environment variable names; list
// values are joined with commas.
func readFile(path string) (map[string]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".env" {
		vars, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoad, path, err)
		}
		return vars, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	raw := make(map[string]any)
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	case ".toml":
		err = toml.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("%w: unsupported config file type %q", ErrLoad, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoad, path, err)
	}

	vars := make(map[string]string, len(raw))
	for k, v := range raw {
		s, err := flatten(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: key %s: %v", ErrLoad, path, k, err)
		}
		vars[strings.ToUpper(k)] = s
	}
	return vars, nil
}

func flatten(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			s, err := flatten(item)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return strings.Join(parts, ","), nil
	case map[string]any:
		return "", fmt.Errorf("nested tables are not supported")
	default:
		return fmt.Sprint(t), nil
	}
}
