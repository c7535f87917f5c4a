package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// ErrMissingSetting is returned when a section/key pair has no value.
var ErrMissingSetting = errors.New("missing setting")

// Settings is a keyed store of section/key string values.
type Settings interface {
	String(section, key string) (string, error)
}

// LoadSettings reads a settings file. INI files (.ini, .cfg, .conf) and YAML
// files (.yaml, .yml) are supported; YAML sections are top-level mappings.
func LoadSettings(path string) (Settings, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini", ".cfg", ".conf":
		f, err := ini.Load(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read settings %s", path)
		}
		return &iniSettings{file: f}, nil
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read settings %s", path)
		}
		var doc map[string]map[string]interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrapf(err, "parse settings %s", path)
		}
		return yamlSettings(doc), nil
	default:
		return nil, errors.Errorf("unsupported settings format %q", filepath.Ext(path))
	}
}

type iniSettings struct {
	file *ini.File
}

func (s *iniSettings) String(section, key string) (string, error) {
	sec, err := s.file.GetSection(section)
	if err != nil || !sec.HasKey(key) {
		return "", errors.Wrapf(ErrMissingSetting, "%s.%s", section, key)
	}
	v := strings.TrimSpace(sec.Key(key).String())
	if v == "" {
		return "", errors.Wrapf(ErrMissingSetting, "%s.%s", section, key)
	}
	return v, nil
}

type yamlSettings map[string]map[string]interface{}

func (s yamlSettings) String(section, key string) (string, error) {
	v, ok := s[section][key]
	if !ok || v == nil {
		return "", errors.Wrapf(ErrMissingSetting, "%s.%s", section, key)
	}
	str := strings.TrimSpace(fmt.Sprint(v))
	if str == "" {
		return "", errors.Wrapf(ErrMissingSetting, "%s.%s", section, key)
	}
	return str, nil
}
