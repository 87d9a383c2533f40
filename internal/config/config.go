// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"gopkg.in/yaml.v3"
)

type Type struct {
	Source    string
	Namespace string
	Data      map[string]interface{}
}

var Config Type

func init() {
	_, _ = Load()
}

// Defaults returns the builtin configuration tree. A loaded file is
// overlaid on top of this, so every key is always resolvable.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"calendar": map[string]interface{}{
			"default_calendar":       "primary",
			"default_timezone":       "UTC",
			"default_event_duration": 60,
			"show_declined_events":   false,
		},
		"gmail": map[string]interface{}{
			"default_max_results": 50,
			"show_snippets":       true,
			"auto_mark_read":      false,
			"signature":           "",
		},
		"sheets": map[string]interface{}{
			"default_range":      "A1:Z100",
			"default_header_row": 1,
			"auto_trim":          true,
		},
		"docs": map[string]interface{}{
			"default_export_format": "text",
		},
		"ui": map[string]interface{}{
			"default_output_format": "text",
			"color_output":          true,
		},
		"cache": map[string]interface{}{
			"enabled": true,
			"ttl":     300,
			"dir":     "",
		},
	}
}

// Load resolves and parses the gwsctl.yaml config file. GWSCTL_CFG wins if
// set; otherwise the standard locations are searched. Builtin defaults are
// merged underneath whatever the file provides.
func Load(cfgFilePath ...string) (Type, error) {
	path, err := getConfigPath(cfgFilePath...)
	if err != nil {
		Config = Type{Data: Defaults()}
		return Config, err
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		Config = Type{Data: Defaults()}
		return Config, err
	}

	var data map[string]interface{}
	if err := yaml.Unmarshal(bytes, &data); err != nil {
		Config = Type{Data: Defaults()}
		return Config, err
	}

	Config = Type{
		Source: path,
		Data:   overlay(Defaults(), data)}

	return Config, nil
}

// Merge recursively merges src onto dst in place, with src winning. The
// config import command uses it to fold another file into the tree.
func Merge(dst, src map[string]interface{}) map[string]interface{} {
	return overlay(dst, src)
}

// overlay recursively merges src onto dst, with src winning.
func overlay(dst, src map[string]interface{}) map[string]interface{} {
	for k, v := range src {
		if sub, ok := v.(map[string]interface{}); ok {
			if dsub, ok := dst[k].(map[string]interface{}); ok {
				dst[k] = overlay(dsub, sub)
				continue
			}
		}
		dst[k] = v
	}
	return dst
}

// get traverses the map using a dotted key path
func (cfg *Type) get(kspec string) (any, error) {
	if len(cfg.Data) == 0 {
		_, _ = Load(cfg.Source)
		cfg.Data = Config.Data
	}

	candidateKeys := []string{"", kspec}
	if cfg.Namespace != "" {
		candidateKeys[0] = cfg.Namespace + "." + kspec
	}

	for _, key := range candidateKeys {
		keys := strings.Split(key, ".")
		var current interface{} = cfg.Data

		success := true
		for _, key := range keys {
			m, ok := current.(map[string]interface{})
			if !ok {
				success = false
				break
			}
			current, ok = m[key]
			if !ok {
				success = false
				break
			}
		}

		if success {
			return current, nil
		}
	}

	return nil, fmt.Errorf("no valid path found among: %v", candidateKeys)
}

// Get returns the raw value at a dotted key path.
func (cfg *Type) Get(kspec string) (any, error) {
	return cfg.get(kspec)
}

func GetString(key string, defaultValue ...string) (string, error) {
	if len(Config.Data) == 0 {
		_, _ = Load()
	}

	val, err := Config.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return "", err
	}

	s, ok := val.(string)
	if !ok {
		return "", errors.New("value is not a string")
	}

	return s, nil
}

func GetInt(key string, defaultValue ...int) (int, error) {
	if len(Config.Data) == 0 {
		_, _ = Load()
	}

	val, err := Config.get(key)
	if err != nil && Config.Namespace != "" {
		val, err = Config.get(Config.Namespace + "." + key)
	}

	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return 0, err
	}

	// YAML numbers may be unmarshaled as int/float64 depending on content.
	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, errors.New("value is not an int")
	}
}

func GetBool(key string, defaultValue ...bool) (bool, error) {
	if len(Config.Data) == 0 {
		_, _ = Load()
	}

	val, err := Config.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return false, err
	}

	b, ok := val.(bool)
	if !ok {
		return false, errors.New("value is not a bool")
	}

	return b, nil
}

// Set writes a value at a dotted key path, creating intermediate maps as
// needed. The raw string is YAML-decoded so "true", "60" and "primary"
// land as bool, int and string respectively.
func (cfg *Type) Set(kspec string, raw string) error {
	if len(cfg.Data) == 0 {
		cfg.Data = Defaults()
	}

	var value interface{}
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		value = raw
	}

	keys := strings.Split(kspec, ".")
	current := cfg.Data
	for _, key := range keys[:len(keys)-1] {
		next, ok := current[key].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			current[key] = next
		}
		current = next
	}
	current[keys[len(keys)-1]] = value

	return nil
}

// Reset discards the in-memory tree and restores builtin defaults. The
// file on disk is untouched until Save.
func (cfg *Type) Reset() {
	cfg.Data = Defaults()
}

// Save writes the in-memory tree back to the source file, or to the
// default location when the config was never loaded from disk.
func (cfg *Type) Save() (string, error) {
	path := cfg.Source
	if path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(dir, "gwsctl.yaml")
	}

	out, err := yaml.Marshal(cfg.Data)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, out, 0o600); err != nil {
		return "", err
	}

	cfg.Source = path
	return path, nil
}

// Export writes the tree to an arbitrary path as yaml or json.
func (cfg *Type) Export(path, format string) error {
	var out []byte
	var err error

	switch strings.ToLower(format) {
	case "json":
		out, err = json.MarshalIndent(cfg.Data, "", "  ")
	default:
		out, err = yaml.Marshal(cfg.Data)
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, out, 0o600)
}

// Validate returns the list of problems with the current tree. An empty
// slice means the config is sane.
func (cfg *Type) Validate() []string {
	var issues []string

	if v, err := GetInt("calendar.default_event_duration"); err == nil && v <= 0 {
		issues = append(issues, "calendar.default_event_duration must be positive")
	}
	if v, err := GetInt("gmail.default_max_results"); err == nil && v <= 0 {
		issues = append(issues, "gmail.default_max_results must be positive")
	}
	if v, err := GetInt("sheets.default_header_row"); err == nil && v <= 0 {
		issues = append(issues, "sheets.default_header_row must be positive")
	}
	if v, err := GetInt("cache.ttl"); err == nil && v < 0 {
		issues = append(issues, "cache.ttl must not be negative")
	}

	validFormats := map[string]bool{"text": true, "json": true, "yaml": true, "raw": true}
	if v, err := GetString("ui.default_output_format"); err == nil && !validFormats[v] {
		issues = append(issues, "ui.default_output_format must be one of [text json yaml raw]")
	}

	return issues
}

// DefaultDir is where gwsctl.yaml lands when none exists yet.
func DefaultDir() (string, error) {
	candidates := []string{
		os.Getenv("GWSCTL_CONFIG_DIR"),
		os.Getenv("XDG_CONFIG_HOME"),
		os.Getenv("APPDATA"),
		os.Getenv("HOME"),
	}
	for _, c := range candidates {
		if c != "" {
			return c, nil
		}
	}
	return "", errors.New("no config directory could be resolved")
}

func getConfigPath(cfgFilePath ...string) (string, error) {
	if len(cfgFilePath) == 1 && cfgFilePath[0] != "" {
		return checkConfigFile(cfgFilePath[0])
	}

	if override := os.Getenv("GWSCTL_CFG"); override != "" {
		return checkConfigFile(override)
	}

	var candidates []string = []string{
		os.Getenv("GWSCTL_CONFIG_DIR"),
		os.Getenv("XDG_CONFIG_HOME"),
		os.Getenv("APPDATA"),
		os.Getenv("HOME"),
	}

	for _, c := range candidates {
		if c == "" {
			continue
		}
		file := filepath.Join(c, "gwsctl.yaml")
		if fileInfo, err := os.Stat(file); err == nil {
			if !fileInfo.IsDir() {
				log.Debugf("using config file: %s", file)
				return file, nil
			}
		}
	}
	return "", fmt.Errorf("no config file found in standard locations")
}

func checkConfigFile(path string) (string, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("config file not found: %s", path)
	}
	if fileInfo.IsDir() {
		return "", fmt.Errorf("config path points to a directory: %s", path)
	}
	return path, nil
}
