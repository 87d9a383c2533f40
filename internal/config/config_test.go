// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// setupTestConfig sets GWSCTL_CFG to point to a test config file.
// Returns cleanup function that should be deferred.
func setupTestConfig(t *testing.T, testdataFile string) (cleanup func()) {
	t.Helper()

	// Get absolute path to testdata file
	configPath := filepath.Join("testdata", testdataFile)
	absPath, err := filepath.Abs(configPath)
	assert.NoError(t, err, "failed to get absolute path for test config")

	// Set GWSCTL_CFG environment variable
	t.Setenv("GWSCTL_CFG", absPath)

	// Reset the global Config to force reload
	Config = Type{}

	return func() {
		// Reset global Config
		Config = Type{}
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		testFile  string
		wantErr   bool
		checkFunc func(*testing.T, Type)
	}{
		{
			name:     "simple string values",
			testFile: "simple.yaml",
			wantErr:  false,
			checkFunc: func(t *testing.T, cfg Type) {
				assert.NotEmpty(t, cfg.Source)
				assert.Contains(t, cfg.Data, "timezone")
				assert.Equal(t, "America/New_York", cfg.Data["timezone"])
				assert.Equal(t, "work@example.com", cfg.Data["account"])
			},
		},
		{
			name:     "nested structure",
			testFile: "nested.yaml",
			wantErr:  false,
			checkFunc: func(t *testing.T, cfg Type) {
				calendar, ok := cfg.Data["calendar"].(map[string]interface{})
				assert.True(t, ok, "calendar should be a map")
				assert.Equal(t, "team@group.calendar.google.com", calendar["default_calendar"])
				assert.Equal(t, "America/Chicago", calendar["default_timezone"])
				assert.Equal(t, 45, calendar["default_event_duration"])
			},
		},
		{
			name:     "mixed types",
			testFile: "mixed-types.yaml",
			wantErr:  false,
			checkFunc: func(t *testing.T, cfg Type) {
				assert.Equal(t, "test-profile", cfg.Data["name"])
				assert.Equal(t, 1, cfg.Data["version"])
				assert.Equal(t, true, cfg.Data["enabled"])
				assert.Equal(t, 30.5, cfg.Data["timeout"])
				labels, ok := cfg.Data["labels"].([]interface{})
				assert.True(t, ok)
				assert.Len(t, labels, 2)
			},
		},
		{
			name:     "empty file",
			testFile: "empty.yaml",
			wantErr:  false,
			checkFunc: func(t *testing.T, cfg Type) {
				// Empty YAML still yields builtin defaults
				assert.NotEmpty(t, cfg.Source, "should have a source path")
				assert.Contains(t, cfg.Data, "calendar")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setupTestConfig(t, tt.testFile)
			defer cleanup()

			cfg, err := Load()

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			if tt.checkFunc != nil {
				tt.checkFunc(t, cfg)
			}
		})
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	// Set GWSCTL_CFG to non-existent file
	t.Setenv("GWSCTL_CFG", "/nonexistent/path/gwsctl.yaml")
	Config = Type{}

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoad_GWSCTL_CFG_IsDirectory(t *testing.T) {
	// Set GWSCTL_CFG to a directory instead of a file
	t.Setenv("GWSCTL_CFG", "testdata")
	Config = Type{}

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "points to a directory")
}

func TestLoad_DefaultsMergedUnderFile(t *testing.T) {
	cleanup := setupTestConfig(t, "nested.yaml")
	defer cleanup()

	cfg, err := Load()
	assert.NoError(t, err)

	// File wins where it speaks
	calendar := cfg.Data["calendar"].(map[string]interface{})
	assert.Equal(t, 45, calendar["default_event_duration"])

	// Defaults fill the gaps, both within a section and for whole sections
	assert.Equal(t, false, calendar["show_declined_events"])
	sheets, ok := cfg.Data["sheets"].(map[string]interface{})
	assert.True(t, ok, "sheets section should come from defaults")
	assert.Equal(t, "A1:Z100", sheets["default_range"])

	// A key the file sets inside a defaulted section survives the merge
	gmail := cfg.Data["gmail"].(map[string]interface{})
	assert.Equal(t, 25, gmail["default_max_results"])
	assert.Equal(t, true, gmail["show_snippets"])
}

func TestGetString(t *testing.T) {
	tests := []struct {
		name         string
		testFile     string
		key          string
		defaultValue []string
		want         string
		wantErr      bool
	}{
		{
			name:     "simple string value",
			testFile: "simple.yaml",
			key:      "timezone",
			want:     "America/New_York",
			wantErr:  false,
		},
		{
			name:     "nested string value",
			testFile: "nested.yaml",
			key:      "calendar.default_timezone",
			want:     "America/Chicago",
			wantErr:  false,
		},
		{
			name:         "missing key with default",
			testFile:     "simple.yaml",
			key:          "missing",
			defaultValue: []string{"default-value"},
			want:         "default-value",
			wantErr:      false,
		},
		{
			name:     "missing key without default",
			testFile: "simple.yaml",
			key:      "missing",
			want:     "",
			wantErr:  true,
		},
		{
			name:     "non-string value",
			testFile: "mixed-types.yaml",
			key:      "version",
			want:     "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setupTestConfig(t, tt.testFile)
			defer cleanup()

			// Force load
			_, _ = Load()

			got, err := GetString(tt.key, tt.defaultValue...)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetInt(t *testing.T) {
	tests := []struct {
		name         string
		testFile     string
		key          string
		defaultValue []int
		want         int
		wantErr      bool
	}{
		{
			name:     "int value",
			testFile: "mixed-types.yaml",
			key:      "version",
			want:     1,
			wantErr:  false,
		},
		{
			name:     "float value converted to int",
			testFile: "mixed-types.yaml",
			key:      "timeout",
			want:     30,
			wantErr:  false,
		},
		{
			name:     "nested int value",
			testFile: "nested.yaml",
			key:      "gmail.default_max_results",
			want:     25,
			wantErr:  false,
		},
		{
			name:         "missing key with default",
			testFile:     "simple.yaml",
			key:          "missing",
			defaultValue: []int{60},
			want:         60,
			wantErr:      false,
		},
		{
			name:     "missing key without default",
			testFile: "simple.yaml",
			key:      "missing",
			want:     0,
			wantErr:  true,
		},
		{
			name:     "non-int value",
			testFile: "simple.yaml",
			key:      "timezone",
			want:     0,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setupTestConfig(t, tt.testFile)
			defer cleanup()

			// Force load
			_, _ = Load()

			got, err := GetInt(tt.key, tt.defaultValue...)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetBool(t *testing.T) {
	cleanup := setupTestConfig(t, "mixed-types.yaml")
	defer cleanup()

	_, _ = Load()

	got, err := GetBool("enabled")
	assert.NoError(t, err)
	assert.True(t, got)

	// Defaults reach through GetBool too
	got, err = GetBool("gmail.show_snippets")
	assert.NoError(t, err)
	assert.True(t, got)

	got, err = GetBool("missing", false)
	assert.NoError(t, err)
	assert.False(t, got)

	_, err = GetBool("name")
	assert.Error(t, err)
}

func TestConfig_GetWithNamespace(t *testing.T) {
	cleanup := setupTestConfig(t, "namespace.yaml")
	defer cleanup()

	// Load and set namespace
	_, err := Load()
	assert.NoError(t, err)

	// Test with namespace
	Config.Namespace = "calendar"

	// Should find namespaced value first
	val, err := Config.get("setting")
	assert.NoError(t, err)
	assert.Equal(t, "calendar-value", val)

	val, err = Config.get("specific")
	assert.NoError(t, err)
	assert.Equal(t, "calendar-specific", val)

	// Change namespace
	Config.Namespace = "gmail"
	val, err = Config.get("setting")
	assert.NoError(t, err)
	assert.Equal(t, "gmail-value", val)

	// Missing in both the namespace and the root errors
	val, err = Config.get("account")
	assert.Error(t, err)
	assert.Nil(t, val)
}

func TestConfig_GetNestedPath(t *testing.T) {
	cleanup := setupTestConfig(t, "deep-nested.yaml")
	defer cleanup()

	_, err := Load()
	assert.NoError(t, err)

	val, err := Config.get("level1.level2.level3.value")
	assert.NoError(t, err)
	assert.Equal(t, "deep-value", val)
}

func TestConfig_LazyLoad(t *testing.T) {
	cleanup := setupTestConfig(t, "simple.yaml")
	defer cleanup()

	// Don't explicitly call Load(), just use GetString
	// This should trigger lazy loading
	val, err := GetString("timezone")
	assert.NoError(t, err)
	assert.Equal(t, "America/New_York", val)
	assert.NotEmpty(t, Config.Source, "Config should be loaded")
}

func TestConfig_Set(t *testing.T) {
	cleanup := setupTestConfig(t, "nested.yaml")
	defer cleanup()

	_, err := Load()
	assert.NoError(t, err)

	// Scalars are YAML-decoded into native types
	assert.NoError(t, Config.Set("calendar.default_event_duration", "90"))
	v, err := Config.get("calendar.default_event_duration")
	assert.NoError(t, err)
	assert.Equal(t, 90, v)

	assert.NoError(t, Config.Set("cache.enabled", "false"))
	v, err = Config.get("cache.enabled")
	assert.NoError(t, err)
	assert.Equal(t, false, v)

	assert.NoError(t, Config.Set("gmail.signature", "Sent from gwsctl"))
	v, err = Config.get("gmail.signature")
	assert.NoError(t, err)
	assert.Equal(t, "Sent from gwsctl", v)

	// Intermediate maps are created on demand
	assert.NoError(t, Config.Set("brand.new.key", "value"))
	v, err = Config.get("brand.new.key")
	assert.NoError(t, err)
	assert.Equal(t, "value", v)
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	cleanup := setupTestConfig(t, "nested.yaml")
	defer cleanup()

	_, err := Load()
	assert.NoError(t, err)

	assert.NoError(t, Config.Set("calendar.default_timezone", "Europe/Paris"))

	// Redirect the save target into the test's temp dir
	Config.Source = filepath.Join(t.TempDir(), "gwsctl.yaml")
	path, err := Config.Save()
	assert.NoError(t, err)
	assert.Equal(t, Config.Source, path)

	// Reload from the saved file and confirm the mutation stuck
	reloaded, err := Load(path)
	assert.NoError(t, err)
	calendar := reloaded.Data["calendar"].(map[string]interface{})
	assert.Equal(t, "Europe/Paris", calendar["default_timezone"])
}

func TestConfig_Validate(t *testing.T) {
	cleanup := setupTestConfig(t, "nested.yaml")
	defer cleanup()

	_, err := Load()
	assert.NoError(t, err)

	assert.Empty(t, Config.Validate())

	assert.NoError(t, Config.Set("calendar.default_event_duration", "-5"))
	assert.NoError(t, Config.Set("ui.default_output_format", "xml"))

	issues := Config.Validate()
	assert.Len(t, issues, 2)
	assert.Contains(t, issues[0], "default_event_duration")
	assert.Contains(t, issues[1], "default_output_format")
}

func TestConfig_Reset(t *testing.T) {
	cleanup := setupTestConfig(t, "nested.yaml")
	defer cleanup()

	_, err := Load()
	assert.NoError(t, err)

	assert.NoError(t, Config.Set("calendar.default_event_duration", "120"))
	Config.Reset()

	v, err := Config.get("calendar.default_event_duration")
	assert.NoError(t, err)
	assert.Equal(t, 60, v)
}
