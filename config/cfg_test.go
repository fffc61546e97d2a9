package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rupor-github/gencfg"

	"dsx2srt/common"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
}

func TestLoadConfiguration_EmbeddedDestinations(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("embedded defaults do not load: %v", err)
	}

	tests := []struct {
		name  string
		value string
		base  string
	}{
		{"log file", cfg.Logging.FileLogger.Destination, "dsx2srt.log"},
		{"report", cfg.Reporting.Destination, "dsx2srt-report.zip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if strings.Contains(tt.value, "{{") {
				t.Errorf("destination was not expanded: %q", tt.value)
			}
			if filepath.Base(tt.value) != tt.base {
				t.Errorf("destination = %q, want file %q", tt.value, tt.base)
			}
		})
	}
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	doc := cfg.Document
	if doc.Extension != ".dsx" {
		t.Errorf("Extension = %q, want .dsx", doc.Extension)
	}
	if doc.MissingFrameRate != common.MissingFrameRateFail {
		t.Errorf("MissingFrameRate = %s, want fail", doc.MissingFrameRate)
	}
	if doc.DuplicateItalicBreaks {
		t.Error("DuplicateItalicBreaks should be off by default")
	}
	if doc.Italic.Open != "<i>" || doc.Italic.Close != "</i>" {
		t.Errorf("Italic markers = %q/%q", doc.Italic.Open, doc.Italic.Close)
	}
	if len(doc.OutputNameTemplate) != 0 {
		t.Errorf("OutputNameTemplate = %q, want empty", doc.OutputNameTemplate)
	}
	if cfg.Logging.FileLogger.Level != "none" {
		t.Errorf("File logger level = %q, want none", cfg.Logging.FileLogger.Level)
	}
	if !strings.HasSuffix(cfg.Reporting.Destination, "dsx2srt-report.zip") {
		t.Errorf("Report destination = %q", cfg.Reporting.Destination)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeConfig(t, `version: 1
document:
  extension: ".uxml"
  missing_frame_rate: milliseconds
  duplicate_italic_breaks: true
  italic:
    open: "{i}"
    close: "{/i}"
  output_name_template: "{{ .Name }}-{{ .Cues }}"
logging:
  console:
    level: debug
  file:
    level: debug
    destination: `+filepath.Join(tmpDir, "test.log")+`
    mode: append
reporting:
  destination: `+filepath.Join(tmpDir, "test-report.zip")+`
`)

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	doc := cfg.Document
	if doc.Extension != ".uxml" {
		t.Errorf("Extension = %q, want .uxml", doc.Extension)
	}
	if doc.MissingFrameRate != common.MissingFrameRateMilliseconds {
		t.Errorf("MissingFrameRate = %s, want milliseconds", doc.MissingFrameRate)
	}
	if !doc.DuplicateItalicBreaks {
		t.Error("Expected DuplicateItalicBreaks to be true")
	}
	if doc.Italic.Open != "{i}" || doc.Italic.Close != "{/i}" {
		t.Errorf("Italic markers = %q/%q", doc.Italic.Open, doc.Italic.Close)
	}
	if doc.OutputNameTemplate != "{{ .Name }}-{{ .Cues }}" {
		t.Errorf("OutputNameTemplate = %q, must not be expanded", doc.OutputNameTemplate)
	}
	if cfg.Logging.FileLogger.Mode != "append" {
		t.Errorf("File logger mode = %q, want append", cfg.Logging.FileLogger.Mode)
	}
}

func TestLoadConfiguration_MergeWithDefaults(t *testing.T) {
	configPath := writeConfig(t, `version: 1
document:
  duplicate_italic_breaks: true
`)

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if !cfg.Document.DuplicateItalicBreaks {
		t.Error("Expected DuplicateItalicBreaks to be true from config file")
	}
	if cfg.Document.Extension != ".dsx" {
		t.Errorf("Extension = %q, default should be kept", cfg.Document.Extension)
	}
	if cfg.Document.Italic.Open != "<i>" {
		t.Errorf("Italic open = %q, default should be kept", cfg.Document.Italic.Open)
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "version: 1\ndocument:\n  extension: .dsx\n  invalid indent\n"},
		{"unknown field", "version: 1\nunknown_field: value\n"},
		{"invalid version", "version: 2\n"},
		{"bad extension", "version: 1\ndocument:\n  extension: dsx\n"},
		{"empty italic marker", "version: 1\ndocument:\n  italic:\n    open: \"\"\n"},
		{"bad frame rate policy", "version: 1\ndocument:\n  missing_frame_rate: guess\n"},
		{"bad log level", "version: 1\nlogging:\n  console:\n    level: verbose\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.content)); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestLoadConfiguration_BadFrameRatePolicyError(t *testing.T) {
	_, err := LoadConfiguration(writeConfig(t, "version: 1\ndocument:\n  missing_frame_rate: guess\n"))
	if !errors.Is(err, common.ErrInvalidMissingFrameRate) {
		t.Errorf("error = %v, want ErrInvalidMissingFrameRate", err)
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	called := false
	option := func(opts *gencfg.ProcessingOptions) {
		called = true
	}

	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
	if !called {
		t.Error("option was not applied")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Prepare() returned empty data")
	}
	if _, err := unmarshalConfig(data, &Config{}, true); err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Document.MissingFrameRate = common.MissingFrameRateMilliseconds

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if !strings.Contains(string(data), "missing_frame_rate: milliseconds") {
		t.Errorf("enum must be dumped by name:\n%s", data)
	}

	cfg2, err := unmarshalConfig(data, &Config{}, false)
	if err != nil {
		t.Fatalf("Dumped config cannot be loaded: %v", err)
	}
	if cfg2.Document != cfg.Document {
		t.Errorf("Document mismatch after dump/load: got %+v, want %+v", cfg2.Document, cfg.Document)
	}
}

func TestMissingFrameRate_String(t *testing.T) {
	tests := []struct {
		mode     common.MissingFrameRate
		expected string
	}{
		{common.MissingFrameRateFail, "fail"},
		{common.MissingFrameRateMilliseconds, "milliseconds"},
		{common.MissingFrameRate(99), "MissingFrameRate(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.mode.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestCleanFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"episode 01", "episode 01"},
		{"..hidden", "hidden"},
		{"a" + string(os.PathSeparator) + "b", "ab"},
		{"  ", badFileName},
		{"...", badFileName},
		{"x\x00y", "xy"},
	}
	for _, tt := range tests {
		if got := CleanFileName(tt.in); got != tt.want {
			t.Errorf("CleanFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
