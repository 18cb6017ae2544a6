package app

import (
	"testing"
)

// TestLoadConfig verifies basic config loading.
func TestLoadConfig(t *testing.T) {
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("AIOMIGRATE_LOG_FORMAT", "")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.LogFormat != "auto" {
		t.Errorf("LogFormat = %q, want auto", config.LogFormat)
	}
	if config.LogOutput == "" {
		t.Error("LogOutput not set to default")
	}
}

// TestConfig_EnvironmentVariables verifies environment variable loading.
func TestConfig_EnvironmentVariables(t *testing.T) {
	t.Setenv("AIOMIGRATE_FORMAT", "json")
	t.Setenv("AIOMIGRATE_NO_COLOR", "true")
	t.Setenv("AIOMIGRATE_CONFIG", "/etc/aiomigrate/config.yaml")
	t.Setenv("LOG_LEVEL", "debug")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.Format != "json" {
		t.Errorf("Format = %s, want json", config.Format)
	}
	if !config.NoColor {
		t.Error("AIOMIGRATE_NO_COLOR not loaded")
	}
	if config.ConfigFile != "/etc/aiomigrate/config.yaml" {
		t.Errorf("ConfigFile = %s", config.ConfigFile)
	}
	if config.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", config.LogLevel)
	}
}

// TestConfig_PrefixedLogLevelWins verifies the prefixed variable takes precedence.
func TestConfig_PrefixedLogLevelWins(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("AIOMIGRATE_LOG_LEVEL", "error")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.LogLevel != "error" {
		t.Errorf("LogLevel = %s, want error", config.LogLevel)
	}
}
