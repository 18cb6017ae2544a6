package app

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/workloadsec/aiomigrate/pkg/config"
	"github.com/workloadsec/aiomigrate/pkg/constants"
)

// Config holds the CLI configuration loaded from flags, environment
// variables and .env files. Endpoints live in the separate YAML file
// read by pkg/config.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Endpoint configuration file, empty to search the default locations
	ConfigFile string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra, which use these values as defaults)
// 2. Environment variables (AIOMIGRATE_*, LOG_*)
// 3. .env files
// 4. Defaults
func LoadConfig() (*Config, error) {
	config.LoadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
	for key, env := range map[string]string{
		"log_level":  "LOG_LEVEL",
		"log_format": "LOG_FORMAT",
		"log_output": "LOG_OUTPUT",
	} {
		// The unprefixed names are shared with other tools
		_ = v.BindEnv(key, constants.EnvPrefix+"_"+env, env)
	}

	return &Config{
		NoColor:    v.GetBool("no_color"),
		Format:     v.GetString("format"),
		ConfigFile: v.GetString("config"),
		LogLevel:   v.GetString("log_level"),
		LogFormat:  v.GetString("log_format"),
		LogOutput:  v.GetString("log_output"),
	}, nil
}

