package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/errors"
)

// Config holds the application configuration loaded from config files,
// environment variables, .env files and flags.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Discovery
	Roots     []string
	Extension string
	Suffixes  []string

	// History
	HistoryBackend string
	HistoryFile    string

	// Export
	ExportWorkers int

	// Logging configuration. LogLevel is the --log-level flag; EnvLogLevel
	// comes from the environment or the config file.
	LogLevel    string
	EnvLogLevel string
	LogFormat   string
	LogOutput   string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (applied later by UpdateFromFlags)
// 2. Environment variables (TABLEMERGE_*)
// 3. .env files
// 4. Config file (configFile, or .tablemerge.yaml in $HOME or the working directory)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("extension", constants.DefaultExtension)
	v.SetDefault("history.backend", constants.HistoryBackendJSON)
	v.SetDefault("export.workers", constants.DefaultExportWorkers)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "cannot read "+configFile, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(constants.ConfigName)
		// a missing default config file is fine
		_ = v.ReadInConfig()
	}

	config := &Config{
		ConfigFile: v.ConfigFileUsed(),

		Roots:     v.GetStringSlice("roots"),
		Extension: v.GetString("extension"),
		Suffixes:  v.GetStringSlice("suffixes"),

		HistoryBackend: strings.ToLower(v.GetString("history.backend")),
		HistoryFile:    v.GetString("history.path"),

		ExportWorkers: v.GetInt("export.workers"),

		EnvLogLevel: firstNonEmpty(v.GetString("log_level"), os.Getenv("LOG_LEVEL")),
		LogFormat:   firstNonEmpty(os.Getenv("LOG_FORMAT"), v.GetString("log_format")),
		LogOutput:   firstNonEmpty(os.Getenv("LOG_OUTPUT"), v.GetString("log_output")),
		NoColor:     os.Getenv("NO_COLOR") != "",
	}

	if config.ExportWorkers <= 0 {
		config.ExportWorkers = constants.DefaultExportWorkers
	}

	return config, nil
}

// Flags carries the persistent flag values of a command invocation.
type Flags struct {
	Verbose        bool
	Quiet          bool
	NoColor        bool
	Format         string
	LogLevel       string
	Roots          []string
	HistoryFile    string
	HistoryBackend string
}

// UpdateFromFlags updates config values from parsed command flags so that
// flags take precedence over the config file and environment.
func (c *Config) UpdateFromFlags(f Flags) {
	c.Verbose = f.Verbose
	c.Quiet = f.Quiet
	c.NoColor = c.NoColor || f.NoColor
	if f.Format != "" {
		c.Format = f.Format
	}
	if f.LogLevel != "" {
		c.LogLevel = f.LogLevel
	}
	if len(f.Roots) > 0 {
		c.Roots = f.Roots
	}
	if f.HistoryFile != "" {
		c.HistoryFile = f.HistoryFile
	}
	if f.HistoryBackend != "" {
		c.HistoryBackend = strings.ToLower(f.HistoryBackend)
	}
}

// HistoryPath returns the history location, defaulting by backend.
func (c *Config) HistoryPath() string {
	if c.HistoryFile != "" {
		return c.HistoryFile
	}
	if c.HistoryBackend == constants.HistoryBackendSQLite {
		return constants.DefaultHistoryDB
	}
	return constants.DefaultHistoryFile
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
