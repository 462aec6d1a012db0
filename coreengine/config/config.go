// Package config loads the agent configuration from a yaml file with
// environment-variable overrides (COSTCARE_ prefix) and compiled-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds everything the agent needs at startup.
type Config struct {
	// Gemini
	GoogleAPIKey   string  `mapstructure:"google_api_key"`
	ModelName      string  `mapstructure:"model_name"`
	EmbeddingModel string  `mapstructure:"embedding_model"`
	Temperature    float32 `mapstructure:"temperature"`

	// Google Calendar
	CredentialsFile string `mapstructure:"credentials_file"`
	CalendarID      string `mapstructure:"calendar_id"`
	Timezone        string `mapstructure:"timezone"`
	MaxSlots        int    `mapstructure:"max_slots"`

	// Knowledge base
	KnowledgeDBPath string `mapstructure:"knowledge_db_path"`
	KnowledgeDir    string `mapstructure:"knowledge_dir"`
	ChunkSize       int    `mapstructure:"chunk_size"`
	ChunkOverlap    int    `mapstructure:"chunk_overlap"`
	TopK            int    `mapstructure:"top_k"`

	// Prompts
	PromptDir string `mapstructure:"prompt_dir"`

	// Surfaces and observability
	HTTPAddr     string `mapstructure:"http_addr"`
	LogLevel     string `mapstructure:"log_level"`
	Development  bool   `mapstructure:"development"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// Load reads configuration. path may name a specific yaml file; when empty,
// agent.yaml is looked up in . and ./config, and a missing file is fine
// (defaults + environment only).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("agent")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("COSTCARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so environment overrides bind even without
// a config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("google_api_key", "")
	v.SetDefault("model_name", "gemini-1.5-flash")
	v.SetDefault("embedding_model", "text-embedding-004")
	v.SetDefault("temperature", 0.7)

	v.SetDefault("credentials_file", "credentials.json")
	v.SetDefault("calendar_id", "")
	v.SetDefault("timezone", "Europe/Kyiv")
	v.SetDefault("max_slots", 5)

	v.SetDefault("knowledge_db_path", "knowledge.db")
	v.SetDefault("knowledge_dir", "knowledge")
	v.SetDefault("chunk_size", 1000)
	v.SetDefault("chunk_overlap", 200)
	v.SetDefault("top_k", 3)

	v.SetDefault("prompt_dir", "prompts")

	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("development", false)
	v.SetDefault("otlp_endpoint", "")
}

// Validate checks the fields required to actually run the agent.
func (c *Config) Validate() error {
	var problems []string

	if c.GoogleAPIKey == "" {
		problems = append(problems, "google_api_key is required (COSTCARE_GOOGLE_API_KEY)")
	}
	if c.CalendarID == "" {
		problems = append(problems, "calendar_id is required (COSTCARE_CALENDAR_ID)")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		problems = append(problems, fmt.Sprintf("temperature %v out of range [0, 2]", c.Temperature))
	}
	if c.ChunkSize <= 0 {
		problems = append(problems, "chunk_size must be positive")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		problems = append(problems, "chunk_overlap must be in [0, chunk_size)")
	}
	if c.TopK <= 0 {
		problems = append(problems, "top_k must be positive")
	}
	if c.MaxSlots <= 0 {
		problems = append(problems, "max_slots must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}
