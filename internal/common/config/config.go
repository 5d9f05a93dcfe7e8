// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig               `mapstructure:"app"`
	Camunda    CamundaConfig           `mapstructure:"camunda"`
	Database   DatabaseConfig          `mapstructure:"database"`
	Matching   MatchingConfig          `mapstructure:"matching"`
	Completion CompletionConfig        `mapstructure:"completion"`
	Workers    map[string]WorkerConfig `mapstructure:"workers"`
	Registry   RegistryConfig          `mapstructure:"registry"`
	Logging    LoggingConfig           `mapstructure:"logging"`
	Metrics    MetricsConfig           `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	JobsIndex string   `mapstructure:"jobs_index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- Matching pipeline configuration ---

// MatchingConfig holds the knobs of the coarse filter, the re-ranker and the
// assembler. Weights must sum to 1.0.
type MatchingConfig struct {
	ShortlistSize       int          `mapstructure:"shortlist_size"`
	FinalLimit          int          `mapstructure:"final_limit"`
	RecencyCutoffDays   int          `mapstructure:"recency_cutoff_days"`
	ExcludeSavedApplied bool         `mapstructure:"exclude_saved_applied"`
	ProfileCacheTTL     int          `mapstructure:"profile_cache_ttl"` // seconds
	JobPageSize         int          `mapstructure:"job_page_size"`
	UnderLevelPenalty   float64      `mapstructure:"under_level_penalty"`
	Weights             MatchWeights `mapstructure:"weights"`
}

type MatchWeights struct {
	TitleSkill float64 `mapstructure:"title_skill"`
	Salary     float64 `mapstructure:"salary"`
	Leadership float64 `mapstructure:"leadership"`
	Industry   float64 `mapstructure:"industry"`
	Recency    float64 `mapstructure:"recency"`
}

// Sum returns the total of all weights, used by validation.
func (w MatchWeights) Sum() float64 {
	return w.TitleSkill + w.Salary + w.Leadership + w.Industry + w.Recency
}

// CompletionConfig holds settings for the external completion service used by
// the llm-rerank worker.
type CompletionConfig struct {
	Provider   string `mapstructure:"provider"` // "gemini" or "http"
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base_url"` // http provider only
	Timeout    int    `mapstructure:"timeout"`  // milliseconds
	MaxRetries int    `mapstructure:"max_retries"`
}

type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type MetricsConfig struct {
	Address string `mapstructure:"address"`
}
