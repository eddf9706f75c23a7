package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the per-request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "refcheck/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// OracleProvider identifies the vendor API behind a language-model name.
type OracleProvider string

const (
	ProviderGemini   OracleProvider = "gemini"
	ProviderDeepSeek OracleProvider = "deepseek"
	ProviderClaude   OracleProvider = "claude"
)

// ModelConfig maps one selectable model name to its provider.
type ModelConfig struct {
	Name     string         `json:"name" yaml:"name" mapstructure:"name"`
	Provider OracleProvider `json:"provider" yaml:"provider" mapstructure:"provider"`
}

// OracleConfig holds settings for the language-model oracle.
type OracleConfig struct {
	// DefaultModel is used when a request names no model (default "gemini-1.5-pro").
	DefaultModel string `json:"default_model" yaml:"default_model" mapstructure:"default_model"`

	// Models lists the selectable models. When empty the built-in table is used.
	Models []ModelConfig `json:"models,omitempty" yaml:"models,omitempty" mapstructure:"models"`

	// Timeout bounds one completion call (default 10s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxTokens caps completion length for providers that require it (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// GeminiAPIKey authenticates Gemini models.
	GeminiAPIKey string `json:"gemini_api_key,omitempty" yaml:"gemini_api_key,omitempty" mapstructure:"gemini_api_key"`

	// DeepSeekAPIKey authenticates DeepSeek models.
	DeepSeekAPIKey string `json:"deepseek_api_key,omitempty" yaml:"deepseek_api_key,omitempty" mapstructure:"deepseek_api_key"`

	// AnthropicAPIKey authenticates Claude models.
	AnthropicAPIKey string `json:"anthropic_api_key,omitempty" yaml:"anthropic_api_key,omitempty" mapstructure:"anthropic_api_key"`
}

// LookupConfig holds settings for DOI resolution and bibliographic search.
type LookupConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// RateLimit is the request rate per provider in requests per second
	// (default 5). Zero disables limiting.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit"`

	// MaxRetries is the number of retries on HTTP 429 (default 0, no retry).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// MatchThreshold is the minimum token-set similarity (0-100) a search
	// hit's title must exceed (default 85).
	MatchThreshold int `json:"match_threshold" yaml:"match_threshold" mapstructure:"match_threshold"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty" mapstructure:"semantic_scholar_api_key"`

	// CrossRefMailto joins the CrossRef polite pool when set.
	CrossRefMailto string `json:"crossref_mailto,omitempty" yaml:"crossref_mailto,omitempty" mapstructure:"crossref_mailto"`

	// OpenAlexEmail joins the OpenAlex polite pool when set.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty" mapstructure:"openalex_email"`
}

// PacingConfig holds the fixed delays between per-reference oracle and
// lookup calls. Zero values disable pacing.
type PacingConfig struct {
	ParseDelay  time.Duration `json:"parse_delay" yaml:"parse_delay" mapstructure:"parse_delay"`
	FormatDelay time.Duration `json:"format_delay" yaml:"format_delay" mapstructure:"format_delay"`
	VerifyDelay time.Duration `json:"verify_delay" yaml:"verify_delay" mapstructure:"verify_delay"`
}

// CacheBackend selects where lookup results are memoized.
type CacheBackend string

const (
	CacheNone   CacheBackend = "none"
	CacheMemory CacheBackend = "memory"
	CacheSQLite CacheBackend = "sqlite"
	CacheRedis  CacheBackend = "redis"
)

// CacheConfig holds settings for the lookup cache.
type CacheConfig struct {
	// Backend selects the store: none, memory, sqlite, or redis (default memory).
	Backend CacheBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// TTL is how long a cached lookup stays valid (default 24h).
	TTL time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`

	// Path is the SQLite database file (default "refcheck-cache.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// MaxEntries caps the memory backend (default 10000). The least
	// recently used entry is evicted when full.
	MaxEntries int `json:"max_entries" yaml:"max_entries" mapstructure:"max_entries"`

	// RedisAddr is the Redis server address (default "localhost:6379").
	RedisAddr string `json:"redis_addr" yaml:"redis_addr" mapstructure:"redis_addr"`

	// RedisPassword authenticates to Redis.
	RedisPassword string `json:"redis_password,omitempty" yaml:"redis_password,omitempty" mapstructure:"redis_password"`

	// RedisDB selects the Redis logical database.
	RedisDB int `json:"redis_db" yaml:"redis_db" mapstructure:"redis_db"`
}

// ExtractorBackend identifies the PDF text extraction tool.
type ExtractorBackend string

const (
	ExtractorNative     ExtractorBackend = "native"
	ExtractorMarkitdown ExtractorBackend = "markitdown"
)

// DocumentConfig holds settings for reading uploaded documents.
type DocumentConfig struct {
	// Backend selects the extractor: native or markitdown (default native).
	Backend ExtractorBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// MarkitdownImage is the container image used by the markitdown
	// backend (default "markitdown:latest").
	MarkitdownImage string `json:"markitdown_image" yaml:"markitdown_image" mapstructure:"markitdown_image"`
}

// ServerConfig holds settings for the HTTP streaming service.
type ServerConfig struct {
	// Addr is the listen address (default ":8000").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// MaxUploadBytes caps the uploaded document size (default 32 MiB).
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`

	// AllowOrigins lists CORS origins; "*" allows any (default the local
	// frontend on port 3000).
	AllowOrigins []string `json:"allow_origins" yaml:"allow_origins" mapstructure:"allow_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is debug, info, warn, or error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is text, json, or logfmt (default text).
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups every component configuration.
type Config struct {
	Oracle   OracleConfig   `json:"oracle" yaml:"oracle" mapstructure:"oracle"`
	Lookup   LookupConfig   `json:"lookup" yaml:"lookup" mapstructure:"lookup"`
	Pacing   PacingConfig   `json:"pacing" yaml:"pacing" mapstructure:"pacing"`
	Cache    CacheConfig    `json:"cache" yaml:"cache" mapstructure:"cache"`
	Document DocumentConfig `json:"document" yaml:"document" mapstructure:"document"`
	Server   ServerConfig   `json:"server" yaml:"server" mapstructure:"server"`
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
}

// Default values applied by WithDefaults.
const (
	DefaultModel          = "gemini-1.5-pro"
	DefaultUserAgent      = "refcheck/0.1"
	DefaultMatchThreshold = 85
)

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	return Config{}.WithDefaults()
}

// WithDefaults fills zero-valued fields with their defaults. Pacing is
// left alone when any delay is set so a caller can zero individual delays.
func (c Config) WithDefaults() Config {
	if c.Oracle.DefaultModel == "" {
		c.Oracle.DefaultModel = DefaultModel
	}
	if c.Oracle.Timeout == 0 {
		c.Oracle.Timeout = 10 * time.Second
	}
	if c.Oracle.MaxTokens == 0 {
		c.Oracle.MaxTokens = 4096
	}
	if c.Lookup.Timeout == 0 {
		c.Lookup.Timeout = 10 * time.Second
	}
	if c.Lookup.UserAgent == "" {
		c.Lookup.UserAgent = DefaultUserAgent
	}
	if c.Lookup.RateLimit == 0 {
		c.Lookup.RateLimit = 5
	}
	if c.Lookup.MatchThreshold == 0 {
		c.Lookup.MatchThreshold = DefaultMatchThreshold
	}
	if c.Pacing == (PacingConfig{}) {
		c.Pacing = PacingConfig{
			ParseDelay:  50 * time.Millisecond,
			FormatDelay: 50 * time.Millisecond,
			VerifyDelay: 100 * time.Millisecond,
		}
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheMemory
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 24 * time.Hour
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 10000
	}
	if c.Cache.Path == "" {
		c.Cache.Path = "refcheck-cache.db"
	}
	if c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = "localhost:6379"
	}
	if c.Document.Backend == "" {
		c.Document.Backend = ExtractorNative
	}
	if c.Document.MarkitdownImage == "" {
		c.Document.MarkitdownImage = "markitdown:latest"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Server.MaxUploadBytes == 0 {
		c.Server.MaxUploadBytes = 32 << 20
	}
	if len(c.Server.AllowOrigins) == 0 {
		c.Server.AllowOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	return c
}
