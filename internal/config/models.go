package config

import "time"

// AppConfig identifies the service in health and index payloads
type AppConfig struct {
	Name        string
	Version     string
	Description string
}

// LLMConfig represents the configuration for the text generation provider
type LLMConfig struct {
	Provider string
}

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	ListenAddress  string
	AllowedOrigins []string
	MaxBodyBytes   int
	Debug          bool
}

// SMTPConfig represents the optional SMTP ingestion listener configuration
type SMTPConfig struct {
	Enabled         bool
	ListenAddress   string
	Domain          string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxMessageBytes int
}

// LocalConfig represents the configuration for the local Ollama-style backend
type LocalConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region  string
	ModelID string
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey    string
	ModelName string
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey    string
	ModelName string
}

// ClassifierConfig carries the prompt and sampling parameters for the
// classification pipeline. TopP may exceed 1.0 (see setDefaults).
type ClassifierConfig struct {
	Prompt                  string
	MaxPromptChars          int
	ClassificationMaxTokens int
	ReplyMaxTokens          int
	Temperature             float32
	TopP                    float32
	RepetitionPenalty       float32
	ProductiveSignals       []string
	UnproductiveSignals     []string
	TiebreakKeywords        []string
}

// FallbackConfig carries the keyword tables for the heuristic scorer
type FallbackConfig struct {
	ProductiveKeywords   []string
	UnproductiveKeywords []string
}

// RepliesConfig carries the canned reply table and reply generation settings
type RepliesConfig struct {
	Mode                 string
	Produtivo            []string
	Improdutivo          []string
	Instruction          string
	AckWithAttachment    string
	AckWithoutAttachment string
	AttachmentMaxChars   int
}

// CacheConfig represents the result cache configuration
type CacheConfig struct {
	Enabled          bool
	Type             string
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
}

// MongoConfig represents the audit store configuration
type MongoConfig struct {
	Enabled    bool
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// BreakerConfig represents the circuit breaker configuration around model calls
type BreakerConfig struct {
	Enabled      bool
	MinRequests  uint32
	FailureRatio float64
	OpenTimeout  time.Duration
	MaxHalfOpen  uint32
}

// GetApp returns the application identity
func (c *Config) GetApp() AppConfig {
	return AppConfig{
		Name:        c.GetString("app.name"),
		Version:     c.GetString("app.version"),
		Description: c.GetString("app.description"),
	}
}

// GetLLM returns the text generation provider configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetServer returns the HTTP server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		ListenAddress:  c.GetString("server.listen_address"),
		AllowedOrigins: c.GetStringSlice("server.allowed_origins"),
		MaxBodyBytes:   c.GetInt("server.max_body_bytes"),
		Debug:          c.GetBool("server.debug"),
	}
}

// GetSMTP returns the SMTP ingestion configuration
func (c *Config) GetSMTP() SMTPConfig {
	readTimeout, err := c.GetDuration("server.smtp.read_timeout")
	if err != nil {
		readTimeout = 10 * time.Second
	}
	writeTimeout, err := c.GetDuration("server.smtp.write_timeout")
	if err != nil {
		writeTimeout = 10 * time.Second
	}
	return SMTPConfig{
		Enabled:         c.GetBool("server.smtp.enabled"),
		ListenAddress:   c.GetString("server.smtp.listen_address"),
		Domain:          c.GetString("server.smtp.domain"),
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		MaxMessageBytes: c.GetInt("server.smtp.max_message_bytes"),
	}
}

// GetLocal returns the local backend configuration
func (c *Config) GetLocal() LocalConfig {
	timeout, err := c.GetDuration("local.timeout")
	if err != nil {
		timeout = 120 * time.Second
	}
	return LocalConfig{
		BaseURL: c.GetString("local.base_url"),
		Model:   c.GetString("local.model"),
		Timeout: timeout,
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:  c.GetString("bedrock.region"),
		ModelID: c.GetString("bedrock.model_id"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:    c.GetString("gemini.api_key"),
		ModelName: c.GetString("gemini.model_name"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:    c.GetString("openai.api_key"),
		ModelName: c.GetString("openai.model_name"),
	}
}

// GetClassifier returns the classification pipeline configuration
func (c *Config) GetClassifier() ClassifierConfig {
	return ClassifierConfig{
		Prompt:                  c.GetString("classifier.prompt"),
		MaxPromptChars:          c.GetInt("classifier.max_prompt_chars"),
		ClassificationMaxTokens: c.GetInt("classifier.classification_max_tokens"),
		ReplyMaxTokens:          c.GetInt("classifier.reply_max_tokens"),
		Temperature:             float32(c.GetFloat64("classifier.temperature")),
		TopP:                    float32(c.GetFloat64("classifier.top_p")),
		RepetitionPenalty:       float32(c.GetFloat64("classifier.repetition_penalty")),
		ProductiveSignals:       c.GetStringSlice("classifier.productive_signals"),
		UnproductiveSignals:     c.GetStringSlice("classifier.unproductive_signals"),
		TiebreakKeywords:        c.GetStringSlice("classifier.tiebreak_keywords"),
	}
}

// GetFallback returns the fallback scorer configuration
func (c *Config) GetFallback() FallbackConfig {
	return FallbackConfig{
		ProductiveKeywords:   c.GetStringSlice("fallback.productive_keywords"),
		UnproductiveKeywords: c.GetStringSlice("fallback.unproductive_keywords"),
	}
}

// GetReplies returns the reply table and reply generation configuration
func (c *Config) GetReplies() RepliesConfig {
	return RepliesConfig{
		Mode:                 c.GetString("replies.mode"),
		Produtivo:            c.GetStringSlice("replies.produtivo"),
		Improdutivo:          c.GetStringSlice("replies.improdutivo"),
		Instruction:          c.GetString("replies.instruction"),
		AckWithAttachment:    c.GetString("replies.ack_with_attachment"),
		AckWithoutAttachment: c.GetString("replies.ack_without_attachment"),
		AttachmentMaxChars:   c.GetInt("replies.attachment_max_chars"),
	}
}

// GetCache returns the result cache configuration
func (c *Config) GetCache() CacheConfig {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		ttl = 24 * time.Hour
	}
	cleanupFreq, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		cleanupFreq = time.Hour
	}
	return CacheConfig{
		Enabled:          c.GetBool("cache.enabled"),
		Type:             c.GetString("cache.type"),
		TTL:              ttl,
		CleanupFrequency: cleanupFreq,
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
	}
}

// GetMongo returns the audit store configuration
func (c *Config) GetMongo() MongoConfig {
	timeout, err := c.GetDuration("mongo.timeout")
	if err != nil {
		timeout = 10 * time.Second
	}
	return MongoConfig{
		Enabled:    c.GetBool("mongo.enabled"),
		URI:        c.GetString("mongo.uri"),
		Database:   c.GetString("mongo.database"),
		Collection: c.GetString("mongo.collection"),
		Timeout:    timeout,
	}
}

// GetBreaker returns the circuit breaker configuration
func (c *Config) GetBreaker() BreakerConfig {
	openTimeout, err := c.GetDuration("breaker.open_timeout")
	if err != nil {
		openTimeout = 30 * time.Second
	}
	return BreakerConfig{
		Enabled:      c.GetBool("breaker.enabled"),
		MinRequests:  uint32(c.GetInt("breaker.min_requests")),
		FailureRatio: c.GetFloat64("breaker.failure_ratio"),
		OpenTimeout:  openTimeout,
		MaxHalfOpen:  uint32(c.GetInt("breaker.max_half_open")),
	}
}
