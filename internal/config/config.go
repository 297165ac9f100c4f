package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/email-triage/")
	v.AddConfigPath("$HOME/.email-triage")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("QUICK_EMAIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// The original deployment configured Mongo through DB_CONNECTION
	if err := v.BindEnv("mongo.uri", "QUICK_EMAIL_MONGO_URI", "DB_CONNECTION"); err != nil {
		return nil, fmt.Errorf("failed to bind mongo.uri: %w", err)
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Application identity
	v.SetDefault("app.name", "Quick Email Triage")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.description", "Classifies emails as productive or unproductive and suggests replies")

	// Text generation provider defaults
	v.SetDefault("llm.provider", "local")

	// HTTP server defaults
	v.SetDefault("server.listen_address", "0.0.0.0:4000")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.max_body_bytes", 10*1024*1024)
	v.SetDefault("server.debug", false)

	// Optional SMTP ingestion tap
	v.SetDefault("server.smtp.enabled", false)
	v.SetDefault("server.smtp.listen_address", "0.0.0.0:10025")
	v.SetDefault("server.smtp.domain", "localhost")
	v.SetDefault("server.smtp.read_timeout", "10s")
	v.SetDefault("server.smtp.write_timeout", "10s")
	v.SetDefault("server.smtp.max_message_bytes", 10*1024*1024)

	// Local (Ollama-style) backend defaults
	v.SetDefault("local.base_url", "http://localhost:11434")
	v.SetDefault("local.model", "gemma3:270m")
	v.SetDefault("local.timeout", "120s")

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-3-haiku-20240307-v1:0")

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-1.5-flash")

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model_name", "gpt-4o-mini")

	// Classifier defaults. top_p of 10 is preserved from the original
	// deployment even though valid nucleus sampling values are <= 1.0;
	// startup warns about it instead of silently correcting, so operators
	// can decide whether to keep the permissive sampling.
	v.SetDefault("classifier.prompt", "Você é um assistente especializado em classificar emails corporativos. "+
		"Sua tarefa é classificar emails como PRODUTIVO ou IMPRODUTIVO baseado no conteúdo e intenção. "+
		"PRODUTIVO: Emails com perguntas específicas, solicitações claras, interesse genuíno em produtos/serviços, "+
		"propostas de negócio, ou que requerem ação específica. "+
		"IMPRODUTIVO: Emails genéricos, spam, promoções não solicitadas, conteúdo vago sem propósito claro, "+
		"ou que não requerem resposta específica. "+
		"Analise o conteúdo e responda apenas com a classificação.")
	v.SetDefault("classifier.max_prompt_chars", 2000)
	v.SetDefault("classifier.classification_max_tokens", 20)
	v.SetDefault("classifier.reply_max_tokens", 200)
	v.SetDefault("classifier.temperature", 0.3)
	v.SetDefault("classifier.top_p", 10.0)
	v.SetDefault("classifier.repetition_penalty", 1.1)
	v.SetDefault("classifier.productive_signals", []string{"PRODUTIVO", "PRODUCTIVE", "POSITIVO", "ÚTIL", "RELEVANTE"})
	v.SetDefault("classifier.unproductive_signals", []string{"IMPRODUTIVO", "UNPRODUCTIVE", "NEGATIVO", "SPAM", "IRRELEVANTE"})
	v.SetDefault("classifier.tiebreak_keywords", []string{"pergunta", "solicitação", "interesse", "comprar", "preço"})

	// Fallback heuristic keyword tables
	v.SetDefault("fallback.productive_keywords", []string{
		"pergunta", "dúvida", "informação", "orçamento", "preço",
		"comprar", "adquirir", "contratar", "serviço", "produto",
		"reunião", "agenda", "proposta", "projeto", "colaboração",
	})
	v.SetDefault("fallback.unproductive_keywords", []string{
		"promoção", "desconto", "oferta", "grátis", "ganhar",
		"clique", "cadastre", "newsletter", "spam", "marketing",
	})

	// Suggested reply defaults
	v.SetDefault("replies.mode", "template")
	v.SetDefault("replies.produtivo", []string{
		"Obrigado pelo seu email! Analisaremos sua solicitação e retornaremos em breve com mais informações. Estamos à disposição para esclarecer qualquer dúvida.",
		"Agradecemos seu contato. Sua mensagem foi recebida e será analisada pela nossa equipe. Retornaremos assim que possível.",
		"Prezado(a), recebemos sua mensagem e agradecemos o interesse. Nossa equipe fará a análise necessária e entrará em contato em breve.",
	})
	v.SetDefault("replies.improdutivo", []string{
		"Agradecemos seu contato. Para melhor atendê-lo, solicitamos que forneça mais detalhes específicos sobre sua necessidade.",
		"Obrigado por entrar em contato. Para agilizar nosso atendimento, por favor, seja mais específico sobre o que precisa.",
		"Recebemos sua mensagem. Para oferecer a melhor assistência, precisamos de informações mais detalhadas sobre sua solicitação.",
	})
	v.SetDefault("replies.instruction", "Você é um assistente de e-mails. Leia atentamente o conteúdo do e-mail e dos anexos (se houver). "+
		"Gere uma resposta clara, objetiva e útil, considerando o contexto e o objetivo do remetente. "+
		"Se o anexo contiver informações relevantes, utilize-as para enriquecer sua resposta. "+
		"Se não for possível responder, peça mais informações de forma educada.\n")
	v.SetDefault("replies.ack_with_attachment", "Recebemos seu e-mail e o anexo. Em breve retornaremos com uma resposta detalhada.")
	v.SetDefault("replies.ack_without_attachment", "Recebemos seu e-mail. Em breve retornaremos com uma resposta.")
	v.SetDefault("replies.attachment_max_chars", 1500)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_frequency", "1h")
	v.SetDefault("cache.sqlite_path", "/data/triage_cache.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/email_triage")

	// Mongo audit store defaults
	v.SetDefault("mongo.enabled", false)
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "quick_email")
	v.SetDefault("mongo.collection", "emails")
	v.SetDefault("mongo.timeout", "10s")

	// Circuit breaker defaults
	v.SetDefault("breaker.enabled", true)
	v.SetDefault("breaker.min_requests", 3)
	v.SetDefault("breaker.failure_ratio", 0.6)
	v.SetDefault("breaker.open_timeout", "30s")
	v.SetDefault("breaker.max_half_open", 1)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
