package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	app := cfg.GetApp()
	if app.Name != "Quick Email Triage" {
		t.Errorf("app name = %q", app.Name)
	}
	if app.Version == "" {
		t.Error("app version is empty")
	}

	if provider := cfg.GetLLM().Provider; provider != "local" {
		t.Errorf("llm provider = %q, want local", provider)
	}

	server := cfg.GetServer()
	if server.ListenAddress != "0.0.0.0:4000" {
		t.Errorf("listen address = %q", server.ListenAddress)
	}
	if server.MaxBodyBytes != 10*1024*1024 {
		t.Errorf("max body bytes = %d", server.MaxBodyBytes)
	}
	if server.Debug {
		t.Error("debug defaults to true")
	}

	smtp := cfg.GetSMTP()
	if smtp.Enabled {
		t.Error("smtp defaults to enabled")
	}
	if smtp.ListenAddress != "0.0.0.0:10025" {
		t.Errorf("smtp listen address = %q", smtp.ListenAddress)
	}
	if smtp.ReadTimeout != 10*time.Second {
		t.Errorf("smtp read timeout = %v", smtp.ReadTimeout)
	}

	local := cfg.GetLocal()
	if local.BaseURL != "http://localhost:11434" {
		t.Errorf("local base url = %q", local.BaseURL)
	}
	if local.Model != "gemma3:270m" {
		t.Errorf("local model = %q", local.Model)
	}
	if local.Timeout != 120*time.Second {
		t.Errorf("local timeout = %v", local.Timeout)
	}

	classifier := cfg.GetClassifier()
	if classifier.Prompt == "" {
		t.Error("classifier prompt is empty")
	}
	if classifier.MaxPromptChars != 2000 {
		t.Errorf("max prompt chars = %d", classifier.MaxPromptChars)
	}
	if classifier.ClassificationMaxTokens != 20 {
		t.Errorf("classification max tokens = %d", classifier.ClassificationMaxTokens)
	}
	if classifier.ReplyMaxTokens != 200 {
		t.Errorf("reply max tokens = %d", classifier.ReplyMaxTokens)
	}
	// The permissive top_p from the original deployment is preserved
	if classifier.TopP != 10.0 {
		t.Errorf("top_p = %v, want 10.0", classifier.TopP)
	}
	if len(classifier.ProductiveSignals) != 5 || len(classifier.UnproductiveSignals) != 5 {
		t.Errorf("signal tables = %d/%d entries, want 5/5",
			len(classifier.ProductiveSignals), len(classifier.UnproductiveSignals))
	}

	fallback := cfg.GetFallback()
	if len(fallback.ProductiveKeywords) == 0 || len(fallback.UnproductiveKeywords) == 0 {
		t.Error("fallback keyword tables are empty")
	}

	replies := cfg.GetReplies()
	if replies.Mode != "template" {
		t.Errorf("replies mode = %q", replies.Mode)
	}
	if len(replies.Produtivo) != 3 || len(replies.Improdutivo) != 3 {
		t.Errorf("reply tables = %d/%d entries, want 3/3",
			len(replies.Produtivo), len(replies.Improdutivo))
	}
	if replies.AttachmentMaxChars != 1500 {
		t.Errorf("attachment max chars = %d", replies.AttachmentMaxChars)
	}
	if replies.AckWithAttachment == "" || replies.AckWithoutAttachment == "" {
		t.Error("acknowledgement replies are empty")
	}

	cache := cfg.GetCache()
	if !cache.Enabled {
		t.Error("cache defaults to disabled")
	}
	if cache.Type != "memory" {
		t.Errorf("cache type = %q", cache.Type)
	}
	if cache.TTL != 24*time.Hour {
		t.Errorf("cache ttl = %v", cache.TTL)
	}
	if cache.CleanupFrequency != time.Hour {
		t.Errorf("cache cleanup frequency = %v", cache.CleanupFrequency)
	}

	mongo := cfg.GetMongo()
	if mongo.Enabled {
		t.Error("mongo defaults to enabled")
	}
	if mongo.Database != "quick_email" {
		t.Errorf("mongo database = %q", mongo.Database)
	}
	if mongo.Timeout != 10*time.Second {
		t.Errorf("mongo timeout = %v", mongo.Timeout)
	}

	breaker := cfg.GetBreaker()
	if !breaker.Enabled {
		t.Error("breaker defaults to disabled")
	}
	if breaker.MinRequests != 3 {
		t.Errorf("breaker min requests = %d", breaker.MinRequests)
	}
	if breaker.FailureRatio != 0.6 {
		t.Errorf("breaker failure ratio = %v", breaker.FailureRatio)
	}
	if breaker.OpenTimeout != 30*time.Second {
		t.Errorf("breaker open timeout = %v", breaker.OpenTimeout)
	}
	if breaker.MaxHalfOpen != 1 {
		t.Errorf("breaker max half open = %d", breaker.MaxHalfOpen)
	}

	if !cfg.GetBool("metrics.enabled") {
		t.Error("metrics default to disabled")
	}
}

func TestMalformedDurationsFallBack(t *testing.T) {
	v := NewEmptyViper()
	v.Set("cache.ttl", "not-a-duration")
	v.Set("cache.cleanup_frequency", "also-bad")
	v.Set("breaker.open_timeout", "garbage")
	v.Set("mongo.timeout", "nope")
	v.Set("local.timeout", "broken")
	v.Set("server.smtp.read_timeout", "bad")
	cfg := NewFromViper(v)

	if got := cfg.GetCache().TTL; got != 24*time.Hour {
		t.Errorf("cache ttl = %v, want the 24h fallback", got)
	}
	if got := cfg.GetCache().CleanupFrequency; got != time.Hour {
		t.Errorf("cleanup frequency = %v, want the 1h fallback", got)
	}
	if got := cfg.GetBreaker().OpenTimeout; got != 30*time.Second {
		t.Errorf("open timeout = %v, want the 30s fallback", got)
	}
	if got := cfg.GetMongo().Timeout; got != 10*time.Second {
		t.Errorf("mongo timeout = %v, want the 10s fallback", got)
	}
	if got := cfg.GetLocal().Timeout; got != 120*time.Second {
		t.Errorf("local timeout = %v, want the 120s fallback", got)
	}
	if got := cfg.GetSMTP().ReadTimeout; got != 10*time.Second {
		t.Errorf("smtp read timeout = %v, want the 10s fallback", got)
	}
}

func TestOverridesWinOverDefaults(t *testing.T) {
	v := NewEmptyViper()
	v.Set("llm.provider", "openai")
	v.Set("openai.api_key", "sk-test")
	v.Set("server.debug", true)
	v.Set("cache.enabled", false)
	v.Set("replies.mode", "model")
	cfg := NewFromViper(v)

	if got := cfg.GetLLM().Provider; got != "openai" {
		t.Errorf("provider = %q, want openai", got)
	}
	if got := cfg.GetOpenAI().APIKey; got != "sk-test" {
		t.Errorf("api key = %q", got)
	}
	if !cfg.GetServer().Debug {
		t.Error("debug override was ignored")
	}
	if cfg.GetCache().Enabled {
		t.Error("cache enabled override was ignored")
	}
	if got := cfg.GetReplies().Mode; got != "model" {
		t.Errorf("replies mode = %q, want model", got)
	}
}

func TestGetDuration(t *testing.T) {
	v := NewEmptyViper()
	v.Set("custom.window", "90s")
	v.Set("custom.broken", "ninety seconds")
	cfg := NewFromViper(v)

	d, err := cfg.GetDuration("custom.window")
	if err != nil {
		t.Fatalf("GetDuration() error = %v", err)
	}
	if d != 90*time.Second {
		t.Errorf("GetDuration() = %v, want 90s", d)
	}

	if _, err := cfg.GetDuration("custom.broken"); err == nil {
		t.Error("GetDuration() error = nil, want parse failure")
	}
}
