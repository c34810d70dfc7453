package config

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "TRANSCRIPT_DIGEST_CONFIG"
	databaseDSNEnv     = "DATABASE_DSN"
	logLevelEnv        = "LOG_LEVEL"
	providerEnv        = "SUMMARIZER_PROVIDER"
	mlEndpointEnv      = "ML_INFERENCE_URL"
	mlAPIKeyEnv        = "ML_API_KEY"
	chatGPTAPIKeyEnv   = "CHATGPT_API_KEY"
	chatGPTModelEnv    = "CHATGPT_MODEL"
	geminiAPIKeyEnv    = "GEMINI_API_KEY"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv  = "TELEGRAM_CHAT_ID"
	smtpPasswordEnv    = "SMTP_PASSWORD"
	smtpUsernameEnv    = "SMTP_USERNAME"
	natsURLEnv         = "NATS_URL"
	storageDirEnv      = "STORAGE_DIR"
	summarizerWorkers  = "SUMMARIZER_WORKERS"
	defaultEnvFileName = ".env"
)

// Provider names accepted in summarizer.provider.
const (
	ProviderSeq2Seq = "seq2seq"
	ProviderOpenAI  = "openai"
	ProviderGemini  = "gemini"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Storage       StorageConfig      `yaml:"storage"`
	Source        SourceConfig       `yaml:"source"`
	Summarizer    SummarizerConfig   `yaml:"summarizer"`
	ML            MLConfig           `yaml:"ml"`
	ChatGPT       ChatGPTConfig      `yaml:"chatgpt"`
	Gemini        GeminiConfig       `yaml:"gemini"`
	Notifications NotificationConfig `yaml:"notifications"`
	Batch         BatchConfig        `yaml:"batch"`
}

// LoggingConfig controls the console level and the optional rotated file sink.
type LoggingConfig struct {
	Level      string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMb" validate:"gte=0"`
	MaxBackups int    `yaml:"maxBackups" validate:"gte=0"`
	MaxAgeDays int    `yaml:"maxAgeDays" validate:"gte=0"`
}

// DatabaseConfig describes Postgres connection details. An empty DSN selects file storage.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// StorageConfig points the file repository at its root directory.
type StorageConfig struct {
	Dir string `yaml:"dir" validate:"required"`
}

// SourceConfig selects the scanner strategy and its page template.
type SourceConfig struct {
	Scanner     string            `yaml:"scanner" validate:"required"`
	URLTemplate string            `yaml:"urlTemplate" validate:"required"`
	Timeout     time.Duration     `yaml:"timeout"`
	Options     map[string]string `yaml:"options"`
}

// TopicConfig is one named keyword set.
type TopicConfig struct {
	Name     string   `yaml:"name" validate:"required"`
	Keywords []string `yaml:"keywords" validate:"required,min=1"`
}

// SummarizerConfig tunes the extract-then-condense engine.
type SummarizerConfig struct {
	Provider          string        `yaml:"provider" validate:"oneof=seq2seq openai gemini"`
	Splitter          string        `yaml:"splitter" validate:"oneof=punkt regex"`
	Topics            []TopicConfig `yaml:"topics" validate:"required,min=1,dive"`
	SentencesPerTopic int           `yaml:"sentencesPerTopic" validate:"gte=1"`
	MaxLength         int           `yaml:"maxLength" validate:"gte=1"`
	MinLength         int           `yaml:"minLength" validate:"gte=0,ltefield=MaxLength"`
	Beams             int           `yaml:"beams" validate:"gte=1"`
	EarlyStopping     bool          `yaml:"earlyStopping"`
	MaxInputTokens    int           `yaml:"maxInputTokens" validate:"gte=1"`
	Workers           int           `yaml:"workers" validate:"gte=0"`
	CacheTTL          time.Duration `yaml:"cacheTTL"`
}

// MLConfig describes the self-hosted seq2seq inference service.
type MLConfig struct {
	InferenceURL string        `yaml:"inferenceUrl"`
	APIKey       string        `yaml:"apiKey"`
	Model        string        `yaml:"model"`
	Timeout      time.Duration `yaml:"timeout"`
}

// ChatGPTConfig defines how to contact the OpenAI API.
type ChatGPTConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// GeminiConfig defines how to contact the Gemini API.
type GeminiConfig struct {
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Email    EmailConfig    `yaml:"email"`
	Telegram TelegramConfig `yaml:"telegram"`
	NATS     NATSConfig     `yaml:"nats"`
}

// EmailConfig is the SMTP relay and recipient list. Email is off without a host.
type EmailConfig struct {
	Host       string   `yaml:"host"`
	Port       int      `yaml:"port" validate:"gte=0,lte=65535"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
	From       string   `yaml:"from" validate:"omitempty,email"`
	Recipients []string `yaml:"recipients" validate:"dive,email"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	APIBase  string `yaml:"apiBase"`
}

// NATSConfig enables the summary event publisher when URL is set.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// BatchConfig lists what "All" expands to on the command line.
type BatchConfig struct {
	Year     int      `yaml:"year" validate:"gte=0"`
	Symbols  []string `yaml:"symbols" validate:"required,min=1"`
	Quarters []int    `yaml:"quarters" validate:"required,min=1,dive,min=1,max=4"`
	Force    bool     `yaml:"force"`
}

// Enabled reports whether enough is configured to send mail.
func (e EmailConfig) Enabled() bool {
	return e.Host != "" && len(e.Recipients) > 0
}

// Enabled reports whether the bot token and chat are known.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// Load reads .env (if present), the YAML file named by TRANSCRIPT_DIGEST_CONFIG
// and environment overrides, in that order, on top of defaults.
func Load() (Config, error) {
	if err := godotenv.Load(defaultEnvFileName); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: cannot read %s: %v", defaultEnvFileName, err)
	}

	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if cfg, err = Parse(raw); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML over defaults. Lists given in the document replace the defaults.
func Parse(raw []byte) (Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(raw)) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks struct tags and the provider-specific requirements.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	seen := make(map[string]struct{}, len(c.Summarizer.Topics))
	for _, t := range c.Summarizer.Topics {
		if _, dup := seen[t.Name]; dup {
			return fmt.Errorf("invalid config: duplicate topic %q", t.Name)
		}
		seen[t.Name] = struct{}{}
	}

	switch c.Summarizer.Provider {
	case ProviderSeq2Seq:
		if c.ML.InferenceURL == "" {
			return errors.New("invalid config: ml.inferenceUrl is required for provider seq2seq")
		}
	case ProviderOpenAI:
		if c.ChatGPT.APIKey == "" {
			return errors.New("invalid config: chatgpt api key is required for provider openai")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return errors.New("invalid config: gemini api key is required for provider gemini")
		}
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(storageDirEnv); v != "" {
		c.Storage.Dir = v
	}

	if v := os.Getenv(providerEnv); v != "" {
		c.Summarizer.Provider = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv(summarizerWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Summarizer.Workers = n
		} else {
			log.Printf("config: ignoring %s=%q: %v", summarizerWorkers, v, err)
		}
	}

	if v := os.Getenv(mlEndpointEnv); v != "" {
		c.ML.InferenceURL = v
	}

	if v := os.Getenv(mlAPIKeyEnv); v != "" {
		c.ML.APIKey = v
	}

	if v := os.Getenv(chatGPTAPIKeyEnv); v != "" {
		c.ChatGPT.APIKey = v
	}

	if v := os.Getenv(chatGPTModelEnv); v != "" {
		c.ChatGPT.Model = v
	}

	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.Gemini.APIKey = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(smtpUsernameEnv); v != "" {
		c.Notifications.Email.Username = v
	}

	if v := os.Getenv(smtpPasswordEnv); v != "" {
		c.Notifications.Email.Password = v
	}

	if v := os.Getenv(natsURLEnv); v != "" {
		c.Notifications.NATS.URL = v
	}
}

// Default returns a configuration that runs against a local inference service
// and writes to ./data.
func Default() Config {
	return Config{
		Logging:  LoggingConfig{Level: "info", MaxSizeMB: 50, MaxBackups: 3, MaxAgeDays: 28},
		Database: DatabaseConfig{DSN: ""},
		Storage:  StorageConfig{Dir: "data"},
		Source: SourceConfig{
			Scanner:     "earningscall",
			URLTemplate: "https://www.earningscall.ai/stock/transcript/{symbol}-{year}-Q{quarter}",
			Timeout:     30 * time.Second,
		},
		Summarizer: SummarizerConfig{
			Provider:          ProviderSeq2Seq,
			Splitter:          "punkt",
			Topics:            DefaultTopics(),
			SentencesPerTopic: 5,
			MaxLength:         150,
			MinLength:         30,
			Beams:             4,
			EarlyStopping:     true,
			MaxInputTokens:    1024,
			CacheTTL:          time.Hour,
		},
		ML: MLConfig{
			InferenceURL: "http://localhost:8000",
			Model:        "facebook/bart-large-cnn",
			Timeout:      2 * time.Minute,
		},
		ChatGPT: ChatGPTConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash",
		},
		Notifications: NotificationConfig{
			Email:    EmailConfig{Port: 587},
			Telegram: TelegramConfig{APIBase: "https://api.telegram.org"},
			NATS:     NATSConfig{Subject: "transcripts.summarized"},
		},
		Batch: BatchConfig{
			Symbols:  []string{"JPM", "MS", "BAC", "SF", "AMP", "RJF", "LPL", "UBS", "SCHW", "WFC"},
			Quarters: []int{1, 2, 3, 4},
		},
	}
}

// DefaultTopics is the keyword table used for bank earnings calls.
func DefaultTopics() []TopicConfig {
	return []TopicConfig{
		{Name: "SUMMARY", Keywords: []string{
			"revenue", "profit", "earnings", "loan growth", "credit quality", "deposits", "profitability",
			"management", "strategy", "business verticals", "guidance", "outlook",
		}},
		{Name: "STRATEGIC_UPDATES", Keywords: []string{"loan growth", "credit quality", "deposits", "profitability", "strategic", "initiative"}},
		{Name: "GUIDANCE_OUTLOOK", Keywords: []string{"guidance", "outlook", "forecast", "growth", "decline", "earnings", "future"}},
		{Name: "RISK_ANALYSIS", Keywords: []string{"risk", "challenge", "mitigation", "response", "uncertainty"}},
		{Name: "Q_AND_A", Keywords: []string{"question", "answer", "ask", "respond", "clarify", "explain"}},
	}
}
