package config

import (
	"errors"
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"time"
)

const (
	FrontendTelegram = "telegram"
	FrontendTUI      = "tui"

	TraceExporterLog   = "log"
	TraceExporterRedis = "redis"
	TraceExporterHTTP  = "http"
)

var (
	ErrUnknownFrontend            = errors.New("unknown frontend")
	ErrTelegramTokenRequired      = errors.New("telegram api token is required for telegram frontend")
	ErrTemperatureOutOfRange      = errors.New("model temperature must be in [0, 1]")
	ErrMaxOutputTokensNotPositive = errors.New("max output tokens must be positive")
	ErrUnknownTraceExporter       = errors.New("unknown trace exporter")
	ErrTUILogOutput               = errors.New("tui frontend needs log output 'file', the terminal is taken by the ui")
)

type App struct {
	Frontend string `yaml:"frontend" env:"APP_FRONTEND" env-default:"telegram"`
}

type OpenAI struct {
	OpenAIBaseURL    string  `yaml:"open_ai_base_url" env:"OPENAI_BASE_URL" env-default:"https://api.openai.com"`
	OpenAIModel      string  `yaml:"openai_model" env:"OPENAI_MODEL" env-default:"gpt-3.5-turbo"`
	ModelTemperature float32 `yaml:"model_temperature" env:"MODEL_TEMPERATURE" env-default:"0.7"`
	MaxOutputTokens  int     `yaml:"max_output_tokens" env:"MAX_OUTPUT_TOKENS" env-default:"100"`
	Streaming        bool    `yaml:"streaming" env:"OPENAI_STREAMING" env-default:"true"`
	CredentialPrefix string  `yaml:"credential_prefix" env:"CREDENTIAL_PREFIX" env-default:"sk-"`
}

type Telegram struct {
	TelegramAPIToken   string        `env:"TELEGRAM_APITOKEN"`
	EditInterval       time.Duration `yaml:"edit_interval" env:"TELEGRAM_EDIT_INTERVAL" env-default:"2500ms"`
	SessionIdleTimeout time.Duration `yaml:"session_idle_timeout" env:"SESSION_IDLE_TIMEOUT" env-default:"0s"`
}

type Tracing struct {
	Enabled   bool          `yaml:"enabled" env:"TRACING_ENABLED" env-default:"true"`
	Exporter  string        `yaml:"exporter" env:"TRACING_EXPORTER" env-default:"log"`
	Project   string        `yaml:"project" env:"TRACING_PROJECT" env-default:"cricket-bot"`
	APIKey    string        `env:"TRACING_API_KEY"`
	Endpoint  string        `yaml:"endpoint" env:"TRACING_ENDPOINT"`
	Timeout   time.Duration `yaml:"timeout" env:"TRACING_TIMEOUT" env-default:"5s"`
	Retention time.Duration `yaml:"retention" env:"TRACING_RETENTION" env-default:"168h"`
}

type Redis struct {
	Endpoint string `yaml:"endpoint" env:"REDIS_ENDPOINT" env-default:"127.0.0.1:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Log struct {
	Level     string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format    string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
	Output    string `yaml:"output" env:"LOG_OUTPUT" env-default:"stderr"`
	FilePath  string `yaml:"file_path" env:"LOG_FILE_PATH"`
	AddSource bool   `yaml:"add_source" env:"LOG_ADD_SOURCE" env-default:"false"`
}

type Config struct {
	App      App      `yaml:"app"`
	OpenAI   OpenAI   `yaml:"open_ai"`
	Telegram Telegram `yaml:"telegram"`
	Tracing  Tracing  `yaml:"tracing"`
	Redis    Redis    `yaml:"redis"`
	Log      Log      `yaml:"log"`
}

// LoadConfig reads the yaml file at cfgPath and overlays environment variables.
// An empty cfgPath reads the environment only.
func LoadConfig(cfgPath string) (*Config, error) {
	var cfg Config
	if cfgPath != "" {
		if err := cleanenv.ReadConfig(cfgPath, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", cfgPath, err)
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.App.Frontend {
	case FrontendTelegram:
		if c.Telegram.TelegramAPIToken == "" {
			return ErrTelegramTokenRequired
		}
	case FrontendTUI:
		if c.Log.Output != "file" {
			return ErrTUILogOutput
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFrontend, c.App.Frontend)
	}
	if c.OpenAI.ModelTemperature < 0 || c.OpenAI.ModelTemperature > 1 {
		return fmt.Errorf("%w: %v", ErrTemperatureOutOfRange, c.OpenAI.ModelTemperature)
	}
	if c.OpenAI.MaxOutputTokens <= 0 {
		return fmt.Errorf("%w: %d", ErrMaxOutputTokensNotPositive, c.OpenAI.MaxOutputTokens)
	}
	switch c.Tracing.Exporter {
	case TraceExporterLog, TraceExporterRedis, TraceExporterHTTP:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTraceExporter, c.Tracing.Exporter)
	}
	return nil
}
