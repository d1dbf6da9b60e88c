package environments

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Valkey    ValkeyConfig
	Keys      KeysConfig
	Mailer    MailerConfig
	AI        AIConfig
	Worker    WorkerConfig
	Scheduler SchedulerConfig
	Limits    LimitsConfig
	Auth      AuthConfig
}

type ServerConfig struct {
	Port string
}

type ValkeyConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// KeysConfig holds the store keys for the job queue, the settings value,
// the outbox list, the event log and the worker's last-run timestamp.
type KeysConfig struct {
	Queue         string
	Settings      string
	Outbox        string
	Log           string
	WorkerLastRun string
}

type MailerConfig struct {
	APIKey  string
	BaseURL string
	From    string
	Timeout time.Duration
}

type AIConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
}

type WorkerConfig struct {
	MaxBatch int
	// MinRunInterval is an advisory throttle between drains; a drain
	// arriving earlier returns a throttled result without popping.
	MinRunInterval time.Duration
	// StopAfterSendFailure ends a drain on the first mailer failure
	// instead of continuing with the next job.
	StopAfterSendFailure bool
}

type SchedulerConfig struct {
	Interval  time.Duration
	AutoStart bool
}

type LimitsConfig struct {
	OutboxMax int
	LogMax    int
}

type AuthConfig struct {
	AdminAPIKey string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: GetEnv("SERVER_PORT", "8080"),
		},
		Valkey: ValkeyConfig{
			Host:     GetEnv("VALKEY_HOST", "localhost"),
			Port:     GetEnv("VALKEY_PORT", "6379"),
			Password: GetEnv("VALKEY_PASSWORD", ""),
			DB:       GetEnvAsInt("VALKEY_DB", 0),
		},
		Keys: KeysConfig{
			Queue:         GetEnv("QUEUE_KEY", "air:jobs"),
			Settings:      GetEnv("SETTINGS_KEY", "air:settings"),
			Outbox:        GetEnv("OUTBOX_KEY", "air:outbox"),
			Log:           GetEnv("LOG_KEY", "air:logs"),
			WorkerLastRun: GetEnv("WORKER_LASTRUN_KEY", "air:worker:lastrun"),
		},
		Mailer: MailerConfig{
			APIKey:  GetEnv("RESEND_API_KEY", ""),
			BaseURL: GetEnv("RESEND_BASE_URL", "https://api.resend.com"),
			From:    GetEnv("RESEND_FROM", ""),
			Timeout: time.Duration(GetEnvAsInt("MAILER_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		AI: AIConfig{
			APIKey:    GetEnv("OPENAI_API_KEY", ""),
			Model:     GetEnv("AI_MODEL", "gpt-4o-mini"),
			MaxTokens: GetEnvAsInt("AI_MAX_TOKENS", 200),
		},
		Worker: WorkerConfig{
			MaxBatch:             GetEnvAsInt("WORKER_MAX_BATCH", 25),
			MinRunInterval:       GetEnvAsDuration("WORKER_MIN_RUN_INTERVAL", 0),
			StopAfterSendFailure: GetEnvAsBool("WORKER_STOP_AFTER_SEND_FAILURE", false),
		},
		Scheduler: SchedulerConfig{
			Interval:  time.Duration(GetEnvAsInt("SCHEDULER_INTERVAL_MINUTES", 2)) * time.Minute,
			AutoStart: GetEnvAsBool("AUTO_START_SCHEDULER", true),
		},
		Limits: LimitsConfig{
			OutboxMax: GetEnvAsInt("OUTBOX_MAX", 5000),
			LogMax:    GetEnvAsInt("LOG_MAX", 2000),
		},
		Auth: AuthConfig{
			AdminAPIKey: GetEnv("ADMIN_API_KEY", ""),
		},
	}
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
