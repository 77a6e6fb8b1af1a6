package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Keys       KeyConfig
	Ai         AIConfig
	History    HistoryConfig
	Ingredient IngredientConfig
	Events     EventsConfig
	OCR        OCRConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	MaxUploadMB        int
}

// KeyConfig locates the model credential. The secret store is the process
// environment (after .env) plus an optional secrets file.
type KeyConfig struct {
	CredentialName string // e.g. GOOGLE_API_KEY
	SecretsFile    string // Streamlit-style secrets.toml
}

type AIConfig struct {
	LLMProvider       string // "gemini", "openai" or "ollama"
	LLMModel          string
	OllamaBaseURL     string
	OpenAIBaseURL     string // empty uses the public API
	Temperature       float64
	Timeout           time.Duration
	MaxToolRounds     int
	ToolLookupEnabled bool
}

type HistoryConfig struct {
	Size       int
	Store      string // "memory" or "redis"
	SessionTTL time.Duration
	RedisURL   string
}

type IngredientConfig struct {
	UnknownPolicy string // "omit" or "report"
}

type EventsConfig struct {
	Topic   string
	NatsURL string // empty disables NATS
}

type OCRConfig struct {
	Provider  string // "" or "rekognition"
	AWSRegion string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	provider := strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "gemini")))
	if provider == "" {
		provider = "gemini"
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			MaxUploadMB:        getEnvAsInt("MAX_UPLOAD_MB", 10),
		},
		Keys: KeyConfig{
			CredentialName: getEnv("CREDENTIAL_NAME", DefaultCredentialName(provider)),
			SecretsFile:    getEnv("SECRETS_FILE", ".streamlit/secrets.toml"),
		},
		Ai: AIConfig{
			LLMProvider:       provider,
			LLMModel:          getEnv("LLM_MODEL", DefaultModel(provider)),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
			Temperature:       getEnvAsFloat("LLM_TEMPERATURE", 0.2),
			Timeout:           getEnvAsDuration("LLM_TIMEOUT", 120*time.Second),
			MaxToolRounds:     getEnvAsInt("LLM_MAX_TOOL_ROUNDS", 4),
			ToolLookupEnabled: getEnvAsBool("TOOL_LOOKUP_ENABLED", true),
		},
		History: HistoryConfig{
			Size:       getEnvAsInt("HISTORY_SIZE", 5),
			Store:      strings.ToLower(getEnv("HISTORY_STORE", "memory")),
			SessionTTL: getEnvAsDuration("SESSION_TTL", time.Hour),
			RedisURL:   getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Ingredient: IngredientConfig{
			UnknownPolicy: getEnv("INGREDIENT_UNKNOWN_POLICY", "omit"),
		},
		Events: EventsConfig{
			Topic:   getEnv("SCAN_EVENTS_TOPIC", "scan.completed"),
			NatsURL: getEnv("NATS_URL", ""),
		},
		OCR: OCRConfig{
			Provider:  strings.ToLower(getEnv("OCR_PROVIDER", "")),
			AWSRegion: getEnv("AWS_REGION", "us-east-1"),
		},
	}
}

// DefaultCredentialName is the secret each provider authenticates with.
// Ollama runs locally and needs none.
func DefaultCredentialName(provider string) string {
	switch provider {
	case "openai":
		return "OPENAI_API_KEY"
	case "ollama":
		return ""
	default:
		return "GOOGLE_API_KEY"
	}
}

func DefaultModel(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o-mini"
	case "ollama":
		return "llava"
	default:
		return "gemini-1.5-flash"
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
