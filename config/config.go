package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment        string
	HTTPPort           string
	HTTPSPort          string
	Domains            []string
	CertCacheDir       string
	GeminiAPIURL       string
	GeminiAPIKey       string
	OpenAIAPIKey       string
	EmbeddingModel     string
	CorpusDir          string
	CorpusScanInterval time.Duration
	IngestPoolSize     int
	ContentTimeout     time.Duration
	QATimeout          time.Duration
	QACount            int
}

var isTest bool

func init() {
	isTest = os.Getenv("GO_ENVIRONMENT") == "test"
	if !isTest {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}
}

func Load() Config {
	return Config{
		Environment:        getEnv("ENVIRONMENT", "development"),
		HTTPPort:           getEnv("HTTP_PORT", "8086"),
		HTTPSPort:          getEnv("HTTPS_PORT", "443"),
		Domains:            []string{getEnv("DOMAIN", "example.com")},
		CertCacheDir:       getEnv("CERT_CACHE_DIR", "/etc/letsencrypt/live/example.com"),
		GeminiAPIURL:       getEnv("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1beta/models/gemini-pro:generateContent"),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		EmbeddingModel:     getEnv("EMBEDDING_MODEL", "text-embedding-ada-002"),
		CorpusDir:          getEnv("CORPUS_DIR", "./Data"),
		CorpusScanInterval: time.Duration(getEnvAsInt("CORPUS_SCAN_INTERVAL", 300)) * time.Second,
		IngestPoolSize:     getEnvAsInt("INGEST_POOL_SIZE", 4),
		ContentTimeout:     time.Duration(getEnvAsInt("CONTENT_TIMEOUT", 30)) * time.Second,
		QATimeout:          time.Duration(getEnvAsInt("QA_TIMEOUT", 30)) * time.Second,
		QACount:            getEnvAsInt("QA_COUNT", 5),
	}
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
