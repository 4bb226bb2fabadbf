package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type DB struct {
	DbHOST     string
	DbPORT     string
	DbUSER     string
	DbPASSWORD string
	DbNAME     string
	DbSSLMODE  string
}

type MinIO struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
	Region     string
}

// Scorer is the visual identification service.
type Scorer struct {
	URL     string
	Timeout time.Duration
}

type FCM struct {
	Enabled         bool
	ProjectID       string
	CredentialsFile string
	SendTimeout     time.Duration
}

type Queue struct {
	Size    int
	Workers int
}

type Redis struct {
	URL        string
	TriggerTTL time.Duration
}

type Kafka struct {
	Brokers []string
	Topic   string
}

type Notify struct {
	TemplatesFile string
}

type Match struct {
	// KindSource is "repository" or "prefix".
	KindSource string
}

type Log struct {
	Level  string
	Format string
}

type Config struct {
	ServerPort      int
	DB              DB
	MinIO           MinIO
	Scorer          Scorer
	FCM             FCM
	Queue           Queue
	Redis           Redis
	Kafka           Kafka
	Notify          Notify
	Match           Match
	Log             Log
	MaxUploadSize   int64
	FoundPostReward int
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil || duration <= 0 {
		return fallback
	}
	return duration
}

func LoadDB() DB {
	return DB{
		DbHOST:     getEnv("DB_HOST", "localhost"),
		DbPORT:     getEnv("DB_PORT", "5432"),
		DbUSER:     getEnv("DB_USER", "postgres"),
		DbPASSWORD: getEnv("DB_PASSWORD", "password"),
		DbNAME:     getEnv("DB_NAME", "petmatch"),
		DbSSLMODE:  getEnv("DB_SSLMODE", "disable"),
	}
}

func LoadMinIO() MinIO {
	return MinIO{
		Endpoint:   getEnv("MINIO_ENDPOINT", "localhost:9000"),
		AccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
		BucketName: getEnv("MINIO_BUCKET_NAME", "post-images"),
		UseSSL:     getEnvBool("MINIO_USE_SSL", false),
		Region:     getEnv("MINIO_REGION", "us-east-1"),
	}
}

func LoadScorer() Scorer {
	return Scorer{
		URL:     getEnv("SCORER_URL", "http://localhost:3000/identify/"),
		Timeout: parseDuration(getEnv("SCORER_TIMEOUT", "30s"), 30*time.Second),
	}
}

func LoadFCM() FCM {
	return FCM{
		Enabled:         getEnvBool("FCM_ENABLED", false),
		ProjectID:       getEnv("FCM_PROJECT_ID", ""),
		CredentialsFile: getEnv("FCM_CREDENTIALS_FILE", "serviceAccountKey.json"),
		SendTimeout:     parseDuration(getEnv("FCM_SEND_TIMEOUT", "10s"), 10*time.Second),
	}
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	return &Config{
		ServerPort: getEnvAsInt("SERVER_PORT", 5000),
		DB:         LoadDB(),
		MinIO:      LoadMinIO(),
		Scorer:     LoadScorer(),
		FCM:        LoadFCM(),
		Queue: Queue{
			Size:    getEnvAsInt("MATCH_QUEUE_SIZE", 256),
			Workers: getEnvAsInt("MATCH_WORKERS", 4),
		},
		Redis: Redis{
			URL:        getEnv("REDIS_URL", ""),
			TriggerTTL: parseDuration(getEnv("MATCH_TRIGGER_TTL", "24h"), 24*time.Hour),
		},
		Kafka: Kafka{
			Brokers: getEnvList("KAFKA_BROKERS"),
			Topic:   getEnv("KAFKA_MATCH_TOPIC", "match.created"),
		},
		Notify: Notify{
			TemplatesFile: getEnv("NOTIFY_TEMPLATES_FILE", ""),
		},
		Match: Match{
			KindSource: strings.ToLower(getEnv("MATCH_KIND_SOURCE", "repository")),
		},
		Log: Log{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		MaxUploadSize:   parseMaxUploadSize(getEnv("MAX_UPLOAD_SIZE", "10485760")),
		FoundPostReward: getEnvAsInt("FOUND_POST_REWARD", 10),
	}
}

func parseMaxUploadSize(value string) int64 {
	size, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 10 * 1024 * 1024
	}
	return size
}
