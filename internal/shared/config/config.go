package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	GCSBucket       string
	GCSPrefix       string
	GCPProjectID    string
	VertexRegion    string
	LLMProvider     string
	LLMModel        string
	OpenAIAPIKey    string
	JobStore        string
	JobsQueueURL    string
	UploadsBucket   string
	UploadsPrefix   string
	DatabaseURL     string
	Env             string
}

var defaults = map[string]string{
	"port":               "8080",
	"env":                "dev",
	"cors_allow_origins": "http://localhost:5173",
	"object_store":       "local",
	"local_store_dir":    "./data",
	"vertex_ai_region":   "us-central1",
	"llm_provider":       "openai",
	"job_store":          "sql",
	"uploads_s3_prefix":  "uploads/",
}

// Load reads configuration from an optional config file and environment variables.
// Environment variables win over the file; the file wins over defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			log.Printf("config: read %s: %v", path, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) Config {
	env := normalizeEnv(v.GetString("env"))
	dbURL := strings.TrimSpace(v.GetString("database_url"))

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:            v.GetString("port"),
		CORSAllowOrigin: splitAndTrim(v.GetString("cors_allow_origins")),
		ObjectStoreType: normalizeStoreType(v.GetString("object_store")),
		LocalStoreDir:   v.GetString("local_store_dir"),
		AWSRegion:       v.GetString("aws_region"),
		S3Bucket:        v.GetString("s3_bucket"),
		S3Prefix:        v.GetString("s3_prefix"),
		SSEKMSKeyID:     v.GetString("sse_kms_key_id"),
		GCSBucket:       v.GetString("gcs_bucket"),
		GCSPrefix:       v.GetString("gcs_prefix"),
		GCPProjectID:    v.GetString("gcp_project_id"),
		VertexRegion:    v.GetString("vertex_ai_region"),
		LLMProvider:     normalizeProvider(v.GetString("llm_provider")),
		LLMModel:        v.GetString("llm_model"),
		OpenAIAPIKey:    v.GetString("openai_api_key"),
		JobStore:        normalizeJobStore(v.GetString("job_store")),
		JobsQueueURL:    strings.TrimSpace(v.GetString("jobs_queue_url")),
		UploadsBucket:   strings.TrimSpace(v.GetString("uploads_s3_bucket")),
		UploadsPrefix:   v.GetString("uploads_s3_prefix"),
		DatabaseURL:     dbURL,
		Env:             env,
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "gcs":
		return "gcs"
	default:
		return "local"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "vertex", "gemini":
		return "vertex"
	case "none", "placeholder":
		return "none"
	default:
		return "openai"
	}
}

func normalizeJobStore(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), "firestore") {
		return "firestore"
	}
	return "sql"
}

// IsDevLike reports whether env allows in-memory fallbacks.
func IsDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
