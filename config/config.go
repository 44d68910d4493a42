package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

const (
	SearchBackendFTS           = "fts"
	SearchBackendElasticsearch = "elasticsearch"

	defaultDatabaseURL = "library.db"
)

type Config struct {
	Database      DatabaseConfig
	SearchBackend string
	Elasticsearch ElasticsearchConfig
	S3            S3Config
	Archives      ArchivesConfig
	HTTP          HTTPConfig
}

type DatabaseConfig struct {
	URL     string
	Timeout time.Duration
}

type ElasticsearchConfig struct {
	URL            string
	Index          string
	AutoIndex      bool
	RequestTimeout time.Duration
	Username       string
	Password       string
}

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
}

type ArchivesConfig struct {
	Path string
}

type HTTPConfig struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	APIRootPath       string
}

func Load() (*Config, error) {
	dbURL := unquote(getEnvOrDefault("DATABASE_URL", ""))
	if dbURL == "" {
		dbURL = defaultDatabaseURL
	}

	backend := strings.ToLower(unquote(getEnvOrDefault("SEARCH_BACKEND", SearchBackendFTS)))
	if backend != SearchBackendFTS && backend != SearchBackendElasticsearch {
		return nil, fmt.Errorf("invalid SEARCH_BACKEND %q: want %q or %q", backend, SearchBackendFTS, SearchBackendElasticsearch)
	}

	cfg := &Config{
		Database: DatabaseConfig{
			URL:     dbURL,
			Timeout: durationEnv("DB_TIMEOUT", 10*time.Second),
		},
		SearchBackend: backend,
		Elasticsearch: ElasticsearchConfig{
			URL:            unquote(getEnvOrDefault("ELASTICSEARCH_URL", "")),
			Index:          unquote(getEnvOrDefault("ELASTICSEARCH_INDEX", "books")),
			AutoIndex:      boolEnv("ELASTICSEARCH_AUTO_INDEX", true),
			RequestTimeout: durationEnv("ELASTICSEARCH_REQUEST_TIMEOUT_S", 10*time.Second),
			Username:       getEnvOrDefault("ELASTICSEARCH_USERNAME", ""),
			Password:       getEnvOrDefault("ELASTICSEARCH_PASSWORD", ""),
		},
		S3: S3Config{
			Endpoint:  normalizeEndpoint(getEnvOrDefault("S3_ENDPOINT", "http://minio:9000")),
			AccessKey: getEnvOrDefault("S3_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnvOrDefault("S3_SECRET_KEY", "minioadmin"),
			Bucket:    unquote(getEnvOrDefault("S3_BUCKET", "book-library")),
			Region:    unquote(getEnvOrDefault("S3_REGION", "us-east-1")),
		},
		Archives: ArchivesConfig{
			Path: unquote(getEnvOrDefault("BOOKS_ARCHIVES_PATH", "books")),
		},
		HTTP: HTTPConfig{
			Addr:              stringEnv("HTTP_ADDR", ":9000"),
			ReadHeaderTimeout: durationEnv("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
			APIRootPath:       normalizeRootPath(os.Getenv("API_ROOT_PATH"), os.LookupEnv),
		},
	}

	if cfg.SearchBackend == SearchBackendElasticsearch && cfg.Elasticsearch.URL == "" {
		slog.Warn("SEARCH_BACKEND is elasticsearch but ELASTICSEARCH_URL is empty, searches will fail")
	}

	slog.Info("Configuration loaded",
		"database_postgres", cfg.Database.IsPostgres(),
		"search_backend", cfg.SearchBackend,
		"elasticsearch_index", cfg.Elasticsearch.Index,
		"s3_endpoint", cfg.S3.Endpoint,
		"api_root_path", cfg.HTTP.APIRootPath,
	)

	return cfg, nil
}

// IsPostgres reports whether the primary store is Postgres rather than SQLite.
func (c DatabaseConfig) IsPostgres() bool {
	return strings.HasPrefix(c.URL, "postgres://") || strings.HasPrefix(c.URL, "postgresql://")
}

// SQLiteDSN strips SQLAlchemy-style scheme prefixes, leaving a path or file: URI.
func (c DatabaseConfig) SQLiteDSN() string {
	for _, prefix := range []string{"sqlite+aiosqlite:///", "sqlite:///"} {
		if strings.HasPrefix(c.URL, prefix) {
			return strings.TrimPrefix(c.URL, prefix)
		}
	}
	return c.URL
}

// unquote trims whitespace and one pair of matching surrounding quotes.
func unquote(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		v = strings.TrimSpace(v[1 : len(v)-1])
	}
	return v
}

// normalizeEndpoint adds a missing http scheme and drops trailing slashes.
func normalizeEndpoint(v string) string {
	v = unquote(v)
	if v != "" && !strings.Contains(v, "://") {
		v = "http://" + v
	}
	return strings.TrimRight(v, "/")
}

// normalizeRootPath defaults an unset value to /api, maps "" and "/" to no prefix
// and enforces a single leading slash.
func normalizeRootPath(v string, lookup func(string) (string, bool)) string {
	if _, ok := lookup("API_ROOT_PATH"); !ok {
		return "/api"
	}
	v = unquote(v)
	if v == "" || v == "/" {
		return ""
	}
	if !strings.HasPrefix(v, "/") {
		v = "/" + v
	}
	return strings.TrimRight(v, "/")
}

func getEnvOrDefault(key, defaultValue string) string {
	// Check for _FILE suffix
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
		slog.Warn("failed to read secret file, falling back to env", "key", key, "error", err)
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
