package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fernet/fernet-go"
	"github.com/joho/godotenv"

	"github.com/avdmeer/Post-Ledger-Backend/internal/timestamp"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Auth     AuthConfig
	Peer     PeerConfig
	Jobs     JobsConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// AuthConfig holds the fernet keys used to mint and verify agent tokens.
// The first key signs new tokens; all keys verify, so keys can rotate.
type AuthConfig struct {
	Keys     []*fernet.Key
	TokenTTL timestamp.Timeout
}

// PeerConfig points at a remote node to import records from. An empty URL
// disables the peer client.
type PeerConfig struct {
	URL     string
	Timeout timestamp.Timeout
}

// JobsConfig holds cron schedules; an empty schedule disables the job.
// LogRetentionDays bounds how long system log entries are kept; zero keeps
// them forever.
type JobsConfig struct {
	ChainAuditSchedule string
	PeerImportSchedule string
	LogRetentionDays   int
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/post_ledger.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Auth: AuthConfig{
			TokenTTL: timestamp.Timeout(getEnvInt("TOKEN_TTL_MS", 86400000)),
		},
		Peer: PeerConfig{
			URL:     getEnv("PEER_URL", ""),
			Timeout: timestamp.Timeout(getEnvInt("PEER_TIMEOUT_MS", int(timestamp.DefaultTimeout))),
		},
		Jobs: JobsConfig{
			ChainAuditSchedule: getEnv("CHAIN_AUDIT_SCHEDULE", "30 3 * * *"),
			PeerImportSchedule: getEnv("PEER_IMPORT_SCHEDULE", "0 4 * * *"),
			LogRetentionDays:   getEnvInt("LOG_RETENTION_DAYS", 30),
		},
	}

	keys, err := loadFernetKeys()
	if err != nil {
		return nil, err
	}
	config.Auth.Keys = keys

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// loadFernetKeys decodes FERNET_KEYS (comma-separated, first key signs).
// When unset, a single ephemeral key is generated so the server can boot
// with zero configuration; tokens then die with the process.
func loadFernetKeys() ([]*fernet.Key, error) {
	raw := getEnv("FERNET_KEYS", "")
	if raw == "" {
		key := new(fernet.Key)
		if err := key.Generate(); err != nil {
			return nil, fmt.Errorf("failed to generate ephemeral fernet key: %w", err)
		}
		return []*fernet.Key{key}, nil
	}
	keys, err := fernet.DecodeKeys(splitList(raw)...)
	if err != nil {
		return nil, fmt.Errorf("failed to decode FERNET_KEYS: %w", err)
	}
	return keys, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
