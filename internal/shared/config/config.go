package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends accepted by STORE_BACKEND.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	DevLogin  DevLoginConfig
	Panel     PanelConfig
	Workers   WorkerConfig
	TLS       TLSConfig
	Firebase  FirebaseConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	AllowedHosts []string
	// CloseRedirectURL is where the browser goes after the panel is dismissed.
	CloseRedirectURL string
}

type StoreConfig struct {
	Backend    string
	SQLitePath string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

// DevLoginConfig controls the development sign-in endpoint.
type DevLoginConfig struct {
	Enabled      bool
	PasswordHash string
}

type PanelConfig struct {
	ConnectDelay  time.Duration
	IdleTimeout   time.Duration
	SweepInterval time.Duration
	MessagesFile  string
}

type WorkerConfig struct {
	Count     int
	QueueSize int
}

type TLSConfig struct {
	Enabled      bool
	CertPath     string
	KeyPath      string
	RedirectHTTP bool
}

type FirebaseConfig struct {
	CredentialsFile string
	AuthEnabled     bool
	PushEnabled     bool
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	Environment  string
	OTLPEndpoint string
	MetricsPort  string
}

// Load reads the full service configuration from the environment.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadStore reads the environment but only validates the link store
// settings. Tools that open the store and nothing else use it.
func LoadStore() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := cfg.validateStore(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func read() (*Config, error) {
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	connectDelay, err := getDurationEnv("PANEL_CONNECT_DELAY", "1500ms")
	if err != nil {
		return nil, err
	}
	idleTimeout, err := getDurationEnv("PANEL_IDLE_TIMEOUT", "30m")
	if err != nil {
		return nil, err
	}
	sweepInterval, err := getDurationEnv("PANEL_SWEEP_INTERVAL", "1m")
	if err != nil {
		return nil, err
	}

	workerCount, err := strconv.Atoi(getEnv("CONNECT_WORKERS", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid CONNECT_WORKERS: %w", err)
	}
	queueSize, err := strconv.Atoi(getEnv("CONNECT_QUEUE_SIZE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid CONNECT_QUEUE_SIZE: %w", err)
	}

	// Parse allowed hosts (comma-separated list)
	var allowedHosts []string
	for _, host := range strings.Split(getEnv("ALLOWED_HOSTS", ""), ",") {
		host = strings.TrimSpace(host)
		if host != "" {
			allowedHosts = append(allowedHosts, host)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:             getEnv("PORT", "8080"),
			Host:             getEnv("HOST", "0.0.0.0"),
			AllowedHosts:     allowedHosts,
			CloseRedirectURL: getEnv("CLOSE_REDIRECT_URL", "/"),
		},
		Store: StoreConfig{
			Backend:    strings.ToLower(getEnv("STORE_BACKEND", StoreMemory)),
			SQLitePath: getEnv("SQLITE_PATH", "socialnexus.db"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "socialnexus"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		DevLogin: DevLoginConfig{
			Enabled:      getBoolEnv("DEV_LOGIN_ENABLED", false),
			PasswordHash: getEnv("DEV_LOGIN_PASSWORD_HASH", ""),
		},
		Panel: PanelConfig{
			ConnectDelay:  connectDelay,
			IdleTimeout:   idleTimeout,
			SweepInterval: sweepInterval,
			MessagesFile:  getEnv("MESSAGES_FILE", ""),
		},
		Workers: WorkerConfig{
			Count:     workerCount,
			QueueSize: queueSize,
		},
		TLS: TLSConfig{
			Enabled:      getBoolEnv("TLS_ENABLED", false),
			CertPath:     getEnv("TLS_CERT_PATH", ""),
			KeyPath:      getEnv("TLS_KEY_PATH", ""),
			RedirectHTTP: getBoolEnv("TLS_REDIRECT_HTTP", false),
		},
		Firebase: FirebaseConfig{
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
			AuthEnabled:     getBoolEnv("FIREBASE_AUTH_ENABLED", false),
			PushEnabled:     getBoolEnv("FIREBASE_PUSH_ENABLED", false),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getBoolEnv("OTEL_ENABLED", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "socialnexus-api"),
			Environment:  getEnv("OTEL_ENVIRONMENT", "development"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", ""),
			MetricsPort:  getEnv("METRICS_PORT", "9464"),
		},
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if err := c.validateStore(); err != nil {
		return err
	}

	if c.DevLogin.Enabled && c.DevLogin.PasswordHash == "" {
		return fmt.Errorf("DEV_LOGIN_PASSWORD_HASH is required when DEV_LOGIN_ENABLED=true")
	}

	if c.Workers.Count < 1 {
		return fmt.Errorf("CONNECT_WORKERS must be at least 1")
	}
	if c.Workers.QueueSize < 1 {
		return fmt.Errorf("CONNECT_QUEUE_SIZE must be at least 1")
	}
	if c.Panel.SweepInterval <= 0 {
		return fmt.Errorf("PANEL_SWEEP_INTERVAL must be positive")
	}

	if (c.Firebase.AuthEnabled || c.Firebase.PushEnabled) && c.Firebase.CredentialsFile == "" {
		return fmt.Errorf("FIREBASE_CREDENTIALS_FILE is required when Firebase auth or push is enabled")
	}

	// Validate TLS configuration
	if c.TLS.Enabled {
		if c.TLS.CertPath == "" {
			return fmt.Errorf("TLS_CERT_PATH is required when TLS_ENABLED=true")
		}
		if c.TLS.KeyPath == "" {
			return fmt.Errorf("TLS_KEY_PATH is required when TLS_ENABLED=true")
		}
	}

	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case StoreMemory, StorePostgres, StoreRedis:
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORE_BACKEND=sqlite")
		}
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q (want memory, postgres, sqlite or redis)", c.Store.Backend)
	}
	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept: true, false, 1, 0, yes, no (case-insensitive)
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}

func getDurationEnv(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}
