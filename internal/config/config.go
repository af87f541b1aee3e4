package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ストレージの種類
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
	StorageMemory   = "memory"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	APIBaseURL     string        // ストアAPIのベースURL
	APITimeout     time.Duration // 1回の試行のタイムアウト（15s）
	APIRetries     int           // 通信エラー・タイムアウト時のリトライ回数（0）
	APIRetryBase   time.Duration // バックオフの基準（300ms）
	StorageDriver  string        // file / postgres / redis / memory
	StoragePath    string        // fileのとき
	DatabaseURL    string        // postgresのとき（空なら POSTGRES_*）
	PostgresUser   string
	PostgresPass   string
	PostgresDB     string
	PostgresHost   string
	PostgresPort   int
	PostgresSSL    string
	RedisAddr      string // redisのとき
	RedisPassword  string
	RedisPrefix    string
	Language       string // 既定の表示言語（en）
	LogLevel       string // logrusのレベル
	GoEnv          string // dev/prod
	CurrencyTable  string // 通貨テーブルの上書きYAML（任意）
	ShutdownPeriod time.Duration
}

// Loadは環境変数
func Load() (Config, error) {
	timeoutMs, err := atoiDefault("API_TIMEOUT_MS", 15000)
	if err != nil {
		return Config{}, err
	}
	retries, err := atoiDefault("API_RETRIES", 0)
	if err != nil {
		return Config{}, err
	}
	retryBaseMs, err := atoiDefault("API_RETRY_BASE_MS", 300)
	if err != nil {
		return Config{}, err
	}
	pgPort, err := atoiDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: getenv("PORT", "8080"),

		APIBaseURL:   strings.TrimSuffix(os.Getenv("API_BASE_URL"), "/"),
		APITimeout:   time.Duration(timeoutMs) * time.Millisecond,
		APIRetries:   retries,
		APIRetryBase: time.Duration(retryBaseMs) * time.Millisecond,

		StorageDriver: strings.ToLower(getenv("STORAGE_DRIVER", StorageFile)),
		StoragePath:   getenv("STORAGE_PATH", "./data/storage.json"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		PostgresUser:  getenv("POSTGRES_USER", "postgres"),
		PostgresPass:  getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:    getenv("POSTGRES_DB", "storefront"),
		PostgresHost:  getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:  pgPort,
		PostgresSSL:   getenv("POSTGRES_SSLMODE", "disable"),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisPrefix:   getenv("REDIS_PREFIX", "storefront:"),

		Language:       getenv("LANGUAGE", "en"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		GoEnv:          getenv("GO_ENV", "dev"),
		CurrencyTable:  os.Getenv("CURRENCY_TABLE_PATH"),
		ShutdownPeriod: 10 * time.Second,
	}

	//必須チェック
	if cfg.APIBaseURL == "" {
		return Config{}, fmt.Errorf("API_BASE_URL is required")
	}
	if cfg.APITimeout <= 0 {
		return Config{}, fmt.Errorf("API_TIMEOUT_MS must be positive")
	}
	if cfg.APIRetries < 0 {
		return Config{}, fmt.Errorf("API_RETRIES must be >= 0")
	}
	switch cfg.StorageDriver {
	case StorageFile:
		if cfg.StoragePath == "" {
			return Config{}, fmt.Errorf("STORAGE_PATH is required")
		}
	case StoragePostgres, StorageRedis, StorageMemory:
	default:
		return Config{}, fmt.Errorf("STORAGE_DRIVER must be one of file, postgres, redis, memory: %q", cfg.StorageDriver)
	}

	return cfg, nil
}

// Addr は ":8080" 形式
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func (c Config) IsProd() bool {
	return c.GoEnv == "prod"
}

// PostgresDSN は DATABASE_URL があればそれを使う。
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPass, c.PostgresDB, c.PostgresSSL,
	)
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}
