package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is the development fallback for JWT_SECRET. Production
// refuses to start with it.
const DefaultJWTSecret = "change-me"

// Config holds every runtime setting of the service. It is loaded once in main
// and passed down explicitly.
type Config struct {
	AppEnv     string
	ServerPort string

	// DBDriver is "postgres" or "sqlite".
	DBDriver   string
	SQLitePath string

	PGHost     string
	PGPort     string
	PGUser     string
	PGPassword string
	PGDB       string

	// CacheBackend is "memory" or "redis".
	CacheBackend  string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	ListCacheTTL  time.Duration

	JWTSecret   string
	TokenTTL    time.Duration
	SessionTTL  time.Duration
	ResetTTL    time.Duration
	CookieName  string
	AppBaseURL  string
	CORSOrigins []string

	// Per-IP token bucket on the /auth endpoints.
	AuthRatePerSecond int
	AuthRateBurst     int

	// StorageBackend is "local" or "minio".
	StorageBackend string
	UploadDir      string
	UploadURLPath  string
	MinioEndpoint  string
	MinioAccess    string
	MinioSecret    string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPublicURL string
	MaxImageSide   int
	MaxUploadBytes int64

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	SearchCaseInsensitive  bool
	DashboardInMemoryLimit int64
	OrphanSweepInterval    time.Duration
	OrphanGracePeriod      time.Duration
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppEnv:     getEnv("APP_ENV", "development"),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		SQLitePath: getEnv("SQLITE_PATH", "lent.db"),

		PGHost:     getEnv("PG_HOST", "localhost"),
		PGPort:     getEnv("PG_PORT", "5432"),
		PGUser:     getEnv("PG_USER", "postgres"),
		PGPassword: getEnv("PG_PASSWORD", "postgres"),
		PGDB:       getEnv("PG_DB", "lent"),

		CacheBackend:  getEnv("CACHE_BACKEND", "memory"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		ListCacheTTL:  getDuration("LIST_CACHE_TTL", 2*time.Minute),

		JWTSecret:   getEnv("JWT_SECRET", DefaultJWTSecret),
		TokenTTL:    getDuration("TOKEN_TTL", 24*time.Hour),
		SessionTTL:  getDuration("SESSION_TTL", 7*24*time.Hour),
		ResetTTL:    getDuration("RESET_TOKEN_TTL", time.Hour),
		CookieName:  getEnv("SESSION_COOKIE", "session_id"),
		AppBaseURL:  getEnv("APP_BASE_URL", "http://localhost:3000"),
		CORSOrigins: getList("CORS_ORIGINS", []string{"http://localhost:3000"}),

		AuthRatePerSecond: getInt("AUTH_RATE_PER_SECOND", 2),
		AuthRateBurst:     getInt("AUTH_RATE_BURST", 20),

		StorageBackend: getEnv("STORAGE_BACKEND", "local"),
		UploadDir:      getEnv("UPLOAD_DIR", "public/uploads"),
		UploadURLPath:  getEnv("UPLOAD_URL_PATH", "/uploads"),
		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccess:    getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecret:    getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:    getEnv("MINIO_BUCKET", "lent-uploads"),
		MinioUseSSL:    getBool("MINIO_USE_SSL", false),
		MinioPublicURL: getEnv("MINIO_PUBLIC_URL", ""),
		MaxImageSide:   getInt("MAX_IMAGE_SIDE", 1600),
		MaxUploadBytes: int64(getInt("MAX_UPLOAD_MB", 10)) << 20,

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "no-reply@lent.local"),

		SearchCaseInsensitive:  getBool("SEARCH_CASE_INSENSITIVE", false),
		DashboardInMemoryLimit: int64(getInt("DASHBOARD_INMEMORY_LIMIT", 5000)),
		OrphanSweepInterval:    getDuration("ORPHAN_SWEEP_INTERVAL", 6*time.Hour),
		OrphanGracePeriod:      getDuration("ORPHAN_GRACE_PERIOD", 24*time.Hour),
	}
}

// Validate reports every setting the service cannot run with. main calls it
// before opening any connection.
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	} else if c.IsProduction() && c.JWTSecret == DefaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set to a private value in production"))
	}

	positive := []struct {
		env string
		d   time.Duration
	}{
		{"TOKEN_TTL", c.TokenTTL},
		{"SESSION_TTL", c.SessionTTL},
		{"RESET_TOKEN_TTL", c.ResetTTL},
		{"ORPHAN_SWEEP_INTERVAL", c.OrphanSweepInterval},
		{"ORPHAN_GRACE_PERIOD", c.OrphanGracePeriod},
	}
	for _, p := range positive {
		if p.d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", p.env, p.d))
		}
	}
	// Zero switches the list cache off.
	if c.ListCacheTTL < 0 {
		errs = append(errs, fmt.Errorf("LIST_CACHE_TTL must not be negative, got %s", c.ListCacheTTL))
	}

	if c.AuthRatePerSecond <= 0 || c.AuthRateBurst <= 0 {
		errs = append(errs, errors.New("AUTH_RATE_PER_SECOND and AUTH_RATE_BURST must be positive"))
	}
	if c.MaxImageSide <= 0 || c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_IMAGE_SIDE and MAX_UPLOAD_MB must be positive"))
	}

	return errors.Join(errs...)
}

// PostgresDSN builds the URL form DSN used by both gorm and sqlx.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDB)
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getList(key string, fallback []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
