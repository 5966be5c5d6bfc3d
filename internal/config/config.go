package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Upload type policies. Strict needs both the MIME type and the extension
// allow-listed, permissive accepts either.
const (
	UploadPolicyStrict     = "strict"
	UploadPolicyPermissive = "permissive"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Env         string
	LogLevel    string
	ServerPort  string
	MySQLDSN    string
	ResetDB     bool
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	SwaggerHost string

	JWTSecret         string
	TokenTTL          time.Duration
	AllowUserIDHeader bool

	UploadsDir       string
	PublicBaseURL    string
	MaxUploadMB      int
	UploadTypePolicy string
	ServeUploads     bool
	ClamAVAddress    string

	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load builds Config from environment with sensible defaults. A .env file in
// the working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	port := getEnv("SERVER_PORT", "5000")
	return &Config{
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		ServerPort:  port,
		MySQLDSN:    getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/safebox?charset=utf8mb4&parseTime=True&loc=Local"),
		ResetDB:     getEnvBool("RESET_DB", false),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),

		JWTSecret:         getEnv("JWT_SECRET", "change-me"),
		TokenTTL:          getEnvDuration("TOKEN_TTL", 24*time.Hour),
		AllowUserIDHeader: getEnvBool("AUTH_ALLOW_USER_ID_HEADER", true),

		UploadsDir:       getEnv("UPLOADS_DIR", "uploads"),
		PublicBaseURL:    strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),
		MaxUploadMB:      getEnvInt("UPLOAD_MAX_SIZE_MB", 100),
		UploadTypePolicy: strings.ToLower(getEnv("UPLOAD_TYPE_POLICY", UploadPolicyStrict)),
		ServeUploads:     getEnvBool("SERVE_UPLOADS", true),
		ClamAVAddress:    os.Getenv("CLAMAV_ADDRESS"),

		CORSOrigins:    getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 40),
	}
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.UploadTypePolicy {
	case UploadPolicyStrict, UploadPolicyPermissive:
	default:
		return fmt.Errorf("invalid UPLOAD_TYPE_POLICY %q (want %q or %q)", c.UploadTypePolicy, UploadPolicyStrict, UploadPolicyPermissive)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("UPLOAD_MAX_SIZE_MB must be bigger than 0")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	return nil
}

// MaxUploadBytes is the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// IsDevelopment reports whether the app runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
