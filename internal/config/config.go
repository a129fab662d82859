package config // package config loads application configuration from environment variables

import (
    "log"
    "os"
    "strconv"

    "github.com/joho/godotenv"

    "github.com/iliyamo/hotel-reservation/internal/storage"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    JWTSecret      string // secret used to sign JWTs
    AccessTTLMin   int    // access token time‑to‑live in minutes
    RefreshTTLDays int    // refresh token time‑to‑live in days
    BcryptCost     int    // bcrypt cost for password hashing

    LogLevel  string // debug, info, warn, error
    LogFormat string // json or console

    AMQPURL string // RabbitMQ URL; empty disables lifecycle events

    AvatarDir      string // root directory for uploaded avatars
    AvatarBaseURL  string // public URL prefix under which AvatarDir is served
    AvatarMaxBytes int64  // upload ceiling, at most 2 MB
}

// Load reads configuration values from environment variables and returns a
// Config.  A .env file in the working directory is loaded first when it
// exists; real environment variables win over it.  Required variables are
// enforced by must() and missing values cause the program to exit.
func Load() Config {
    if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
        log.Printf("config: .env not loaded: %v", err)
    }
    return Config{
        Env:            must("APP_ENV"),
        Port:           must("APP_PORT"),
        DBUser:         must("DB_USER"),
        DBPass:         os.Getenv("DB_PASS"),
        DBHost:         must("DB_HOST"),
        DBPort:         must("DB_PORT"),
        DBName:         must("DB_NAME"),
        JWTSecret:      must("JWT_SECRET"),
        AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
        RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
        BcryptCost:     mustInt("BCRYPT_COST"),

        LogLevel:  getenv("LOG_LEVEL", "info"),
        LogFormat: getenv("LOG_FORMAT", "json"),

        AMQPURL: os.Getenv("AMQP_URL"),

        AvatarDir:      getenv("AVATAR_DIR", "data/avatars"),
        AvatarBaseURL:  getenv("AVATAR_BASE_URL", "/avatars"),
        AvatarMaxBytes: avatarMaxBytes(),
    }
}

// avatarMaxBytes reads AVATAR_MAX_BYTES.  It may lower the upload ceiling
// but never raise it above storage.DefaultMaxBytes.
func avatarMaxBytes() int64 {
    n := int64(envInt("AVATAR_MAX_BYTES", int(storage.DefaultMaxBytes)))
    if n <= 0 || n > storage.DefaultMaxBytes {
        return storage.DefaultMaxBytes
    }
    return n
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
