package constants

import "time"

const (
	UsernameMinLength  = 3
	UsernameMaxLength  = 64
	PasswordMinLength  = 6
	PasswordMaxBytes   = 72
	JWTSecretMinLength = 32

	DefaultMaxRequestSize = 1 << 20

	DefaultTokenTTL       = 1 * time.Hour
	DefaultBcryptCost     = 12
	MinConfigBcryptCost   = 10
	DefaultArgon2Memory   = 64 * 1024
	DefaultArgon2Time     = 1
	DefaultArgon2Threads  = 4
	Argon2SaltLength      = 16
	Argon2KeyLength       = 32
	DefaultRequestTimeout = 5 * time.Second

	DBPoolMaxConns        = 25
	DBPoolMinConns        = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = 1 * time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = 1 * time.Second
	DBPoolMetricsInterval = 30 * time.Second
	DBQueryTimeout        = 30 * time.Second

	SQLiteBusyTimeout = 5 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second
	ServerWriteMargin       = 5 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultAuthHTTPPort = "8081"
	DefaultSQLitePath   = "./db/users.db"

	DefaultCircuitBreakerThreshold = 5
	DefaultCircuitBreakerTimeout   = 5 * time.Second
	DefaultCircuitBreakerReset     = 10 * time.Second

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
