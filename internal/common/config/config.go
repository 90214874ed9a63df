package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/AlibekovAA/authd/internal/common/constants"
	commonerrors "github.com/AlibekovAA/authd/internal/common/errors"
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type AuthConfig struct {
	HTTPPort    string `koanf:"http_port" env:"AUTH_HTTP_PORT"`
	StoreDriver string `koanf:"store_driver" env:"AUTH_STORE_DRIVER"`
	DatabaseURL string `koanf:"database_url" env:"DATABASE_URL"`
	SQLitePath  string `koanf:"sqlite_path" env:"AUTH_SQLITE_PATH"`
	AutoMigrate bool   `koanf:"auto_migrate" env:"AUTH_AUTO_MIGRATE"`

	JWTSecret string        `koanf:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL  time.Duration `koanf:"token_ttl" env:"AUTH_TOKEN_TTL"`

	HashAlgorithm   string `koanf:"hash_algorithm" env:"AUTH_HASH_ALGORITHM"`
	BcryptCost      int    `koanf:"bcrypt_cost" env:"AUTH_BCRYPT_COST"`
	Argon2MemoryKiB uint32 `koanf:"argon2_memory_kib" env:"AUTH_ARGON2_MEMORY_KIB"`
	Argon2Time      uint32 `koanf:"argon2_time" env:"AUTH_ARGON2_TIME"`
	Argon2Threads   uint8  `koanf:"argon2_threads" env:"AUTH_ARGON2_THREADS"`
	HashWorkers     int    `koanf:"hash_workers" env:"AUTH_HASH_WORKERS"`
	IDScheme        string `koanf:"id_scheme" env:"AUTH_ID_SCHEME"`

	RequestTimeout time.Duration `koanf:"request_timeout" env:"AUTH_REQUEST_TIMEOUT"`

	CircuitBreakerThreshold int           `koanf:"cb_threshold" env:"AUTH_CB_THRESHOLD"`
	CircuitBreakerTimeout   time.Duration `koanf:"cb_timeout" env:"AUTH_CB_TIMEOUT"`
	CircuitBreakerReset     time.Duration `koanf:"cb_reset" env:"AUTH_CB_RESET"`

	LogDir       string `koanf:"log_dir" env:"LOG_DIR"`
	LogLevel     string `koanf:"log_level" env:"LOG_LEVEL"`
	OTLPEndpoint string `koanf:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		HTTPPort:                constants.DefaultAuthHTTPPort,
		StoreDriver:             StoreSQLite,
		SQLitePath:              constants.DefaultSQLitePath,
		AutoMigrate:             true,
		TokenTTL:                constants.DefaultTokenTTL,
		HashAlgorithm:           "bcrypt",
		BcryptCost:              constants.DefaultBcryptCost,
		Argon2MemoryKiB:         constants.DefaultArgon2Memory,
		Argon2Time:              constants.DefaultArgon2Time,
		Argon2Threads:           constants.DefaultArgon2Threads,
		IDScheme:                "uuid",
		RequestTimeout:          constants.DefaultRequestTimeout,
		CircuitBreakerThreshold: constants.DefaultCircuitBreakerThreshold,
		CircuitBreakerTimeout:   constants.DefaultCircuitBreakerTimeout,
		CircuitBreakerReset:     constants.DefaultCircuitBreakerReset,
		LogLevel:                "INFO",
	}
}

// RegisterFlags adds one flag per setting. Only flags the user actually sets
// take part in LoadAuthConfig, so the defaults shown here are informational.
func RegisterFlags(fs *pflag.FlagSet) {
	d := DefaultAuthConfig()
	fs.String("http-port", d.HTTPPort, "HTTP listen port")
	fs.String("store-driver", d.StoreDriver, "account store: memory, sqlite or postgres")
	fs.String("database-url", "", "PostgreSQL connection string")
	fs.String("sqlite-path", d.SQLitePath, "SQLite database file")
	fs.Bool("auto-migrate", d.AutoMigrate, "apply schema migrations on start")
	fs.Duration("token-ttl", d.TokenTTL, "bearer token lifetime")
	fs.String("hash-algorithm", d.HashAlgorithm, "password hash algorithm: bcrypt or argon2id")
	fs.Int("bcrypt-cost", d.BcryptCost, "bcrypt cost factor")
	fs.Int("hash-workers", 0, "concurrent hashing slots (0 = GOMAXPROCS)")
	fs.String("id-scheme", d.IDScheme, "account id scheme: uuid or ulid")
	fs.Duration("request-timeout", d.RequestTimeout, "per-request timeout")
	fs.String("log-dir", "", "directory for rotated log files")
	fs.String("log-level", d.LogLevel, "log level")
}

// LoadAuthConfig layers defaults, the optional YAML file at path, the
// environment and changed flags, in that order, then validates the result.
func LoadAuthConfig(path string, flags *pflag.FlagSet) (AuthConfig, error) {
	cfg := DefaultAuthConfig()
	unmarshal := koanf.UnmarshalConf{Tag: "koanf"}

	if path != "" {
		k := koanf.New(".")
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return AuthConfig{}, fmt.Errorf("load config file %s: %w", path, err)
		}
		if err := k.UnmarshalWithConf("", &cfg, unmarshal); err != nil {
			return AuthConfig{}, fmt.Errorf("decode config file %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return AuthConfig{}, fmt.Errorf("parse env: %w", err)
	}

	if flags != nil {
		k := koanf.New(".")
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return AuthConfig{}, fmt.Errorf("load flags: %w", err)
		}
		if err := k.UnmarshalWithConf("", &cfg, unmarshal); err != nil {
			return AuthConfig{}, fmt.Errorf("decode flags: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return AuthConfig{}, err
	}
	return cfg, nil
}

func (c AuthConfig) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET", commonerrors.ErrMissingRequiredEnv)
	}
	if err := validateJWTSecret(c.JWTSecret); err != nil {
		return err
	}

	switch c.StoreDriver {
	case StoreMemory:
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: AUTH_SQLITE_PATH", commonerrors.ErrMissingRequiredEnv)
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL", commonerrors.ErrMissingRequiredEnv)
		}
	default:
		return invalid("unknown store driver %q", c.StoreDriver)
	}

	switch c.HashAlgorithm {
	case "bcrypt":
		if c.BcryptCost < constants.MinConfigBcryptCost || c.BcryptCost > 31 {
			return invalid("bcrypt cost must be between %d and 31, got %d", constants.MinConfigBcryptCost, c.BcryptCost)
		}
	case "argon2id":
		if c.Argon2MemoryKiB == 0 || c.Argon2Time == 0 || c.Argon2Threads == 0 {
			return invalid("argon2id parameters must be positive")
		}
	default:
		return invalid("unknown hash algorithm %q", c.HashAlgorithm)
	}

	switch c.IDScheme {
	case "uuid", "ulid":
	default:
		return invalid("unknown id scheme %q", c.IDScheme)
	}

	if c.TokenTTL <= 0 {
		return invalid("token ttl must be positive")
	}
	if c.RequestTimeout <= 0 {
		return invalid("request timeout must be positive")
	}
	if c.HashWorkers < 0 {
		return invalid("hash workers must not be negative")
	}
	if c.CircuitBreakerThreshold <= 0 {
		return invalid("circuit breaker threshold must be positive")
	}
	return nil
}

// Redacted is safe to log.
func (c AuthConfig) Redacted() AuthConfig {
	if c.JWTSecret != "" {
		c.JWTSecret = "***"
	}
	if c.DatabaseURL != "" {
		c.DatabaseURL = "***"
	}
	return c
}

func validateJWTSecret(secret string) error {
	if len(secret) < constants.JWTSecretMinLength {
		return fmt.Errorf("%w: got %d bytes", commonerrors.ErrInvalidJWTSecret, len(secret))
	}
	return nil
}

func invalid(format string, args ...any) error {
	return commonerrors.ErrInvalidConfig.WithMessage(fmt.Sprintf(format, args...))
}
