package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	DriverMongo    = "mongodb"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Env     string
	AppName string
	Port    int

	DBDriver      string
	MongoURI      string
	MongoDatabase string
	DatabaseURL   string

	JWTSecret      []byte
	JWTExpiration  time.Duration
	PasswordPolicy string

	LogLevel string
	LogDir   string

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	CORSOrigins []string
}

// Load reads .env (if present) and then the process environment. Keys are
// resolved through the APP_ENV profile: with APP_ENV=development a DEV_PORT
// value wins over PORT, with APP_ENV=test a TEST_PORT value does.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}
	return FromEnv(), nil
}

func FromEnv() *Config {
	env := strings.ToLower(EnvDefault("APP_ENV", EnvDevelopment))
	p := profile{env: env}

	return &Config{
		Env:     env,
		AppName: p.def("APP_NAME", "documents-api"),
		Port:    p.intDef("PORT", 4000),

		DBDriver:      strings.ToLower(p.def("DB_DRIVER", DriverMongo)),
		MongoURI:      p.get("MONGODB_URI"),
		MongoDatabase: p.get("MONGODB_DATABASE"),
		DatabaseURL:   p.get("DATABASE_URL"),

		JWTSecret:      []byte(p.get("SECRET")),
		JWTExpiration:  time.Duration(p.intDef("JWT_EXPIRATION_MS", 3600000)) * time.Millisecond,
		PasswordPolicy: strings.ToLower(p.def("PASSWORD_POLICY", "plain")),

		LogLevel: p.def("LOG_LEVEL", "info"),
		LogDir:   p.get("LOG_DIR"),

		KafkaBrokers: CSV(p.get("KAFKA_BROKERS")),

		ESURL:      p.get("ES_URL"),
		ESUser:     p.get("ES_USER"),
		ESPassword: p.get("ES_PASSWORD"),
		ESIndex:    p.def("ES_INDEX", "documents"),

		CORSOrigins: CSV(p.get("CORS_ORIGINS")),
	}
}

func (c *Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) == 0 {
		errs = append(errs, errors.New("missing required env SECRET"))
	}
	if c.JWTExpiration <= 0 {
		errs = append(errs, fmt.Errorf("JWT_EXPIRATION_MS must be positive, got %s", c.JWTExpiration))
	}
	switch c.DBDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("missing required env MONGODB_URI"))
		}
	case DriverPostgres, DriverSQLite:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("missing required env DATABASE_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver))
	}
	switch c.PasswordPolicy {
	case "plain", "bcrypt":
	default:
		errs = append(errs, fmt.Errorf("unknown PASSWORD_POLICY %q", c.PasswordPolicy))
	}
	return errors.Join(errs...)
}

func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

type profile struct {
	env string
}

func (p profile) prefix() string {
	switch p.env {
	case EnvDevelopment:
		return "DEV_"
	case EnvTest:
		return "TEST_"
	}
	return ""
}

func (p profile) get(key string) string {
	if pre := p.prefix(); pre != "" {
		if v := os.Getenv(pre + key); v != "" {
			return v
		}
	}
	return os.Getenv(key)
}

func (p profile) def(key, def string) string {
	if v := p.get(key); v != "" {
		return v
	}
	return def
}

func (p profile) intDef(key string, def int) int {
	v := p.get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if os.Getenv(key) != "" {
		return os.Getenv(key)
	}
	return def
}
