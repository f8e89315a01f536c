package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Debug            bool   `envconfig:"debug"`
	Port             int    `envconfig:"port" default:"5000"`
	Env              string `envconfig:"env" default:"dev"`
	PostgresHost     string `envconfig:"postgres_host" default:"localhost"`
	PostgresUser     string `envconfig:"postgres_user"`
	PostgresDB       string `envconfig:"postgres_db"`
	PostgresPort     int    `envconfig:"postgres_port" default:"5432"`
	PostgresPassword string `envconfig:"postgres_password"`
	PostgresTimeZone string `envconfig:"postgres_timezone" default:"UTC"`
	JWTSecret        string `envconfig:"jwt_secret" default:"devsecret"`

	AccessControlAllowOrigin []string `envconfig:"access_control_allow_origin"`

	RedisAddr     string `envconfig:"redis_addr"`
	RedisPassword string `envconfig:"redis_password"`
	RedisDB       int    `envconfig:"redis_db"`

	MailgunApiKey string `envconfig:"mg_public_api_key"`
	MgDomain      string `envconfig:"mg_domain"`
	MgEmailFrom   string `envconfig:"email_from"`

	AWSRegion          string `envconfig:"aws_region"`
	AWSBucket          string `envconfig:"aws_bucket"`
	AWSAccessKeyID     string `envconfig:"aws_access_key_id"`
	AWSSecretAccessKey string `envconfig:"aws_secret_access_key"`

	LogLevel  string `envconfig:"log_level" default:"info"`
	LogFormat string `envconfig:"log_format" default:"json"`

	SubmitRateWindow time.Duration `envconfig:"submit_rate_window" default:"1m"`
	SubmitRateLimit  uint          `envconfig:"submit_rate_limit" default:"20"`
	IdempotencyTTL   time.Duration `envconfig:"idempotency_ttl" default:"24h"`
}

func Load() (*Config, error) {
	env := os.Getenv("GIN_MODE")
	if env != "release" {
		if err := godotenv.Load("./.env"); err != nil {
			log.Printf("couldn't load env vars: %v", err)
		}
	}

	c := &Config{}
	err := envconfig.Process("carefront", c)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks settings that would make the service unsafe to run.
func (c *Config) Validate() error {
	if c.Port <= 0 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Env == "prod" && (c.JWTSecret == "" || c.JWTSecret == "devsecret") {
		return errors.New("jwt_secret must be set in prod")
	}
	return nil
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d TimeZone=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresPort, c.PostgresTimeZone)
}

func (c *Config) RedisEnabled() bool   { return c.RedisAddr != "" }
func (c *Config) MailgunEnabled() bool { return c.MailgunApiKey != "" && c.MgDomain != "" }
func (c *Config) UploadsEnabled() bool { return c.AWSBucket != "" }
