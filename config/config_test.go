package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("CAREFRONT_POSTGRES_DB", "carefront")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, c.Port)
	assert.Equal(t, "devsecret", c.JWTSecret)
	assert.Equal(t, "carefront", c.PostgresDB)
	assert.Equal(t, time.Minute, c.SubmitRateWindow)
	assert.Equal(t, uint(20), c.SubmitRateLimit)
	assert.False(t, c.RedisEnabled())
	assert.False(t, c.MailgunEnabled())
	assert.False(t, c.UploadsEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("CAREFRONT_PORT", "8081")
	t.Setenv("CAREFRONT_REDIS_ADDR", "localhost:6379")
	t.Setenv("CAREFRONT_ACCESS_CONTROL_ALLOW_ORIGIN", "https://a.example,https://b.example")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, c.Port)
	assert.True(t, c.RedisEnabled())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.AccessControlAllowOrigin)
}

func TestValidate_ProdRequiresSecret(t *testing.T) {
	c := &Config{Port: 5000, Env: "prod", JWTSecret: "devsecret"}
	assert.Error(t, c.Validate())

	c.JWTSecret = "s3cr3t"
	assert.NoError(t, c.Validate())
}

func TestPostgresDSN(t *testing.T) {
	c := &Config{
		PostgresHost:     "db",
		PostgresUser:     "care",
		PostgresPassword: "pw",
		PostgresDB:       "carefront",
		PostgresPort:     5432,
		PostgresTimeZone: "UTC",
	}
	assert.Equal(t, "host=db user=care password=pw dbname=carefront port=5432 TimeZone=UTC", c.PostgresDSN())
}
