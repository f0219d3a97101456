package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseViper() *viper.Viper {
	v := viper.New()
	v.Set("db.driver", "sqlite3")
	v.Set("db.dsn", "file:linkhub.db")
	v.Set("secrets.hash", "hash-secret")
	v.Set("secrets.token", "token-secret")
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(baseViper())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.OIDCEnabled())
}

func TestFromViper_MissingSecrets(t *testing.T) {
	v := baseViper()
	v.Set("secrets.hash", "")
	_, err := fromViper(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LINKHUB_SECRETS_HASH")

	v = baseViper()
	v.Set("secrets.token", "")
	_, err = fromViper(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LINKHUB_SECRETS_TOKEN")
}

func TestFromViper_SecretsMustDiffer(t *testing.T) {
	v := baseViper()
	v.Set("secrets.token", "hash-secret")
	_, err := fromViper(v)
	require.Error(t, err)
}

func TestFromViper_PartialOIDC(t *testing.T) {
	v := baseViper()
	v.Set("oidc.issuer", "https://accounts.example.com")
	_, err := fromViper(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LINKHUB_OIDC_CLIENT_ID")
}

func TestFromViper_CORSOrigins(t *testing.T) {
	v := baseViper()
	v.Set("cors.origins", "https://a.example.com, https://b.example.com,")
	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
}
