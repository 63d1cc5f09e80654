package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJson_Overlays(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	body := `{
		"endpoint_addr_http": ":9090",
		"access_token_secret": "json-access",
		"access_token_validity_duration": "1m",
		"cookie_secure": false
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	oldArgs := os.Args
	os.Args = []string{"streamvault", "-c", path}
	defer func() { os.Args = oldArgs }()

	c := &Config{}
	c.LoadDefaults()
	parseJson(c)

	assert.Equal(t, ":9090", c.EndpointAddrHTTP)
	assert.Equal(t, "json-access", c.AccessTokenSecret)
	assert.Equal(t, time.Minute, c.AccessTokenValidityDuration)
	assert.False(t, c.CookieSecure)
	// fields absent from the file keep their defaults
	assert.Equal(t, "dev-refresh-secret", c.RefreshTokenSecret)
	assert.Equal(t, 10*24*time.Hour, c.RefreshTokenValidityDuration)
}

func TestParseJson_NoFileFlagIsNoop(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"streamvault"}
	defer func() { os.Args = oldArgs }()

	c := &Config{}
	c.LoadDefaults()
	parseJson(c)

	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
}
