package config

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	secret := base64.StdEncoding.EncodeToString([]byte("test-secret"))

	tcases := []struct {
		name           string
		serverAddr     string
		databaseDSN    string
		base64Secret   string
		allowedOrigins []string
		expectErr      bool
	}{
		{
			name:           "valid config",
			serverAddr:     "localhost:8000",
			databaseDSN:    "host=localhost",
			base64Secret:   secret,
			allowedOrigins: []string{"http://localhost:3000"},
		},
		{
			name:         "empty server address",
			serverAddr:   "",
			databaseDSN:  "host=localhost",
			base64Secret: secret,
			expectErr:    true,
		},
		{
			name:         "empty database DSN",
			serverAddr:   "localhost:8000",
			databaseDSN:  "",
			base64Secret: secret,
			expectErr:    true,
		},
		{
			name:         "empty signing secret",
			serverAddr:   "localhost:8000",
			databaseDSN:  "host=localhost",
			base64Secret: "",
			expectErr:    true,
		},
		{
			name:         "invalid base64 signing secret",
			serverAddr:   "localhost:8000",
			databaseDSN:  "host=localhost",
			base64Secret: "not-base64!!!",
			expectErr:    true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.serverAddr, tc.databaseDSN, tc.base64Secret, tc.allowedOrigins)
			if tc.expectErr {
				assert.Error(t, err, "expected config creation to fail")
				assert.Nil(t, cfg, "expected no config on error")
				return
			}

			assert.NoError(t, err, "expected config creation to succeed")
			assert.Equal(t, tc.serverAddr, cfg.ServerAddr, "expected server address to be set")
			assert.Equal(t, tc.databaseDSN, cfg.DatabaseDSN, "expected DSN to be set")
			assert.Equal(t, []byte("test-secret"), cfg.SigningKey, "expected decoded signing key")
			assert.Equal(t, tc.allowedOrigins, cfg.AllowedOrigins, "expected allowed origins to be set")
		})
	}
}

func Test_decodeSigningSecret(t *testing.T) {
	key, err := decodeSigningSecret(base64.StdEncoding.EncodeToString([]byte("abc")))
	assert.NoError(t, err, "expected decode to succeed")
	assert.Equal(t, []byte("abc"), key, "expected decoded key to match")

	_, err = decodeSigningSecret("%%%")
	assert.Error(t, err, "expected invalid base64 to fail")
}
