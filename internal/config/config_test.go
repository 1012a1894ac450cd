package config

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Port)
	assert.Equal(t, ModeLogOnly, cfg.SMS.Mode)
	assert.Equal(t, "https://api.twilio.com", cfg.SMS.Twilio.BaseURL)
	assert.Equal(t, 4, cfg.Dispatch.Concurrency)
	assert.Equal(t, 10*time.Second, cfg.Dispatch.SendTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Redis.ContactsTTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndProviderEnv(t *testing.T) {
	path := writeConfig(t, `
sms:
  mode: "production"
dispatch:
  concurrency: 2
  send_timeout: "3s"
notifiers:
  telegram:
    chat_id: 42
`)
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "secret")
	t.Setenv("TWILIO_PHONE_NUMBER", "+15550000000")

	cfg, err := load(path)
	require.NoError(t, err)

	assert.Equal(t, ModeProduction, cfg.SMS.Mode)
	assert.Equal(t, "AC123", cfg.SMS.Twilio.AccountSID)
	assert.Equal(t, "secret", cfg.SMS.Twilio.AuthToken)
	assert.Equal(t, "+15550000000", cfg.SMS.Twilio.PhoneNumber)
	assert.Equal(t, 2, cfg.Dispatch.Concurrency)
	assert.Equal(t, 3*time.Second, cfg.Dispatch.SendTimeout)
	assert.Equal(t, int64(42), cfg.Notifiers.Telegram.ChatID)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			SMS: SMSConfig{Mode: ModeProduction, Twilio: TwilioConfig{
				AccountSID: "AC123", AuthToken: "secret", PhoneNumber: "+15550000000",
			}},
			Dispatch:  DispatchConfig{Concurrency: 1, SendTimeout: time.Second},
			Notifiers: NotifiersConfig{Mode: ModeLogOnly},
		}
	}

	t.Run("complete production config", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("production without credentials", func(t *testing.T) {
		cfg := valid()
		cfg.SMS.Twilio = TwilioConfig{AccountSID: "AC123"}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TWILIO_AUTH_TOKEN")
		assert.Contains(t, err.Error(), "TWILIO_PHONE_NUMBER")
		assert.NotContains(t, err.Error(), "TWILIO_ACCOUNT_SID")
	})

	t.Run("log only ignores credentials", func(t *testing.T) {
		cfg := valid()
		cfg.SMS = SMSConfig{Mode: ModeLogOnly}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown modes and bad dispatch settings", func(t *testing.T) {
		cfg := valid()
		cfg.SMS.Mode = "carrier-pigeon"
		cfg.Notifiers.Mode = "loud"
		cfg.Dispatch = DispatchConfig{}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "carrier-pigeon")
		assert.Contains(t, err.Error(), "loud")
		assert.Contains(t, err.Error(), "concurrency")
		assert.Contains(t, err.Error(), "send_timeout")
	})
}
