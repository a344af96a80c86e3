package server

import (
	"strings"
	"testing"

	devConfig "github.com/Daskott/contactspro/dev/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configFrom(t *testing.T, yml string) *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	require.Nil(t, v.ReadConfig(strings.NewReader(yml)))
	return v
}

func TestLoadDevConfig(t *testing.T) {
	config, err := LoadConfig(configFrom(t, devConfig.SERVER_YML))
	require.Nil(t, err)

	assert.Equal(t, 5000, config.ContactsPro.Listener.Port)
	assert.Equal(t, "0 * * * *", config.ContactsPro.Cron.RepairSchedule)
	assert.Equal(t, 4, config.ContactsPro.Ingest.Concurrency)
	assert.Contains(t, config.ContactsPro.Cors.AllowedOrigins, "http://localhost:5173")
	assert.False(t, config.Google.Storage.EnableSqliteBackupAndSync)
}

func TestLoadConfigValidation(t *testing.T) {
	cases := []struct {
		description string
		yml         string
		expectedErr string
	}{
		{
			description: "missing port",
			yml: `
contactspro:
  cron:
    timeZone: "UTC"
    repairSchedule: "0 * * * *"
`,
			expectedErr: "Port",
		},
		{
			description: "port out of range",
			yml: `
contactspro:
  cron:
    timeZone: "UTC"
    repairSchedule: "0 * * * *"
  listener:
    port: 70000
`,
			expectedErr: "Port",
		},
		{
			description: "concurrency out of range",
			yml: `
contactspro:
  cron:
    timeZone: "UTC"
    repairSchedule: "0 * * * *"
  listener:
    port: 5000
  ingest:
    concurrency: 100
`,
			expectedErr: "Concurrency",
		},
		{
			description: "backup enabled without bucket",
			yml: `
contactspro:
  cron:
    timeZone: "UTC"
    repairSchedule: "0 * * * *"
  listener:
    port: 5000
google:
  storage:
    prefix: "contactspro"
    sqliteBackupSchedule: "*/30 * * * *"
    enableSqliteBackupAndSync: true
`,
			expectedErr: "Bucket",
		},
	}

	for _, tcase := range cases {
		t.Run(tcase.description, func(t *testing.T) {
			_, err := LoadConfig(configFrom(t, tcase.yml))
			require.NotNil(t, err)
			assert.Contains(t, err.Error(), tcase.expectedErr)
		})
	}
}
