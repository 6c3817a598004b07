package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setCredentialEnv(t *testing.T) {
	t.Setenv("SYNOLOGY_IP", "192.168.1.10")
	t.Setenv("SYNOLOGY_PORT", "5001")
	t.Setenv("SYNOLOGY_USERNAME", "bob")
	t.Setenv("SYNOLOGY_PASSWORD", "hunter2")
	t.Setenv("SYNOLOGY_OTP_CODE", "")
	t.Setenv("SYNOLOGY_DSM_VERSION", "")
}

func TestLoadCredentials(t *testing.T) {
	setCredentialEnv(t)

	creds, err := LoadCredentials()
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.10", creds.Host)
	assert.Equal(t, 5001, creds.Port)
	assert.Equal(t, "bob", creds.Username)
	assert.Equal(t, "hunter2", creds.Password)
	assert.Equal(t, 7, creds.DSMVersion, "DSM 7 is the default")
}

func TestLoadCredentialsDSMVersionOverride(t *testing.T) {
	setCredentialEnv(t)
	t.Setenv("SYNOLOGY_DSM_VERSION", "6")

	creds, err := LoadCredentials()
	require.NoError(t, err)
	assert.Equal(t, 6, creds.DSMVersion)
}

func TestLoadCredentialsMissingVariable(t *testing.T) {
	setCredentialEnv(t)
	t.Setenv("SYNOLOGY_PASSWORD", "")

	_, err := LoadCredentials()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SYNOLOGY_PASSWORD")
}

func TestLoadCredentialsBadPort(t *testing.T) {
	setCredentialEnv(t)
	t.Setenv("SYNOLOGY_PORT", "https")

	_, err := LoadCredentials()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SYNOLOGY_PORT")
}
