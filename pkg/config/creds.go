package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"albumsync/pkg/errors"
)

// Credentials hold the DSM connection settings. They come from the
// environment (optionally seeded from a .env file) rather than the config
// file so the password never lands in a world-readable YAML file.
type Credentials struct {
	Host       string
	Port       int
	Username   string
	Password   string
	OTPCode    string
	DSMVersion int
}

// LoadCredentials reads the SYNOLOGY_* environment variables, loading a
// .env file from the working directory first when one exists.
func LoadCredentials() (Credentials, error) {
	// Missing .env is fine; the variables may be set directly.
	_ = godotenv.Load()

	creds := Credentials{
		Host:       os.Getenv("SYNOLOGY_IP"),
		Username:   os.Getenv("SYNOLOGY_USERNAME"),
		Password:   os.Getenv("SYNOLOGY_PASSWORD"),
		OTPCode:    os.Getenv("SYNOLOGY_OTP_CODE"),
		DSMVersion: 7,
	}

	for _, required := range []struct{ key, value string }{
		{"SYNOLOGY_IP", creds.Host},
		{"SYNOLOGY_PORT", os.Getenv("SYNOLOGY_PORT")},
		{"SYNOLOGY_USERNAME", creds.Username},
		{"SYNOLOGY_PASSWORD", creds.Password},
	} {
		if required.value == "" {
			return Credentials{}, errors.NewFriendlyError(
				"The environment variable %s is required. Set the SYNOLOGY_IP, "+
					"SYNOLOGY_PORT, SYNOLOGY_USERNAME and SYNOLOGY_PASSWORD "+
					"variables (or put them in a .env file) before running.",
				required.key)
		}
	}

	port, err := strconv.Atoi(os.Getenv("SYNOLOGY_PORT"))
	if err != nil {
		return Credentials{}, errors.NewFriendlyError(
			"SYNOLOGY_PORT must be a number, but is %q.", os.Getenv("SYNOLOGY_PORT"))
	}
	creds.Port = port

	if raw := os.Getenv("SYNOLOGY_DSM_VERSION"); raw != "" {
		if version, err := strconv.Atoi(raw); err == nil {
			creds.DSMVersion = version
		}
	}
	return creds, nil
}
