package errors

import (
	goerrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithContextChains(t *testing.T) {
	err := WithContext(WithContext(New("connection refused"), "list folders"), "load index")
	assert.Equal(t, "load index: list folders: connection refused", err.Error())
}

func TestContextErrorUnwrap(t *testing.T) {
	cause := RemoteIndexUnavailable{Cause: New("boom")}
	err := WithContext(cause, "sync root")

	var unavailable RemoteIndexUnavailable
	assert.True(t, goerrors.As(err, &unavailable))
}

func TestGetPrintableMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		exp  string
	}{
		{
			name: "Plain",
			err:  New("boom"),
			exp:  "boom",
		},
		{
			name: "Friendly",
			err:  NewFriendlyError("Set %s before running.", "SYNOLOGY_IP"),
			exp:  "Set SYNOLOGY_IP before running.",
		},
		{
			name: "FriendlyBehindContext",
			err:  WithContext(NewFriendlyError("Config %q is broken.", "/c.yaml"), "load config"),
			exp:  `Config "/c.yaml" is broken.`,
		},
		{
			name: "ContextChain",
			err:  WithContext(New("boom"), "load config"),
			exp:  "load config: boom",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.exp, GetPrintableMessage(test.err))
		})
	}
}

func TestFileNotFound(t *testing.T) {
	err := FileNotFound{Path: "/etc/albumsync.yaml"}
	assert.Contains(t, err.Error(), "/etc/albumsync.yaml")
}
