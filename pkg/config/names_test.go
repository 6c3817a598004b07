package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsReservedName(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		exp  bool
	}{
		{name: "EaDir", arg: "@eaDir", exp: true},
		{name: "Snapshot", arg: "#snapshot", exp: true},
		{name: "Tmp", arg: "@tmp", exp: true},
		{name: "DsStore", arg: ".DS_Store", exp: true},
		{name: "Screenshots", arg: "Screenshots", exp: true},
		{name: "Padded", arg: "  @eadir  ", exp: true},
		{name: "Regular", arg: "Paris", exp: false},
		{name: "Empty", arg: "", exp: false},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.exp, IsReservedName(test.arg))
		})
	}
}

func TestIsValidFolderName(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		exp  bool
	}{
		{name: "Regular", arg: "Paris", exp: true},
		{name: "Spaces", arg: "New Year 2024", exp: true},
		{name: "Empty", arg: "", exp: false},
		{name: "Whitespace", arg: "   ", exp: false},
		{name: "Hidden", arg: ".thumbnails", exp: false},
		{name: "Reserved", arg: "@eaDir", exp: false},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.exp, IsValidFolderName(test.arg))
		})
	}
}

func TestIsMediaFile(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		exp  bool
	}{
		{name: "Jpeg", arg: "eiffel.jpg", exp: true},
		{name: "UpperCase", arg: "GATE.HEIC", exp: true},
		{name: "Raw", arg: "shot.ARW", exp: true},
		{name: "Video", arg: "clip.mp4", exp: true},
		{name: "Text", arg: "readme.txt", exp: false},
		{name: "NoExtension", arg: "Makefile", exp: false},
		{name: "DotFile", arg: ".jpg", exp: true},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.exp, IsMediaFile(test.arg))
		})
	}
}
