package vpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		exp  string
	}{
		{name: "Empty", arg: "", exp: "/"},
		{name: "Root", arg: "/", exp: "/"},
		{name: "NoLeadingSlash", arg: "photos-shared/Trips", exp: "/photos-shared/Trips"},
		{name: "TrailingSlash", arg: "/photos-shared/Trips/", exp: "/photos-shared/Trips"},
		{name: "BothSlashes", arg: "//a/b//", exp: "/a/b"},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.exp, Normalize(test.arg))
		})
	}
}

func TestRelativeChild(t *testing.T) {
	tests := []struct {
		name     string
		child    string
		root     string
		expToken string
		expOK    bool
	}{
		{
			name:     "DirectChild",
			child:    "/shared/mount_Trips/Paris",
			root:     "/shared/mount_Trips",
			expToken: "Paris",
			expOK:    true,
		},
		{
			name:     "NestedChild",
			child:    "/shared/mount_Trips/Paris/2024",
			root:     "/shared/mount_Trips",
			expToken: "Paris",
			expOK:    true,
		},
		{
			name:  "SamePath",
			child: "/shared/mount_Trips",
			root:  "/shared/mount_Trips",
			expOK: false,
		},
		{
			name:  "Unrelated",
			child: "/other/Paris",
			root:  "/shared/mount_Trips",
			expOK: false,
		},
		{
			name:     "CaseInsensitiveRoot",
			child:    "/Shared/Mount_Trips/Paris",
			root:     "/shared/mount_trips",
			expToken: "Paris",
			expOK:    true,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			token, ok := RelativeChild(test.child, test.root)
			assert.Equal(t, test.expOK, ok)
			assert.Equal(t, test.expToken, token)
		})
	}
}

func TestIsDirectChild(t *testing.T) {
	tests := []struct {
		name   string
		child  string
		parent string
		expOK  bool
	}{
		{name: "Direct", child: "/a/b", parent: "/a", expOK: true},
		{name: "Nested", child: "/a/b/c", parent: "/a", expOK: false},
		{name: "Same", child: "/a", parent: "/a", expOK: false},
		{name: "Sibling", child: "/b/c", parent: "/a", expOK: false},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			_, ok := IsDirectChild(test.child, test.parent)
			assert.Equal(t, test.expOK, ok)
		})
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "/shared/paris", Key("/Shared/Paris/"))
	assert.Equal(t, Key("/a/B"), Key("/A/b"))
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "/a/b", Join("/a", "b"))
	assert.Equal(t, "/a/b", Join("a/", "/b/"))
	assert.Equal(t, "/b", Join("/", "b"))
}

func TestBase(t *testing.T) {
	assert.Equal(t, "Paris", Base("/shared/mount_Trips/Paris"))
	assert.Equal(t, "", Base("/"))
	assert.Equal(t, "a", Base("a"))
}
