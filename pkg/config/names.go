package config

import "strings"

// reservedNames are hidden or system folders that must never become albums
// or managed roots. Compared case-insensitively.
var reservedNames = map[string]struct{}{
	"@eadir":         {},
	"#snapshot":      {},
	"@tmp":           {},
	".ds_store":      {},
	"synologyphotos": {},
	"screenshots":    {},
}

// mediaExtensions are the file extensions (lowercased, with dot) the scanner
// treats as media.
var mediaExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".bmp": {},
	".tif": {}, ".tiff": {}, ".heic": {}, ".heif": {},
	".arw": {}, ".cr2": {}, ".cr3": {}, ".nef": {}, ".dng": {},
	".rw2": {}, ".orf": {}, ".raf": {}, ".srw": {}, ".pef": {},
	".mp4": {}, ".m4v": {}, ".mov": {}, ".mkv": {}, ".avi": {},
	".wmv": {}, ".mpg": {}, ".mpeg": {}, ".mts": {}, ".m2ts": {},
	".3gp": {}, ".3g2": {}, ".webm": {},
}

// IsReservedName reports whether a folder name is on the block-list.
func IsReservedName(name string) bool {
	_, ok := reservedNames[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// IsValidFolderName reports whether a folder may be managed: non-empty, not
// reserved, and not hidden.
func IsValidFolderName(name string) bool {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || strings.HasPrefix(trimmed, ".") {
		return false
	}
	return !IsReservedName(trimmed)
}

// IsMediaFile reports whether a file name has a media extension.
func IsMediaFile(name string) bool {
	idx := strings.LastIndex(name, ".")
	if idx == -1 {
		return false
	}
	_, ok := mediaExtensions[strings.ToLower(name[idx:])]
	return ok
}
