package permission

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// pathSignatureTools identifies tool names whose signature content is a
// filesystem path, and therefore matched case-insensitively per spec §4.2.
var pathSignatureTools = map[string]bool{
	"Read":         true,
	"FileRead":     true,
	"Write":        true,
	"FileWrite":    true,
	"Edit":         true,
	"FileEdit":     true,
	"NotebookEdit": true,
	"Glob":         true,
}

func isPathSignature(toolName string) bool {
	return pathSignatureTools[toolName]
}

// matchSignature reports whether pattern matches signature, full-string
// (not substring), using doublestar's glob language (* and **). Only path
// signatures treat "/" as a separator; in any other signature * also
// spans "/", so "Bash:rm *" matches "Bash:rm -rf /tmp".
func matchSignature(pattern, signature, toolName string) bool {
	if isPathSignature(toolName) {
		pattern = strings.ToLower(pattern)
		signature = strings.ToLower(signature)
	} else {
		pattern = strings.ReplaceAll(pattern, "/", "\x1f")
		signature = strings.ReplaceAll(signature, "/", "\x1f")
	}
	matched, err := doublestar.Match(pattern, signature)
	if err != nil {
		return false
	}
	return matched
}

// firstMatch returns the first pattern in patterns that matches signature,
// and whether any did.
func firstMatch(patterns []string, signature, toolName string) (string, bool) {
	for _, p := range patterns {
		if matchSignature(p, signature, toolName) {
			return p, true
		}
	}
	return "", false
}

// dangerousDirs are OS-critical directories the guard refuses to touch
// regardless of rule outcome.
var dangerousDirs = []string{
	"/etc",
	"/System",
	"/bin",
	"/sbin",
	"/usr/bin",
	"/usr/sbin",
	"/Windows",
	"/windows",
}

// isDangerousPath reports whether path, after normalization, contains a
// traversal segment or falls under an OS-critical directory.
func isDangerousPath(path string) bool {
	clean := filepath.Clean(path)

	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return true
		}
	}

	normalized := filepath.ToSlash(clean)
	lower := strings.ToLower(normalized)
	if lower == "/" {
		return true
	}
	if strings.Contains(lower, "system32") {
		return true
	}
	for _, dir := range dangerousDirs {
		dirLower := strings.ToLower(dir)
		if lower == dirLower || strings.HasPrefix(lower, dirLower+"/") {
			return true
		}
	}
	return false
}

// dangerousPathGuard returns true (and the offending path) if any affected
// path is dangerous, per spec §4.2.
func dangerousPathGuard(affectedPaths []string) (string, bool) {
	for _, p := range affectedPaths {
		if isDangerousPath(p) {
			return p, true
		}
	}
	return "", false
}
