package errors

import (
	"slices"
	"strings"
	"unicode"
)

// ValidateTarget validates a physical slot target count.
// Zero is allowed (only the empty circuit fits on zero slots).
func ValidateTarget(target int) error {
	if target < 0 {
		return New(ErrCodeInvalidInput, "target count must be >= 0, got %d", target)
	}
	return nil
}

// ValidateChoice checks that name is one of the allowed values and returns
// an error carrying code otherwise. Matching is case-sensitive.
func ValidateChoice(code Code, kind, name string, allowed []string) error {
	if name == "" {
		return New(code, "%s cannot be empty (must be one of: %s)", kind, strings.Join(allowed, ", "))
	}
	if !slices.Contains(allowed, name) {
		return New(code, "invalid %s: %q (must be one of: %s)", kind, name, strings.Join(allowed, ", "))
	}
	return nil
}

// ValidatePath validates a local file path supplied on the command line or
// in a configuration file.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateURL validates a cache backend URL.
// It ensures the URL uses the redis or rediss scheme.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "redis://") && !strings.HasPrefix(rawURL, "rediss://") {
		return New(ErrCodeInvalidInput, "URL must use redis or rediss scheme")
	}

	return nil
}
