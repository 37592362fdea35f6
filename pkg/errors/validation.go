package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateOutputName validates a base name for output artifacts.
// It rejects names that could be used for path traversal or that would
// produce surprising file names.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateOutputName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidOutput, "output name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidOutput, "output name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidOutput, "output name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidOutput, "output name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// hexColorRegex matches 3-, 6- and 8-digit hex color codes with a leading #.
var hexColorRegex = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// ValidateHexColor validates a hex color string such as "#FFFFFF".
// Accepted forms: #RGB, #RRGGBB, #RRGGBBAA.
func ValidateHexColor(s string) error {
	if s == "" {
		return New(ErrCodeInvalidColor, "color cannot be empty")
	}
	if !hexColorRegex.MatchString(s) {
		return New(ErrCodeInvalidColor, "invalid hex color %q (expected #RGB, #RRGGBB or #RRGGBBAA)", s)
	}
	return nil
}

// ValidateDimensions validates canvas dimensions.
// Both width and height must be strictly positive.
func ValidateDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidDimensions, "dimensions must be positive, got %dx%d", width, height)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
