package errors

import (
	"strings"
	"unicode"
)

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidURL, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidURL, "URL must use http or https scheme")
	}

	for _, r := range rawURL {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidURL, "URL contains invalid characters")
		}
	}

	return nil
}

// ValidateArtifactID validates a source-specific artifact identifier
// (e.g., "owner/name") before it is interpolated into API paths.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or null bytes
//   - No path traversal sequences (.., //)
//   - Maximum length of 256 characters
func ValidateArtifactID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "artifact identifier cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "artifact identifier too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "artifact identifier contains control characters")
		}
	}

	for _, pattern := range []string{"..", "//", "\\", "\x00"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "artifact identifier contains invalid sequence: %q", pattern)
		}
	}

	return nil
}
