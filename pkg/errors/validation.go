package errors

import (
	"strings"
	"unicode"
)

// ValidateDocumentID validates a document identifier for safety and
// correctness. It rejects ids that could be used for path traversal or
// injection through cache keys and store queries.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 256 characters
func ValidateDocumentID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "document id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "document id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "document id contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "document id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateBlockID validates a block identifier. Block ids share the
// document-id rules but also appear inside URL query strings, so URL
// metacharacters are rejected too.
func ValidateBlockID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "block id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "block id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "block id contains invalid control characters")
		}
	}

	if strings.ContainsAny(id, "?&=#/\\") {
		return New(ErrCodeInvalidInput, "block id contains URL metacharacters")
	}

	return nil
}

// ValidateManifestFilename validates a manifest filename for safety.
// It ensures the filename is a simple basename without path components.
func ValidateManifestFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidManifest, "manifest filename cannot be empty")
	}

	// Must be a simple filename, not a path
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidManifest, "manifest filename cannot contain path separators")
	}

	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidManifest, "manifest filename cannot be a hidden file")
	}

	return nil
}
