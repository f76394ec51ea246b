package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateTaxonName validates a taxon name for safety and correctness.
// It rejects names that could break serialization or be used for injection.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No Newick structural characters (parentheses, commas, colons, semicolons)
//   - Maximum length of 256 characters
func ValidateTaxonName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidTaxon, "taxon name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidTaxon, "taxon name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidTaxon, "taxon name contains invalid control characters")
		}
	}

	// Characters with structural meaning in Newick strings.
	if strings.ContainsAny(name, "(),:;[]'") {
		return New(ErrCodeInvalidTaxon, "taxon name contains reserved characters: %q", name)
	}

	return nil
}

// ValidatePath validates a file path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	// Check for path traversal
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	// No backslashes (potential Windows path injection)
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// runIDRegex matches the UUID form handed out for search runs.
var runIDRegex = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`)

// ValidateRunID validates a search run identifier.
func ValidateRunID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "run id cannot be empty")
	}

	if !runIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid run id: %q", id)
	}

	return nil
}

// ValidateOutputFormat validates a rendering output format.
func ValidateOutputFormat(format string) error {
	switch format {
	case "dot", "svg", "png", "pdf":
		return nil
	default:
		return New(ErrCodeInvalidFormat, "unsupported output format: %q (want dot, svg, png or pdf)", format)
	}
}
