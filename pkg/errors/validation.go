package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// maxNameLength bounds register, class and node names.
const maxNameLength = 128

// nameRegex matches identifiers usable as register, class or node names.
// Names may contain dots and percent signs so that SSA-style values
// ("%v12", "t0.lo") can be used directly.
var nameRegex = regexp.MustCompile(`^[A-Za-z0-9_%$.][A-Za-z0-9_%$.:-]*$`)

// ValidateName validates a register, class or node name.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or whitespace
//   - Maximum length of 128 characters
//   - Only letters, digits and the characters _ % $ . : -
//
// The kind argument only appears in error messages ("register", "node", ...).
func ValidateName(kind, name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "%s name cannot be empty", kind)
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "%s name too long (max %d characters)", kind, maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidName, "%s name %q contains whitespace or control characters", kind, name)
		}
	}

	if !nameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid %s name: %q", kind, name)
	}

	return nil
}

// ValidateFormat checks that a problem file format is one the decoders
// understand. The empty string is accepted and means "infer from extension".
func ValidateFormat(format string) error {
	switch strings.ToLower(format) {
	case "", "toml", "json":
		return nil
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (want toml or json)", format)
}

// FormatFromPath infers a problem format from a file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml", nil
	case ".json":
		return "json", nil
	}
	return "", New(ErrCodeInvalidFormat, "cannot infer format from %q (use .toml or .json)", path)
}
