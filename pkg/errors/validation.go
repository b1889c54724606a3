package errors

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// validate is shared; validator caches struct metadata per type.
var validate = validator.New(validator.WithRequiredStructEnabled())

// MaxDocumentSize is the largest notation document accepted, in bytes.
const MaxDocumentSize = 1 << 20

// ValidateDocument checks that notation text is valid UTF-8 without NUL
// bytes and within [MaxDocumentSize]. Empty text is valid.
func ValidateDocument(text string) error {
	if len(text) > MaxDocumentSize {
		return New(ErrCodeInvalidInput, "document too large (max %d bytes)", MaxDocumentSize)
	}
	if !utf8.ValidString(text) {
		return New(ErrCodeInvalidInput, "document is not valid UTF-8")
	}
	if strings.ContainsRune(text, 0) {
		return New(ErrCodeInvalidInput, "document contains a null byte")
	}
	return nil
}

// ValidateNodeID checks that id can be written back as notation: letters,
// digits, underscores and inner hyphens only.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}
	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "node id too long (max 256 characters)")
	}
	if strings.HasPrefix(id, "-") || strings.HasSuffix(id, "-") || strings.Contains(id, "--") {
		return New(ErrCodeInvalidInput, "node id %q has a misplaced hyphen", id)
	}
	for _, r := range id {
		if r != '_' && r != '-' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return New(ErrCodeInvalidInput, "node id %q contains invalid character %q", id, r)
		}
	}
	return nil
}

// ValidateLabel checks that a label fits on one line.
func ValidateLabel(label string) error {
	if strings.ContainsAny(label, "\r\n") {
		return New(ErrCodeInvalidInput, "label cannot contain line breaks")
	}
	for _, r := range label {
		if unicode.IsControl(r) && r != '\t' {
			return New(ErrCodeInvalidInput, "label contains invalid control characters")
		}
	}
	return nil
}

// ValidateStruct checks the validate tags of v and reports the first
// failing field as an *Error with the given code.
func ValidateStruct(code Code, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return Wrap(code, err, "validation failed")
	}

	e := fieldErrs[0]
	field := e.Namespace()
	switch e.Tag() {
	case "required":
		return New(code, "%s: field is required", field)
	case "min", "gte":
		return New(code, "%s: must be at least %s", field, e.Param())
	case "max", "lte":
		return New(code, "%s: must not exceed %s", field, e.Param())
	case "gt":
		return New(code, "%s: must be greater than %s", field, e.Param())
	case "oneof":
		return New(code, "%s: must be one of [%s]", field, e.Param())
	default:
		return New(code, "%s: validation failed (%s)", field, e.Tag())
	}
}
