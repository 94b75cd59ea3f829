package validator

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate struct fields
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}

// CleanText normalises user text to NFC and trims surrounding whitespace,
// so that length limits count what the reader sees.
func CleanText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// RuneLen counts characters rather than bytes.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// LenBetween reports whether s has between min and max characters.
func LenBetween(s string, min, max int) bool {
	n := RuneLen(s)
	return n >= min && n <= max
}
