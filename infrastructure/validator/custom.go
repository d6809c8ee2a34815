package validator

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var identityIDPattern = regexp.MustCompile(`^[\p{L}\p{N}_.:@\-]+$`)

func validateIdentityID(fl validator.FieldLevel) bool {
	return identityIDPattern.MatchString(fl.Field().String())
}

func validateDisplayName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if strings.TrimSpace(name) == "" {
		return false
	}
	for _, char := range name {
		if unicode.IsControl(char) {
			return false
		}
	}
	return true
}
