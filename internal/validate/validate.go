// Package validate holds the pre-condition checks every operation runs
// before touching storage. All checks are pure and synchronous.
package validate

import (
	"math"
	"regexp"

	"library-server/internal/liberr"
)

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// String requires a non-empty string value.
func String(value, field string) error {
	if value == "" {
		return liberr.NewValidation("%s %v is not a string", field, value)
	}
	return nil
}

// Number requires a finite number value.
func Number(value float64, field string) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return liberr.NewValidation("%s %v is not a number", field, value)
	}
	return nil
}

// NonNegativeInt requires an integer value of zero or more.
func NonNegativeInt(value int, field string) error {
	if value < 0 {
		return liberr.NewValidation("%s %v is not a non-negative number", field, value)
	}
	return nil
}

// Email requires a well-formed e-mail address.
func Email(value string) error {
	if !emailRE.MatchString(value) {
		return liberr.NewContent("%v is not an e-mail", value)
	}
	return nil
}
