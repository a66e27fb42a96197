// Package validate holds the request rules shared by every write path:
// required-field presence, password policy, reference-name matching and
// username derivation.
package validate

import (
	"strings"

	"github.com/iliyamo/sabha-admin/internal/apperr"
)

// Field pairs a field name with the outcome of its presence predicate.
// Build them with Text, ID, IDs or Int; order of the slice passed to
// Required decides which missing field is reported.
type Field struct {
	Name    string
	present bool
}

// Text is present when non-empty after trimming.
func Text(name, v string) Field {
	return Field{Name: name, present: strings.TrimSpace(v) != ""}
}

// ID is present when non-zero.
func ID(name string, v uint64) Field {
	return Field{Name: name, present: v != 0}
}

// IDs is present when the collection has at least one element and none of
// them is zero.
func IDs(name string, v []uint64) Field {
	ok := len(v) > 0
	for _, id := range v {
		if id == 0 {
			ok = false
			break
		}
	}
	return Field{Name: name, present: ok}
}

// Int is present when positive.
func Int(name string, v int) Field {
	return Field{Name: name, present: v > 0}
}

// FirstMissing returns the name of the first absent field.
func FirstMissing(fields ...Field) (string, bool) {
	for _, f := range fields {
		if !f.present {
			return f.Name, true
		}
	}
	return "", false
}

// RequiredFunc is the shape services accept for the required-field rule.
type RequiredFunc func(fields ...Field) error

// Required fails with "<field> is required" for the first absent field.
func Required(fields ...Field) error {
	if name, missing := FirstMissing(fields...); missing {
		return apperr.Required(name)
	}
	return nil
}
