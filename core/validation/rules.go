// Package validation implements the form validation engine: small composable
// rules evaluated in declaration order against named form fields, surfacing
// the first failing rule's message per field.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Values holds the full form value mapping. Every rule receives it so that
// cross-field rules always see current values instead of stale snapshots.
type Values map[string]interface{}

// Rule checks a single field value against the full form values.
// It returns "" when the value is valid, or a user-facing message otherwise.
// Rules are pure and never panic; a value that cannot be evaluated yields a
// descriptive message.
type Rule func(value interface{}, all Values) string

// RuleSet maps a field name to its ordered rules. Only the first failing
// rule's message is surfaced per field.
type RuleSet map[string][]Rule

var (
	NowFunc = time.Now // mockable

	emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phoneRegex = regexp.MustCompile(`^[0-9+\-() ]+$`)
	ciRegex    = regexp.MustCompile(`^[0-9]{7,10}$`)

	msgRequired      = "Este campo es obligatorio"
	msgEmail         = "Correo electrónico inválido"
	msgPhone         = "Número de teléfono inválido"
	msgCI            = "La cédula debe tener entre 7 y 10 dígitos"
	msgNotNumber     = "Debe ser un valor numérico"
	msgBadDate       = "Fecha inválida"
	msgPastDate      = "La fecha debe ser anterior a hoy"
	msgFutureDate    = "La fecha debe ser posterior a hoy"
	msgPasswordMatch = "Las contraseñas no coinciden"

	dateLayouts = []string{"2006-01-02", time.RFC3339}
)

// Required fails on nil values and strings that are empty after trimming.
func Required(value interface{}, _ Values) string {
	if isBlank(value) {
		return msgRequired
	}
	return ""
}

// MinLength bounds the string length from below. Blank values pass; presence
// is a separate concern enforced by composing Required.
func MinLength(n int) Rule {
	return func(value interface{}, _ Values) string {
		if isBlank(value) {
			return ""
		}
		if len([]rune(asString(value))) < n {
			return fmt.Sprintf("Debe tener al menos %d caracteres", n)
		}
		return ""
	}
}

// MaxLength bounds the string length from above. Blank values pass.
func MaxLength(n int) Rule {
	return func(value interface{}, _ Values) string {
		if isBlank(value) {
			return ""
		}
		if len([]rune(asString(value))) > n {
			return fmt.Sprintf("Debe tener como máximo %d caracteres", n)
		}
		return ""
	}
}

// Email is a syntactic local@domain.tld check; it does not verify deliverability.
func Email(value interface{}, _ Values) string {
	if isBlank(value) {
		return ""
	}
	if !emailRegex.MatchString(asString(value)) {
		return msgEmail
	}
	return ""
}

// Phone accepts digits, '+', '-', spaces and parentheses, minimum 7 characters.
func Phone(value interface{}, _ Values) string {
	if isBlank(value) {
		return ""
	}
	s := asString(value)
	if len(s) < 7 || !phoneRegex.MatchString(s) {
		return msgPhone
	}
	return ""
}

// CI validates a national ID: a 7-10 digit numeric string.
func CI(value interface{}, _ Values) string {
	if isBlank(value) {
		return ""
	}
	if !ciRegex.MatchString(asString(value)) {
		return msgCI
	}
	return ""
}

// Min bounds the numeric coercion of the value from below.
func Min(n float64) Rule {
	return func(value interface{}, _ Values) string {
		if isBlank(value) {
			return ""
		}
		f, ok := asFloat(value)
		if !ok {
			return msgNotNumber
		}
		if f < n {
			return fmt.Sprintf("Debe ser mayor o igual a %v", n)
		}
		return ""
	}
}

// Max bounds the numeric coercion of the value from above.
func Max(n float64) Rule {
	return func(value interface{}, _ Values) string {
		if isBlank(value) {
			return ""
		}
		f, ok := asFloat(value)
		if !ok {
			return msgNotNumber
		}
		if f > n {
			return fmt.Sprintf("Debe ser menor o igual a %v", n)
		}
		return ""
	}
}

// PastDate requires a date strictly before today, at day granularity.
func PastDate(value interface{}, _ Values) string {
	if isBlank(value) {
		return ""
	}
	d, ok := asDate(value)
	if !ok {
		return msgBadDate
	}
	today := startOfDay(NowFunc())
	if !d.Before(today) {
		return msgPastDate
	}
	return ""
}

// FutureDate requires a date strictly after today, at end-of-day granularity.
func FutureDate(value interface{}, _ Values) string {
	if isBlank(value) {
		return ""
	}
	d, ok := asDate(value)
	if !ok {
		return msgBadDate
	}
	endOfToday := startOfDay(NowFunc()).AddDate(0, 0, 1)
	if d.Before(endOfToday) {
		return msgFutureDate
	}
	return ""
}

// Matches validates cross-field equality against the current value of
// otherField, e.g. a password confirmation. The other value is read from the
// form values at validation time so it can never go stale.
func Matches(otherField string) Rule {
	return func(value interface{}, all Values) string {
		if isBlank(value) {
			return ""
		}
		if asString(value) != asString(all[otherField]) {
			return msgPasswordMatch
		}
		return ""
	}
}

// coercion helpers

func isBlank(value interface{}) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v) == ""
	case *string:
		return v == nil || strings.TrimSpace(*v) == ""
	}
	return false
}

func asString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case time.Time:
		return v.Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", v)
	}
}

func asFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func asDate(value interface{}) (time.Time, bool) {
	if t, ok := value.(time.Time); ok {
		return t, true
	}
	s := asString(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
