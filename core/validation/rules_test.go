package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mockNow(t *testing.T, now time.Time) {
	t.Helper()
	orig := NowFunc
	NowFunc = func() time.Time { return now }
	t.Cleanup(func() { NowFunc = orig })
}

func TestRequired(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"nil", nil, msgRequired},
		{"empty string", "", msgRequired},
		{"whitespace only", "   ", msgRequired},
		{"value", "hola", ""},
		{"zero int passes", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Required(tt.value, nil))
		})
	}
}

func TestLengthRules(t *testing.T) {
	assert.Equal(t, "", MinLength(3)(nil, nil), "blank passes")
	assert.Equal(t, "", MinLength(3)("", nil), "blank passes")
	assert.Equal(t, "Debe tener al menos 3 caracteres", MinLength(3)("ab", nil))
	assert.Equal(t, "", MinLength(3)("abc", nil))

	assert.Equal(t, "", MaxLength(3)(nil, nil), "blank passes")
	assert.Equal(t, "Debe tener como máximo 3 caracteres", MaxLength(3)("abcd", nil))
	assert.Equal(t, "", MaxLength(3)("abc", nil))
}

func TestEmail(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"blank passes", "", ""},
		{"nil passes", nil, ""},
		{"no at", "abc", msgEmail},
		{"no tld", "a@b", msgEmail},
		{"spaces", "a b@c.com", msgEmail},
		{"valid", "a@b.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Email(tt.value, nil))
		})
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"blank passes", "", ""},
		{"too short", "123456", msgPhone},
		{"letters", "12345ab", msgPhone},
		{"digits", "71234567", ""},
		{"international", "+591 (2) 123-4567", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Phone(tt.value, nil))
		})
	}
}

func TestCI(t *testing.T) {
	assert.Equal(t, "", CI(nil, nil))
	assert.Equal(t, msgCI, CI("123456", nil))
	assert.Equal(t, msgCI, CI("12345678901", nil))
	assert.Equal(t, msgCI, CI("1234567a", nil))
	assert.Equal(t, "", CI("1234567", nil))
	assert.Equal(t, "", CI("1234567890", nil))
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, "", Min(0)(nil, nil), "blank passes")
	assert.Equal(t, "Debe ser mayor o igual a 0", Min(0)(-1, nil))
	assert.Equal(t, "", Min(0)(0, nil))
	assert.Equal(t, "", Min(0)("12.5", nil), "numeric coercion of strings")
	assert.Equal(t, msgNotNumber, Min(0)("abc", nil))

	assert.Equal(t, "Debe ser menor o igual a 100", Max(100)(100.5, nil))
	assert.Equal(t, "", Max(100)(100, nil))
	assert.Equal(t, msgNotNumber, Max(100)("12a", nil))
}

func TestDateRules(t *testing.T) {
	// fixed "today": 2026-06-15
	mockNow(t, time.Date(2026, time.June, 15, 10, 30, 0, 0, time.UTC))

	t.Run("past date", func(t *testing.T) {
		assert.Equal(t, "", PastDate(nil, nil), "blank passes")
		assert.Equal(t, msgBadDate, PastDate("15/06/2026", nil))
		assert.Equal(t, "", PastDate("2026-06-14", nil))
		assert.Equal(t, msgPastDate, PastDate("2026-06-15", nil), "today is not past")
		assert.Equal(t, msgPastDate, PastDate("2026-06-16", nil))
	})

	t.Run("future date", func(t *testing.T) {
		assert.Equal(t, "", FutureDate(nil, nil), "blank passes")
		assert.Equal(t, msgBadDate, FutureDate("mañana", nil))
		assert.Equal(t, msgFutureDate, FutureDate("2026-06-15", nil), "today is not future")
		assert.Equal(t, "", FutureDate("2026-06-16", nil))
	})
}

func TestMatches(t *testing.T) {
	rule := Matches("password_nueva")

	all := Values{"password_nueva": "S3cret!x", "password_confirm": "S3cret!y"}
	assert.Equal(t, "Las contraseñas no coinciden", rule(all["password_confirm"], all))

	all["password_confirm"] = "S3cret!x"
	assert.Equal(t, "", rule(all["password_confirm"], all))

	// the other value is read at validation time, never a stale snapshot
	all["password_nueva"] = "changed"
	assert.Equal(t, "Las contraseñas no coinciden", rule(all["password_confirm"], all))
}

func TestRulesNeverPanic(t *testing.T) {
	rules := []Rule{
		Required, Email, Phone, CI, PastDate, FutureDate,
		MinLength(2), MaxLength(5), Min(1), Max(10), Matches("other"),
	}
	values := []interface{}{nil, "", 42, 3.14, struct{}{}, []string{"x"}, time.Now()}
	for _, rule := range rules {
		for _, v := range values {
			assert.NotPanics(t, func() { rule(v, Values{}) })
		}
	}
}
