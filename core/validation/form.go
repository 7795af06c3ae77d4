package validation

import (
	"errors"
	"sort"

	"github.com/dmtshikala/academia/core"
)

var errFormInvalid = errors.New("formulario inválido")

// Form holds the validation state of a single form instance: the current
// error message per field and whether each field has been validated at least
// once. A Form is owned by one form and is not safe for concurrent use.
type Form struct {
	rules   RuleSet
	errors  map[string]string
	touched map[string]bool
}

func NewForm(rules RuleSet) *Form {
	return &Form{
		rules:   rules,
		errors:  make(map[string]string, len(rules)),
		touched: make(map[string]bool, len(rules)),
	}
}

// ValidateField runs the ordered rules for the named field, recording the
// first failing rule's message and marking the field touched.
// Returns true when all rules pass.
func (f *Form) ValidateField(name string, value interface{}, all Values) bool {
	f.touched[name] = true
	for _, rule := range f.rules[name] {
		if msg := rule(value, all); msg != "" {
			f.errors[name] = msg
			return false
		}
	}
	delete(f.errors, name)
	return true
}

// ValidateAll validates every field declared in the rule set; fields absent
// from values are validated against nil. The error mapping is replaced
// atomically and every declared field is marked touched.
// Returns true iff no field produced an error.
func (f *Form) ValidateAll(values Values) bool {
	errs := make(map[string]string, len(f.rules))
	for name, rules := range f.rules {
		f.touched[name] = true
		for _, rule := range rules {
			if msg := rule(values[name], values); msg != "" {
				errs[name] = msg
				break
			}
		}
	}
	f.errors = errs
	return len(errs) == 0
}

// FieldError returns the current error message for the field, or "".
func (f *Form) FieldError(name string) string { return f.errors[name] }

func (f *Form) HasFieldError(name string) bool {
	_, ok := f.errors[name]
	return ok
}

// Touched reports whether the field has been validated at least once.
func (f *Form) Touched(name string) bool { return f.touched[name] }

// ClearField removes the stored error/touched state for the field.
func (f *Form) ClearField(name string) {
	delete(f.errors, name)
	delete(f.touched, name)
}

// ClearAll removes all stored error/touched state.
func (f *Form) ClearAll() {
	f.errors = make(map[string]string, len(f.rules))
	f.touched = make(map[string]bool, len(f.rules))
}

// Errors returns a copy of the current field error mapping.
func (f *Form) Errors() map[string]string {
	errs := make(map[string]string, len(f.errors))
	for name, msg := range f.errors {
		errs[name] = msg
	}
	return errs
}

// Err converts the current error state into a *core.ValidationError so the
// API error handler can render it as a field error map. Returns nil when the
// form has no errors.
func (f *Form) Err() error {
	if len(f.errors) == 0 {
		return nil
	}
	names := make([]string, 0, len(f.errors))
	for name := range f.errors {
		names = append(names, name)
	}
	sort.Strings(names)

	flds := make([]core.FieldError, 0, len(names))
	for _, name := range names {
		flds = append(flds, core.FieldError{Field: name, Error: f.errors[name]})
	}
	return core.NewValidationError(errFormInvalid, flds...)
}

// Check is a convenience for request handlers: it validates values against
// the rule set and returns a *core.ValidationError on failure, nil otherwise.
func Check(rules RuleSet, values Values) error {
	form := NewForm(rules)
	if form.ValidateAll(values) {
		return nil
	}
	return form.Err()
}
