package academic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmtshikala/academia/core"
	"github.com/dmtshikala/academia/core/academic"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	fields := make(map[string]string, len(vErr.Fields))
	for _, f := range vErr.Fields {
		fields[f.Field] = f.Error
	}
	return fields
}

func TestMentionFormValidate(t *testing.T) {
	f := academic.MentionForm{Name: "  Desarrollo de Software  "}
	require.NoError(t, f.Validate())
	assert.Equal(t, "Desarrollo de Software", f.Name)

	f = academic.MentionForm{Name: "ab"}
	fields := fieldErrors(t, f.Validate())
	assert.Contains(t, fields, "nombre")

	f = academic.MentionForm{}
	fields = fieldErrors(t, f.Validate())
	assert.Equal(t, "Este campo es obligatorio", fields["nombre"])

	t.Run("partial keeps bounds without presence", func(t *testing.T) {
		f := academic.MentionForm{}
		require.NoError(t, f.ValidatePartial())

		f = academic.MentionForm{Name: "x"}
		fields := fieldErrors(t, f.ValidatePartial())
		assert.Contains(t, fields, "nombre")
	})
}

func TestStudentFormValidate(t *testing.T) {
	valid := academic.StudentForm{
		Name:      "Ana Quispe",
		CI:        "7894561",
		Email:     "ANA@Example.com ",
		BirthDate: "2000-05-10",
		MentionID: "m1",
	}
	require.NoError(t, valid.Validate())
	assert.Equal(t, "ana@example.com", valid.Email, "email is lowercased")

	t.Run("missing required fields", func(t *testing.T) {
		f := academic.StudentForm{}
		fields := fieldErrors(t, f.Validate())
		for _, field := range []string{"nombre", "ci", "correo", "fecha_nacimiento", "mencion_id"} {
			assert.Equal(t, "Este campo es obligatorio", fields[field])
		}
	})

	t.Run("birth date must be in the past", func(t *testing.T) {
		f := valid
		f.BirthDate = "2999-01-01"
		fields := fieldErrors(t, f.Validate())
		assert.Contains(t, fields, "fecha_nacimiento")
	})

	t.Run("partial skips absent fields", func(t *testing.T) {
		f := academic.StudentForm{Phone: "77712345"}
		require.NoError(t, f.ValidatePartial())

		f = academic.StudentForm{CI: "12"}
		fields := fieldErrors(t, f.ValidatePartial())
		assert.Equal(t, "La cédula debe tener entre 7 y 10 dígitos", fields["ci"])
	})
}

func TestSubjectFormValidate(t *testing.T) {
	f := academic.SubjectForm{Name: "Cálculo I", Code: "MAT101", Credits: 5}
	require.NoError(t, f.Validate())
	assert.Equal(t, "mat101", f.Code, "code is lowercased")

	f = academic.SubjectForm{Name: "Cálculo I", Code: "MAT101", Credits: 20}
	fields := fieldErrors(t, f.Validate())
	assert.Contains(t, fields, "creditos")

	t.Run("partial skips absent fields", func(t *testing.T) {
		f := academic.SubjectForm{}
		require.NoError(t, f.ValidatePartial())

		f = academic.SubjectForm{Name: "x"}
		fields := fieldErrors(t, f.ValidatePartial())
		assert.Contains(t, fields, "nombre")

		f = academic.SubjectForm{Credits: 20}
		fields = fieldErrors(t, f.ValidatePartial())
		assert.Contains(t, fields, "creditos")
	})
}

func TestGradeFormValidate(t *testing.T) {
	f := academic.GradeForm{EnrollmentID: "e1", Score: 85}
	require.NoError(t, f.Validate())

	f = academic.GradeForm{EnrollmentID: "e1", Score: 101}
	fields := fieldErrors(t, f.Validate())
	assert.Contains(t, fields, "nota")

	f = academic.GradeForm{EnrollmentID: "e1", Score: -1}
	fields = fieldErrors(t, f.Validate())
	assert.Contains(t, fields, "nota")

	f = academic.GradeForm{}
	fields = fieldErrors(t, f.Validate())
	assert.Contains(t, fields, "inscripcion_id")

	t.Run("partial drops the enrollment requirement", func(t *testing.T) {
		f := academic.GradeForm{Score: 70}
		require.NoError(t, f.ValidatePartial())

		f = academic.GradeForm{Score: 101}
		fields := fieldErrors(t, f.ValidatePartial())
		assert.Contains(t, fields, "nota")
	})
}

func TestEnrollmentFormValidate(t *testing.T) {
	f := academic.EnrollmentForm{StudentID: "s1", SubjectID: "m1", Term: "2026-2", ClosesAt: "2999-12-31"}
	require.NoError(t, f.Validate())

	f.ClosesAt = "2000-01-01"
	fields := fieldErrors(t, f.Validate())
	assert.Contains(t, fields, "fecha_cierre")
}
