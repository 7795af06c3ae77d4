package academic_test

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmtshikala/academia/core"
	"github.com/dmtshikala/academia/core/academic"
	"github.com/dmtshikala/academia/storage/cache"
	inmemdb "github.com/dmtshikala/academia/storage/database/inmem"
)

func newTestService(t *testing.T) *academic.Service {
	t.Helper()
	db, err := inmemdb.Open()
	require.NoError(t, err)
	logger := core.NewStdLogger(log.New(io.Discard, "", 0))
	return academic.NewService(inmemdb.NewAcademicRepository(db), cache.NewMemoryCache(), logger)
}

func createMention(t *testing.T, svc *academic.Service, name string) academic.Mention {
	t.Helper()
	m, err := svc.CreateMention(context.Background(), academic.MentionForm{Name: name})
	require.NoError(t, err)
	return m
}

func createStudent(t *testing.T, svc *academic.Service, mentionID, ci string) academic.Student {
	t.Helper()
	s, err := svc.CreateStudent(context.Background(), academic.StudentForm{
		Name:      "Ana Quispe",
		CI:        ci,
		Email:     "ana" + ci + "@example.com",
		BirthDate: "2000-05-10",
		MentionID: mentionID,
	})
	require.NoError(t, err)
	return s
}

func createSubject(t *testing.T, svc *academic.Service, mentionID, teacherID, code string) academic.Subject {
	t.Helper()
	s, err := svc.CreateSubject(context.Background(), academic.SubjectForm{
		Name: "Materia " + code, Code: code, Credits: 4,
		MentionID: mentionID, TeacherID: teacherID,
	})
	require.NoError(t, err)
	return s
}

func enroll(t *testing.T, svc *academic.Service, studentID, subjectID, term string) academic.Enrollment {
	t.Helper()
	e, err := svc.CreateEnrollment(context.Background(), academic.EnrollmentForm{
		StudentID: studentID, SubjectID: subjectID, Term: term, ClosesAt: "2999-12-31",
	})
	require.NoError(t, err)
	return e
}

func TestMentionCRUD(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	m := createMention(t, svc, "Redes")
	assert.NotEmpty(t, m.ID)
	assert.True(t, m.IsActive)

	got, err := svc.GetMention(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.Name, got.Name)

	inactive := false
	updated, err := svc.UpdateMention(ctx, m.ID, academic.MentionForm{Description: "Redes y telecom", IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Redes y telecom", updated.Description)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Redes", updated.Name, "unset fields keep their value")

	require.NoError(t, svc.DeleteMentions(ctx, m.ID))
	_, err = svc.GetMention(ctx, m.ID)
	assert.ErrorIs(t, err, academic.ErrNotFound)
}

func TestTeacherUniqueCI(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.CreateTeacher(ctx, academic.TeacherForm{Name: "Luis Rojas", CI: "1234567", Email: "luis@example.com"})
	require.NoError(t, err)

	_, err = svc.CreateTeacher(ctx, academic.TeacherForm{Name: "Otro Docente", CI: "1234567", Email: "otro@example.com"})
	fields := fieldErrors(t, err)
	assert.Equal(t, academic.ErrCIExists.Error(), fields["ci"])
}

func TestStudentRequiresExistingMention(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.CreateStudent(ctx, academic.StudentForm{
		Name: "Ana Quispe", CI: "7894561", Email: "ana@example.com",
		BirthDate: "2000-05-10", MentionID: "missing",
	})
	fields := fieldErrors(t, err)
	assert.Contains(t, fields, "mencion_id")
}

func TestStudentFilter(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	m1 := createMention(t, svc, "Redes")
	m2 := createMention(t, svc, "Software")
	createStudent(t, svc, m1.ID, "1000001")
	s2 := createStudent(t, svc, m2.ID, "1000002")

	got, err := svc.QueryStudents(ctx, academic.StudentFilter{MentionID: m2.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, s2.ID, got[0].ID)

	got, err = svc.QueryStudents(ctx, academic.StudentFilter{Search: "1000001"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = svc.QueryStudents(ctx, academic.StudentFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSubjectUniqueCode(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	m := createMention(t, svc, "Redes")
	createSubject(t, svc, m.ID, "", "mat101")

	_, err := svc.CreateSubject(ctx, academic.SubjectForm{Name: "Otra", Code: "mat101", Credits: 3})
	fields := fieldErrors(t, err)
	assert.Equal(t, academic.ErrCodeExists.Error(), fields["codigo"])
}

func TestEnrollmentRules(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	m := createMention(t, svc, "Redes")
	student := createStudent(t, svc, m.ID, "1000001")
	subject := createSubject(t, svc, m.ID, "", "mat101")

	e := enroll(t, svc, student.ID, subject.ID, "2026-2")
	assert.Equal(t, academic.EnrollmentActive, e.Status)

	t.Run("duplicate per subject and term", func(t *testing.T) {
		_, err := svc.CreateEnrollment(ctx, academic.EnrollmentForm{
			StudentID: student.ID, SubjectID: subject.ID, Term: "2026-2", ClosesAt: "2999-12-31",
		})
		fields := fieldErrors(t, err)
		assert.Equal(t, academic.ErrDuplicateEnrollment.Error(), fields["materia_id"])
	})

	t.Run("withdrawing frees the slot", func(t *testing.T) {
		_, err := svc.SetEnrollmentStatus(ctx, e.ID, academic.EnrollmentWithdrawn)
		require.NoError(t, err)

		again, err := svc.CreateEnrollment(ctx, academic.EnrollmentForm{
			StudentID: student.ID, SubjectID: subject.ID, Term: "2026-2", ClosesAt: "2999-12-31",
		})
		require.NoError(t, err)
		assert.NotEqual(t, e.ID, again.ID)
	})

	t.Run("another term is allowed", func(t *testing.T) {
		_, err := svc.CreateEnrollment(ctx, academic.EnrollmentForm{
			StudentID: student.ID, SubjectID: subject.ID, Term: "2027-1", ClosesAt: "2999-12-31",
		})
		require.NoError(t, err)
	})

	t.Run("unknown student", func(t *testing.T) {
		_, err := svc.CreateEnrollment(ctx, academic.EnrollmentForm{
			StudentID: "missing", SubjectID: subject.ID, Term: "2026-2", ClosesAt: "2999-12-31",
		})
		fields := fieldErrors(t, err)
		assert.Contains(t, fields, "estudiante_id")
	})
}

func TestGradeRequiresActiveEnrollment(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	m := createMention(t, svc, "Redes")
	student := createStudent(t, svc, m.ID, "1000001")
	subject := createSubject(t, svc, m.ID, "", "mat101")
	e := enroll(t, svc, student.ID, subject.ID, "2026-2")

	g, err := svc.CreateGrade(ctx, academic.GradeForm{EnrollmentID: e.ID, Score: 85, Remarks: "Buen trabajo"})
	require.NoError(t, err)
	assert.Equal(t, 85.0, g.Score)

	_, err = svc.SetEnrollmentStatus(ctx, e.ID, academic.EnrollmentCompleted)
	require.NoError(t, err)

	_, err = svc.CreateGrade(ctx, academic.GradeForm{EnrollmentID: e.ID, Score: 90})
	fields := fieldErrors(t, err)
	assert.Equal(t, academic.ErrEnrollmentNotActive.Error(), fields["inscripcion_id"])

	grades, err := svc.QueryGradesByStudent(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, g.ID, grades[0].ID)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	m := createMention(t, svc, "Redes")
	teacher, err := svc.CreateTeacher(ctx, academic.TeacherForm{Name: "Luis Rojas", CI: "1234567", Email: "luis@example.com"})
	require.NoError(t, err)
	s1 := createStudent(t, svc, m.ID, "1000001")
	s2 := createStudent(t, svc, m.ID, "1000002")
	subject := createSubject(t, svc, m.ID, teacher.ID, "mat101")

	e1 := enroll(t, svc, s1.ID, subject.ID, "2026-2")
	e2 := enroll(t, svc, s2.ID, subject.ID, "2026-2")
	_, err = svc.CreateGrade(ctx, academic.GradeForm{EnrollmentID: e1.ID, Score: 80})
	require.NoError(t, err)

	admin, err := svc.AdminStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, admin.TotalStudents)
	assert.Equal(t, 1, admin.TotalTeachers)
	assert.Equal(t, 1, admin.TotalSubjects)
	assert.Equal(t, 2, admin.TotalEnrollments)
	assert.Equal(t, 2, admin.ActiveEnrollments)

	ts, err := svc.TeacherStats(ctx, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, ts.Subjects)
	assert.Equal(t, 2, ts.Students)
	assert.Equal(t, 1, ts.GradedCount)
	assert.Equal(t, 1, ts.PendingGrades)

	ss, err := svc.StudentStats(ctx, s1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, ss.EnrolledSubjects)
	assert.Equal(t, 80.0, ss.AverageScore)

	t.Run("admin stats invalidated on writes", func(t *testing.T) {
		createStudent(t, svc, m.ID, "1000003")
		admin, err := svc.AdminStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, admin.TotalStudents)
	})

	t.Run("role dashboards refresh on grade writes", func(t *testing.T) {
		// cache the student's dashboard before grading
		ss2, err := svc.StudentStats(ctx, s2.ID)
		require.NoError(t, err)
		require.Equal(t, 0.0, ss2.AverageScore)

		_, err = svc.CreateGrade(ctx, academic.GradeForm{EnrollmentID: e2.ID, Score: 60})
		require.NoError(t, err)

		ss2, err = svc.StudentStats(ctx, s2.ID)
		require.NoError(t, err)
		assert.Equal(t, 60.0, ss2.AverageScore)

		ts, err := svc.TeacherStats(ctx, teacher.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, ts.GradedCount)
		assert.Equal(t, 0, ts.PendingGrades)
	})
}
