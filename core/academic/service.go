package academic

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dmtshikala/academia/core"
)

var (
	// errors
	ErrNotFound            = errors.New("registro no encontrado")
	ErrCIExists            = errors.New("ya existe un registro con esta cédula")
	ErrCodeExists          = errors.New("ya existe una materia con este código")
	ErrDuplicateEnrollment = errors.New("el estudiante ya está inscrito en esta materia para la gestión")
	ErrEnrollmentNotActive = errors.New("la inscripción no está activa")
)

type (
	Repository interface {
		// menciones
		CreateMention(ctx context.Context, m Mention) (Mention, error)
		QueryAllMentions(ctx context.Context) ([]Mention, error)
		GetMentionByID(ctx context.Context, id string) (Mention, error)
		UpdateMention(ctx context.Context, m Mention) (Mention, error)
		DeleteMentionsByID(ctx context.Context, ids ...string) error

		// docentes
		CreateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		QueryAllTeachers(ctx context.Context) ([]Teacher, error)
		GetTeacherByID(ctx context.Context, id string) (Teacher, error)
		GetTeacherByCI(ctx context.Context, ci string) (Teacher, error)
		UpdateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		DeleteTeachersByID(ctx context.Context, ids ...string) error

		// estudiantes
		CreateStudent(ctx context.Context, s Student) (Student, error)
		QueryAllStudents(ctx context.Context) ([]Student, error)
		FilterStudents(ctx context.Context, filter StudentFilter) ([]Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		GetStudentByCI(ctx context.Context, ci string) (Student, error)
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		DeleteStudentsByID(ctx context.Context, ids ...string) error

		// materias
		CreateSubject(ctx context.Context, s Subject) (Subject, error)
		QueryAllSubjects(ctx context.Context) ([]Subject, error)
		QuerySubjectsByTeacher(ctx context.Context, teacherID string) ([]Subject, error)
		QuerySubjectsByMention(ctx context.Context, mentionID string) ([]Subject, error)
		GetSubjectByID(ctx context.Context, id string) (Subject, error)
		GetSubjectByCode(ctx context.Context, code string) (Subject, error)
		UpdateSubject(ctx context.Context, s Subject) (Subject, error)
		DeleteSubjectsByID(ctx context.Context, ids ...string) error

		// inscripciones
		CreateEnrollment(ctx context.Context, e Enrollment) (Enrollment, error)
		QueryAllEnrollments(ctx context.Context) ([]Enrollment, error)
		QueryEnrollmentsByStudent(ctx context.Context, studentID string) ([]Enrollment, error)
		QueryEnrollmentsBySubject(ctx context.Context, subjectID string) ([]Enrollment, error)
		GetEnrollmentByID(ctx context.Context, id string) (Enrollment, error)
		UpdateEnrollment(ctx context.Context, e Enrollment) (Enrollment, error)
		DeleteEnrollmentsByID(ctx context.Context, ids ...string) error

		// calificaciones
		CreateGrade(ctx context.Context, g Grade) (Grade, error)
		QueryAllGrades(ctx context.Context) ([]Grade, error)
		QueryGradesByEnrollment(ctx context.Context, enrollmentID string) ([]Grade, error)
		GetGradeByID(ctx context.Context, id string) (Grade, error)
		UpdateGrade(ctx context.Context, g Grade) (Grade, error)
		DeleteGradesByID(ctx context.Context, ids ...string) error
	}

	// Cache is the statistics cache; stats queries fan out over several
	// tables and dashboards poll them.
	Cache interface {
		Get(ctx context.Context, key string) ([]byte, bool)
		Set(ctx context.Context, key string, value []byte, ttl time.Duration)
		Delete(ctx context.Context, keys ...string)
	}

	Service struct {
		repo   Repository
		cache  Cache
		logger core.Logger
	}
)

func NewService(repo Repository, cache Cache, logger core.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

func fieldErr(field string, err error) error {
	return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
}

// Menciones

func (svc *Service) CreateMention(ctx context.Context, f MentionForm) (Mention, error) {
	now := time.Now().UTC()
	m := Mention{
		ID:          uuid.New().String(),
		Name:        f.Name,
		Description: f.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	defer svc.invalidateStats(ctx)
	return svc.repo.CreateMention(ctx, m)
}

func (svc *Service) QueryMentions(ctx context.Context) ([]Mention, error) {
	return svc.repo.QueryAllMentions(ctx)
}

func (svc *Service) GetMention(ctx context.Context, id string) (Mention, error) {
	return svc.repo.GetMentionByID(ctx, id)
}

func (svc *Service) UpdateMention(ctx context.Context, id string, f MentionForm) (Mention, error) {
	m, err := svc.repo.GetMentionByID(ctx, id)
	if err != nil {
		return Mention{}, err
	}
	if f.Name != "" {
		m.Name = f.Name
	}
	if f.Description != "" {
		m.Description = f.Description
	}
	if f.IsActive != nil {
		m.IsActive = *f.IsActive
	}
	m.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateMention(ctx, m)
}

func (svc *Service) DeleteMentions(ctx context.Context, ids ...string) error {
	defer svc.invalidateStats(ctx)
	return svc.repo.DeleteMentionsByID(ctx, ids...)
}

// Docentes

func (svc *Service) CreateTeacher(ctx context.Context, f TeacherForm) (Teacher, error) {
	if _, err := svc.repo.GetTeacherByCI(ctx, f.CI); err == nil {
		return Teacher{}, fieldErr("ci", ErrCIExists)
	} else if err != ErrNotFound {
		return Teacher{}, err
	}

	now := time.Now().UTC()
	t := Teacher{
		ID:        uuid.New().String(),
		Name:      f.Name,
		CI:        f.CI,
		Email:     f.Email,
		Phone:     f.Phone,
		Specialty: f.Specialty,
		CreatedAt: now,
		UpdatedAt: now,
	}
	defer svc.invalidateStats(ctx)
	return svc.repo.CreateTeacher(ctx, t)
}

func (svc *Service) QueryTeachers(ctx context.Context) ([]Teacher, error) {
	return svc.repo.QueryAllTeachers(ctx)
}

func (svc *Service) GetTeacher(ctx context.Context, id string) (Teacher, error) {
	return svc.repo.GetTeacherByID(ctx, id)
}

func (svc *Service) UpdateTeacher(ctx context.Context, id string, f TeacherForm) (Teacher, error) {
	t, err := svc.repo.GetTeacherByID(ctx, id)
	if err != nil {
		return Teacher{}, err
	}
	if f.CI != "" && f.CI != t.CI {
		if _, err := svc.repo.GetTeacherByCI(ctx, f.CI); err == nil {
			return Teacher{}, fieldErr("ci", ErrCIExists)
		} else if err != ErrNotFound {
			return Teacher{}, err
		}
		t.CI = f.CI
	}
	if f.Name != "" {
		t.Name = f.Name
	}
	if f.Email != "" {
		t.Email = f.Email
	}
	if f.Phone != "" {
		t.Phone = f.Phone
	}
	if f.Specialty != "" {
		t.Specialty = f.Specialty
	}
	t.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTeacher(ctx, t)
}

func (svc *Service) DeleteTeachers(ctx context.Context, ids ...string) error {
	defer svc.invalidateStats(ctx)
	return svc.repo.DeleteTeachersByID(ctx, ids...)
}

// Estudiantes

func (svc *Service) CreateStudent(ctx context.Context, f StudentForm) (Student, error) {
	if _, err := svc.repo.GetStudentByCI(ctx, f.CI); err == nil {
		return Student{}, fieldErr("ci", ErrCIExists)
	} else if err != ErrNotFound {
		return Student{}, err
	}
	if _, err := svc.repo.GetMentionByID(ctx, f.MentionID); err != nil {
		if err == ErrNotFound {
			return Student{}, fieldErr("mencion_id", ErrNotFound)
		}
		return Student{}, err
	}

	now := time.Now().UTC()
	s := Student{
		ID:        uuid.New().String(),
		Name:      f.Name,
		CI:        f.CI,
		Email:     f.Email,
		Phone:     f.Phone,
		BirthDate: f.BirthDate,
		MentionID: f.MentionID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	defer svc.invalidateStats(ctx)
	return svc.repo.CreateStudent(ctx, s)
}

func (svc *Service) QueryStudents(ctx context.Context, filter StudentFilter) ([]Student, error) {
	if filter.IsEmpty() {
		return svc.repo.QueryAllStudents(ctx)
	}
	filter.Clean()
	return svc.repo.FilterStudents(ctx, filter)
}

func (svc *Service) GetStudent(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) UpdateStudent(ctx context.Context, id string, f StudentForm) (Student, error) {
	s, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if f.CI != "" && f.CI != s.CI {
		if _, err := svc.repo.GetStudentByCI(ctx, f.CI); err == nil {
			return Student{}, fieldErr("ci", ErrCIExists)
		} else if err != ErrNotFound {
			return Student{}, err
		}
		s.CI = f.CI
	}
	if f.MentionID != "" && f.MentionID != s.MentionID {
		if _, err := svc.repo.GetMentionByID(ctx, f.MentionID); err != nil {
			if err == ErrNotFound {
				return Student{}, fieldErr("mencion_id", ErrNotFound)
			}
			return Student{}, err
		}
		s.MentionID = f.MentionID
	}
	if f.Name != "" {
		s.Name = f.Name
	}
	if f.Email != "" {
		s.Email = f.Email
	}
	if f.Phone != "" {
		s.Phone = f.Phone
	}
	if f.BirthDate != "" {
		s.BirthDate = f.BirthDate
	}
	s.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, s)
}

func (svc *Service) DeleteStudents(ctx context.Context, ids ...string) error {
	defer svc.invalidateStats(ctx)
	return svc.repo.DeleteStudentsByID(ctx, ids...)
}

// Materias

func (svc *Service) CreateSubject(ctx context.Context, f SubjectForm) (Subject, error) {
	if _, err := svc.repo.GetSubjectByCode(ctx, f.Code); err == nil {
		return Subject{}, fieldErr("codigo", ErrCodeExists)
	} else if err != ErrNotFound {
		return Subject{}, err
	}

	now := time.Now().UTC()
	s := Subject{
		ID:        uuid.New().String(),
		Name:      f.Name,
		Code:      f.Code,
		Credits:   f.Credits,
		MentionID: f.MentionID,
		TeacherID: f.TeacherID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	defer svc.invalidateStats(ctx)
	return svc.repo.CreateSubject(ctx, s)
}

func (svc *Service) QuerySubjects(ctx context.Context) ([]Subject, error) {
	return svc.repo.QueryAllSubjects(ctx)
}

func (svc *Service) QuerySubjectsByTeacher(ctx context.Context, teacherID string) ([]Subject, error) {
	return svc.repo.QuerySubjectsByTeacher(ctx, teacherID)
}

func (svc *Service) GetSubject(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}

func (svc *Service) UpdateSubject(ctx context.Context, id string, f SubjectForm) (Subject, error) {
	s, err := svc.repo.GetSubjectByID(ctx, id)
	if err != nil {
		return Subject{}, err
	}
	if f.Code != "" && f.Code != s.Code {
		if _, err := svc.repo.GetSubjectByCode(ctx, f.Code); err == nil {
			return Subject{}, fieldErr("codigo", ErrCodeExists)
		} else if err != ErrNotFound {
			return Subject{}, err
		}
		s.Code = f.Code
	}
	if f.Name != "" {
		s.Name = f.Name
	}
	if f.Credits > 0 {
		s.Credits = f.Credits
	}
	if f.MentionID != "" {
		s.MentionID = f.MentionID
	}
	if f.TeacherID != "" {
		s.TeacherID = f.TeacherID
	}
	s.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSubject(ctx, s)
}

func (svc *Service) DeleteSubjects(ctx context.Context, ids ...string) error {
	defer svc.invalidateStats(ctx)
	return svc.repo.DeleteSubjectsByID(ctx, ids...)
}

// Inscripciones

func (svc *Service) CreateEnrollment(ctx context.Context, f EnrollmentForm) (Enrollment, error) {
	if _, err := svc.repo.GetStudentByID(ctx, f.StudentID); err != nil {
		if err == ErrNotFound {
			return Enrollment{}, fieldErr("estudiante_id", ErrNotFound)
		}
		return Enrollment{}, err
	}
	if _, err := svc.repo.GetSubjectByID(ctx, f.SubjectID); err != nil {
		if err == ErrNotFound {
			return Enrollment{}, fieldErr("materia_id", ErrNotFound)
		}
		return Enrollment{}, err
	}

	// a student enrolls at most once per subject and term
	existing, err := svc.repo.QueryEnrollmentsByStudent(ctx, f.StudentID)
	if err != nil {
		return Enrollment{}, err
	}
	for _, e := range existing {
		if e.SubjectID == f.SubjectID && e.Term == f.Term && e.Status != EnrollmentWithdrawn {
			return Enrollment{}, fieldErr("materia_id", ErrDuplicateEnrollment)
		}
	}

	now := time.Now().UTC()
	e := Enrollment{
		ID:        uuid.New().String(),
		StudentID: f.StudentID,
		SubjectID: f.SubjectID,
		Term:      f.Term,
		Status:    EnrollmentActive,
		ClosesAt:  f.ClosesAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	defer svc.invalidateStats(ctx, svc.enrollmentStatsKeys(ctx, e)...)
	return svc.repo.CreateEnrollment(ctx, e)
}

func (svc *Service) QueryEnrollments(ctx context.Context) ([]Enrollment, error) {
	return svc.repo.QueryAllEnrollments(ctx)
}

func (svc *Service) QueryEnrollmentsByStudent(ctx context.Context, studentID string) ([]Enrollment, error) {
	return svc.repo.QueryEnrollmentsByStudent(ctx, studentID)
}

func (svc *Service) GetEnrollment(ctx context.Context, id string) (Enrollment, error) {
	return svc.repo.GetEnrollmentByID(ctx, id)
}

func (svc *Service) SetEnrollmentStatus(ctx context.Context, id, status string) (Enrollment, error) {
	e, err := svc.repo.GetEnrollmentByID(ctx, id)
	if err != nil {
		return Enrollment{}, err
	}
	e.Status = status
	e.UpdatedAt = time.Now().UTC()
	defer svc.invalidateStats(ctx, svc.enrollmentStatsKeys(ctx, e)...)
	return svc.repo.UpdateEnrollment(ctx, e)
}

func (svc *Service) DeleteEnrollments(ctx context.Context, ids ...string) error {
	var keys []string
	for _, id := range ids {
		if e, err := svc.repo.GetEnrollmentByID(ctx, id); err == nil {
			keys = append(keys, svc.enrollmentStatsKeys(ctx, e)...)
		}
	}
	defer svc.invalidateStats(ctx, keys...)
	return svc.repo.DeleteEnrollmentsByID(ctx, ids...)
}

// Calificaciones

func (svc *Service) CreateGrade(ctx context.Context, f GradeForm) (Grade, error) {
	enr, err := svc.repo.GetEnrollmentByID(ctx, f.EnrollmentID)
	if err != nil {
		if err == ErrNotFound {
			return Grade{}, fieldErr("inscripcion_id", ErrNotFound)
		}
		return Grade{}, err
	}
	if !enr.IsActive() {
		return Grade{}, fieldErr("inscripcion_id", ErrEnrollmentNotActive)
	}

	now := time.Now().UTC()
	g := Grade{
		ID:           uuid.New().String(),
		EnrollmentID: f.EnrollmentID,
		Score:        f.Score,
		Remarks:      f.Remarks,
		GradedAt:     now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	defer svc.invalidateStats(ctx, svc.enrollmentStatsKeys(ctx, enr)...)
	return svc.repo.CreateGrade(ctx, g)
}

func (svc *Service) QueryGrades(ctx context.Context) ([]Grade, error) {
	return svc.repo.QueryAllGrades(ctx)
}

func (svc *Service) QueryGradesByEnrollment(ctx context.Context, enrollmentID string) ([]Grade, error) {
	return svc.repo.QueryGradesByEnrollment(ctx, enrollmentID)
}

// QueryGradesByStudent returns the student's grades across all their enrollments.
func (svc *Service) QueryGradesByStudent(ctx context.Context, studentID string) ([]Grade, error) {
	enrollments, err := svc.repo.QueryEnrollmentsByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	var grades []Grade
	for _, e := range enrollments {
		gs, err := svc.repo.QueryGradesByEnrollment(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		grades = append(grades, gs...)
	}
	return grades, nil
}

func (svc *Service) UpdateGrade(ctx context.Context, id string, f GradeForm) (Grade, error) {
	g, err := svc.repo.GetGradeByID(ctx, id)
	if err != nil {
		return Grade{}, err
	}
	g.Score = f.Score
	if f.Remarks != "" {
		g.Remarks = f.Remarks
	}
	g.GradedAt = time.Now().UTC()
	g.UpdatedAt = g.GradedAt

	var keys []string
	if e, err := svc.repo.GetEnrollmentByID(ctx, g.EnrollmentID); err == nil {
		keys = svc.enrollmentStatsKeys(ctx, e)
	}
	defer svc.invalidateStats(ctx, keys...)
	return svc.repo.UpdateGrade(ctx, g)
}

func (svc *Service) DeleteGrades(ctx context.Context, ids ...string) error {
	var keys []string
	for _, id := range ids {
		g, err := svc.repo.GetGradeByID(ctx, id)
		if err != nil {
			continue
		}
		if e, err := svc.repo.GetEnrollmentByID(ctx, g.EnrollmentID); err == nil {
			keys = append(keys, svc.enrollmentStatsKeys(ctx, e)...)
		}
	}
	defer svc.invalidateStats(ctx, keys...)
	return svc.repo.DeleteGradesByID(ctx, ids...)
}
