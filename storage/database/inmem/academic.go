package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/dmtshikala/academia/core/academic"
)

type academicRepo struct {
	db *DB
}

var _ academic.Repository = (*academicRepo)(nil)

func NewAcademicRepository(db *DB) academic.Repository {
	return &academicRepo{db: db}
}

// Menciones

func (repo *academicRepo) CreateMention(ctx context.Context, m academic.Mention) (academic.Mention, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cp := m
	repo.db.mentions[m.ID] = &cp
	return m, nil
}

func (repo *academicRepo) QueryAllMentions(ctx context.Context) ([]academic.Mention, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	mentions := make([]academic.Mention, 0, len(repo.db.mentions))
	for _, m := range repo.db.mentions {
		mentions = append(mentions, *m)
	}
	sort.Slice(mentions, func(i, j int) bool { return mentions[i].CreatedAt.Before(mentions[j].CreatedAt) })
	return mentions, nil
}

func (repo *academicRepo) GetMentionByID(ctx context.Context, id string) (academic.Mention, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if m, ok := repo.db.mentions[id]; ok {
		return *m, nil
	}
	return academic.Mention{}, academic.ErrNotFound
}

func (repo *academicRepo) UpdateMention(ctx context.Context, m academic.Mention) (academic.Mention, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.mentions[m.ID]; !ok {
		return academic.Mention{}, academic.ErrNotFound
	}
	cp := m
	repo.db.mentions[m.ID] = &cp
	return m, nil
}

func (repo *academicRepo) DeleteMentionsByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.mentions, id)
	}
	return nil
}

// Docentes

func (repo *academicRepo) CreateTeacher(ctx context.Context, t academic.Teacher) (academic.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cp := t
	repo.db.teachers[t.ID] = &cp
	return t, nil
}

func (repo *academicRepo) QueryAllTeachers(ctx context.Context) ([]academic.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	teachers := make([]academic.Teacher, 0, len(repo.db.teachers))
	for _, t := range repo.db.teachers {
		teachers = append(teachers, *t)
	}
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].CreatedAt.Before(teachers[j].CreatedAt) })
	return teachers, nil
}

func (repo *academicRepo) GetTeacherByID(ctx context.Context, id string) (academic.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.teachers[id]; ok {
		return *t, nil
	}
	return academic.Teacher{}, academic.ErrNotFound
}

func (repo *academicRepo) GetTeacherByCI(ctx context.Context, ci string) (academic.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, t := range repo.db.teachers {
		if t.CI == ci {
			return *t, nil
		}
	}
	return academic.Teacher{}, academic.ErrNotFound
}

func (repo *academicRepo) UpdateTeacher(ctx context.Context, t academic.Teacher) (academic.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.teachers[t.ID]; !ok {
		return academic.Teacher{}, academic.ErrNotFound
	}
	cp := t
	repo.db.teachers[t.ID] = &cp
	return t, nil
}

func (repo *academicRepo) DeleteTeachersByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.teachers, id)
	}
	return nil
}

// Estudiantes

func (repo *academicRepo) CreateStudent(ctx context.Context, s academic.Student) (academic.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cp := s
	repo.db.students[s.ID] = &cp
	return s, nil
}

func (repo *academicRepo) QueryAllStudents(ctx context.Context) ([]academic.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]academic.Student, 0, len(repo.db.students))
	for _, s := range repo.db.students {
		students = append(students, *s)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].CreatedAt.Before(students[j].CreatedAt) })
	return students, nil
}

func (repo *academicRepo) FilterStudents(ctx context.Context, filter academic.StudentFilter) ([]academic.Student, error) {
	all, _ := repo.QueryAllStudents(ctx)

	var students []academic.Student
	search := strings.ToLower(filter.Search)
	for _, s := range all {
		if filter.MentionID != "" && s.MentionID != filter.MentionID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(s.Name), search) &&
			!strings.Contains(strings.ToLower(s.Email), search) &&
			!strings.Contains(strings.ToLower(s.CI), search) {
			continue
		}
		students = append(students, s)
	}
	return students, nil
}

func (repo *academicRepo) GetStudentByID(ctx context.Context, id string) (academic.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.students[id]; ok {
		return *s, nil
	}
	return academic.Student{}, academic.ErrNotFound
}

func (repo *academicRepo) GetStudentByCI(ctx context.Context, ci string) (academic.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, s := range repo.db.students {
		if s.CI == ci {
			return *s, nil
		}
	}
	return academic.Student{}, academic.ErrNotFound
}

func (repo *academicRepo) UpdateStudent(ctx context.Context, s academic.Student) (academic.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.students[s.ID]; !ok {
		return academic.Student{}, academic.ErrNotFound
	}
	cp := s
	repo.db.students[s.ID] = &cp
	return s, nil
}

func (repo *academicRepo) DeleteStudentsByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.students, id)
	}
	return nil
}

// Materias

func (repo *academicRepo) CreateSubject(ctx context.Context, s academic.Subject) (academic.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cp := s
	repo.db.subjects[s.ID] = &cp
	return s, nil
}

func (repo *academicRepo) QueryAllSubjects(ctx context.Context) ([]academic.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subjects := make([]academic.Subject, 0, len(repo.db.subjects))
	for _, s := range repo.db.subjects {
		subjects = append(subjects, *s)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].CreatedAt.Before(subjects[j].CreatedAt) })
	return subjects, nil
}

func (repo *academicRepo) QuerySubjectsByTeacher(ctx context.Context, teacherID string) ([]academic.Subject, error) {
	all, _ := repo.QueryAllSubjects(ctx)

	var subjects []academic.Subject
	for _, s := range all {
		if s.TeacherID == teacherID {
			subjects = append(subjects, s)
		}
	}
	return subjects, nil
}

func (repo *academicRepo) QuerySubjectsByMention(ctx context.Context, mentionID string) ([]academic.Subject, error) {
	all, _ := repo.QueryAllSubjects(ctx)

	var subjects []academic.Subject
	for _, s := range all {
		if s.MentionID == mentionID {
			subjects = append(subjects, s)
		}
	}
	return subjects, nil
}

func (repo *academicRepo) GetSubjectByID(ctx context.Context, id string) (academic.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.subjects[id]; ok {
		return *s, nil
	}
	return academic.Subject{}, academic.ErrNotFound
}

func (repo *academicRepo) GetSubjectByCode(ctx context.Context, code string) (academic.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, s := range repo.db.subjects {
		if strings.EqualFold(s.Code, code) {
			return *s, nil
		}
	}
	return academic.Subject{}, academic.ErrNotFound
}

func (repo *academicRepo) UpdateSubject(ctx context.Context, s academic.Subject) (academic.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.subjects[s.ID]; !ok {
		return academic.Subject{}, academic.ErrNotFound
	}
	cp := s
	repo.db.subjects[s.ID] = &cp
	return s, nil
}

func (repo *academicRepo) DeleteSubjectsByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.subjects, id)
	}
	return nil
}

// Inscripciones

func (repo *academicRepo) CreateEnrollment(ctx context.Context, e academic.Enrollment) (academic.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cp := e
	repo.db.enrollments[e.ID] = &cp
	return e, nil
}

func (repo *academicRepo) QueryAllEnrollments(ctx context.Context) ([]academic.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	enrollments := make([]academic.Enrollment, 0, len(repo.db.enrollments))
	for _, e := range repo.db.enrollments {
		enrollments = append(enrollments, *e)
	}
	sort.Slice(enrollments, func(i, j int) bool { return enrollments[i].CreatedAt.Before(enrollments[j].CreatedAt) })
	return enrollments, nil
}

func (repo *academicRepo) QueryEnrollmentsByStudent(ctx context.Context, studentID string) ([]academic.Enrollment, error) {
	all, _ := repo.QueryAllEnrollments(ctx)

	var enrollments []academic.Enrollment
	for _, e := range all {
		if e.StudentID == studentID {
			enrollments = append(enrollments, e)
		}
	}
	return enrollments, nil
}

func (repo *academicRepo) QueryEnrollmentsBySubject(ctx context.Context, subjectID string) ([]academic.Enrollment, error) {
	all, _ := repo.QueryAllEnrollments(ctx)

	var enrollments []academic.Enrollment
	for _, e := range all {
		if e.SubjectID == subjectID {
			enrollments = append(enrollments, e)
		}
	}
	return enrollments, nil
}

func (repo *academicRepo) GetEnrollmentByID(ctx context.Context, id string) (academic.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if e, ok := repo.db.enrollments[id]; ok {
		return *e, nil
	}
	return academic.Enrollment{}, academic.ErrNotFound
}

func (repo *academicRepo) UpdateEnrollment(ctx context.Context, e academic.Enrollment) (academic.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.enrollments[e.ID]; !ok {
		return academic.Enrollment{}, academic.ErrNotFound
	}
	cp := e
	repo.db.enrollments[e.ID] = &cp
	return e, nil
}

func (repo *academicRepo) DeleteEnrollmentsByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.enrollments, id)
	}
	return nil
}

// Calificaciones

func (repo *academicRepo) CreateGrade(ctx context.Context, g academic.Grade) (academic.Grade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cp := g
	repo.db.grades[g.ID] = &cp
	return g, nil
}

func (repo *academicRepo) QueryAllGrades(ctx context.Context) ([]academic.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	grades := make([]academic.Grade, 0, len(repo.db.grades))
	for _, g := range repo.db.grades {
		grades = append(grades, *g)
	}
	sort.Slice(grades, func(i, j int) bool { return grades[i].CreatedAt.Before(grades[j].CreatedAt) })
	return grades, nil
}

func (repo *academicRepo) QueryGradesByEnrollment(ctx context.Context, enrollmentID string) ([]academic.Grade, error) {
	all, _ := repo.QueryAllGrades(ctx)

	var grades []academic.Grade
	for _, g := range all {
		if g.EnrollmentID == enrollmentID {
			grades = append(grades, g)
		}
	}
	return grades, nil
}

func (repo *academicRepo) GetGradeByID(ctx context.Context, id string) (academic.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if g, ok := repo.db.grades[id]; ok {
		return *g, nil
	}
	return academic.Grade{}, academic.ErrNotFound
}

func (repo *academicRepo) UpdateGrade(ctx context.Context, g academic.Grade) (academic.Grade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.grades[g.ID]; !ok {
		return academic.Grade{}, academic.ErrNotFound
	}
	cp := g
	repo.db.grades[g.ID] = &cp
	return g, nil
}

func (repo *academicRepo) DeleteGradesByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.grades, id)
	}
	return nil
}
