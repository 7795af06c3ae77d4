package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/dmtshikala/academia/core/academic"
)

const dateLayout = "2006-01-02"

type academicRepository struct {
	db *sqlx.DB
}

var _ academic.Repository = (*academicRepository)(nil)

func NewAcademicRepository(db *sql.DB) academic.Repository {
	return &academicRepository{db: sqlx.NewDb(db, "postgres")}
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// Menciones

type dbMention struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (row dbMention) toMention() academic.Mention {
	return academic.Mention{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		IsActive:    row.IsActive,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func (repo *academicRepository) CreateMention(ctx context.Context, m academic.Mention) (academic.Mention, error) {
	const q = `
	INSERT INTO mention (id, name, description, is_active, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := repo.db.ExecContext(ctx, q, m.ID, m.Name, m.Description, m.IsActive, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return academic.Mention{}, errors.Wrap(err, "inserting mention")
	}
	return m, nil
}

func (repo *academicRepository) QueryAllMentions(ctx context.Context) ([]academic.Mention, error) {
	var rows []dbMention
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM mention ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "selecting mentions")
	}
	mentions := make([]academic.Mention, 0, len(rows))
	for _, row := range rows {
		mentions = append(mentions, row.toMention())
	}
	return mentions, nil
}

func (repo *academicRepository) GetMentionByID(ctx context.Context, id string) (academic.Mention, error) {
	var row dbMention
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM mention WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return academic.Mention{}, academic.ErrNotFound
		}
		return academic.Mention{}, errors.Wrap(err, "selecting mention")
	}
	return row.toMention(), nil
}

func (repo *academicRepository) UpdateMention(ctx context.Context, m academic.Mention) (academic.Mention, error) {
	const q = `
	UPDATE mention SET name = $2, description = $3, is_active = $4, updated_at = $5
	WHERE id = $1`

	res, err := repo.db.ExecContext(ctx, q, m.ID, m.Name, m.Description, m.IsActive, m.UpdatedAt)
	if err != nil {
		return academic.Mention{}, errors.Wrap(err, "updating mention")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return academic.Mention{}, academic.ErrNotFound
	}
	return m, nil
}

func (repo *academicRepository) DeleteMentionsByID(ctx context.Context, ids ...string) error {
	return repo.deleteByID(ctx, "mention", ids)
}

// Docentes

type dbTeacher struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CI        string    `db:"ci"`
	Email     string    `db:"email"`
	Phone     string    `db:"phone"`
	Specialty string    `db:"specialty"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row dbTeacher) toTeacher() academic.Teacher {
	return academic.Teacher{
		ID:        row.ID,
		Name:      row.Name,
		CI:        row.CI,
		Email:     row.Email,
		Phone:     row.Phone,
		Specialty: row.Specialty,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func (repo *academicRepository) CreateTeacher(ctx context.Context, t academic.Teacher) (academic.Teacher, error) {
	const q = `
	INSERT INTO teacher (id, name, ci, email, phone, specialty, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := repo.db.ExecContext(ctx, q, t.ID, t.Name, t.CI, t.Email, t.Phone, t.Specialty, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return academic.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return t, nil
}

func (repo *academicRepository) QueryAllTeachers(ctx context.Context) ([]academic.Teacher, error) {
	var rows []dbTeacher
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM teacher ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "selecting teachers")
	}
	teachers := make([]academic.Teacher, 0, len(rows))
	for _, row := range rows {
		teachers = append(teachers, row.toTeacher())
	}
	return teachers, nil
}

func (repo *academicRepository) getTeacher(ctx context.Context, q string, args ...interface{}) (academic.Teacher, error) {
	var row dbTeacher
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return academic.Teacher{}, academic.ErrNotFound
		}
		return academic.Teacher{}, errors.Wrap(err, "selecting teacher")
	}
	return row.toTeacher(), nil
}

func (repo *academicRepository) GetTeacherByID(ctx context.Context, id string) (academic.Teacher, error) {
	return repo.getTeacher(ctx, `SELECT * FROM teacher WHERE id = $1`, id)
}

func (repo *academicRepository) GetTeacherByCI(ctx context.Context, ci string) (academic.Teacher, error) {
	return repo.getTeacher(ctx, `SELECT * FROM teacher WHERE ci = $1`, ci)
}

func (repo *academicRepository) UpdateTeacher(ctx context.Context, t academic.Teacher) (academic.Teacher, error) {
	const q = `
	UPDATE teacher SET name = $2, ci = $3, email = $4, phone = $5, specialty = $6, updated_at = $7
	WHERE id = $1`

	res, err := repo.db.ExecContext(ctx, q, t.ID, t.Name, t.CI, t.Email, t.Phone, t.Specialty, t.UpdatedAt)
	if err != nil {
		return academic.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return academic.Teacher{}, academic.ErrNotFound
	}
	return t, nil
}

func (repo *academicRepository) DeleteTeachersByID(ctx context.Context, ids ...string) error {
	return repo.deleteByID(ctx, "teacher", ids)
}

// Estudiantes

type dbStudent struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CI        string    `db:"ci"`
	Email     string    `db:"email"`
	Phone     string    `db:"phone"`
	BirthDate time.Time `db:"birth_date"`
	MentionID string    `db:"mention_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row dbStudent) toStudent() academic.Student {
	return academic.Student{
		ID:        row.ID,
		Name:      row.Name,
		CI:        row.CI,
		Email:     row.Email,
		Phone:     row.Phone,
		BirthDate: row.BirthDate.Format(dateLayout),
		MentionID: row.MentionID,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func (repo *academicRepository) CreateStudent(ctx context.Context, s academic.Student) (academic.Student, error) {
	birthDate, err := parseDate(s.BirthDate)
	if err != nil {
		return academic.Student{}, errors.Wrap(err, "parsing birth date")
	}

	const q = `
	INSERT INTO student (id, name, ci, email, phone, birth_date, mention_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = repo.db.ExecContext(ctx, q, s.ID, s.Name, s.CI, s.Email, s.Phone, birthDate, s.MentionID, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return academic.Student{}, errors.Wrap(err, "inserting student")
	}
	return s, nil
}

func (repo *academicRepository) QueryAllStudents(ctx context.Context) ([]academic.Student, error) {
	var rows []dbStudent
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM student ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	students := make([]academic.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toStudent())
	}
	return students, nil
}

func (repo *academicRepository) FilterStudents(ctx context.Context, filter academic.StudentFilter) ([]academic.Student, error) {
	q := `SELECT * FROM student WHERE 1=1`
	var args []interface{}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q += ` AND (name ILIKE ? OR email ILIKE ? OR ci ILIKE ?)`
		args = append(args, pattern, pattern, pattern)
	}
	if filter.MentionID != "" {
		q += ` AND mention_id = ?`
		args = append(args, filter.MentionID)
	}
	q += ` ORDER BY created_at`

	var rows []dbStudent
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "filtering students")
	}
	students := make([]academic.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toStudent())
	}
	return students, nil
}

func (repo *academicRepository) getStudent(ctx context.Context, q string, args ...interface{}) (academic.Student, error) {
	var row dbStudent
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return academic.Student{}, academic.ErrNotFound
		}
		return academic.Student{}, errors.Wrap(err, "selecting student")
	}
	return row.toStudent(), nil
}

func (repo *academicRepository) GetStudentByID(ctx context.Context, id string) (academic.Student, error) {
	return repo.getStudent(ctx, `SELECT * FROM student WHERE id = $1`, id)
}

func (repo *academicRepository) GetStudentByCI(ctx context.Context, ci string) (academic.Student, error) {
	return repo.getStudent(ctx, `SELECT * FROM student WHERE ci = $1`, ci)
}

func (repo *academicRepository) UpdateStudent(ctx context.Context, s academic.Student) (academic.Student, error) {
	birthDate, err := parseDate(s.BirthDate)
	if err != nil {
		return academic.Student{}, errors.Wrap(err, "parsing birth date")
	}

	const q = `
	UPDATE student
	SET name = $2, ci = $3, email = $4, phone = $5, birth_date = $6, mention_id = $7, updated_at = $8
	WHERE id = $1`

	res, err := repo.db.ExecContext(ctx, q, s.ID, s.Name, s.CI, s.Email, s.Phone, birthDate, s.MentionID, s.UpdatedAt)
	if err != nil {
		return academic.Student{}, errors.Wrap(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return academic.Student{}, academic.ErrNotFound
	}
	return s, nil
}

func (repo *academicRepository) DeleteStudentsByID(ctx context.Context, ids ...string) error {
	return repo.deleteByID(ctx, "student", ids)
}

// Materias

type dbSubject struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	Code      string         `db:"code"`
	Credits   int            `db:"credits"`
	MentionID sql.NullString `db:"mention_id"`
	TeacherID sql.NullString `db:"teacher_id"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (row dbSubject) toSubject() academic.Subject {
	return academic.Subject{
		ID:        row.ID,
		Name:      row.Name,
		Code:      row.Code,
		Credits:   row.Credits,
		MentionID: row.MentionID.String,
		TeacherID: row.TeacherID.String,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func (repo *academicRepository) CreateSubject(ctx context.Context, s academic.Subject) (academic.Subject, error) {
	const q = `
	INSERT INTO subject (id, name, code, credits, mention_id, teacher_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := repo.db.ExecContext(ctx, q,
		s.ID, s.Name, s.Code, s.Credits, nullStr(s.MentionID), nullStr(s.TeacherID), s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return academic.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return s, nil
}

func (repo *academicRepository) querySubjects(ctx context.Context, q string, args ...interface{}) ([]academic.Subject, error) {
	var rows []dbSubject
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting subjects")
	}
	subjects := make([]academic.Subject, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, row.toSubject())
	}
	return subjects, nil
}

func (repo *academicRepository) QueryAllSubjects(ctx context.Context) ([]academic.Subject, error) {
	return repo.querySubjects(ctx, `SELECT * FROM subject ORDER BY created_at`)
}

func (repo *academicRepository) QuerySubjectsByTeacher(ctx context.Context, teacherID string) ([]academic.Subject, error) {
	return repo.querySubjects(ctx, `SELECT * FROM subject WHERE teacher_id = $1 ORDER BY created_at`, teacherID)
}

func (repo *academicRepository) QuerySubjectsByMention(ctx context.Context, mentionID string) ([]academic.Subject, error) {
	return repo.querySubjects(ctx, `SELECT * FROM subject WHERE mention_id = $1 ORDER BY created_at`, mentionID)
}

func (repo *academicRepository) getSubject(ctx context.Context, q string, args ...interface{}) (academic.Subject, error) {
	var row dbSubject
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return academic.Subject{}, academic.ErrNotFound
		}
		return academic.Subject{}, errors.Wrap(err, "selecting subject")
	}
	return row.toSubject(), nil
}

func (repo *academicRepository) GetSubjectByID(ctx context.Context, id string) (academic.Subject, error) {
	return repo.getSubject(ctx, `SELECT * FROM subject WHERE id = $1`, id)
}

func (repo *academicRepository) GetSubjectByCode(ctx context.Context, code string) (academic.Subject, error) {
	return repo.getSubject(ctx, `SELECT * FROM subject WHERE lower(code) = lower($1)`, code)
}

func (repo *academicRepository) UpdateSubject(ctx context.Context, s academic.Subject) (academic.Subject, error) {
	const q = `
	UPDATE subject
	SET name = $2, code = $3, credits = $4, mention_id = $5, teacher_id = $6, updated_at = $7
	WHERE id = $1`

	res, err := repo.db.ExecContext(ctx, q,
		s.ID, s.Name, s.Code, s.Credits, nullStr(s.MentionID), nullStr(s.TeacherID), s.UpdatedAt)
	if err != nil {
		return academic.Subject{}, errors.Wrap(err, "updating subject")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return academic.Subject{}, academic.ErrNotFound
	}
	return s, nil
}

func (repo *academicRepository) DeleteSubjectsByID(ctx context.Context, ids ...string) error {
	return repo.deleteByID(ctx, "subject", ids)
}

// Inscripciones

type dbEnrollment struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	SubjectID string    `db:"subject_id"`
	Term      string    `db:"term"`
	Status    string    `db:"status"`
	ClosesAt  time.Time `db:"closes_at"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row dbEnrollment) toEnrollment() academic.Enrollment {
	return academic.Enrollment{
		ID:        row.ID,
		StudentID: row.StudentID,
		SubjectID: row.SubjectID,
		Term:      row.Term,
		Status:    row.Status,
		ClosesAt:  row.ClosesAt.Format(dateLayout),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func (repo *academicRepository) CreateEnrollment(ctx context.Context, e academic.Enrollment) (academic.Enrollment, error) {
	closesAt, err := parseDate(e.ClosesAt)
	if err != nil {
		return academic.Enrollment{}, errors.Wrap(err, "parsing close date")
	}

	const q = `
	INSERT INTO enrollment (id, student_id, subject_id, term, status, closes_at, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = repo.db.ExecContext(ctx, q, e.ID, e.StudentID, e.SubjectID, e.Term, e.Status, closesAt, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return academic.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return e, nil
}

func (repo *academicRepository) queryEnrollments(ctx context.Context, q string, args ...interface{}) ([]academic.Enrollment, error) {
	var rows []dbEnrollment
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting enrollments")
	}
	enrollments := make([]academic.Enrollment, 0, len(rows))
	for _, row := range rows {
		enrollments = append(enrollments, row.toEnrollment())
	}
	return enrollments, nil
}

func (repo *academicRepository) QueryAllEnrollments(ctx context.Context) ([]academic.Enrollment, error) {
	return repo.queryEnrollments(ctx, `SELECT * FROM enrollment ORDER BY created_at`)
}

func (repo *academicRepository) QueryEnrollmentsByStudent(ctx context.Context, studentID string) ([]academic.Enrollment, error) {
	return repo.queryEnrollments(ctx, `SELECT * FROM enrollment WHERE student_id = $1 ORDER BY created_at`, studentID)
}

func (repo *academicRepository) QueryEnrollmentsBySubject(ctx context.Context, subjectID string) ([]academic.Enrollment, error) {
	return repo.queryEnrollments(ctx, `SELECT * FROM enrollment WHERE subject_id = $1 ORDER BY created_at`, subjectID)
}

func (repo *academicRepository) GetEnrollmentByID(ctx context.Context, id string) (academic.Enrollment, error) {
	var row dbEnrollment
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM enrollment WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return academic.Enrollment{}, academic.ErrNotFound
		}
		return academic.Enrollment{}, errors.Wrap(err, "selecting enrollment")
	}
	return row.toEnrollment(), nil
}

func (repo *academicRepository) UpdateEnrollment(ctx context.Context, e academic.Enrollment) (academic.Enrollment, error) {
	closesAt, err := parseDate(e.ClosesAt)
	if err != nil {
		return academic.Enrollment{}, errors.Wrap(err, "parsing close date")
	}

	const q = `
	UPDATE enrollment SET term = $2, status = $3, closes_at = $4, updated_at = $5
	WHERE id = $1`

	res, err := repo.db.ExecContext(ctx, q, e.ID, e.Term, e.Status, closesAt, e.UpdatedAt)
	if err != nil {
		return academic.Enrollment{}, errors.Wrap(err, "updating enrollment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return academic.Enrollment{}, academic.ErrNotFound
	}
	return e, nil
}

func (repo *academicRepository) DeleteEnrollmentsByID(ctx context.Context, ids ...string) error {
	return repo.deleteByID(ctx, "enrollment", ids)
}

// Calificaciones

type dbGrade struct {
	ID           string    `db:"id"`
	EnrollmentID string    `db:"enrollment_id"`
	Score        float64   `db:"score"`
	Remarks      string    `db:"remarks"`
	GradedAt     time.Time `db:"graded_at"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (row dbGrade) toGrade() academic.Grade {
	return academic.Grade{
		ID:           row.ID,
		EnrollmentID: row.EnrollmentID,
		Score:        row.Score,
		Remarks:      row.Remarks,
		GradedAt:     row.GradedAt,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func (repo *academicRepository) CreateGrade(ctx context.Context, g academic.Grade) (academic.Grade, error) {
	const q = `
	INSERT INTO grade (id, enrollment_id, score, remarks, graded_at, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := repo.db.ExecContext(ctx, q, g.ID, g.EnrollmentID, g.Score, g.Remarks, g.GradedAt, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return academic.Grade{}, errors.Wrap(err, "inserting grade")
	}
	return g, nil
}

func (repo *academicRepository) queryGrades(ctx context.Context, q string, args ...interface{}) ([]academic.Grade, error) {
	var rows []dbGrade
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting grades")
	}
	grades := make([]academic.Grade, 0, len(rows))
	for _, row := range rows {
		grades = append(grades, row.toGrade())
	}
	return grades, nil
}

func (repo *academicRepository) QueryAllGrades(ctx context.Context) ([]academic.Grade, error) {
	return repo.queryGrades(ctx, `SELECT * FROM grade ORDER BY created_at`)
}

func (repo *academicRepository) QueryGradesByEnrollment(ctx context.Context, enrollmentID string) ([]academic.Grade, error) {
	return repo.queryGrades(ctx, `SELECT * FROM grade WHERE enrollment_id = $1 ORDER BY created_at`, enrollmentID)
}

func (repo *academicRepository) GetGradeByID(ctx context.Context, id string) (academic.Grade, error) {
	var row dbGrade
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM grade WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return academic.Grade{}, academic.ErrNotFound
		}
		return academic.Grade{}, errors.Wrap(err, "selecting grade")
	}
	return row.toGrade(), nil
}

func (repo *academicRepository) UpdateGrade(ctx context.Context, g academic.Grade) (academic.Grade, error) {
	const q = `
	UPDATE grade SET score = $2, remarks = $3, graded_at = $4, updated_at = $5
	WHERE id = $1`

	res, err := repo.db.ExecContext(ctx, q, g.ID, g.Score, g.Remarks, g.GradedAt, g.UpdatedAt)
	if err != nil {
		return academic.Grade{}, errors.Wrap(err, "updating grade")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return academic.Grade{}, academic.ErrNotFound
	}
	return g, nil
}

func (repo *academicRepository) DeleteGradesByID(ctx context.Context, ids ...string) error {
	return repo.deleteByID(ctx, "grade", ids)
}

func (repo *academicRepository) deleteByID(ctx context.Context, table string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM `+table+` WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting from "+table)
	}
	return nil
}
