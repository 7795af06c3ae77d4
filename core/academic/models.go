// Package academic holds the academic entities (mentions, subjects, teachers,
// students, enrollments, grades) and their business rules.
package academic

import (
	"time"

	"github.com/dmtshikala/academia/core"
	"github.com/dmtshikala/academia/core/validation"
)

// Enrollment statuses
const (
	EnrollmentActive    = "activa"
	EnrollmentWithdrawn = "retirada"
	EnrollmentCompleted = "completada"
)

type (
	// Mention is an academic specialization track a student enrolls under.
	Mention struct {
		ID          string    `json:"id"`
		Name        string    `json:"nombre"`
		Description string    `json:"descripcion"`
		IsActive    bool      `json:"is_active"`
		CreatedAt   time.Time `json:"created_at"` // UTC
		UpdatedAt   time.Time `json:"updated_at"` // UTC
	}

	Teacher struct {
		ID        string    `json:"id"`
		Name      string    `json:"nombre"`
		CI        string    `json:"ci"`
		Email     string    `json:"correo"`
		Phone     string    `json:"telefono"`
		Specialty string    `json:"especialidad"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	Student struct {
		ID        string    `json:"id"`
		Name      string    `json:"nombre"`
		CI        string    `json:"ci"`
		Email     string    `json:"correo"`
		Phone     string    `json:"telefono"`
		BirthDate string    `json:"fecha_nacimiento"` // YYYY-MM-DD
		MentionID string    `json:"mencion_id"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	Subject struct {
		ID        string    `json:"id"`
		Name      string    `json:"nombre"`
		Code      string    `json:"codigo"`
		Credits   int       `json:"creditos"`
		MentionID string    `json:"mencion_id"`
		TeacherID string    `json:"docente_id"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	// Enrollment is a student's registration in a subject for a term.
	Enrollment struct {
		ID        string    `json:"id"`
		StudentID string    `json:"estudiante_id"`
		SubjectID string    `json:"materia_id"`
		Term      string    `json:"gestion"` // e.g. "2026-1"
		Status    string    `json:"estado"`
		ClosesAt  string    `json:"fecha_cierre"` // YYYY-MM-DD; end of the term
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	Grade struct {
		ID           string    `json:"id"`
		EnrollmentID string    `json:"inscripcion_id"`
		Score        float64   `json:"nota"` // 0-100
		Remarks      string    `json:"observaciones"`
		GradedAt     time.Time `json:"graded_at"`
		CreatedAt    time.Time `json:"created_at"`
		UpdatedAt    time.Time `json:"updated_at"`
	}
)

func (e Enrollment) IsActive() bool { return e.Status == EnrollmentActive }

// Forms. Each form carries the field rule set evaluated by the validation
// engine; update forms drop the presence rules so partial payloads validate
// only what they provide.

type MentionForm struct {
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
	IsActive    *bool  `json:"is_active"`
}

func (f *MentionForm) values() validation.Values {
	return validation.Values{"nombre": f.Name, "descripcion": f.Description}
}

func (f *MentionForm) rules(partial bool) validation.RuleSet {
	rules := validation.RuleSet{
		"nombre":      {validation.MinLength(3), validation.MaxLength(100)},
		"descripcion": {validation.MaxLength(500)},
	}
	if !partial {
		rules["nombre"] = append([]validation.Rule{validation.Required}, rules["nombre"]...)
	}
	return rules
}

func (f *MentionForm) clean() {
	f.Name = core.CleanString(f.Name)
	f.Description = core.CleanString(f.Description)
}

func (f *MentionForm) Validate() error {
	f.clean()
	return validation.Check(f.rules(false), f.values())
}

func (f *MentionForm) ValidatePartial() error {
	f.clean()
	return validation.Check(f.rules(true), f.values())
}

type TeacherForm struct {
	Name      string `json:"nombre"`
	CI        string `json:"ci"`
	Email     string `json:"correo"`
	Phone     string `json:"telefono"`
	Specialty string `json:"especialidad"`
}

func (f *TeacherForm) values() validation.Values {
	return validation.Values{
		"nombre": f.Name, "ci": f.CI, "correo": f.Email,
		"telefono": f.Phone, "especialidad": f.Specialty,
	}
}

func (f *TeacherForm) rules(partial bool) validation.RuleSet {
	rules := validation.RuleSet{
		"nombre":       {validation.MinLength(3), validation.MaxLength(100)},
		"ci":           {validation.CI},
		"correo":       {validation.Email},
		"telefono":     {validation.Phone},
		"especialidad": {validation.MaxLength(100)},
	}
	if !partial {
		for _, field := range []string{"nombre", "ci", "correo"} {
			rules[field] = append([]validation.Rule{validation.Required}, rules[field]...)
		}
	}
	return rules
}

func (f *TeacherForm) clean() {
	f.Name = core.CleanString(f.Name)
	f.CI = core.CleanString(f.CI)
	f.Email = core.CleanString(f.Email, true /* lower */)
	f.Phone = core.CleanString(f.Phone)
	f.Specialty = core.CleanString(f.Specialty)
}

func (f *TeacherForm) Validate() error {
	f.clean()
	return validation.Check(f.rules(false), f.values())
}

func (f *TeacherForm) ValidatePartial() error {
	f.clean()
	return validation.Check(f.rules(true), f.values())
}

type StudentForm struct {
	Name      string `json:"nombre"`
	CI        string `json:"ci"`
	Email     string `json:"correo"`
	Phone     string `json:"telefono"`
	BirthDate string `json:"fecha_nacimiento"`
	MentionID string `json:"mencion_id"`
}

func (f *StudentForm) values() validation.Values {
	return validation.Values{
		"nombre": f.Name, "ci": f.CI, "correo": f.Email, "telefono": f.Phone,
		"fecha_nacimiento": f.BirthDate, "mencion_id": f.MentionID,
	}
}

func (f *StudentForm) rules(partial bool) validation.RuleSet {
	rules := validation.RuleSet{
		"nombre":           {validation.MinLength(3), validation.MaxLength(100)},
		"ci":               {validation.CI},
		"correo":           {validation.Email},
		"telefono":         {validation.Phone},
		"fecha_nacimiento": {validation.PastDate},
		"mencion_id":       {},
	}
	if !partial {
		for _, field := range []string{"nombre", "ci", "correo", "fecha_nacimiento", "mencion_id"} {
			rules[field] = append([]validation.Rule{validation.Required}, rules[field]...)
		}
	}
	return rules
}

func (f *StudentForm) clean() {
	f.Name = core.CleanString(f.Name)
	f.CI = core.CleanString(f.CI)
	f.Email = core.CleanString(f.Email, true /* lower */)
	f.Phone = core.CleanString(f.Phone)
	f.BirthDate = core.CleanString(f.BirthDate)
	f.MentionID = core.CleanString(f.MentionID)
}

func (f *StudentForm) Validate() error {
	f.clean()
	return validation.Check(f.rules(false), f.values())
}

func (f *StudentForm) ValidatePartial() error {
	f.clean()
	return validation.Check(f.rules(true), f.values())
}

type SubjectForm struct {
	Name      string `json:"nombre"`
	Code      string `json:"codigo"`
	Credits   int    `json:"creditos"`
	MentionID string `json:"mencion_id"`
	TeacherID string `json:"docente_id"`
}

func (f *SubjectForm) values() validation.Values {
	return validation.Values{"nombre": f.Name, "codigo": f.Code, "creditos": f.Credits}
}

func (f *SubjectForm) rules(partial bool) validation.RuleSet {
	rules := validation.RuleSet{
		"nombre":   {validation.MinLength(3), validation.MaxLength(100)},
		"codigo":   {validation.MinLength(3), validation.MaxLength(20)},
		"creditos": {validation.Min(1), validation.Max(12)},
	}
	if !partial {
		for _, field := range []string{"nombre", "codigo", "creditos"} {
			rules[field] = append([]validation.Rule{validation.Required}, rules[field]...)
		}
	}
	return rules
}

func (f *SubjectForm) clean() {
	f.Name = core.CleanString(f.Name)
	f.Code = core.CleanString(f.Code, true /* lower */)
}

func (f *SubjectForm) Validate() error {
	f.clean()
	return validation.Check(f.rules(false), f.values())
}

func (f *SubjectForm) ValidatePartial() error {
	f.clean()
	vals := f.values()
	// zero credits means the field was absent; the service keeps the stored value
	if f.Credits == 0 {
		vals["creditos"] = nil
	}
	return validation.Check(f.rules(true), vals)
}

type EnrollmentForm struct {
	StudentID string `json:"estudiante_id"`
	SubjectID string `json:"materia_id"`
	Term      string `json:"gestion"`
	ClosesAt  string `json:"fecha_cierre"`
}

func (f *EnrollmentForm) Validate() error {
	f.Term = core.CleanString(f.Term)
	f.ClosesAt = core.CleanString(f.ClosesAt)
	return validation.Check(validation.RuleSet{
		"estudiante_id": {validation.Required},
		"materia_id":    {validation.Required},
		"gestion":       {validation.Required, validation.MinLength(4), validation.MaxLength(10)},
		"fecha_cierre":  {validation.Required, validation.FutureDate},
	}, validation.Values{
		"estudiante_id": f.StudentID,
		"materia_id":    f.SubjectID,
		"gestion":       f.Term,
		"fecha_cierre":  f.ClosesAt,
	})
}

type GradeForm struct {
	EnrollmentID string  `json:"inscripcion_id"`
	Score        float64 `json:"nota"`
	Remarks      string  `json:"observaciones"`
}

func (f *GradeForm) values() validation.Values {
	return validation.Values{
		"inscripcion_id": f.EnrollmentID,
		"nota":           f.Score,
		"observaciones":  f.Remarks,
	}
}

func (f *GradeForm) rules(partial bool) validation.RuleSet {
	rules := validation.RuleSet{
		"nota":          {validation.Min(0), validation.Max(100)},
		"observaciones": {validation.MaxLength(500)},
	}
	if !partial {
		rules["inscripcion_id"] = []validation.Rule{validation.Required}
	}
	return rules
}

func (f *GradeForm) Validate() error {
	f.Remarks = core.CleanString(f.Remarks)
	return validation.Check(f.rules(false), f.values())
}

// ValidatePartial skips the enrollment requirement; updates address the grade
// by its path id and never move it to another enrollment.
func (f *GradeForm) ValidatePartial() error {
	f.Remarks = core.CleanString(f.Remarks)
	return validation.Check(f.rules(true), f.values())
}

type StudentFilter struct {
	Search    string `query:"search"`
	MentionID string `query:"mencion_id"`
}

func (sf *StudentFilter) IsEmpty() bool { return sf.Search == "" && sf.MentionID == "" }

func (sf *StudentFilter) Clean() { sf.Search = core.CleanString(sf.Search) }
